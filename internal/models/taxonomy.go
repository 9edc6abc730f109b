package models

import (
	"time"

	"gorm.io/gorm"
)

// Category groups posts. A category referenced by posts is never hard-deleted;
// soft deletion leaves the foreign key intact and hides the name from readers.
type Category struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM.
func (Category) TableName() string {
	return "categories"
}

// Tag is a free-form label attached to posts through PostTag.
type Tag struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM.
func (Tag) TableName() string {
	return "tags"
}

// PostTag is the join row between a post and a tag. The pair is the identity;
// Position records insertion order within the post's tag set.
type PostTag struct {
	PostID    uint      `gorm:"primaryKey;autoIncrement:false" json:"postId"`
	TagID     uint      `gorm:"primaryKey;autoIncrement:false;index" json:"tagId"`
	Position  int       `gorm:"not null;default:0" json:"position"`
	CreatedAt time.Time `json:"createdAt"`

	Post *Post `gorm:"foreignKey:PostID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Tag  *Tag  `gorm:"foreignKey:TagID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

// TableName specifies the table name for GORM.
func (PostTag) TableName() string {
	return "post_tags"
}
