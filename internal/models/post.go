package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is an authored article. Every post has exactly one owning user and one category.
type Post struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	UserID           uint           `gorm:"not null;index" json:"userId"`
	Title            string         `gorm:"type:varchar(255);not null" json:"title"`
	ShortDescription *string        `gorm:"type:text" json:"shortDescription"`
	Content          string         `gorm:"type:text;not null" json:"content"`
	CategoryID       uint           `gorm:"not null;index" json:"categoryId"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	User     *User     `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

// TableName specifies the table name for GORM.
func (Post) TableName() string {
	return "posts"
}

// Comment is a row in a post's discussion. ParentID links replies to their parent;
// a nil ParentID marks a root comment. PostID carries no foreign key.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ParentID  *uint     `gorm:"index" json:"parentId"`
	UserID    uint      `gorm:"not null;index" json:"userId"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	PostID    uint      `gorm:"not null;index" json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Parent *Comment `gorm:"foreignKey:ParentID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	User   *User    `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

// TableName specifies the table name for GORM.
func (Comment) TableName() string {
	return "comments"
}

// IsRoot reports whether the comment is attached directly to its post.
func (c *Comment) IsRoot() bool {
	return c.ParentID == nil
}
