package validation

import (
	"encoding/json"
)

// Post modes.
const (
	ModeCreate = "create"
	ModeEdit   = "edit"
)

// PostFields are the members shared by both post modes.
type PostFields struct {
	Title            string `json:"title"`
	ShortDescription string `json:"shortDescription"`
	UserID           uint   `json:"userId"`
	CategoryID       uint   `json:"categoryId"`
	Content          string `json:"content"`
	TagIDs           []uint `json:"tagIds"`
}

func (f PostFields) check(errs *fieldErrors) {
	checkText(errs, "title", f.Title, MaxTitleLen)
	checkText(errs, "shortDescription", f.ShortDescription, MaxShortDescriptionLen)
	checkID(errs, "userId", f.UserID)
	checkID(errs, "categoryId", f.CategoryID)
	checkText(errs, "content", f.Content, 0)
	checkIDs(errs, "tagIds", f.TagIDs)
}

func (f PostFields) normalized() PostFields {
	if f.TagIDs == nil {
		f.TagIDs = []uint{}
	}
	return f
}

// PostInput is a validated post intent. It is either a CreatePost or an EditPost.
type PostInput interface {
	Mode() string
	Fields() PostFields
	Validate() error
	postInput()
}

// CreatePost inserts a new post. It never carries an id.
type CreatePost struct {
	PostFields
}

func (CreatePost) Mode() string { return ModeCreate }
func (p CreatePost) Fields() PostFields { return p.PostFields }
func (CreatePost) postInput() {}

// Validate checks the field constraints of an already-typed value.
func (p CreatePost) Validate() error {
	var errs fieldErrors
	p.check(&errs)
	return errs.err(SchemaPost, ModeCreate)
}

func (p CreatePost) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Mode string `json:"mode"`
		PostFields
	}{ModeCreate, p.normalized()})
}

// EditPost replaces every field of an existing post.
type EditPost struct {
	ID uint `json:"id"`
	PostFields
}

func (EditPost) Mode() string { return ModeEdit }
func (p EditPost) Fields() PostFields { return p.PostFields }
func (EditPost) postInput() {}

func (p EditPost) Validate() error {
	var errs fieldErrors
	checkID(&errs, "id", p.ID)
	p.check(&errs)
	return errs.err(SchemaPost, ModeEdit)
}

func (p EditPost) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Mode string `json:"mode"`
		ID   uint   `json:"id"`
		PostFields
	}{ModeEdit, p.ID, p.normalized()})
}

// DecodePost resolves the mode discriminant of raw and validates the matching shape.
// Unknown members are ignored, except that create mode rejects an id.
func DecodePost(raw []byte) (PostInput, error) {
	var errs fieldErrors
	obj, ok := parseObject(raw, &errs)
	if !ok {
		return nil, errs.err(SchemaPost, "")
	}
	mode, ok := resolveMode(obj, ModeCreate, ModeEdit)
	if !ok {
		return nil, errs.err(SchemaPost, mode)
	}

	var id uint
	if mode == ModeEdit {
		id, _ = obj.id("id", true)
	} else if _, sent := obj.members["id"]; sent {
		errs.add("id", msgForbidden+" in create mode")
	}

	fields := PostFields{
		Title:            obj.str("title", true),
		ShortDescription: obj.str("shortDescription", true),
	}
	fields.UserID, _ = obj.id("userId", true)
	fields.CategoryID, _ = obj.id("categoryId", true)
	fields.Content = obj.str("content", true)
	fields.TagIDs = obj.ids("tagIds")
	fields = fields.normalized()

	var in PostInput
	if mode == ModeEdit {
		checkID(&errs, "id", id)
		in = EditPost{ID: id, PostFields: fields}
	} else {
		in = CreatePost{PostFields: fields}
	}
	fields.check(&errs)
	if err := errs.err(SchemaPost, mode); err != nil {
		return nil, err
	}
	return in, nil
}
