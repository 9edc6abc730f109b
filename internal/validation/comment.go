package validation

import "encoding/json"

// CommentInput is a validated comment. Comments have no mode split;
// a nil ParentID makes the comment a root of its post's thread.
type CommentInput struct {
	ID       *uint  `json:"id,omitempty"`
	PostID   uint   `json:"postId"`
	Content  string `json:"content"`
	ParentID *uint  `json:"parentId"`
	UserID   uint   `json:"userId"`
}

// IsRoot reports whether the comment attaches directly to its post.
func (c CommentInput) IsRoot() bool {
	return c.ParentID == nil
}

func (c CommentInput) check(errs *fieldErrors) {
	if c.ID != nil {
		checkID(errs, "id", *c.ID)
	}
	checkID(errs, "postId", c.PostID)
	checkText(errs, "content", c.Content, 0)
	if c.ParentID != nil {
		checkID(errs, "parentId", *c.ParentID)
	}
	checkID(errs, "userId", c.UserID)
}

func (c CommentInput) Validate() error {
	var errs fieldErrors
	c.check(&errs)
	return errs.err(SchemaComment, "")
}

// MarshalJSON drops a nil parentId so re-decoding yields the same root comment.
func (c CommentInput) MarshalJSON() ([]byte, error) {
	type plain struct {
		ID       *uint  `json:"id,omitempty"`
		PostID   uint   `json:"postId"`
		Content  string `json:"content"`
		ParentID *uint  `json:"parentId,omitempty"`
		UserID   uint   `json:"userId"`
	}
	return json.Marshal(plain(c))
}

// DecodeComment validates raw as a comment. The parent's existence and its post
// are not checked here.
func DecodeComment(raw []byte) (CommentInput, error) {
	var errs fieldErrors
	obj, ok := parseObject(raw, &errs)
	if !ok {
		return CommentInput{}, errs.err(SchemaComment, "")
	}

	var c CommentInput
	if id, ok := obj.id("id", false); ok {
		c.ID = &id
	}
	c.PostID, _ = obj.id("postId", true)
	c.Content = obj.str("content", true)
	if parent, ok := obj.id("parentId", false); ok {
		c.ParentID = &parent
	}
	c.UserID, _ = obj.id("userId", true)

	c.check(&errs)
	if err := errs.err(SchemaComment, ""); err != nil {
		return CommentInput{}, err
	}
	return c, nil
}
