package models

// TagRef is a tag as seen from a post. Name is nil when the tag row is gone.
type TagRef struct {
	ID   uint    `json:"id"`
	Name *string `json:"name"`
}

// PostView is a post with its foreign keys resolved for display.
// Nil names mean the referenced row could not be found.
type PostView struct {
	Post
	CategoryName *string  `json:"categoryName"`
	AuthorName   *string  `json:"authorName"`
	Tags         []TagRef `json:"tags"`
}

// TagIDs returns the tag ids in association order.
func (v *PostView) TagIDs() []uint {
	ids := make([]uint, len(v.Tags))
	for i, t := range v.Tags {
		ids[i] = t.ID
	}
	return ids
}

// CommentView is a comment with its author resolved.
type CommentView struct {
	Comment
	AuthorName *string `json:"authorName"`
}

// ThreadEntry is one line of a rendered discussion. Depth 0 is a root comment.
type ThreadEntry struct {
	CommentView
	Depth int `json:"depth"`
}
