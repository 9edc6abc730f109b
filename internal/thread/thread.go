// Package thread indexes a post's flat comment rows by parent and walks them as a tree.
package thread

import (
	"iter"
	"slices"

	"inkpost/internal/models"
)

// Tree is a parent-to-children index over one post's comments.
// It is built on demand and never stored.
type Tree struct {
	byID     map[uint]*models.Comment
	children map[uint][]*models.Comment
	roots    []*models.Comment
	size     int
}

// Build indexes comments by parent. Rows are not copied; callers must not
// mutate them while the tree is in use.
func Build(comments []*models.Comment) *Tree {
	t := &Tree{
		byID:     make(map[uint]*models.Comment, len(comments)),
		children: make(map[uint][]*models.Comment),
	}
	for _, c := range comments {
		if c == nil {
			continue
		}
		t.size++
		t.byID[c.ID] = c
		if c.ParentID == nil {
			t.roots = append(t.roots, c)
			continue
		}
		t.children[*c.ParentID] = append(t.children[*c.ParentID], c)
	}
	slices.SortStableFunc(t.roots, compareComments)
	for id := range t.children {
		slices.SortStableFunc(t.children[id], compareComments)
	}
	return t
}

func compareComments(a, b *models.Comment) int {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	}
	return 0
}

// Len returns the number of comments indexed.
func (t *Tree) Len() int { return t.size }

// Roots returns the comments with no parent, oldest first.
func (t *Tree) Roots() []*models.Comment { return t.roots }

// Children returns the direct replies to id, oldest first.
func (t *Tree) Children(id uint) []*models.Comment { return t.children[id] }

// Get returns the comment with the given id if it was indexed.
func (t *Tree) Get(id uint) (*models.Comment, bool) {
	c, ok := t.byID[id]
	return c, ok
}

// Walk yields every comment reachable from a root with its depth, depth-first
// in pre-order. Root comments have depth 0.
func (t *Tree) Walk() iter.Seq2[*models.Comment, int] {
	return t.walk(t.roots)
}

// WalkFrom walks the subtree rooted at id. The start comment has depth 0.
func (t *Tree) WalkFrom(id uint) iter.Seq2[*models.Comment, int] {
	c, ok := t.byID[id]
	if !ok {
		return func(func(*models.Comment, int) bool) {}
	}
	return t.walk([]*models.Comment{c})
}

// Entries materializes Walk as thread entries. Author names are left unset.
func (t *Tree) Entries() []models.ThreadEntry {
	entries := make([]models.ThreadEntry, 0, t.size)
	for c, depth := range t.Walk() {
		entries = append(entries, models.ThreadEntry{CommentView: models.CommentView{Comment: *c}, Depth: depth})
	}
	return entries
}

type frame struct {
	c     *models.Comment
	depth int
}

// walk uses an explicit stack so depth is bounded by memory, not the goroutine stack.
// A comment seen twice means the rows form a cycle; its subtree is skipped.
func (t *Tree) walk(start []*models.Comment) iter.Seq2[*models.Comment, int] {
	return func(yield func(*models.Comment, int) bool) {
		visited := make(map[uint]struct{}, t.size)
		stack := make([]frame, 0, len(start))
		for i := len(start) - 1; i >= 0; i-- {
			stack = append(stack, frame{c: start[i]})
		}
		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if _, seen := visited[f.c.ID]; seen {
				continue
			}
			visited[f.c.ID] = struct{}{}
			if !yield(f.c, f.depth) {
				return
			}
			kids := t.children[f.c.ID]
			for i := len(kids) - 1; i >= 0; i-- {
				stack = append(stack, frame{c: kids[i], depth: f.depth + 1})
			}
		}
	}
}

// Detached returns comments that no walk from a root reaches: replies whose
// parent is missing from the index, and rows caught in a parent cycle.
func (t *Tree) Detached() []*models.Comment {
	reached := make(map[uint]struct{}, t.size)
	for c := range t.Walk() {
		reached[c.ID] = struct{}{}
	}
	var out []*models.Comment
	for _, c := range t.byID {
		if _, ok := reached[c.ID]; !ok {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, compareComments)
	return out
}

// Orphaned reports whether c points at a parent that is not in the index.
func (t *Tree) Orphaned(c *models.Comment) bool {
	if c.ParentID == nil {
		return false
	}
	_, ok := t.byID[*c.ParentID]
	return !ok
}
