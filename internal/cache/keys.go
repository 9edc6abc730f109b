package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	UserKeyPrefix     = "user:%d"
	PostKeyPrefix     = "post:%d"
	CategoryKeyPrefix = "category:%d"
	ThreadKeyPrefix   = "post:%d:thread"
)

const (
	UserTTL     = 5 * time.Minute
	PostTTL     = 30 * time.Minute
	CategoryTTL = 10 * time.Minute
	ThreadTTL   = 2 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func CategoryKey(categoryID uint) string {
	return fmt.Sprintf(CategoryKeyPrefix, categoryID)
}

func ThreadKey(postID uint) string {
	return fmt.Sprintf(ThreadKeyPrefix, postID)
}

// entityOf returns the key's leading segment, used as a metric label.
func entityOf(key string) string {
	entity, _, _ := strings.Cut(key, ":")
	if strings.HasSuffix(key, ":thread") {
		return "thread"
	}
	return entity
}

// Invalidate deletes keys. Errors are counted by the client hook and otherwise ignored.
func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

// InvalidatePost drops the cached post row and its rendered thread.
func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID), ThreadKey(postID))
}

func InvalidateCategory(ctx context.Context, categoryID uint) {
	Invalidate(ctx, CategoryKey(categoryID))
}

func InvalidateThread(ctx context.Context, postID uint) {
	Invalidate(ctx, ThreadKey(postID))
}
