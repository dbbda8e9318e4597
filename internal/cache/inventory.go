package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix     = "user:%d"
	PostKeyPrefix     = "post:%d"
	CircleKeyPrefix   = "circle:%d"
	PublicFeedKey     = "feed:public"
	LinkPreviewPrefix = "linkpreview:%s"
)

const (
	UserTTL        = 5 * time.Minute
	PostTTL        = 30 * time.Minute
	CircleTTL      = 10 * time.Minute
	PublicFeedTTL  = 30 * time.Second
	LinkPreviewTTL = 6 * time.Hour
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func CircleKey(circleID uint) string {
	return fmt.Sprintf(CircleKeyPrefix, circleID)
}

func LinkPreviewKey(url string) string {
	return fmt.Sprintf(LinkPreviewPrefix, url)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}

func InvalidateCircle(ctx context.Context, circleID uint) {
	Invalidate(ctx, CircleKey(circleID))
}

func InvalidatePublicFeed(ctx context.Context) {
	Invalidate(ctx, PublicFeedKey)
}
