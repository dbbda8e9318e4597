package server

import (
	"context"
	"encoding/json"
	"log"

	"campushub/internal/models"
	"campushub/internal/notifications"
	"campushub/internal/observability"
)

// Event type constants prevent typos in event names.
const (
	EventNewPost             = "new_post"
	EventNewComment          = "new_comment"
	EventLikesUpdated        = "likes_updated"
	EventCommentLikesUpdated = "comment_likes_updated"
	EventReactionUpdated     = "reaction_updated"
	EventPostDeleted         = "post_deleted"
	EventReceiveDM           = "receive_dm"
	EventDMNotification      = "dm_notification"
)

// emitRoomEvent fans an event out to one named room, after the DB commit.
// With Redis wired the message travels through pub/sub so every instance
// delivers it; without Redis the local hub broadcasts directly. An empty
// room means the mutation has no room affiliation and is skipped.
func (s *Server) emitRoomEvent(room, eventType string, payload interface{}) {
	if room == "" {
		return
	}
	event := map[string]interface{}{
		"type":    eventType,
		"payload": payload,
	}
	eventJSON, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal %s event: %v", eventType, err)
		return
	}
	message := string(eventJSON)

	observability.RecordBroadcast(room, eventType)
	if s.notifier != nil {
		if err := s.notifier.PublishRoom(context.Background(), room, message); err != nil {
			log.Printf("failed to publish %s event to room %s: %v", eventType, room, err)
		}
		return
	}
	if s.hub != nil {
		s.hub.BroadcastRoom(room, message)
	}
}

// roomForPost resolves a post's single broadcast room. Channel posts map
// to channel_{id}; circle posts map to circle_{cid}_tl_{tlid} with tl 0
// as the default timeline. Posts with neither affiliation return "".
func roomForPost(post *models.Post) string {
	if post == nil {
		return ""
	}
	if post.ChannelID != nil {
		return notifications.ChannelRoom(*post.ChannelID)
	}
	if post.CircleID != nil {
		var tl uint
		if post.TimelineID != nil {
			tl = *post.TimelineID
		}
		return notifications.CircleTimelineRoom(*post.CircleID, tl)
	}
	return ""
}

func userSummary(user models.User) map[string]interface{} {
	return map[string]interface{}{
		"id":       user.ID,
		"username": user.Username,
		"avatar":   user.Avatar,
	}
}
