package notifications

import (
	"fmt"
	"strings"
)

// Room name scheme. Every broadcast targets exactly one named room:
//
//	channel_{id}          posts on a global or circle channel
//	circle_{cid}_tl_{tid} circle timeline, tid 0 is the default timeline
//	user_{id}             per-user notifications
//	conversation_{id}     direct message threads
func ChannelRoom(channelID uint) string {
	return fmt.Sprintf("channel_%d", channelID)
}

// CircleTimelineRoom names a circle timeline room. timelineID 0 denotes the
// circle's default (untagged) timeline.
func CircleTimelineRoom(circleID, timelineID uint) string {
	return fmt.Sprintf("circle_%d_tl_%d", circleID, timelineID)
}

func UserRoom(userID uint) string {
	return fmt.Sprintf("user_%d", userID)
}

func ConversationRoom(conversationID uint) string {
	return fmt.Sprintf("conversation_%d", conversationID)
}

const roomChannelPrefix = "room:"

// RoomChannel derives the Redis pub/sub channel for a room.
func RoomChannel(room string) string {
	return roomChannelPrefix + room
}

// RoomFromChannel recovers the room name from a Redis channel name.
func RoomFromChannel(channel string) (string, bool) {
	if !strings.HasPrefix(channel, roomChannelPrefix) {
		return "", false
	}
	room := strings.TrimPrefix(channel, roomChannelPrefix)
	if room == "" {
		return "", false
	}
	return room, true
}
