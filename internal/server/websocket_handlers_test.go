package server

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"campushub/internal/models"
	"campushub/internal/notifications"
	"campushub/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type socketEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// recvSocketEvent pulls the next queued message off a client's send
// buffer, failing the test if nothing arrives.
func recvSocketEvent(t *testing.T, cl *notifications.Client) socketEvent {
	t.Helper()
	select {
	case raw := <-cl.Send:
		var ev socketEvent
		require.NoError(t, json.Unmarshal(raw, &ev))
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("expected a socket event, got none")
		return socketEvent{}
	}
}

func TestSocketCreatePost_BroadcastsToChannelRoom(t *testing.T) {
	s, author, channel := newPostTestServer(t)
	ctx := context.Background()

	cl, err := s.hub.Register(author.ID, nil)
	require.NoError(t, err)
	s.hub.Join(cl, notifications.ChannelRoom(channel.ID))

	s.handleSocketCreatePost(ctx, cl, socketRequest{
		Type:      "create_post",
		ChannelID: channel.ID,
		Content:   "posted over the socket",
	})

	ev := recvSocketEvent(t, cl)
	assert.Equal(t, EventNewPost, ev.Type)

	var post models.Post
	require.NoError(t, json.Unmarshal(ev.Payload, &post))
	assert.Equal(t, "posted over the socket", post.Content)
	require.NotNil(t, post.ChannelID)
	assert.Equal(t, channel.ID, *post.ChannelID)

	var count int64
	require.NoError(t, s.db.Model(&models.Post{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSocketCreatePost_WithoutTargetReturnsError(t *testing.T) {
	s, author, _ := newPostTestServer(t)
	ctx := context.Background()

	cl, err := s.hub.Register(author.ID, nil)
	require.NoError(t, err)

	s.handleSocketCreatePost(ctx, cl, socketRequest{
		Type:    "create_post",
		Content: "nowhere to go",
	})

	ev := recvSocketEvent(t, cl)
	assert.Equal(t, "error", ev.Type)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(ev.Payload, &payload))
	assert.Equal(t, "create_post", payload["request"])

	var count int64
	require.NoError(t, s.db.Model(&models.Post{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSocketSendDM_PersistsAndNotifiesRecipient(t *testing.T) {
	s, sender, _ := newPostTestServer(t)
	ctx := context.Background()

	recipient := &models.User{Username: "reader", Email: "reader@e.com"}
	require.NoError(t, s.db.Create(recipient).Error)

	// Registration puts the recipient in their user room, where
	// dm_notification lands without an explicit conversation join.
	recipientCl, err := s.hub.Register(recipient.ID, nil)
	require.NoError(t, err)
	senderCl, err := s.hub.Register(sender.ID, nil)
	require.NoError(t, err)

	s.handleSocketSendDM(ctx, senderCl, socketRequest{
		Type:        "send_dm",
		RecipientID: recipient.ID,
		Content:     "hello over the wire",
	})

	ev := recvSocketEvent(t, recipientCl)
	assert.Equal(t, EventDMNotification, ev.Type)

	var payload struct {
		ConversationID uint   `json:"conversation_id"`
		SenderID       uint   `json:"sender_id"`
		Preview        string `json:"preview"`
	}
	require.NoError(t, json.Unmarshal(ev.Payload, &payload))
	assert.Equal(t, sender.ID, payload.SenderID)
	assert.Equal(t, "hello over the wire", payload.Preview)
	assert.NotZero(t, payload.ConversationID)

	var count int64
	require.NoError(t, s.db.Model(&models.DirectMessage{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSocketSendDM_ReceiveDMReachesConversationRoom(t *testing.T) {
	s, sender, _ := newPostTestServer(t)
	ctx := context.Background()

	recipient := &models.User{Username: "reader", Email: "reader@e.com"}
	require.NoError(t, s.db.Create(recipient).Error)

	// Prime the conversation so the recipient can sit in its room.
	first, err := s.dmService.SendMessage(ctx, service.SendMessageInput{
		SenderID:    sender.ID,
		RecipientID: recipient.ID,
		Content:     "first",
	})
	require.NoError(t, err)

	recipientCl, err := s.hub.Register(recipient.ID, nil)
	require.NoError(t, err)
	s.hub.Join(recipientCl, notifications.ConversationRoom(first.ConversationID))

	senderCl, err := s.hub.Register(sender.ID, nil)
	require.NoError(t, err)

	s.handleSocketSendDM(ctx, senderCl, socketRequest{
		Type:        "send_dm",
		RecipientID: recipient.ID,
		Content:     "second",
	})

	ev := recvSocketEvent(t, recipientCl)
	assert.Equal(t, EventReceiveDM, ev.Type)

	var message models.DirectMessage
	require.NoError(t, json.Unmarshal(ev.Payload, &message))
	assert.Equal(t, "second", message.Content)
	assert.Equal(t, first.ConversationID, message.ConversationID)
}

func TestSocketSendDM_InvalidMessageReturnsError(t *testing.T) {
	s, sender, _ := newPostTestServer(t)
	ctx := context.Background()

	senderCl, err := s.hub.Register(sender.ID, nil)
	require.NoError(t, err)

	s.handleSocketSendDM(ctx, senderCl, socketRequest{
		Type:        "send_dm",
		RecipientID: 0,
		Content:     "to nobody",
	})

	ev := recvSocketEvent(t, senderCl)
	assert.Equal(t, "error", ev.Type)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(ev.Payload, &payload))
	assert.Equal(t, "send_dm", payload["request"])
}
