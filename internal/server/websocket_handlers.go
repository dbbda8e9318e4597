package server

import (
	"context"
	"encoding/json"
	"log"

	"campushub/internal/middleware"
	"campushub/internal/models"
	"campushub/internal/notifications"
	"campushub/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// socketRequest is the payload of an inbound socket message. Join and
// leave messages carry the room identifiers; create_post and send_dm
// additionally carry the content fields.
type socketRequest struct {
	Type           string `json:"type"`
	ChannelID      uint   `json:"channel_id"`
	CircleID       uint   `json:"circle_id"`
	TimelineID     uint   `json:"tl_id"`
	ConversationID uint   `json:"conversation_id"`
	RecipientID    uint   `json:"recipient_id"`
	Content        string `json:"content"`
}

// WebsocketHandler upgrades the connection and services room join/leave
// requests. Every join is authorized server-side: a client may only sit
// in rooms whose content it could read over HTTP.
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		middleware.ActiveWebSockets.Inc()
		defer middleware.ActiveWebSockets.Dec()

		ctx := context.Background()

		// Get userID from context locals (set by AuthRequired middleware)
		userIDVal := conn.Locals("userID")
		if userIDVal == nil {
			log.Printf("WebSocket: Unauthenticated connection attempt")
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}
		userID := userIDVal.(uint)

		if s.hub == nil {
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			log.Printf("WebSocket: Failed to register user %d: %v", userID, err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		client.IncomingHandler = func(cl *notifications.Client, message []byte) {
			var req socketRequest
			if err := json.Unmarshal(message, &req); err != nil {
				log.Printf("WebSocket: Invalid message format from user %d", userID)
				return
			}

			switch req.Type {
			case "join_channel":
				s.handleJoinChannel(ctx, cl, req)
			case "leave_channel":
				if req.ChannelID != 0 {
					s.hub.Leave(cl, notifications.ChannelRoom(req.ChannelID))
				}
			case "join_tl_room":
				s.handleJoinTimeline(ctx, cl, req)
			case "leave_tl_room":
				if req.CircleID != 0 {
					s.hub.Leave(cl, notifications.CircleTimelineRoom(req.CircleID, req.TimelineID))
				}
			case "join_dm_room":
				s.handleJoinConversation(ctx, cl, req)
			case "leave_dm_room":
				if req.ConversationID != 0 {
					s.hub.Leave(cl, notifications.ConversationRoom(req.ConversationID))
				}
			case "create_post":
				s.handleSocketCreatePost(ctx, cl, req)
			case "send_dm":
				s.handleSocketSendDM(ctx, cl, req)
			}
		}

		// Confirm the connection; the user room was joined on registration.
		welcome, _ := json.Marshal(map[string]interface{}{
			"type":    "connected",
			"payload": map[string]interface{}{"user_id": userID},
		})
		client.TrySend(welcome)

		// Start write pump in a goroutine
		go client.WritePump()

		// Read pump runs in the main handler goroutine (blocking)
		client.ReadPump()
	})
}

func (s *Server) handleJoinChannel(ctx context.Context, cl *notifications.Client, req socketRequest) {
	if req.ChannelID == 0 {
		return
	}
	channel, err := s.channelRepo.GetByID(ctx, req.ChannelID)
	if err != nil || channel == nil {
		return
	}
	// Circle-owned channels require circle membership; global ones are open.
	if channel.CircleID != nil {
		membership, err := s.circleRepo.GetMembership(ctx, *channel.CircleID, cl.UserID)
		if err != nil || membership == nil {
			s.sendJoinDenied(cl, notifications.ChannelRoom(req.ChannelID))
			return
		}
	}
	s.hub.Join(cl, notifications.ChannelRoom(req.ChannelID))
	s.sendJoined(cl, notifications.ChannelRoom(req.ChannelID))
}

func (s *Server) handleJoinTimeline(ctx context.Context, cl *notifications.Client, req socketRequest) {
	if req.CircleID == 0 {
		return
	}
	room := notifications.CircleTimelineRoom(req.CircleID, req.TimelineID)

	membership, err := s.circleRepo.GetMembership(ctx, req.CircleID, cl.UserID)
	if err != nil || membership == nil {
		s.sendJoinDenied(cl, room)
		return
	}
	// Non-default timelines additionally require timeline membership.
	if req.TimelineID != 0 {
		timeline, err := s.timelineRepo.GetByID(ctx, req.TimelineID)
		if err != nil || timeline == nil || timeline.CircleID != req.CircleID {
			s.sendJoinDenied(cl, room)
			return
		}
		isMember, err := s.timelineRepo.IsMember(ctx, req.TimelineID, cl.UserID)
		if err != nil || !isMember {
			s.sendJoinDenied(cl, room)
			return
		}
	}
	s.hub.Join(cl, room)
	s.sendJoined(cl, room)
}

func (s *Server) handleJoinConversation(ctx context.Context, cl *notifications.Client, req socketRequest) {
	if req.ConversationID == 0 {
		return
	}
	room := notifications.ConversationRoom(req.ConversationID)

	if _, err := s.dmService.ConversationForUser(ctx, req.ConversationID, cl.UserID); err != nil {
		s.sendJoinDenied(cl, room)
		return
	}
	s.hub.Join(cl, room)
	s.sendJoined(cl, room)
}

// handleSocketCreatePost mirrors the HTTP post creation endpoints for
// clients publishing over the socket. The resulting new_post event
// reaches the author through the room like everyone else.
func (s *Server) handleSocketCreatePost(ctx context.Context, cl *notifications.Client, req socketRequest) {
	var (
		post *models.Post
		err  error
	)
	switch {
	case req.ChannelID != 0:
		post, err = s.postService.CreateChannelPost(ctx, service.CreateChannelPostInput{
			UserID:    cl.UserID,
			Content:   req.Content,
			ChannelID: req.ChannelID,
		})
	case req.CircleID != 0:
		post, err = s.postService.CreateCirclePost(ctx, service.CreateCirclePostInput{
			UserID:     cl.UserID,
			CircleID:   req.CircleID,
			TimelineID: req.TimelineID,
			Content:    req.Content,
		})
	default:
		err = models.NewValidationError("A channel or circle is required")
	}
	if err != nil {
		s.sendSocketError(cl, "create_post", err)
		return
	}
	s.emitRoomEvent(roomForPost(post), EventNewPost, post)
}

// handleSocketSendDM persists the message, then emits the same pair of
// events as the HTTP send endpoint.
func (s *Server) handleSocketSendDM(ctx context.Context, cl *notifications.Client, req socketRequest) {
	message, err := s.dmService.SendMessage(ctx, service.SendMessageInput{
		SenderID:    cl.UserID,
		RecipientID: req.RecipientID,
		Content:     req.Content,
	})
	if err != nil {
		s.sendSocketError(cl, "send_dm", err)
		return
	}

	s.emitRoomEvent(notifications.ConversationRoom(message.ConversationID),
		EventReceiveDM, message)
	s.emitRoomEvent(notifications.UserRoom(req.RecipientID), EventDMNotification, fiber.Map{
		"conversation_id": message.ConversationID,
		"sender_id":       cl.UserID,
		"preview":         message.Content,
	})
}

func (s *Server) sendJoined(cl *notifications.Client, room string) {
	msg, _ := json.Marshal(map[string]interface{}{
		"type":    "joined",
		"payload": map[string]string{"room": room},
	})
	cl.TrySend(msg)
}

func (s *Server) sendJoinDenied(cl *notifications.Client, room string) {
	msg, _ := json.Marshal(map[string]interface{}{
		"type":    "join_denied",
		"payload": map[string]string{"room": room},
	})
	cl.TrySend(msg)
}

func (s *Server) sendSocketError(cl *notifications.Client, requestType string, err error) {
	msg, _ := json.Marshal(map[string]interface{}{
		"type": "error",
		"payload": map[string]string{
			"request": requestType,
			"error":   err.Error(),
		},
	})
	cl.TrySend(msg)
}
