package notifications

import (
	"context"
	"log"
	"runtime/debug"

	"github.com/redis/go-redis/v9"
)

// Notifier publishes room messages into Redis so every server instance can
// fan them out to its local websocket clients.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishRoom sends a payload to a room's Redis channel.
func (n *Notifier) PublishRoom(ctx context.Context, room, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, RoomChannel(room), payload).Err()
}

// PublishUser sends a payload to a user's room channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, payload string) error {
	return n.PublishRoom(ctx, UserRoom(userID), payload)
}

// StartRoomSubscriber subscribes to pattern `room:*` and calls onMessage for
// each incoming message. onMessage receives channel and payload.
func (n *Notifier) StartRoomSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, "room:*")
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in RoomSubscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}
