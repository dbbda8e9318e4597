package notifications

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recvAll(c *Client) []string {
	var out []string
	for {
		select {
		case msg := <-c.Send:
			out = append(out, string(msg))
		default:
			return out
		}
	}
}

func TestRoomHub_RegisterJoinsUserRoom(t *testing.T) {
	hub := NewRoomHub()

	client, err := hub.Register(10, nil)
	require.NoError(t, err)

	assert.True(t, hub.InRoom(client, UserRoom(10)))
	assert.Equal(t, 1, hub.RoomSize(UserRoom(10)))

	hub.BroadcastUser(10, `{"type":"dm_notification"}`)
	assert.Equal(t, []string{`{"type":"dm_notification"}`}, recvAll(client))
}

func TestRoomHub_BroadcastReachesOnlyRoomMembers(t *testing.T) {
	hub := NewRoomHub()

	member, err := hub.Register(1, nil)
	require.NoError(t, err)
	outsider, err := hub.Register(2, nil)
	require.NoError(t, err)

	room := CircleTimelineRoom(3, 0)
	hub.Join(member, room)

	hub.BroadcastRoom(room, `{"type":"new_post"}`)

	assert.Equal(t, []string{`{"type":"new_post"}`}, recvAll(member))
	assert.Empty(t, recvAll(outsider))
}

func TestRoomHub_BroadcastToEmptyRoomIsNoop(t *testing.T) {
	hub := NewRoomHub()
	hub.BroadcastRoom(ChannelRoom(99), "payload")
}

func TestRoomHub_LeaveStopsDelivery(t *testing.T) {
	hub := NewRoomHub()

	client, err := hub.Register(4, nil)
	require.NoError(t, err)

	room := ChannelRoom(1)
	hub.Join(client, room)
	hub.Leave(client, room)

	assert.False(t, hub.InRoom(client, room))
	hub.BroadcastRoom(room, "payload")
	assert.Empty(t, recvAll(client))
}

func TestRoomHub_UnregisterClearsAllRooms(t *testing.T) {
	hub := NewRoomHub()

	client, err := hub.Register(5, nil)
	require.NoError(t, err)
	hub.Join(client, ChannelRoom(1))
	hub.Join(client, ConversationRoom(8))

	hub.UnregisterClient(client)

	assert.Equal(t, 0, hub.RoomSize(ChannelRoom(1)))
	assert.Equal(t, 0, hub.RoomSize(ConversationRoom(8)))
	assert.Equal(t, 0, hub.RoomSize(UserRoom(5)))
}

func TestRoomHub_JoinIsIdempotent(t *testing.T) {
	hub := NewRoomHub()

	client, err := hub.Register(6, nil)
	require.NoError(t, err)
	room := ChannelRoom(2)
	hub.Join(client, room)
	hub.Join(client, room)

	assert.Equal(t, 1, hub.RoomSize(room))

	hub.BroadcastRoom(room, "once")
	assert.Equal(t, []string{"once"}, recvAll(client))
}

func TestRoomHub_PerUserConnectionLimit(t *testing.T) {
	hub := NewRoomHub()

	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register(7, nil)
		require.NoError(t, err)
	}
	_, err := hub.Register(7, nil)
	assert.Error(t, err)

	_ = hub.Shutdown(context.Background())
}
