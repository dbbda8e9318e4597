package notifications

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_NilRedisIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	assert.NoError(t, n.PublishRoom(context.Background(), ChannelRoom(1), "payload"))
	assert.NoError(t, n.PublishUser(context.Background(), 1, "payload"))
	assert.NoError(t, n.StartRoomSubscriber(context.Background(), nil))
}

func TestNotifier_RoomRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan [2]string, 4)
	require.NoError(t, n.StartRoomSubscriber(ctx, func(channel, payload string) {
		received <- [2]string{channel, payload}
	}))

	// Subscription is established asynchronously.
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, n.PublishRoom(context.Background(), ConversationRoom(5), `{"type":"receive_dm"}`))

	select {
	case msg := <-received:
		assert.Equal(t, "room:conversation_5", msg[0])
		assert.Equal(t, `{"type":"receive_dm"}`, msg[1])
	case <-time.After(time.Second):
		t.Fatal("no message received from room subscriber")
	}
}

func TestNotifier_SubscriberStopsOnCancel(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())

	var received int32
	require.NoError(t, n.StartRoomSubscriber(ctx, func(_, _ string) {
		atomic.AddInt32(&received, 1)
	}))
	time.Sleep(50 * time.Millisecond)

	cancel()
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, n.PublishRoom(context.Background(), ChannelRoom(1), "after-cancel"))
	assert.Never(t, func() bool {
		return atomic.LoadInt32(&received) > 0
	}, 200*time.Millisecond, 10*time.Millisecond)
}
