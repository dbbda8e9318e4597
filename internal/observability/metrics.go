// Package observability exposes Prometheus metrics for realtime delivery.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebSocketRoomConnections is the gauge of connections per room.
	WebSocketRoomConnections = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "campushub_websocket_room_connections",
		Help: "Number of WebSocket connections per room",
	}, []string{"room"})

	// MessageThroughput counts messages broadcast per room and event type.
	MessageThroughput = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campushub_message_throughput_total",
		Help: "Total number of messages broadcast",
	}, []string{"room", "event_type"})

	// WebSocketConnectionsTotal is the gauge of total WebSocket connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "campushub_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketEventsTotal counts WebSocket events by type.
	WebSocketEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campushub_websocket_events_total",
		Help: "Total WebSocket events by type",
	}, []string{"event_type"})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campushub_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})
)

// RecordRoomJoin increments the per-room connection gauge.
func RecordRoomJoin(room string) {
	WebSocketRoomConnections.WithLabelValues(room).Inc()
}

// RecordRoomLeave decrements the per-room connection gauge.
func RecordRoomLeave(room string) {
	WebSocketRoomConnections.WithLabelValues(room).Dec()
}

// RecordBroadcast increments throughput counters for a room broadcast.
func RecordBroadcast(room, eventType string) {
	MessageThroughput.WithLabelValues(room, eventType).Inc()
	WebSocketEventsTotal.WithLabelValues(eventType).Inc()
}
