package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_sent_total",
			Help: "Messages persisted, by send path",
		},
		[]string{"path"}, // "http" or "socket"
	)

	BroadcastsDelivered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_broadcast_frames_delivered_total",
			Help: "Frames enqueued to room members",
		},
	)

	BroadcastsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_broadcast_frames_dropped_total",
			Help: "Frames dropped because a client's send queue was full",
		},
	)

	ConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_ws_connections_open",
			Help: "Live websocket connections",
		},
	)

	JoinsRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_room_joins_rejected_total",
			Help: "Room join requests denied by the membership check",
		},
	)

	RateLimitHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_rate_limit_hits_total",
			Help: "Requests rejected by the token bucket",
		},
	)
)
