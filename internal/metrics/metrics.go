// Package metrics defines the Prometheus collectors shared across the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Storage metrics
var (
	// StorageOpsTotal tracks storage operations by backend, operation and status
	StorageOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_operations_total",
			Help: "Total storage operations by backend, operation and status",
		},
		[]string{"backend", "operation", "status"},
	)

	// StorageOpDuration tracks storage operation latency in seconds
	StorageOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storage_operation_duration_seconds",
			Help:    "Storage operation duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"backend", "operation"},
	)

	// StorageDegradedReads tracks reads that fell back to an empty result
	StorageDegradedReads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_degraded_reads_total",
			Help: "Reads that degraded to an empty result after a read or parse failure",
		},
		[]string{"backend", "collection"},
	)

	// QueueItemsExpired tracks queue items dropped by the retention policy
	QueueItemsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "queue_items_expired_total",
			Help: "Completed queue items removed by the retention policy",
		},
	)
)

// Broadcast metrics
var (
	// BroadcastConnectedClients tracks the number of connected WebSocket viewers
	BroadcastConnectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "broadcast_connected_clients",
			Help: "Number of connected WebSocket viewer clients",
		},
	)

	// BroadcastMessagesSent tracks messages fanned out by event name
	BroadcastMessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcast_messages_sent_total",
			Help: "Messages fanned out to viewers by event name",
		},
		[]string{"event"},
	)

	// BroadcastSlowClientDisconnects tracks clients dropped for full send buffers
	BroadcastSlowClientDisconnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcast_slow_client_disconnects_total",
			Help: "Clients disconnected because their send buffer was full",
		},
	)

	// WebSocketPingFailures tracks failed keepalive pings
	WebSocketPingFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_ping_failures_total",
			Help: "Failed WebSocket keepalive pings",
		},
	)

	// WebSocketConnectionsRejected tracks connections rejected by the limiter
	WebSocketConnectionsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_connections_rejected_total",
			Help: "WebSocket connections rejected by limit reason",
		},
		[]string{"reason"},
	)
)
