package broadcast

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/Aeyroxx/lace-allure-queue-system/internal/domain"
	"github.com/Aeyroxx/lace-allure-queue-system/internal/metrics"
)

const snapshotTimeout = 5 * time.Second

// Envelope is the wire format of every pushed message.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// SnapshotFunc produces the current full queue state for catch-up delivery.
type SnapshotFunc func(ctx context.Context) ([]domain.QueueItem, error)

// --- Command types ---

type hubCmd interface{ isHubCmd() }

type baseHubCmd struct{}

func (baseHubCmd) isHubCmd() {}

type registerCmd struct {
	baseHubCmd
	connection   *websocket.Conn
	errorChannel chan error
}

type unregisterCmd struct {
	baseHubCmd
	connection *websocket.Conn
}

type broadcastCmd struct {
	baseHubCmd
	event string
	data  []byte
}

type clientCountCmd struct {
	baseHubCmd
	replyChannel chan int
}

type stopCmd struct {
	baseHubCmd
}

// Hub manages all viewer WebSocket connections for the shared queue screen.
// One actor goroutine owns the client set; all interaction goes through the
// command channel. Implements domain.EventPublisher.
type Hub struct {
	cmdCh    chan hubCmd
	clock    clockwork.Clock
	clients  map[*websocket.Conn]*clientWriter
	snapshot SnapshotFunc
}

// NewHub creates the hub and starts its actor goroutine. snapshot is called
// once per new connection to deliver catch-up state; it may be nil in tests.
func NewHub(snapshot SnapshotFunc, clock clockwork.Clock) *Hub {
	h := &Hub{
		cmdCh:    make(chan hubCmd, 256),
		clock:    clock,
		clients:  make(map[*websocket.Conn]*clientWriter),
		snapshot: snapshot,
	}
	go h.run()
	return h
}

// SetSnapshot installs the snapshot source after construction. The hub and
// the queue service reference each other, so one side is wired late.
func (h *Hub) SetSnapshot(snapshot SnapshotFunc) {
	h.snapshot = snapshot
}

func (h *Hub) run() {
	for cmd := range h.cmdCh {
		switch c := cmd.(type) {
		case registerCmd:
			h.handleRegister(c)
		case unregisterCmd:
			h.handleUnregister(c.connection)
		case broadcastCmd:
			h.handleBroadcast(c)
		case clientCountCmd:
			c.replyChannel <- len(h.clients)
		case stopCmd:
			h.handleStop()
			return
		default:
			slog.Error("Hub: unknown command type", "command", cmd)
		}
	}
}

func (h *Hub) handleRegister(c registerCmd) {
	cw := newClientWriter(c.connection, h.clock)
	h.clients[c.connection] = cw
	metrics.BroadcastConnectedClients.Set(float64(len(h.clients)))
	slog.Info("Viewer connected", "total_clients", len(h.clients))
	c.errorChannel <- nil

	// Catch-up snapshot goes to this connection only, off the actor
	// goroutine so a slow storage read cannot stall the fan-out.
	if h.snapshot != nil {
		go h.sendSnapshot(cw)
	}
}

func (h *Hub) sendSnapshot(cw *clientWriter) {
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	items, err := h.snapshot(ctx)
	if err != nil {
		slog.Error("Failed to load snapshot for new viewer", "error", err)
		return
	}

	data, err := json.Marshal(Envelope{Event: domain.EventQueueUpdated, Data: items})
	if err != nil {
		slog.Error("Failed to marshal snapshot", "error", err)
		return
	}

	select {
	case cw.sendChannel <- data:
		metrics.BroadcastMessagesSent.WithLabelValues(domain.EventQueueUpdated).Inc()
	default:
		// Buffer already full right after connect; the client will catch
		// up from the next snapshot broadcast.
	}
}

func (h *Hub) handleUnregister(connection *websocket.Conn) {
	cw, exists := h.clients[connection]
	if !exists {
		return
	}

	cw.stop()
	delete(h.clients, connection)
	metrics.BroadcastConnectedClients.Set(float64(len(h.clients)))
	slog.Info("Viewer disconnected", "remaining_clients", len(h.clients))
}

func (h *Hub) handleBroadcast(c broadcastCmd) {
	var slow []*websocket.Conn
	for conn, cw := range h.clients {
		select {
		case cw.sendChannel <- c.data:
			metrics.BroadcastMessagesSent.WithLabelValues(c.event).Inc()
		default:
			slow = append(slow, conn)
		}
	}

	for _, conn := range slow {
		slog.Warn("Disconnecting slow viewer client")
		metrics.BroadcastSlowClientDisconnects.Inc()
		h.handleUnregister(conn)
	}
}

func (h *Hub) handleStop() {
	for conn, cw := range h.clients {
		cw.stopGraceful("server shutting down")
		delete(h.clients, conn)
	}
	metrics.BroadcastConnectedClients.Set(0)
}

// --- Public API ---

// Register adds a viewer connection and schedules its catch-up snapshot.
func (h *Hub) Register(connection *websocket.Conn) error {
	errCh := make(chan error, 1)
	h.cmdCh <- registerCmd{connection: connection, errorChannel: errCh}
	return <-errCh
}

// Unregister removes a viewer connection and stops its writer.
func (h *Hub) Unregister(connection *websocket.Conn) {
	h.cmdCh <- unregisterCmd{connection: connection}
}

// Publish fans an event out to every connected viewer. Delivery is
// best-effort, at-most-once; implements domain.EventPublisher.
func (h *Hub) Publish(event string, payload any) {
	data, err := json.Marshal(Envelope{Event: event, Data: payload})
	if err != nil {
		slog.Error("Failed to marshal broadcast message", "event", event, "error", err)
		return
	}
	h.cmdCh <- broadcastCmd{event: event, data: data}
}

// ClientCount returns the number of connected viewers.
func (h *Hub) ClientCount() int {
	replyCh := make(chan int, 1)
	h.cmdCh <- clientCountCmd{replyChannel: replyCh}
	return <-replyCh
}

// Stop shuts down the hub, closing all viewer connections gracefully.
func (h *Hub) Stop() {
	h.cmdCh <- stopCmd{}
}
