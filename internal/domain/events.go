package domain

// Event names pushed over the real-time channel. Every mutation emits a
// targeted delta event plus a full queue-updated snapshot, so listeners can
// consume whichever suits them.
const (
	EventNewQueueItem     = "new-queue-item"
	EventQueueUpdated     = "queue-updated"
	EventStatusUpdated    = "status-updated"
	EventFollowUpAdded    = "follow-up-added"
	EventQueueItemDeleted = "queue-item-deleted"
	EventProductsUpdated  = "products-updated"
)

// StatusDelta is the payload of a status-updated event.
type StatusDelta struct {
	ID     string `json:"id"`
	Status Status `json:"status"`
}

// FollowUpDelta is the payload of a follow-up-added event.
type FollowUpDelta struct {
	ID       string   `json:"id"`
	FollowUp FollowUp `json:"followUp"`
}

// DeleteDelta is the payload of a queue-item-deleted event.
type DeleteDelta struct {
	ID string `json:"id"`
}

// EventPublisher fans a state-change event out to all connected viewers.
// Delivery is best-effort, at-most-once per listener; a disconnected
// listener simply misses events until its snapshot catch-up on reconnect.
type EventPublisher interface {
	Publish(event string, payload any)
}
