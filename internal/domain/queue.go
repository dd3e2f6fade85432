package domain

import (
	"fmt"
	"time"
)

// Status is the fulfillment state of a queue item. There is no enforced
// ordering between states - any status may follow any other.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
	StatusNextDay    Status = "next-day"
)

// ParseStatus validates a raw status string at the boundary.
// Unknown values are rejected, never stored.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(raw); s {
	case StatusPending, StatusInProgress, StatusDone, StatusNextDay:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
}

// QueueItem is one customer order tracked through fulfillment states.
type QueueItem struct {
	ID          string     `json:"id"`
	ProductID   string     `json:"productId,omitempty"`
	ProductName string     `json:"productName"`
	Size        string     `json:"size"`
	Color       string     `json:"color"`
	Quantity    int        `json:"quantity"`
	Courier     string     `json:"courier"`
	Status      Status     `json:"status"`
	Notes       string     `json:"notes,omitempty"`
	FollowUps   []FollowUp `json:"followUps"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// FollowUp is an append-only timestamped note attached to a queue item.
// Immutable once created; never independently addressable.
type FollowUp struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// NewQueueItem carries caller-provided fields for queue item creation.
// ID and timestamps are assigned by the storage backend; Status defaults
// to pending when empty.
type NewQueueItem struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Size        string `json:"size"`
	Color       string `json:"color"`
	Quantity    int    `json:"quantity"`
	Courier     string `json:"courier"`
	Notes       string `json:"notes"`
	Status      Status `json:"status"`
}
