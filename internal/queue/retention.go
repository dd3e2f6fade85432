package queue

import (
	"time"

	"github.com/Aeyroxx/lace-allure-queue-system/internal/domain"
)

// RetentionPolicy decides when a completed queue item stops appearing in
// query results. The policy runs lazily on every read, not on a background
// timer. Which policy is active is a deployment choice tied to the storage
// backend, never a runtime branch inside the Service.
type RetentionPolicy interface {
	// Keep reports whether the item stays in the returned collection.
	Keep(item domain.QueueItem, now time.Time) bool
	// Prunes reports whether filtered-out items are also removed from
	// storage on the read that observed them.
	Prunes() bool
	// Name identifies the policy in logs.
	Name() string
}

// TimeBoxedRetention drops done items whose last update is older than the
// window and durably removes them from storage. Items in any other status
// are retained regardless of age. Used with the file backend.
type TimeBoxedRetention struct {
	Window time.Duration
}

func (r TimeBoxedRetention) Keep(item domain.QueueItem, now time.Time) bool {
	if item.Status != domain.StatusDone {
		return true
	}
	return now.Sub(item.UpdatedAt) < r.Window
}

func (r TimeBoxedRetention) Prunes() bool { return true }

func (r TimeBoxedRetention) Name() string { return "time-boxed" }

// HideDoneRetention excludes all done items unconditionally, treating done
// as a terminal, queue-invisible state. Nothing is removed from storage.
// Used with the document-store backend.
type HideDoneRetention struct{}

func (HideDoneRetention) Keep(item domain.QueueItem, _ time.Time) bool {
	return item.Status != domain.StatusDone
}

func (HideDoneRetention) Prunes() bool { return false }

func (HideDoneRetention) Name() string { return "hide-done" }
