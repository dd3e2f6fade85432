package storage

import (
	"context"
	"time"

	"github.com/Aeyroxx/lace-allure-queue-system/internal/domain"
	"github.com/Aeyroxx/lace-allure-queue-system/internal/metrics"
)

// Store abstracts over the two persistence backends. Every write is a full
// durable flush before returning: callers may assume the write is visible to
// the next read once the call resolves.
type Store interface {
	// LoadProducts returns all products. Unreadable or corrupt data degrades
	// to an empty slice with a logged diagnostic, never a parse error.
	LoadProducts(ctx context.Context) ([]domain.Product, error)
	// SaveProduct assigns a fresh id and timestamps, persists, and returns
	// the created entity.
	SaveProduct(ctx context.Context, data domain.NewProduct) (domain.Product, error)
	// DeleteProduct removes the matching product. Returns false, not an
	// error, when the id is unknown.
	DeleteProduct(ctx context.Context, id string) (bool, error)

	// LoadQueue returns all queue items, with the same degraded-read policy
	// as LoadProducts.
	LoadQueue(ctx context.Context) ([]domain.QueueItem, error)
	// SaveQueueItem assigns a fresh id and timestamps, persists, and returns
	// the created entity with FollowUps initialized empty.
	SaveQueueItem(ctx context.Context, data domain.NewQueueItem) (domain.QueueItem, error)
	// UpdateQueueItemStatus overwrites status and refreshes updatedAt.
	// Returns domain.ErrQueueItemNotFound when the id is unknown.
	UpdateQueueItemStatus(ctx context.Context, id string, status domain.Status) (domain.QueueItem, error)
	// AppendFollowUp appends a follow-up with a fresh id and timestamp and
	// refreshes the parent's updatedAt. Returns the updated parent item.
	AppendFollowUp(ctx context.Context, id, message string) (domain.QueueItem, error)
	// DeleteQueueItem removes the matching item. Returns false, not an
	// error, when the id is unknown.
	DeleteQueueItem(ctx context.Context, id string) (bool, error)
	// PruneQueueItems durably removes the given ids. Used by the retention
	// policy; unknown ids are ignored.
	PruneQueueItems(ctx context.Context, ids []string) error

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
	// Name identifies the backend in logs and metrics ("file" or "mongo").
	Name() string
}

// observeOp records the shared Prometheus counters for one storage operation.
func observeOp(backend, op string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.StorageOpsTotal.WithLabelValues(backend, op, status).Inc()
	metrics.StorageOpDuration.WithLabelValues(backend, op).Observe(time.Since(start).Seconds())
}
