package queue

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/Aeyroxx/lace-allure-queue-system/internal/domain"
	apperrors "github.com/Aeyroxx/lace-allure-queue-system/internal/errors"
	"github.com/Aeyroxx/lace-allure-queue-system/internal/metrics"
	"github.com/Aeyroxx/lace-allure-queue-system/internal/storage"
)

// Service is the queue repository: it owns the working set during a request
// and is the only caller of the storage backend. The mutex serializes the
// read-modify-write cycle of each operation so interleaved requests cannot
// lose updates to each other.
type Service struct {
	mu     sync.Mutex
	store  storage.Store
	events domain.EventPublisher
	policy RetentionPolicy
	clock  clockwork.Clock
}

// NewService wires the repository to its storage backend, event publisher
// and retention policy. events may be nil during tests.
func NewService(store storage.Store, events domain.EventPublisher, policy RetentionPolicy, clock clockwork.Clock) *Service {
	return &Service{
		store:  store,
		events: events,
		policy: policy,
		clock:  clock,
	}
}

func (s *Service) publish(event string, payload any) {
	if s.events != nil {
		s.events.Publish(event, payload)
	}
}

// publishSnapshot emits the full post-retention queue after a mutation, so
// listeners that ignore delta events still converge.
func (s *Service) publishSnapshot(ctx context.Context) {
	items, err := s.queueLocked(ctx)
	if err != nil {
		slog.Error("Failed to load queue for snapshot broadcast", "error", err)
		return
	}
	s.publish(domain.EventQueueUpdated, items)
}

// GetQueue loads all items and applies the retention policy. When the policy
// prunes, expired items are durably removed on the read that observed them.
func (s *Service) GetQueue(ctx context.Context) ([]domain.QueueItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queueLocked(ctx)
}

func (s *Service) queueLocked(ctx context.Context) ([]domain.QueueItem, error) {
	items, err := s.store.LoadQueue(ctx)
	if err != nil {
		return nil, apperrors.StorageError("failed to load queue", err)
	}

	now := s.clock.Now()
	kept := make([]domain.QueueItem, 0, len(items))
	var expired []string
	for _, item := range items {
		if s.policy.Keep(item, now) {
			kept = append(kept, item)
		} else {
			expired = append(expired, item.ID)
		}
	}

	if s.policy.Prunes() && len(expired) > 0 {
		if err := s.store.PruneQueueItems(ctx, expired); err != nil {
			return nil, apperrors.StorageError("failed to prune expired queue items", err)
		}
		metrics.QueueItemsExpired.Add(float64(len(expired)))
		slog.Info("Expired queue items pruned", "count", len(expired), "policy", s.policy.Name())
	}

	return kept, nil
}

// AddQueueItem validates the input, persists the new item with status
// pending unless explicitly overridden, and broadcasts both the created
// item and a full queue snapshot.
func (s *Service) AddQueueItem(ctx context.Context, input domain.NewQueueItem) (domain.QueueItem, error) {
	input.ProductName = strings.TrimSpace(input.ProductName)
	input.Size = strings.TrimSpace(input.Size)
	input.Courier = strings.TrimSpace(input.Courier)

	switch {
	case input.ProductName == "":
		return domain.QueueItem{}, apperrors.ValidationError("productName is required")
	case input.Size == "":
		return domain.QueueItem{}, apperrors.ValidationError("size is required")
	case input.Quantity < 1:
		return domain.QueueItem{}, apperrors.ValidationError("quantity must be at least 1")
	case input.Courier == "":
		return domain.QueueItem{}, apperrors.ValidationError("courier is required")
	}

	if input.Status == "" {
		input.Status = domain.StatusPending
	} else if _, err := domain.ParseStatus(string(input.Status)); err != nil {
		return domain.QueueItem{}, apperrors.ValidationError(err.Error()).WithField("status", string(input.Status))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.store.SaveQueueItem(ctx, input)
	if err != nil {
		return domain.QueueItem{}, apperrors.StorageError("failed to save queue item", err)
	}

	s.publish(domain.EventNewQueueItem, item)
	s.publishSnapshot(ctx)
	return item, nil
}

// UpdateQueueItemStatus overwrites the status of an existing item. There is
// no transition-legality check: any status may follow any status.
func (s *Service) UpdateQueueItemStatus(ctx context.Context, id, rawStatus string) (domain.QueueItem, error) {
	status, err := domain.ParseStatus(rawStatus)
	if err != nil {
		return domain.QueueItem{}, apperrors.ValidationError(err.Error()).WithField("status", rawStatus)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.store.UpdateQueueItemStatus(ctx, id, status)
	if errors.Is(err, domain.ErrQueueItemNotFound) {
		return domain.QueueItem{}, apperrors.NotFoundError("queue item not found").WithField("id", id)
	}
	if err != nil {
		return domain.QueueItem{}, apperrors.StorageError("failed to update queue item status", err)
	}

	s.publish(domain.EventStatusUpdated, domain.StatusDelta{ID: item.ID, Status: item.Status})
	s.publishSnapshot(ctx)
	return item, nil
}

// AddFollowUp appends a follow-up note to an existing item and returns the
// updated parent. The last element of FollowUps is the created note.
func (s *Service) AddFollowUp(ctx context.Context, id, message string) (domain.QueueItem, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return domain.QueueItem{}, apperrors.ValidationError("message is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.store.AppendFollowUp(ctx, id, message)
	if errors.Is(err, domain.ErrQueueItemNotFound) {
		return domain.QueueItem{}, apperrors.NotFoundError("queue item not found").WithField("id", id)
	}
	if err != nil {
		return domain.QueueItem{}, apperrors.StorageError("failed to add follow-up", err)
	}

	s.publish(domain.EventFollowUpAdded, domain.FollowUpDelta{
		ID:       item.ID,
		FollowUp: item.FollowUps[len(item.FollowUps)-1],
	})
	s.publishSnapshot(ctx)
	return item, nil
}

// DeleteQueueItem removes an item by id. Deleting an absent id is benign:
// it returns false, never an error.
func (s *Service) DeleteQueueItem(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted, err := s.store.DeleteQueueItem(ctx, id)
	if err != nil {
		return false, apperrors.StorageError("failed to delete queue item", err)
	}
	if deleted {
		s.publish(domain.EventQueueItemDeleted, domain.DeleteDelta{ID: id})
		s.publishSnapshot(ctx)
	}
	return deleted, nil
}

// GetProducts loads the product catalog. Products never expire.
func (s *Service) GetProducts(ctx context.Context) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.store.LoadProducts(ctx)
	if err != nil {
		return nil, apperrors.StorageError("failed to load products", err)
	}
	return products, nil
}

// AddProduct validates and persists a new catalog entry.
func (s *Service) AddProduct(ctx context.Context, input domain.NewProduct) (domain.Product, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Sizes = cleanList(input.Sizes)
	input.Colors = cleanList(input.Colors)

	switch {
	case input.Name == "":
		return domain.Product{}, apperrors.ValidationError("name is required")
	case len(input.Sizes) == 0:
		return domain.Product{}, apperrors.ValidationError("at least one size is required")
	case len(input.Colors) == 0:
		return domain.Product{}, apperrors.ValidationError("at least one color is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.store.SaveProduct(ctx, input)
	if err != nil {
		return domain.Product{}, apperrors.StorageError("failed to save product", err)
	}

	s.publishProducts(ctx)
	return product, nil
}

// DeleteProduct removes a product by id. Same benign-false semantics as
// DeleteQueueItem.
func (s *Service) DeleteProduct(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted, err := s.store.DeleteProduct(ctx, id)
	if err != nil {
		return false, apperrors.StorageError("failed to delete product", err)
	}
	if deleted {
		s.publishProducts(ctx)
	}
	return deleted, nil
}

func (s *Service) publishProducts(ctx context.Context) {
	products, err := s.store.LoadProducts(ctx)
	if err != nil {
		slog.Error("Failed to load products for broadcast", "error", err)
		return
	}
	s.publish(domain.EventProductsUpdated, products)
}

// cleanList trims entries and drops empties, preserving order.
func cleanList(values []string) []string {
	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			cleaned = append(cleaned, v)
		}
	}
	return cleaned
}
