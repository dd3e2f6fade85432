package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aeyroxx/lace-allure-queue-system/internal/domain"
	apperrors "github.com/Aeyroxx/lace-allure-queue-system/internal/errors"
	"github.com/Aeyroxx/lace-allure-queue-system/internal/storage"
)

// recordingPublisher captures events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	name    string
	payload any
}

func (p *recordingPublisher) Publish(event string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{name: event, payload: payload})
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, len(p.events))
	for i, e := range p.events {
		names[i] = e.name
	}
	return names
}

func (p *recordingPublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

func newTestService(t *testing.T, policy RetentionPolicy) (*Service, *storage.FileStore, *recordingPublisher, *clockwork.FakeClock) {
	t.Helper()

	clock := clockwork.NewFakeClock()
	store, err := storage.NewFileStore(t.TempDir(), clock)
	require.NoError(t, err)

	publisher := &recordingPublisher{}
	svc := NewService(store, publisher, policy, clock)
	return svc, store, publisher, clock
}

func newItemInput() domain.NewQueueItem {
	return domain.NewQueueItem{
		ProductName: "Embroidery",
		Size:        "M",
		Color:       "Black",
		Quantity:    2,
		Courier:     "Grab",
	}
}

func TestAddQueueItem_Defaults(t *testing.T) {
	svc, _, _, _ := newTestService(t, TimeBoxedRetention{Window: 24 * time.Hour})
	ctx := context.Background()

	item, err := svc.AddQueueItem(ctx, newItemInput())
	require.NoError(t, err)

	assert.NotEmpty(t, item.ID)
	assert.Equal(t, domain.StatusPending, item.Status)
	assert.Equal(t, []domain.FollowUp{}, item.FollowUps)

	queue, err := svc.GetQueue(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, item.ID, queue[0].ID)
}

func TestAddQueueItem_RoundTripPreservesFields(t *testing.T) {
	svc, _, _, _ := newTestService(t, TimeBoxedRetention{Window: 24 * time.Hour})
	ctx := context.Background()

	input := domain.NewQueueItem{
		ProductID:   "prod-7",
		ProductName: "DTF",
		Size:        "XL",
		Color:       "Navy",
		Quantity:    3,
		Courier:     "Lalamove",
		Notes:       "rush order",
		Status:      domain.StatusNextDay,
	}

	created, err := svc.AddQueueItem(ctx, input)
	require.NoError(t, err)

	queue, err := svc.GetQueue(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 1)

	got := queue[0]
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "prod-7", got.ProductID)
	assert.Equal(t, "DTF", got.ProductName)
	assert.Equal(t, "XL", got.Size)
	assert.Equal(t, "Navy", got.Color)
	assert.Equal(t, 3, got.Quantity)
	assert.Equal(t, "Lalamove", got.Courier)
	assert.Equal(t, "rush order", got.Notes)
	assert.Equal(t, domain.StatusNextDay, got.Status)
}

func TestAddQueueItem_Validation(t *testing.T) {
	svc, _, _, _ := newTestService(t, TimeBoxedRetention{Window: 24 * time.Hour})
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(*domain.NewQueueItem)
		message string
	}{
		{"missing product name", func(i *domain.NewQueueItem) { i.ProductName = "  " }, "productName is required"},
		{"missing size", func(i *domain.NewQueueItem) { i.Size = "" }, "size is required"},
		{"zero quantity", func(i *domain.NewQueueItem) { i.Quantity = 0 }, "quantity must be at least 1"},
		{"missing courier", func(i *domain.NewQueueItem) { i.Courier = "" }, "courier is required"},
		{"unknown status", func(i *domain.NewQueueItem) { i.Status = "shipped" }, "invalid status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := newItemInput()
			tt.mutate(&input)

			_, err := svc.AddQueueItem(ctx, input)
			require.Error(t, err)

			structured := apperrors.AsStructuredError(err)
			assert.Equal(t, apperrors.TypeValidation, structured.Type)
			assert.Contains(t, structured.Message, tt.message)
		})
	}

	// Nothing reached storage
	queue, err := svc.GetQueue(ctx)
	require.NoError(t, err)
	assert.Empty(t, queue)
}

func TestGetQueue_RetentionKeepsActiveItemsRegardlessOfAge(t *testing.T) {
	svc, _, _, clock := newTestService(t, TimeBoxedRetention{Window: 24 * time.Hour})
	ctx := context.Background()

	item, err := svc.AddQueueItem(ctx, newItemInput())
	require.NoError(t, err)

	clock.Advance(30 * 24 * time.Hour)

	queue, err := svc.GetQueue(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, item.ID, queue[0].ID)
}

func TestGetQueue_PrunesStaleDoneItems(t *testing.T) {
	svc, store, _, clock := newTestService(t, TimeBoxedRetention{Window: 24 * time.Hour})
	ctx := context.Background()

	item, err := svc.AddQueueItem(ctx, newItemInput())
	require.NoError(t, err)
	_, err = svc.UpdateQueueItemStatus(ctx, item.ID, "done")
	require.NoError(t, err)

	// Still inside the window
	clock.Advance(23 * time.Hour)
	queue, err := svc.GetQueue(ctx)
	require.NoError(t, err)
	assert.Len(t, queue, 1)

	// Past the window: excluded and durably removed from storage
	clock.Advance(2 * time.Hour)
	queue, err = svc.GetQueue(ctx)
	require.NoError(t, err)
	assert.Empty(t, queue)

	raw, err := store.LoadQueue(ctx)
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestGetQueue_HideDonePolicyExcludesWithoutPruning(t *testing.T) {
	svc, store, _, _ := newTestService(t, HideDoneRetention{})
	ctx := context.Background()

	item, err := svc.AddQueueItem(ctx, newItemInput())
	require.NoError(t, err)
	_, err = svc.UpdateQueueItemStatus(ctx, item.ID, "done")
	require.NoError(t, err)

	queue, err := svc.GetQueue(ctx)
	require.NoError(t, err)
	assert.Empty(t, queue)

	// The document survives in storage
	raw, err := store.LoadQueue(ctx)
	require.NoError(t, err)
	require.Len(t, raw, 1)
	assert.Equal(t, item.ID, raw[0].ID)
}

func TestUpdateQueueItemStatus_NoTransitionRules(t *testing.T) {
	svc, _, _, _ := newTestService(t, TimeBoxedRetention{Window: 24 * time.Hour})
	ctx := context.Background()

	item, err := svc.AddQueueItem(ctx, newItemInput())
	require.NoError(t, err)

	// Any status may follow any status
	for _, status := range []string{"done", "pending", "done", "in-progress", "next-day"} {
		updated, err := svc.UpdateQueueItemStatus(ctx, item.ID, status)
		require.NoError(t, err)
		assert.Equal(t, domain.Status(status), updated.Status)
	}
}

func TestUpdateQueueItemStatus_UnknownID(t *testing.T) {
	svc, store, _, _ := newTestService(t, TimeBoxedRetention{Window: 24 * time.Hour})
	ctx := context.Background()

	_, err := svc.AddQueueItem(ctx, newItemInput())
	require.NoError(t, err)
	before, err := store.LoadQueue(ctx)
	require.NoError(t, err)

	_, err = svc.UpdateQueueItemStatus(ctx, "no-such-id", "done")
	require.Error(t, err)

	structured := apperrors.AsStructuredError(err)
	assert.Equal(t, apperrors.TypeNotFound, structured.Type)

	// No write occurred
	after, err := store.LoadQueue(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestUpdateQueueItemStatus_RejectsUnknownValue(t *testing.T) {
	svc, _, _, _ := newTestService(t, TimeBoxedRetention{Window: 24 * time.Hour})
	ctx := context.Background()

	item, err := svc.AddQueueItem(ctx, newItemInput())
	require.NoError(t, err)

	_, err = svc.UpdateQueueItemStatus(ctx, item.ID, "cancelled")
	require.Error(t, err)
	assert.Equal(t, apperrors.TypeValidation, apperrors.AsStructuredError(err).Type)
}

func TestAddFollowUp_OrderPreserved(t *testing.T) {
	svc, _, _, _ := newTestService(t, TimeBoxedRetention{Window: 24 * time.Hour})
	ctx := context.Background()

	item, err := svc.AddQueueItem(ctx, newItemInput())
	require.NoError(t, err)

	_, err = svc.AddFollowUp(ctx, item.ID, "called the customer")
	require.NoError(t, err)
	updated, err := svc.AddFollowUp(ctx, item.ID, "payment confirmed")
	require.NoError(t, err)

	require.Len(t, updated.FollowUps, 2)
	assert.Equal(t, "called the customer", updated.FollowUps[0].Message)
	assert.Equal(t, "payment confirmed", updated.FollowUps[1].Message)
	assert.NotEmpty(t, updated.FollowUps[0].ID)
	assert.NotEqual(t, updated.FollowUps[0].ID, updated.FollowUps[1].ID)
}

func TestAddFollowUp_Validation(t *testing.T) {
	svc, _, _, _ := newTestService(t, TimeBoxedRetention{Window: 24 * time.Hour})
	ctx := context.Background()

	item, err := svc.AddQueueItem(ctx, newItemInput())
	require.NoError(t, err)

	_, err = svc.AddFollowUp(ctx, item.ID, "   ")
	require.Error(t, err)
	assert.Equal(t, apperrors.TypeValidation, apperrors.AsStructuredError(err).Type)

	_, err = svc.AddFollowUp(ctx, "no-such-id", "hello")
	require.Error(t, err)
	assert.Equal(t, apperrors.TypeNotFound, apperrors.AsStructuredError(err).Type)
}

func TestDeleteQueueItem_Idempotent(t *testing.T) {
	svc, _, _, _ := newTestService(t, TimeBoxedRetention{Window: 24 * time.Hour})
	ctx := context.Background()

	item, err := svc.AddQueueItem(ctx, newItemInput())
	require.NoError(t, err)

	deleted, err := svc.DeleteQueueItem(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = svc.DeleteQueueItem(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestMutations_EmitDeltaAndSnapshotEvents(t *testing.T) {
	svc, _, publisher, _ := newTestService(t, TimeBoxedRetention{Window: 24 * time.Hour})
	ctx := context.Background()

	item, err := svc.AddQueueItem(ctx, newItemInput())
	require.NoError(t, err)
	assert.Equal(t, []string{domain.EventNewQueueItem, domain.EventQueueUpdated}, publisher.names())

	publisher.reset()
	_, err = svc.UpdateQueueItemStatus(ctx, item.ID, "in-progress")
	require.NoError(t, err)
	require.Equal(t, []string{domain.EventStatusUpdated, domain.EventQueueUpdated}, publisher.names())
	delta, ok := publisher.events[0].payload.(domain.StatusDelta)
	require.True(t, ok)
	assert.Equal(t, item.ID, delta.ID)
	assert.Equal(t, domain.StatusInProgress, delta.Status)

	publisher.reset()
	_, err = svc.AddFollowUp(ctx, item.ID, "note")
	require.NoError(t, err)
	require.Equal(t, []string{domain.EventFollowUpAdded, domain.EventQueueUpdated}, publisher.names())
	fuDelta, ok := publisher.events[0].payload.(domain.FollowUpDelta)
	require.True(t, ok)
	assert.Equal(t, item.ID, fuDelta.ID)
	assert.Equal(t, "note", fuDelta.FollowUp.Message)

	publisher.reset()
	deleted, err := svc.DeleteQueueItem(ctx, item.ID)
	require.NoError(t, err)
	require.True(t, deleted)
	assert.Equal(t, []string{domain.EventQueueItemDeleted, domain.EventQueueUpdated}, publisher.names())

	// Deleting nothing emits nothing
	publisher.reset()
	_, err = svc.DeleteQueueItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Empty(t, publisher.names())
}

func TestProducts_AddValidateDelete(t *testing.T) {
	svc, _, publisher, _ := newTestService(t, TimeBoxedRetention{Window: 24 * time.Hour})
	ctx := context.Background()

	// File store seeds the default catalog
	products, err := svc.GetProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 2)

	_, err = svc.AddProduct(ctx, domain.NewProduct{Name: "", Sizes: []string{"S"}, Colors: []string{"Black"}})
	require.Error(t, err)
	assert.Equal(t, apperrors.TypeValidation, apperrors.AsStructuredError(err).Type)

	_, err = svc.AddProduct(ctx, domain.NewProduct{Name: "Sublimation", Sizes: []string{" ", ""}, Colors: []string{"White"}})
	require.Error(t, err)

	publisher.reset()
	created, err := svc.AddProduct(ctx, domain.NewProduct{
		Name:   "Sublimation",
		Sizes:  []string{" S ", "M"},
		Colors: []string{"White"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, []string{"S", "M"}, created.Sizes)
	assert.Equal(t, []string{domain.EventProductsUpdated}, publisher.names())

	deleted, err := svc.DeleteProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = svc.DeleteProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}
