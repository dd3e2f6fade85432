package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/Aeyroxx/lace-allure-queue-system/internal/domain"
	"github.com/Aeyroxx/lace-allure-queue-system/internal/metrics"
)

const backendFile = "file"

// FileStore persists products and queue items as two pretty-printed JSON
// documents, rewritten wholesale on every mutation. The mutex serializes the
// read-modify-write cycle so interleaved requests cannot clobber each other.
type FileStore struct {
	mu    sync.Mutex
	dir   string
	clock clockwork.Clock
}

// NewFileStore creates the data directory if needed and seeds the default
// product catalog on first run.
func NewFileStore(dir string, clock clockwork.Clock) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	s := &FileStore{dir: dir, clock: clock}

	if _, err := os.Stat(s.productsPath()); os.IsNotExist(err) {
		if err := s.writeFile(s.productsPath(), s.defaultProducts()); err != nil {
			return nil, fmt.Errorf("seed products: %w", err)
		}
	}
	if _, err := os.Stat(s.queuePath()); os.IsNotExist(err) {
		if err := s.writeFile(s.queuePath(), []domain.QueueItem{}); err != nil {
			return nil, fmt.Errorf("init queue: %w", err)
		}
	}

	return s, nil
}

func (s *FileStore) Name() string { return backendFile }

func (s *FileStore) productsPath() string { return filepath.Join(s.dir, "products.json") }
func (s *FileStore) queuePath() string    { return filepath.Join(s.dir, "queue.json") }

// defaultProducts is the catalog the original deployment ships with.
func (s *FileStore) defaultProducts() []domain.Product {
	now := s.clock.Now().UTC()
	return []domain.Product{
		{
			ID:        uuid.NewString(),
			Name:      "Embroidery",
			Sizes:     []string{"S", "M", "L", "XL", "2XL", "3XL", "4XL"},
			Colors:    []string{"Mocca-Mocca", "Mocca-Black", "Black-Mocca", "Mocca-Brown", "Mocca-Mocca(Floral)"},
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:        uuid.NewString(),
			Name:      "DTF",
			Sizes:     []string{"S", "M", "L", "XL", "2XL", "3XL", "4XL"},
			Colors:    []string{"White", "Black", "Gray", "Navy", "Red"},
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

// readFile loads a JSON collection, degrading to an empty slice on any read
// or parse failure. The diagnostic goes to the log, never to the caller.
func readFile[T any](path, collection string) []T {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Error("Failed to read collection, returning empty result", "backend", backendFile, "collection", collection, "error", err)
			metrics.StorageDegradedReads.WithLabelValues(backendFile, collection).Inc()
		}
		return []T{}
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		slog.Error("Failed to parse collection, returning empty result", "backend", backendFile, "collection", collection, "error", err)
		metrics.StorageDegradedReads.WithLabelValues(backendFile, collection).Inc()
		return []T{}
	}
	return items
}

// writeFile rewrites a collection atomically: pretty-printed JSON to a temp
// file in the same directory, fsync, then rename over the target.
func (s *FileStore) writeFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal collection: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+filepath.Base(path)+".tmp-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func (s *FileStore) loadQueueLocked() []domain.QueueItem {
	items := readFile[domain.QueueItem](s.queuePath(), "queue")
	for i := range items {
		if items[i].FollowUps == nil {
			items[i].FollowUps = []domain.FollowUp{}
		}
	}
	return items
}

func (s *FileStore) LoadProducts(_ context.Context) (products []domain.Product, err error) {
	start := s.clock.Now()
	defer func() { observeOp(backendFile, "load_products", start, err) }()
	s.mu.Lock()
	defer s.mu.Unlock()
	return readFile[domain.Product](s.productsPath(), "products"), nil
}

func (s *FileStore) SaveProduct(_ context.Context, data domain.NewProduct) (product domain.Product, err error) {
	start := s.clock.Now()
	defer func() { observeOp(backendFile, "save_product", start, err) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now().UTC()
	product = domain.Product{
		ID:        uuid.NewString(),
		Name:      data.Name,
		Sizes:     data.Sizes,
		Colors:    data.Colors,
		CreatedAt: now,
		UpdatedAt: now,
	}

	products := readFile[domain.Product](s.productsPath(), "products")
	products = append(products, product)
	if err = s.writeFile(s.productsPath(), products); err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

func (s *FileStore) DeleteProduct(_ context.Context, id string) (deleted bool, err error) {
	start := s.clock.Now()
	defer func() { observeOp(backendFile, "delete_product", start, err) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	products := readFile[domain.Product](s.productsPath(), "products")
	kept := products[:0]
	for _, p := range products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(products) {
		return false, nil
	}
	if err = s.writeFile(s.productsPath(), kept); err != nil {
		return false, err
	}
	return true, nil
}

func (s *FileStore) LoadQueue(_ context.Context) (items []domain.QueueItem, err error) {
	start := s.clock.Now()
	defer func() { observeOp(backendFile, "load_queue", start, err) }()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadQueueLocked(), nil
}

func (s *FileStore) SaveQueueItem(_ context.Context, data domain.NewQueueItem) (item domain.QueueItem, err error) {
	start := s.clock.Now()
	defer func() { observeOp(backendFile, "save_queue_item", start, err) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now().UTC()
	item = domain.QueueItem{
		ID:          uuid.NewString(),
		ProductID:   data.ProductID,
		ProductName: data.ProductName,
		Size:        data.Size,
		Color:       data.Color,
		Quantity:    data.Quantity,
		Courier:     data.Courier,
		Status:      data.Status,
		Notes:       data.Notes,
		FollowUps:   []domain.FollowUp{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	queue := s.loadQueueLocked()
	queue = append(queue, item)
	if err = s.writeFile(s.queuePath(), queue); err != nil {
		return domain.QueueItem{}, err
	}
	return item, nil
}

func (s *FileStore) UpdateQueueItemStatus(_ context.Context, id string, status domain.Status) (item domain.QueueItem, err error) {
	start := s.clock.Now()
	defer func() { observeOp(backendFile, "update_status", start, err) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	queue := s.loadQueueLocked()
	idx := indexOf(queue, id)
	if idx < 0 {
		err = domain.ErrQueueItemNotFound
		return domain.QueueItem{}, err
	}

	queue[idx].Status = status
	queue[idx].UpdatedAt = s.clock.Now().UTC()
	if err = s.writeFile(s.queuePath(), queue); err != nil {
		return domain.QueueItem{}, err
	}
	return queue[idx], nil
}

func (s *FileStore) AppendFollowUp(_ context.Context, id, message string) (item domain.QueueItem, err error) {
	start := s.clock.Now()
	defer func() { observeOp(backendFile, "append_follow_up", start, err) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	queue := s.loadQueueLocked()
	idx := indexOf(queue, id)
	if idx < 0 {
		err = domain.ErrQueueItemNotFound
		return domain.QueueItem{}, err
	}

	now := s.clock.Now().UTC()
	queue[idx].FollowUps = append(queue[idx].FollowUps, domain.FollowUp{
		ID:        uuid.NewString(),
		Message:   message,
		Timestamp: now,
	})
	queue[idx].UpdatedAt = now
	if err = s.writeFile(s.queuePath(), queue); err != nil {
		return domain.QueueItem{}, err
	}
	return queue[idx], nil
}

func (s *FileStore) DeleteQueueItem(_ context.Context, id string) (deleted bool, err error) {
	start := s.clock.Now()
	defer func() { observeOp(backendFile, "delete_queue_item", start, err) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	queue := s.loadQueueLocked()
	kept := queue[:0]
	for _, it := range queue {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(queue) {
		return false, nil
	}
	if err = s.writeFile(s.queuePath(), kept); err != nil {
		return false, err
	}
	return true, nil
}

func (s *FileStore) PruneQueueItems(_ context.Context, ids []string) (err error) {
	start := s.clock.Now()
	defer func() { observeOp(backendFile, "prune_queue_items", start, err) }()
	if len(ids) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	queue := s.loadQueueLocked()
	kept := queue[:0]
	for _, it := range queue {
		if _, ok := drop[it.ID]; !ok {
			kept = append(kept, it)
		}
	}
	return s.writeFile(s.queuePath(), kept)
}

func (s *FileStore) Ping(_ context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("data dir unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data path %s is not a directory", s.dir)
	}
	return nil
}

func indexOf(queue []domain.QueueItem, id string) int {
	for i, it := range queue {
		if it.ID == id {
			return i
		}
	}
	return -1
}
