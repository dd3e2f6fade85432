package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/Aeyroxx/lace-allure-queue-system/internal/domain"
	"github.com/Aeyroxx/lace-allure-queue-system/internal/metrics"
)

const (
	backendMongo   = "mongo"
	connectTimeout = 10 * time.Second
)

// Document shapes native to the Mongo backend. The canonical identifier
// field is "id" in the external model; here it lives in _id and is
// translated on the way in and out.
type productDoc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Sizes     []string  `bson:"sizes"`
	Colors    []string  `bson:"colors"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type followUpDoc struct {
	ID        string    `bson:"_id"`
	Message   string    `bson:"message"`
	Timestamp time.Time `bson:"timestamp"`
}

type queueItemDoc struct {
	ID          string        `bson:"_id"`
	ProductID   string        `bson:"product_id,omitempty"`
	ProductName string        `bson:"product_name"`
	Size        string        `bson:"size"`
	Color       string        `bson:"color"`
	Quantity    int           `bson:"quantity"`
	Courier     string        `bson:"courier"`
	Status      domain.Status `bson:"status"`
	Notes       string        `bson:"notes,omitempty"`
	FollowUps   []followUpDoc `bson:"follow_ups"`
	CreatedAt   time.Time     `bson:"created_at"`
	UpdatedAt   time.Time     `bson:"updated_at"`
}

// MongoStore persists entities as one document each in the "products" and
// "queue_items" collections. Writes rely on the single-document atomicity of
// the server; there is no cross-document transaction.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	clock  clockwork.Clock
}

// NewMongoStore connects and pings the deployment. A failure here is the
// caller's cue to fall back to the file backend.
func NewMongoStore(ctx context.Context, url, database string, clock clockwork.Clock) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(url))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &MongoStore{
		client: client,
		db:     client.Database(database),
		clock:  clock,
	}, nil
}

func (s *MongoStore) Name() string { return backendMongo }

// Close releases the underlying connection pool.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) products() *mongo.Collection   { return s.db.Collection("products") }
func (s *MongoStore) queueItems() *mongo.Collection { return s.db.Collection("queue_items") }

func toProduct(d productDoc) domain.Product {
	return domain.Product{
		ID:        d.ID,
		Name:      d.Name,
		Sizes:     d.Sizes,
		Colors:    d.Colors,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func toQueueItem(d queueItemDoc) domain.QueueItem {
	followUps := make([]domain.FollowUp, 0, len(d.FollowUps))
	for _, f := range d.FollowUps {
		followUps = append(followUps, domain.FollowUp{ID: f.ID, Message: f.Message, Timestamp: f.Timestamp})
	}
	return domain.QueueItem{
		ID:          d.ID,
		ProductID:   d.ProductID,
		ProductName: d.ProductName,
		Size:        d.Size,
		Color:       d.Color,
		Quantity:    d.Quantity,
		Courier:     d.Courier,
		Status:      d.Status,
		Notes:       d.Notes,
		FollowUps:   followUps,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (s *MongoStore) LoadProducts(ctx context.Context) (products []domain.Product, err error) {
	start := s.clock.Now()
	defer func() { observeOp(backendMongo, "load_products", start, err) }()

	cursor, findErr := s.products().Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if findErr != nil {
		return s.degradedRead("products", findErr), nil
	}

	var docs []productDoc
	if decodeErr := cursor.All(ctx, &docs); decodeErr != nil {
		return s.degradedRead("products", decodeErr), nil
	}

	products = make([]domain.Product, 0, len(docs))
	for _, d := range docs {
		products = append(products, toProduct(d))
	}
	return products, nil
}

// degradedRead logs a read failure and returns the empty fallback. The
// diagnostic never propagates to the caller.
func (s *MongoStore) degradedRead(collection string, cause error) []domain.Product {
	slog.Error("Failed to read collection, returning empty result", "backend", backendMongo, "collection", collection, "error", cause)
	metrics.StorageDegradedReads.WithLabelValues(backendMongo, collection).Inc()
	return []domain.Product{}
}

func (s *MongoStore) degradedQueueRead(cause error) []domain.QueueItem {
	slog.Error("Failed to read collection, returning empty result", "backend", backendMongo, "collection", "queue", "error", cause)
	metrics.StorageDegradedReads.WithLabelValues(backendMongo, "queue").Inc()
	return []domain.QueueItem{}
}

func (s *MongoStore) SaveProduct(ctx context.Context, data domain.NewProduct) (product domain.Product, err error) {
	start := s.clock.Now()
	defer func() { observeOp(backendMongo, "save_product", start, err) }()

	now := s.clock.Now().UTC()
	doc := productDoc{
		ID:        uuid.NewString(),
		Name:      data.Name,
		Sizes:     data.Sizes,
		Colors:    data.Colors,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err = s.products().InsertOne(ctx, doc); err != nil {
		return domain.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return toProduct(doc), nil
}

func (s *MongoStore) DeleteProduct(ctx context.Context, id string) (deleted bool, err error) {
	start := s.clock.Now()
	defer func() { observeOp(backendMongo, "delete_product", start, err) }()

	res, err := s.products().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("delete product: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (s *MongoStore) LoadQueue(ctx context.Context) (items []domain.QueueItem, err error) {
	start := s.clock.Now()
	defer func() { observeOp(backendMongo, "load_queue", start, err) }()

	cursor, findErr := s.queueItems().Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if findErr != nil {
		return s.degradedQueueRead(findErr), nil
	}

	var docs []queueItemDoc
	if decodeErr := cursor.All(ctx, &docs); decodeErr != nil {
		return s.degradedQueueRead(decodeErr), nil
	}

	items = make([]domain.QueueItem, 0, len(docs))
	for _, d := range docs {
		items = append(items, toQueueItem(d))
	}
	return items, nil
}

func (s *MongoStore) SaveQueueItem(ctx context.Context, data domain.NewQueueItem) (item domain.QueueItem, err error) {
	start := s.clock.Now()
	defer func() { observeOp(backendMongo, "save_queue_item", start, err) }()

	now := s.clock.Now().UTC()
	doc := queueItemDoc{
		ID:          uuid.NewString(),
		ProductID:   data.ProductID,
		ProductName: data.ProductName,
		Size:        data.Size,
		Color:       data.Color,
		Quantity:    data.Quantity,
		Courier:     data.Courier,
		Status:      data.Status,
		Notes:       data.Notes,
		FollowUps:   []followUpDoc{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err = s.queueItems().InsertOne(ctx, doc); err != nil {
		return domain.QueueItem{}, fmt.Errorf("insert queue item: %w", err)
	}
	return toQueueItem(doc), nil
}

func (s *MongoStore) UpdateQueueItemStatus(ctx context.Context, id string, status domain.Status) (item domain.QueueItem, err error) {
	start := s.clock.Now()
	defer func() { observeOp(backendMongo, "update_status", start, err) }()

	update := bson.M{"$set": bson.M{"status": status, "updated_at": s.clock.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc queueItemDoc
	err = s.queueItems().FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		err = domain.ErrQueueItemNotFound
		return domain.QueueItem{}, err
	}
	if err != nil {
		return domain.QueueItem{}, fmt.Errorf("update queue item status: %w", err)
	}
	return toQueueItem(doc), nil
}

func (s *MongoStore) AppendFollowUp(ctx context.Context, id, message string) (item domain.QueueItem, err error) {
	start := s.clock.Now()
	defer func() { observeOp(backendMongo, "append_follow_up", start, err) }()

	now := s.clock.Now().UTC()
	update := bson.M{
		"$push": bson.M{"follow_ups": followUpDoc{ID: uuid.NewString(), Message: message, Timestamp: now}},
		"$set":  bson.M{"updated_at": now},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc queueItemDoc
	err = s.queueItems().FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		err = domain.ErrQueueItemNotFound
		return domain.QueueItem{}, err
	}
	if err != nil {
		return domain.QueueItem{}, fmt.Errorf("append follow-up: %w", err)
	}
	return toQueueItem(doc), nil
}

func (s *MongoStore) DeleteQueueItem(ctx context.Context, id string) (deleted bool, err error) {
	start := s.clock.Now()
	defer func() { observeOp(backendMongo, "delete_queue_item", start, err) }()

	res, err := s.queueItems().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("delete queue item: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (s *MongoStore) PruneQueueItems(ctx context.Context, ids []string) (err error) {
	start := s.clock.Now()
	defer func() { observeOp(backendMongo, "prune_queue_items", start, err) }()

	if len(ids) == 0 {
		return nil
	}
	if _, err = s.queueItems().DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return fmt.Errorf("prune queue items: %w", err)
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}
