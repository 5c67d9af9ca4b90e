package entry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/gratitree/core/internal/database"
	"github.com/gratitree/core/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store is the document-store surface the day-tree core relies on: an
// append-only creation op, filtered reads, and a live change subscription.
type Store interface {
	// Insert persists a new immutable entry, assigning its id and the
	// server-side creation timestamp.
	Insert(ctx context.Context, e *models.Entry) error
	// ListByDay returns a day's entries sorted ascending by created_at.
	ListByDay(ctx context.Context, dayID string) ([]models.Entry, error)
	// CountByAuthor counts a user's entries under a day.
	CountByAuthor(ctx context.Context, dayID, authorID string) (int64, error)
	// Watch opens a change subscription scoped to a day's entries. The
	// subscription delivers a signal per insert until closed.
	Watch(ctx context.Context, dayID string) (Subscription, error)
	// UpsertDay writes a day document with its lock deadline.
	UpsertDay(ctx context.Context, day models.Day) error
}

// Subscription is a live change feed for one day.
type Subscription interface {
	Changes() <-chan struct{}
	Errs() <-chan error
	Close()
}

type mongoStore struct {
	db *mongo.Database
}

// NewMongoStore returns the MongoDB-backed Store.
func NewMongoStore(db *mongo.Database) Store {
	return &mongoStore{db: db}
}

func (s *mongoStore) entries() *mongo.Collection { return s.db.Collection(database.CollEntries) }
func (s *mongoStore) days() *mongo.Collection    { return s.db.Collection(database.CollDays) }

func (s *mongoStore) Insert(ctx context.Context, e *models.Entry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	e.CreatedAt = &now
	_, err := s.entries().InsertOne(ctx, e)
	return err
}

func (s *mongoStore) ListByDay(ctx context.Context, dayID string) ([]models.Entry, error) {
	cur, err := s.entries().Find(ctx,
		bson.D{{Key: "day_id", Value: dayID}},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	var entries []models.Entry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *mongoStore) CountByAuthor(ctx context.Context, dayID, authorID string) (int64, error) {
	return s.entries().CountDocuments(ctx, bson.D{
		{Key: "day_id", Value: dayID},
		{Key: "author_id", Value: authorID},
	})
}

func (s *mongoStore) UpsertDay(ctx context.Context, day models.Day) error {
	_, err := s.days().ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: day.DayID}},
		day,
		options.Replace().SetUpsert(true),
	)
	return err
}

type changeStreamSubscription struct {
	cancel  context.CancelFunc
	changes chan struct{}
	errs    chan error
}

func (s *changeStreamSubscription) Changes() <-chan struct{} { return s.changes }
func (s *changeStreamSubscription) Errs() <-chan error       { return s.errs }
func (s *changeStreamSubscription) Close()                   { s.cancel() }

func (s *mongoStore) Watch(ctx context.Context, dayID string) (Subscription, error) {
	streamCtx, cancel := context.WithCancel(ctx)

	pipeline := mongo.Pipeline{bson.D{{Key: "$match", Value: bson.D{
		{Key: "operationType", Value: "insert"},
		{Key: "fullDocument.day_id", Value: dayID},
	}}}}
	cs, err := s.entries().Watch(streamCtx, pipeline)
	if err != nil {
		cancel()
		return nil, err
	}

	sub := &changeStreamSubscription{
		cancel:  cancel,
		changes: make(chan struct{}, 16),
		errs:    make(chan error, 1),
	}

	go func() {
		defer close(sub.changes)
		defer cs.Close(context.Background())

		for cs.Next(streamCtx) {
			select {
			case sub.changes <- struct{}{}:
			default:
				// coalesce: a pending signal already forces a reload
			}
		}
		if err := cs.Err(); err != nil && streamCtx.Err() == nil {
			sub.errs <- err
		}
	}()

	return sub, nil
}
