package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/journeykit/journeymap/pkg/journey"
	"github.com/journeykit/journeymap/pkg/observability"
)

// MongoStore persists journeys in a MongoDB collection. Each journey is one
// document carrying its flattened phases, steps, and cards; subjourney
// nesting is derived from parent_step_id at read time.
type MongoStore struct {
	journeys *mongo.Collection
}

// MongoConfig configures a MongoStore connection.
type MongoConfig struct {
	// URI is the MongoDB connection string.
	URI string
	// Database is the database name. Defaults to "journeymap".
	Database string
	// Collection is the journeys collection name. Defaults to "journeys".
	Collection string
}

// NewMongoStore connects to MongoDB and returns a journey store.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = "journeymap"
	}
	if cfg.Collection == "" {
		cfg.Collection = "journeys"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &MongoStore{
		journeys: client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// GetJourney implements Store.
func (s *MongoStore) GetJourney(ctx context.Context, id string, includeDescendants bool) (*journey.Journey, error) {
	start := time.Now()
	j, err := s.getJourney(ctx, id, includeDescendants)
	observability.Store().OnFetch(ctx, id, time.Since(start), err)
	return j, err
}

func (s *MongoStore) getJourney(ctx context.Context, id string, includeDescendants bool) (*journey.Journey, error) {
	var j journey.Journey
	err := s.journeys.FindOne(ctx, bson.M{"id": id}).Decode(&j)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("journey %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find journey %s: %w", id, err)
	}

	if !includeDescendants {
		j.AllPhases = nil
		j.AllSteps = nil
		j.AllCards = nil
		return &j, nil
	}

	subs, err := s.findSubjourneys(ctx, j.StepIDs())
	if err != nil {
		return nil, err
	}
	j.Subjourneys = subs
	return &j, nil
}

func (s *MongoStore) findSubjourneys(ctx context.Context, stepIDs []string) ([]*journey.Journey, error) {
	if len(stepIDs) == 0 {
		return nil, nil
	}

	cursor, err := s.journeys.Find(ctx, bson.M{
		"is_subjourney":  true,
		"parent_step_id": bson.M{"$in": stepIDs},
	})
	if err != nil {
		return nil, fmt.Errorf("find subjourneys: %w", err)
	}
	defer cursor.Close(ctx)

	var subs []*journey.Journey
	for cursor.Next(ctx) {
		var sub journey.Journey
		if err := cursor.Decode(&sub); err != nil {
			return nil, fmt.Errorf("decode subjourney: %w", err)
		}
		subs = append(subs, &sub)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate subjourneys: %w", err)
	}
	return journey.SortSiblings(subs), nil
}

// ReorderJourneys implements Store. All sequence-order updates go through a
// single ordered bulk write; the match count is checked afterwards so an
// unknown id surfaces as ErrUnknownID rather than a silent partial update.
func (s *MongoStore) ReorderJourneys(ctx context.Context, orderedIDs []string) error {
	if len(orderedIDs) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, len(orderedIDs))
	for i, id := range orderedIDs {
		models[i] = mongo.NewUpdateOneModel().
			SetFilter(bson.M{"id": id}).
			SetUpdate(bson.M{"$set": bson.M{"sequence_order": i}})
	}

	res, err := s.journeys.BulkWrite(ctx, models)
	if err != nil {
		return fmt.Errorf("reorder journeys: %w", err)
	}
	if res.MatchedCount != int64(len(orderedIDs)) {
		return fmt.Errorf("%w: matched %d of %d", ErrUnknownID, res.MatchedCount, len(orderedIDs))
	}
	return nil
}

// FindParent implements ParentResolver.
func (s *MongoStore) FindParent(ctx context.Context, stepID string) (*journey.Journey, error) {
	var j journey.Journey
	err := s.journeys.FindOne(ctx, bson.M{"allSteps.id": stepID}).Decode(&j)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("step %s: %w", stepID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find parent of step %s: %w", stepID, err)
	}
	return s.getJourney(ctx, j.ID, true)
}

// Close disconnects the underlying client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.journeys.Database().Client().Disconnect(ctx)
}

var (
	_ Store          = (*MongoStore)(nil)
	_ ParentResolver = (*MongoStore)(nil)
)
