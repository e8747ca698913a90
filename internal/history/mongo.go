package history

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/SebastianObert/AirCare/internal/logger"
)

// pollInterval drives ObserveAll. MongoDB change streams need a replica set,
// which the deployment does not guarantee, so observation is poll-based.
const pollInterval = 2 * time.Second

// MongoStore is the MongoDB-backed Store implementation.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(client *mongo.Client, dbName, collName string) *MongoStore {
	return &MongoStore{
		coll: client.Database(dbName).Collection(collName),
	}
}

func (s *MongoStore) PushNew(ctx context.Context, entry Entry) (string, error) {
	entry.ID = uuid.NewString()
	if _, err := s.coll.InsertOne(ctx, entry); err != nil {
		return "", fmt.Errorf("failed to insert history entry: %w", err)
	}
	return entry.ID, nil
}

func (s *MongoStore) Write(ctx context.Context, userID, id string, entry Entry) error {
	entry.ID = id
	entry.UserID = userID
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": id, "user_id": userID}, entry)
	if err != nil {
		return fmt.Errorf("failed to write history entry: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Update(ctx context.Context, userID, id string, fields map[string]interface{}) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M(fields)},
	)
	if err != nil {
		return fmt.Errorf("failed to update history entry: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, userID, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete history entry: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context, userID string) ([]Entry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := s.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list history entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []Entry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode history entries: %w", err)
	}
	return entries, nil
}

func (s *MongoStore) ObserveAll(ctx context.Context, userID string) (<-chan []Entry, error) {
	initial, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make(chan []Entry, 1)
	out <- initial

	go func() {
		defer close(out)

		last := initial
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				entries, err := s.List(ctx, userID)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					logger.Error("history observe poll failed for user %s: %v", userID, err)
					continue
				}
				if reflect.DeepEqual(entries, last) {
					continue
				}
				last = entries
				select {
				case out <- entries:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
