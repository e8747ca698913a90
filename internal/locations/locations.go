// Package locations stores a user's saved named coordinates.
package locations

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var ErrNotFound = errors.New("saved location not found")

type SavedLocation struct {
	ID     string  `bson:"_id" json:"id"`
	UserID string  `bson:"user_id" json:"-"`
	Name   string  `bson:"name" json:"name"`
	Lat    float64 `bson:"lat" json:"lat"`
	Lon    float64 `bson:"lon" json:"lon"`
}

// Store is the MongoDB-backed saved-locations store.
type Store struct {
	coll *mongo.Collection
}

func NewStore(client *mongo.Client, dbName, collName string) *Store {
	return &Store{
		coll: client.Database(dbName).Collection(collName),
	}
}

func (s *Store) Add(ctx context.Context, loc SavedLocation) (string, error) {
	loc.ID = uuid.NewString()
	if _, err := s.coll.InsertOne(ctx, loc); err != nil {
		return "", fmt.Errorf("failed to insert saved location: %w", err)
	}
	return loc.ID, nil
}

func (s *Store) List(ctx context.Context, userID string) ([]SavedLocation, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list saved locations: %w", err)
	}
	defer cursor.Close(ctx)

	var locs []SavedLocation
	if err := cursor.All(ctx, &locs); err != nil {
		return nil, fmt.Errorf("failed to decode saved locations: %w", err)
	}
	return locs, nil
}

// ListAll returns every user's saved locations, for the background refresh job.
func (s *Store) ListAll(ctx context.Context) ([]SavedLocation, error) {
	cursor, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list saved locations: %w", err)
	}
	defer cursor.Close(ctx)

	var locs []SavedLocation
	if err := cursor.All(ctx, &locs); err != nil {
		return nil, fmt.Errorf("failed to decode saved locations: %w", err)
	}
	return locs, nil
}

func (s *Store) Delete(ctx context.Context, userID, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete saved location: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
