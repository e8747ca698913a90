package migrations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/SebastianObert/AirCare/internal/config"
)

const dataDirPath = "internal/db/migrations/data"

func loadJSONData(fileName string) ([]interface{}, error) {

	filePath := filepath.Join(dataDirPath, fileName)

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}

	var rawData []map[string]interface{}
	if err := json.Unmarshal(data, &rawData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON data from %s: %v", filePath, err)
	}

	var documents []interface{}
	for _, item := range rawData {
		documents = append(documents, bson.M(item))
	}

	return documents, nil
}

func createCollectionIfNotExists(ctx context.Context, db *mongo.Database, name string) error {
	if err := db.CreateCollection(ctx, name); err != nil {
		var cmdErr mongo.CommandError
		if errors.As(err, &cmdErr) {
			if cmdErr.Code != 48 { // 48 = NamespaceExists
				return fmt.Errorf("failed to create collection %s: %w", name, err)
			}
			// Collection already exists → ignore
		} else {
			return fmt.Errorf("failed to create collection %s: %w", name, err)
		}
	}
	return nil
}

// UniqueUserEmailIndex enforces one account per email address.
func UniqueUserEmailIndex(cfg *config.Config) func(ctx context.Context, client *mongo.Client) error {
	return func(ctx context.Context, client *mongo.Client) error {
		db := client.Database(cfg.DBName)
		if err := createCollectionIfNotExists(ctx, db, cfg.CollectionUsers); err != nil {
			return err
		}

		_, err := db.Collection(cfg.CollectionUsers).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			return fmt.Errorf("failed to create unique email index: %w", err)
		}
		return nil
	}
}

// HistoryUserIndex speeds up the per-user history listing, which always
// filters by user_id and sorts by timestamp descending.
func HistoryUserIndex(cfg *config.Config) func(ctx context.Context, client *mongo.Client) error {
	return func(ctx context.Context, client *mongo.Client) error {
		db := client.Database(cfg.DBName)
		if err := createCollectionIfNotExists(ctx, db, cfg.CollectionHistory); err != nil {
			return err
		}

		_, err := db.Collection(cfg.CollectionHistory).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}},
		})
		if err != nil {
			return fmt.Errorf("failed to create history index: %w", err)
		}
		return nil
	}
}

// SeedAirQualityGrid loads the initial heatmap grid points from the bundled
// JSON file. The collection is only seeded when it is empty.
func SeedAirQualityGrid(cfg *config.Config) func(ctx context.Context, client *mongo.Client) error {
	return func(ctx context.Context, client *mongo.Client) error {
		db := client.Database(cfg.DBName)
		if err := createCollectionIfNotExists(ctx, db, cfg.CollectionAirQualityGrid); err != nil {
			return err
		}

		coll := db.Collection(cfg.CollectionAirQualityGrid)
		count, err := coll.CountDocuments(ctx, bson.M{})
		if err != nil {
			return fmt.Errorf("failed to count documents in %s: %w", cfg.CollectionAirQualityGrid, err)
		}
		if count > 0 {
			return nil
		}

		documents, err := loadJSONData("heatmap_points.json")
		if err != nil {
			return err
		}

		if _, err := coll.InsertMany(ctx, documents); err != nil {
			return fmt.Errorf("failed to seed %s: %w", cfg.CollectionAirQualityGrid, err)
		}
		return nil
	}
}
