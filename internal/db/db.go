package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/SebastianObert/AirCare/internal/config"
	"github.com/SebastianObert/AirCare/internal/db/migrations"
	"github.com/SebastianObert/AirCare/internal/logger"
)

const migrationCollectionName = "migrations_history"

type Migration struct {
	Name string
	Func func(ctx context.Context, client *mongo.Client) error
}

func ConnectMongoDB(ctx context.Context, cfg *config.Config) (*mongo.Client, error) {
	// Credentials travel in the URI; MongoAuthDB only selects the auth source.
	uri := cfg.MongoURI
	if cfg.MongoAuthDB != "" {
		uri += "/?authSource=" + cfg.MongoAuthDB
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(ctxTimeout, nil); err != nil {
		return nil, err
	}

	logger.Info("Successfully connected to MongoDB!")
	return client, nil
}

func DisconnectMongoDB(ctx context.Context, client *mongo.Client) error {
	if err := client.Disconnect(ctx); err != nil {
		return err
	}
	logger.Info("Disconnected from MongoDB.")
	return nil
}

func RunMigrations(ctx context.Context, client *mongo.Client, cfg *config.Config) error {
	all := []Migration{
		{Name: "unique_user_email", Func: migrations.UniqueUserEmailIndex(cfg)},
		{Name: "history_user_index", Func: migrations.HistoryUserIndex(cfg)},
		{Name: "seed_air_quality_grid", Func: migrations.SeedAirQualityGrid(cfg)},
	}

	coll := client.Database(cfg.DBName).Collection(migrationCollectionName)

	for _, m := range all {
		var result struct{ Name string }
		err := coll.FindOne(ctx, bson.M{"name": m.Name}).Decode(&result)
		if err == mongo.ErrNoDocuments {
			logger.Info("Running migration: %s", m.Name)
			if err := m.Func(ctx, client); err != nil {
				logger.Error("Error applying migration %s: %v", m.Name, err)
				return err
			}
			_, err = coll.InsertOne(ctx, bson.M{"name": m.Name, "applied_at": time.Now()})
			if err != nil {
				return err
			}
			logger.Info("Migration %s applied successfully.", m.Name)
		} else if err != nil {
			return err
		} else {
			logger.Info("Migration %s already applied, skipping.", m.Name)
		}
	}

	return nil
}
