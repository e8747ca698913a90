// Package heatmap serves the air-quality grid points that back the map
// overlay. Points are weighted by their AQI so renderers can treat higher
// readings as hotter.
package heatmap

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// DataPoint is one measured grid reading. AQI here is the continuous index
// used for map intensity, not the ordinal 1..5 category.
type DataPoint struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lon float64 `bson:"lon" json:"lon"`
	AQI int     `bson:"aqi" json:"aqi"`
}

// WeightedPoint is a DataPoint prepared for heatmap rendering.
type WeightedPoint struct {
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Weight float64 `json:"weight"`
}

// Bounds is a lat/lon bounding box. Min fields must not exceed Max fields.
type Bounds struct {
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

type Repository struct {
	coll *mongo.Collection
}

func NewRepository(client *mongo.Client, dbName, collName string) *Repository {
	return &Repository{
		coll: client.Database(dbName).Collection(collName),
	}
}

// PointsInBounds returns all grid readings inside the bounding box.
func (r *Repository) PointsInBounds(ctx context.Context, b Bounds) ([]DataPoint, error) {
	filter := bson.M{
		"lat": bson.M{"$gte": b.MinLat, "$lte": b.MaxLat},
		"lon": bson.M{"$gte": b.MinLon, "$lte": b.MaxLon},
	}

	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query air quality grid: %w", err)
	}
	defer cursor.Close(ctx)

	var points []DataPoint
	if err := cursor.All(ctx, &points); err != nil {
		return nil, fmt.Errorf("failed to decode air quality grid: %w", err)
	}
	return points, nil
}

// Weight converts grid readings to weighted points, weight = AQI.
func Weight(points []DataPoint) []WeightedPoint {
	weighted := make([]WeightedPoint, 0, len(points))
	for _, p := range points {
		weighted = append(weighted, WeightedPoint{
			Lat:    p.Lat,
			Lon:    p.Lon,
			Weight: float64(p.AQI),
		})
	}
	return weighted
}
