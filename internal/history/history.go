// Package history persists saved air-quality snapshots per user.
package history

import (
	"context"
	"errors"
)

// ErrNotFound is returned when an entry does not exist in the caller's namespace.
var ErrNotFound = errors.New("history entry not found")

// Entry is one saved snapshot. Immutable once created except for Note and
// Category. New fields must stay optional so older records keep decoding.
type Entry struct {
	ID               string  `bson:"_id" json:"id"`
	UserID           string  `bson:"user_id" json:"-"`
	Location         string  `bson:"location" json:"location"`
	AQIValue         string  `bson:"aqi_value" json:"aqiValue"`
	AQIStatus        string  `bson:"aqi_status" json:"aqiStatus"`
	SeverityTier     int     `bson:"severity_tier" json:"severityTier"`
	Timestamp        int64   `bson:"timestamp" json:"timestamp"`
	WeatherTemp      *string `bson:"weather_temp,omitempty" json:"weatherTemp,omitempty"`
	WeatherCondition *string `bson:"weather_condition,omitempty" json:"weatherCondition,omitempty"`
	Note             *string `bson:"note,omitempty" json:"note,omitempty"`
	Category         *string `bson:"category,omitempty" json:"category,omitempty"`
}

// Store is the snapshot store contract. All operations are scoped to the
// user namespace carried by the entry or the userID argument.
type Store interface {
	// PushNew assigns a fresh ID, persists the entry and returns the ID.
	PushNew(ctx context.Context, entry Entry) (string, error)
	// Write replaces the entry stored under id.
	Write(ctx context.Context, userID, id string, entry Entry) error
	// Update applies a partial field update (note/category edits).
	Update(ctx context.Context, userID, id string, fields map[string]interface{}) error
	// Delete removes the entry.
	Delete(ctx context.Context, userID, id string) error
	// List returns all entries for the user, newest first.
	List(ctx context.Context, userID string) ([]Entry, error)
	// ObserveAll streams the full entry list whenever it changes. The stream
	// closes when ctx is cancelled.
	ObserveAll(ctx context.Context, userID string) (<-chan []Entry, error)
}
