package models

import (
	"context"
	"time"
)

// Coordinate is the immutable input to every fetch.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// RefreshRequest is one unit of background work: re-check air quality for a
// user's saved location and notify them if the health check raises an advisory.
type RefreshRequest struct {
	UserID     string
	Location   string
	Coord      Coordinate
	CheckFunc  func(ctx context.Context, coord Coordinate) (advisory string, err error)
	NotifyFunc func(ctx context.Context, userID, location, advisory string) error
}

type RateLimitSettings struct {
	MaxRequests int
	PerDuration time.Duration
}
