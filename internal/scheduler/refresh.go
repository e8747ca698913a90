package scheduler

import (
	"context"
	"fmt"

	"github.com/SebastianObert/AirCare/internal/locations"
	"github.com/SebastianObert/AirCare/models"
)

// LocationLister yields every saved location across all users.
type LocationLister interface {
	ListAll(ctx context.Context) ([]locations.SavedLocation, error)
}

// SavedLocationSource turns each saved location into one RefreshRequest.
// Check and Notify are injected so the source stays free of transport and
// storage concerns.
type SavedLocationSource struct {
	Locations LocationLister
	Check     func(ctx context.Context, coord models.Coordinate) (advisory string, err error)
	Notify    func(ctx context.Context, userID, location, advisory string) error
}

func (s *SavedLocationSource) RunRefreshJob(ctx context.Context, ch chan<- models.RefreshRequest) error {
	locs, err := s.Locations.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to enumerate saved locations: %w", err)
	}

	for _, loc := range locs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ch <- models.RefreshRequest{
			UserID:     loc.UserID,
			Location:   loc.Name,
			Coord:      models.Coordinate{Latitude: loc.Lat, Longitude: loc.Lon},
			CheckFunc:  s.Check,
			NotifyFunc: s.Notify,
		}:
		}
	}
	return nil
}
