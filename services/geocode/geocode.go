// Package geocode resolves place names to coordinates through the OpenWeather
// direct geocoding endpoint.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/SebastianObert/AirCare/internal/api"
	"github.com/SebastianObert/AirCare/internal/config"
	"github.com/SebastianObert/AirCare/models"
)

const maxCandidates = 5

// Candidate is one geocoding match.
type Candidate struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
}

type Service struct {
	Config *config.Config
	Client *api.Client
}

func NewService(cfg *config.Config) *Service {
	rlSettings := models.RateLimitSettings{
		MaxRequests: 30,
		PerDuration: time.Minute,
	}
	client := api.NewClient("geocode", rlSettings)

	return &Service{
		Config: cfg,
		Client: client,
	}
}

func (s *Service) FetchData(ctx context.Context, query string) ([]byte, error) {
	u := fmt.Sprintf("%s/direct?q=%s&limit=%d&appid=%s",
		s.Config.OpenWeatherGeoBaseURL, url.QueryEscape(query), maxCandidates, s.Config.OpenWeatherAPIKey)
	return s.Client.Do(ctx, u, nil)
}

func (s *Service) ParseData(data []byte) ([]Candidate, error) {
	var candidates []Candidate
	if err := json.Unmarshal(data, &candidates); err != nil {
		return nil, fmt.Errorf("failed to parse geocoding data: %w", err)
	}
	return candidates, nil
}

// Search returns up to five candidate locations matching the query.
func (s *Service) Search(ctx context.Context, query string) ([]Candidate, error) {
	data, err := s.FetchData(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.ParseData(data)
}
