// Package airquality fetches the current pollution reading for a coordinate
// from the OpenWeather air_pollution endpoint.
package airquality

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SebastianObert/AirCare/internal/aggregator"
	"github.com/SebastianObert/AirCare/internal/api"
	"github.com/SebastianObert/AirCare/internal/config"
	"github.com/SebastianObert/AirCare/models"
)

type Service struct {
	Config *config.Config
	Client *api.Client
}

func NewService(cfg *config.Config) *Service {
	rlSettings := models.RateLimitSettings{
		MaxRequests: 60,
		PerDuration: time.Minute,
	}
	client := api.NewClient("air_pollution", rlSettings)

	return &Service{
		Config: cfg,
		Client: client,
	}
}

func (s *Service) FetchData(ctx context.Context, coord models.Coordinate) ([]byte, error) {
	url := fmt.Sprintf("%s/air_pollution?lat=%f&lon=%f&appid=%s",
		s.Config.OpenWeatherBaseURL, coord.Latitude, coord.Longitude, s.Config.OpenWeatherAPIKey)
	return s.Client.Do(ctx, url, nil)
}

// ParseData maps the payload to an AirSample. An empty result list is the
// soft-failure sentinel, not a parse error.
func (s *Service) ParseData(data []byte) (aggregator.AirSample, error) {
	var resp APIResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return aggregator.AirSample{}, fmt.Errorf("failed to parse air quality data: %w", err)
	}

	if len(resp.List) == 0 {
		return aggregator.AirSample{}, aggregator.ErrNoData
	}

	r := resp.List[0]
	return aggregator.AirSample{
		Index: r.Main.AQI,
		PM25:  r.Components.PM25,
		CO:    r.Components.CO,
		O3:    r.Components.O3,
		NO2:   r.Components.NO2,
		SO2:   r.Components.SO2,
	}, nil
}

// Current implements aggregator.AirQualitySource.
func (s *Service) Current(ctx context.Context, coord models.Coordinate) (aggregator.AirSample, error) {
	data, err := s.FetchData(ctx, coord)
	if err != nil {
		return aggregator.AirSample{}, err
	}
	return s.ParseData(data)
}
