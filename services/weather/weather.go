// Package weather fetches the current conditions for a coordinate from the
// OpenWeather weather endpoint, in metric units.
package weather

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
	client := api.NewClient("current_weather", rlSettings)

	return &Service{
		Config: cfg,
		Client: client,
	}
}

func (s *Service) FetchData(ctx context.Context, coord models.Coordinate) ([]byte, error) {
	url := fmt.Sprintf("%s/weather?lat=%f&lon=%f&units=metric&appid=%s",
		s.Config.OpenWeatherBaseURL, coord.Latitude, coord.Longitude, s.Config.OpenWeatherAPIKey)
	return s.Client.Do(ctx, url, nil)
}

func (s *Service) ParseData(data []byte) (aggregator.WeatherSample, error) {
	var resp APIResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return aggregator.WeatherSample{}, fmt.Errorf("failed to parse weather data: %w", err)
	}

	sample := aggregator.WeatherSample{
		TemperatureC: resp.Main.Temp,
	}
	if len(resp.Weather) > 0 {
		sample.Description = resp.Weather[0].Description
		sample.IconCode = resp.Weather[0].Icon
	}
	return sample, nil
}

// Current implements aggregator.WeatherSource.
func (s *Service) Current(ctx context.Context, coord models.Coordinate) (aggregator.WeatherSample, error) {
	data, err := s.FetchData(ctx, coord)
	if err != nil {
		return aggregator.WeatherSample{}, err
	}
	return s.ParseData(data)
}
