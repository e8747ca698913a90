// Package forecast fetches the 5-day/3-hour forecast sample list for a
// coordinate from the OpenWeather forecast endpoint.
package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SebastianObert/AirCare/internal/api"
	"github.com/SebastianObert/AirCare/internal/config"
	coreforecast "github.com/SebastianObert/AirCare/internal/forecast"
	"github.com/SebastianObert/AirCare/models"
)

type Service struct {
	Config *config.Config
	Client *api.Client
}

func NewService(cfg *config.Config) *Service {
	rlSettings := models.RateLimitSettings{
		MaxRequests: 30,
		PerDuration: time.Minute,
	}
	client := api.NewClient("forecast", rlSettings)

	return &Service{
		Config: cfg,
		Client: client,
	}
}

func (s *Service) FetchData(ctx context.Context, coord models.Coordinate) ([]byte, error) {
	url := fmt.Sprintf("%s/forecast?lat=%f&lon=%f&units=metric&appid=%s",
		s.Config.OpenWeatherBaseURL, coord.Latitude, coord.Longitude, s.Config.OpenWeatherAPIKey)
	return s.Client.Do(ctx, url, nil)
}

func (s *Service) ParseData(data []byte) ([]coreforecast.Sample, error) {
	var resp APIResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse forecast data: %w", err)
	}

	samples := make([]coreforecast.Sample, 0, len(resp.List))
	for _, item := range resp.List {
		sample := coreforecast.Sample{
			Timestamp:    item.DtTxt,
			TemperatureC: item.Main.Temp,
			HumidityPct:  item.Main.Humidity,
			PressureHPa:  item.Main.Pressure,
			WindSpeedMS:  item.Wind.Speed,
			Pop:          item.Pop,
		}
		if len(item.Weather) > 0 {
			sample.Description = item.Weather[0].Description
			sample.IconCode = item.Weather[0].Icon
		}
		samples = append(samples, sample)
	}
	return samples, nil
}

// Upcoming implements aggregator.ForecastSource.
func (s *Service) Upcoming(ctx context.Context, coord models.Coordinate) ([]coreforecast.Sample, error) {
	data, err := s.FetchData(ctx, coord)
	if err != nil {
		return nil, err
	}
	return s.ParseData(data)
}
