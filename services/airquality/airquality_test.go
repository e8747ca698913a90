package airquality

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SebastianObert/AirCare/internal/aggregator"
	"github.com/SebastianObert/AirCare/internal/config"
	"github.com/SebastianObert/AirCare/models"
)

func testService(baseURL string) *Service {
	return NewService(&config.Config{
		OpenWeatherBaseURL: baseURL,
		OpenWeatherAPIKey:  "test-key",
	})
}

func TestParseData(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectErr   bool
		expectEmpty bool
		validate    func(*testing.T, aggregator.AirSample)
	}{
		{
			name: "valid response",
			input: `{
				"list": [{
					"main": {"aqi": 3},
					"components": {"co": 250.34, "no2": 14.9, "o3": 68.66, "so2": 3.28, "pm2_5": 12.58}
				}]
			}`,
			validate: func(t *testing.T, s aggregator.AirSample) {
				assert.Equal(t, 3, s.Index)
				assert.InDelta(t, 12.58, s.PM25, 1e-9)
				assert.InDelta(t, 250.34, s.CO, 1e-9)
				assert.InDelta(t, 68.66, s.O3, 1e-9)
				assert.InDelta(t, 14.9, s.NO2, 1e-9)
				assert.InDelta(t, 3.28, s.SO2, 1e-9)
			},
		},
		{
			name:        "empty result list is soft failure",
			input:       `{"list": []}`,
			expectEmpty: true,
		},
		{
			name:      "malformed json",
			input:     `{"list": [`,
			expectErr: true,
		},
	}

	svc := testService("http://unused")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sample, err := svc.ParseData([]byte(tt.input))
			switch {
			case tt.expectEmpty:
				assert.ErrorIs(t, err, aggregator.ErrNoData)
			case tt.expectErr:
				assert.Error(t, err)
				assert.NotErrorIs(t, err, aggregator.ErrNoData)
			default:
				require.NoError(t, err)
				tt.validate(t, sample)
			}
		})
	}
}

func TestCurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/air_pollution", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		assert.NotEmpty(t, r.URL.Query().Get("lat"))
		assert.NotEmpty(t, r.URL.Query().Get("lon"))

		w.Write([]byte(`{"list":[{"main":{"aqi":2},"components":{"pm2_5":8.1}}]}`))
	}))
	defer srv.Close()

	svc := testService(srv.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sample, err := svc.Current(ctx, models.Coordinate{Latitude: -6.2, Longitude: 106.8})
	require.NoError(t, err)
	assert.Equal(t, 2, sample.Index)
	assert.InDelta(t, 8.1, sample.PM25, 1e-9)
}
