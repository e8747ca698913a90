package aggregator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SebastianObert/AirCare/internal/forecast"
	"github.com/SebastianObert/AirCare/internal/history"
	"github.com/SebastianObert/AirCare/models"
)

const iconBase = "https://openweathermap.org/img/wn"

type airFunc func(ctx context.Context, coord models.Coordinate) (AirSample, error)

func (f airFunc) Current(ctx context.Context, coord models.Coordinate) (AirSample, error) {
	return f(ctx, coord)
}

type weatherFunc func(ctx context.Context, coord models.Coordinate) (WeatherSample, error)

func (f weatherFunc) Current(ctx context.Context, coord models.Coordinate) (WeatherSample, error) {
	return f(ctx, coord)
}

type forecastFunc func(ctx context.Context, coord models.Coordinate) ([]forecast.Sample, error)

func (f forecastFunc) Upcoming(ctx context.Context, coord models.Coordinate) ([]forecast.Sample, error) {
	return f(ctx, coord)
}

type fakeIdentity struct {
	id string
	ok bool
}

func (f fakeIdentity) CurrentUserID() (string, bool) { return f.id, f.ok }

type fakeStore struct {
	mu      sync.Mutex
	entries []history.Entry
	pushErr error
}

func (s *fakeStore) PushNew(_ context.Context, entry history.Entry) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pushErr != nil {
		return "", s.pushErr
	}
	entry.ID = fmt.Sprintf("entry-%d", len(s.entries)+1)
	s.entries = append(s.entries, entry)
	return entry.ID, nil
}

func (s *fakeStore) Write(context.Context, string, string, history.Entry) error { return nil }
func (s *fakeStore) Update(context.Context, string, string, map[string]interface{}) error {
	return nil
}
func (s *fakeStore) Delete(context.Context, string, string) error { return nil }
func (s *fakeStore) List(context.Context, string) ([]history.Entry, error) {
	return nil, nil
}
func (s *fakeStore) ObserveAll(context.Context, string) (<-chan []history.Entry, error) {
	return nil, nil
}

func (s *fakeStore) saved() []history.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]history.Entry(nil), s.entries...)
}

func staticAir(index int) airFunc {
	return func(context.Context, models.Coordinate) (AirSample, error) {
		return AirSample{Index: index, PM25: 12.5, CO: 240.3, O3: 68.7, NO2: 14.1, SO2: 3.2}, nil
	}
}

func staticWeather() weatherFunc {
	return func(context.Context, models.Coordinate) (WeatherSample, error) {
		return WeatherSample{TemperatureC: 21.53, Description: "clear sky", IconCode: "01d"}, nil
	}
}

func staticForecast() forecastFunc {
	return func(context.Context, models.Coordinate) ([]forecast.Sample, error) {
		return []forecast.Sample{
			{Timestamp: "2024-01-01 12:00:00", TemperatureC: 20, Description: "few clouds", IconCode: "02d"},
		}, nil
	}
}

func TestUpdatePopulatesAllDomains(t *testing.T) {
	store := &fakeStore{}
	agg := New(staticAir(3), staticWeather(), staticForecast(), store, fakeIdentity{"user-1", true}, iconBase)

	agg.Update(context.Background(), models.Coordinate{Latitude: -6.2, Longitude: 106.8}, "Jakarta")
	agg.Wait()

	view := agg.View()
	assert.Equal(t, "Jakarta", view.Location)
	assert.Equal(t, "125", view.AQIValue)
	assert.Equal(t, "Moderate", view.AQIStatus)
	assert.Equal(t, 3, view.AQITier)
	assert.InDelta(t, 0.5, view.AQIIndicator, 1e-9)
	assert.Equal(t, "12.5 µg/m³", view.PM25)
	assert.Equal(t, "240.3 µg/m³", view.CO)
	assert.True(t, strings.HasPrefix(view.LastUpdated, "Updated: "))

	assert.Equal(t, "21.5°C", view.Temperature)
	assert.Equal(t, "Clear sky", view.WeatherDescription)
	assert.Equal(t, iconBase+"/01d@2x.png", view.WeatherIconURL)

	require.Len(t, view.Forecast, 1)
	assert.Equal(t, "Monday", view.Forecast[0].Day)
	assert.True(t, view.ReadyToSave)
}

func TestReadyToSaveInvariant(t *testing.T) {
	gate := make(chan struct{})
	air := airFunc(func(context.Context, models.Coordinate) (AirSample, error) {
		<-gate
		return AirSample{Index: 1}, nil
	})

	agg := New(air, staticWeather(), staticForecast(), &fakeStore{}, fakeIdentity{"user-1", true}, iconBase)
	assert.False(t, agg.Snapshot.ReadyToSave.Get())

	agg.Update(context.Background(), models.Coordinate{Latitude: 1, Longitude: 2}, "A")
	assert.False(t, agg.Snapshot.ReadyToSave.Get(), "not ready until the air fetch completes")

	close(gate)
	agg.Wait()
	assert.True(t, agg.Snapshot.ReadyToSave.Get())

	// The next cycle invalidates readiness before any fetch resolves.
	gate2 := make(chan struct{})
	air2 := &gatedAir{gate: gate2, sample: AirSample{Index: 2}}
	agg2 := New(air2, staticWeather(), staticForecast(), &fakeStore{}, fakeIdentity{"user-1", true}, iconBase)
	agg2.Update(context.Background(), models.Coordinate{Latitude: 1, Longitude: 2}, "A")
	close(gate2)
	agg2.Wait()
	require.True(t, agg2.Snapshot.ReadyToSave.Get())

	air2.gate = nil
	agg2.Update(context.Background(), models.Coordinate{Latitude: 3, Longitude: 4}, "B")
	assert.False(t, agg2.Snapshot.ReadyToSave.Get(), "ready flag drops the moment a new cycle starts")
	agg2.Wait()
}

type gatedAir struct {
	gate   chan struct{}
	sample AirSample
}

func (g *gatedAir) Current(context.Context, models.Coordinate) (AirSample, error) {
	if g.gate != nil {
		<-g.gate
	}
	return g.sample, nil
}

func TestPartialFailureIndependence(t *testing.T) {
	weather := weatherFunc(func(context.Context, models.Coordinate) (WeatherSample, error) {
		return WeatherSample{}, errors.New("connection reset")
	})

	agg := New(staticAir(2), weather, staticForecast(), &fakeStore{}, fakeIdentity{"user-1", true}, iconBase)
	agg.Update(context.Background(), models.Coordinate{Latitude: 1, Longitude: 1}, "A")
	agg.Wait()

	view := agg.View()
	assert.Equal(t, "75", view.AQIValue)
	assert.Equal(t, "Fair", view.AQIStatus)
	assert.True(t, view.ReadyToSave, "air quality succeeded, weather failure must not block saving")
	require.Len(t, view.Forecast, 1)

	assert.Equal(t, "--°C", view.Temperature)
	assert.Equal(t, "Failed to load", view.WeatherDescription)
}

func TestAirFetchFailureForcesNotReady(t *testing.T) {
	air := airFunc(func(context.Context, models.Coordinate) (AirSample, error) {
		return AirSample{}, errors.New("timeout")
	})

	agg := New(air, staticWeather(), staticForecast(), &fakeStore{}, fakeIdentity{"user-1", true}, iconBase)
	agg.Update(context.Background(), models.Coordinate{Latitude: 1, Longitude: 1}, "A")
	agg.Wait()

	view := agg.View()
	assert.False(t, view.ReadyToSave)
	assert.Equal(t, "--", view.AQIValue)
	assert.Equal(t, "Failed to load data", view.AQIStatus)
	assert.Equal(t, "-- µg/m³", view.PM25)

	// Independently-succeeding domains stay populated.
	assert.Equal(t, "21.5°C", view.Temperature)
	require.Len(t, view.Forecast, 1)
}

func TestEmptyAirResultIsSoftFailure(t *testing.T) {
	air := airFunc(func(context.Context, models.Coordinate) (AirSample, error) {
		return AirSample{}, ErrNoData
	})

	agg := New(air, staticWeather(), staticForecast(), &fakeStore{}, fakeIdentity{"user-1", true}, iconBase)
	agg.Update(context.Background(), models.Coordinate{Latitude: 1, Longitude: 1}, "A")
	agg.Wait()

	view := agg.View()
	assert.False(t, view.ReadyToSave)
	assert.Equal(t, "AQI data not available", view.AQIStatus)
	assert.Equal(t, "--", view.AQIValue)
	assert.Equal(t, "Clear sky", view.WeatherDescription)
	require.Len(t, view.Forecast, 1)
}

func TestStaleCycleResultsAreDiscarded(t *testing.T) {
	first := models.Coordinate{Latitude: -6.2, Longitude: 106.8}
	second := models.Coordinate{Latitude: 51.5, Longitude: -0.1}

	gate := make(chan struct{})
	air := airFunc(func(_ context.Context, coord models.Coordinate) (AirSample, error) {
		if coord == first {
			<-gate
			return AirSample{Index: 5}, nil
		}
		return AirSample{Index: 2}, nil
	})

	store := &fakeStore{}
	agg := New(air, staticWeather(), staticForecast(), store, fakeIdentity{"user-1", true}, iconBase)

	agg.Update(context.Background(), first, "First")
	agg.Update(context.Background(), second, "Second")
	close(gate)
	agg.Wait()

	view := agg.View()
	assert.Equal(t, "75", view.AQIValue, "late result from the superseded cycle must not apply")
	assert.Equal(t, "Fair", view.AQIStatus)

	agg.Save(context.Background())
	saved := store.saved()
	require.Len(t, saved, 1)
	assert.Equal(t, "Lat: 51.5, Lon: -0.1", saved[0].Location)
}

func TestSavePreconditions(t *testing.T) {
	t.Run("not authenticated", func(t *testing.T) {
		store := &fakeStore{}
		agg := New(staticAir(1), staticWeather(), staticForecast(), store, fakeIdentity{}, iconBase)
		agg.Update(context.Background(), models.Coordinate{Latitude: 1, Longitude: 1}, "A")
		agg.Wait()

		agg.Save(context.Background())

		msg, ok := agg.SaveStatus.Consume()
		require.True(t, ok)
		assert.Equal(t, "Save failed: you must be signed in to save history.", msg)
		assert.Empty(t, store.saved())
	})

	t.Run("no data yet", func(t *testing.T) {
		store := &fakeStore{}
		agg := New(staticAir(1), staticWeather(), staticForecast(), store, fakeIdentity{"user-1", true}, iconBase)

		agg.Save(context.Background())

		msg, ok := agg.SaveStatus.Consume()
		require.True(t, ok)
		assert.Equal(t, "Save failed: no air quality data yet.", msg)
		assert.Empty(t, store.saved())
	})

	t.Run("success writes exactly one entry", func(t *testing.T) {
		store := &fakeStore{}
		agg := New(staticAir(4), staticWeather(), staticForecast(), store, fakeIdentity{"user-7", true}, iconBase)
		coord := models.Coordinate{Latitude: -6.2413, Longitude: 106.6263}
		agg.Update(context.Background(), coord, "Serpong")
		agg.Wait()

		agg.Save(context.Background())

		msg, ok := agg.SaveStatus.Consume()
		require.True(t, ok)
		assert.Equal(t, "Snapshot saved to history.", msg)

		saved := store.saved()
		require.Len(t, saved, 1)
		entry := saved[0]
		assert.Equal(t, "user-7", entry.UserID)
		assert.Equal(t, "Lat: -6.2413, Lon: 106.6263", entry.Location)
		assert.Equal(t, "175", entry.AQIValue)
		assert.Equal(t, "Poor", entry.AQIStatus)
		assert.Equal(t, 4, entry.SeverityTier)
		assert.Positive(t, entry.Timestamp)
		require.NotNil(t, entry.WeatherTemp)
		assert.Equal(t, "21.5°C", *entry.WeatherTemp)
		require.NotNil(t, entry.WeatherCondition)
		assert.Equal(t, "Clear sky", *entry.WeatherCondition)
	})

	t.Run("store failure surfaces reason and keeps ready flag", func(t *testing.T) {
		store := &fakeStore{pushErr: errors.New("quota exceeded")}
		agg := New(staticAir(1), staticWeather(), staticForecast(), store, fakeIdentity{"user-1", true}, iconBase)
		agg.Update(context.Background(), models.Coordinate{Latitude: 1, Longitude: 1}, "A")
		agg.Wait()

		agg.Save(context.Background())

		msg, ok := agg.SaveStatus.Consume()
		require.True(t, ok)
		assert.Contains(t, msg, "quota exceeded")
		assert.True(t, agg.Snapshot.ReadyToSave.Get())
	})
}
