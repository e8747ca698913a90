// Package aggregator merges air-quality, current-weather and forecast fetches
// for a coordinate into one observable view snapshot, and saves snapshots to
// the history store.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/SebastianObert/AirCare/internal/aqi"
	"github.com/SebastianObert/AirCare/internal/forecast"
	"github.com/SebastianObert/AirCare/internal/history"
	"github.com/SebastianObert/AirCare/internal/logger"
	"github.com/SebastianObert/AirCare/internal/observe"
	"github.com/SebastianObert/AirCare/models"
)

// ErrNoData reports that the air-quality source was reachable but returned no
// records for the coordinate. It is a soft failure, distinct from a fetch error.
var ErrNoData = errors.New("no air quality data for coordinate")

// AirSample is one air-quality reading for "now".
type AirSample struct {
	Index int
	PM25  float64
	CO    float64
	O3    float64
	NO2   float64
	SO2   float64
}

// WeatherSample is one current-weather reading.
type WeatherSample struct {
	TemperatureC float64
	Description  string
	IconCode     string
}

// AirQualitySource returns the current air-quality reading for a coordinate,
// or ErrNoData when the source has no records for it.
type AirQualitySource interface {
	Current(ctx context.Context, coord models.Coordinate) (AirSample, error)
}

type WeatherSource interface {
	Current(ctx context.Context, coord models.Coordinate) (WeatherSample, error)
}

type ForecastSource interface {
	Upcoming(ctx context.Context, coord models.Coordinate) ([]forecast.Sample, error)
}

// Identity supplies the user namespace for saves. Saving without an identity
// is rejected, not an error condition of the fetch pipeline.
type Identity interface {
	CurrentUserID() (string, bool)
}

// Display placeholders and status messages.
const (
	placeholderPollutant = "-- µg/m³"
	placeholderTemp      = "--°C"

	statusFetching    = "Fetching data..."
	statusLoadFailed  = "Failed to load data"
	statusNoData      = "AQI data not available"
	weatherLoadFailed = "Failed to load"
	weatherLoading    = "Loading weather..."

	msgSaveNotSignedIn = "Save failed: you must be signed in to save history."
	msgSaveNoData      = "Save failed: no air quality data yet."
)

// SaveSuccessMessage is emitted through SaveStatus after a successful save.
// Callers compare against it to distinguish success from the failure messages.
const SaveSuccessMessage = "Snapshot saved to history."

// Snapshot is the merged, observable view state. Each field updates
// independently as its fetch completes.
type Snapshot struct {
	Location           *observe.Value[string]
	LastUpdated        *observe.Value[string]
	AQIValue           *observe.Value[string]
	AQIStatus          *observe.Value[string]
	AQITier            *observe.Value[int]
	AQIIndicator       *observe.Value[float64]
	Recommendation     *observe.Value[string]
	PM25               *observe.Value[string]
	CO                 *observe.Value[string]
	O3                 *observe.Value[string]
	NO2                *observe.Value[string]
	SO2                *observe.Value[string]
	WeatherIconURL     *observe.Value[string]
	Temperature        *observe.Value[string]
	WeatherDescription *observe.Value[string]
	Forecast           *observe.Value[[]forecast.Daily]
	ReadyToSave        *observe.Value[bool]
}

func newSnapshot() *Snapshot {
	return &Snapshot{
		Location:           observe.NewValue("Locating..."),
		LastUpdated:        observe.NewValue(""),
		AQIValue:           observe.NewValue(aqi.PlaceholderValue),
		AQIStatus:          observe.NewValue("Waiting for location"),
		AQITier:            observe.NewValue(2),
		AQIIndicator:       observe.NewValue(0.5),
		Recommendation:     observe.NewValue("Share your location to see recommendations."),
		PM25:               observe.NewValue(placeholderPollutant),
		CO:                 observe.NewValue(placeholderPollutant),
		O3:                 observe.NewValue(placeholderPollutant),
		NO2:                observe.NewValue(placeholderPollutant),
		SO2:                observe.NewValue(placeholderPollutant),
		WeatherIconURL:     observe.NewValue(""),
		Temperature:        observe.NewValue(placeholderTemp),
		WeatherDescription: observe.NewValue(weatherLoading),
		Forecast:           observe.NewValue([]forecast.Daily{}),
		ReadyToSave:        observe.NewValue(false),
	}
}

// Aggregator owns the in-progress fetch state and the current Snapshot.
type Aggregator struct {
	air         AirQualitySource
	weather     WeatherSource
	forecastSrc ForecastSource
	store       history.Store
	identity    Identity
	iconBaseURL string
	now         func() time.Time

	// cycle invalidates late results from superseded fetch cycles.
	cycle atomic.Int64
	wg    sync.WaitGroup

	mu              sync.Mutex
	lastCoord       models.Coordinate
	lastAQI         *aqi.Classification
	lastWeatherTemp *string
	lastWeatherCond *string

	Snapshot   *Snapshot
	SaveStatus *observe.Event[string]
}

func New(air AirQualitySource, weather WeatherSource, forecastSrc ForecastSource, store history.Store, identity Identity, iconBaseURL string) *Aggregator {
	return &Aggregator{
		air:         air,
		weather:     weather,
		forecastSrc: forecastSrc,
		store:       store,
		identity:    identity,
		iconBaseURL: iconBaseURL,
		now:         time.Now,
		Snapshot:    newSnapshot(),
		SaveStatus:  &observe.Event[string]{},
	}
}

// Update starts a new fetch cycle for the coordinate. It immediately
// invalidates the previous cycle's snapshot state (ready flag, forecast) and
// launches the three fetches concurrently; each fetch writes its own disjoint
// field set when it completes, and results from a superseded cycle are
// dropped.
func (a *Aggregator) Update(ctx context.Context, coord models.Coordinate, label string) {
	token := a.cycle.Add(1)

	a.mu.Lock()
	a.lastAQI = nil
	a.Snapshot.Location.Set(label)
	a.Snapshot.AQIStatus.Set(statusFetching)
	a.Snapshot.Forecast.Set([]forecast.Daily{})
	a.Snapshot.ReadyToSave.Set(false)
	a.mu.Unlock()

	a.wg.Add(3)
	go func() {
		defer a.wg.Done()
		sample, err := a.air.Current(ctx, coord)
		a.applyAir(token, coord, sample, err)
	}()
	go func() {
		defer a.wg.Done()
		sample, err := a.weather.Current(ctx, coord)
		a.applyWeather(token, sample, err)
	}()
	go func() {
		defer a.wg.Done()
		samples, err := a.forecastSrc.Upcoming(ctx, coord)
		a.applyForecast(token, samples, err)
	}()
}

// Wait blocks until all in-flight fetches have been applied or discarded.
func (a *Aggregator) Wait() {
	a.wg.Wait()
}

func (a *Aggregator) stale(token int64) bool {
	return a.cycle.Load() != token
}

func (a *Aggregator) applyAir(token int64, coord models.Coordinate, sample AirSample, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stale(token) {
		logger.Debug("Dropping stale air-quality result for cycle %d", token)
		return
	}

	if err != nil {
		if errors.Is(err, ErrNoData) {
			a.resetAirFields(statusNoData)
		} else {
			logger.Error("Air-quality fetch failed: %v", err)
			a.resetAirFields(statusLoadFailed)
		}
		return
	}

	c := aqi.Classify(sample.Index)
	a.lastAQI = &c
	a.lastCoord = coord

	a.Snapshot.LastUpdated.Set("Updated: " + a.now().Format("15:04"))
	a.Snapshot.AQIValue.Set(c.Value)
	a.Snapshot.AQIStatus.Set(c.Category)
	a.Snapshot.AQITier.Set(c.Tier)
	a.Snapshot.AQIIndicator.Set(c.IndicatorPosition)
	a.Snapshot.Recommendation.Set(c.Recommendation)
	a.Snapshot.PM25.Set(pollutantLabel(sample.PM25))
	a.Snapshot.CO.Set(pollutantLabel(sample.CO))
	a.Snapshot.O3.Set(pollutantLabel(sample.O3))
	a.Snapshot.NO2.Set(pollutantLabel(sample.NO2))
	a.Snapshot.SO2.Set(pollutantLabel(sample.SO2))
	a.Snapshot.ReadyToSave.Set(true)
}

// resetAirFields puts every AQI-owned field back to its placeholder. Caller
// holds a.mu.
func (a *Aggregator) resetAirFields(status string) {
	a.lastAQI = nil
	a.Snapshot.AQIStatus.Set(status)
	a.Snapshot.AQIValue.Set(aqi.PlaceholderValue)
	a.Snapshot.LastUpdated.Set("")
	a.Snapshot.PM25.Set(placeholderPollutant)
	a.Snapshot.CO.Set(placeholderPollutant)
	a.Snapshot.O3.Set(placeholderPollutant)
	a.Snapshot.NO2.Set(placeholderPollutant)
	a.Snapshot.SO2.Set(placeholderPollutant)
	a.Snapshot.ReadyToSave.Set(false)
}

func (a *Aggregator) applyWeather(token int64, sample WeatherSample, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stale(token) {
		logger.Debug("Dropping stale weather result for cycle %d", token)
		return
	}

	if err != nil {
		logger.Error("Weather fetch failed: %v", err)
		a.lastWeatherTemp = nil
		a.lastWeatherCond = nil
		a.Snapshot.Temperature.Set(placeholderTemp)
		a.Snapshot.WeatherDescription.Set(weatherLoadFailed)
		a.Snapshot.WeatherIconURL.Set("")
		return
	}

	description := capitalize(sample.Description)
	temp := fmt.Sprintf("%.1f°C", sample.TemperatureC)

	a.lastWeatherTemp = &temp
	a.lastWeatherCond = &description

	a.Snapshot.Temperature.Set(temp)
	a.Snapshot.WeatherDescription.Set(description)
	if sample.IconCode != "" {
		a.Snapshot.WeatherIconURL.Set(fmt.Sprintf("%s/%s@2x.png", a.iconBaseURL, sample.IconCode))
	}
}

func (a *Aggregator) applyForecast(token int64, samples []forecast.Sample, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stale(token) {
		logger.Debug("Dropping stale forecast result for cycle %d", token)
		return
	}

	if err != nil {
		logger.Error("Forecast fetch failed: %v", err)
		a.Snapshot.Forecast.Set([]forecast.Daily{})
		return
	}

	a.Snapshot.Forecast.Set(forecast.Summarize(samples, a.iconBaseURL))
}

// Save persists the current snapshot as a history entry. The result is
// reported through SaveStatus as a one-shot event; a failed write is not
// retried and does not change the ready flag.
func (a *Aggregator) Save(ctx context.Context) {
	userID, ok := a.identity.CurrentUserID()
	if !ok {
		a.SaveStatus.Emit(msgSaveNotSignedIn)
		return
	}

	a.mu.Lock()
	if a.lastAQI == nil || !a.Snapshot.ReadyToSave.Get() {
		a.mu.Unlock()
		a.SaveStatus.Emit(msgSaveNoData)
		return
	}

	// The entry carries the exact coordinate that produced the current AQI
	// fields, never a re-derived one.
	entry := history.Entry{
		UserID:           userID,
		Location:         fmt.Sprintf("Lat: %v, Lon: %v", a.lastCoord.Latitude, a.lastCoord.Longitude),
		AQIValue:         a.lastAQI.Value,
		AQIStatus:        a.lastAQI.Category,
		SeverityTier:     a.lastAQI.Tier,
		Timestamp:        a.now().UnixMilli(),
		WeatherTemp:      a.lastWeatherTemp,
		WeatherCondition: a.lastWeatherCond,
	}
	a.mu.Unlock()

	id, err := a.store.PushNew(ctx, entry)
	if err != nil {
		a.SaveStatus.Emit("Failed to save snapshot: " + err.Error())
		return
	}

	logger.Info("Saved history entry %s for user %s", id, userID)
	a.SaveStatus.Emit(SaveSuccessMessage)
}

func pollutantLabel(v float64) string {
	return fmt.Sprintf("%v µg/m³", v)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
