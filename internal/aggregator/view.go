package aggregator

import "github.com/SebastianObert/AirCare/internal/forecast"

// View is a plain, JSON-ready copy of the current snapshot state. Reading it
// while fetches are in flight may observe a partially-updated state; each
// field's staleness is bounded by its own fetch.
type View struct {
	Location           string           `json:"location"`
	LastUpdated        string           `json:"lastUpdated"`
	AQIValue           string           `json:"aqiValue"`
	AQIStatus          string           `json:"aqiStatus"`
	AQITier            int              `json:"aqiTier"`
	AQIIndicator       float64          `json:"aqiIndicator"`
	Recommendation     string           `json:"recommendation"`
	PM25               string           `json:"pm25"`
	CO                 string           `json:"co"`
	O3                 string           `json:"o3"`
	NO2                string           `json:"no2"`
	SO2                string           `json:"so2"`
	WeatherIconURL     string           `json:"weatherIconUrl"`
	Temperature        string           `json:"temperature"`
	WeatherDescription string           `json:"weatherDescription"`
	Forecast           []forecast.Daily `json:"forecast"`
	ReadyToSave        bool             `json:"readyToSave"`
}

// View returns the current value of every snapshot field.
func (a *Aggregator) View() View {
	s := a.Snapshot
	return View{
		Location:           s.Location.Get(),
		LastUpdated:        s.LastUpdated.Get(),
		AQIValue:           s.AQIValue.Get(),
		AQIStatus:          s.AQIStatus.Get(),
		AQITier:            s.AQITier.Get(),
		AQIIndicator:       s.AQIIndicator.Get(),
		Recommendation:     s.Recommendation.Get(),
		PM25:               s.PM25.Get(),
		CO:                 s.CO.Get(),
		O3:                 s.O3.Get(),
		NO2:                s.NO2.Get(),
		SO2:                s.SO2.Get(),
		WeatherIconURL:     s.WeatherIconURL.Get(),
		Temperature:        s.Temperature.Get(),
		WeatherDescription: s.WeatherDescription.Get(),
		Forecast:           s.Forecast.Get(),
		ReadyToSave:        s.ReadyToSave.Get(),
	}
}
