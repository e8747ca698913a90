// Package forecast turns the flat 3-hour sample list returned by the forecast
// API into at most five per-day summaries.
package forecast

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	// representativeTime is the preferred time-of-day for the sample that
	// supplies a day's description, icon and secondary readings.
	representativeTime = "12:00:00"

	// maxDays caps the summary length.
	maxDays = 5

	// notAvailable marks optional readings the source did not provide.
	notAvailable = "N/A"
)

// Sample is one 3-hour forecast reading.
type Sample struct {
	// Timestamp is the source-provided display timestamp, "yyyy-MM-dd HH:mm:ss".
	Timestamp    string
	TemperatureC float64
	HumidityPct  *int
	PressureHPa  *int
	WindSpeedMS  float64
	// Pop is the precipitation probability in [0,1].
	Pop         float64
	Description string
	IconCode    string
}

// Daily is the derived summary for one calendar day.
type Daily struct {
	Day           string `json:"day"`
	IconURL       string `json:"iconUrl"`
	TempMax       string `json:"tempMax"`
	TempMin       string `json:"tempMin"`
	Description   string `json:"description"`
	Humidity      string `json:"humidity"`
	WindSpeed     string `json:"windSpeed"`
	Precipitation string `json:"precipitation"`
	Pressure      string `json:"pressure"`
	UVIndex       string `json:"uvIndex"`
}

// Summarize groups samples by the literal date portion of their timestamp,
// derives min/max temperatures per group and picks a representative sample
// (midday if present, otherwise the first in input order). Groups are sorted
// by date ascending and capped at five days. An empty input yields an empty
// summary.
func Summarize(samples []Sample, iconBaseURL string) []Daily {
	grouped := make(map[string][]Sample)
	var order []string
	for _, s := range samples {
		// Grouping key is the date exactly as the source spells it; the
		// timestamp is never re-derived through a timezone.
		date, _, _ := strings.Cut(s.Timestamp, " ")
		if _, ok := grouped[date]; !ok {
			order = append(order, date)
		}
		grouped[date] = append(grouped[date], s)
	}

	sort.Strings(order)
	if len(order) > maxDays {
		order = order[:maxDays]
	}

	daily := make([]Daily, 0, len(order))
	for _, date := range order {
		group := grouped[date]
		daily = append(daily, summarizeDay(date, group, iconBaseURL))
	}
	return daily
}

func summarizeDay(date string, group []Sample, iconBaseURL string) Daily {
	minTemp := group[0].TemperatureC
	maxTemp := group[0].TemperatureC
	for _, s := range group[1:] {
		if s.TemperatureC < minTemp {
			minTemp = s.TemperatureC
		}
		if s.TemperatureC > maxTemp {
			maxTemp = s.TemperatureC
		}
	}

	rep := group[0]
	for _, s := range group {
		if strings.Contains(s.Timestamp, representativeTime) {
			rep = s
			break
		}
	}

	iconURL := ""
	if rep.IconCode != "" {
		iconURL = fmt.Sprintf("%s/%s@2x.png", iconBaseURL, rep.IconCode)
	}

	description := rep.Description
	if description == "" {
		description = notAvailable
	} else {
		description = capitalize(description)
	}

	humidity := notAvailable
	if rep.HumidityPct != nil {
		humidity = fmt.Sprintf("%d%%", *rep.HumidityPct)
	}
	pressure := notAvailable
	if rep.PressureHPa != nil {
		pressure = fmt.Sprintf("%d hPa", *rep.PressureHPa)
	}

	return Daily{
		Day:           dayName(date),
		IconURL:       iconURL,
		TempMax:       fmt.Sprintf("%.0f°", maxTemp),
		TempMin:       fmt.Sprintf("%.0f°", minTemp),
		Description:   description,
		Humidity:      humidity,
		WindSpeed:     fmt.Sprintf("%v m/s", rep.WindSpeedMS),
		Precipitation: fmt.Sprintf("%d%%", int(rep.Pop*100)),
		Pressure:      pressure,
		UVIndex:       notAvailable,
	}
}

// dayName renders the weekday for a "yyyy-MM-dd" key, or N/A when the key is
// not a parseable date.
func dayName(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return notAvailable
	}
	return t.Weekday().String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
