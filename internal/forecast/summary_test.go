package forecast

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const iconBase = "https://openweathermap.org/img/wn"

func intPtr(v int) *int { return &v }

func sampleAt(ts string, temp float64) Sample {
	return Sample{
		Timestamp:    ts,
		TemperatureC: temp,
		HumidityPct:  intPtr(60),
		PressureHPa:  intPtr(1012),
		WindSpeedMS:  3.5,
		Pop:          0.4,
		Description:  "scattered clouds",
		IconCode:     "03d",
	}
}

func TestSummarizeGroupsByDay(t *testing.T) {
	var samples []Sample
	dayOneTemps := []float64{20, 22, 19, 25, 18, 23, 21, 24}
	for i, temp := range dayOneTemps {
		samples = append(samples, sampleAt(fmt.Sprintf("2024-01-01 %02d:00:00", i*3), temp))
	}
	dayTwoTemps := []float64{15, 17, 16, 18}
	for i, temp := range dayTwoTemps {
		samples = append(samples, sampleAt(fmt.Sprintf("2024-01-02 %02d:00:00", i*3), temp))
	}

	daily := Summarize(samples, iconBase)
	require.Len(t, daily, 2)

	assert.Equal(t, "25°", daily[0].TempMax)
	assert.Equal(t, "18°", daily[0].TempMin)
	assert.Equal(t, "Monday", daily[0].Day)

	assert.Equal(t, "18°", daily[1].TempMax)
	assert.Equal(t, "15°", daily[1].TempMin)
	assert.Equal(t, "Tuesday", daily[1].Day)
}

func TestSummarizeCapsAtFiveDays(t *testing.T) {
	var samples []Sample
	for day := 1; day <= 7; day++ {
		samples = append(samples, sampleAt(fmt.Sprintf("2024-01-%02d 09:00:00", day), 20))
	}

	daily := Summarize(samples, iconBase)
	require.Len(t, daily, 5)
	assert.Equal(t, "Monday", daily[0].Day)
	assert.Equal(t, "Friday", daily[4].Day)
}

func TestSummarizeRepresentativeSample(t *testing.T) {
	t.Run("midday sample wins regardless of position", func(t *testing.T) {
		morning := sampleAt("2024-01-01 06:00:00", 12)
		morning.Description = "mist"
		midday := sampleAt("2024-01-01 12:00:00", 20)
		midday.Description = "clear sky"
		midday.IconCode = "01d"

		daily := Summarize([]Sample{morning, midday}, iconBase)
		require.Len(t, daily, 1)
		assert.Equal(t, "Clear sky", daily[0].Description)
		assert.Equal(t, iconBase+"/01d@2x.png", daily[0].IconURL)
	})

	t.Run("no midday sample falls back to first in input order", func(t *testing.T) {
		evening := sampleAt("2024-01-01 18:00:00", 14)
		evening.Description = "light rain"
		night := sampleAt("2024-01-01 21:00:00", 11)
		night.Description = "heavy rain"

		daily := Summarize([]Sample{evening, night}, iconBase)
		require.Len(t, daily, 1)
		assert.Equal(t, "Light rain", daily[0].Description)
	})
}

func TestSummarizeSingleSampleDay(t *testing.T) {
	daily := Summarize([]Sample{sampleAt("2024-03-08 09:00:00", 21.6)}, iconBase)
	require.Len(t, daily, 1)

	assert.Equal(t, "22°", daily[0].TempMax)
	assert.Equal(t, "22°", daily[0].TempMin)
	assert.Equal(t, "60%", daily[0].Humidity)
	assert.Equal(t, "3.5 m/s", daily[0].WindSpeed)
	assert.Equal(t, "40%", daily[0].Precipitation)
	assert.Equal(t, "1012 hPa", daily[0].Pressure)
	assert.Equal(t, "N/A", daily[0].UVIndex)
}

func TestSummarizeMissingOptionalFields(t *testing.T) {
	s := sampleAt("2024-01-01 12:00:00", 20)
	s.HumidityPct = nil
	s.PressureHPa = nil
	s.IconCode = ""

	daily := Summarize([]Sample{s}, iconBase)
	require.Len(t, daily, 1)

	assert.Equal(t, "N/A", daily[0].Humidity)
	assert.Equal(t, "N/A", daily[0].Pressure)
	assert.Empty(t, daily[0].IconURL)
}

func TestSummarizeEmptyInput(t *testing.T) {
	assert.Empty(t, Summarize(nil, iconBase))
	assert.Empty(t, Summarize([]Sample{}, iconBase))
}
