// Package aqi maps the ordinal air-quality index (1..5) reported by the
// pollution API to everything the UI and the saved history derive from it.
// This table is the single source of truth for category, tier and indicator
// position; no other package recomputes them.
package aqi

// PlaceholderValue is shown whenever no valid index is available.
const PlaceholderValue = "--"

// Classification is the complete derived view of one ordinal index.
type Classification struct {
	// Value is the human-facing numeric display value ("25".."250"), or
	// PlaceholderValue when the index is unknown.
	Value string
	// Category is the human-facing label ("Good".."Very Poor", "Unknown").
	Category string
	// Tier selects the visual severity treatment, 1 (green) to 5 (maroon).
	Tier int
	// IndicatorPosition is the relative position on the AQI gauge, in [0,1].
	IndicatorPosition float64
	// Recommendation is the health recommendation text for this index.
	Recommendation string
}

var table = map[int]Classification{
	1: {
		Value:             "25",
		Category:          "Good",
		Tier:              1,
		IndicatorPosition: 0.1,
		Recommendation:    "Air quality is excellent. A great time for outdoor activities.",
	},
	2: {
		Value:             "75",
		Category:          "Fair",
		Tier:              2,
		IndicatorPosition: 0.3,
		Recommendation:    "Air quality is acceptable. Enjoy your day!",
	},
	3: {
		Value:             "125",
		Category:          "Moderate",
		Tier:              3,
		IndicatorPosition: 0.5,
		Recommendation:    "Reduce prolonged outdoor exertion if you have respiratory sensitivities.",
	},
	4: {
		Value:             "175",
		Category:          "Poor",
		Tier:              4,
		IndicatorPosition: 0.7,
		Recommendation:    "Unhealthy air. Limit time outdoors and consider wearing a mask.",
	},
	5: {
		Value:             "250",
		Category:          "Very Poor",
		Tier:              5,
		IndicatorPosition: 0.9,
		Recommendation:    "Very unhealthy. Avoid all outdoor activities if possible.",
	},
}

var unknown = Classification{
	Value:             PlaceholderValue,
	Category:          "Unknown",
	Tier:              2,
	IndicatorPosition: 0.5,
	Recommendation:    "No data available.",
}

// Classify is total: any index outside 1..5 yields the unknown fallback row.
func Classify(index int) Classification {
	if c, ok := table[index]; ok {
		return c
	}
	return unknown
}
