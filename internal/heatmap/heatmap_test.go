package heatmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeight(t *testing.T) {
	points := []DataPoint{
		{Lat: -6.2413, Lon: 106.6263, AQI: 145},
		{Lat: -6.1754, Lon: 106.8272, AQI: 45},
	}

	weighted := Weight(points)
	require.Len(t, weighted, 2)

	assert.Equal(t, -6.2413, weighted[0].Lat)
	assert.Equal(t, 106.6263, weighted[0].Lon)
	assert.Equal(t, 145.0, weighted[0].Weight)
	assert.Equal(t, 45.0, weighted[1].Weight)
}

func TestWeightEmpty(t *testing.T) {
	assert.Empty(t, Weight(nil))
	assert.Empty(t, Weight([]DataPoint{}))
}
