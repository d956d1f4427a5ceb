package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPoint(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lng     float64
		wantErr bool
	}{
		{"india centre", 20.5937, 78.9629, false},
		{"poles", 90, -180, false},
		{"lat too large", 91, 0, true},
		{"lng too small", 0, -180.5, true},
		{"nan", math.NaN(), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPoint(tt.lat, tt.lng)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestPoint_LngLat(t *testing.T) {
	p := Point{Lat: 17.385, Lng: 78.4867}
	assert.Equal(t, "78.486700,17.385000", p.LngLat())
	assert.Equal(t, 78.4867, p.Orb().Lon())
	assert.Equal(t, 17.385, p.Orb().Lat())
}

func TestStraightLineKm(t *testing.T) {
	hyderabad := Point{Lat: 17.385, Lng: 78.4867}
	warangal := Point{Lat: 17.9689, Lng: 79.5941}

	km := StraightLineKm(hyderabad, warangal)
	require.Greater(t, km, 125.0)
	assert.Less(t, km, 140.0)
	assert.Zero(t, StraightLineKm(hyderabad, hyderabad))
}
