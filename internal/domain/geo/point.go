package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
)

// Point is a WGS84 coordinate pair as emitted by the map picker.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NewPoint validates lat/lng ranges and returns a Point.
func NewPoint(lat, lng float64) (Point, error) {
	p := Point{Lat: lat, Lng: lng}
	if err := p.Validate(); err != nil {
		return Point{}, err
	}
	return p, nil
}

// Validate reports whether the point lies within WGS84 bounds.
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) {
		return fmt.Errorf("coordinate is not a number")
	}
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", p.Lat)
	}
	if p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", p.Lng)
	}
	return nil
}

// Orb returns the point in orb's [lon, lat] order.
func (p Point) Orb() orb.Point { return orb.Point{p.Lng, p.Lat} }

// LngLat formats the point as "lng,lat", the order routing services expect.
func (p Point) LngLat() string {
	return fmt.Sprintf("%s,%s", formatCoord(p.Lng), formatCoord(p.Lat))
}

// StraightLineKm is the great-circle distance between two points.
func StraightLineKm(a, b Point) float64 {
	return orbgeo.DistanceHaversine(a.Orb(), b.Orb()) / 1000
}

func formatCoord(v float64) string {
	return fmt.Sprintf("%.6f", v)
}
