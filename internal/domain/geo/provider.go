package geo

import (
	"context"
	"errors"
)

// UnknownLocation is the address reported when reverse geocoding fails.
const UnknownLocation = "Unknown Location"

// ErrNoAddress is returned by a geocoder whose response carries no address.
var ErrNoAddress = errors.New("geocoder returned no address")

// ErrNoRoute is returned by a router whose response carries no route.
var ErrNoRoute = errors.New("router returned no route")

// ReverseGeocoder turns a coordinate into a human-readable place description.
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, p Point) (string, error)
}

// Router returns the driving distance in meters between two coordinates.
type Router interface {
	DrivingDistanceMeters(ctx context.Context, start, end Point) (float64, error)
}

// RouteDistance is a distance lookup result. Resolved is false when the
// routing provider failed, so a zero Km can be told apart from a real one.
type RouteDistance struct {
	Km       int  `json:"distance_km"`
	Resolved bool `json:"resolved"`
}

// AddressResult is the outcome of a reverse geocode. Degraded means Address
// is the UnknownLocation placeholder.
type AddressResult struct {
	Address  string `json:"address"`
	Degraded bool   `json:"degraded"`
}
