package application

import (
	"context"

	"github.com/transport-ledger/service-transport/internal/common/domain"
	"github.com/transport-ledger/service-transport/internal/domain/geo"
	"github.com/transport-ledger/service-transport/internal/form"
)

// GeoService exposes address and distance lookups so clients never hold
// provider credentials.
type GeoService struct {
	resolver form.Resolver
}

// NewGeoService creates a new GeoService.
func NewGeoService(resolver form.Resolver) *GeoService {
	return &GeoService{resolver: resolver}
}

// ReverseGeocode resolves a coordinate to an address. Provider failures
// yield the placeholder address, never an error.
func (s *GeoService) ReverseGeocode(ctx context.Context, lat, lng float64) (*geo.AddressResult, error) {
	p, err := geo.NewPoint(lat, lng)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	result := s.resolver.Resolve(ctx, p)
	return &result, nil
}

// Distance returns the driving distance between two coordinates.
func (s *GeoService) Distance(ctx context.Context, start, end geo.Point) (*geo.RouteDistance, error) {
	if err := start.Validate(); err != nil {
		return nil, domain.NewValidationError("start: " + err.Error())
	}
	if err := end.Validate(); err != nil {
		return nil, domain.NewValidationError("end: " + err.Error())
	}
	result := s.resolver.RouteDistance(ctx, start, end)
	return &result, nil
}
