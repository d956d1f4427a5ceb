package geo

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"go.uber.org/zap"

	geoDomain "github.com/transport-ledger/service-transport/internal/domain/geo"
)

// DefaultTimeout bounds a single provider call when none is configured.
const DefaultTimeout = 5 * time.Second

// implausibleZeroKm is the straight-line distance above which a routed
// distance of 0 km is reported as unresolved.
const implausibleZeroKm = 1.0

// Resolver wraps a geocoder and a router. It never returns provider
// failures: addresses fall back to UnknownLocation and distances to 0.
// Each call makes exactly one provider attempt.
type Resolver struct {
	geocoder geoDomain.ReverseGeocoder
	router   geoDomain.Router
	timeout  time.Duration
	logger   *zap.Logger
}

// NewResolver creates a Resolver. A non-positive timeout uses DefaultTimeout.
func NewResolver(geocoder geoDomain.ReverseGeocoder, router geoDomain.Router, timeout time.Duration, logger *zap.Logger) *Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Resolver{geocoder: geocoder, router: router, timeout: timeout, logger: logger}
}

// Timeout returns the per-call bound.
func (r *Resolver) Timeout() time.Duration { return r.timeout }

// ResolveAddress returns a human-readable address or UnknownLocation.
func (r *Resolver) ResolveAddress(ctx context.Context, p geoDomain.Point) string {
	return r.Resolve(ctx, p).Address
}

// Resolve is ResolveAddress with the degradation flag.
func (r *Resolver) Resolve(ctx context.Context, p geoDomain.Point) geoDomain.AddressResult {
	if err := p.Validate(); err != nil {
		r.degraded("reverse_geocode", err, zap.Float64("lat", p.Lat), zap.Float64("lng", p.Lng))
		return geoDomain.AddressResult{Address: geoDomain.UnknownLocation, Degraded: true}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	addr, err := r.geocoder.ReverseGeocode(ctx, p)
	if err != nil || addr == "" {
		if err == nil {
			err = geoDomain.ErrNoAddress
		}
		r.degraded("reverse_geocode", err, zap.Float64("lat", p.Lat), zap.Float64("lng", p.Lng))
		return geoDomain.AddressResult{Address: geoDomain.UnknownLocation, Degraded: true}
	}
	return geoDomain.AddressResult{Address: addr}
}

// ComputeRouteDistanceKm returns the driving distance rounded to whole km, or 0 on failure.
func (r *Resolver) ComputeRouteDistanceKm(ctx context.Context, start, end geoDomain.Point) int {
	return r.RouteDistance(ctx, start, end).Km
}

// RouteDistance is ComputeRouteDistanceKm with a resolution flag.
func (r *Resolver) RouteDistance(ctx context.Context, start, end geoDomain.Point) geoDomain.RouteDistance {
	if err := start.Validate(); err != nil {
		r.degraded("route_distance", fmt.Errorf("start: %w", err))
		return geoDomain.RouteDistance{}
	}
	if err := end.Validate(); err != nil {
		r.degraded("route_distance", fmt.Errorf("end: %w", err))
		return geoDomain.RouteDistance{}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	meters, err := r.router.DrivingDistanceMeters(ctx, start, end)
	if err != nil {
		r.degraded("route_distance", err,
			zap.String("start", start.LngLat()),
			zap.String("end", end.LngLat()),
		)
		return geoDomain.RouteDistance{}
	}

	km := MetersToKm(meters)
	if km == 0 && geoDomain.StraightLineKm(start, end) > implausibleZeroKm {
		r.degraded("route_distance", fmt.Errorf("routed distance %.0fm shorter than straight line", meters))
		return geoDomain.RouteDistance{}
	}
	return geoDomain.RouteDistance{Km: km, Resolved: true}
}

// MetersToKm converts meters to whole kilometers, rounding half away from zero.
func MetersToKm(meters float64) int {
	if meters <= 0 || math.IsNaN(meters) || math.IsInf(meters, 0) {
		return 0
	}
	return int(math.Round(meters / 1000))
}

func (r *Resolver) degraded(op string, err error, fields ...zap.Field) {
	fields = append([]zap.Field{zap.String("op", op), zap.Error(err)}, fields...)
	r.logger.Warn("geo resolution degraded", fields...)
}

// ProviderConfig selects and configures the external providers.
type ProviderConfig struct {
	Provider      string
	NominatimURL  string
	OSRMURL       string
	MapMyIndiaURL string
	MapMyIndiaKey string
	UserAgent     string
	Timeout       time.Duration
}

// Provider names accepted by NewResolverFromConfig.
const (
	ProviderOSM        = "osm"
	ProviderMapMyIndia = "mapmyindia"
)

// NewResolverFromConfig builds a Resolver for the configured provider.
func NewResolverFromConfig(cfg ProviderConfig, logger *zap.Logger) (*Resolver, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := &http.Client{Timeout: timeout + time.Second}

	switch cfg.Provider {
	case ProviderOSM, "":
		return NewResolver(
			NewNominatimGeocoder(cfg.NominatimURL, cfg.UserAgent, client),
			NewOSRMRouter(cfg.OSRMURL, client),
			timeout,
			logger,
		), nil
	case ProviderMapMyIndia:
		if cfg.MapMyIndiaKey == "" {
			return nil, ErrMissingAPIKey
		}
		mmi := NewMapMyIndiaClient(cfg.MapMyIndiaURL, cfg.MapMyIndiaKey, client)
		return NewResolver(mmi, mmi, timeout, logger), nil
	default:
		return nil, fmt.Errorf("unknown geo provider: %s", cfg.Provider)
	}
}
