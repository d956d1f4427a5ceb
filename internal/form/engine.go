package form

import (
	"context"

	"github.com/transport-ledger/service-transport/internal/domain/geo"
	"github.com/transport-ledger/service-transport/internal/domain/transport"
)

// DistanceResolver looks up route distances.
type DistanceResolver interface {
	RouteDistance(ctx context.Context, start, end geo.Point) geo.RouteDistance
}

// Engine recomputes the derived fields distance_km and amount.
type Engine struct {
	distances DistanceResolver
	policy    transport.AmountPolicy
}

// NewEngine creates an Engine using the given amount policy.
func NewEngine(distances DistanceResolver, policy transport.AmountPolicy) *Engine {
	return &Engine{distances: distances, policy: policy}
}

// Policy returns the configured amount policy.
func (e *Engine) Policy() transport.AmountPolicy { return e.policy }

// RecomputeDistance returns the routed distance between two picked points.
func (e *Engine) RecomputeDistance(ctx context.Context, start, end geo.Point) geo.RouteDistance {
	return e.distances.RouteDistance(ctx, start, end)
}

// RecomputeAmount applies the policy. For the manual policy entered is
// returned as is, and a nil entered stays nil.
func (e *Engine) RecomputeAmount(quantity, ratePerKm, distanceKm, entered *float64) *float64 {
	if !e.policy.Computes() {
		return entered
	}
	if ratePerKm == nil || distanceKm == nil {
		return entered
	}
	var q float64
	if quantity != nil {
		q = *quantity
	} else if e.policy == transport.AmountQuantityDistanceRate {
		return entered
	}
	amount := e.policy.Amount(q, *ratePerKm, *distanceKm, 0)
	return &amount
}
