package transport

import (
	"fmt"
	"math"
)

// AmountPolicy names the rule that derives a record's amount.
type AmountPolicy string

const (
	// AmountManual keeps amount exactly as the user entered it.
	AmountManual AmountPolicy = "manual"
	// AmountDistanceTimesRate sets amount = distance_km * rate_per_km.
	AmountDistanceTimesRate AmountPolicy = "distance_x_rate"
	// AmountQuantityDistanceRate sets amount = quantity_qtls * distance_km * rate_per_km.
	AmountQuantityDistanceRate AmountPolicy = "quantity_x_distance_x_rate"
)

// ParseAmountPolicy converts a configuration value into an AmountPolicy.
func ParseAmountPolicy(s string) (AmountPolicy, error) {
	switch p := AmountPolicy(s); p {
	case AmountManual, AmountDistanceTimesRate, AmountQuantityDistanceRate:
		return p, nil
	case "":
		return AmountManual, nil
	default:
		return "", fmt.Errorf("unknown amount policy: %s", s)
	}
}

// Computes reports whether the policy overrides the entered amount.
func (p AmountPolicy) Computes() bool {
	return p == AmountDistanceTimesRate || p == AmountQuantityDistanceRate
}

// Amount returns the derived amount, rounded to two decimals, or entered for
// the manual policy.
func (p AmountPolicy) Amount(quantityQtls, ratePerKm, distanceKm, entered float64) float64 {
	switch p {
	case AmountDistanceTimesRate:
		return round2(distanceKm * ratePerKm)
	case AmountQuantityDistanceRate:
		return round2(quantityQtls * distanceKm * ratePerKm)
	default:
		return entered
	}
}

// Apply returns fields with Amount set according to the policy.
func (p AmountPolicy) Apply(f Fields) Fields {
	f.Amount = p.Amount(f.QuantityQtls, f.RatePerKm, f.DistanceKm, f.Amount)
	return f
}

// String returns the configuration value of the policy.
func (p AmountPolicy) String() string { return string(p) }

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
