package similarity

import (
	"math"
	"strings"
)

// priceEpsilon guards the relative-difference denominator against
// zero prices.
const priceEpsilon = 1e-9

// Price proximity bands: within 20% is a perfect substitute segment,
// within 50% is acceptable, beyond that a poor one.
const (
	priceBandClose = 0.20
	priceBandFar   = 0.50
)

// PriceScore scores how close a candidate's price is to the
// reference's. A missing or zero reference price cannot be penalized
// without data and scores neutral 0.5.
func PriceScore(reference, candidate float64) float64 {
	if reference <= 0 {
		return 0.5
	}

	d := math.Abs(reference-candidate) / math.Max(reference, math.Max(candidate, priceEpsilon))

	switch {
	case d <= priceBandClose:
		return 1.0
	case d <= priceBandFar:
		return 0.5
	default:
		return 0.2
	}
}

// ManufacturerScore returns 1 when both manufacturers are present and
// equal ignoring case, 0 otherwise.
func ManufacturerScore(reference, candidate string) float64 {
	if reference == "" || candidate == "" {
		return 0
	}
	if strings.EqualFold(reference, candidate) {
		return 1
	}
	return 0
}
