package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriceScoreBands(t *testing.T) {
	// d = |ref - cand| / max(ref, cand): 20/100 = 0.20 is still the
	// top band, 0.50 still the middle one.
	assert.Equal(t, 1.0, PriceScore(100, 100))
	assert.Equal(t, 1.0, PriceScore(100, 80))
	assert.Equal(t, 0.5, PriceScore(100, 79.999))
	assert.Equal(t, 0.5, PriceScore(100, 50))
	assert.Equal(t, 0.2, PriceScore(100, 49.999))
	assert.Equal(t, 0.2, PriceScore(12, 40))
}

func TestPriceScoreSymmetric(t *testing.T) {
	assert.Equal(t, PriceScore(80, 100), PriceScore(100, 80))
	assert.Equal(t, PriceScore(40, 12), PriceScore(12, 40))
}

func TestPriceScoreMonotonicNonIncreasing(t *testing.T) {
	prev := 1.0
	for candidate := 100.0; candidate >= 1; candidate -= 0.5 {
		score := PriceScore(100, candidate)
		assert.LessOrEqual(t, score, prev, "candidate=%v", candidate)
		prev = score
	}
}

func TestPriceScoreMissingReference(t *testing.T) {
	// Without reference price data the candidate cannot be penalized.
	assert.Equal(t, 0.5, PriceScore(0, 42))
	assert.Equal(t, 0.5, PriceScore(-1, 42))
	assert.Equal(t, 0.5, PriceScore(0, 0))
}

func TestManufacturerScore(t *testing.T) {
	assert.Equal(t, 1.0, ManufacturerScore("ACME", "ACME"))
	assert.Equal(t, 1.0, ManufacturerScore("ACME", "acme"))
	assert.Equal(t, 0.0, ManufacturerScore("ACME", "Other"))
	assert.Equal(t, 0.0, ManufacturerScore("", "ACME"))
	assert.Equal(t, 0.0, ManufacturerScore("ACME", ""))
	assert.Equal(t, 0.0, ManufacturerScore("", ""))
}
