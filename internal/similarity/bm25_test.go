package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorpusIDF(t *testing.T) {
	corpus := NewCorpus([]TermVector{
		{"chocolate": 1, "cookies": 1},
		{"vanilla": 1, "cookies": 1},
		{"vanilla": 1, "wafer": 1},
	})

	// "cookies" is more common than "wafer", so it is less informative.
	assert.Greater(t, corpus.IDF("wafer"), corpus.IDF("cookies"))

	// Terms absent from the corpus contribute 0, not an error.
	assert.Zero(t, corpus.IDF("keto"))
}

func TestScoreIdenticalDocSingleCandidate(t *testing.T) {
	ref := Tokenize("Gluten-Free Cookie Dough")
	cand := Tokenize("Gluten-Free Cookie Dough")

	corpus := NewCorpus([]TermVector{ref, cand})
	score := corpus.Score(ref, cand, DefaultK1, DefaultB)

	require.False(t, score != score, "score must not be NaN")
	assert.Greater(t, score, 0.0)
}

func TestScoreNoOverlap(t *testing.T) {
	ref := Tokenize("Chocolate Cookies")
	cand := Tokenize("Vanilla Wafer")

	corpus := NewCorpus([]TermVector{ref, cand})
	assert.Zero(t, corpus.Score(ref, cand, DefaultK1, DefaultB))
}

func TestScoreEmptyVectors(t *testing.T) {
	ref := Tokenize("Chocolate Cookies")
	corpus := NewCorpus([]TermVector{ref})

	assert.Zero(t, corpus.Score(TermVector{}, ref, DefaultK1, DefaultB))
	assert.Zero(t, corpus.Score(ref, TermVector{}, DefaultK1, DefaultB))
}

func TestScoreEmptyCorpus(t *testing.T) {
	corpus := NewCorpus(nil)

	assert.Zero(t, corpus.Score(TermVector{"cookies": 1}, TermVector{"cookies": 1}, DefaultK1, DefaultB))
}

func TestNormalizeMinMax(t *testing.T) {
	scores := []float64{2, 4, 8}
	normalizeMinMax(scores)
	assert.Equal(t, []float64{0, 1.0 / 3.0, 1}, scores)
}

func TestNormalizeMinMaxAllEqual(t *testing.T) {
	scores := []float64{3, 3, 3}
	normalizeMinMax(scores)
	assert.Equal(t, []float64{1, 1, 1}, scores)

	single := []float64{0.7}
	normalizeMinMax(single)
	assert.Equal(t, []float64{1}, single)
}
