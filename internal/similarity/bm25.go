package similarity

import "math"

// Default BM25 parameters. k1 balances exact against partial matches,
// b controls how strongly long names are normalized.
const (
	DefaultK1 = 1.5
	DefaultB  = 0.75
)

// Corpus holds document-frequency statistics over a set of tokenized
// product names. It is built once per ranking call and is read-only
// afterwards.
type Corpus struct {
	docFreq  map[string]int
	docCount int
	avgLen   float64
}

// NewCorpus builds term statistics from the given term vectors. Empty
// vectors still count as documents.
func NewCorpus(docs []TermVector) *Corpus {
	c := &Corpus{
		docFreq:  make(map[string]int),
		docCount: len(docs),
	}

	var totalLen int
	for _, doc := range docs {
		totalLen += doc.Len()
		for term := range doc {
			c.docFreq[term]++
		}
	}

	if c.docCount > 0 {
		c.avgLen = float64(totalLen) / float64(c.docCount)
	}

	return c
}

// IDF returns the BM25 inverse document frequency of a term:
// ln((N - df + 0.5) / (df + 0.5) + 1). Terms absent from the corpus
// score 0.
func (c *Corpus) IDF(term string) float64 {
	df, ok := c.docFreq[term]
	if !ok || c.docCount == 0 {
		return 0
	}
	n := float64(c.docCount)
	return math.Log((n-float64(df)+0.5)/(float64(df)+0.5) + 1.0)
}

// Score computes the raw BM25 relevance of doc against query. Each
// query term contributes idf * tf*(k1+1) / (tf + k1*(1-b+b*|doc|/avgLen)).
// The result is non-negative and unbounded; callers normalize across
// the candidates of one ranking call.
func (c *Corpus) Score(query, doc TermVector, k1, b float64) float64 {
	if len(query) == 0 || len(doc) == 0 {
		return 0
	}

	avgLen := c.avgLen
	if avgLen == 0 {
		avgLen = 1
	}
	docLen := float64(doc.Len())

	var score float64
	for term := range query {
		tf := float64(doc[term])
		if tf == 0 {
			continue
		}
		idf := c.IDF(term)
		if idf == 0 {
			continue
		}
		score += idf * (tf * (k1 + 1)) / (tf + k1*(1-b+b*docLen/avgLen))
	}

	return score
}

// normalizeMinMax rescales raw scores into [0,1] in place. When all
// raw scores are equal the whole slice maps to 1, which keeps a
// single-candidate call well-defined.
func normalizeMinMax(scores []float64) {
	if len(scores) == 0 {
		return
	}

	min, max := scores[0], scores[0]
	for _, s := range scores[1:] {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}

	if max == min {
		for i := range scores {
			scores[i] = 1
		}
		return
	}

	for i := range scores {
		scores[i] = (scores[i] - min) / (max - min)
	}
}
