package similarity

import (
	"sort"

	"similar-products-service/internal/models"
)

// Composite weights: name similarity dominates, price proximity marks
// the product segment, a shared manufacturer is a small bonus.
const (
	DefaultNameWeight         = 0.60
	DefaultPriceWeight        = 0.30
	DefaultManufacturerWeight = 0.10
)

// DefaultLimit caps how many similar products are returned per call.
const DefaultLimit = 6

// Config carries the tunable ranking parameters. Passing it explicitly
// keeps parallel tests with varied parameter sets deterministic.
type Config struct {
	K1                 float64
	B                  float64
	NameWeight         float64
	PriceWeight        float64
	ManufacturerWeight float64
	Limit              int
}

// DefaultConfig returns the production ranking parameters.
func DefaultConfig() Config {
	return Config{
		K1:                 DefaultK1,
		B:                  DefaultB,
		NameWeight:         DefaultNameWeight,
		PriceWeight:        DefaultPriceWeight,
		ManufacturerWeight: DefaultManufacturerWeight,
		Limit:              DefaultLimit,
	}
}

// Ranker scores candidate products against a reference product and
// returns the best substitutes. It holds no mutable state and is safe
// for concurrent use.
type Ranker struct {
	cfg Config
}

// NewRanker creates a ranker with the given configuration. Zero-value
// fields fall back to the defaults.
func NewRanker(cfg Config) *Ranker {
	def := DefaultConfig()
	if cfg.K1 <= 0 {
		cfg.K1 = def.K1
	}
	if cfg.B <= 0 {
		cfg.B = def.B
	}
	if cfg.NameWeight <= 0 && cfg.PriceWeight <= 0 && cfg.ManufacturerWeight <= 0 {
		cfg.NameWeight = def.NameWeight
		cfg.PriceWeight = def.PriceWeight
		cfg.ManufacturerWeight = def.ManufacturerWeight
	}
	if cfg.Limit <= 0 {
		cfg.Limit = def.Limit
	}
	return &Ranker{cfg: cfg}
}

// Rank filters and scores candidates against the reference product and
// returns up to limit results ordered by descending composite score,
// ties broken by ascending product ID. The reference itself, products
// without stock and duplicate IDs (first occurrence wins) are dropped.
// An empty filtered set yields an empty result, never an error. When
// limit is not positive the configured limit applies.
func (r *Ranker) Rank(reference models.Product, candidates []models.Product, limit int) []models.SimilarityResult {
	if limit <= 0 {
		limit = r.cfg.Limit
	}

	filtered := filterCandidates(reference, candidates)
	if len(filtered) == 0 {
		return []models.SimilarityResult{}
	}

	nameScores := r.nameScores(reference, filtered)

	results := make([]models.SimilarityResult, len(filtered))
	for i, candidate := range filtered {
		priceScore := PriceScore(reference.Price, candidate.Price)
		manufacturerScore := ManufacturerScore(reference.Manufacturer, candidate.Manufacturer)

		results[i] = models.SimilarityResult{
			ProductID:         candidate.ID,
			NameScore:         nameScores[i],
			PriceScore:        priceScore,
			ManufacturerScore: manufacturerScore,
			Score: r.cfg.NameWeight*nameScores[i] +
				r.cfg.PriceWeight*priceScore +
				r.cfg.ManufacturerWeight*manufacturerScore,
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ProductID < results[j].ProductID
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// nameScores computes BM25 name similarity for every filtered
// candidate, min-max normalized into [0,1] across this ranking call.
// Corpus statistics come from the reference and all candidate names,
// secondary-language names included. Products without tokenizable
// names always score 0.
func (r *Ranker) nameScores(reference models.Product, candidates []models.Product) []float64 {
	refTerms := Tokenize(reference.Name)
	refTermsSecondary := Tokenize(reference.NameSecondary)

	candTerms := make([]TermVector, len(candidates))
	candTermsSecondary := make([]TermVector, len(candidates))

	docs := make([]TermVector, 0, 2*(len(candidates)+1))
	docs = append(docs, refTerms)
	if len(refTermsSecondary) > 0 {
		docs = append(docs, refTermsSecondary)
	}
	for i, candidate := range candidates {
		candTerms[i] = Tokenize(candidate.Name)
		docs = append(docs, candTerms[i])
		if candidate.NameSecondary != "" {
			candTermsSecondary[i] = Tokenize(candidate.NameSecondary)
			if len(candTermsSecondary[i]) > 0 {
				docs = append(docs, candTermsSecondary[i])
			}
		}
	}

	scores := make([]float64, len(candidates))
	if len(refTerms) == 0 && len(refTermsSecondary) == 0 {
		return scores
	}

	corpus := NewCorpus(docs)
	for i := range candidates {
		score := corpus.Score(refTerms, candTerms[i], r.cfg.K1, r.cfg.B)
		if len(refTermsSecondary) > 0 && len(candTermsSecondary[i]) > 0 {
			if secondary := corpus.Score(refTermsSecondary, candTermsSecondary[i], r.cfg.K1, r.cfg.B); secondary > score {
				score = secondary
			}
		}
		scores[i] = score
	}

	normalizeMinMax(scores)

	// Untokenizable names stay at 0 regardless of normalization.
	for i := range candidates {
		if len(candTerms[i]) == 0 && len(candTermsSecondary[i]) == 0 {
			scores[i] = 0
		}
	}

	return scores
}

// filterCandidates drops the reference product, out-of-stock products
// and duplicate IDs, keeping the first occurrence.
func filterCandidates(reference models.Product, candidates []models.Product) []models.Product {
	filtered := make([]models.Product, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))

	for _, candidate := range candidates {
		if candidate.ID == reference.ID {
			continue
		}
		if !candidate.InStock() {
			continue
		}
		if _, dup := seen[candidate.ID]; dup {
			continue
		}
		seen[candidate.ID] = struct{}{}
		filtered = append(filtered, candidate)
	}

	return filtered
}
