package models

import "time"

// Product is the universal product representation across e-commerce
// platforms. Only the fields needed for similarity matching are kept;
// full product data (images, URLs) lives in the CRM catalog.
type Product struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	NameSecondary string  `json:"name_secondary,omitempty"`
	CategoryID    string  `json:"category_id"`
	Quantity      int     `json:"quantity"`
	Price         float64 `json:"price,omitempty"`
	Manufacturer  string  `json:"manufacturer,omitempty"`
	SKU           string  `json:"sku,omitempty"`
}

// InStock reports whether the product can be recommended.
func (p *Product) InStock() bool {
	return p.Quantity > 0
}

// SubscriptionEvent is a back-in-stock subscription received per
// webhook call. It is never persisted locally.
type SubscriptionEvent struct {
	ProfileRef string    `json:"profile_ref"`
	ProductID  string    `json:"product_id"`
	ReceivedAt time.Time `json:"received_at"`
}

// SimilarityResult is one ranked candidate with its component scores.
type SimilarityResult struct {
	ProductID         string  `json:"product_id"`
	Score             float64 `json:"score"`
	NameScore         float64 `json:"name_score"`
	PriceScore        float64 `json:"price_score"`
	ManufacturerScore float64 `json:"manufacturer_score"`
}

// EnrichmentRecord is the recommendation payload stored on the remote
// profile for one out-of-stock product. SimilarIDs keeps rank order.
type EnrichmentRecord struct {
	ProductID  string    `json:"product_id"`
	SimilarIDs []string  `json:"similar_ids"`
	EnrichedAt time.Time `json:"enriched_at"`
}

// ProfileEnrichmentList holds the enrichment records of a single
// profile, at most one per product ID. The remote profile store is the
// system of record; this type only models the read-modify-write value.
type ProfileEnrichmentList []EnrichmentRecord

// Find returns the record for productID, or nil if absent.
func (l ProfileEnrichmentList) Find(productID string) *EnrichmentRecord {
	for i := range l {
		if l[i].ProductID == productID {
			return &l[i]
		}
	}
	return nil
}

// Upsert returns a copy of the list with the record for its product ID
// replaced, or appended when no prior record exists. The input list is
// not modified.
func (l ProfileEnrichmentList) Upsert(record EnrichmentRecord) ProfileEnrichmentList {
	out := make(ProfileEnrichmentList, 0, len(l)+1)
	for _, existing := range l {
		if existing.ProductID != record.ProductID {
			out = append(out, existing)
		}
	}
	return append(out, record)
}

// Remove returns a copy of the list without the record for productID.
// Removing an absent record is a no-op.
func (l ProfileEnrichmentList) Remove(productID string) ProfileEnrichmentList {
	out := make(ProfileEnrichmentList, 0, len(l))
	for _, existing := range l {
		if existing.ProductID != productID {
			out = append(out, existing)
		}
	}
	return out
}
