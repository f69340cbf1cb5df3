package models

import "time"

// Event types
const (
	EventTypeProfileEnriched = "PROFILE_ENRICHED"
	EventTypeProfileCleaned  = "PROFILE_CLEANED"
	EventTypeProductUpdated  = "PRODUCT_UPDATED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// ProfileEnrichedEvent published after similar products are written to a profile
type ProfileEnrichedEvent struct {
	BaseEvent
	ProfileHash  string `json:"profile_hash"`
	ProductID    string `json:"product_id"`
	SimilarCount int    `json:"similar_count"`
}

// ProfileCleanedEvent published after enrichment data is removed from a profile
type ProfileCleanedEvent struct {
	BaseEvent
	ProfileHash string `json:"profile_hash"`
	ProductID   string `json:"product_id,omitempty"`
	RemovedAll  bool   `json:"removed_all"`
}

// ProductUpdatedEvent consumed from the catalog topic; used to
// invalidate cached category listings.
type ProductUpdatedEvent struct {
	BaseEvent
	ProductID  string `json:"product_id"`
	CategoryID string `json:"category_id"`
}
