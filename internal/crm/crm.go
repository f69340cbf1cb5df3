package crm

import (
	"context"
	"errors"

	"similar-products-service/internal/models"
)

// ErrProfileNotFound is returned when the CRM has no profile for the
// given reference.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileStore is the CRM profile contract. A profile reference is
// either an email address or a platform profile ID; implementations
// resolve it per call. Reads return the current remote state so every
// mutation is a fresh read-modify-write; implementations keep no local
// cache of profile data.
type ProfileStore interface {
	// GetProfileEnrichment returns the profile's current enrichment
	// list, empty when the profile carries none. Returns
	// ErrProfileNotFound for unknown profiles.
	GetProfileEnrichment(ctx context.Context, profileRef string) (models.ProfileEnrichmentList, error)

	// SetProfileEnrichment replaces the profile's enrichment list
	// wholesale. An empty list clears the property.
	SetProfileEnrichment(ctx context.Context, profileRef string, list models.ProfileEnrichmentList) error
}
