package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileEnrichmentListUpsert(t *testing.T) {
	now := time.Now().UTC()
	list := ProfileEnrichmentList{
		{ProductID: "100", SimilarIDs: []string{"1", "2"}, EnrichedAt: now},
	}

	updated := list.Upsert(EnrichmentRecord{ProductID: "200", SimilarIDs: []string{"3"}, EnrichedAt: now})
	require.Len(t, updated, 2)
	assert.NotNil(t, updated.Find("100"))
	assert.NotNil(t, updated.Find("200"))

	// Upserting the same product replaces its record, not appends.
	replaced := updated.Upsert(EnrichmentRecord{ProductID: "100", SimilarIDs: []string{"9"}, EnrichedAt: now})
	require.Len(t, replaced, 2)
	assert.Equal(t, []string{"9"}, replaced.Find("100").SimilarIDs)

	// The original list is untouched.
	assert.Equal(t, []string{"1", "2"}, list.Find("100").SimilarIDs)
}

func TestProfileEnrichmentListRemove(t *testing.T) {
	now := time.Now().UTC()
	list := ProfileEnrichmentList{
		{ProductID: "100", EnrichedAt: now},
		{ProductID: "200", EnrichedAt: now},
	}

	removed := list.Remove("100")
	assert.Len(t, removed, 1)
	assert.Nil(t, removed.Find("100"))
	assert.NotNil(t, removed.Find("200"))

	// Removing an absent record is a no-op.
	assert.Len(t, removed.Remove("999"), 1)
	assert.Empty(t, ProfileEnrichmentList{}.Remove("100"))
}

func TestProductInStock(t *testing.T) {
	assert.True(t, (&Product{Quantity: 1}).InStock())
	assert.False(t, (&Product{Quantity: 0}).InStock())
	assert.False(t, (&Product{Quantity: -2}).InStock())
}
