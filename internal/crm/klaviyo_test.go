package crm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"similar-products-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKlaviyo(t *testing.T, handler http.HandlerFunc) *Klaviyo {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	k := NewKlaviyo("test-key", "2024-10-15", 2*time.Second)
	k.baseURL = srv.URL
	return k
}

func profileResponse(property interface{}) []byte {
	payload := map[string]interface{}{
		"data": map[string]interface{}{
			"type": "profile",
			"id":   "PID1",
			"attributes": map[string]interface{}{
				"properties": map[string]interface{}{
					EnrichmentProperty: property,
				},
			},
		},
	}
	body, _ := json.Marshal(payload)
	return body
}

func TestGetProfileEnrichmentDecodesRecords(t *testing.T) {
	k := newTestKlaviyo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/profiles/PID1/", r.URL.Path)
		assert.Equal(t, "properties", r.URL.Query().Get("additional-fields[profile]"))
		assert.Equal(t, "Klaviyo-API-Key test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "2024-10-15", r.Header.Get("revision"))

		w.Write(profileResponse([]map[string]interface{}{
			{"product_id": "309", "similar_ids": []string{"483", "290"}},
		}))
	})

	list, err := k.GetProfileEnrichment(context.Background(), "PID1")

	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "309", list[0].ProductID)
	assert.Equal(t, []string{"483", "290"}, list[0].SimilarIDs)
}

func TestGetProfileEnrichmentToleratesAbsentProperty(t *testing.T) {
	for name, property := range map[string]interface{}{
		"null property":      nil,
		"malformed property": "not an array",
		"wrong shape":        map[string]string{"oops": "object"},
	} {
		t.Run(name, func(t *testing.T) {
			k := newTestKlaviyo(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write(profileResponse(property))
			})

			list, err := k.GetProfileEnrichment(context.Background(), "PID1")

			// A profile that never held the property, or holds garbage,
			// reads as an empty list so enrichment can proceed.
			require.NoError(t, err)
			assert.Empty(t, list)
		})
	}
}

func TestSetProfileEnrichmentWritesRecords(t *testing.T) {
	var body map[string]interface{}
	k := newTestKlaviyo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/profiles/PID1/", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	})

	err := k.SetProfileEnrichment(context.Background(), "PID1", models.ProfileEnrichmentList{
		{ProductID: "309", SimilarIDs: []string{"483"}},
	})
	require.NoError(t, err)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "profile", data["type"])
	assert.Equal(t, "PID1", data["id"])

	properties := data["attributes"].(map[string]interface{})["properties"].(map[string]interface{})
	records := properties[EnrichmentProperty].([]interface{})
	require.Len(t, records, 1)
	assert.Equal(t, "309", records[0].(map[string]interface{})["product_id"])
}

func TestSetProfileEnrichmentEmptyListWritesNull(t *testing.T) {
	var body map[string]interface{}
	k := newTestKlaviyo(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	})

	err := k.SetProfileEnrichment(context.Background(), "PID1", models.ProfileEnrichmentList{})
	require.NoError(t, err)

	// An empty list must clear the property, not write [], so email
	// templates stop rendering the recommendation section.
	properties := body["data"].(map[string]interface{})["attributes"].(map[string]interface{})["properties"].(map[string]interface{})
	value, present := properties[EnrichmentProperty]
	require.True(t, present)
	assert.Nil(t, value)
}

func TestResolveProfileIDByEmail(t *testing.T) {
	k := newTestKlaviyo(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/profiles/":
			assert.Equal(t, `equals(email,"user@example.com")`, r.URL.Query().Get("filter"))
			w.Write([]byte(`{"data":[{"type":"profile","id":"PID1"}]}`))
		case "/profiles/PID1/":
			w.Write(profileResponse(nil))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	list, err := k.GetProfileEnrichment(context.Background(), "user@example.com")

	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestResolveProfileIDEmailNotFound(t *testing.T) {
	k := newTestKlaviyo(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	})

	_, err := k.GetProfileEnrichment(context.Background(), "unknown@example.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProfileNotFound))
}

func TestProfileFetch404(t *testing.T) {
	k := newTestKlaviyo(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := k.GetProfileEnrichment(context.Background(), "PID-GONE")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProfileNotFound))
}
