package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"similar-products-service/internal/models"
	"similar-products-service/internal/util"

	"go.uber.org/zap"
)

// EnrichmentProperty is the profile custom property holding the
// similar-products entries. Email templates render from it.
const EnrichmentProperty = "bis_similar_products"

const defaultBaseURL = "https://a.klaviyo.com/api"

// Klaviyo implements ProfileStore against the Klaviyo JSON:API.
type Klaviyo struct {
	baseURL  string
	apiKey   string
	revision string
	client   *http.Client
	logger   *zap.Logger
}

// NewKlaviyo creates a Klaviyo profile store client.
func NewKlaviyo(apiKey, revision string, timeout time.Duration) *Klaviyo {
	return &Klaviyo{
		baseURL:  defaultBaseURL,
		apiKey:   apiKey,
		revision: revision,
		client:   &http.Client{Timeout: timeout},
		logger:   util.GetLogger(),
	}
}

// GetProfileEnrichment fetches the profile's properties fresh and
// decodes the enrichment array. A profile without the property yields
// an empty list.
func (k *Klaviyo) GetProfileEnrichment(ctx context.Context, profileRef string) (models.ProfileEnrichmentList, error) {
	profileID, err := k.resolveProfileID(ctx, profileRef)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("additional-fields[profile]", "properties")

	var payload struct {
		Data struct {
			Attributes struct {
				Properties map[string]json.RawMessage `json:"properties"`
			} `json:"attributes"`
		} `json:"data"`
	}
	if err := k.do(ctx, http.MethodGet, "/profiles/"+url.PathEscape(profileID)+"/", params, nil, &payload); err != nil {
		return nil, err
	}

	raw, ok := payload.Data.Attributes.Properties[EnrichmentProperty]
	if !ok || string(raw) == "null" {
		return models.ProfileEnrichmentList{}, nil
	}

	var list models.ProfileEnrichmentList
	if err := json.Unmarshal(raw, &list); err != nil {
		// A malformed property is treated as absent rather than
		// blocking enrichment.
		k.logger.Warn("Discarding malformed enrichment property",
			zap.String("profile_id", profileID),
			zap.Error(err))
		return models.ProfileEnrichmentList{}, nil
	}

	return list, nil
}

// SetProfileEnrichment replaces the enrichment property with a PATCH
// on the profile. An empty list writes null so the property disappears
// from email templates.
func (k *Klaviyo) SetProfileEnrichment(ctx context.Context, profileRef string, list models.ProfileEnrichmentList) error {
	profileID, err := k.resolveProfileID(ctx, profileRef)
	if err != nil {
		return err
	}

	var value interface{}
	if len(list) > 0 {
		value = list
	}

	body := map[string]interface{}{
		"data": map[string]interface{}{
			"type": "profile",
			"id":   profileID,
			"attributes": map[string]interface{}{
				"properties": map[string]interface{}{
					EnrichmentProperty: value,
				},
			},
		},
	}

	return k.do(ctx, http.MethodPatch, "/profiles/"+url.PathEscape(profileID)+"/", nil, body, nil)
}

// resolveProfileID maps a profile reference to a Klaviyo profile ID.
// Email references are looked up with an equality filter; anything
// else is assumed to already be a profile ID.
func (k *Klaviyo) resolveProfileID(ctx context.Context, profileRef string) (string, error) {
	if !strings.Contains(profileRef, "@") {
		return profileRef, nil
	}

	params := url.Values{}
	params.Set("filter", fmt.Sprintf(`equals(email,%q)`, profileRef))

	var payload struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := k.do(ctx, http.MethodGet, "/profiles/", params, nil, &payload); err != nil {
		return "", err
	}

	if len(payload.Data) == 0 {
		return "", fmt.Errorf("klaviyo profile for %s: %w", util.HashProfileRef(profileRef), ErrProfileNotFound)
	}
	return payload.Data[0].ID, nil
}

// do issues an authenticated Klaviyo API request, encoding body as
// JSON when present and decoding the response into out when non-nil.
func (k *Klaviyo) do(ctx context.Context, method, path string, params url.Values, body, out interface{}) error {
	endpoint := k.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("klaviyo request encode: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("klaviyo request: %w", err)
	}
	req.Header.Set("Authorization", "Klaviyo-API-Key "+k.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("revision", k.revision)

	start := time.Now()
	resp, err := k.client.Do(req)
	util.UpstreamRequestLatency.WithLabelValues("klaviyo").Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("klaviyo api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("klaviyo %s %s: %w", method, path, ErrProfileNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("klaviyo api: unexpected status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("klaviyo api: decode response: %w", err)
		}
	}
	return nil
}
