package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"similar-products-service/internal/models"
	"similar-products-service/internal/util"

	"go.uber.org/zap"
)

// PrestaShop implements Catalog against the PrestaShop 1.7+ WebService
// API. Newer versions (1.8+, 8.x) may need adjustments.
type PrestaShop struct {
	baseURL       string
	apiKey        string
	categoryLimit int
	client        *http.Client
	logger        *zap.Logger
}

// NewPrestaShop creates a PrestaShop adapter. categoryLimit caps the
// number of products fetched per category listing; a larger corpus
// gives the ranker better document-frequency statistics.
func NewPrestaShop(baseURL, apiKey string, timeout time.Duration, categoryLimit int) *PrestaShop {
	if categoryLimit <= 0 {
		categoryLimit = 100
	}
	return &PrestaShop{
		baseURL:       strings.TrimRight(baseURL, "/"),
		apiKey:        apiKey,
		categoryLimit: categoryLimit,
		client:        &http.Client{Timeout: timeout},
		logger:        util.GetLogger(),
	}
}

// GetProduct fetches a single product with full display fields.
func (p *PrestaShop) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	params := url.Values{}
	params.Set("output_format", "JSON")
	params.Set("display", "full")

	var payload struct {
		Product  json.RawMessage   `json:"product"`
		Products []json.RawMessage `json:"products"`
	}

	status, err := p.get(ctx, "/api/products/"+url.PathEscape(productID), params, &payload)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("prestashop product %s: %w", productID, ErrProductNotFound)
	}

	// The API returns either {"product": {...}} or {"products": [{...}]}
	// depending on authentication method and parameters.
	raw := payload.Product
	if raw == nil && len(payload.Products) > 0 {
		raw = payload.Products[0]
	}

	product := parseProduct(raw)
	if product == nil {
		return nil, fmt.Errorf("prestashop product %s: %w", productID, ErrProductNotFound)
	}
	return product, nil
}

// ListProductsByCategory lists category products in three batch calls:
// product IDs by default category, product fields by ID filter, then
// stock quantities from stock_availables (stock may live only there
// when advanced stock management is enabled).
func (p *PrestaShop) ListProductsByCategory(ctx context.Context, categoryID string) ([]models.Product, error) {
	if categoryID == "" {
		return []models.Product{}, nil
	}

	params := url.Values{}
	params.Set("output_format", "JSON")
	params.Set("filter[id_category_default]", "["+categoryID+"]")
	params.Set("limit", strconv.Itoa(p.categoryLimit))

	var idPayload struct {
		Products []struct {
			ID json.RawMessage `json:"id"`
		} `json:"products"`
	}
	if _, err := p.get(ctx, "/api/products", params, &idPayload); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(idPayload.Products))
	for _, item := range idPayload.Products {
		if id := rawString(item.ID); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	idFilter := "[" + strings.Join(ids, "|") + "]"

	params = url.Values{}
	params.Set("output_format", "JSON")
	params.Set("filter[id]", idFilter)
	params.Set("display", "[id,name,id_category_default,price,manufacturer_name]")

	var listPayload struct {
		Products []json.RawMessage `json:"products"`
	}
	if _, err := p.get(ctx, "/api/products", params, &listPayload); err != nil {
		return nil, err
	}

	byID := make(map[string]*models.Product, len(listPayload.Products))
	order := make([]string, 0, len(listPayload.Products))
	for _, raw := range listPayload.Products {
		if product := parseProduct(raw); product != nil {
			if _, dup := byID[product.ID]; !dup {
				order = append(order, product.ID)
			}
			byID[product.ID] = product
		}
	}

	params = url.Values{}
	params.Set("output_format", "JSON")
	params.Set("filter[id_product]", idFilter)
	params.Set("display", "[id_product,quantity]")

	var stockPayload struct {
		StockAvailables []struct {
			ProductID json.RawMessage `json:"id_product"`
			Quantity  json.RawMessage `json:"quantity"`
		} `json:"stock_availables"`
	}
	if _, err := p.get(ctx, "/api/stock_availables", params, &stockPayload); err != nil {
		return nil, err
	}

	for _, stock := range stockPayload.StockAvailables {
		if product, ok := byID[rawString(stock.ProductID)]; ok {
			product.Quantity = rawInt(stock.Quantity)
		}
	}

	products := make([]models.Product, 0, len(order))
	for _, id := range order {
		products = append(products, *byID[id])
	}

	p.logger.Debug("Fetched category products",
		zap.String("category_id", categoryID),
		zap.Int("count", len(products)))

	return products, nil
}

// get issues an authenticated GET and decodes the JSON body. A 404
// status is returned to the caller without a decode attempt; other
// non-2xx statuses are errors.
func (p *PrestaShop) get(ctx context.Context, path string, params url.Values, out interface{}) (int, error) {
	params.Set("ws_key", p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("prestashop request: %w", err)
	}
	req.Header.Set("User-Agent", "similar-products-service/1.0")

	start := time.Now()
	resp, err := p.client.Do(req)
	util.UpstreamRequestLatency.WithLabelValues("prestashop").Observe(time.Since(start).Seconds())
	if err != nil {
		return 0, fmt.Errorf("prestashop api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return resp.StatusCode, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, fmt.Errorf("prestashop api: unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("prestashop api: decode response: %w", err)
	}
	return resp.StatusCode, nil
}

// parseProduct converts a PrestaShop product payload into the
// universal model. Returns nil when the payload lacks an ID or a name.
func parseProduct(raw json.RawMessage) *models.Product {
	if len(raw) == 0 {
		return nil
	}

	var payload struct {
		ID           json.RawMessage `json:"id"`
		Name         json.RawMessage `json:"name"`
		CategoryID   json.RawMessage `json:"id_category_default"`
		Price        json.RawMessage `json:"price"`
		Manufacturer json.RawMessage `json:"manufacturer_name"`
		Reference    json.RawMessage `json:"reference"`
		Quantity     json.RawMessage `json:"quantity"`
		Associations struct {
			StockAvailables []struct {
				Quantity json.RawMessage `json:"quantity"`
			} `json:"stock_availables"`
		} `json:"associations"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}

	name := multilangValue(payload.Name, "1")
	if name == "" {
		name = multilangValue(payload.Name, "")
	}

	product := &models.Product{
		ID:            rawString(payload.ID),
		Name:          name,
		NameSecondary: multilangValue(payload.Name, "2"),
		CategoryID:    rawString(payload.CategoryID),
		Price:         rawFloat(payload.Price),
		Manufacturer:  rawString(payload.Manufacturer),
		SKU:           rawString(payload.Reference),
	}
	if product.ID == "" || product.Name == "" {
		return nil
	}

	if len(payload.Associations.StockAvailables) > 0 {
		product.Quantity = rawInt(payload.Associations.StockAvailables[0].Quantity)
	} else {
		product.Quantity = rawInt(payload.Quantity)
	}

	return product
}

// multilangValue extracts a value from a PrestaShop multi-language
// field, which may be a plain string, an array of {id, value} objects
// or an object with a value key. An empty langID takes the first
// available language.
func multilangValue(raw json.RawMessage, langID string) string {
	if len(raw) == 0 {
		return ""
	}

	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		if langID == "2" {
			return ""
		}
		return plain
	}

	var entries []struct {
		ID    json.RawMessage `json:"id"`
		Value string          `json:"value"`
	}
	if err := json.Unmarshal(raw, &entries); err == nil && len(entries) > 0 {
		if langID != "" {
			for _, entry := range entries {
				if rawString(entry.ID) == langID {
					return entry.Value
				}
			}
			return ""
		}
		return entries[0].Value
	}

	var object struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(raw, &object); err == nil {
		if langID == "2" {
			return ""
		}
		return object.Value
	}

	return ""
}

// rawString decodes a JSON value that may arrive as a string or a
// number into its string form.
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// rawInt decodes a JSON value that may arrive as a number or a
// numeric string. Unparseable values yield 0.
func rawInt(raw json.RawMessage) int {
	value, err := strconv.Atoi(rawString(raw))
	if err != nil {
		return 0
	}
	return value
}

// rawFloat decodes a JSON value that may arrive as a number or a
// numeric string. Unparseable values yield 0.
func rawFloat(raw json.RawMessage) float64 {
	value, err := strconv.ParseFloat(rawString(raw), 64)
	if err != nil {
		return 0
	}
	return value
}
