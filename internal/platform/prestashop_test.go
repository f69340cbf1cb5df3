package platform

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultilangValue(t *testing.T) {
	plain := json.RawMessage(`"Chocolate Cookies"`)
	assert.Equal(t, "Chocolate Cookies", multilangValue(plain, "1"))
	assert.Equal(t, "Chocolate Cookies", multilangValue(plain, ""))
	assert.Equal(t, "", multilangValue(plain, "2"))

	array := json.RawMessage(`[{"id":"1","value":"Herbatniki"},{"id":"2","value":"Biscuits"}]`)
	assert.Equal(t, "Herbatniki", multilangValue(array, "1"))
	assert.Equal(t, "Biscuits", multilangValue(array, "2"))
	assert.Equal(t, "Herbatniki", multilangValue(array, ""))
	assert.Equal(t, "", multilangValue(array, "3"))

	// Numeric language IDs appear with some shop configurations.
	numericIDs := json.RawMessage(`[{"id":1,"value":"Herbatniki"}]`)
	assert.Equal(t, "Herbatniki", multilangValue(numericIDs, "1"))

	object := json.RawMessage(`{"value":"Wafer"}`)
	assert.Equal(t, "Wafer", multilangValue(object, "1"))

	assert.Equal(t, "", multilangValue(nil, "1"))
	assert.Equal(t, "", multilangValue(json.RawMessage(`[]`), "1"))
}

func TestRawHelpers(t *testing.T) {
	assert.Equal(t, "42", rawString(json.RawMessage(`"42"`)))
	assert.Equal(t, "42", rawString(json.RawMessage(`42`)))
	assert.Equal(t, "", rawString(nil))

	assert.Equal(t, 7, rawInt(json.RawMessage(`"7"`)))
	assert.Equal(t, 7, rawInt(json.RawMessage(`7`)))
	assert.Equal(t, 0, rawInt(json.RawMessage(`"n/a"`)))

	assert.Equal(t, 11.5, rawFloat(json.RawMessage(`"11.50"`)))
	assert.Equal(t, 11.5, rawFloat(json.RawMessage(`11.5`)))
	assert.Equal(t, 0.0, rawFloat(nil))
}

func TestParseProductFullPayload(t *testing.T) {
	raw := json.RawMessage(`{
		"id": 483,
		"name": [{"id":"1","value":"Herbatniki czekoladowe"},{"id":"2","value":"Chocolate biscuits"}],
		"id_category_default": "5",
		"price": "11.50",
		"manufacturer_name": "ACME",
		"reference": "SKU-483",
		"associations": {"stock_availables": [{"quantity": "12"}]}
	}`)

	product := parseProduct(raw)

	require.NotNil(t, product)
	assert.Equal(t, "483", product.ID)
	assert.Equal(t, "Herbatniki czekoladowe", product.Name)
	assert.Equal(t, "Chocolate biscuits", product.NameSecondary)
	assert.Equal(t, "5", product.CategoryID)
	assert.Equal(t, 11.5, product.Price)
	assert.Equal(t, "ACME", product.Manufacturer)
	assert.Equal(t, "SKU-483", product.SKU)
	assert.Equal(t, 12, product.Quantity)
}

func TestParseProductQuantityFallback(t *testing.T) {
	raw := json.RawMessage(`{"id":"9","name":"Wafer","quantity":3}`)

	product := parseProduct(raw)

	require.NotNil(t, product)
	assert.Equal(t, 3, product.Quantity)
	assert.Empty(t, product.NameSecondary)
}

func TestParseProductRejectsIncomplete(t *testing.T) {
	assert.Nil(t, parseProduct(nil))
	assert.Nil(t, parseProduct(json.RawMessage(`{}`)))
	assert.Nil(t, parseProduct(json.RawMessage(`{"id":"1"}`)))
	assert.Nil(t, parseProduct(json.RawMessage(`{"name":"No ID"}`)))
	assert.Nil(t, parseProduct(json.RawMessage(`not json`)))
}
