package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizeStripsQuantities(t *testing.T) {
	terms := Tokenize("Chocolate Cookies 200g")

	assert.Equal(t, TermVector{"chocolate": 1, "cookies": 1}, terms)
}

func TestTokenizeDropsStopWordsAndShortTokens(t *testing.T) {
	terms := Tokenize("Mix for the Cake of Joy XL")

	assert.Contains(t, terms, "cake")
	assert.Contains(t, terms, "joy")
	assert.NotContains(t, terms, "mix")
	assert.NotContains(t, terms, "the")
	assert.NotContains(t, terms, "for")
	assert.NotContains(t, terms, "xl")
}

func TestTokenizeKeepsLatinExtended(t *testing.T) {
	terms := Tokenize("Herbatniki czekoladowe bez cukru 365g")

	assert.Contains(t, terms, "herbatniki")
	assert.Contains(t, terms, "czekoladowe")
	assert.Contains(t, terms, "bez")
	assert.Contains(t, terms, "cukru")
	assert.NotContains(t, terms, "365g")
}

func TestTokenizeEmptyName(t *testing.T) {
	assert.Empty(t, Tokenize(""))
	assert.Empty(t, Tokenize("   \t  "))
}

func TestTokenizeCountsRepeats(t *testing.T) {
	terms := Tokenize("Choco Choco Balls")

	assert.Equal(t, 2, terms["choco"])
	assert.Equal(t, 1, terms["balls"])
	assert.Equal(t, 3, terms.Len())
}

func TestTokenizeVariousUnits(t *testing.T) {
	for _, name := range []string{
		"Protein Bar 60 g",
		"Olive Oil 1l",
		"Flour 1kg",
		"Juice 250ml",
		"Candles 30szt",
		"Screws 12pcs",
	} {
		terms := Tokenize(name)
		for token := range terms {
			assert.NotRegexp(t, `^\d`, token, "unit survived in %q", name)
		}
	}
}
