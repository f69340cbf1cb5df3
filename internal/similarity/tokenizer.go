package similarity

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Stop words (English + Polish) that carry no similarity signal in
// product names.
var stopWords = map[string]struct{}{
	// English
	"the": {}, "and": {}, "for": {}, "with": {}, "of": {}, "in": {},
	"on": {}, "at": {}, "a": {}, "an": {},
	"pack": {}, "mix": {}, "set": {}, "piece": {}, "pieces": {}, "bag": {}, "box": {},
	// Polish
	"i": {}, "na": {}, "do": {}, "z": {}, "w": {}, "o": {}, "dla": {},
	"po": {}, "ze": {}, "od": {},
}

var (
	// quantityPattern matches unit quantities such as 600g, 1kg,
	// 250ml, 30szt, 12pcs.
	quantityPattern = regexp.MustCompile(`\d+\s?(g|kg|ml|l|mg|szt|pcs|oz|lb)(\s|$)`)

	// wordPattern extracts letter/digit runs, keeping Latin-extended
	// characters so Polish names tokenize correctly.
	wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)
)

const minTokenLength = 3

// TermVector is a multiset of normalized name terms.
type TermVector map[string]int

// Len returns the total term count, counting repeats.
func (v TermVector) Len() int {
	var n int
	for _, count := range v {
		n += count
	}
	return n
}

// Tokenize normalizes a product name into a term multiset: lowercase,
// unit quantities stripped, stop words and tokens shorter than three
// runes dropped. An empty or whitespace-only name yields an empty
// vector.
func Tokenize(name string) TermVector {
	terms := TermVector{}
	if strings.TrimSpace(name) == "" {
		return terms
	}

	text := strings.ToLower(name)
	text = quantityPattern.ReplaceAllString(text, " ")

	for _, word := range wordPattern.FindAllString(text, -1) {
		if _, stop := stopWords[word]; stop {
			continue
		}
		if utf8.RuneCountInString(word) < minTokenLength {
			continue
		}
		terms[word]++
	}

	return terms
}
