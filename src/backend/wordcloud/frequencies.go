// Package wordcloud builds word clouds from free text.
package wordcloud

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/jdkato/prose/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Word is a counted word with its weight relative to the most frequent one
type Word struct {
	Text   string  `json:"text"`
	Count  int     `json:"count"`
	Weight float64 `json:"weight"` // Count / max Count, in (0,1]
}

// Frequencies counts the meaningful words of text. Stopwords, numbers and
// one-character tokens are dropped, case variants are merged under their most
// common form and trailing-s plurals are merged into an existing singular.
// At most opts.MaxWords words are returned, most frequent first.
func Frequencies(text string, opts Options) ([]Word, error) {
	opts = opts.withDefaults()
	if strings.TrimSpace(text) == "" {
		return []Word{}, nil
	}

	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithSegmentation(false),
		prose.WithExtraction(false))
	if err != nil {
		return nil, fmt.Errorf("failed to tokenize text: %w", err)
	}

	fold := cases.Lower(language.BrazilianPortuguese)

	counts := make(map[string]int)
	forms := make(map[string]map[string]int)
	var order []string // first occurrence of each key
	firstForm := make(map[string]string)

	for _, tok := range doc.Tokens() {
		word := cleanToken(tok.Text)
		if !keepToken(word) {
			continue
		}
		key := fold.String(word)
		if _, stop := opts.Stopwords[key]; stop {
			continue
		}
		if _, seen := counts[key]; !seen {
			order = append(order, key)
			forms[key] = make(map[string]int)
			firstForm[key] = word
		}
		counts[key]++
		forms[key][word]++
	}

	mergePlurals(counts, forms)

	words := make([]Word, 0, len(counts))
	for _, key := range order {
		n, ok := counts[key]
		if !ok {
			continue
		}
		words = append(words, Word{Text: commonForm(forms[key], firstForm[key]), Count: n})
	}

	sort.SliceStable(words, func(i, j int) bool {
		return words[i].Count > words[j].Count
	})
	if len(words) > opts.MaxWords {
		words = words[:opts.MaxWords]
	}
	if len(words) > 0 {
		top := float64(words[0].Count)
		for i := range words {
			words[i].Weight = float64(words[i].Count) / top
		}
	}
	return words, nil
}

// cleanToken strips apostrophes and hyphens surrounding a token
func cleanToken(s string) string {
	return strings.Trim(s, "'’-")
}

// keepToken accepts tokens of two or more runes made of letters, digits,
// apostrophes and hyphens that contain at least one letter. The tokenizer
// splits "don't" into "do" and "n't"; the second half is dropped.
func keepToken(s string) bool {
	switch strings.ToLower(s) {
	case "n't", "n’t":
		return false
	}
	runes := 0
	letters := 0
	for _, r := range s {
		runes++
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.IsDigit(r), r == '\'', r == '’', r == '-':
		default:
			return false
		}
	}
	return runes >= 2 && letters > 0
}

// mergePlurals folds "xs" into "x" when both were seen, leaving "ss" words alone
func mergePlurals(counts map[string]int, forms map[string]map[string]int) {
	for key, n := range counts {
		if !strings.HasSuffix(key, "s") || strings.HasSuffix(key, "ss") {
			continue
		}
		singular := strings.TrimSuffix(key, "s")
		if _, ok := counts[singular]; !ok {
			continue
		}
		counts[singular] += n
		for form, c := range forms[key] {
			forms[singular][strings.TrimSuffix(strings.TrimSuffix(form, "s"), "S")] += c
		}
		delete(counts, key)
		delete(forms, key)
	}
}

// commonForm picks the most used surface form. Ties keep the first form seen,
// otherwise the lexically smallest.
func commonForm(forms map[string]int, first string) string {
	best := first
	for form, c := range forms {
		switch bc := forms[best]; {
		case c > bc:
			best = form
		case c == bc && best != first && form < best:
			best = form
		}
	}
	return best
}
