// Package search implements the suggestion index and the free-text lead
// filter behind the search box. Suggestions are categorical: distinct values
// of a fixed field set, with per-value lead counts, surfaced in discovery
// order rather than ranked. The free-text filter matches a small set of
// fields and is driven through a debouncer so typing does not recompute the
// pipeline on every keystroke.
package search

import (
	"strings"

	"github.com/intakehq/intake/internal/lead"
)

// DefaultLimit caps how many suggestions a single term produces.
const DefaultLimit = 5

// CategoricalFields lists the fields suggestions draw from, in the order
// categories are scanned.
var CategoricalFields = []string{
	lead.FieldProgram,
	lead.FieldSchool,
	lead.FieldCountry,
	lead.FieldSource,
	lead.FieldOwner,
	lead.FieldStage,
}

// FreeTextFields lists the fields the live search filter matches against.
var FreeTextFields = []string{
	lead.FieldFullName,
	lead.FieldEmail,
	lead.FieldProgram,
}

// Suggestion pairs a categorical field value with the number of leads
// carrying that exact value.
type Suggestion struct {
	Category string
	Label    string
	Value    string
	Count    int
}

// Suggest returns up to limit suggestions whose lowercase value contains the
// lowercase term. Values appear in discovery order: category scan order
// first, then first-seen order within a category. An empty trimmed term
// yields nothing.
func Suggest(term string, leads []lead.Lead, limit int) []Suggestion {
	trimmed := strings.TrimSpace(term)
	if trimmed == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	lower := strings.ToLower(trimmed)

	var out []Suggestion
	for _, field := range CategoricalFields {
		var order []string
		counts := make(map[string]int)
		display := make(map[string]string)

		for _, l := range leads {
			v, ok := lead.Resolve(l, field)
			if !ok {
				continue
			}
			text := strings.TrimSpace(lead.Text(v))
			if text == "" {
				continue
			}
			key := strings.ToLower(text)
			if _, seen := counts[key]; !seen {
				order = append(order, key)
				display[key] = text
			}
			counts[key]++
		}

		label := lead.LabelOf(field)
		for _, key := range order {
			if !strings.Contains(key, lower) {
				continue
			}
			out = append(out, Suggestion{
				Category: field,
				Label:    label,
				Value:    display[key],
				Count:    counts[key],
			})
			if len(out) >= limit {
				return out
			}
		}
	}
	return out
}

// FilterByTerm returns the leads whose free-text fields contain the term,
// case-insensitively. An empty trimmed term passes the input through
// unchanged.
func FilterByTerm(term string, leads []lead.Lead) []lead.Lead {
	trimmed := strings.TrimSpace(term)
	if trimmed == "" {
		return leads
	}
	lower := strings.ToLower(trimmed)

	out := make([]lead.Lead, 0, len(leads))
	for _, l := range leads {
		if matchesTerm(l, lower) {
			out = append(out, l)
		}
	}
	return out
}

func matchesTerm(l lead.Lead, lowerTerm string) bool {
	for _, field := range FreeTextFields {
		v, ok := lead.Resolve(l, field)
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(lead.Text(v)), lowerTerm) {
			return true
		}
	}
	return false
}
