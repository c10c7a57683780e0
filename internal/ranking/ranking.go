// Package ranking produces a total order over a lead set from a sort
// specification, with an optional externally supplied rank override map that
// fully supersedes the default ordering.
//
// Two rules hold regardless of the sort key:
//   - leads whose key does not resolve sort after every lead whose key does,
//     in both directions (missing values are never coerced to zero)
//   - sorting is stable, so repeated re-sorts never shuffle ties
package ranking

import (
	"sort"
	"strings"
	"time"

	"github.com/intakehq/intake/internal/lead"
	"github.com/intakehq/intake/internal/relevance"
)

// Direction of a sort. Serialized into saved views, so the values are wire
// strings rather than iota.
type Direction string

const (
	Ascending  Direction = "ascending"
	Descending Direction = "descending"
)

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Descending {
		return Ascending
	}
	return Descending
}

// Spec selects the sort key and direction. Keys resolve through the field
// resolver, so logical aliases like "score" or "contacted" work directly.
type Spec struct {
	Key       string    `json:"key"`
	Direction Direction `json:"direction"`
}

// DefaultSpec is the order used before the user picks anything.
func DefaultSpec() Spec {
	return Spec{Key: "score", Direction: Descending}
}

// Key describes one logical sort key exposed to the user.
type Key struct {
	Key   string
	Label string
}

// Keys lists the sort keys the surfaces offer, in display order.
func Keys() []Key {
	return []Key{
		{Key: "score", Label: "Score"},
		{Key: "name", Label: "Name"},
		{Key: "created", Label: "Created"},
		{Key: "contacted", Label: "Last Contacted"},
		{Key: "probability", Label: "Conversion"},
		{Key: "stage", Label: "Stage"},
	}
}

// Apply orders leads by the override map when it is non-empty, else by the
// spec. The input slice is never mutated.
func Apply(leads []lead.Lead, spec Spec, override map[string]relevance.Score) []lead.Lead {
	out := make([]lead.Lead, len(leads))
	copy(out, leads)

	if len(override) > 0 {
		applyOverride(out, override)
		return out
	}

	if strings.TrimSpace(spec.Key) == "" {
		return out
	}

	kind := lead.KindOf(spec.Key)
	desc := spec.Direction == Descending

	sort.SliceStable(out, func(i, j int) bool {
		return fieldLess(out[i], out[j], spec.Key, kind, desc)
	})
	return out
}

// applyOverride orders strictly by descending override score. Leads absent
// from the map keep their relative input order and land after every present
// lead.
func applyOverride(leads []lead.Lead, override map[string]relevance.Score) {
	sort.SliceStable(leads, func(i, j int) bool {
		si, iok := override[leads[i].UID]
		sj, jok := override[leads[j].UID]
		switch {
		case iok && jok:
			return si.Score > sj.Score
		case iok:
			return true
		default:
			return false
		}
	})
}

// fieldLess compares two leads on one key. Direction flips the comparator
// sign but never the missing-last placement.
func fieldLess(a, b lead.Lead, key string, kind lead.Kind, desc bool) bool {
	va, aok := lead.Resolve(a, key)
	vb, bok := lead.Resolve(b, key)

	switch kind {
	case lead.KindNumber:
		na, ok := numericValue(va, aok)
		nb, ok2 := numericValue(vb, bok)
		return orderedLess(na, ok, nb, ok2, desc)
	case lead.KindDate:
		ta, ok := instantValue(va, aok)
		tb, ok2 := instantValue(vb, bok)
		switch {
		case ok && ok2:
			if ta.Equal(tb) {
				return false
			}
			if desc {
				return ta.After(tb)
			}
			return ta.Before(tb)
		case ok:
			return true
		default:
			return false
		}
	case lead.KindBool:
		na, ok := boolValue(va, aok)
		nb, ok2 := boolValue(vb, bok)
		return orderedLess(na, ok, nb, ok2, desc)
	default:
		switch {
		case aok && bok:
			sa := strings.ToLower(lead.Text(va))
			sb := strings.ToLower(lead.Text(vb))
			if sa == sb {
				return false
			}
			if desc {
				return sa > sb
			}
			return sa < sb
		case aok:
			return true
		default:
			return false
		}
	}
}

func orderedLess(a float64, aok bool, b float64, bok bool, desc bool) bool {
	switch {
	case aok && bok:
		if a == b {
			return false
		}
		if desc {
			return a > b
		}
		return a < b
	case aok:
		return true
	default:
		return false
	}
}

func numericValue(v any, resolved bool) (float64, bool) {
	if !resolved {
		return 0, false
	}
	return lead.Numeric(v)
}

func instantValue(v any, resolved bool) (time.Time, bool) {
	if !resolved {
		return time.Time{}, false
	}
	return lead.Instant(v)
}

func boolValue(v any, resolved bool) (float64, bool) {
	if !resolved {
		return 0, false
	}
	if lead.Truthy(v) {
		return 1, true
	}
	return 0, true
}
