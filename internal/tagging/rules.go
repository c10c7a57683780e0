package tagging

import (
	"encoding/json"

	"github.com/intakehq/intake/internal/filter"
	"github.com/intakehq/intake/internal/lead"
)

const defaultTagColor = "246"

// Rule auto-applies its tag to every lead satisfying all of its conditions.
// The ID doubles as the tag ID referenced by manual assignments, saved views
// and color overrides.
type Rule struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Color      string             `json:"color,omitempty"`
	Conditions []filter.Condition `json:"conditions"`
}

// Node expresses the rule as an ALL group so rule matching and filter
// evaluation share one evaluator.
func (r Rule) Node() filter.Node {
	children := make([]filter.Node, len(r.Conditions))
	for i := range r.Conditions {
		cond := r.Conditions[i]
		children[i] = filter.Node{Cond: &cond}
	}
	return filter.Node{All: children}
}

// Matches reports whether the lead satisfies every condition of the rule.
// A rule with no conditions matches everything.
func (r Rule) Matches(l lead.Lead) bool {
	return filter.Evaluate(l, r.Node())
}

// DefaultRules is the built-in rule set used until the user saves their own.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:    "hot-lead",
			Name:  "Hot",
			Color: "203",
			Conditions: []filter.Condition{
				{Field: lead.FieldLeadScore, Op: filter.OpGreaterOrEqual, Value: "80"},
			},
		},
		{
			ID:    "high-intent",
			Name:  "High Intent",
			Color: "214",
			Conditions: []filter.Condition{
				{Field: lead.FieldConversionProb, Op: filter.OpGreaterOrEqual, Value: "0.7"},
			},
		},
		{
			ID:    "at-risk",
			Name:  "At Risk",
			Color: "226",
			Conditions: []filter.Condition{
				{Field: lead.FieldSLAState, Op: filter.OpNotEquals, Value: "none"},
			},
		},
		{
			ID:    "cold-list",
			Name:  "Cold",
			Color: "39",
			Conditions: []filter.Condition{
				{Field: lead.FieldColdLead, Op: filter.OpEquals, Value: "true"},
			},
		},
	}
}

func jsonDecode(raw string, v any) bool {
	return json.Unmarshal([]byte(raw), v) == nil
}
