// Package filter implements the predicate evaluator used by ad hoc lead
// filters, saved views and tag rules. Predicates form a recursive tree of
// ALL/ANY groups over atomic conditions, and evaluation never returns an
// error: unknown fields, unparsable literals and unknown operators all fail
// the condition they appear in instead of failing the filter.
package filter

import (
	"strings"

	"github.com/intakehq/intake/internal/lead"
)

// Op identifies a comparison operator. The set is fixed; operators decode
// from stored state as plain strings, so an unrecognized operator evaluates
// false rather than failing the decode.
type Op string

const (
	OpEquals         Op = "equals"
	OpNotEquals      Op = "notEquals"
	OpGreaterOrEqual Op = "greaterOrEqual"
	OpLessOrEqual    Op = "lessOrEqual"
	OpContains       Op = "contains"
)

// Condition is one atomic comparison against a resolved lead field.
type Condition struct {
	Field string `json:"field"`
	Op    Op     `json:"operator"`
	Value string `json:"value"`
}

// Node is a recursive predicate. A node may carry an atomic condition, an
// ALL group, an ANY group, or any combination; every part present must hold.
// Empty groups are vacuously true, for ANY as well as ALL, so "no
// conditions" is always a pass-through. The zero Node matches every lead.
type Node struct {
	Cond *Condition `json:"cond,omitempty"`
	All  []Node     `json:"all,omitempty"`
	Any  []Node     `json:"any,omitempty"`
}

// Where builds an atomic predicate node.
func Where(field string, op Op, value string) Node {
	return Node{Cond: &Condition{Field: field, Op: op, Value: value}}
}

// AllOf builds a conjunction node.
func AllOf(children ...Node) Node {
	return Node{All: children}
}

// AnyOf builds a disjunction node.
func AnyOf(children ...Node) Node {
	return Node{Any: children}
}

// IsEmpty reports whether the node constrains nothing.
func (n Node) IsEmpty() bool {
	return n.Cond == nil && len(n.All) == 0 && len(n.Any) == 0
}

// Evaluate reports whether a lead satisfies the predicate tree.
func Evaluate(l lead.Lead, n Node) bool {
	if n.Cond != nil && !evalCondition(l, *n.Cond) {
		return false
	}

	for _, child := range n.All {
		if !Evaluate(l, child) {
			return false
		}
	}

	if len(n.Any) > 0 {
		matched := false
		for _, child := range n.Any {
			if Evaluate(l, child) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	return true
}

// EvalCondition evaluates a single condition against a lead. Exposed so the
// tag rule engine can share the exact comparison semantics.
func EvalCondition(l lead.Lead, c Condition) bool {
	return evalCondition(l, c)
}

func evalCondition(l lead.Lead, c Condition) bool {
	v, ok := lead.Resolve(l, c.Field)
	if !ok {
		// Unresolved fields fail the condition, for notEquals too.
		return false
	}

	switch lead.KindOf(c.Field) {
	case lead.KindNumber:
		return evalNumber(v, c)
	case lead.KindDate:
		return evalDate(v, c)
	case lead.KindBool:
		return evalBool(v, c)
	default:
		return evalString(lead.Text(v), c)
	}
}

func evalString(s string, c Condition) bool {
	switch c.Op {
	case OpEquals:
		return strings.EqualFold(s, c.Value)
	case OpNotEquals:
		return !strings.EqualFold(s, c.Value)
	case OpContains:
		return containsFold(s, c.Value)
	case OpGreaterOrEqual:
		return strings.Compare(s, c.Value) >= 0
	case OpLessOrEqual:
		return strings.Compare(s, c.Value) <= 0
	default:
		return false
	}
}

func evalNumber(v any, c Condition) bool {
	if c.Op == OpContains {
		// Substring match makes no sense on a number; fall back to the
		// string representation instead of failing.
		return evalString(lead.Text(v), c)
	}

	a, okA := lead.Numeric(v)
	b, okB := lead.Numeric(c.Value)
	if !okA || !okB {
		return false
	}

	switch c.Op {
	case OpEquals:
		return a == b
	case OpNotEquals:
		return a != b
	case OpGreaterOrEqual:
		return a >= b
	case OpLessOrEqual:
		return a <= b
	default:
		return false
	}
}

func evalDate(v any, c Condition) bool {
	if c.Op == OpContains {
		return evalString(lead.Text(v), c)
	}

	a, okA := lead.Instant(v)
	b, okB := lead.Instant(c.Value)
	if !okA || !okB {
		return false
	}

	switch c.Op {
	case OpEquals:
		return a.Equal(b)
	case OpNotEquals:
		return !a.Equal(b)
	case OpGreaterOrEqual:
		return a.After(b) || a.Equal(b)
	case OpLessOrEqual:
		return a.Before(b) || a.Equal(b)
	default:
		return false
	}
}

func evalBool(v any, c Condition) bool {
	switch c.Op {
	case OpEquals:
		return lead.Truthy(v) == lead.Truthy(c.Value)
	case OpNotEquals:
		return lead.Truthy(v) != lead.Truthy(c.Value)
	default:
		return evalString(lead.Text(v), c)
	}
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
