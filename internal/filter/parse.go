package filter

import (
	"fmt"
	"strings"
)

// ParseCondition parses a field:operator:value triple. The value may itself
// contain colons; only the first two split.
func ParseCondition(raw string) (Condition, error) {
	parts := strings.SplitN(raw, ":", 3)
	if len(parts) != 3 {
		return Condition{}, fmt.Errorf("invalid filter %q, want field:operator:value", raw)
	}

	c := Condition{
		Field: strings.TrimSpace(parts[0]),
		Op:    Op(strings.TrimSpace(parts[1])),
		Value: strings.TrimSpace(parts[2]),
	}
	if c.Field == "" {
		return Condition{}, fmt.Errorf("invalid filter %q, field is empty", raw)
	}
	if !ValidOp(c.Op) {
		return Condition{}, fmt.Errorf("invalid operator %q in filter %q", parts[1], raw)
	}
	return c, nil
}

// ParseConjunction parses repeated triples into one ALL group. No triples
// yields the match-everything zero node.
func ParseConjunction(raws []string) (Node, error) {
	nodes := make([]Node, 0, len(raws))
	for _, raw := range raws {
		c, err := ParseCondition(raw)
		if err != nil {
			return Node{}, err
		}
		nodes = append(nodes, Node{Cond: &c})
	}

	switch len(nodes) {
	case 0:
		return Node{}, nil
	case 1:
		return nodes[0], nil
	default:
		return AllOf(nodes...), nil
	}
}

// ValidOp reports whether op is one of the fixed comparison operators.
func ValidOp(op Op) bool {
	switch op {
	case OpEquals, OpNotEquals, OpContains, OpGreaterOrEqual, OpLessOrEqual:
		return true
	}
	return false
}
