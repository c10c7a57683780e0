package filter

import (
	"strings"
	"testing"
)

func TestParseConditionSplitsTriple(t *testing.T) {
	c, err := ParseCondition("stage:equals:new")
	if err != nil {
		t.Fatalf("ParseCondition returned error: %v", err)
	}
	if c.Field != "stage" || c.Op != OpEquals || c.Value != "new" {
		t.Fatalf("unexpected condition: %+v", c)
	}
}

func TestParseConditionKeepsColonsInValue(t *testing.T) {
	c, err := ParseCondition("lastContactedAt:greaterOrEqual:2024-03-01T09:30:00Z")
	if err != nil {
		t.Fatalf("ParseCondition returned error: %v", err)
	}
	if c.Value != "2024-03-01T09:30:00Z" {
		t.Fatalf("value lost its colons: %q", c.Value)
	}
}

func TestParseConditionTrimsWhitespace(t *testing.T) {
	c, err := ParseCondition(" owner : equals : dana ")
	if err != nil {
		t.Fatalf("ParseCondition returned error: %v", err)
	}
	if c.Field != "owner" || c.Op != OpEquals || c.Value != "dana" {
		t.Fatalf("whitespace not trimmed: %+v", c)
	}
}

func TestParseConditionRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"missing parts", "stage:new", "want field:operator:value"},
		{"empty field", ":equals:new", "field is empty"},
		{"unknown operator", "stage:matches:new", "invalid operator"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseCondition(tc.raw)
			if err == nil {
				t.Fatalf("expected error for %q", tc.raw)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestParseConjunctionShapes(t *testing.T) {
	empty, err := ParseConjunction(nil)
	if err != nil {
		t.Fatalf("ParseConjunction(nil) returned error: %v", err)
	}
	if !empty.IsEmpty() {
		t.Fatalf("no triples should yield the zero node, got %+v", empty)
	}

	single, err := ParseConjunction([]string{"stage:equals:new"})
	if err != nil {
		t.Fatalf("ParseConjunction returned error: %v", err)
	}
	if single.Cond == nil || len(single.All) != 0 {
		t.Fatalf("single triple should stay atomic, got %+v", single)
	}

	multi, err := ParseConjunction([]string{"stage:equals:new", "leadScore:greaterOrEqual:80"})
	if err != nil {
		t.Fatalf("ParseConjunction returned error: %v", err)
	}
	if multi.Cond != nil || len(multi.All) != 2 {
		t.Fatalf("two triples should form an ALL group, got %+v", multi)
	}
}

func TestParseConjunctionStopsAtFirstError(t *testing.T) {
	if _, err := ParseConjunction([]string{"stage:equals:new", "broken"}); err == nil {
		t.Fatalf("expected error for malformed triple")
	}
}

func TestParseConjunctionMatchesEvaluate(t *testing.T) {
	node, err := ParseConjunction([]string{"leadScore:greaterOrEqual:80", "stage:equals:qualified"})
	if err != nil {
		t.Fatalf("ParseConjunction returned error: %v", err)
	}

	if !Evaluate(testLead(85, "qualified"), node) {
		t.Fatalf("lead meeting both triples should match")
	}
	if Evaluate(testLead(85, "new"), node) {
		t.Fatalf("lead failing one triple should not match")
	}
}
