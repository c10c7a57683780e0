package filter

import (
	"encoding/json"
	"testing"

	"github.com/intakehq/intake/internal/lead"
)

func testLead(score float64, stage string) lead.Lead {
	return lead.Lead{
		UID: "l1",
		Fields: map[string]any{
			lead.FieldFirstName: "Iris",
			lead.FieldLastName:  "Chen",
			lead.FieldEmail:     "iris.chen@example.edu",
			lead.FieldProgram:   "Computer Science",
			lead.FieldStage:     stage,
			lead.FieldLeadScore: score,
			lead.FieldColdLead:  false,
			lead.FieldCreatedAt: "2024-02-10",
		},
	}
}

func TestEvaluateEmptyGroupsPassEverything(t *testing.T) {
	l := testLead(10, "new")

	if !Evaluate(l, Node{}) {
		t.Fatalf("zero node should match")
	}
	if !Evaluate(l, AllOf()) {
		t.Fatalf("empty ALL should match")
	}
	if !Evaluate(l, AnyOf()) {
		t.Fatalf("empty ANY should match")
	}
}

func TestEvaluateAtomicConditions(t *testing.T) {
	l := testLead(85, "Qualified")

	cases := []struct {
		name string
		node Node
		want bool
	}{
		{"numeric gte pass", Where("leadScore", OpGreaterOrEqual, "80"), true},
		{"numeric gte fail", Where("leadScore", OpGreaterOrEqual, "90"), false},
		{"numeric lte", Where("score", OpLessOrEqual, "85"), true},
		{"numeric equals via alias", Where("score", OpEquals, "85"), true},
		{"string equals case-insensitive", Where("stage", OpEquals, "qualified"), true},
		{"string notEquals", Where("stage", OpNotEquals, "new"), true},
		{"contains case-insensitive", Where("program", OpContains, "computer"), true},
		{"contains on derived name", Where("name", OpContains, "chen"), true},
		{"date gte", Where("createdAt", OpGreaterOrEqual, "2024-01-01"), true},
		{"date lte fail", Where("createdAt", OpLessOrEqual, "2024-01-01"), false},
		{"bool equals", Where("coldLead", OpEquals, "false"), true},
		{"unknown field fails", Where("ghost", OpEquals, "x"), false},
		{"unknown field fails notEquals too", Where("ghost", OpNotEquals, "x"), false},
		{"unparsable numeric literal fails", Where("leadScore", OpGreaterOrEqual, "lots"), false},
		{"unknown operator fails", Where("stage", Op("matches"), "Qualified"), false},
	}

	for _, tc := range cases {
		if got := Evaluate(l, tc.node); got != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestEvaluateFallsBackToStringRepresentation(t *testing.T) {
	l := testLead(85, "Qualified")

	// contains is meaningless for numbers, so it matches against the
	// rendered value instead of failing.
	if !Evaluate(l, Where("leadScore", OpContains, "8")) {
		t.Fatalf("expected contains on number to match string form")
	}
	if !Evaluate(l, Where("coldLead", OpContains, "fal")) {
		t.Fatalf("expected contains on bool to match string form")
	}
}

func TestEvaluateCombinators(t *testing.T) {
	l := testLead(85, "Qualified")

	all := AllOf(
		Where("leadScore", OpGreaterOrEqual, "50"),
		Where("stage", OpEquals, "qualified"),
	)
	if !Evaluate(l, all) {
		t.Fatalf("expected ALL group to match")
	}

	anyNode := AnyOf(
		Where("stage", OpEquals, "new"),
		Where("leadScore", OpGreaterOrEqual, "80"),
	)
	if !Evaluate(l, anyNode) {
		t.Fatalf("expected ANY group to match on second branch")
	}

	nested := AllOf(
		Where("coldLead", OpEquals, "false"),
		AnyOf(
			Where("program", OpContains, "science"),
			Where("program", OpContains, "law"),
		),
	)
	if !Evaluate(l, nested) {
		t.Fatalf("expected nested group to match")
	}

	failing := AllOf(
		Where("leadScore", OpGreaterOrEqual, "50"),
		Where("stage", OpEquals, "enrolled"),
	)
	if Evaluate(l, failing) {
		t.Fatalf("expected failing ALL group to reject")
	}
}

func TestNodeJSONRoundTripPreservesSemantics(t *testing.T) {
	node := AllOf(
		Where("leadScore", OpGreaterOrEqual, "50"),
		AnyOf(Where("stage", OpEquals, "new"), Where("stage", OpEquals, "contacted")),
	)

	raw, err := json.Marshal(node)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded Node
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	match := testLead(60, "contacted")
	miss := testLead(60, "enrolled")
	if !Evaluate(match, decoded) {
		t.Fatalf("decoded node should match contacted lead")
	}
	if Evaluate(miss, decoded) {
		t.Fatalf("decoded node should reject enrolled lead")
	}
}

func TestUnknownOperatorDecodesWithoutError(t *testing.T) {
	var node Node
	raw := `{"cond":{"field":"stage","operator":"regex","value":".*"}}`
	if err := json.Unmarshal([]byte(raw), &node); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if Evaluate(testLead(10, "new"), node) {
		t.Fatalf("unknown operator should evaluate false, not error")
	}
}
