package ranking

import (
	"testing"

	"github.com/intakehq/intake/internal/lead"
	"github.com/intakehq/intake/internal/relevance"
)

func leadWithScore(uid string, score any) lead.Lead {
	fields := map[string]any{lead.FieldFirstName: uid}
	if score != nil {
		fields[lead.FieldLeadScore] = score
	}
	return lead.Lead{UID: uid, Fields: fields}
}

func uids(leads []lead.Lead) []string {
	out := make([]string, len(leads))
	for i, l := range leads {
		out[i] = l.UID
	}
	return out
}

func assertOrder(t *testing.T, got []lead.Lead, want ...string) {
	t.Helper()
	ids := uids(got)
	if len(ids) != len(want) {
		t.Fatalf("got order %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("got order %v, want %v", ids, want)
		}
	}
}

func TestApplySortsNumericKey(t *testing.T) {
	leads := []lead.Lead{
		leadWithScore("a", float64(60)),
		leadWithScore("b", float64(95)),
		leadWithScore("c", float64(40)),
	}

	asc := Apply(leads, Spec{Key: "score", Direction: Ascending}, nil)
	assertOrder(t, asc, "c", "a", "b")

	desc := Apply(leads, Spec{Key: "score", Direction: Descending}, nil)
	assertOrder(t, desc, "b", "a", "c")

	// Input slice untouched.
	assertOrder(t, leads, "a", "b", "c")
}

func TestMissingValuesSortLastInBothDirections(t *testing.T) {
	leads := []lead.Lead{
		leadWithScore("noscore1", nil),
		leadWithScore("hi", float64(90)),
		leadWithScore("noscore2", nil),
		leadWithScore("lo", float64(10)),
	}

	asc := Apply(leads, Spec{Key: "score", Direction: Ascending}, nil)
	assertOrder(t, asc, "lo", "hi", "noscore1", "noscore2")

	desc := Apply(leads, Spec{Key: "score", Direction: Descending}, nil)
	assertOrder(t, desc, "hi", "lo", "noscore1", "noscore2")
}

func TestSortIsStableAcrossRepeatedSorts(t *testing.T) {
	leads := []lead.Lead{
		leadWithScore("first", float64(50)),
		leadWithScore("second", float64(50)),
		leadWithScore("third", float64(50)),
	}

	out := leads
	for i := 0; i < 3; i++ {
		out = Apply(out, Spec{Key: "score", Direction: Descending}, nil)
		assertOrder(t, out, "first", "second", "third")
	}
}

func TestStringKeySortsCaseInsensitive(t *testing.T) {
	leads := []lead.Lead{
		{UID: "1", Fields: map[string]any{lead.FieldFirstName: "zoe"}},
		{UID: "2", Fields: map[string]any{lead.FieldFirstName: "Adam"}},
		{UID: "3", Fields: map[string]any{lead.FieldFirstName: "maya"}},
	}

	out := Apply(leads, Spec{Key: "name", Direction: Ascending}, nil)
	assertOrder(t, out, "2", "3", "1")
}

func TestDateKeySortsParsedInstants(t *testing.T) {
	leads := []lead.Lead{
		{UID: "mar", Fields: map[string]any{lead.FieldCreatedAt: "2024-03-05"}},
		{UID: "jan", Fields: map[string]any{lead.FieldCreatedAt: "2024-01-15"}},
		{UID: "bad", Fields: map[string]any{lead.FieldCreatedAt: "not a date"}},
		{UID: "feb", Fields: map[string]any{lead.FieldCreatedAt: "2024-02-01"}},
	}

	asc := Apply(leads, Spec{Key: "created", Direction: Ascending}, nil)
	assertOrder(t, asc, "jan", "feb", "mar", "bad")

	desc := Apply(leads, Spec{Key: "created", Direction: Descending}, nil)
	assertOrder(t, desc, "mar", "feb", "jan", "bad")
}

func TestOverrideMapSupersedesSpec(t *testing.T) {
	leads := []lead.Lead{
		leadWithScore("a", float64(99)),
		leadWithScore("b", float64(1)),
		leadWithScore("c", float64(50)),
		leadWithScore("d", float64(75)),
	}
	override := map[string]relevance.Score{
		"b": {Score: 0.9},
		"d": {Score: 0.4},
	}

	// Spec says score descending, which would put "a" first; the override
	// wins and unscored leads trail in input order.
	out := Apply(leads, Spec{Key: "score", Direction: Descending}, override)
	assertOrder(t, out, "b", "d", "a", "c")
}

func TestEmptyOverrideFallsBackToSpec(t *testing.T) {
	leads := []lead.Lead{
		leadWithScore("lo", float64(10)),
		leadWithScore("hi", float64(80)),
	}

	out := Apply(leads, Spec{Key: "score", Direction: Descending}, map[string]relevance.Score{})
	assertOrder(t, out, "hi", "lo")
}

func TestEmptyKeyKeepsInputOrder(t *testing.T) {
	leads := []lead.Lead{
		leadWithScore("x", float64(5)),
		leadWithScore("y", float64(90)),
	}

	out := Apply(leads, Spec{}, nil)
	assertOrder(t, out, "x", "y")
}

func TestDirectionFlip(t *testing.T) {
	if Ascending.Flip() != Descending || Descending.Flip() != Ascending {
		t.Fatalf("Flip should toggle direction")
	}
}
