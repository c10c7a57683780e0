package search

import (
	"testing"

	"github.com/intakehq/intake/internal/lead"
)

func catalogLeads() []lead.Lead {
	mk := func(uid, first, email, program, school, country string) lead.Lead {
		return lead.Lead{
			UID: uid,
			Fields: map[string]any{
				lead.FieldFirstName: first,
				lead.FieldEmail:     email,
				lead.FieldProgram:   program,
				lead.FieldSchool:    school,
				lead.FieldCountry:   country,
			},
		}
	}
	return []lead.Lead{
		mk("1", "Ana", "ana@example.edu", "Computer Science", "North Hill", "Brazil"),
		mk("2", "Ben", "ben@example.edu", "Computer Science", "Science Hill", "Canada"),
		mk("3", "Cho", "cho@example.edu", "Data Science", "North Hill", "Korea"),
		mk("4", "Dee", "dee@example.edu", "History", "Science Hill", "Canada"),
	}
}

func TestSuggestEmptyTermYieldsNothing(t *testing.T) {
	if got := Suggest("   ", catalogLeads(), 5); got != nil {
		t.Fatalf("expected no suggestions for blank term, got %v", got)
	}
}

func TestSuggestDistinctValuesWithCounts(t *testing.T) {
	got := Suggest("science", catalogLeads(), 5)

	want := []Suggestion{
		{Category: lead.FieldProgram, Label: "Program", Value: "Computer Science", Count: 2},
		{Category: lead.FieldProgram, Label: "Program", Value: "Data Science", Count: 1},
		{Category: lead.FieldSchool, Label: "School", Value: "Science Hill", Count: 2},
	}

	if len(got) != len(want) {
		t.Fatalf("got %d suggestions %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("suggestion %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSuggestHonorsLimitAcrossCategories(t *testing.T) {
	leads := catalogLeads()

	got := Suggest("a", leads, 2)
	if len(got) != 2 {
		t.Fatalf("got %d suggestions, want limit 2", len(got))
	}

	// Zero limit falls back to the default.
	if got := Suggest("a", leads, 0); len(got) > DefaultLimit {
		t.Fatalf("got %d suggestions, want at most %d", len(got), DefaultLimit)
	}
}

func TestFilterByTermMatchesFreeTextFields(t *testing.T) {
	leads := catalogLeads()

	byName := FilterByTerm("ana", leads)
	if len(byName) != 1 || byName[0].UID != "1" {
		t.Fatalf("name match = %v, want lead 1", uidsOf(byName))
	}

	byEmail := FilterByTerm("BEN@", leads)
	if len(byEmail) != 1 || byEmail[0].UID != "2" {
		t.Fatalf("email match = %v, want lead 2", uidsOf(byEmail))
	}

	byProgram := FilterByTerm("data", leads)
	if len(byProgram) != 1 || byProgram[0].UID != "3" {
		t.Fatalf("program match = %v, want lead 3", uidsOf(byProgram))
	}

	if got := FilterByTerm("zzz", leads); len(got) != 0 {
		t.Fatalf("expected no matches, got %v", uidsOf(got))
	}
}

func TestFilterByTermEmptyPassesThrough(t *testing.T) {
	leads := catalogLeads()
	got := FilterByTerm("  ", leads)
	if len(got) != len(leads) {
		t.Fatalf("expected pass-through, got %d of %d", len(got), len(leads))
	}
}

func uidsOf(leads []lead.Lead) []string {
	out := make([]string, len(leads))
	for i, l := range leads {
		out[i] = l.UID
	}
	return out
}
