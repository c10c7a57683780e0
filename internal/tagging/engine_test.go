package tagging

import (
	"testing"

	"github.com/intakehq/intake/internal/filter"
	"github.com/intakehq/intake/internal/lead"
	"github.com/intakehq/intake/internal/localstore"
)

func openStore(t *testing.T) *localstore.Store {
	t.Helper()
	s, err := localstore.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func scoredLead(uid string, score float64) lead.Lead {
	return lead.Lead{
		UID: uid,
		Fields: map[string]any{
			lead.FieldLeadScore: score,
			lead.FieldSLAState:  "none",
		},
	}
}

func TestAutoTagFromScoreRule(t *testing.T) {
	e := NewEngine(openStore(t))

	hot := scoredLead("hot", 85)
	tepid := scoredLead("tepid", 60)

	if !e.HasTag(hot, "hot-lead") {
		t.Fatalf("expected score 85 to produce hot-lead tag, got %v", e.EffectiveTags(hot))
	}
	if e.HasTag(tepid, "hot-lead") {
		t.Fatalf("expected score 60 to withhold hot-lead tag, got %v", e.EffectiveTags(tepid))
	}
}

func TestManualRemoveDoesNotSuppressAutoTag(t *testing.T) {
	e := NewEngine(openStore(t))
	hot := scoredLead("hot", 85)

	// Removing a tag that is only auto-applied has nothing to remove; the
	// rule still matches, so the tag stays.
	if err := e.RemoveTag(hot.UID, "hot-lead"); err != nil {
		t.Fatalf("RemoveTag returned error: %v", err)
	}
	if !e.HasTag(hot, "hot-lead") {
		t.Fatalf("auto tag should reappear while its rule matches")
	}
}

func TestManualTagsUnionWithAutoAndPersist(t *testing.T) {
	store := openStore(t)
	e := NewEngine(store)
	l := scoredLead("lead-9", 85)

	if err := e.AssignTag(l.UID, "campus-visit"); err != nil {
		t.Fatalf("AssignTag returned error: %v", err)
	}
	if err := e.AssignTag(l.UID, "campus-visit"); err != nil {
		t.Fatalf("re-assign should be a no-op, got %v", err)
	}

	tags := e.EffectiveTags(l)
	if len(tags) != 2 || tags[0] != "hot-lead" || tags[1] != "campus-visit" {
		t.Fatalf("got tags %v, want [hot-lead campus-visit]", tags)
	}

	// A fresh engine over the same store sees the manual assignment.
	reloaded := NewEngine(store)
	if got := reloaded.ManualTags(l.UID); len(got) != 1 || got[0] != "campus-visit" {
		t.Fatalf("reloaded manual tags = %v, want [campus-visit]", got)
	}

	if err := e.RemoveTag(l.UID, "campus-visit"); err != nil {
		t.Fatalf("RemoveTag returned error: %v", err)
	}
	if got := NewEngine(store).ManualTags(l.UID); len(got) != 0 {
		t.Fatalf("expected manual set cleared after remove, got %v", got)
	}
}

func TestInferStatusCascadeOrder(t *testing.T) {
	cases := []struct {
		name   string
		fields map[string]any
		want   string
	}{
		{
			"sla urgent wins over high score",
			map[string]any{lead.FieldSLAState: "urgent", lead.FieldLeadScore: float64(95)},
			StatusUrgent,
		},
		{
			"sla warning maps to urgent",
			map[string]any{lead.FieldSLAState: "warning", lead.FieldLeadScore: float64(10)},
			StatusUrgent,
		},
		{
			"high probability progressing",
			map[string]any{lead.FieldConversionProb: 0.8, lead.FieldLeadScore: float64(10)},
			StatusProgressing,
		},
		{
			"high score progressing",
			map[string]any{lead.FieldLeadScore: float64(75)},
			StatusProgressing,
		},
		{
			"low score cold",
			map[string]any{lead.FieldLeadScore: float64(20)},
			StatusCold,
		},
		{
			"cold marker cold",
			map[string]any{lead.FieldColdLead: true, lead.FieldLeadScore: float64(50)},
			StatusCold,
		},
		{
			"default progressing",
			map[string]any{lead.FieldLeadScore: float64(50)},
			StatusProgressing,
		},
		{
			"no fields default progressing",
			map[string]any{},
			StatusProgressing,
		},
	}

	for _, tc := range cases {
		got := InferStatus(lead.Lead{UID: "x", Fields: tc.fields})
		if got != tc.want {
			t.Fatalf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestStatusOverridePrecedenceAndPersistence(t *testing.T) {
	store := openStore(t)
	e := NewEngine(store)
	l := scoredLead("lead-2", 95)

	if got := e.EffectiveStatus(l); got != StatusProgressing {
		t.Fatalf("inferred status = %s, want progressing", got)
	}

	if err := e.OverrideStatus(l.UID, StatusCold); err != nil {
		t.Fatalf("OverrideStatus returned error: %v", err)
	}
	if got := e.EffectiveStatus(l); got != StatusCold {
		t.Fatalf("status after override = %s, want cold", got)
	}

	if got := NewEngine(store).EffectiveStatus(l); got != StatusCold {
		t.Fatalf("reloaded status = %s, want cold", got)
	}

	if err := e.OverrideStatus(l.UID, "vip"); err == nil {
		t.Fatalf("expected unknown status to be rejected")
	}

	if err := e.ClearStatusOverride(l.UID); err != nil {
		t.Fatalf("ClearStatusOverride returned error: %v", err)
	}
	if got := e.EffectiveStatus(l); got != StatusProgressing {
		t.Fatalf("status after clear = %s, want progressing", got)
	}
}

func TestCorruptRulesFallBackToDefaults(t *testing.T) {
	store := openStore(t)
	if err := store.Set("tags/rules", "{broken"); err != nil {
		t.Fatalf("seed corrupt rules: %v", err)
	}

	e := NewEngine(store)
	if got, want := len(e.Rules()), len(DefaultRules()); got != want {
		t.Fatalf("got %d rules, want %d defaults", got, want)
	}
}

func TestUpsertAndRemoveRule(t *testing.T) {
	store := openStore(t)
	e := NewEngine(store)

	custom := Rule{
		ID:   "stem",
		Name: "STEM",
		Conditions: []filter.Condition{
			{Field: lead.FieldProgram, Op: filter.OpContains, Value: "engineering"},
		},
	}
	if err := e.UpsertRule(custom); err != nil {
		t.Fatalf("UpsertRule returned error: %v", err)
	}

	l := lead.Lead{UID: "s1", Fields: map[string]any{lead.FieldProgram: "Mechanical Engineering"}}
	if !e.HasTag(l, "stem") {
		t.Fatalf("expected custom rule to tag matching lead")
	}

	reloaded := NewEngine(store)
	if _, ok := reloaded.Rule("stem"); !ok {
		t.Fatalf("expected custom rule to persist")
	}

	if err := e.RemoveRule("stem"); err != nil {
		t.Fatalf("RemoveRule returned error: %v", err)
	}
	if _, ok := e.Rule("stem"); ok {
		t.Fatalf("expected rule removed")
	}

	if err := e.UpsertRule(Rule{ID: "x"}); err == nil {
		t.Fatalf("expected unnamed rule to be rejected")
	}
}

func TestTagColorResolution(t *testing.T) {
	e := NewEngine(openStore(t))

	if got := e.TagColor("hot-lead"); got != "203" {
		t.Fatalf("rule color = %s, want 203", got)
	}
	if err := e.SetTagColor("hot-lead", "99"); err != nil {
		t.Fatalf("SetTagColor returned error: %v", err)
	}
	if got := e.TagColor("hot-lead"); got != "99" {
		t.Fatalf("override color = %s, want 99", got)
	}
	if got := e.TagColor("unknown-tag"); got != defaultTagColor {
		t.Fatalf("default color = %s, want %s", got, defaultTagColor)
	}
}

func TestFindRuleByIDAndName(t *testing.T) {
	e := NewEngine(openStore(t))

	byID, ok := e.FindRule("hot-lead")
	if !ok || byID.ID != "hot-lead" {
		t.Fatalf("lookup by id failed: %+v ok=%v", byID, ok)
	}

	byName, ok := e.FindRule("hot")
	if !ok || byName.ID != "hot-lead" {
		t.Fatalf("lookup by name failed: %+v ok=%v", byName, ok)
	}

	folded, ok := e.FindRule("HIGH INTENT")
	if !ok || folded.ID != "high-intent" {
		t.Fatalf("case-folded name lookup failed: %+v ok=%v", folded, ok)
	}

	if _, ok := e.FindRule("no-such-tag"); ok {
		t.Fatalf("unknown tag should not resolve")
	}
}
