package localstore

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSetGetDelete(t *testing.T) {
	s := openTestStore(t)

	if _, ok := s.Get("missing"); ok {
		t.Fatalf("expected absent key to report false")
	}

	if err := s.Set("views/snapshot", "payload"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if got, ok := s.Get("views/snapshot"); !ok || got != "payload" {
		t.Fatalf("Get = %q, %v; want payload, true", got, ok)
	}

	if err := s.Set("views/snapshot", "replaced"); err != nil {
		t.Fatalf("Set replace returned error: %v", err)
	}
	if got, _ := s.Get("views/snapshot"); got != "replaced" {
		t.Fatalf("got %q after replace, want %q", got, "replaced")
	}

	if err := s.Delete("views/snapshot"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, ok := s.Get("views/snapshot"); ok {
		t.Fatalf("expected deleted key to be absent")
	}
	if err := s.Delete("views/snapshot"); err != nil {
		t.Fatalf("deleting absent key should be a no-op, got %v", err)
	}
}

func TestListScopedByPrefix(t *testing.T) {
	s := openTestStore(t)

	entries := map[string]string{
		"overrides/status/lead_1": "urgent",
		"overrides/status/lead_2": "cold",
		"overrides/tags/lead_1":   `["tag-a"]`,
	}
	for k, v := range entries {
		if err := s.Set(k, v); err != nil {
			t.Fatalf("Set %s: %v", k, err)
		}
	}

	got, err := s.List("overrides/status/")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 status overrides, got %d: %v", len(got), got)
	}
	if got["overrides/status/lead_1"] != "urgent" {
		t.Fatalf("unexpected value: %v", got)
	}

	// Underscores in uids must match literally, not as LIKE wildcards.
	got, err = s.List("overrides/status/lead_1")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected exact uid prefix to match once, got %v", got)
	}
}

func TestJSONRoundTripAndCorruptTolerance(t *testing.T) {
	s := openTestStore(t)

	type pref struct {
		ShowBadges bool `json:"showBadges"`
	}

	if err := s.SetJSON("tags/display", pref{ShowBadges: true}); err != nil {
		t.Fatalf("SetJSON returned error: %v", err)
	}

	var got pref
	if !s.GetJSON("tags/display", &got) {
		t.Fatalf("expected stored JSON to decode")
	}
	if !got.ShowBadges {
		t.Fatalf("got %+v, want ShowBadges true", got)
	}

	if err := s.Set("tags/display", "{corrupt"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	var after pref
	if s.GetJSON("tags/display", &after) {
		t.Fatalf("expected corrupt entry to report false")
	}
}

func TestOpenPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if err := s.Set("k", "v"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	defer reopened.Close()

	if got, ok := reopened.Get("k"); !ok || got != "v" {
		t.Fatalf("Get after reopen = %q, %v; want v, true", got, ok)
	}

	nested, err := Open(filepath.Join(dir, "nested"))
	if err != nil {
		t.Fatalf("Open should create nested data dirs, got %v", err)
	}
	nested.Close()
}
