package viewstore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/intakehq/intake/internal/filter"
	"github.com/intakehq/intake/internal/localstore"
	"github.com/intakehq/intake/internal/ranking"
)

type fakeBackend struct {
	folders []Folder

	loadErr  error
	writeErr error

	loadCalls  int
	writeCalls int
	nextID     int
}

func (f *fakeBackend) nextServerID(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeBackend) LoadFolders(context.Context) ([]Folder, error) {
	f.loadCalls++
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return cloneFolders(f.folders), nil
}

func (f *fakeBackend) CreateFolder(_ context.Context, name string, kind FolderKind) (Folder, error) {
	f.writeCalls++
	if f.writeErr != nil {
		return Folder{}, f.writeErr
	}
	return Folder{ID: f.nextServerID("srv-folder"), Name: name, Kind: kind}, nil
}

func (f *fakeBackend) RenameFolder(context.Context, string, string) error {
	f.writeCalls++
	return f.writeErr
}

func (f *fakeBackend) DeleteFolder(context.Context, string) error {
	f.writeCalls++
	return f.writeErr
}

func (f *fakeBackend) CreateView(_ context.Context, _ string, v View) (View, error) {
	f.writeCalls++
	if f.writeErr != nil {
		return View{}, f.writeErr
	}
	v.ID = f.nextServerID("srv-view")
	return v, nil
}

func (f *fakeBackend) UpdateView(context.Context, View) error {
	f.writeCalls++
	return f.writeErr
}

func (f *fakeBackend) DeleteView(context.Context, string) error {
	f.writeCalls++
	return f.writeErr
}

func (f *fakeBackend) DuplicateView(_ context.Context, _ string, name string) (View, error) {
	f.writeCalls++
	if f.writeErr != nil {
		return View{}, f.writeErr
	}
	return View{ID: f.nextServerID("srv-view"), Name: name}, nil
}

func testCache(t *testing.T) *localstore.Store {
	t.Helper()
	s, err := localstore.Open(":memory:")
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func remoteFolders() []Folder {
	return []Folder{
		{ID: "f1", Name: "Personal", Kind: FolderPersonal, Views: []View{
			{ID: "v1", Name: "Hot STEM", Sort: ranking.Spec{Key: "score", Direction: ranking.Descending}},
		}},
		{ID: "f2", Name: "Team", Kind: FolderTeam},
	}
}

func TestInitializeRemoteSuccessWritesSnapshot(t *testing.T) {
	cache := testCache(t)
	backend := &fakeBackend{folders: remoteFolders()}
	m := NewManager(backend, cache, nil)

	if mode := m.Initialize(context.Background()); mode != ModeRemote {
		t.Fatalf("mode = %s, want remote", mode)
	}

	var snap snapshot
	if !cache.GetJSON(snapshotKey, &snap) {
		t.Fatalf("expected snapshot in local cache")
	}
	if len(snap.Folders) != 2 || snap.Folders[0].Views[0].ID != "v1" {
		t.Fatalf("snapshot mismatch: %+v", snap.Folders)
	}
}

func TestInitializeRemoteFailureSeedsDefaults(t *testing.T) {
	cache := testCache(t)
	backend := &fakeBackend{loadErr: errors.New("connection refused")}
	m := NewManager(backend, cache, nil)

	var downgrades int
	m.SetOnDowngrade(func(error) { downgrades++ })

	if mode := m.Initialize(context.Background()); mode != ModeLocalFallback {
		t.Fatalf("mode = %s, want local-fallback", mode)
	}

	folders := m.Folders()
	if len(folders) != 3 {
		t.Fatalf("got %d folders, want default 3", len(folders))
	}
	kinds := map[FolderKind]bool{}
	for _, f := range folders {
		kinds[f.Kind] = true
		if len(f.Views) != 0 {
			t.Fatalf("default folder %s should have zero views", f.Name)
		}
	}
	for _, k := range []FolderKind{FolderPersonal, FolderTeam, FolderArchived} {
		if !kinds[k] {
			t.Fatalf("missing default folder kind %s", k)
		}
	}
	if downgrades != 1 {
		t.Fatalf("downgrade callback ran %d times, want 1", downgrades)
	}
}

func TestInitializeRemoteFailureSeedsFromSnapshot(t *testing.T) {
	cache := testCache(t)

	seeded := NewManager(&fakeBackend{folders: remoteFolders()}, cache, nil)
	seeded.Initialize(context.Background())

	m := NewManager(&fakeBackend{loadErr: errors.New("boom")}, cache, nil)
	if mode := m.Initialize(context.Background()); mode != ModeLocalFallback {
		t.Fatalf("mode = %s, want local-fallback", mode)
	}
	if _, ok := m.FindView("v1"); !ok {
		t.Fatalf("expected model seeded from cached snapshot")
	}
}

func TestInitializeCorruptSnapshotFallsBackToDefaults(t *testing.T) {
	cache := testCache(t)
	if err := cache.Set(snapshotKey, "{corrupt"); err != nil {
		t.Fatalf("seed corrupt snapshot: %v", err)
	}

	m := NewManager(nil, cache, nil)
	m.Initialize(context.Background())

	if got := len(m.Folders()); got != 3 {
		t.Fatalf("got %d folders, want default 3", got)
	}
}

func TestSaveViewRemoteUsesServerIdentity(t *testing.T) {
	cache := testCache(t)
	backend := &fakeBackend{folders: remoteFolders()}
	m := NewManager(backend, cache, nil)
	m.Initialize(context.Background())

	v, err := m.SaveView(context.Background(), "f1", View{Name: "New inquiries"})
	if err != nil {
		t.Fatalf("SaveView returned error: %v", err)
	}
	if v.ID != "srv-view-1" {
		t.Fatalf("view ID = %s, want server-assigned srv-view-1", v.ID)
	}
	if m.Mode() != ModeRemote {
		t.Fatalf("mode should remain remote after successful write")
	}
}

func TestSaveViewRemoteFailureDowngradesPermanently(t *testing.T) {
	cache := testCache(t)
	backend := &fakeBackend{folders: remoteFolders()}
	m := NewManager(backend, cache, nil)
	m.Initialize(context.Background())

	backend.writeErr = errors.New("gateway timeout")
	v, err := m.SaveView(context.Background(), "f1", View{Name: "Follow-ups"})
	if err != nil {
		t.Fatalf("SaveView should succeed locally, got %v", err)
	}
	if v.ID == "" {
		t.Fatalf("expected locally assigned view ID")
	}
	if m.Mode() != ModeLocalFallback {
		t.Fatalf("mode = %s, want local-fallback after write failure", m.Mode())
	}

	// The view landed in the in-memory model and the write-through cache.
	if _, ok := m.FindView(v.ID); !ok {
		t.Fatalf("view missing from in-memory model")
	}
	var snap snapshot
	if !cache.GetJSON(snapshotKey, &snap) {
		t.Fatalf("expected snapshot in cache")
	}
	found := false
	for _, f := range snap.Folders {
		for _, sv := range f.Views {
			if sv.ID == v.ID {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("view missing from cached snapshot")
	}

	// Downgrade is permanent: later writes stop calling the backend.
	callsBefore := backend.writeCalls
	if _, err := m.SaveView(context.Background(), "f1", View{Name: "Another"}); err != nil {
		t.Fatalf("SaveView in fallback returned error: %v", err)
	}
	if backend.writeCalls != callsBefore {
		t.Fatalf("backend called again after downgrade")
	}
}

func TestDeleteFolderCascadesToViews(t *testing.T) {
	m := NewManager(nil, testCache(t), nil)
	m.Initialize(context.Background())

	folder, err := m.CreateFolder(context.Background(), "Regional", FolderTeam)
	if err != nil {
		t.Fatalf("CreateFolder returned error: %v", err)
	}
	v, err := m.SaveView(context.Background(), folder.ID, View{Name: "EMEA"})
	if err != nil {
		t.Fatalf("SaveView returned error: %v", err)
	}

	if err := m.DeleteFolder(context.Background(), folder.ID); err != nil {
		t.Fatalf("DeleteFolder returned error: %v", err)
	}
	if _, ok := m.FindView(v.ID); ok {
		t.Fatalf("expected cascade delete to remove contained view")
	}
}

func TestDuplicateViewCopiesStateWithFreshIdentity(t *testing.T) {
	m := NewManager(nil, testCache(t), nil)
	m.Initialize(context.Background())

	src := View{
		Name:            "Hot leads",
		Filter:          filter.Where("leadScore", filter.OpGreaterOrEqual, "80"),
		Sort:            ranking.Spec{Key: "score", Direction: ranking.Descending},
		TagIDs:          []string{"hot-lead"},
		PersonalDefault: true,
	}
	saved, err := m.SaveView(context.Background(), string(FolderPersonal), src)
	if err != nil {
		t.Fatalf("SaveView returned error: %v", err)
	}

	dup, err := m.DuplicateView(context.Background(), saved.ID, "")
	if err != nil {
		t.Fatalf("DuplicateView returned error: %v", err)
	}

	if dup.ID == saved.ID {
		t.Fatalf("duplicate should have a fresh ID")
	}
	if dup.Name != "Hot leads (copy)" {
		t.Fatalf("duplicate name = %q", dup.Name)
	}
	if dup.PersonalDefault {
		t.Fatalf("duplicate must not inherit default markers")
	}
	if len(dup.TagIDs) != 1 || dup.TagIDs[0] != "hot-lead" {
		t.Fatalf("duplicate tag state = %v", dup.TagIDs)
	}
	if dup.Sort != saved.Sort {
		t.Fatalf("duplicate sort = %+v, want %+v", dup.Sort, saved.Sort)
	}
}

func TestSelectBumpsLastUsedAt(t *testing.T) {
	m := NewManager(nil, testCache(t), nil)
	m.Initialize(context.Background())

	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	current := base
	m.now = func() time.Time { return current }

	saved, err := m.SaveView(context.Background(), string(FolderPersonal), View{Name: "Recent"})
	if err != nil {
		t.Fatalf("SaveView returned error: %v", err)
	}

	current = base.Add(2 * time.Hour)
	selected, err := m.Select(context.Background(), saved.ID)
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if !selected.LastUsedAt.Equal(current) {
		t.Fatalf("LastUsedAt = %v, want %v", selected.LastUsedAt, current)
	}

	stored, _ := m.FindView(saved.ID)
	if !stored.LastUsedAt.Equal(current) {
		t.Fatalf("stored LastUsedAt = %v, want %v", stored.LastUsedAt, current)
	}
}

func TestSelectUnknownViewFails(t *testing.T) {
	m := NewManager(nil, testCache(t), nil)
	m.Initialize(context.Background())

	if _, err := m.Select(context.Background(), "ghost"); err == nil {
		t.Fatalf("expected error for unknown view")
	}
}

func TestDefaultViewPrefersPersonal(t *testing.T) {
	m := NewManager(nil, testCache(t), nil)
	m.Initialize(context.Background())

	if _, ok := m.DefaultView(); ok {
		t.Fatalf("expected no default on empty model")
	}

	team, err := m.SaveView(context.Background(), string(FolderTeam), View{Name: "Team pick", TeamDefault: true})
	if err != nil {
		t.Fatalf("SaveView returned error: %v", err)
	}
	if v, ok := m.DefaultView(); !ok || v.ID != team.ID {
		t.Fatalf("expected team default, got %+v, %v", v, ok)
	}

	personal, err := m.SaveView(context.Background(), string(FolderPersonal), View{Name: "Mine", PersonalDefault: true})
	if err != nil {
		t.Fatalf("SaveView returned error: %v", err)
	}
	if v, ok := m.DefaultView(); !ok || v.ID != personal.ID {
		t.Fatalf("expected personal default to win, got %+v, %v", v, ok)
	}
}
