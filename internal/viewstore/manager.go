package viewstore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Mode is the persistence state of the manager.
type Mode int

const (
	// ModeRemote writes through the remote backend first.
	ModeRemote Mode = iota
	// ModeLocalFallback applies writes to the in-memory model and local
	// cache only. Entered on the first remote failure and kept for the
	// rest of the session; a fresh Initialize is the only way back.
	ModeLocalFallback
)

func (m Mode) String() string {
	if m == ModeRemote {
		return "remote"
	}
	return "local-fallback"
}

// Cache is the slice of the durable local store the manager mirrors into.
type Cache interface {
	GetJSON(key string, v any) bool
	SetJSON(key string, v any) error
}

const snapshotKey = "views/snapshot"

type snapshot struct {
	Folders []Folder `json:"folders"`
}

// Manager owns the folder/view model and the remote-or-local write policy.
// All methods are safe for concurrent use; writes apply in call order.
type Manager struct {
	mu      sync.RWMutex
	backend Backend
	cache   Cache
	logger  *slog.Logger
	folders []Folder
	mode    Mode

	now         func() time.Time
	onDowngrade func(error)
}

// NewManager builds a manager over the given backend and cache. A nil
// backend starts straight in local fallback; a nil logger discards logs.
func NewManager(backend Backend, cache Cache, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Manager{
		backend: backend,
		cache:   cache,
		logger:  logger,
		mode:    ModeLocalFallback,
		now:     time.Now,
	}
}

// SetOnDowngrade registers a callback invoked once when the session
// downgrades to local fallback. The callback runs synchronously inside the
// failing operation and must not call back into the manager.
func (m *Manager) SetOnDowngrade(fn func(error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onDowngrade = fn
}

// Initialize loads the model: a full remote fetch when a backend is
// configured, else the cached snapshot, else the default empty folders.
// It returns the resulting mode.
func (m *Manager) Initialize(ctx context.Context) Mode {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backend == nil {
		m.mode = ModeLocalFallback
		m.seedLocalLocked()
		return m.mode
	}

	folders, err := m.backend.LoadFolders(ctx)
	if err != nil {
		m.mode = ModeRemote // so the downgrade below logs and notifies once
		m.downgradeLocked("load folders", err)
		m.seedLocalLocked()
		return m.mode
	}

	m.mode = ModeRemote
	m.folders = folders
	if m.folders == nil {
		m.folders = []Folder{}
	}
	m.writeSnapshotLocked()
	return m.mode
}

// Mode reports the current persistence mode.
func (m *Manager) Mode() Mode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mode
}

// Folders returns a copy of the full model.
func (m *Manager) Folders() []Folder {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneFolders(m.folders)
}

// FindView locates a view by ID across all folders.
func (m *Manager) FindView(id string) (View, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, _, _, ok := m.locateLocked(id)
	return v, ok
}

// DefaultView returns the personal default view when one is marked, else
// the team default.
func (m *Manager) DefaultView() (View, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var team View
	var haveTeam bool
	for _, f := range m.folders {
		for _, v := range f.Views {
			if v.PersonalDefault {
				return v, true
			}
			if v.TeamDefault && !haveTeam {
				team, haveTeam = v, true
			}
		}
	}
	return team, haveTeam
}

// CreateFolder adds a folder, remotely when possible.
func (m *Manager) CreateFolder(ctx context.Context, name string, kind FolderKind) (Folder, error) {
	if strings.TrimSpace(name) == "" {
		return Folder{}, fmt.Errorf("folder requires a name")
	}
	kind = ParseFolderKind(string(kind))

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.mode == ModeRemote {
		created, err := m.backend.CreateFolder(ctx, name, kind)
		if err == nil {
			m.folders = append(m.folders, created)
			m.writeSnapshotLocked()
			return created, nil
		}
		m.downgradeLocked("create folder", err)
	}

	created := Folder{ID: uuid.NewString(), Name: name, Kind: kind}
	m.folders = append(m.folders, created)
	m.writeSnapshotLocked()
	return created, nil
}

// RenameFolder renames a folder by ID.
func (m *Manager) RenameFolder(ctx context.Context, id, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("folder requires a name")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.folderIndexLocked(id)
	if idx < 0 {
		return fmt.Errorf("folder %q not found", id)
	}

	if m.mode == ModeRemote {
		if err := m.backend.RenameFolder(ctx, id, name); err != nil {
			m.downgradeLocked("rename folder", err)
		}
	}

	m.folders[idx].Name = name
	m.writeSnapshotLocked()
	return nil
}

// DeleteFolder removes a folder and, with it, every view it contains.
func (m *Manager) DeleteFolder(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.folderIndexLocked(id)
	if idx < 0 {
		return fmt.Errorf("folder %q not found", id)
	}

	if m.mode == ModeRemote {
		if err := m.backend.DeleteFolder(ctx, id); err != nil {
			m.downgradeLocked("delete folder", err)
		}
	}

	m.folders = append(m.folders[:idx], m.folders[idx+1:]...)
	m.writeSnapshotLocked()
	return nil
}

// SaveView creates a view inside a folder and returns it with identity and
// timestamps filled in.
func (m *Manager) SaveView(ctx context.Context, folderID string, v View) (View, error) {
	if strings.TrimSpace(v.Name) == "" {
		return View{}, fmt.Errorf("view requires a name")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.folderIndexLocked(folderID)
	if idx < 0 {
		return View{}, fmt.Errorf("folder %q not found", folderID)
	}

	now := m.now()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now
	}
	v.LastUsedAt = now

	if m.mode == ModeRemote {
		created, err := m.backend.CreateView(ctx, folderID, v)
		if err == nil {
			m.folders[idx].Views = append(m.folders[idx].Views, created)
			m.writeSnapshotLocked()
			return created, nil
		}
		m.downgradeLocked("save view", err)
	}

	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	m.folders[idx].Views = append(m.folders[idx].Views, v)
	m.writeSnapshotLocked()
	return v, nil
}

// UpdateView replaces a stored view with the same ID.
func (m *Manager) UpdateView(ctx context.Context, v View) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateViewLocked(ctx, v, "update view")
}

// DeleteView removes a view by ID.
func (m *Manager) DeleteView(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, fIdx, vIdx, ok := m.locateLocked(id)
	if !ok {
		return fmt.Errorf("view %q not found", id)
	}

	if m.mode == ModeRemote {
		if err := m.backend.DeleteView(ctx, id); err != nil {
			m.downgradeLocked("delete view", err)
		}
	}

	views := m.folders[fIdx].Views
	m.folders[fIdx].Views = append(views[:vIdx], views[vIdx+1:]...)
	m.writeSnapshotLocked()
	return nil
}

// DuplicateView copies a view within its folder. The copy never inherits
// default-view markers.
func (m *Manager) DuplicateView(ctx context.Context, id, name string) (View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	src, fIdx, _, ok := m.locateLocked(id)
	if !ok {
		return View{}, fmt.Errorf("view %q not found", id)
	}
	if strings.TrimSpace(name) == "" {
		name = src.Name + " (copy)"
	}

	if m.mode == ModeRemote {
		created, err := m.backend.DuplicateView(ctx, id, name)
		if err == nil {
			m.folders[fIdx].Views = append(m.folders[fIdx].Views, created)
			m.writeSnapshotLocked()
			return created, nil
		}
		m.downgradeLocked("duplicate view", err)
	}

	now := m.now()
	copied := src
	copied.ID = uuid.NewString()
	copied.Name = name
	copied.CreatedAt = now
	copied.LastUsedAt = now
	copied.PersonalDefault = false
	copied.TeamDefault = false
	copied.TagIDs = append([]string(nil), src.TagIDs...)

	m.folders[fIdx].Views = append(m.folders[fIdx].Views, copied)
	m.writeSnapshotLocked()
	return copied, nil
}

// Select returns the view and bumps its LastUsedAt through the regular
// write path; callers seed the pipeline from the returned state.
func (m *Manager) Select(ctx context.Context, id string) (View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, _, _, ok := m.locateLocked(id)
	if !ok {
		return View{}, fmt.Errorf("view %q not found", id)
	}

	v.LastUsedAt = m.now()
	if err := m.updateViewLocked(ctx, v, "select view"); err != nil {
		return View{}, err
	}
	return v, nil
}

func (m *Manager) updateViewLocked(ctx context.Context, v View, op string) error {
	_, fIdx, vIdx, ok := m.locateLocked(v.ID)
	if !ok {
		return fmt.Errorf("view %q not found", v.ID)
	}

	if m.mode == ModeRemote {
		if err := m.backend.UpdateView(ctx, v); err != nil {
			m.downgradeLocked(op, err)
		}
	}

	m.folders[fIdx].Views[vIdx] = v
	m.writeSnapshotLocked()
	return nil
}

func (m *Manager) folderIndexLocked(id string) int {
	for i, f := range m.folders {
		if f.ID == id {
			return i
		}
	}
	return -1
}

func (m *Manager) locateLocked(viewID string) (View, int, int, bool) {
	for fIdx, f := range m.folders {
		for vIdx, v := range f.Views {
			if v.ID == viewID {
				return v, fIdx, vIdx, true
			}
		}
	}
	return View{}, -1, -1, false
}

// downgradeLocked flips the session into local fallback. The flip is
// one-way: nothing short of a fresh Initialize re-enables remote writes.
func (m *Manager) downgradeLocked(op string, err error) {
	if m.mode == ModeLocalFallback {
		return
	}
	m.mode = ModeLocalFallback
	m.logger.Warn("view sync unavailable, continuing with local fallback",
		"op", op,
		"error", err,
	)
	if m.onDowngrade != nil {
		m.onDowngrade(err)
	}
}

func (m *Manager) seedLocalLocked() {
	var snap snapshot
	if m.cache != nil && m.cache.GetJSON(snapshotKey, &snap) && len(snap.Folders) > 0 {
		m.folders = snap.Folders
		return
	}
	m.folders = DefaultFolders()
}

func (m *Manager) writeSnapshotLocked() {
	if m.cache == nil {
		return
	}
	if err := m.cache.SetJSON(snapshotKey, snapshot{Folders: m.folders}); err != nil {
		m.logger.Warn("writing view snapshot failed", "error", err)
	}
}
