// Package syncserver is the reference view-sync service the remote backend
// talks to. It keeps folders and views in SQLite and serves them over a
// small authenticated JSON API.
package syncserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/intakehq/intake/internal/viewstore"
)

// ErrNotFound reports a folder or view id with no row behind it.
var ErrNotFound = errors.New("not found")

const storeFile = "sync.db"

// Store persists the folder/view model. Views are stored as their full JSON
// payload next to the columns the API needs for addressing, so the wire
// shape and the stored shape cannot drift apart.
type Store struct {
	db *sql.DB
}

// OpenStore opens (or creates) the sync database in dataDir. Pass ":memory:"
// for an in-memory database (used by tests).
func OpenStore(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, storeFile)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Single connection avoids "database is locked" under concurrent writes.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS folders (
			id       TEXT PRIMARY KEY,
			name     TEXT NOT NULL,
			kind     TEXT NOT NULL,
			position INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS views (
			id        TEXT PRIMARY KEY,
			folder_id TEXT NOT NULL,
			name      TEXT NOT NULL,
			payload   TEXT NOT NULL,
			position  INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS views_by_folder ON views(folder_id);
	`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SeedDefaults inserts the fixed personal/team/archived folders when the
// store is empty, so a fresh server presents the same buckets a fresh
// client would.
func (s *Store) SeedDefaults() error {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM folders").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for i, f := range viewstore.DefaultFolders() {
		if _, err := s.db.Exec(
			"INSERT INTO folders (id, name, kind, position) VALUES (?, ?, ?, ?)",
			f.ID, f.Name, string(f.Kind), i,
		); err != nil {
			return fmt.Errorf("seeding folder %s: %w", f.ID, err)
		}
	}
	return nil
}

// Folders returns the full model: folders in position order, each carrying
// its views in position order.
func (s *Store) Folders() ([]viewstore.Folder, error) {
	rows, err := s.db.Query("SELECT id, name, kind FROM folders ORDER BY position, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var folders []viewstore.Folder
	for rows.Next() {
		var f viewstore.Folder
		var kind string
		if err := rows.Scan(&f.ID, &f.Name, &kind); err != nil {
			return nil, err
		}
		f.Kind = viewstore.FolderKind(kind)
		f.Views = []viewstore.View{}
		folders = append(folders, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	viewRows, err := s.db.Query("SELECT folder_id, payload FROM views ORDER BY position, id")
	if err != nil {
		return nil, err
	}
	defer viewRows.Close()

	byFolder := make(map[string][]viewstore.View)
	for viewRows.Next() {
		var folderID, payload string
		if err := viewRows.Scan(&folderID, &payload); err != nil {
			return nil, err
		}
		var v viewstore.View
		if err := json.Unmarshal([]byte(payload), &v); err != nil {
			return nil, fmt.Errorf("decoding view in folder %s: %w", folderID, err)
		}
		byFolder[folderID] = append(byFolder[folderID], v)
	}
	if err := viewRows.Err(); err != nil {
		return nil, err
	}

	for i := range folders {
		if views, ok := byFolder[folders[i].ID]; ok {
			folders[i].Views = views
		}
	}
	return folders, nil
}

// CreateFolder appends a folder and returns it with its server identity.
func (s *Store) CreateFolder(name string, kind viewstore.FolderKind) (viewstore.Folder, error) {
	f := viewstore.Folder{
		ID:    uuid.New().String(),
		Name:  name,
		Kind:  kind,
		Views: []viewstore.View{},
	}
	var position int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM folders").Scan(&position); err != nil {
		return viewstore.Folder{}, err
	}
	if _, err := s.db.Exec(
		"INSERT INTO folders (id, name, kind, position) VALUES (?, ?, ?, ?)",
		f.ID, f.Name, string(f.Kind), position,
	); err != nil {
		return viewstore.Folder{}, err
	}
	return f, nil
}

func (s *Store) RenameFolder(id, name string) error {
	res, err := s.db.Exec("UPDATE folders SET name = ? WHERE id = ?", name, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// DeleteFolder removes a folder and every view inside it.
func (s *Store) DeleteFolder(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM views WHERE folder_id = ?", id); err != nil {
		tx.Rollback()
		return err
	}
	res, err := tx.Exec("DELETE FROM folders WHERE id = ?", id)
	if err != nil {
		tx.Rollback()
		return err
	}
	if err := requireRow(res); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// CreateView stores a view in folderID under a fresh server-assigned id.
func (s *Store) CreateView(folderID string, v viewstore.View) (viewstore.View, error) {
	var exists int
	err := s.db.QueryRow("SELECT COUNT(*) FROM folders WHERE id = ?", folderID).Scan(&exists)
	if err != nil {
		return viewstore.View{}, err
	}
	if exists == 0 {
		return viewstore.View{}, ErrNotFound
	}

	v.ID = uuid.New().String()
	now := time.Now().UTC()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now
	}
	if v.LastUsedAt.IsZero() {
		v.LastUsedAt = now
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return viewstore.View{}, fmt.Errorf("encoding view: %w", err)
	}

	var position int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM views WHERE folder_id = ?", folderID).Scan(&position); err != nil {
		return viewstore.View{}, err
	}
	if _, err := s.db.Exec(
		"INSERT INTO views (id, folder_id, name, payload, position) VALUES (?, ?, ?, ?, ?)",
		v.ID, folderID, v.Name, string(payload), position,
	); err != nil {
		return viewstore.View{}, err
	}
	return v, nil
}

func (s *Store) UpdateView(v viewstore.View) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding view: %w", err)
	}
	res, err := s.db.Exec(
		"UPDATE views SET name = ?, payload = ? WHERE id = ?",
		v.Name, string(payload), v.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Store) DeleteView(id string) error {
	res, err := s.db.Exec("DELETE FROM views WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// DuplicateView copies a view into its own folder under a fresh identity.
// The copy never inherits default-view markers.
func (s *Store) DuplicateView(id, name string) (viewstore.View, error) {
	var folderID, payload string
	err := s.db.QueryRow("SELECT folder_id, payload FROM views WHERE id = ?", id).
		Scan(&folderID, &payload)
	if err == sql.ErrNoRows {
		return viewstore.View{}, ErrNotFound
	}
	if err != nil {
		return viewstore.View{}, err
	}

	var v viewstore.View
	if err := json.Unmarshal([]byte(payload), &v); err != nil {
		return viewstore.View{}, fmt.Errorf("decoding view %s: %w", id, err)
	}

	copied := v
	copied.ID = uuid.New().String()
	if name != "" {
		copied.Name = name
	} else {
		copied.Name = v.Name + " (copy)"
	}
	now := time.Now().UTC()
	copied.CreatedAt = now
	copied.LastUsedAt = now
	copied.PersonalDefault = false
	copied.TeamDefault = false
	copied.TagIDs = append([]string(nil), v.TagIDs...)

	encoded, err := json.Marshal(copied)
	if err != nil {
		return viewstore.View{}, fmt.Errorf("encoding view copy: %w", err)
	}

	var position int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM views WHERE folder_id = ?", folderID).Scan(&position); err != nil {
		return viewstore.View{}, err
	}
	if _, err := s.db.Exec(
		"INSERT INTO views (id, folder_id, name, payload, position) VALUES (?, ?, ?, ?, ?)",
		copied.ID, folderID, copied.Name, string(encoded), position,
	); err != nil {
		return viewstore.View{}, err
	}
	return copied, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
