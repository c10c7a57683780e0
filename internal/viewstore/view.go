// Package viewstore manages named saved views organized into folders. Views
// persist primarily through a remote sync service; any remote failure
// permanently downgrades the session to a local fallback backed by the
// durable store, and every successful write re-serializes the whole model to
// that store so the local cache is a consistent mirror in either mode.
package viewstore

import (
	"strings"
	"time"

	"github.com/intakehq/intake/internal/filter"
	"github.com/intakehq/intake/internal/ranking"
)

// FolderKind partitions folders into the fixed buckets the UI shows.
type FolderKind string

const (
	FolderPersonal FolderKind = "personal"
	FolderTeam     FolderKind = "team"
	FolderArchived FolderKind = "archived"
)

// ParseFolderKind normalizes a kind string, defaulting to personal.
func ParseFolderKind(s string) FolderKind {
	switch FolderKind(strings.ToLower(strings.TrimSpace(s))) {
	case FolderTeam:
		return FolderTeam
	case FolderArchived:
		return FolderArchived
	default:
		return FolderPersonal
	}
}

// View is a named, serialized filter/sort/tag state. Selecting one seeds the
// live pipeline with its state.
type View struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Description     string       `json:"description,omitempty"`
	Filter          filter.Node  `json:"filter"`
	Sort            ranking.Spec `json:"sort"`
	TagIDs          []string     `json:"tagIds,omitempty"`
	CustomFilterID  string       `json:"customFilterId,omitempty"`
	CreatedAt       time.Time    `json:"createdAt"`
	LastUsedAt      time.Time    `json:"lastUsedAt"`
	PersonalDefault bool         `json:"personalDefault,omitempty"`
	TeamDefault     bool         `json:"teamDefault,omitempty"`
}

// Folder owns views. Deleting a folder deletes its views with it.
type Folder struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Kind  FolderKind `json:"kind"`
	Views []View     `json:"views"`
}

// DefaultFolders is the fixed empty folder set used when neither the remote
// service nor a cached snapshot is available.
func DefaultFolders() []Folder {
	return []Folder{
		{ID: string(FolderPersonal), Name: "Personal", Kind: FolderPersonal},
		{ID: string(FolderTeam), Name: "Team", Kind: FolderTeam},
		{ID: string(FolderArchived), Name: "Archived", Kind: FolderArchived},
	}
}

func cloneFolders(folders []Folder) []Folder {
	out := make([]Folder, len(folders))
	for i, f := range folders {
		views := make([]View, len(f.Views))
		copy(views, f.Views)
		f.Views = views
		out[i] = f
	}
	return out
}
