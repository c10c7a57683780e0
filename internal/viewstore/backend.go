package viewstore

import "context"

// Backend is the remote persistence surface the manager drives. Remote and
// test implementations are swappable; the manager owns fallback behavior, so
// backends just report errors.
type Backend interface {
	LoadFolders(ctx context.Context) ([]Folder, error)
	CreateFolder(ctx context.Context, name string, kind FolderKind) (Folder, error)
	RenameFolder(ctx context.Context, id, name string) error
	DeleteFolder(ctx context.Context, id string) error
	CreateView(ctx context.Context, folderID string, v View) (View, error)
	UpdateView(ctx context.Context, v View) error
	DeleteView(ctx context.Context, id string) error
	DuplicateView(ctx context.Context, id, name string) (View, error)
}
