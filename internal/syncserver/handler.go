package syncserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/intakehq/intake/internal/viewstore"
)

const maxRequestBodySize = 1 << 20

type Deps struct {
	Store  *Store
	Token  string
	Logger *slog.Logger
}

// NewHandler builds the /v1 API plus an unauthenticated /health probe.
func NewHandler(deps Deps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))

		r.Get("/folders", handleListFolders(deps))
		r.Post("/folders", handleCreateFolder(deps))
		r.Patch("/folders/{id}", handleRenameFolder(deps))
		r.Delete("/folders/{id}", handleDeleteFolder(deps))
		r.Post("/views", handleCreateView(deps))
		r.Patch("/views/{id}", handleUpdateView(deps))
		r.Delete("/views/{id}", handleDeleteView(deps))
		r.Post("/views/{id}/duplicate", handleDuplicateView(deps))
	})

	return r
}

func handleListFolders(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		folders, err := deps.Store.Folders()
		if err != nil {
			deps.Logger.Error("listing folders failed", "error", err)
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list folders: %v", err)
			return
		}
		if folders == nil {
			folders = []viewstore.Folder{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"folders": folders})
	}
}

func handleCreateFolder(deps Deps) http.HandlerFunc {
	type request struct {
		Name string `json:"name"`
		Kind string `json:"kind"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeBody(w, r, &req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Name == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "name is required")
			return
		}

		folder, err := deps.Store.CreateFolder(req.Name, viewstore.ParseFolderKind(req.Kind))
		if err != nil {
			deps.Logger.Error("creating folder failed", "name", req.Name, "error", err)
			httpError(w, http.StatusInternalServerError, "api_error", "failed to create folder: %v", err)
			return
		}

		deps.Logger.Info("folder created", "id", folder.ID, "name", folder.Name, "kind", folder.Kind)
		writeJSON(w, http.StatusCreated, folder)
	}
}

func handleRenameFolder(deps Deps) http.HandlerFunc {
	type request struct {
		Name string `json:"name"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req request
		if err := decodeBody(w, r, &req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Name == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "name is required")
			return
		}

		switch err := deps.Store.RenameFolder(id, req.Name); {
		case errors.Is(err, ErrNotFound):
			httpError(w, http.StatusNotFound, "not_found", "folder not found")
		case err != nil:
			deps.Logger.Error("renaming folder failed", "id", id, "error", err)
			httpError(w, http.StatusInternalServerError, "api_error", "failed to rename folder: %v", err)
		default:
			deps.Logger.Info("folder renamed", "id", id, "name", req.Name)
			writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
		}
	}
}

func handleDeleteFolder(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		switch err := deps.Store.DeleteFolder(id); {
		case errors.Is(err, ErrNotFound):
			httpError(w, http.StatusNotFound, "not_found", "folder not found")
		case err != nil:
			deps.Logger.Error("deleting folder failed", "id", id, "error", err)
			httpError(w, http.StatusInternalServerError, "api_error", "failed to delete folder: %v", err)
		default:
			deps.Logger.Info("folder deleted", "id", id)
			writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
		}
	}
}

func handleCreateView(deps Deps) http.HandlerFunc {
	type request struct {
		FolderID string         `json:"folderId"`
		View     viewstore.View `json:"view"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeBody(w, r, &req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.FolderID == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "folderId is required")
			return
		}
		if req.View.Name == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "view name is required")
			return
		}

		created, err := deps.Store.CreateView(req.FolderID, req.View)
		switch {
		case errors.Is(err, ErrNotFound):
			httpError(w, http.StatusNotFound, "not_found", "folder not found")
		case err != nil:
			deps.Logger.Error("creating view failed", "folder", req.FolderID, "error", err)
			httpError(w, http.StatusInternalServerError, "api_error", "failed to create view: %v", err)
		default:
			deps.Logger.Info("view created", "id", created.ID, "folder", req.FolderID, "name", created.Name)
			writeJSON(w, http.StatusCreated, created)
		}
	}
}

func handleUpdateView(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var v viewstore.View
		if err := decodeBody(w, r, &v); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		// The URL names the row; a mismatched body id is ignored.
		v.ID = id

		switch err := deps.Store.UpdateView(v); {
		case errors.Is(err, ErrNotFound):
			httpError(w, http.StatusNotFound, "not_found", "view not found")
		case err != nil:
			deps.Logger.Error("updating view failed", "id", id, "error", err)
			httpError(w, http.StatusInternalServerError, "api_error", "failed to update view: %v", err)
		default:
			deps.Logger.Info("view updated", "id", id, "name", v.Name)
			writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
		}
	}
}

func handleDeleteView(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		switch err := deps.Store.DeleteView(id); {
		case errors.Is(err, ErrNotFound):
			httpError(w, http.StatusNotFound, "not_found", "view not found")
		case err != nil:
			deps.Logger.Error("deleting view failed", "id", id, "error", err)
			httpError(w, http.StatusInternalServerError, "api_error", "failed to delete view: %v", err)
		default:
			deps.Logger.Info("view deleted", "id", id)
			writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
		}
	}
}

func handleDuplicateView(deps Deps) http.HandlerFunc {
	type request struct {
		Name string `json:"name"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req request
		if err := decodeBody(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		copied, err := deps.Store.DuplicateView(id, req.Name)
		switch {
		case errors.Is(err, ErrNotFound):
			httpError(w, http.StatusNotFound, "not_found", "view not found")
		case err != nil:
			deps.Logger.Error("duplicating view failed", "id", id, "error", err)
			httpError(w, http.StatusInternalServerError, "api_error", "failed to duplicate view: %v", err)
		default:
			deps.Logger.Info("view duplicated", "source", id, "copy", copied.ID)
			writeJSON(w, http.StatusCreated, copied)
		}
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
