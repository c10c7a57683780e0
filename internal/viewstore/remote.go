package viewstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Remote implements Backend over the view-sync HTTP service.
type Remote struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewRemote builds a remote backend. The token is sent as a bearer
// credential on every request.
func NewRemote(baseURL, token string) *Remote {
	return &Remote{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type foldersPayload struct {
	Folders []Folder `json:"folders"`
}

type createFolderPayload struct {
	Name string     `json:"name"`
	Kind FolderKind `json:"kind"`
}

type renamePayload struct {
	Name string `json:"name"`
}

type createViewPayload struct {
	FolderID string `json:"folderId"`
	View     View   `json:"view"`
}

type duplicatePayload struct {
	Name string `json:"name,omitempty"`
}

func (r *Remote) LoadFolders(ctx context.Context) ([]Folder, error) {
	var payload foldersPayload
	if err := r.do(ctx, http.MethodGet, "/v1/folders", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Folders, nil
}

func (r *Remote) CreateFolder(ctx context.Context, name string, kind FolderKind) (Folder, error) {
	var created Folder
	err := r.do(ctx, http.MethodPost, "/v1/folders", createFolderPayload{Name: name, Kind: kind}, &created)
	return created, err
}

func (r *Remote) RenameFolder(ctx context.Context, id, name string) error {
	return r.do(ctx, http.MethodPatch, "/v1/folders/"+url.PathEscape(id), renamePayload{Name: name}, nil)
}

func (r *Remote) DeleteFolder(ctx context.Context, id string) error {
	return r.do(ctx, http.MethodDelete, "/v1/folders/"+url.PathEscape(id), nil, nil)
}

func (r *Remote) CreateView(ctx context.Context, folderID string, v View) (View, error) {
	var created View
	err := r.do(ctx, http.MethodPost, "/v1/views", createViewPayload{FolderID: folderID, View: v}, &created)
	return created, err
}

func (r *Remote) UpdateView(ctx context.Context, v View) error {
	return r.do(ctx, http.MethodPatch, "/v1/views/"+url.PathEscape(v.ID), v, nil)
}

func (r *Remote) DeleteView(ctx context.Context, id string) error {
	return r.do(ctx, http.MethodDelete, "/v1/views/"+url.PathEscape(id), nil, nil)
}

func (r *Remote) DuplicateView(ctx context.Context, id, name string) (View, error) {
	var created View
	err := r.do(ctx, http.MethodPost, "/v1/views/"+url.PathEscape(id)+"/duplicate", duplicatePayload{Name: name}, &created)
	return created, err
}

// do runs one JSON request. Any transport error, non-2xx status or malformed
// response body surfaces as an error; the manager treats them all the same.
func (r *Remote) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: unexpected status %d: %s", method, path, resp.StatusCode, snippet)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s %s response: %w", method, path, err)
		}
	}
	return nil
}
