// Package source loads lead snapshots for the pipeline. Every fetch returns
// the full current set; the engine never diffs, it rebuilds from whatever the
// source hands back.
package source

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/intakehq/intake/internal/lead"
)

// Source produces the current lead snapshot.
type Source interface {
	Fetch(ctx context.Context) ([]lead.Lead, error)
}

// maxLineBytes bounds a single JSONL record; lines beyond it fail the scan.
const maxLineBytes = 1 << 20

// File reads leads from a JSONL file, one JSON object per line. Malformed
// lines and records without a uid are skipped with a warning so one bad
// export row cannot take down the whole refresh.
type File struct {
	path   string
	logger *slog.Logger
}

func NewFile(path string, logger *slog.Logger) *File {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &File{path: path, logger: logger}
}

func (f *File) Fetch(ctx context.Context) ([]lead.Lead, error) {
	fh, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("open leads file: %w", err)
	}
	defer fh.Close()

	scanner := bufio.NewScanner(fh)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	var leads []lead.Lead
	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		var l lead.Lead
		if err := json.Unmarshal([]byte(raw), &l); err != nil {
			f.logger.Warn("skipping malformed lead line", "file", f.path, "line", line, "error", err)
			continue
		}
		if l.UID == "" {
			f.logger.Warn("skipping lead without uid", "file", f.path, "line", line)
			continue
		}

		l.Seq = len(leads)
		leads = append(leads, l)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read leads file: %w", err)
	}

	return leads, nil
}

// Remote fetches leads from an HTTP endpoint serving the full snapshot as
// {"leads": [...]}.
type Remote struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewRemote(baseURL, token string) *Remote {
	return &Remote{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (r *Remote) Fetch(ctx context.Context) ([]lead.Lead, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/v1/leads", nil)
	if err != nil {
		return nil, fmt.Errorf("build leads request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch leads: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch leads: unexpected status %d: %s", resp.StatusCode, snippet)
	}

	var payload struct {
		Leads []lead.Lead `json:"leads"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode leads response: %w", err)
	}

	for i := range payload.Leads {
		payload.Leads[i].Seq = i
	}
	return payload.Leads, nil
}
