// Package relevance integrates the external ranking collaborator. The
// collaborator receives lead uids plus the active filter context and returns
// per-uid scores that supersede the default sort order. Absence of scores,
// a disabled ranker or any transport error all leave default ranking intact;
// the engine never depends on this service being up.
package relevance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Score is one entry of the rank override map.
type Score struct {
	Rank       int     `json:"rank"`
	Score      float64 `json:"score"`
	Rationale  string  `json:"rationale,omitempty"`
	NextAction string  `json:"nextAction,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Context summarizes the filter state the scores should account for.
type Context struct {
	FilterSummary string `json:"filterSummary,omitempty"`
	SortKey       string `json:"sortKey,omitempty"`
}

// Ranker supplies rank override scores for a set of lead uids.
type Ranker interface {
	Rank(ctx context.Context, uids []string, rc Context) (map[string]Score, error)
}

// Disabled is a Ranker that never supplies scores. Using it keeps call sites
// free of nil checks when relevance ranking is turned off.
type Disabled struct{}

func (Disabled) Rank(context.Context, []string, Context) (map[string]Score, error) {
	return nil, nil
}

const (
	defaultBatchSize   = 256
	defaultConcurrency = 4
)

// HTTPRanker requests scores from the relevance service in bounded
// concurrent batches.
type HTTPRanker struct {
	baseURL   string
	token     string
	client    *http.Client
	batchSize int
}

// NewHTTPRanker builds a ranker against the service base URL. The token may
// be empty when the service is unauthenticated.
func NewHTTPRanker(baseURL, token string) *HTTPRanker {
	return &HTTPRanker{
		baseURL:   baseURL,
		token:     token,
		client:    &http.Client{Timeout: 15 * time.Second},
		batchSize: defaultBatchSize,
	}
}

type rankRequest struct {
	UIDs    []string `json:"uids"`
	Context Context  `json:"context"`
}

type rankResponse struct {
	Scores map[string]Score `json:"scores"`
}

// Rank fetches scores for every uid. Batches run concurrently; the first
// failing batch cancels the rest and the caller falls back to default
// ordering.
func (r *HTTPRanker) Rank(ctx context.Context, uids []string, rc Context) (map[string]Score, error) {
	if len(uids) == 0 {
		return nil, nil
	}

	size := r.batchSize
	if size <= 0 {
		size = defaultBatchSize
	}

	var batches [][]string
	for start := 0; start < len(uids); start += size {
		end := start + size
		if end > len(uids) {
			end = len(uids)
		}
		batches = append(batches, uids[start:end])
	}

	merged := make(map[string]Score, len(uids))
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(defaultConcurrency)
	for _, batch := range batches {
		batch := batch
		g.Go(func() error {
			scores, err := r.rankBatch(gCtx, batch, rc)
			if err != nil {
				return err
			}
			mu.Lock()
			for uid, s := range scores {
				merged[uid] = s
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return merged, nil
}

func (r *HTTPRanker) rankBatch(ctx context.Context, uids []string, rc Context) (map[string]Score, error) {
	payload, err := json.Marshal(rankRequest{UIDs: uids, Context: rc})
	if err != nil {
		return nil, fmt.Errorf("encode rank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v1/rank", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build rank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rank request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("rank request failed with status %d: %s", resp.StatusCode, body)
	}

	var decoded rankResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode rank response: %w", err)
	}
	return decoded.Scores, nil
}
