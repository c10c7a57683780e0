// Package state wires the engine together for the CLI and TUI: config,
// durable store, tagging engine, saved-view manager, lead source and the
// optional relevance ranker, with one Close tearing it all down.
package state

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/intakehq/intake/internal/config"
	"github.com/intakehq/intake/internal/filter"
	"github.com/intakehq/intake/internal/localstore"
	"github.com/intakehq/intake/internal/relevance"
	"github.com/intakehq/intake/internal/source"
	"github.com/intakehq/intake/internal/tagging"
	"github.com/intakehq/intake/internal/viewstore"
)

type State struct {
	Config     *config.Config
	Store      *localstore.Store
	Engine     *tagging.Engine
	Filters    *filter.Library
	Views      *viewstore.Manager
	Source     source.Source
	Watcher    *source.Watcher
	Ranker     relevance.Ranker
	Home       string
	RootStatus *RootStatus
}

// NewState builds the full application state. A nil logger discards service
// logs, which is what the TUI wants; the sync server passes a real one.
func NewState(logger *slog.Logger) (*State, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	home, err := GetHomeDir()
	if err != nil {
		return nil, err
	}

	cfg, err := LoadConfig(home)
	if err != nil {
		return nil, err
	}

	store, err := localstore.Open(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	var backend viewstore.Backend
	if cfg.Sync.Enabled && cfg.Sync.URL != "" {
		backend = viewstore.NewRemote(cfg.Sync.URL, cfg.Sync.Token)
	}

	s := &State{
		Config:     cfg,
		Store:      store,
		Engine:     tagging.NewEngine(store),
		Filters:    filter.NewLibrary(store),
		Views:      viewstore.NewManager(backend, store, logger),
		Home:       home,
		RootStatus: &RootStatus{},
	}

	switch cfg.Leads.Source {
	case config.SourceRemote:
		s.Source = source.NewRemote(cfg.Leads.URL, cfg.Leads.Token)
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.Leads.Path), 0o755); err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to prepare leads directory: %w", err)
		}
		s.Source = source.NewFile(cfg.Leads.Path, logger)

		watcher, err := source.NewWatcher(cfg.Leads.Path, logger)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to create leads watcher: %w", err)
		}
		s.Watcher = watcher
	}

	if cfg.Relevance.Enabled && cfg.Relevance.URL != "" {
		s.Ranker = relevance.NewHTTPRanker(cfg.Relevance.URL, cfg.Relevance.Token)
	} else {
		s.Ranker = relevance.Disabled{}
	}

	return s, nil
}

func GetHomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return home, nil
}

func LoadConfig(home string) (*config.Config, error) {
	if err := config.EnsureConfigExists(home); err != nil {
		return nil, err
	}

	return config.Load(home)
}

// Close releases resources associated with the state, including the leads
// watcher and the durable store.
func (s *State) Close() error {
	if s == nil {
		return nil
	}

	var errs []error
	if s.Watcher != nil {
		if err := s.Watcher.Close(); err != nil {
			errs = append(errs, err)
		}
		s.Watcher = nil
	}
	if s.Store != nil {
		if err := s.Store.Close(); err != nil {
			errs = append(errs, err)
		}
		s.Store = nil
	}

	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}
