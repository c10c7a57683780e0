package serve

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/intakehq/intake/internal/config"
	"github.com/intakehq/intake/internal/state"
)

func TestServeCommandRequiresToken(t *testing.T) {
	st := &state.State{Config: &config.Config{DataDir: t.TempDir()}}

	cmd := NewCmdServe(st)
	cmd.SetArgs([]string{})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	err := cmd.Execute()
	if err == nil {
		t.Fatalf("expected missing token error")
	}
	if !strings.Contains(err.Error(), "bearer token is required") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestServeCommandShutsDownOnContextCancel(t *testing.T) {
	st := &state.State{Config: &config.Config{
		DataDir: t.TempDir(),
		Sync:    config.SyncConfig{Token: "secret"},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := NewCmdServe(st)
	cmd.SetArgs([]string{"--addr", "127.0.0.1:0"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	if err := cmd.ExecuteContext(ctx); err != nil {
		t.Fatalf("serve should exit cleanly once the context is done: %v", err)
	}
}
