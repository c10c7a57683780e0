package cmd

import (
	"fmt"
	"os"

	"github.com/intakehq/intake/internal/state"
	"github.com/intakehq/intake/pkg/cmd/root"
)

// Execute builds the application state and runs the root command. Services
// log through a discard handler here; the serve command installs its own
// stderr logger because it is the only surface where slog output belongs.
func Execute() {
	s, err := state.NewState(nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	rootCmd, err := root.NewCmdRoot(s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build commands: %v\n", err)
		os.Exit(1)
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
