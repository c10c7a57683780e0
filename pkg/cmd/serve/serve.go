package serve

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/intakehq/intake/internal/state"
	"github.com/intakehq/intake/internal/syncserver"
)

const shutdownTimeout = 5 * time.Second

func NewCmdServe(s *state.State) *cobra.Command {
	var (
		addr    string
		dataDir string
		token   string
		debug   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the view sync server",
		Long: heredoc.Doc(`
			Host the shared folder and view store over HTTP so that multiple
			intake clients can stay in sync. Clients authenticate with the
			bearer token configured under sync.token.

			The server persists to a SQLite database under the data
			directory and seeds the default folders on first start.
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dataDir == "" {
				dataDir = s.Config.DataDir
			}
			if token == "" {
				token = s.Config.Sync.Token
			}
			if token == "" {
				return fmt.Errorf("a bearer token is required; pass --token or set sync.token in the config")
			}

			logLevel := slog.LevelInfo
			if debug {
				logLevel = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

			store, err := syncserver.OpenStore(dataDir)
			if err != nil {
				return fmt.Errorf("opening view store: %w", err)
			}
			defer func() {
				if err := store.Close(); err != nil {
					logger.Warn("closing view store", "error", err)
				}
			}()

			if err := store.SeedDefaults(); err != nil {
				return fmt.Errorf("seeding default folders: %w", err)
			}

			srv := &http.Server{
				Addr: addr,
				Handler: syncserver.NewHandler(syncserver.Deps{
					Store:  store,
					Token:  token,
					Logger: logger,
				}),
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("sync server listening", "addr", addr)
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case <-ctx.Done():
				logger.Info("shutting down")
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("server error: %w", err)
				}
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8787", "Address to listen on")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Directory for the view database (defaults to the config data dir)")
	cmd.Flags().StringVar(&token, "token", "", "Bearer token clients must present (defaults to sync.token)")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")

	return cmd
}
