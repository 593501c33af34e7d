package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/existflow/todoserver/internal/auth"
	"github.com/existflow/todoserver/internal/logger"
	"github.com/existflow/todoserver/internal/retention"
	"github.com/existflow/todoserver/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	database, err := openStore()
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Warn("Error closing database", logger.F("error", err))
		}
	}()

	policy := retention.Policy{TTL: cfg.Retention.AnonymousTTL}
	srv := server.New(server.Options{
		Store:        database,
		Tokens:       auth.NewSigner(cfg.Auth.JWTSecret),
		ExpireAt:     policy.ExpireAt,
		DetachOnMove: cfg.Todos.DetachOnMove,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go retention.NewSweeper(database, cfg.Retention.SweepInterval).Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Todo server starting", logger.F("addr", cfg.Addr), logger.F("driver", cfg.Database.Driver))
		errCh <- srv.Start(cfg.Addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("Server failed", logger.F("error", err))
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down", logger.F("timeout", cfg.ShutdownTimeout.String()))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", logger.F("error", err))
		return err
	}

	return nil
}
