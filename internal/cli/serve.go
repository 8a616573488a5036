package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/msomdec/inkwell/internal/handler"
	"github.com/msomdec/inkwell/internal/service"
)

// authAttemptsPerMinute bounds sign-in and sign-up attempts per client IP.
const authAttemptsPerMinute = 10

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		db, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close()
		slog.Info("database ready", "driver", cfg.Database.Driver)

		limiter := service.PerMinute(authAttemptsPerMinute)
		defer limiter.Stop()

		router := handler.NewRouter(handler.Services{
			Auth:    service.NewAuthService(db.Users(), cfg.Auth.JWTSecret, cfg.Auth.BcryptCost, cfg.Auth.SessionMaxAge),
			Posts:   service.NewPostService(db.Posts()),
			Users:   service.NewUserService(db.Users()),
			Uploads: service.NewUploadService(db.FileStore()),
			Store:   db,
		}, handler.Options{
			Development:        cfg.IsDevelopment(),
			CookieSecure:       cfg.Auth.CookieSecure,
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
			ProtectedPaths:     cfg.ProtectedPaths,
			TrustProxy:         cfg.TrustProxy,
			AuthLimiter:        limiter,
		})

		srv := &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       120 * time.Second,
			MaxHeaderBytes:    1 << 20, // 1MB
		}

		errCh := make(chan error, 1)
		go func() {
			slog.Info("server starting", "addr", srv.Addr, "environment", cfg.Environment)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
		case <-ctx.Done():
		}
		slog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		slog.Info("server stopped")
		return nil
	},
}
