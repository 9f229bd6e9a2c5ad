package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/vocabquiz/internal/api"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve quiz sessions over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Auth.HMACSecret == "" {
			return errors.New("auth.hmac_secret is required to serve (set VOCABQUIZ_AUTH_HMAC_SECRET)")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		svc, err := openServices(ctx)
		if err != nil {
			return err
		}
		defer svc.Close()

		handler := api.NewServer(api.Deps{
			Bank:       svc.bank,
			Attempts:   svc.store.AttemptRepo(),
			Mastery:    svc.mastery,
			Auth:       api.NewAuthenticator(cfg.Auth.HMACSecret, cfg.Auth.TokenTTL),
			NewMachine: svc.newMachine,
			Logger:     logger,
		}, api.Options{
			CORSOrigins:    cfg.HTTP.CORSOrigins,
			RequestTimeout: cfg.HTTP.RequestTimeout,
		})

		srv := &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("http server listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			return nil
		case err, ok := <-errCh:
			if ok {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		}
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default :8080)")
}
