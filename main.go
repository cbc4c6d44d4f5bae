// Command payment-api starts the payment submission HTTP server.
//
// Run with:
//
//	go run . --port 8080 --store bolt --db-path payments.db
//
// Every flag can also be set through the environment (PORT, STORE_DRIVER,
// DB_PATH, DATABASE_URL, REDIS_ADDR, LOG_LEVEL, LOG_FORMAT, SHUTDOWN_TIMEOUT)
// or a .env file in the working directory.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/arkantrust/payment-api/backend/config"
	"github.com/arkantrust/payment-api/backend/handlers"
	"github.com/arkantrust/payment-api/backend/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "payment-api",
		Short:         "Accept, validate and store payment submissions",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags(), ".env")
			if err != nil {
				logrus.WithError(err).Error("invalid configuration")
				return err
			}
			log := cfg.NewLogger()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := serve(ctx, cfg, log); err != nil {
				log.WithError(err).Error("server stopped")
				return err
			}
			return nil
		},
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}

// serve runs the HTTP server until ctx is cancelled, then drains in-flight
// requests for at most cfg.ShutdownTimeout.
func serve(ctx context.Context, cfg config.Config, log *logrus.Logger) error {
	s, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer s.Close()

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           handlers.Routes(handlers.New(s, log), log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"addr":  srv.Addr,
			"store": cfg.Store.Driver,
		}).Info("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
