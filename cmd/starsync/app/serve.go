package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	routes "github.com/just-nibble/starsync/internal/adapters/http"
	"github.com/just-nibble/starsync/internal/adapters/http/handlers"
	"github.com/just-nibble/starsync/internal/adapters/metrics"
	"github.com/just-nibble/starsync/internal/core/service"
	"github.com/just-nibble/starsync/pkg/config"
)

const (
	defaultGracefulTimeout = 30 * time.Second
	serverReadTimeout      = 10 * time.Second
	serverWriteTimeout     = 15 * time.Second
	serverIdleTimeout      = 60 * time.Second

	syncJobName = "sync-starred"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the repository API and keep the mirror in sync",
		Long: `Start the HTTP server (/repositories, /metrics, /healthz, /swagger) and
run synchronizations at boot (ENABLE_SYNC_ON_BOOT) and on CRON_SCHEDULE
(ENABLE_SYNC_CRON).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, v)
		},
	}

	cmd.Flags().String(addressFlag, config.DefaultHTTPAddress, "Address to listen on")
	if err := v.BindPFlag("HTTP_ADDRESS", cmd.Flags().Lookup(addressFlag)); err != nil {
		panic(fmt.Sprintf("failed to bind address flag: %v", err))
	}

	return cmd
}

func runServe(cmd *cobra.Command, v *viper.Viper) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cmd, v)
	if err != nil {
		return err
	}
	defer app.Close()

	// Set up HTTP routes
	router := routes.NewRouter(
		handlers.NewRepositoryHandler(app.store),
		metrics.Handler(app.registry),
		app.log.WithField("component", "http"),
	)

	server := &http.Server{
		Addr:         app.cfg.HTTPAddress,
		Handler:      router,
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
		IdleTimeout:  serverIdleTimeout,
	}

	scheduler := service.NewScheduler(app.clock, app.log.WithField("component", "scheduler"))
	syncJob := func(ctx context.Context) { app.syncer.SyncOnce(ctx) }
	if app.cfg.SyncCronEnabled {
		if err := scheduler.Register(syncJobName, app.cfg.CronSchedule, syncJob); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.log.Infof("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		app.log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultGracefulTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		// The boot run finishes before the schedule is armed.
		if app.cfg.SyncOnBoot {
			scheduler.RunNow(gctx, syncJobName, syncJob)
		}
		scheduler.Start(gctx)
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	app.log.Info("Server shutdown complete")
	return nil
}
