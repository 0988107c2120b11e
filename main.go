package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fertadvisor/logging"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "fertadvisor",
	Short:        "Fertilizer recommendations from soil test readings",
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		logging.Init(logging.Config{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			Caller: cfg.Logging.Caller,
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: $CONFIG_PATH or ./config.yaml)")
	rootCmd.AddCommand(serveCmd, recommendCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// serve runs the API until ctx is cancelled, then drains connections.
func serve(ctx context.Context, cfg Config) error {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	app, err := newApp(connectCtx, cfg)
	cancel()
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer app.close(context.Background())

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           app.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logging.Info().
			Str("addr", srv.Addr).
			Str("storage", cfg.Storage.Driver).
			Bool("remote_scoring", cfg.Scoring.URL != "").
			Msg("fertadvisor API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logging.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
