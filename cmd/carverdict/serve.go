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

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/dshills/carverdict/internal/analyze"
	"github.com/dshills/carverdict/internal/config"
	"github.com/dshills/carverdict/internal/logging"
	"github.com/dshills/carverdict/internal/profile"
	"github.com/dshills/carverdict/internal/server"
	"github.com/dshills/carverdict/internal/signals"
)

// analysisTimeout bounds one request end to end.
const analysisTimeout = 30 * time.Second

func newServeCmd(cfg *config.Config) *cobra.Command {
	var (
		addr        string
		profileName string
		fixtures    string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cfg, addr, profileName, fixtures)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&addr, "addr", cfg.ListenAddr, "Listen address")
	flags.StringVar(&profileName, "profile", cfg.Profile, "Threshold profile name")
	flags.StringVar(&fixtures, "fixtures", cfg.Fixtures, "Read collaborator data from a YAML fixture file")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, addr, profileName, fixtures string) error {
	logger := logging.New("server")

	prof, err := profile.LoadBuiltin(profileName)
	if err != nil {
		return exitError(3, "failed to load profile: %v", err)
	}
	opts := cfg.ResolveOptions()
	opts.FixturesPath = fixtures
	opts.Logger = logging.New("signals")
	src, mode, err := signals.ResolveSources(opts)
	if err != nil {
		return exitError(4, "collaborator setup failed: %v", err)
	}

	a := analyze.New(src, prof, cfg.Timeouts, logging.New("analyze"))
	a.Version = version
	srv := server.New(a, logger, analysisTimeout)

	r := chi.NewRouter()
	r.Mount("/", srv.Routes())
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()
	logger.Info().Str("addr", addr).Str("profile", prof.Name).Str("signals", string(mode)).Msg("listening")

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	}
}
