package server

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/handoff-labs/handoff/internal/api"
	"github.com/handoff-labs/handoff/internal/cmd/base"
	"github.com/handoff-labs/handoff/internal/config"
	"github.com/handoff-labs/handoff/internal/server"
	"github.com/handoff-labs/handoff/internal/store"
)

// shutdownTimeout bounds how long in-flight requests can drain on shutdown.
const shutdownTimeout = 30 * time.Second

type Command struct {
	*base.Command

	flagConfig string
}

func (c *Command) Synopsis() string {
	return "Run the API server"
}

func (c *Command) Help() string {
	return `Usage: handoff server -config=<config>

This command runs the handoff API server.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("server", flag.ExitOnError))

	f.StringVar(
		&c.flagConfig, "config", "config.hcl",
		"Path to the configuration file",
	)

	return f
}

func (c *Command) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	cfg, err := config.FromFile(c.flagConfig)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error loading config: %v", err))
		return 1
	}
	if err := cfg.Validate(); err != nil {
		c.UI.Error(fmt.Sprintf("invalid config: %v", err))
		return 1
	}

	ctx, cancel := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	st, err := store.NewFirebase(
		ctx, cfg.Firebase.CredentialsFile, cfg.Firebase.DatabaseURL)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error connecting to database: %v", err))
		return 1
	}

	// Fail fast when the database isn't reachable, retrying briefly to ride
	// out transient startup conditions.
	ping := func() error { return st.Ping(ctx) }
	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), ctx)
	if err := backoff.Retry(ping, bo); err != nil {
		c.UI.Error(fmt.Sprintf("error reaching database: %v", err))
		return 1
	}
	c.Log.Info("connected to database", "url", cfg.Firebase.DatabaseURL)

	srv := server.Server{
		Config: cfg,
		Store:  st,
		Logger: c.Log,
	}

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: api.New(srv),
	}

	errCh := make(chan error, 1)
	go func() {
		c.Log.Info("server listening", "addr", cfg.ListenAddr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.UI.Error(fmt.Sprintf("server error: %v", err))
			return 1
		}
	case <-ctx.Done():
		c.Log.Info("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(
			context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			c.UI.Error(fmt.Sprintf("error during shutdown: %v", err))
			return 1
		}
	}

	return 0
}
