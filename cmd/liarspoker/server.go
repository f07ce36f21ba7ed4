package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/liarspoker/cmd/liarspoker/shared"
	"github.com/lox/liarspoker/internal/auth"
	"github.com/lox/liarspoker/internal/game"
	"github.com/lox/liarspoker/internal/server"
	"github.com/lox/liarspoker/internal/store"
)

// ServerCmd contains core server configuration
type ServerCmd struct {
	Config string `short:"c" default:"liarspoker.hcl" help:"Path to HCL configuration file"`
	Addr   string `help:"Listen address (overrides config)"`
	Debug  bool   `help:"Enable debug logging"`
	Seed   *int64 `help:"Deterministic seed for secret dealing (optional)"`
}

func (c *ServerCmd) Run() error {
	logger := shared.SetupLogger(c.Debug)

	// A .env file carries DATABASE_URL and auth settings in development
	if err := server.LoadDotEnv(".env"); err != nil {
		logger.Warn("Failed to load .env file", "error", err)
	}

	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	var seed int64
	switch {
	case c.Seed != nil:
		seed = *c.Seed
		logger.Info("Using deterministic seed", "seed", seed)
	case cfg.Server.Seed != 0:
		seed = cfg.Server.Seed
		logger.Info("Using configured seed", "seed", seed)
	default:
		seed = time.Now().UnixNano()
		logger.Info("Using random seed", "seed", seed)
	}

	st, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	addr := c.Addr
	if addr == "" {
		addr = cfg.GetServerAddress()
	}

	manager := game.NewManager(game.WithSeed(seed))
	srv := server.NewServer(addr, logger)
	if cfg.Server.AuthURL != "" {
		srv.SetVerifier(auth.NewHTTPVerifier(cfg.Server.AuthURL, cfg.Server.AuthSecret))
		logger.Info("Token verification enabled", "url", cfg.Server.AuthURL)
	}

	service := server.NewRoomService(srv, manager, st, cfg.Server.TranscriptDir, logger)
	srv.SetRoomService(service)

	if _, err := service.Restore(context.Background()); err != nil {
		logger.Warn("Failed to restore rooms from store", "error", err)
	}

	if err := service.Provision(context.Background(), cfg.Rooms); err != nil {
		return err
	}

	logger.Info("Starting liar's poker server",
		"addr", addr,
		"provisioned_rooms", len(cfg.Rooms))

	ctx := shared.SetupSignalHandlerWithLogger(logger)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down server...")
		return srv.Stop()
	case err := <-serverErr:
		return err
	}
}

// openStore selects postgres when a database URL is configured and
// falls back to the in-memory store otherwise.
func openStore(cfg *server.ServerConfig, logger *log.Logger) (store.Store, error) {
	dsn := cfg.Server.DatabaseURL
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if dsn == "" {
		logger.Info("Using in-memory store, rooms will not survive restarts")
		return store.NewMemory(), nil
	}

	pg, err := store.OpenPostgresDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres store: %w", err)
	}
	logger.Info("Using postgres store")
	return pg, nil
}
