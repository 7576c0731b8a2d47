package main

import (
	"context"
	"crypto/rand"
	"embed"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/debemdeboas/the-blog/internal/config"
	"github.com/debemdeboas/the-blog/internal/db"
	"github.com/debemdeboas/the-blog/internal/logger"
	"github.com/debemdeboas/the-blog/internal/metrics"
	"github.com/debemdeboas/the-blog/internal/repository"
	"github.com/debemdeboas/the-blog/internal/server"
	"github.com/debemdeboas/the-blog/internal/session"
)

//go:embed static/* templates/*
var content embed.FS

const shutdownTimeout = 10 * time.Second

var (
	configPath string

	rootCmd = &cobra.Command{
		Use:          "the-blog",
		Short:        "A minimal blog: list, read and publish short posts",
		SilenceUsage: true,
		RunE:         runServe,
	}
)

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the YAML configuration file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setLoggers(l zerolog.Logger) {
	config.SetLogger(l)
	db.SetLogger(l.With().Str("component", "db").Logger())
	repository.SetLogger(l.With().Str("component", "repository").Logger())
	session.SetLogger(l.With().Str("component", "session").Logger())
}

// secretKey reads the cookie signing key from the environment. Without one,
// visitors lose their welcome state on every restart.
func secretKey(l zerolog.Logger) ([]byte, error) {
	if key := os.Getenv(config.SecretKeyEnv); key != "" {
		return []byte(key), nil
	}

	l.Warn().Str("env", config.SecretKeyEnv).Msg("No secret key configured, using an ephemeral one")
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate secret key: %w", err)
	}
	return key, nil
}

func newSessionStore(cfg *config.Config, database db.DB) session.Store {
	if cfg.Session.Store == "memory" {
		return session.NewMemoryStore()
	}
	return session.NewDBStore(database)
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func runServe(cmd *cobra.Command, _ []string) error {
	boot := logger.New("info", "console")
	config.SetLogger(boot)

	if err := godotenv.Load(); err != nil {
		boot.Debug().Err(err).Msg("No .env file loaded")
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		boot.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return err
	}

	l := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	setLoggers(l)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database := db.NewSQLite(cfg.Database.Driver, cfg.Database.Path)
	if err := database.InitDB(ctx); err != nil {
		l.Error().Err(err).Msgf(config.ErrInitializeDatabaseFmt, cfg.Database.Path)
		return err
	}
	defer database.Close()

	posts := repository.NewDBPostRepository(database)
	if err := posts.Init(ctx); err != nil {
		l.Error().Err(err).Msg(config.ErrInitializePosts)
		return err
	}

	store := newSessionStore(cfg, database)
	if err := store.Init(ctx); err != nil {
		l.Error().Err(err).Msg(config.ErrInitializeSessions)
		return err
	}

	secret, err := secretKey(l)
	if err != nil {
		return err
	}

	opts := server.Options{
		Config:   cfg,
		Logger:   l,
		DB:       database,
		Posts:    posts,
		Sessions: session.NewManager(cfg.Session, secret, store),
		Content:  content,
	}
	if cfg.Features.Metrics.Enabled {
		reg := newRegistry()
		opts.Metrics = metrics.New(reg)
		opts.Gatherer = reg
	}

	s, err := server.New(opts)
	if err != nil {
		l.Error().Err(err).Msg("Failed to create server")
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		l.Info().Str("addr", srv.Addr).Str("driver", cfg.Database.Driver).Msg("Starting server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			l.Error().Err(err).Msg("Server stopped")
			return err
		}
	case <-ctx.Done():
		l.Info().Msg("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
