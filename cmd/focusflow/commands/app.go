// ABOUTME: Wires config, logger, record store, model client and session for one command
// ABOUTME: Optionally pulls from and pushes to the charm mirror around the command
package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/harper/focusflow/internal/charm"
	"github.com/harper/focusflow/internal/config"
	"github.com/harper/focusflow/internal/focus"
	"github.com/harper/focusflow/internal/llm"
	"github.com/harper/focusflow/internal/logger"
	"github.com/harper/focusflow/internal/recordstore"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	store   *recordstore.Store
	records *recordstore.Records
	session *focus.Session
	mirror  *charm.Mirror
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) zerolog.Logger {
	level := cfg.LogLevel
	switch {
	case verbose:
		level = "debug"
	case quiet:
		level = "error"
	}
	return logger.New("focusflow", logger.Options{Level: level, Format: cfg.LogFormat, Out: cmd.ErrOrStderr()})
}

// newGenerator returns nil when no model key is configured
func newGenerator(cfg *config.Config) (llm.Generator, error) {
	if !cfg.HasModel() {
		return nil, nil
	}
	return llm.NewOpenAIClientWithConfig(&llm.ClientConfig{
		APIKey:      cfg.OpenAIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		Timeout:     cfg.ModelTimeout,
	})
}

func openMirror(cfg *config.Config, store *recordstore.Store, log zerolog.Logger) (*charm.Mirror, error) {
	db, err := charm.OpenKV(charm.Config{Host: cfg.CharmHost, DBName: cfg.CharmDBName})
	if err != nil {
		return nil, err
	}
	return charm.NewMirror(db, store, charm.MirrorOptions{
		Retries:    cfg.SyncRetries,
		RetryDelay: cfg.SyncRetryDelay,
		Logger:     log,
	}), nil
}

// openApp builds the app and hydrates the session. A store that fails to open
// leaves a fresh session; the failure is logged and surfaces again on save.
func openApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := newLogger(cmd, cfg)

	gen, err := newGenerator(cfg)
	if err != nil {
		return nil, err
	}

	store := recordstore.New(recordstore.SQLite(cfg.DBPath), recordstore.WithLogger(log))
	a := &app{cfg: cfg, log: log, store: store, records: recordstore.NewRecords(store)}

	if cfg.AutoSync {
		if a.mirror, err = openMirror(cfg, store, log); err != nil {
			log.Warn().Err(err).Msg("charm mirror unavailable, continuing offline")
		} else if _, err := a.mirror.Pull(ctx); err != nil {
			log.Warn().Err(err).Msg("charm pull failed")
		}
	}

	opts := []focus.Option{focus.WithLogger(log)}
	if gen != nil {
		opts = append(opts, focus.WithGenerator(gen))
	}
	a.session = focus.NewSession(a.records, opts...)
	if _, err := a.session.Hydrate(ctx); err != nil {
		if !errors.Is(err, recordstore.ErrOpen) {
			_ = a.close(ctx)
			return nil, err
		}
		log.Error().Stack().Err(err).Str("db", cfg.DBPath).Msg("record store unavailable")
	}
	return a, nil
}

// close waits for pending saves, pushes to the mirror when auto-sync is on,
// and closes the store. Save failures are returned. The push copies what the
// store committed and runs even when some saves failed.
func (a *app) close(ctx context.Context) error {
	var errs []error
	if a.session != nil {
		if err := a.session.Flush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("saving changes: %w", err))
		}
	}
	if a.mirror != nil {
		if _, err := a.mirror.Push(ctx); err != nil {
			a.log.Warn().Err(err).Msg("charm push failed")
		}
		_ = a.mirror.Close()
	}
	if err := a.store.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// withApp runs fn with a hydrated app and closes it afterwards
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := openApp(ctx, cmd)
	if err != nil {
		return err
	}
	runErr := fn(ctx, a)
	return errors.Join(runErr, a.close(ctx))
}
