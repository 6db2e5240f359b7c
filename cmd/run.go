package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clario-app/clario/internal/assessment"
	"github.com/clario-app/clario/internal/catalog"
	"github.com/clario-app/clario/internal/config"
	"github.com/clario-app/clario/internal/logging"
	"github.com/clario-app/clario/internal/recommend"
	"github.com/clario-app/clario/internal/storage"
	"github.com/clario-app/clario/internal/store"
)

// app bundles the services a command needs. Close releases the backends.
type app struct {
	cfg     config.Config
	log     zerolog.Logger
	catalog *catalog.Catalog
	kv      *storage.KV
	svc     *assessment.Service
	session *assessment.Session

	// events is nil for the memory backend.
	events store.EventRepo

	closers []func() error
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

// loadConfig layers the persistent flags over the loaded configuration.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.Storage.Path = p
	}
	if b, _ := cmd.Flags().GetString("storage"); b != "" {
		cfg.Storage.Backend = b
	}
	if eph, _ := cmd.Flags().GetBool("ephemeral"); eph {
		cfg.Storage.Backend = config.BackendMemory
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// resolveDBPath returns the database path using the configured path (set by
// --db or storage.path), then CLARIO_DB, then the default XDG path.
func resolveDBPath(cfg config.Config) (string, error) {
	if cfg.Storage.Path != "" {
		return cfg.Storage.Path, store.EnsureDir(cfg.Storage.Path)
	}
	return store.DefaultDBPath()
}

func newLogger(cmd *cobra.Command, cfg config.Config) zerolog.Logger {
	lc := cfg.Logging()
	lc.Output = cmd.ErrOrStderr()
	return logging.New(lc)
}

func loadCatalog(cfg config.Config) (*catalog.Catalog, error) {
	if cfg.Catalog.Path == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(cfg.Catalog.Path)
}

// openApp loads configuration, opens the storage backend, and builds the
// assessment services.
func openApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log := newLogger(cmd, cfg)

	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log, catalog: cat}

	var backend storage.Backend
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		backend = storage.NewMemoryBackend()
	case config.BackendSQLite, config.BackendBadger:
		dbPath, err := resolveDBPath(cfg)
		if err != nil {
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		a.closers = append(a.closers, st.Close)
		a.events = st.EventRepo()

		if cfg.Storage.Backend == config.BackendSQLite {
			backend = st.KVRepo()
			break
		}
		bdb, err := storage.OpenBadger(store.BadgerDir(dbPath))
		if err != nil {
			return nil, errors.Join(fmt.Errorf("open badger: %w", err), a.Close())
		}
		a.closers = append(a.closers, bdb.Close)
		backend = bdb
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	log.Debug().Str("backend", cfg.Storage.Backend).Str("catalog", cat.Version()).Msg("storage ready")

	a.kv = storage.New(backend, storage.WithLogger(log))
	recs := recommend.NewService(cat)
	a.svc = assessment.NewService(a.kv, cat, recs)

	opts := []assessment.SessionOption{assessment.WithLogger(log)}
	if a.events != nil {
		opts = append(opts, assessment.WithEventRecorder(eventLog{repo: a.events}))
	}
	a.session = assessment.NewSession(a.svc, a.kv, opts...)
	return a, nil
}

// eventLog writes session transitions to the sqlite event table.
type eventLog struct {
	repo store.EventRepo
}

func (l eventLog) RecordEvent(ctx context.Context, e assessment.Event) error {
	return l.repo.AppendSessionEvent(ctx, store.SessionEventData{
		SessionID:  e.SessionID,
		Action:     e.Action,
		Stream:     e.Stream,
		QuestionID: e.QuestionID,
		Answers:    e.Answers,
	})
}
