package commands

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tellerd-dev/tellerd/internal/config"
	"github.com/tellerd-dev/tellerd/internal/store"
)

// env is the shared runtime every subcommand assembles: configuration, the
// ledger store, and a structured logger.
type env struct {
	root string
	cfg  *config.Config
	st   *store.Store
	log  *zap.Logger
}

func loadEnv(dir string) (*env, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if err != nil {
		return nil, err
	}

	log, err := newLogger(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(dbPath(root, cfg))
	if err != nil {
		return nil, err
	}

	return &env{root: root, cfg: cfg, st: st, log: log}, nil
}

func (e *env) close() {
	e.st.Close()
	e.log.Sync() //nolint:errcheck // stderr sync failures are benign
}

func dbPath(root string, cfg *config.Config) string {
	path := cfg.Database.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	return path
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", level, err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	log, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return log, nil
}
