// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package session provides service context loading for CLI commands.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/dacolabs/records/internal/config"
	"github.com/dacolabs/records/internal/logging"
	"github.com/dacolabs/records/internal/records"
	"github.com/dacolabs/records/internal/remote"
	"github.com/dacolabs/records/internal/remote/sandbox"
	"github.com/dacolabs/records/internal/schema"
	"github.com/dacolabs/records/internal/version"
)

var (
	// ErrNotInitialized indicates no records.yaml was found.
	ErrNotInitialized = errors.New("not in a records project (records.yaml not found)")

	// ErrInvalidConfig indicates the config file exists but is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrMissingToken indicates the platform token environment variable is empty.
	ErrMissingToken = errors.New("platform token not set")

	// ErrSandbox indicates the sandbox database could not be opened or seeded.
	ErrSandbox = errors.New("sandbox unavailable")
)

// ConfigFileName is the name of the records configuration file.
const ConfigFileName = "records.yaml"

// contextKey is used to store Context in context.Context.
type contextKey struct{}

// Context holds the resolved configuration and the services built from it.
type Context struct {
	// Config is the configuration with defaults and environment applied.
	Config *config.Config

	// ConfigPath is the absolute path of the loaded records.yaml.
	ConfigPath string

	Logger   *log.Logger
	Client   remote.Client
	Registry *records.Registry

	// Sandbox is set when the remote kind is sandbox.
	Sandbox *sandbox.Store
}

// Options controls Load.
type Options struct {
	// ConfigPath defaults to records.yaml in the working directory.
	ConfigPath string
	Getenv     func(string) string
	LogLevel   string
	LogOutput  io.Writer
}

// Load reads the configuration, builds the remote client and the collection
// registry, and returns a new context.Context with the Context stored in it.
func Load(ctx context.Context, opts Options) (context.Context, error) {
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stderr
	}

	configPath, err := resolvePath(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) {
		return nil, ErrNotInitialized
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	cfg.Normalize()
	cfg.ApplyEnv(opts.Getenv)
	if validateErr := cfg.Validate(); validateErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, validateErr)
	}

	logger, err := logging.New(opts.LogOutput, opts.Getenv, logging.Options{
		Level:       opts.LogLevel,
		Development: cfg.Development(),
		Prefix:      "records",
	})
	if err != nil {
		return nil, err
	}

	sc, err := New(ctx, cfg, filepath.Dir(configPath), opts.Getenv, logger)
	if err != nil {
		return nil, err
	}
	sc.ConfigPath = configPath

	return context.WithValue(ctx, contextKey{}, sc), nil
}

// New builds a Context from an already resolved configuration. Relative
// sandbox paths are taken from baseDir.
func New(ctx context.Context, cfg *config.Config, baseDir string, getenv func(string) string, logger *log.Logger) (*Context, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	sc := &Context{Config: cfg, Logger: logger}

	switch cfg.Remote.Kind {
	case config.KindSandbox:
		store, err := openSandbox(ctx, cfg.Remote.Sandbox, baseDir, logger)
		if err != nil {
			return nil, err
		}
		sc.Sandbox = store
		sc.Client = store
	default:
		token := getenv(cfg.Remote.TokenEnv)
		if token == "" {
			return nil, fmt.Errorf("%w: set %s", ErrMissingToken, cfg.Remote.TokenEnv)
		}
		sc.Client = remote.NewHTTPClient(cfg.Remote.BaseURL, token,
			remote.WithAPIVersion(cfg.Remote.APIVersion),
			remote.WithUserAgent(version.UserAgent()))
	}

	for _, name := range cfg.Missing() {
		logger.Warn("collection id not configured", "collection", name, "env", cfg.Collections[name].IDEnv)
	}

	cache := schema.NewCache(cfg.Schema.TTL)
	sc.Registry = records.NewRegistry()
	for _, name := range cfg.CollectionNames() {
		col := cfg.Collections[name]
		opts := []records.Option{
			records.WithLabel(col.Label),
			records.WithCache(cache),
			records.WithLogger(logger),
		}
		if cfg.Schema.SampleSize > 0 {
			opts = append(opts, records.WithSampleSize(cfg.Schema.SampleSize))
		}
		sc.Registry.Add(records.NewService(name, col.ID, sc.Client, opts...))
	}

	return sc, nil
}

// Close releases the sandbox database, if any.
func (c *Context) Close() error {
	if c.Sandbox == nil {
		return nil
	}
	return c.Sandbox.Close()
}

// openSandbox opens the sandbox and applies the seed file when the database
// holds no collections yet.
func openSandbox(ctx context.Context, cfg config.Sandbox, baseDir string, logger *log.Logger) (*sandbox.Store, error) {
	dsn := cfg.DSN
	if dsn != sandbox.MemoryDSN && !filepath.IsAbs(dsn) {
		dsn = filepath.Join(baseDir, dsn)
	}
	store, err := sandbox.Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSandbox, err)
	}
	if cfg.Seed == "" {
		return store, nil
	}

	ids, err := store.CollectionIDs(ctx)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("%w: %v", ErrSandbox, err)
	}
	if len(ids) > 0 {
		return store, nil
	}

	seedPath := cfg.Seed
	if !filepath.IsAbs(seedPath) {
		seedPath = filepath.Join(baseDir, seedPath)
	}
	seed, err := sandbox.LoadSeed(seedPath)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("%w: %v", ErrSandbox, err)
	}
	res, err := store.Apply(ctx, seed)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("%w: %v", ErrSandbox, err)
	}
	logger.Info("sandbox seeded", "collections", res.Collections, "records", res.Records)
	return store, nil
}

func resolvePath(path string) (string, error) {
	if path == "" {
		path = ConfigFileName
	}
	if filepath.IsAbs(path) {
		return path, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return filepath.Join(cwd, path), nil
}

// From extracts the Context from a context.Context.
// Returns nil if no Context is stored.
func From(ctx context.Context) *Context {
	if sc, ok := ctx.Value(contextKey{}).(*Context); ok {
		return sc
	}
	return nil
}
