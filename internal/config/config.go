// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package config handles the records.yaml service configuration.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// CurrentConfigVersion is the current version of the config file format.
const CurrentConfigVersion = 1

// Remote kinds.
const (
	KindNotion  = "notion"
	KindSandbox = "sandbox"
)

// Environments.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Defaults applied by Normalize.
const (
	DefaultAddr       = ":3000"
	DefaultTokenEnv   = "NOTION_API_KEY"
	DefaultSandboxDSN = "records.db"
)

// placeholderID is the value shipped in example env files; it counts as unset.
const placeholderID = "xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx"

var collectionName = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// Config represents the records.yaml configuration file.
type Config struct {
	Version     int                   `yaml:"version"`
	Server      Server                `yaml:"server"`
	Remote      Remote                `yaml:"remote"`
	Schema      Schema                `yaml:"schema,omitempty"`
	Collections map[string]Collection `yaml:"collections"`
}

// Server configures the HTTP listener.
type Server struct {
	Addr string `yaml:"addr,omitempty"`
	Env  string `yaml:"env,omitempty"`
}

// Remote selects and configures the remote platform.
type Remote struct {
	Kind       string  `yaml:"kind"`
	BaseURL    string  `yaml:"baseURL,omitempty"`
	TokenEnv   string  `yaml:"tokenEnv,omitempty"`
	APIVersion string  `yaml:"apiVersion,omitempty"`
	Sandbox    Sandbox `yaml:"sandbox,omitempty"`
}

// Sandbox configures the local SQLite stand-in.
type Sandbox struct {
	DSN  string `yaml:"dsn,omitempty"`
	Seed string `yaml:"seed,omitempty"`
}

// Schema tunes schema analysis.
type Schema struct {
	TTL        time.Duration `yaml:"ttl,omitempty"`
	SampleSize int           `yaml:"sampleSize,omitempty"`
}

// Collection maps a route name to a remote collection id. The id may come
// from the environment variable named by IDEnv.
type Collection struct {
	ID    string `yaml:"id,omitempty"`
	IDEnv string `yaml:"idEnv,omitempty"`
	Label string `yaml:"label,omitempty"`
}

// Load reads a Config from a file path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path) //nolint:gosec // path is provided by caller
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the Config to a file path.
func (c *Config) Save(path string) error {
	f, err := os.Create(path) //nolint:gosec // path is provided by caller
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	return enc.Encode(c)
}

// Normalize fills in defaults for unset fields.
func (c *Config) Normalize() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.Env == "" {
		c.Server.Env = EnvDevelopment
	}
	if c.Remote.Kind == "" {
		c.Remote.Kind = KindNotion
	}
	if c.Remote.Kind == KindNotion && c.Remote.TokenEnv == "" {
		c.Remote.TokenEnv = DefaultTokenEnv
	}
	if c.Remote.Kind == KindSandbox && c.Remote.Sandbox.DSN == "" {
		c.Remote.Sandbox.DSN = DefaultSandboxDSN
	}
	if c.Collections == nil {
		c.Collections = map[string]Collection{}
	}
}

// ApplyEnv resolves collection ids from their environment variables and
// applies the PORT and RECORDS_ENV overrides.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if port := getenv("PORT"); port != "" {
		host, _, err := net.SplitHostPort(c.Server.Addr)
		if err != nil {
			host = ""
		}
		c.Server.Addr = net.JoinHostPort(host, port)
	}
	if env := getenv("RECORDS_ENV"); env != "" {
		c.Server.Env = env
	}
	for name, col := range c.Collections {
		if col.IDEnv == "" {
			continue
		}
		if id := getenv(col.IDEnv); id != "" {
			col.ID = id
			c.Collections[name] = col
		}
	}
}

// Validate checks the configuration for required fields and valid values.
func (c *Config) Validate() error {
	if c.Version != CurrentConfigVersion {
		return errors.New("unsupported config version")
	}
	switch c.Remote.Kind {
	case "", KindNotion, KindSandbox:
	default:
		return fmt.Errorf("remote.kind must be %q or %q, got %q", KindNotion, KindSandbox, c.Remote.Kind)
	}
	switch c.Server.Env {
	case "", EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("server.env must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.Server.Env)
	}
	if c.Schema.TTL < 0 {
		return errors.New("schema.ttl must not be negative")
	}
	if c.Schema.SampleSize < 0 || c.Schema.SampleSize > 100 {
		return errors.New("schema.sampleSize must be between 1 and 100")
	}
	for name, col := range c.Collections {
		if !collectionName.MatchString(name) {
			return fmt.Errorf("collection name %q must be lowercase letters, digits and dashes", name)
		}
		if col.ID == "" && col.IDEnv == "" {
			return fmt.Errorf("collection %q needs an id or idEnv", name)
		}
	}
	return nil
}

// Missing lists collections that have no usable id, sorted by name.
func (c *Config) Missing() []string {
	var missing []string
	for name, col := range c.Collections {
		if col.ID == "" || col.ID == placeholderID {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

// CollectionNames returns the configured collection names, sorted.
func (c *Config) CollectionNames() []string {
	names := make([]string, 0, len(c.Collections))
	for name := range c.Collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Development reports whether the service runs in development mode.
func (c *Config) Development() bool {
	return c.Server.Env == "" || strings.EqualFold(c.Server.Env, EnvDevelopment)
}
