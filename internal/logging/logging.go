// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package logging builds the leveled, structured logger shared by the CLI and the server.
package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// EnvLevel is the environment variable consulted when no level is given.
const EnvLevel = "RECORDS_LOG_LEVEL"

// Options configures New.
type Options struct {
	// Level is one of debug, info, warn, error. Empty falls back to the
	// environment, then to info (debug in development).
	Level       string
	Development bool
	Prefix      string
}

// New creates a logger writing to w.
func New(w io.Writer, getenv func(string) string, opts Options) (*log.Logger, error) {
	level, err := resolveLevel(getenv, opts)
	if err != nil {
		return nil, err
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          opts.Prefix,
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	}), nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

func resolveLevel(getenv func(string) string, opts Options) (log.Level, error) {
	name := strings.TrimSpace(opts.Level)
	if name == "" && getenv != nil {
		name = strings.TrimSpace(getenv(EnvLevel))
	}
	if name == "" {
		if opts.Development {
			return log.DebugLevel, nil
		}
		return log.InfoLevel, nil
	}
	level, err := log.ParseLevel(strings.ToLower(name))
	if err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}
