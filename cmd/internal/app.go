// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package internal contains the main application logic for the CLI.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/dacolabs/records/internal/commands"
	"github.com/joho/godotenv"
)

// DotEnvFile is read from the working directory before commands run.
// Variables already present in the environment are not overridden.
const DotEnvFile = ".env"

// Run is the main application logic, extracted for testability.
// It accepts OS dependencies as parameters (context, env lookup).
func Run(ctx context.Context, getenv func(string) string) error {
	if err := loadDotEnv(DotEnvFile); err != nil {
		return err
	}
	rootCmd := commands.NewRootCmd(getenv)
	return rootCmd.ExecuteContext(ctx)
}

// loadDotEnv loads path into the process environment. A missing file is fine.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading %s: %w", path, err)
}
