// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dacolabs/records/internal/config"
	"github.com/dacolabs/records/internal/prompts"
	"github.com/spf13/cobra"
)

type initOptions struct {
	kind           string
	tokenEnv       string
	sandboxDSN     string
	seed           string
	addr           string
	env            string
	collections    []string
	nonInteractive bool
}

func newInitCmd(root *rootOptions) *cobra.Command {
	opts := &initOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new records project",
		Long: `Initialize a new records project with a records.yaml configuration file.
Selects the remote platform (Notion or a local SQLite sandbox) and registers collections.`,
		Example: `  # Interactive mode
  records init

  # Non-interactive, Notion workspace
  records init --non-interactive --collection products=PRODUCT_DATA --collection vendors=VENDOR_DATA

  # Non-interactive, local sandbox
  records init --non-interactive --kind sandbox --seed seed.yaml --collection products=products`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.kind, "kind", "k", config.KindNotion, "Remote platform (notion or sandbox)")
	cmd.Flags().StringVar(&opts.tokenEnv, "token-env", config.DefaultTokenEnv, "Environment variable holding the API token")
	cmd.Flags().StringVar(&opts.sandboxDSN, "sandbox-dsn", config.DefaultSandboxDSN, "Sandbox database file")
	cmd.Flags().StringVar(&opts.seed, "seed", "", "Sandbox seed file")
	cmd.Flags().StringVar(&opts.addr, "addr", config.DefaultAddr, "Listen address")
	cmd.Flags().StringVar(&opts.env, "env", config.EnvDevelopment, "Environment (development or production)")
	cmd.Flags().StringArrayVar(&opts.collections, "collection", nil, "Collection as NAME=ID_ENV_VAR (repeatable)")
	cmd.Flags().BoolVar(&opts.nonInteractive, "non-interactive", false, "Run without prompts")

	return cmd
}

func runInit(root *rootOptions, opts *initOptions) error {
	path := root.configPath
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists; project already initialized", filepath.Base(path))
	}

	collections, err := parseCollectionFlags(opts.collections)
	if err != nil {
		return err
	}

	if !opts.nonInteractive {
		answers := prompts.InitAnswers{
			Kind:       opts.kind,
			TokenEnv:   opts.tokenEnv,
			SandboxDSN: opts.sandboxDSN,
			Seed:       opts.seed,
			Addr:       opts.addr,
			Env:        opts.env,
		}
		if err := prompts.RunInitForm(&answers); err != nil {
			return err
		}
		opts.kind, opts.tokenEnv, opts.sandboxDSN = answers.Kind, answers.TokenEnv, answers.SandboxDSN
		opts.seed, opts.addr, opts.env = answers.Seed, answers.Addr, answers.Env
		if answers.CollectionName != "" {
			collections[answers.CollectionName] = config.Collection{
				IDEnv: answers.CollectionIDEnv,
				Label: answers.CollectionLabel,
			}
		}
	}

	cfg := buildInitConfig(opts, collections)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("config file couldn't be saved: %w", err)
	}

	fields := []prompts.ResultField{
		{Label: "Config", Value: path},
		{Label: "Remote", Value: cfg.Remote.Kind},
		{Label: "Collections", Value: strings.Join(cfg.CollectionNames(), ", ")},
	}
	prompts.PrintResult(fields, "Initialization completed")
	return nil
}

func buildInitConfig(opts *initOptions, collections map[string]config.Collection) config.Config {
	cfg := config.Config{
		Version:     config.CurrentConfigVersion,
		Server:      config.Server{Addr: opts.addr, Env: opts.env},
		Remote:      config.Remote{Kind: opts.kind},
		Collections: collections,
	}
	switch opts.kind {
	case config.KindSandbox:
		cfg.Remote.Sandbox = config.Sandbox{DSN: opts.sandboxDSN, Seed: opts.seed}
	default:
		cfg.Remote.TokenEnv = opts.tokenEnv
	}
	return cfg
}

var envVarName = regexp.MustCompile(`^[A-Z_][A-Z0-9_]*$`)

// parseCollectionFlags parses repeated NAME=ID_ENV_VAR values. A value that
// is not an environment variable name is taken as the collection id itself.
func parseCollectionFlags(values []string) (map[string]config.Collection, error) {
	out := make(map[string]config.Collection, len(values))
	for _, v := range values {
		name, ref, ok := strings.Cut(v, "=")
		if !ok || name == "" || ref == "" {
			return nil, fmt.Errorf("--collection %q: want NAME=ID_ENV_VAR", v)
		}
		if _, dup := out[name]; dup {
			return nil, errors.New("--collection " + name + " given twice")
		}
		if envVarName.MatchString(ref) {
			out[name] = config.Collection{IDEnv: ref}
		} else {
			out[name] = config.Collection{ID: ref}
		}
	}
	return out, nil
}
