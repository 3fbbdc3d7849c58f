// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package commands contains all CLI command definitions.
package commands

import (
	"os"

	"github.com/dacolabs/records/internal/session"
	"github.com/dacolabs/records/internal/version"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	logLevel   string
	getenv     func(string) string
}

// session returns the options used to load the service context.
func (o *rootOptions) session() session.Options {
	return session.Options{
		ConfigPath: o.configPath,
		Getenv:     o.getenv,
		LogLevel:   o.logLevel,
		LogOutput:  os.Stderr,
	}
}

// NewRootCmd creates and returns the root command for the CLI.
func NewRootCmd(getenv func(string) string) *cobra.Command {
	if getenv == nil {
		getenv = os.Getenv
	}
	opts := &rootOptions{getenv: getenv}

	rootCmd := &cobra.Command{
		Use:   "records",
		Short: "Schema-driven REST service over workspace databases",
		Long: `records serves workspace databases (Notion-style collections) as a uniform REST API.
Each configured collection is introspected at runtime: its schema drives validation,
value encoding, and a generated CRUD contract.`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate(version.Info() + "\n")

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", session.ConfigFileName, "Path to records.yaml")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newInitCmd(opts))
	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newSchemaCmd(opts))
	rootCmd.AddCommand(newContractCmd(opts))
	rootCmd.AddCommand(newValidateCmd(opts))
	rootCmd.AddCommand(newVersionCmd())
	registerCollectionsCmd(rootCmd, opts)
	registerItemsCmd(rootCmd, opts)
	registerSandboxCmd(rootCmd, opts)

	return rootCmd
}

// withSession makes cmd load the service context before running and
// release it afterwards.
func withSession(cmd *cobra.Command, opts *rootOptions) *cobra.Command {
	cmd.PersistentPreRunE = session.PreRunLoad(opts.session)
	cmd.PersistentPostRunE = session.PostRunClose
	return cmd
}
