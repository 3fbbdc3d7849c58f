// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dacolabs/records/internal/prompts"
	"github.com/dacolabs/records/internal/remote/sandbox"
	"github.com/dacolabs/records/internal/session"
	"github.com/spf13/cobra"
)

func registerSandboxCmd(parent *cobra.Command, root *rootOptions) {
	cmd := &cobra.Command{
		Use:   "sandbox",
		Short: "Manage the local SQLite sandbox",
	}

	cmd.AddCommand(newSandboxSeedCmd())

	parent.AddCommand(withSession(cmd, root))
}

func newSandboxSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed FILE",
		Short: "Load collections and records from a YAML seed file",
		Long: `Create the collections of a seed file in the sandbox and append its records.
Collections that already exist have their schema replaced; records are always added.`,
		Example: `  # Seed the sandbox
  records sandbox seed testdata/seed.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := session.RequireFromCommand(cmd)
			if err != nil {
				return err
			}
			return runSandboxSeed(cmd, sc, args[0])
		},
	}
	return cmd
}

func runSandboxSeed(cmd *cobra.Command, sc *session.Context, path string) error {
	if sc.Sandbox == nil {
		return errors.New("remote.kind is not sandbox")
	}
	seed, err := sandbox.LoadSeed(path)
	if err != nil {
		return err
	}
	res, err := sc.Sandbox.Apply(cmd.Context(), seed)
	if err != nil {
		return fmt.Errorf("seeding sandbox: %w", err)
	}
	ids, err := sc.Sandbox.CollectionIDs(cmd.Context())
	if err != nil {
		return err
	}

	prompts.PrintResult([]prompts.ResultField{
		{Label: "Collections", Value: fmt.Sprint(res.Collections)},
		{Label: "Records", Value: fmt.Sprint(res.Records)},
		{Label: "Sandbox now holds", Value: strings.Join(ids, ", ")},
	}, "✓ Sandbox seeded")
	return nil
}
