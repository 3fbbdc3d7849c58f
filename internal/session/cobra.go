// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package session

import (
	"errors"

	"github.com/spf13/cobra"
)

// FromCommand extracts the Context from a cobra.Command's context.
// Returns nil if no Context is stored.
func FromCommand(cmd *cobra.Command) *Context {
	return From(cmd.Context())
}

// RequireFromCommand extracts the Context from a cobra.Command's context,
// returning an error if not found.
func RequireFromCommand(cmd *cobra.Command) (*Context, error) {
	ctx := FromCommand(cmd)
	if ctx == nil {
		return nil, errors.New("service context not loaded")
	}
	return ctx, nil
}

// PreRunLoad returns a PersistentPreRunE function that loads the service
// context and stores it in the command's context. opts is called at run
// time so flag values are already parsed.
func PreRunLoad(opts func() Options) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx, err := Load(cmd.Context(), opts())
		if err != nil {
			return err
		}
		cmd.SetContext(ctx)
		return nil
	}
}

// PostRunClose returns a PersistentPostRunE function that releases the
// resources of a loaded service context.
func PostRunClose(cmd *cobra.Command, _ []string) error {
	if sc := FromCommand(cmd); sc != nil {
		return sc.Close()
	}
	return nil
}
