// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/dacolabs/records/internal/prompts"
	"github.com/dacolabs/records/internal/records"
	"github.com/dacolabs/records/internal/session"
	"github.com/spf13/cobra"
)

// errInvalidPayload makes the process exit non-zero after the problems were printed.
var errInvalidPayload = errors.New("payload is invalid")

type validateOptions struct {
	file   string
	format string
	output string
}

func newValidateCmd(root *rootOptions) *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate [COLLECTION]",
		Short: "Validate a create payload without writing it",
		Long: `Check a payload against the collection's live schema: required fields,
unknown fields, platform-managed fields, and value shapes. Nothing is written.
The file may be JSON or YAML, either the properties object itself or {"properties": {...}}.`,
		Example: `  # Validate a typed payload
  records validate products -f product.json

  # Validate simplified values
  records validate products -f product.yaml --format simple

  # Read from stdin
  cat product.json | records validate products -f -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := session.RequireFromCommand(cmd)
			if err != nil {
				return err
			}
			return runValidate(cmd, sc, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Payload file (JSON or YAML, - for stdin)")
	cmd.Flags().StringVar(&opts.format, "format", string(records.FormatTyped), "Value format (typed or simple)")
	addOutputFlag(cmd, &opts.output, outputTable)
	_ = cmd.MarkFlagRequired("file")

	return withSession(cmd, root)
}

func runValidate(cmd *cobra.Command, sc *session.Context, args []string, opts *validateOptions) error {
	format, err := records.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	props, err := readPayload(opts.file)
	if err != nil {
		return err
	}
	svc, err := resolveService(sc, args, "Select collection")
	if err != nil {
		return err
	}

	res, err := svc.Validate(cmd.Context(), records.Write{Properties: props, Format: format})
	if err != nil {
		return err
	}

	if err := render(cmd.OutOrStdout(), opts.output, res, func(w io.Writer) error {
		if res.Valid {
			prompts.PrintResult([]prompts.ResultField{
				{Label: "Collection", Value: svc.Name()},
				{Label: "Fields", Value: fmt.Sprint(len(props))},
			}, "✓ Payload is valid")
		}
		prompts.PrintProblems(res.Errors, res.Warnings)
		return nil
	}); err != nil {
		return err
	}
	if !res.Valid {
		return errInvalidPayload
	}
	return nil
}
