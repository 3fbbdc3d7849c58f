// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package commands

import (
	"github.com/dacolabs/records/internal/contract"
	"github.com/dacolabs/records/internal/session"
	"github.com/spf13/cobra"
)

type contractOptions struct {
	jsonSchema bool
	output     string
}

func newContractCmd(root *rootOptions) *cobra.Command {
	opts := &contractOptions{}

	cmd := &cobra.Command{
		Use:   "contract [COLLECTION]",
		Short: "Generate the CRUD contract of a collection",
		Long: `Generate a machine-readable description of how to create, read, update and
delete records of a collection: required fields, filter operators, sort keys and
example payloads. With --json-schema, print the JSON Schema of a create payload.
Use -o markdown for human-readable documentation.`,
		Example: `  # Contract as JSON
  records contract products

  # Contract as YAML
  records contract products -o yaml

  # Contract as markdown documentation
  records contract products -o markdown > docs/products.md

  # JSON Schema of a create payload
  records contract products --json-schema`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := session.RequireFromCommand(cmd)
			if err != nil {
				return err
			}
			return runContract(cmd, sc, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonSchema, "json-schema", false, "Print the JSON Schema of a create payload")
	cmd.Flags().StringVarP(&opts.output, "output", "o", outputJSON, "Output format (json, yaml, markdown)")

	return withSession(cmd, root)
}

func runContract(cmd *cobra.Command, sc *session.Context, args []string, opts *contractOptions) error {
	svc, err := resolveService(sc, args, "Select collection")
	if err != nil {
		return err
	}
	if opts.jsonSchema {
		js, err := svc.CreateSchema(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), opts.output, js, nil)
	}
	ct, err := svc.GenerateContract(cmd.Context())
	if err != nil {
		return err
	}
	if opts.output == outputMarkdown {
		md, err := contract.Markdown(ct)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(md)
		return err
	}
	return render(cmd.OutOrStdout(), opts.output, ct, nil)
}
