// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/dacolabs/records/internal/schema"
	"github.com/dacolabs/records/internal/session"
	"github.com/spf13/cobra"
)

type schemaOptions struct {
	refresh bool
	output  string
}

func newSchemaCmd(root *rootOptions) *cobra.Command {
	opts := &schemaOptions{}

	cmd := &cobra.Command{
		Use:   "schema [COLLECTION]",
		Short: "Analyze a collection's schema",
		Long: `Fetch a collection's property schema, sample its records, and show each
property's normalized type, validation rule, and observed values.
If no collection is given, an interactive selection prompt is shown.`,
		Example: `  # Show the schema of products
  records schema products

  # Bypass the schema cache
  records schema products --refresh

  # Full snapshot as JSON
  records schema products -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := session.RequireFromCommand(cmd)
			if err != nil {
				return err
			}
			return runSchema(cmd, sc, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "Re-analyze even if a cached snapshot exists")
	addOutputFlag(cmd, &opts.output, outputTable)

	return withSession(cmd, root)
}

func runSchema(cmd *cobra.Command, sc *session.Context, args []string, opts *schemaOptions) error {
	svc, err := resolveService(sc, args, "Select collection to analyze")
	if err != nil {
		return err
	}
	snap, err := svc.AnalyzeSchema(cmd.Context(), opts.refresh)
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), opts.output, snap, func(w io.Writer) error {
		return printSnapshot(w, snap)
	})
}

func printSnapshot(w io.Writer, snap *schema.Snapshot) error {
	_, _ = fmt.Fprintf(w, "Title:    %s\n", snap.Title)
	_, _ = fmt.Fprintf(w, "ID:       %s\n", snap.CollectionID)
	_, _ = fmt.Fprintf(w, "Sampled:  %d records\n\n", snap.TotalCount)

	tw := newTable(w)
	_, _ = fmt.Fprintln(tw, "PROPERTY\tTYPE\tREMOTE TYPE\tREQUIRED\tSAMPLES")
	for _, d := range snap.Descriptors() {
		required := "-"
		if d.Validation.Required {
			required = "yes"
		}
		samples := "-"
		if vt, ok := snap.ValueTypes[d.Name]; ok && vt.HasData {
			parts := make([]string, 0, len(vt.SampleValues))
			for _, v := range vt.SampleValues {
				parts = append(parts, cell(v, 20))
			}
			samples = strings.Join(parts, " | ")
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", d.Name, d.Type, d.RemoteType, required, samples)
	}
	return tw.Flush()
}
