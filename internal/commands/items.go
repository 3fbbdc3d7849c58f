// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/dacolabs/records/internal/prompts"
	"github.com/dacolabs/records/internal/property"
	"github.com/dacolabs/records/internal/records"
	"github.com/dacolabs/records/internal/remote"
	"github.com/dacolabs/records/internal/session"
	"github.com/spf13/cobra"
)

// maxTableColumns bounds the property columns of items list.
const maxTableColumns = 5

func registerItemsCmd(parent *cobra.Command, root *rootOptions) {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Query and modify collection records",
	}

	cmd.AddCommand(newItemsListCmd())
	cmd.AddCommand(newItemsGetCmd())
	cmd.AddCommand(newItemsCreateCmd())
	cmd.AddCommand(newItemsUpdateCmd())
	cmd.AddCommand(newItemsArchiveCmd())

	parent.AddCommand(withSession(cmd, root))
}

type itemsListOptions struct {
	filter     string
	sorts      string
	pageSize   int
	cursor     string
	simplified bool
	output     string
}

func newItemsListCmd() *cobra.Command {
	opts := &itemsListOptions{}

	cmd := &cobra.Command{
		Use:   "list [COLLECTION]",
		Short: "Query records of a collection",
		Long: `Query a collection. Filters and sorts use the platform's query syntax and are
forwarded unchanged; run "records contract" to see the operators of each property.`,
		Example: `  # First page of products
  records items list products

  # Filtered and sorted
  records items list products --filter '{"property":"Price","number":{"greater_than":50}}' \
    --sorts '[{"property":"Name","direction":"ascending"}]'

  # Simplified values as JSON
  records items list products --simplified -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := session.RequireFromCommand(cmd)
			if err != nil {
				return err
			}
			return runItemsList(cmd, sc, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.filter, "filter", "", "Filter as JSON")
	cmd.Flags().StringVar(&opts.sorts, "sorts", "", "Sorts as a JSON array")
	cmd.Flags().IntVar(&opts.pageSize, "page-size", 0, "Page size (platform default when 0)")
	cmd.Flags().StringVar(&opts.cursor, "cursor", "", "Start cursor from a previous page")
	cmd.Flags().BoolVar(&opts.simplified, "simplified", false, "Decode property values to scalars (json/yaml output)")
	addOutputFlag(cmd, &opts.output, outputTable)

	return cmd
}

func runItemsList(cmd *cobra.Command, sc *session.Context, args []string, opts *itemsListOptions) error {
	var q records.Query
	if err := parseJSONFlag("filter", opts.filter, &q.Filter); err != nil {
		return err
	}
	if err := parseJSONFlag("sorts", opts.sorts, &q.Sorts); err != nil {
		return err
	}
	q.PageSize = opts.pageSize
	q.StartCursor = opts.cursor

	svc, err := resolveService(sc, args, "Select collection to query")
	if err != nil {
		return err
	}
	res, err := svc.List(cmd.Context(), q)
	if err != nil {
		return err
	}

	var out any = res
	if opts.simplified {
		out = map[string]any{
			"records":    records.SimplifyAll(res.Records),
			"count":      res.Count,
			"hasMore":    res.HasMore,
			"nextCursor": res.NextCursor,
		}
	}
	return render(cmd.OutOrStdout(), opts.output, out, func(w io.Writer) error {
		columns, err := listColumns(cmd, svc)
		if err != nil {
			return err
		}
		return printRecords(w, res, columns)
	})
}

// listColumns returns the first properties of the collection in schema order.
func listColumns(cmd *cobra.Command, svc *records.Service) ([]string, error) {
	snap, err := svc.AnalyzeSchema(cmd.Context(), false)
	if err != nil {
		return nil, err
	}
	columns := snap.PropertyOrder
	if len(columns) > maxTableColumns {
		columns = columns[:maxTableColumns]
	}
	return columns, nil
}

func printRecords(w io.Writer, res *records.ListResult, columns []string) error {
	tw := newTable(w)
	_, _ = fmt.Fprint(tw, "ID")
	for _, c := range columns {
		_, _ = fmt.Fprintf(tw, "\t%s", c)
	}
	_, _ = fmt.Fprintln(tw)

	for _, rec := range res.Records {
		_, _ = fmt.Fprint(tw, rec.ID)
		for _, c := range columns {
			_, _ = fmt.Fprintf(tw, "\t%s", cell(property.Decode(rec.Properties[c]), 24))
		}
		_, _ = fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\n%d records", res.Count)
	if res.HasMore {
		_, err = fmt.Fprintf(w, " (more: --cursor %s)", res.NextCursor)
	}
	_, _ = fmt.Fprintln(w)
	return err
}

type itemsGetOptions struct {
	simplified bool
	output     string
}

func newItemsGetCmd() *cobra.Command {
	opts := &itemsGetOptions{}

	cmd := &cobra.Command{
		Use:   "get COLLECTION ID",
		Short: "Show one record",
		Long:  `Retrieve a record by id. Archived records are returned too.`,
		Example: `  # Show a record
  records items get products 8f2c0d0e9b7a4e36a3f1c2b5d6e7f801

  # Raw typed values as JSON
  records items get products 8f2c0d0e9b7a4e36a3f1c2b5d6e7f801 -o json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := session.RequireFromCommand(cmd)
			if err != nil {
				return err
			}
			return runItemsGet(cmd, sc, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.simplified, "simplified", false, "Decode property values to scalars (json/yaml output)")
	addOutputFlag(cmd, &opts.output, outputTable)

	return cmd
}

func runItemsGet(cmd *cobra.Command, sc *session.Context, args []string, opts *itemsGetOptions) error {
	svc, err := sc.Registry.Get(args[0])
	if err != nil {
		return err
	}
	rec, err := svc.Get(cmd.Context(), args[1])
	if err != nil {
		return err
	}

	var out any = rec
	if opts.simplified {
		out = records.Simplify(*rec)
	}
	return render(cmd.OutOrStdout(), opts.output, out, func(w io.Writer) error {
		return printRecord(w, rec)
	})
}

func printRecord(w io.Writer, rec *remote.Record) error {
	_, _ = fmt.Fprintf(w, "ID:        %s\n", rec.ID)
	_, _ = fmt.Fprintf(w, "Created:   %s\n", rec.CreatedTime)
	_, _ = fmt.Fprintf(w, "Edited:    %s\n", rec.LastEditedTime)
	_, _ = fmt.Fprintf(w, "Archived:  %t\n", rec.Archived)
	if rec.URL != "" {
		_, _ = fmt.Fprintf(w, "URL:       %s\n", rec.URL)
	}
	_, _ = fmt.Fprintln(w)

	names := make([]string, 0, len(rec.Properties))
	for name := range rec.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := newTable(w)
	_, _ = fmt.Fprintln(tw, "PROPERTY\tTYPE\tVALUE")
	for _, name := range names {
		v := rec.Properties[name]
		_, typeName := v.Type()
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", name, typeName, cell(property.Decode(v), 60))
	}
	return tw.Flush()
}

type itemsWriteOptions struct {
	file           string
	format         string
	skipValidation bool
	output         string
}

func addWriteFlags(cmd *cobra.Command, opts *itemsWriteOptions) {
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Payload file (JSON or YAML, - for stdin)")
	cmd.Flags().StringVar(&opts.format, "format", string(records.FormatTyped), "Value format (typed or simple)")
	addOutputFlag(cmd, &opts.output, outputTable)
	_ = cmd.MarkFlagRequired("file")
}

func (o *itemsWriteOptions) write() (records.Write, error) {
	format, err := records.ParseFormat(o.format)
	if err != nil {
		return records.Write{}, err
	}
	props, err := readPayload(o.file)
	if err != nil {
		return records.Write{}, err
	}
	return records.Write{Properties: props, Format: format, SkipValidation: o.skipValidation}, nil
}

func newItemsCreateCmd() *cobra.Command {
	opts := &itemsWriteOptions{}

	cmd := &cobra.Command{
		Use:   "create [COLLECTION]",
		Short: "Create a record",
		Long: `Create a record from a payload file. The payload is validated against the
live schema first; invalid payloads are rejected before anything is written.`,
		Example: `  # Create from typed values
  records items create products -f product.json

  # Create from simplified values
  records items create products -f product.yaml --format simple`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := session.RequireFromCommand(cmd)
			if err != nil {
				return err
			}
			return runItemsCreate(cmd, sc, args, opts)
		},
	}

	addWriteFlags(cmd, opts)
	cmd.Flags().BoolVar(&opts.skipValidation, "skip-validation", false, "Send the payload without validating it")

	return cmd
}

func runItemsCreate(cmd *cobra.Command, sc *session.Context, args []string, opts *itemsWriteOptions) error {
	w, err := opts.write()
	if err != nil {
		return err
	}
	svc, err := resolveService(sc, args, "Select collection")
	if err != nil {
		return err
	}
	rec, err := svc.Create(cmd.Context(), w)
	if err != nil {
		return writeFailed(err)
	}
	return render(cmd.OutOrStdout(), opts.output, rec, func(io.Writer) error {
		prompts.PrintResult([]prompts.ResultField{
			{Label: "Collection", Value: svc.Name()},
			{Label: "ID", Value: rec.ID},
		}, "✓ Record created")
		return nil
	})
}

func newItemsUpdateCmd() *cobra.Command {
	opts := &itemsWriteOptions{}

	cmd := &cobra.Command{
		Use:   "update COLLECTION ID",
		Short: "Update properties of a record",
		Long:  `Apply a partial update: only the properties in the payload change.`,
		Example: `  # Update from simplified values
  records items update products 8f2c0d0e9b7a4e36a3f1c2b5d6e7f801 -f patch.yaml --format simple`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := session.RequireFromCommand(cmd)
			if err != nil {
				return err
			}
			return runItemsUpdate(cmd, sc, args, opts)
		},
	}

	addWriteFlags(cmd, opts)

	return cmd
}

func runItemsUpdate(cmd *cobra.Command, sc *session.Context, args []string, opts *itemsWriteOptions) error {
	w, err := opts.write()
	if err != nil {
		return err
	}
	svc, err := sc.Registry.Get(args[0])
	if err != nil {
		return err
	}
	rec, err := svc.Update(cmd.Context(), args[1], w)
	if err != nil {
		return writeFailed(err)
	}
	return render(cmd.OutOrStdout(), opts.output, rec, func(io.Writer) error {
		prompts.PrintResult([]prompts.ResultField{
			{Label: "Collection", Value: svc.Name()},
			{Label: "ID", Value: rec.ID},
			{Label: "Edited", Value: rec.LastEditedTime},
		}, "✓ Record updated")
		return nil
	})
}

type itemsArchiveOptions struct {
	force bool
}

func newItemsArchiveCmd() *cobra.Command {
	opts := &itemsArchiveOptions{}

	cmd := &cobra.Command{
		Use:     "archive COLLECTION ID",
		Aliases: []string{"delete"},
		Short:   "Archive a record",
		Long: `Archive a record. Archived records disappear from queries but can still be
retrieved by id; the platform offers no hard delete.`,
		Example: `  # Archive with confirmation
  records items archive products 8f2c0d0e9b7a4e36a3f1c2b5d6e7f801

  # Archive without confirmation
  records items archive products 8f2c0d0e9b7a4e36a3f1c2b5d6e7f801 --force`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := session.RequireFromCommand(cmd)
			if err != nil {
				return err
			}
			return runItemsArchive(cmd, sc, args, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}

func runItemsArchive(cmd *cobra.Command, sc *session.Context, args []string, opts *itemsArchiveOptions) error {
	svc, err := sc.Registry.Get(args[0])
	if err != nil {
		return err
	}

	if !opts.force {
		confirmed, err := prompts.Confirm(
			fmt.Sprintf("Archive record %s of %s?", args[1], svc.Label()),
			"Yes, archive", "No, cancel")
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	rec, err := svc.Archive(cmd.Context(), args[1])
	if err != nil {
		return err
	}
	prompts.PrintResult([]prompts.ResultField{
		{Label: "Collection", Value: svc.Name()},
		{Label: "ID", Value: rec.ID},
	}, "✓ Record archived")
	return nil
}

// writeFailed prints the problems of a rejected payload.
func writeFailed(err error) error {
	var ve *records.ValidationError
	if errors.As(err, &ve) {
		prompts.PrintProblems(ve.Result.Errors, ve.Result.Warnings)
		return errInvalidPayload
	}
	return err
}
