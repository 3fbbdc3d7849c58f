// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package commands

import (
	"fmt"
	"io"
	"slices"

	"github.com/dacolabs/records/internal/session"
	"github.com/spf13/cobra"
)

type collectionsListOptions struct {
	output string
}

type collectionInfo struct {
	Name       string `json:"name"`
	Label      string `json:"label,omitempty"`
	ID         string `json:"id,omitempty"`
	IDEnv      string `json:"idEnv,omitempty"`
	Configured bool   `json:"configured"`
}

func registerCollectionsCmd(parent *cobra.Command, root *rootOptions) {
	cmd := &cobra.Command{
		Use:   "collections",
		Short: "Inspect configured collections",
	}

	cmd.AddCommand(newCollectionsListCmd())

	parent.AddCommand(withSession(cmd, root))
}

func newCollectionsListCmd() *cobra.Command {
	opts := &collectionsListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List configured collections",
		Long:  `List the collections in records.yaml with their resolved ids and API paths.`,
		Example: `  # List collections
  records collections list

  # As JSON
  records collections list -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := session.RequireFromCommand(cmd)
			if err != nil {
				return err
			}
			return runCollectionsList(cmd.OutOrStdout(), sc, opts)
		},
	}

	addOutputFlag(cmd, &opts.output, outputTable)

	return cmd
}

func runCollectionsList(w io.Writer, sc *session.Context, opts *collectionsListOptions) error {
	missing := sc.Config.Missing()
	infos := make([]collectionInfo, 0, len(sc.Config.Collections))
	for _, name := range sc.Config.CollectionNames() {
		col := sc.Config.Collections[name]
		infos = append(infos, collectionInfo{
			Name:       name,
			Label:      col.Label,
			ID:         col.ID,
			IDEnv:      col.IDEnv,
			Configured: !slices.Contains(missing, name),
		})
	}

	return render(w, opts.output, infos, func(w io.Writer) error {
		if len(infos) == 0 {
			_, err := fmt.Fprintln(w, "No collections configured.")
			return err
		}
		tw := newTable(w)
		_, _ = fmt.Fprintln(tw, "NAME\tLABEL\tID\tPATH")
		for _, info := range infos {
			id := info.ID
			switch {
			case info.Configured:
			case info.IDEnv != "":
				id = "(missing " + info.IDEnv + ")"
			default:
				id = "(missing)"
			}
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t/api/%s\n", info.Name, cell(info.Label, 30), id, info.Name)
		}
		return tw.Flush()
	})
}
