// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package commands

import (
	"fmt"
	"io"

	"github.com/dacolabs/records/internal/version"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Example: `  # Version line
  records version

  # Build details as JSON
  records version -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return render(cmd.OutOrStdout(), output, version.Get(), func(w io.Writer) error {
				_, err := fmt.Fprintln(w, version.Info())
				return err
			})
		},
	}

	addOutputFlag(cmd, &output, outputTable)

	return cmd
}
