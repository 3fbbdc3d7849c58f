// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/dacolabs/records/internal/prompts"
	"github.com/dacolabs/records/internal/records"
	"github.com/dacolabs/records/internal/session"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by -o.
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"

	outputMarkdown = "markdown"
)

func addOutputFlag(cmd *cobra.Command, dst *string, def string) {
	cmd.Flags().StringVarP(dst, "output", "o", def, "Output format (table, json, yaml)")
}

// render writes v as JSON or YAML, or calls table for the default format.
func render(w io.Writer, format string, v any, table func(io.Writer) error) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		plain, err := plainOf(v)
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer func() { _ = enc.Close() }()
		return enc.Encode(plain)
	case outputTable, "text", "":
		if table == nil {
			return render(w, outputJSON, v, nil)
		}
		return table(w)
	}
	return fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
}

// plainOf round-trips v through JSON so YAML output uses the same keys as
// the HTTP API.
func plainOf(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// cell formats a value for a table column.
func cell(v any, width int) string {
	var s string
	switch x := v.(type) {
	case nil:
		s = ""
	case string:
		s = x
	case []string:
		s = strings.Join(x, ", ")
	case []any:
		parts := make([]string, 0, len(x))
		for _, e := range x {
			parts = append(parts, cell(e, width))
		}
		s = strings.Join(parts, ", ")
	case map[string]any:
		if start, ok := x["start"].(string); ok {
			s = start
			if end, ok := x["end"].(string); ok && end != "" {
				s += " → " + end
			}
			break
		}
		data, _ := json.Marshal(x)
		s = string(data)
	default:
		s = fmt.Sprint(x)
	}
	s = strings.ReplaceAll(s, "\n", " ")
	if s == "" {
		return "-"
	}
	if utf8.RuneCountInString(s) > width {
		s = string([]rune(s)[:width-3]) + "..."
	}
	return s
}

// resolveService returns the service named by args[0], or asks the user to
// pick one when no argument is given.
func resolveService(sc *session.Context, args []string, title string) (*records.Service, error) {
	if len(args) > 0 {
		return sc.Registry.Get(args[0])
	}
	options := make([]prompts.CollectionOption, 0, sc.Registry.Len())
	for _, svc := range sc.Registry.Services() {
		options = append(options, prompts.CollectionOption{Name: svc.Name(), Label: svc.Label()})
	}
	name, err := prompts.SelectCollection(title, options)
	if err != nil {
		return nil, err
	}
	return sc.Registry.Get(name)
}

// readPayload reads a JSON or YAML object from path, or stdin when path is "-".
func readPayload(path string) (map[string]any, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path) //nolint:gosec // path is provided by the user
	}
	if err != nil {
		return nil, fmt.Errorf("reading payload: %w", err)
	}

	var payload map[string]any
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parsing payload: %w", err)
	}
	if payload == nil {
		return nil, fmt.Errorf("payload %s is empty", path)
	}
	if props, ok := payload["properties"].(map[string]any); ok && len(payload) == 1 {
		return props, nil
	}
	return payload, nil
}

// parseJSONFlag decodes a JSON flag value into dst.
func parseJSONFlag(name, value string, dst any) error {
	if value == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(value), dst); err != nil {
		return fmt.Errorf("--%s: %w", name, err)
	}
	return nil
}
