// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package contract

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
)

//go:embed contract.md.tmpl
var tmplFS embed.FS

var funcMap = template.FuncMap{
	"json": indentJSON,
	"join": joinCode,
}

var tmpl = template.Must(template.New("contract.md.tmpl").Funcs(funcMap).ParseFS(tmplFS, "contract.md.tmpl"))

// Markdown renders c as human-readable documentation.
func Markdown(c *Contract) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "contract.md.tmpl", c); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

func indentJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// joinCode formats names as a comma-separated list of inline code spans.
func joinCode(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "`" + n + "`"
	}
	return strings.Join(quoted, ", ")
}
