// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package contract_test

import (
	"testing"

	"github.com/dacolabs/records/internal/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdown(t *testing.T) {
	client := productsClient()
	client.AddRecord("r1", map[string]any{"Name": "Widget", "Price": 100})

	out, err := contract.Markdown(contract.Generate(analyze(t, client)))
	require.NoError(t, err)
	md := string(out)

	tests := []struct {
		name string
		want string
	}{
		{"heading", "# Products"},
		{"collection id", "Collection ID: `db1`"},
		{"required title", "| Name | yes |"},
		{"optional field", "| Price | no |"},
		{"number operators", "| Price | number | `equals`, `does_not_equal`, `greater_than`"},
		{"multi select not sortable", "| Tags | multi_select | `contains`, `does_not_contain`, `is_empty`, `is_not_empty` | no |"},
		{"example value", `"number": 100`},
		{"delete note", contract.ArchiveNote},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, md, tt.want)
		})
	}
}
