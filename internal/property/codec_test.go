// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package property

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		typ    Type
		scalar any
	}{
		{"title", TypeTitle, "Widget"},
		{"text", TypeText, "a longer description"},
		{"number", TypeNumber, float64(42.5)},
		{"select", TypeSelect, "In stock"},
		{"multi select", TypeMultiSelect, []string{"red", "blue"}},
		{"empty multi select", TypeMultiSelect, []string{}},
		{"structured date", TypeDate, map[string]any{"start": "2024-03-01", "end": "2024-03-05"}},
		{"checkbox", TypeCheckbox, true},
		{"url", TypeURL, "https://example.com"},
		{"email", TypeEmail, "ops@example.com"},
		{"phone", TypePhone, "+1 555 0100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, ok := Encode(tt.typ, tt.scalar)
			require.True(t, ok)
			assert.Equal(t, tt.scalar, Decode(encoded))
		})
	}
}

func TestEncodeDecode_DateStartString(t *testing.T) {
	encoded, ok := Encode(TypeDate, "2024-03-01")
	require.True(t, ok)
	assert.Equal(t, Value{"date": map[string]any{"start": "2024-03-01"}}, encoded)

	decoded, ok := Decode(encoded).(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2024-03-01", decoded["start"])
}

func TestDecode_ReadForm(t *testing.T) {
	raw := `{
		"Name":   {"id": "title", "type": "title", "title": [{"plain_text": "Lamp"}, {"plain_text": " shade"}]},
		"Price":  {"id": "a1", "type": "number", "number": 100},
		"Stock":  {"id": "a2", "type": "select", "select": null},
		"Tags":   {"id": "a3", "type": "multi_select", "multi_select": [{"name": "home"}]},
		"Due":    {"id": "a4", "type": "date", "date": {"start": "2024-01-01", "end": null}},
		"Site":   {"id": "a5", "type": "url", "url": null},
		"Total":  {"id": "a6", "type": "formula", "formula": {"type": "number", "number": 3}},
		"Owner":  {"id": "a7", "type": "people", "people": []}
	}`
	var props map[string]Value
	require.NoError(t, json.Unmarshal([]byte(raw), &props))

	simple := Simplify(props)
	assert.Equal(t, "Lamp", simple["Name"])
	assert.Equal(t, float64(100), simple["Price"])
	assert.Nil(t, simple["Stock"])
	assert.Equal(t, []string{"home"}, simple["Tags"])
	assert.Equal(t, map[string]any{"start": "2024-01-01", "end": nil}, simple["Due"])
	assert.Nil(t, simple["Site"])
	assert.Equal(t, map[string]any{"type": "number", "number": float64(3)}, simple["Total"])
	assert.Equal(t, map[string]any(props["Owner"]), simple["Owner"])
}

func TestDecode_NeverPanicsOnMalformedValues(t *testing.T) {
	values := []Value{
		nil,
		{},
		{"type": "title", "title": "not a list"},
		{"type": "title", "title": []any{42}},
		{"type": "rich_text"},
		{"type": "select", "select": "raw"},
		{"type": "multi_select", "multi_select": map[string]any{"name": "x"}},
		{"type": "multi_select", "multi_select": []any{"x", map[string]any{"name": 7}}},
		{"type": "relation", "relation": []any{map[string]any{"id": "abc"}}},
		{"type": "rollup", "rollup": map[string]any{"type": "array", "array": []any{}}},
		{"type": 12},
	}
	for _, v := range values {
		assert.NotPanics(t, func() { Decode(v) })
	}

	assert.Equal(t, "", Decode(Value{"type": "title", "title": "not a list"}))
	assert.Equal(t, []string{}, Decode(Value{"type": "multi_select", "multi_select": []any{"x"}}))
}

func TestEncode_Coercion(t *testing.T) {
	tests := []struct {
		name   string
		typ    Type
		scalar any
		want   Value
	}{
		{"number from string", TypeNumber, "12.5", Value{"number": 12.5}},
		{"number from garbage", TypeNumber, "twelve", Value{"number": float64(0)}},
		{"number from int", TypeNumber, 7, Value{"number": float64(7)}},
		{"checkbox from string", TypeCheckbox, "false", Value{"checkbox": false}},
		{"checkbox from number", TypeCheckbox, float64(1), Value{"checkbox": true}},
		{"checkbox from nil", TypeCheckbox, nil, Value{"checkbox": false}},
		{"url from number", TypeURL, float64(3), Value{"url": "3"}},
		{"select nil clears", TypeSelect, nil, Value{"select": nil}},
		{"multi select from scalar", TypeMultiSelect, "solo", Value{"multi_select": []any{}}},
		{
			"relation ids", TypeRelation, []any{"p1", "p2"},
			Value{"relation": []any{map[string]any{"id": "p1"}, map[string]any{"id": "p2"}}},
		},
		{"relation from scalar", TypeRelation, "p1", Value{"relation": []any{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Encode(tt.typ, tt.scalar)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncode_NonWritableTypes(t *testing.T) {
	got, ok := Encode(TypeFormula, "x")
	assert.False(t, ok)
	assert.Equal(t, Value{}, got)

	got, ok = Encode(TypeUnknown, map[string]any{"people": []any{}})
	assert.False(t, ok)
	assert.Equal(t, Value{"people": []any{}}, got)
}

func TestZero(t *testing.T) {
	assert.Equal(t, Value{"number": float64(0)}, Zero(TypeNumber))
	assert.Equal(t, Value{"checkbox": false}, Zero(TypeCheckbox))
	assert.Equal(t, Value{"multi_select": []any{}}, Zero(TypeMultiSelect))
	assert.Equal(t, Value{"date": nil}, Zero(TypeDate))
	assert.Equal(t, "", Decode(Zero(TypeText)))
	assert.Equal(t, Value{}, Zero(TypeRollup))
}

func TestTitleText(t *testing.T) {
	assert.Equal(t, "Hello world", TitleText(map[string]any{
		"title": []any{
			map[string]any{"text": map[string]any{"content": "Hello"}},
			map[string]any{"plain_text": " world"},
		},
	}))
	assert.Equal(t, "", TitleText("Hello"))
	assert.Equal(t, "", TitleText(map[string]any{"title": []any{}}))
}
