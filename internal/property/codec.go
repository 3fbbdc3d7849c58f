// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package property

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is a property value in the remote platform's typed form, e.g.
// {"id": "xY", "type": "number", "number": 100} as read, or {"number": 100} as written.
type Value map[string]any

// Type returns the type of the value and its raw name. The "type" key wins;
// write-form values without it are typed by the first known type key they carry.
func (v Value) Type() (Type, string) {
	if name, ok := v["type"].(string); ok {
		return ParseType(name), name
	}
	for key := range v {
		if t := ParseType(key); t != TypeUnknown {
			return t, key
		}
	}
	return TypeUnknown, ""
}

// Decode converts a typed value into its simplified scalar form.
// It never fails: missing or malformed content yields the type's zero scalar.
func Decode(v Value) any {
	if v == nil {
		return nil
	}
	t, _ := v.Type()
	switch t {
	case TypeTitle, TypeText:
		return firstRunText(v[t.String()])
	case TypeNumber, TypeCheckbox:
		return v[t.String()]
	case TypeSelect:
		if m, ok := asMap(v["select"]); ok {
			if name, ok := m["name"].(string); ok {
				return name
			}
		}
		return nil
	case TypeMultiSelect:
		names := []string{}
		for _, item := range asSlice(v["multi_select"]) {
			if m, ok := asMap(item); ok {
				if name, ok := m["name"].(string); ok {
					names = append(names, name)
				}
			}
		}
		return names
	case TypeDate:
		// start/end are kept together so callers can use range semantics.
		return v["date"]
	case TypeURL, TypeEmail, TypePhone:
		if s, ok := v[t.String()].(string); ok {
			return s
		}
		return nil
	case TypeUnknown:
		return map[string]any(v)
	default:
		return v[t.String()]
	}
}

// Encode converts a simplified scalar into the typed write form for t.
// The boolean is false when t has no write form; the scalar is then passed
// through if it already is an object, and an empty Value is returned otherwise.
func Encode(t Type, scalar any) (Value, bool) {
	key := t.String()
	switch t {
	case TypeTitle, TypeText:
		return Value{key: textRuns(toString(scalar))}, true
	case TypeNumber:
		return Value{key: toNumber(scalar)}, true
	case TypeSelect:
		if scalar == nil {
			return Value{key: nil}, true
		}
		return Value{key: map[string]any{"name": toString(scalar)}}, true
	case TypeMultiSelect:
		items := []any{}
		for _, s := range asSlice(scalar) {
			items = append(items, map[string]any{"name": toString(s)})
		}
		return Value{key: items}, true
	case TypeDate:
		switch d := scalar.(type) {
		case nil:
			return Value{key: nil}, true
		case map[string]any:
			return Value{key: d}, true
		case Value:
			return Value{key: map[string]any(d)}, true
		default:
			return Value{key: map[string]any{"start": toString(d)}}, true
		}
	case TypeCheckbox:
		return Value{key: toBool(scalar)}, true
	case TypeURL, TypeEmail, TypePhone:
		if scalar == nil {
			return Value{key: nil}, true
		}
		return Value{key: toString(scalar)}, true
	case TypeRelation:
		items := []any{}
		for _, id := range asSlice(scalar) {
			items = append(items, map[string]any{"id": toString(id)})
		}
		return Value{key: items}, true
	default:
		if m, ok := asMap(scalar); ok {
			return Value(m), false
		}
		return Value{}, false
	}
}

// Zero returns the fixed zero write value for t.
func Zero(t Type) Value {
	key := t.String()
	switch t {
	case TypeTitle, TypeText:
		return Value{key: textRuns("")}
	case TypeNumber:
		return Value{key: float64(0)}
	case TypeSelect, TypeDate:
		return Value{key: nil}
	case TypeMultiSelect, TypeRelation:
		return Value{key: []any{}}
	case TypeCheckbox:
		return Value{key: false}
	case TypeURL, TypeEmail, TypePhone:
		return Value{key: ""}
	default:
		return Value{}
	}
}

// Simplify decodes every property of a record.
func Simplify(props map[string]Value) map[string]any {
	out := make(map[string]any, len(props))
	for name, v := range props {
		out[name] = Decode(v)
	}
	return out
}

// TitleText joins the text of every run of a title value. It inspects the
// value's shape directly and does not go through Decode.
func TitleText(v any) string {
	m, ok := asMap(v)
	if !ok {
		return ""
	}
	var b strings.Builder
	for _, run := range asSlice(m["title"]) {
		b.WriteString(runText(run))
	}
	return b.String()
}

func textRuns(s string) []any {
	return []any{map[string]any{"text": map[string]any{"content": s}}}
}

func firstRunText(v any) string {
	runs := asSlice(v)
	if len(runs) == 0 {
		return ""
	}
	return runText(runs[0])
}

func runText(run any) string {
	m, ok := asMap(run)
	if !ok {
		return ""
	}
	if s, ok := m["plain_text"].(string); ok {
		return s
	}
	if text, ok := asMap(m["text"]); ok {
		if s, ok := text["content"].(string); ok {
			return s
		}
	}
	return ""
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Value:
		return m, true
	}
	return nil, false
}

func asSlice(v any) []any {
	switch s := v.(type) {
	case []any:
		return s
	case []string:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out
	case []map[string]any:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out
	}
	return nil
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case json.Number:
		return s.String()
	default:
		return fmt.Sprint(s)
	}
}

func toNumber(v any) float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		f, _ = n.Float64()
	case string:
		f, _ = strconv.ParseFloat(strings.TrimSpace(n), 64)
	case bool:
		if n {
			f = 1
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func toBool(v any) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case string:
		if parsed, err := strconv.ParseBool(strings.TrimSpace(b)); err == nil {
			return parsed
		}
		return b != ""
	case float64:
		return b != 0 && !math.IsNaN(b)
	case int:
		return b != 0
	case int64:
		return b != 0
	default:
		return true
	}
}
