// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package sandbox

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dacolabs/records/internal/property"
	"github.com/dacolabs/records/internal/remote"
)

const maxPageSize = 100

type predicate func(remote.Record) bool

// query evaluates the platform's filter and sort language against in-memory
// records. Only the subset the service forwards is supported.
type query struct {
	schema map[string]remote.PropertySchema
	now    time.Time
}

func applyQuery(records []remote.Record, schema []remote.PropertySchema, params remote.QueryParams, now time.Time) ([]remote.Record, error) {
	q := query{schema: make(map[string]remote.PropertySchema, len(schema)), now: now}
	for _, p := range schema {
		q.schema[p.Name] = p
	}

	out := records
	if len(params.Filter) > 0 {
		match, err := q.compile(params.Filter)
		if err != nil {
			return nil, err
		}
		out = make([]remote.Record, 0, len(records))
		for _, rec := range records {
			if match(rec) {
				out = append(out, rec)
			}
		}
	}

	if len(params.Sorts) > 0 {
		keys, err := q.sortKeys(params.Sorts)
		if err != nil {
			return nil, err
		}
		sort.SliceStable(out, func(i, j int) bool {
			for _, k := range keys {
				c := compareSortable(k.value(out[i]), k.value(out[j]))
				if c == 0 {
					continue
				}
				if k.descending {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}
	return out, nil
}

func page(records []remote.Record, cursor string, size int) (*remote.QueryResult, error) {
	if size <= 0 || size > maxPageSize {
		size = maxPageSize
	}
	start := 0
	if cursor != "" {
		start = -1
		for i, rec := range records {
			if rec.ID == cursor {
				start = i
				break
			}
		}
		if start < 0 {
			return nil, validationError("start_cursor %s is not valid for this query.", cursor)
		}
	}

	end := start + size
	res := &remote.QueryResult{Results: []remote.Record{}}
	if end >= len(records) {
		res.Results = append(res.Results, records[start:]...)
		return res, nil
	}
	res.Results = append(res.Results, records[start:end]...)
	res.HasMore = true
	res.NextCursor = records[end].ID
	return res, nil
}

func (q query) compile(f map[string]any) (predicate, error) {
	if subs, ok := f["and"]; ok {
		preds, err := q.compileAll(subs)
		if err != nil {
			return nil, err
		}
		return func(r remote.Record) bool {
			for _, p := range preds {
				if !p(r) {
					return false
				}
			}
			return true
		}, nil
	}
	if subs, ok := f["or"]; ok {
		preds, err := q.compileAll(subs)
		if err != nil {
			return nil, err
		}
		return func(r remote.Record) bool {
			for _, p := range preds {
				if p(r) {
					return true
				}
			}
			return false
		}, nil
	}

	if ts, ok := f["timestamp"].(string); ok {
		cond, ok := asObject(f[ts])
		if !ok {
			return nil, validationError("filter on %s is missing its condition.", ts)
		}
		var field func(remote.Record) any
		switch ts {
		case "created_time":
			field = func(r remote.Record) any { return r.CreatedTime }
		case "last_edited_time":
			field = func(r remote.Record) any { return r.LastEditedTime }
		default:
			return nil, validationError("timestamp %s is not supported.", ts)
		}
		return q.condition(property.TypeDate, cond, field)
	}

	name, ok := f["property"].(string)
	if !ok {
		return nil, validationError("filter should define property, timestamp, and or or.")
	}
	p, ok := q.schema[name]
	if !ok {
		return nil, validationError("Could not find property with name or id: %s", name)
	}
	var cond map[string]any
	for key, v := range f {
		if key == "property" {
			continue
		}
		if c, ok := asObject(v); ok {
			cond = c
			break
		}
	}
	if cond == nil {
		return nil, validationError("filter on %s is missing its condition.", name)
	}
	t := property.ParseType(p.Type)
	return q.condition(t, cond, func(r remote.Record) any { return scalarOf(t, r.Properties[name]) })
}

func (q query) compileAll(v any) ([]predicate, error) {
	subs, ok := v.([]any)
	if !ok {
		if typed, ok := v.([]map[string]any); ok {
			for _, s := range typed {
				subs = append(subs, s)
			}
		} else {
			return nil, validationError("compound filter should be a list.")
		}
	}
	preds := make([]predicate, 0, len(subs))
	for _, s := range subs {
		m, ok := asObject(s)
		if !ok {
			return nil, validationError("compound filter entries should be objects.")
		}
		p, err := q.compile(m)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	return preds, nil
}

// condition builds a predicate for a single {operator: operand} object.
func (q query) condition(t property.Type, cond map[string]any, field func(remote.Record) any) (predicate, error) {
	if len(cond) != 1 {
		return nil, validationError("filter condition should have exactly one operator.")
	}
	var (
		op   string
		want any
	)
	for k, v := range cond {
		op, want = k, v
	}

	switch op {
	case "is_empty":
		return func(r remote.Record) bool { return isEmpty(field(r)) }, nil
	case "is_not_empty":
		return func(r remote.Record) bool { return !isEmpty(field(r)) }, nil
	case "equals":
		return func(r remote.Record) bool { return equals(t, field(r), want) }, nil
	case "does_not_equal":
		return func(r remote.Record) bool { return !equals(t, field(r), want) }, nil
	case "contains":
		return func(r remote.Record) bool { return contains(field(r), want) }, nil
	case "does_not_contain":
		return func(r remote.Record) bool { return !contains(field(r), want) }, nil
	case "starts_with":
		return func(r remote.Record) bool {
			s, _ := field(r).(string)
			return strings.HasPrefix(strings.ToLower(s), strings.ToLower(toText(want)))
		}, nil
	case "ends_with":
		return func(r remote.Record) bool {
			s, _ := field(r).(string)
			return strings.HasSuffix(strings.ToLower(s), strings.ToLower(toText(want)))
		}, nil
	case "greater_than", "after":
		return ordered(field, want, func(c int) bool { return c > 0 }), nil
	case "greater_than_or_equal_to", "on_or_after":
		return ordered(field, want, func(c int) bool { return c >= 0 }), nil
	case "less_than", "before":
		return ordered(field, want, func(c int) bool { return c < 0 }), nil
	case "less_than_or_equal_to", "on_or_before":
		return ordered(field, want, func(c int) bool { return c <= 0 }), nil
	case "past_week", "past_month", "past_year", "next_week", "next_month", "next_year":
		from, to := q.window(op)
		return func(r remote.Record) bool {
			s, ok := field(r).(string)
			if !ok || s == "" {
				return false
			}
			return compareText(s, from) >= 0 && compareText(s, to) <= 0
		}, nil
	}
	return nil, validationError("%s is not a supported filter operator.", op)
}

func (q query) window(op string) (string, string) {
	now := q.now.UTC()
	var other time.Time
	switch op {
	case "past_week":
		other = now.AddDate(0, 0, -7)
	case "past_month":
		other = now.AddDate(0, -1, 0)
	case "past_year":
		other = now.AddDate(-1, 0, 0)
	case "next_week":
		other = now.AddDate(0, 0, 7)
	case "next_month":
		other = now.AddDate(0, 1, 0)
	default:
		other = now.AddDate(1, 0, 0)
	}
	a, b := other.Format(time.RFC3339), now.Format(time.RFC3339)
	if strings.HasPrefix(op, "next") {
		a, b = b, a
	}
	return a, b
}

type sortKey struct {
	value      func(remote.Record) any
	descending bool
}

func (q query) sortKeys(sorts []map[string]any) ([]sortKey, error) {
	keys := make([]sortKey, 0, len(sorts))
	for _, s := range sorts {
		k := sortKey{}
		switch dir, _ := s["direction"].(string); dir {
		case "", "ascending":
		case "descending":
			k.descending = true
		default:
			return nil, validationError("sort direction %s is not valid.", dir)
		}

		if ts, ok := s["timestamp"].(string); ok {
			switch ts {
			case "created_time":
				k.value = func(r remote.Record) any { return r.CreatedTime }
			case "last_edited_time":
				k.value = func(r remote.Record) any { return r.LastEditedTime }
			default:
				return nil, validationError("timestamp %s is not supported.", ts)
			}
			keys = append(keys, k)
			continue
		}

		name, _ := s["property"].(string)
		p, ok := q.schema[name]
		if !ok {
			return nil, validationError("Could not find sort property with name or id: %s", name)
		}
		t := property.ParseType(p.Type)
		k.value = func(r remote.Record) any { return scalarOf(t, r.Properties[name]) }
		keys = append(keys, k)
	}
	return keys, nil
}

// scalarOf reduces a read-form value to a string, float64, bool, []string or nil.
func scalarOf(t property.Type, v property.Value) any {
	if v == nil {
		return nil
	}
	switch t {
	case property.TypeDate:
		if d, ok := property.Decode(v).(map[string]any); ok {
			s, _ := d["start"].(string)
			if s != "" {
				return s
			}
		}
		return nil
	case property.TypeRelation:
		var ids []string
		items, _ := v["relation"].([]any)
		for _, item := range items {
			if m, ok := item.(map[string]any); ok {
				if id, ok := m["id"].(string); ok {
					ids = append(ids, id)
				}
			}
		}
		return ids
	}
	return property.Decode(v)
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case []string:
		return len(x) == 0
	case []any:
		return len(x) == 0
	case map[string]any:
		return len(x) == 0
	}
	return false
}

func equals(t property.Type, actual, want any) bool {
	switch a := actual.(type) {
	case nil:
		return want == nil
	case bool:
		b, ok := want.(bool)
		return ok && a == b
	case float64:
		b, ok := toFloat(want)
		return ok && a == b
	case string:
		if t == property.TypeDate {
			return compareText(a, toText(want)) == 0
		}
		return a == toText(want)
	case []string:
		return contains(a, want)
	}
	return false
}

func contains(actual, want any) bool {
	switch a := actual.(type) {
	case string:
		return strings.Contains(strings.ToLower(a), strings.ToLower(toText(want)))
	case []string:
		w := toText(want)
		for _, s := range a {
			if s == w {
				return true
			}
		}
	}
	return false
}

func ordered(field func(remote.Record) any, want any, ok func(int) bool) predicate {
	return func(r remote.Record) bool {
		switch a := field(r).(type) {
		case float64:
			b, valid := toFloat(want)
			if !valid {
				return false
			}
			return ok(compareFloat(a, b))
		case string:
			if a == "" {
				return false
			}
			return ok(compareText(a, toText(want)))
		}
		return false
	}
}

// compareText compares ISO dates and timestamps; when either side is a bare
// date only the date part is compared.
func compareText(a, b string) int {
	if len(a) == 10 || len(b) == 10 {
		if len(a) > 10 {
			a = a[:10]
		}
		if len(b) > 10 {
			b = b[:10]
		}
	}
	return strings.Compare(a, b)
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// compareSortable orders empty values last regardless of direction.
func compareSortable(a, b any) int {
	ae, be := isEmpty(a), isEmpty(b)
	switch {
	case ae && be:
		return 0
	case ae:
		return 1
	case be:
		return -1
	}
	switch x := a.(type) {
	case float64:
		if y, ok := b.(float64); ok {
			return compareFloat(x, y)
		}
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(strings.ToLower(x), strings.ToLower(y))
		}
	case bool:
		if y, ok := b.(bool); ok && x != y {
			if x {
				return 1
			}
			return -1
		}
		return 0
	}
	return 0
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

func toText(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	}
	b, _ := json.Marshal(v)
	return string(b)
}
