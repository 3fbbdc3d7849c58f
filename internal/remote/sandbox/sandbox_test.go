// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package sandbox_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dacolabs/records/internal/property"
	"github.com/dacolabs/records/internal/remote"
	"github.com/dacolabs/records/internal/remote/sandbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tickingClock() func() time.Time {
	t := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func seededStore(t *testing.T) *sandbox.Store {
	t.Helper()
	store, err := sandbox.Open(sandbox.MemoryDSN, sandbox.WithClock(tickingClock()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	seed, err := sandbox.LoadSeed("testdata/seed.yaml")
	require.NoError(t, err)
	res, err := store.Apply(context.Background(), seed)
	require.NoError(t, err)
	assert.Equal(t, sandbox.SeedResult{Collections: 1, Records: 3}, res)
	return store
}

func names(res *remote.QueryResult) []string {
	out := make([]string, 0, len(res.Results))
	for _, rec := range res.Results {
		out = append(out, property.Decode(rec.Properties["Name"]).(string))
	}
	return out
}

func TestStore_RetrieveCollection(t *testing.T) {
	store := seededStore(t)

	col, err := store.RetrieveCollection(context.Background(), "products")
	require.NoError(t, err)
	assert.Equal(t, "Products", col.Title)
	assert.Equal(t, []string{"Name", "Price", "Tags", "Released", "In stock", "Created"}, col.Order)
	assert.Equal(t, "title", col.Properties["Name"].ID)
	assert.Equal(t, "created_time", col.Properties["Created"].ID)
	assert.Len(t, col.Properties["Price"].ID, 8)
	assert.Equal(t, "won", col.Properties["Price"].Config["format"])

	_, err = store.RetrieveCollection(context.Background(), "nope")
	assert.True(t, remote.IsNotFound(err))
}

func TestStore_ReadForm(t *testing.T) {
	store := seededStore(t)

	res, err := store.QueryCollection(context.Background(), "products", remote.QueryParams{})
	require.NoError(t, err)
	require.Len(t, res.Results, 3)

	manual := res.Results[0]
	assert.Equal(t, "page", manual.Object)
	assert.Equal(t, "Manual", property.Decode(manual.Properties["Name"]))
	assert.Equal(t, "title", manual.Properties["Name"]["type"])
	assert.Equal(t, "title", manual.Properties["Name"]["id"])

	runs := manual.Properties["Name"]["title"].([]any)
	require.Len(t, runs, 1)
	assert.Equal(t, "Manual", runs[0].(map[string]any)["plain_text"])

	// Properties absent from the stored record are still present, empty.
	assert.Nil(t, property.Decode(manual.Properties["Price"]))
	assert.Equal(t, false, property.Decode(manual.Properties["In stock"]))
	assert.Equal(t, manual.CreatedTime, manual.Properties["Created"]["created_time"])
}

func TestStore_Query(t *testing.T) {
	tests := []struct {
		name   string
		params remote.QueryParams
		want   []string
	}{
		{
			name: "default order is newest first",
			want: []string{"Manual", "Mouse", "Keyboard"},
		},
		{
			name:   "number filter",
			params: remote.QueryParams{Filter: map[string]any{"property": "Price", "number": map[string]any{"greater_than": 50}}},
			want:   []string{"Keyboard"},
		},
		{
			name:   "multi select contains",
			params: remote.QueryParams{Filter: map[string]any{"property": "Tags", "multi_select": map[string]any{"contains": "hardware"}}},
			want:   []string{"Mouse", "Keyboard"},
		},
		{
			name:   "title starts with",
			params: remote.QueryParams{Filter: map[string]any{"property": "Name", "title": map[string]any{"starts_with": "ma"}}},
			want:   []string{"Manual"},
		},
		{
			name:   "date is empty",
			params: remote.QueryParams{Filter: map[string]any{"property": "Released", "date": map[string]any{"is_empty": true}}},
			want:   []string{"Manual", "Mouse"},
		},
		{
			name:   "date on or after",
			params: remote.QueryParams{Filter: map[string]any{"property": "Released", "date": map[string]any{"on_or_after": "2024-03-01"}}},
			want:   []string{"Keyboard"},
		},
		{
			name:   "checkbox equals",
			params: remote.QueryParams{Filter: map[string]any{"property": "In stock", "checkbox": map[string]any{"equals": false}}},
			want:   []string{"Manual", "Mouse"},
		},
		{
			name: "or compound",
			params: remote.QueryParams{Filter: map[string]any{"or": []any{
				map[string]any{"property": "Name", "title": map[string]any{"equals": "Manual"}},
				map[string]any{"property": "Price", "number": map[string]any{"less_than": 50}},
			}}},
			want: []string{"Manual", "Mouse"},
		},
		{
			name: "and compound",
			params: remote.QueryParams{Filter: map[string]any{"and": []any{
				map[string]any{"property": "Tags", "multi_select": map[string]any{"contains": "hardware"}},
				map[string]any{"property": "In stock", "checkbox": map[string]any{"equals": true}},
			}}},
			want: []string{"Keyboard"},
		},
		{
			name:   "timestamp filter",
			params: remote.QueryParams{Filter: map[string]any{"timestamp": "created_time", "created_time": map[string]any{"after": "2026-01-01T00:00:03.000Z"}}},
			want:   []string{"Manual"},
		},
		{
			name:   "sort by number puts empty last",
			params: remote.QueryParams{Sorts: []map[string]any{{"property": "Price", "direction": "ascending"}}},
			want:   []string{"Mouse", "Keyboard", "Manual"},
		},
		{
			name:   "sort by title descending",
			params: remote.QueryParams{Sorts: []map[string]any{{"property": "Name", "direction": "descending"}}},
			want:   []string{"Mouse", "Manual", "Keyboard"},
		},
		{
			name:   "sort by timestamp",
			params: remote.QueryParams{Sorts: []map[string]any{{"timestamp": "created_time", "direction": "ascending"}}},
			want:   []string{"Keyboard", "Mouse", "Manual"},
		},
	}

	store := seededStore(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := store.QueryCollection(context.Background(), "products", tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(res))
			assert.False(t, res.HasMore)
		})
	}
}

func TestStore_QueryErrors(t *testing.T) {
	tests := []struct {
		name   string
		params remote.QueryParams
	}{
		{"unknown property", remote.QueryParams{Filter: map[string]any{"property": "Color", "select": map[string]any{"equals": "red"}}}},
		{"unknown operator", remote.QueryParams{Filter: map[string]any{"property": "Price", "number": map[string]any{"near": 3}}}},
		{"missing condition", remote.QueryParams{Filter: map[string]any{"property": "Price"}}},
		{"bad sort direction", remote.QueryParams{Sorts: []map[string]any{{"property": "Price", "direction": "up"}}}},
		{"bad cursor", remote.QueryParams{StartCursor: "missing"}},
	}

	store := seededStore(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.QueryCollection(context.Background(), "products", tt.params)
			var re *remote.Error
			require.ErrorAs(t, err, &re)
			assert.Equal(t, http.StatusBadRequest, re.Status)
			assert.Equal(t, "validation_error", re.Code)
		})
	}
}

func TestStore_Paging(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	first, err := store.QueryCollection(ctx, "products", remote.QueryParams{PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"Manual", "Mouse"}, names(first))
	assert.True(t, first.HasMore)
	require.NotEmpty(t, first.NextCursor)

	second, err := store.QueryCollection(ctx, "products", remote.QueryParams{PageSize: 2, StartCursor: first.NextCursor})
	require.NoError(t, err)
	assert.Equal(t, []string{"Keyboard"}, names(second))
	assert.False(t, second.HasMore)
	assert.Empty(t, second.NextCursor)
}

func TestStore_CreateUpdateArchive(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	name, _ := property.Encode(property.TypeTitle, "Monitor")
	price, _ := property.Encode(property.TypeNumber, 300)
	rec, err := store.CreateRecord(ctx, "products", map[string]any{"Name": name, "Price": price})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "Monitor", property.Decode(rec.Properties["Name"]))
	assert.Equal(t, float64(300), property.Decode(rec.Properties["Price"]))
	assert.False(t, rec.Archived)

	newPrice, _ := property.Encode(property.TypeNumber, 250)
	updated, err := store.UpdateRecord(ctx, rec.ID, remote.UpdateParams{Properties: map[string]any{"Price": newPrice}})
	require.NoError(t, err)
	assert.Equal(t, float64(250), property.Decode(updated.Properties["Price"]))
	assert.Equal(t, "Monitor", property.Decode(updated.Properties["Name"]))
	assert.Greater(t, updated.LastEditedTime, rec.LastEditedTime)

	archived := true
	gone, err := store.UpdateRecord(ctx, rec.ID, remote.UpdateParams{Archived: &archived})
	require.NoError(t, err)
	assert.True(t, gone.Archived)

	// Archived records drop out of queries but stay retrievable.
	res, err := store.QueryCollection(ctx, "products", remote.QueryParams{})
	require.NoError(t, err)
	assert.NotContains(t, names(res), "Monitor")

	got, err := store.RetrieveRecord(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, got.Archived)
	assert.Equal(t, "Monitor", property.Decode(got.Properties["Name"]))
}

func TestStore_WriteErrors(t *testing.T) {
	tests := []struct {
		name  string
		props map[string]any
	}{
		{"unknown property", map[string]any{"Color": map[string]any{"select": map[string]any{"name": "red"}}}},
		{"wrong type key", map[string]any{"Price": map[string]any{"rich_text": []any{}}}},
		{"read only property", map[string]any{"Created": map[string]any{"created_time": "2024-01-01"}}},
		{"not an object", map[string]any{"Price": 12}},
	}

	store := seededStore(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.CreateRecord(context.Background(), "products", tt.props)
			var re *remote.Error
			require.ErrorAs(t, err, &re)
			assert.Equal(t, "validation_error", re.Code)
		})
	}

	_, err := store.RetrieveRecord(context.Background(), "missing")
	assert.True(t, remote.IsNotFound(err))

	_, err = store.CreateRecord(context.Background(), "missing", map[string]any{})
	assert.True(t, remote.IsNotFound(err))
}

func TestParseSeed_RequiresID(t *testing.T) {
	_, err := sandbox.ParseSeed([]byte("collections:\n  - title: No id\n"))
	assert.Error(t, err)
}

func TestStore_CollectionIDs(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	_, err := store.CreateCollection(ctx, sandbox.CollectionDef{
		ID:         "vendors",
		Title:      "Vendors",
		Properties: []remote.PropertySchema{{Name: "Name", Type: "title"}},
	})
	require.NoError(t, err)

	ids, err := store.CollectionIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"products", "vendors"}, ids)
}
