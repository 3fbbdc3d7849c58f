// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package schema_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dacolabs/records/internal/property"
	"github.com/dacolabs/records/internal/remote"
	"github.com/dacolabs/records/internal/remote/remotetest"
	"github.com/dacolabs/records/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func productsClient() *remotetest.Client {
	c := remotetest.New("db1", "Products",
		remotetest.Property{Name: "Name", Type: "title"},
		remotetest.Property{Name: "Price", Type: "number"},
		remotetest.Property{Name: "Tags", Type: "multi_select"},
		remotetest.Property{Name: "Site", Type: "url"},
	)
	c.AddRecord("r1", map[string]any{"Name": "Widget", "Price": 100, "Tags": []string{"a"}})
	c.AddRecord("r2", map[string]any{"Name": "Gadget", "Price": 5})
	c.AddRecord("r3", map[string]any{"Name": "", "Site": nil})
	c.AddRecord("r4", map[string]any{"Name": "Gizmo", "Price": 7})
	c.AddRecord("r5", map[string]any{"Name": "Doohickey", "Price": 9})
	return c
}

func TestAnalyzer_CachesWithinTTL(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	client := productsClient()
	cache := schema.NewCache(5*time.Minute, schema.WithClock(clock.now))
	a := schema.NewAnalyzer(client, "db1", schema.WithCache(cache))
	ctx := context.Background()

	first, err := a.Analyze(ctx)
	require.NoError(t, err)
	clock.advance(4 * time.Minute)
	second, err := a.Analyze(ctx)
	require.NoError(t, err)

	retrieve, query := client.Calls()
	assert.Equal(t, 1, retrieve)
	assert.Equal(t, 1, query)
	assert.Same(t, first, second)

	clock.advance(time.Minute)
	third, err := a.Analyze(ctx)
	require.NoError(t, err)

	retrieve, query = client.Calls()
	assert.Equal(t, 2, retrieve)
	assert.Equal(t, 2, query)
	assert.NotSame(t, first, third)
	assert.Equal(t, clock.t, third.LastAnalyzed)
}

func TestAnalyzer_Snapshot(t *testing.T) {
	client := productsClient()
	a := schema.NewAnalyzer(client, "db1", schema.WithSampleSize(4))

	s, err := a.Analyze(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "db1", s.CollectionID)
	assert.Equal(t, "Products", s.Title)
	assert.Equal(t, []string{"Name", "Price", "Tags", "Site"}, s.PropertyOrder)
	assert.Equal(t, 4, s.TotalCount)
	assert.Len(t, s.SampleRecords, schema.MaxSampleRecords)
	assert.Equal(t, 4, client.Queries[0].PageSize)

	name := s.Properties["Name"]
	assert.Equal(t, property.TypeTitle, name.Type)
	assert.True(t, name.Validation.Required)
	assert.Equal(t, "Title field", name.Description)

	site := s.Properties["Site"]
	assert.Equal(t, schema.URLPattern, site.Validation.Pattern)
	assert.False(t, site.Validation.Required)

	price := s.ValueTypes["Price"]
	assert.True(t, price.HasData)
	assert.Equal(t, []any{float64(100), float64(5), float64(7)}, price.SampleValues)

	names := s.ValueTypes["Name"]
	assert.Equal(t, []any{"Widget", "Gadget", "Gizmo"}, names.SampleValues)

	tags := s.ValueTypes["Tags"]
	assert.Equal(t, []any{[]string{"a"}}, tags.SampleValues)

	assert.False(t, s.ValueTypes["Site"].HasData)
	assert.Empty(t, s.ValueTypes["Site"].SampleValues)
}

func TestAnalyzer_FailureNotCached(t *testing.T) {
	client := productsClient()
	client.QueryErr = &remote.Error{Status: 429, Code: "rate_limited", Message: "slow down"}
	a := schema.NewAnalyzer(client, "db1")
	ctx := context.Background()

	_, err := a.Analyze(ctx)
	var ae *schema.AnalysisError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "rate_limited", ae.Code)
	assert.Equal(t, "slow down", ae.Message)

	client.QueryErr = nil
	_, err = a.Analyze(ctx)
	require.NoError(t, err)

	retrieve, query := client.Calls()
	assert.Equal(t, 2, retrieve)
	assert.Equal(t, 2, query)
}

func TestAnalyzer_DefaultErrorCode(t *testing.T) {
	client := productsClient()
	boom := errors.New("connection reset")
	client.RetrieveCollectionErr = boom

	_, err := schema.NewAnalyzer(client, "db1").Analyze(context.Background())
	var ae *schema.AnalysisError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, schema.CodeAnalysisFailed, ae.Code)
	assert.ErrorIs(t, err, boom)

	_, query := client.Calls()
	assert.Equal(t, 0, query)
}

func TestAnalyzer_Refresh(t *testing.T) {
	client := productsClient()
	a := schema.NewAnalyzer(client, "db1")
	ctx := context.Background()

	_, err := a.Analyze(ctx)
	require.NoError(t, err)
	_, err = a.Refresh(ctx)
	require.NoError(t, err)

	retrieve, _ := client.Calls()
	assert.Equal(t, 2, retrieve)
}

func TestCache_EvictsOnObservedExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	cache := schema.NewCache(time.Minute, schema.WithClock(clock.now))
	cache.Put(&schema.Snapshot{CollectionID: "a"})
	cache.Put(&schema.Snapshot{CollectionID: "b"})

	clock.advance(59 * time.Second)
	_, ok := cache.Get("a")
	assert.True(t, ok)

	clock.advance(time.Second)
	_, ok = cache.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, cache.Len(), "b is only evicted when accessed")

	cache.Invalidate("b")
	assert.Equal(t, 0, cache.Len())
	assert.Equal(t, schema.DefaultTTL, schema.NewCache(0).TTL())
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		in   remote.PropertySchema
		want schema.PropertyDescriptor
	}{
		{
			name: "select choices",
			in: remote.PropertySchema{ID: "s", Name: "Status", Type: "select", Config: map[string]any{
				"options": []any{map[string]any{"id": "o1", "name": "New", "color": "blue"}},
			}},
			want: schema.PropertyDescriptor{
				ID: "s", Name: "Status", Type: property.TypeSelect, RemoteType: "select",
				Description: "Select field",
				Options:     schema.Options{Choices: []schema.Choice{{ID: "o1", Name: "New", Color: "blue"}}},
				Validation:  schema.ValidationRule{Type: property.TypeSelect},
			},
		},
		{
			name: "number default format",
			in:   remote.PropertySchema{ID: "n", Name: "Qty", Type: "number"},
			want: schema.PropertyDescriptor{
				ID: "n", Name: "Qty", Type: property.TypeNumber, RemoteType: "number",
				Description: "Number field",
				Options:     schema.Options{Format: "number"},
				Validation:  schema.ValidationRule{Type: property.TypeNumber},
			},
		},
		{
			name: "relation target",
			in:   remote.PropertySchema{ID: "r", Name: "Vendor", Type: "relation", Config: map[string]any{"database_id": "db9"}},
			want: schema.PropertyDescriptor{
				ID: "r", Name: "Vendor", Type: property.TypeRelation, RemoteType: "relation",
				Description: "Relation field",
				Options:     schema.Options{CollectionID: "db9"},
				Validation:  schema.ValidationRule{Type: property.TypeRelation},
			},
		},
		{
			name: "email pattern",
			in:   remote.PropertySchema{ID: "e", Name: "Mail", Type: "email"},
			want: schema.PropertyDescriptor{
				ID: "e", Name: "Mail", Type: property.TypeEmail, RemoteType: "email",
				Description: "Email field",
				Validation:  schema.ValidationRule{Type: property.TypeEmail, Pattern: schema.EmailPattern},
			},
		},
		{
			name: "unknown type keeps remote name",
			in:   remote.PropertySchema{ID: "p", Name: "Owner", Type: "people"},
			want: schema.PropertyDescriptor{
				ID: "p", Name: "Owner", Type: property.TypeUnknown, RemoteType: "people",
				Description: "people field",
				Validation:  schema.ValidationRule{Type: property.TypeUnknown},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, schema.Describe(tt.in.Name, tt.in))
		})
	}
}

func TestDescriptor_SystemManaged(t *testing.T) {
	assert.True(t, schema.PropertyDescriptor{ID: "created_time", Type: property.TypeUnknown}.SystemManaged())
	assert.True(t, schema.PropertyDescriptor{ID: "abc", Type: property.TypeLastEditedBy}.SystemManaged())
	assert.False(t, schema.PropertyDescriptor{ID: "abc", Type: property.TypeNumber}.SystemManaged())
}

func TestSnapshot_EncodeSimple(t *testing.T) {
	s, err := schema.NewAnalyzer(productsClient(), "db1").Analyze(context.Background())
	require.NoError(t, err)

	typed, problems, warnings := s.EncodeSimple(map[string]any{
		"Name":  "Widget",
		"Price": 12,
		"Color": "red",
	})
	assert.Equal(t, map[string]any{
		"Name":  map[string]any{"title": []any{map[string]any{"text": map[string]any{"content": "Widget"}}}},
		"Price": map[string]any{"number": float64(12)},
	}, typed)
	assert.Empty(t, problems)
	assert.Equal(t, []string{`unknown field "Color" ignored`}, warnings)
}
