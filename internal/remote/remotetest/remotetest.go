// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package remotetest provides an in-memory remote.Client that counts calls.
package remotetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/dacolabs/records/internal/property"
	"github.com/dacolabs/records/internal/remote"
)

// Client serves a fixed collection and records and records every call.
// Set the Err fields to make the matching call fail.
type Client struct {
	mu sync.Mutex

	Collection *remote.Collection
	Records    []remote.Record

	RetrieveCollectionErr error
	QueryErr              error
	WriteErr              error

	RetrieveCollectionCalls int
	QueryCalls              int
	Queries                 []remote.QueryParams
	Created                 []map[string]any
	Updates                 map[string][]remote.UpdateParams
}

var _ remote.Client = (*Client)(nil)

// Property is a shorthand for declaring a collection property.
type Property struct {
	Name string
	Type string
}

// New builds a client whose collection declares props in order.
func New(collectionID, title string, props ...Property) *Client {
	col := &remote.Collection{
		ID:         collectionID,
		Title:      title,
		Properties: make(map[string]remote.PropertySchema, len(props)),
	}
	for _, p := range props {
		id := p.Name
		if property.ParseType(p.Type) == property.TypeTitle {
			id = "title"
		}
		col.Properties[p.Name] = remote.PropertySchema{ID: id, Name: p.Name, Type: p.Type}
		col.Order = append(col.Order, p.Name)
	}
	return &Client{Collection: col, Updates: map[string][]remote.UpdateParams{}}
}

// AddRecord appends a read-form record built from simplified values.
func (c *Client) AddRecord(id string, values map[string]any) remote.Record {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec := remote.Record{Object: "page", ID: id, Properties: map[string]property.Value{}}
	for name, scalar := range values {
		p, ok := c.Collection.Properties[name]
		if !ok {
			continue
		}
		v, _ := property.Encode(property.ParseType(p.Type), scalar)
		v["id"] = p.ID
		v["type"] = p.Type
		rec.Properties[name] = v
	}
	c.Records = append(c.Records, rec)
	return rec
}

// RetrieveCollection implements remote.Client.
func (c *Client) RetrieveCollection(_ context.Context, collectionID string) (*remote.Collection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.RetrieveCollectionCalls++
	if c.RetrieveCollectionErr != nil {
		return nil, c.RetrieveCollectionErr
	}
	if c.Collection == nil || c.Collection.ID != collectionID {
		return nil, remote.NotFound("database", collectionID)
	}
	col := *c.Collection
	return &col, nil
}

// QueryCollection implements remote.Client. Filters are ignored; PageSize is honored.
func (c *Client) QueryCollection(_ context.Context, collectionID string, params remote.QueryParams) (*remote.QueryResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.QueryCalls++
	c.Queries = append(c.Queries, params)
	if c.QueryErr != nil {
		return nil, c.QueryErr
	}
	if c.Collection == nil || c.Collection.ID != collectionID {
		return nil, remote.NotFound("database", collectionID)
	}
	res := &remote.QueryResult{Results: []remote.Record{}}
	for _, rec := range c.Records {
		if rec.Archived {
			continue
		}
		if params.PageSize > 0 && len(res.Results) == params.PageSize {
			res.HasMore = true
			res.NextCursor = rec.ID
			break
		}
		res.Results = append(res.Results, rec)
	}
	return res, nil
}

// CreateRecord implements remote.Client.
func (c *Client) CreateRecord(_ context.Context, _ string, properties map[string]any) (*remote.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.WriteErr != nil {
		return nil, c.WriteErr
	}
	c.Created = append(c.Created, properties)
	rec := remote.Record{Object: "page", ID: fmt.Sprintf("created-%d", len(c.Created)), Properties: toValues(properties)}
	c.Records = append(c.Records, rec)
	return &rec, nil
}

// UpdateRecord implements remote.Client.
func (c *Client) UpdateRecord(_ context.Context, recordID string, params remote.UpdateParams) (*remote.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.WriteErr != nil {
		return nil, c.WriteErr
	}
	for i := range c.Records {
		rec := &c.Records[i]
		if rec.ID != recordID {
			continue
		}
		c.Updates[recordID] = append(c.Updates[recordID], params)
		for name, v := range toValues(params.Properties) {
			rec.Properties[name] = v
		}
		if params.Archived != nil {
			rec.Archived = *params.Archived
		}
		out := *rec
		return &out, nil
	}
	return nil, remote.NotFound("page", recordID)
}

// RetrieveRecord implements remote.Client.
func (c *Client) RetrieveRecord(_ context.Context, recordID string) (*remote.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, rec := range c.Records {
		if rec.ID == recordID {
			out := rec
			return &out, nil
		}
	}
	return nil, remote.NotFound("page", recordID)
}

// Calls returns the number of schema and sample fetches so far.
func (c *Client) Calls() (retrieve, query int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.RetrieveCollectionCalls, c.QueryCalls
}

func toValues(props map[string]any) map[string]property.Value {
	out := make(map[string]property.Value, len(props))
	for name, raw := range props {
		switch v := raw.(type) {
		case property.Value:
			out[name] = v
		case map[string]any:
			out[name] = property.Value(v)
		}
	}
	return out
}
