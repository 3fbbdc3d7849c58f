// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package remote defines the boundary to the workspace database platform.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dacolabs/records/internal/property"
)

// Client is the set of remote calls the record service depends on.
// Reads are idempotent; CreateRecord is not.
type Client interface {
	RetrieveCollection(ctx context.Context, collectionID string) (*Collection, error)
	QueryCollection(ctx context.Context, collectionID string, params QueryParams) (*QueryResult, error)
	CreateRecord(ctx context.Context, collectionID string, properties map[string]any) (*Record, error)
	UpdateRecord(ctx context.Context, recordID string, params UpdateParams) (*Record, error)
	RetrieveRecord(ctx context.Context, recordID string) (*Record, error)
}

// Collection is a remote database: its title and property schema.
type Collection struct {
	ID         string                    `json:"id"`
	Title      string                    `json:"title"`
	Properties map[string]PropertySchema `json:"properties"`
	// Order lists property names in the order the platform returned them.
	Order []string `json:"-"`
}

// PropertySchema is the admin-defined declaration of one collection property.
type PropertySchema struct {
	ID   string
	Name string
	Type string
	// Config holds the type-specific settings, e.g. {"options": [...]} for select
	// or {"format": "dollar"} for number.
	Config map[string]any
}

// UnmarshalJSON decodes {"id", "name", "type", <type>: {...}}.
func (p *PropertySchema) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var out PropertySchema
	for key, dst := range map[string]*string{"id": &out.ID, "name": &out.Name, "type": &out.Type} {
		if v, ok := raw[key]; ok {
			if err := json.Unmarshal(v, dst); err != nil {
				return fmt.Errorf("property %s: %w", key, err)
			}
		}
	}
	if cfg, ok := raw[out.Type]; ok && out.Type != "" {
		// Some types carry an empty object or null; only objects are kept.
		_ = json.Unmarshal(cfg, &out.Config)
	}
	*p = out
	return nil
}

// MarshalJSON encodes the property in the platform's shape.
func (p PropertySchema) MarshalJSON() ([]byte, error) {
	m := map[string]any{"id": p.ID, "name": p.Name, "type": p.Type}
	if p.Type != "" {
		cfg := p.Config
		if cfg == nil {
			cfg = map[string]any{}
		}
		m[p.Type] = cfg
	}
	return json.Marshal(m)
}

// Record is one item (page) of a collection.
type Record struct {
	Object         string                    `json:"object"`
	ID             string                    `json:"id"`
	CreatedTime    string                    `json:"created_time,omitempty"`
	LastEditedTime string                    `json:"last_edited_time,omitempty"`
	Archived       bool                      `json:"archived"`
	URL            string                    `json:"url,omitempty"`
	Parent         map[string]any            `json:"parent,omitempty"`
	Properties     map[string]property.Value `json:"properties"`
}

// QueryParams are forwarded verbatim to the collection query endpoint.
type QueryParams struct {
	Filter      map[string]any   `json:"filter,omitempty"`
	Sorts       []map[string]any `json:"sorts,omitempty"`
	PageSize    int              `json:"page_size,omitempty"`
	StartCursor string           `json:"start_cursor,omitempty"`
}

// QueryResult is one page of query results.
type QueryResult struct {
	Results    []Record `json:"results"`
	HasMore    bool     `json:"has_more"`
	NextCursor string   `json:"next_cursor,omitempty"`
}

// UpdateParams is a partial record update. Archived set to true is the
// platform's only delete semantics.
type UpdateParams struct {
	Properties map[string]any `json:"properties,omitempty"`
	Archived   *bool          `json:"archived,omitempty"`
}

// Error is a failure reported by the remote platform.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NotFound builds the error returned for a missing collection or record.
func NotFound(kind, id string) *Error {
	return &Error{
		Status:  http.StatusNotFound,
		Code:    "object_not_found",
		Message: fmt.Sprintf("could not find %s with id %s", kind, id),
	}
}

// IsNotFound reports whether err is a remote not-found error.
func IsNotFound(err error) bool {
	var re *Error
	return errors.As(err, &re) && (re.Status == http.StatusNotFound || re.Code == "object_not_found")
}
