// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package contract derives a machine-readable CRUD contract from a schema snapshot.
package contract

import (
	"github.com/dacolabs/records/internal/jschema"
	"github.com/dacolabs/records/internal/property"
	"github.com/dacolabs/records/internal/schema"
	"github.com/google/jsonschema-go/jsonschema"
)

// PlaceholderTitle is the title text used in example payloads.
const PlaceholderTitle = "Sample title"

// ArchiveNote explains the delete semantics of the platform.
const ArchiveNote = "Records are never hard-deleted; delete archives the record and it stays retrievable by id."

// Contract describes what can be done with one collection.
type Contract struct {
	Collection Collection `json:"collection" yaml:"collection"`
	Create     Create     `json:"create" yaml:"create"`
	Read       Read       `json:"read" yaml:"read"`
	Update     Update     `json:"update" yaml:"update"`
	Delete     Delete     `json:"delete" yaml:"delete"`
}

// Collection identifies the collection a contract was generated for.
type Collection struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
}

// Create describes record creation.
type Create struct {
	Description    string                    `json:"description" yaml:"description"`
	RequiredFields []string                  `json:"requiredFields" yaml:"requiredFields"`
	OptionalFields []string                  `json:"optionalFields" yaml:"optionalFields"`
	Example        map[string]property.Value `json:"example" yaml:"example"`
}

// Read describes querying.
type Read struct {
	Description string                `json:"description" yaml:"description"`
	Filters     map[string]FilterSpec `json:"filters" yaml:"filters"`
	Sorts       map[string]SortSpec   `json:"sorts" yaml:"sorts"`
	Example     ReadExample           `json:"example" yaml:"example"`
}

// FilterSpec lists the filter operators of one field.
type FilterSpec struct {
	Type        property.Type `json:"type" yaml:"type"`
	Description string        `json:"description" yaml:"description"`
	Operators   []string      `json:"operators" yaml:"operators"`
}

// SortSpec marks a field as sortable.
type SortSpec struct {
	Type        property.Type `json:"type" yaml:"type"`
	Description string        `json:"description" yaml:"description"`
	Directions  []string      `json:"directions" yaml:"directions"`
}

// ReadExample is a query body in the platform's filter language.
type ReadExample struct {
	Filter map[string]any   `json:"filter,omitempty" yaml:"filter,omitempty"`
	Sorts  []map[string]any `json:"sorts,omitempty" yaml:"sorts,omitempty"`
}

// Update describes partial updates.
type Update struct {
	Description     string                    `json:"description" yaml:"description"`
	UpdatableFields []string                  `json:"updatableFields" yaml:"updatableFields"`
	Example         map[string]property.Value `json:"example" yaml:"example"`
}

// Delete describes archiving.
type Delete struct {
	Description string `json:"description" yaml:"description"`
	Note        string `json:"note" yaml:"note"`
}

var (
	textOperators   = []string{"equals", "does_not_equal", "contains", "does_not_contain", "starts_with", "ends_with", "is_empty", "is_not_empty"}
	numberOperators = []string{"equals", "does_not_equal", "greater_than", "less_than", "greater_than_or_equal_to", "less_than_or_equal_to", "is_empty", "is_not_empty"}
	selectOperators = []string{"equals", "does_not_equal", "is_empty", "is_not_empty"}
	multiOperators  = []string{"contains", "does_not_contain", "is_empty", "is_not_empty"}
	dateOperators   = []string{"equals", "before", "after", "on_or_before", "on_or_after", "past_week", "past_month", "past_year", "next_week", "next_month", "next_year", "is_empty", "is_not_empty"}
	checkOperators  = []string{"equals", "does_not_equal"}
	linkOperators   = []string{"equals", "does_not_equal", "contains", "does_not_contain", "is_empty", "is_not_empty"}
	otherOperators  = []string{"equals", "does_not_equal", "is_empty", "is_not_empty"}

	directions = []string{"ascending", "descending"}
)

// Operators returns the filter operators available for t.
func Operators(t property.Type) []string {
	var ops []string
	switch t {
	case property.TypeTitle, property.TypeText:
		ops = textOperators
	case property.TypeNumber:
		ops = numberOperators
	case property.TypeSelect:
		ops = selectOperators
	case property.TypeMultiSelect:
		ops = multiOperators
	case property.TypeDate:
		ops = dateOperators
	case property.TypeCheckbox:
		ops = checkOperators
	case property.TypeURL, property.TypeEmail:
		ops = linkOperators
	default:
		ops = otherOperators
	}
	return append([]string(nil), ops...)
}

// Generate builds the contract for s. The result depends only on s.
// Examples hold writable fields only, so they pass validation as generated.
func Generate(s *schema.Snapshot) *Contract {
	c := &Contract{
		Collection: Collection{
			ID:          s.CollectionID,
			Title:       s.Title,
			Description: "CRUD contract for the " + s.Title + " collection",
		},
		Create: Create{
			Description:    "Create a record",
			RequiredFields: []string{},
			OptionalFields: []string{},
			Example:        map[string]property.Value{},
		},
		Read: Read{
			Description: "Query records",
			Filters:     map[string]FilterSpec{},
			Sorts:       map[string]SortSpec{},
		},
		Update: Update{
			Description:     "Update a record",
			UpdatableFields: []string{},
			Example:         map[string]property.Value{},
		},
		Delete: Delete{
			Description: "Archive a record",
			Note:        ArchiveNote,
		},
	}

	for _, d := range s.Descriptors() {
		isTitle := d.Type == property.TypeTitle
		managed := d.SystemManaged()

		if isTitle {
			c.Create.RequiredFields = append(c.Create.RequiredFields, d.Name)
		}
		if !managed {
			if !isTitle {
				c.Create.OptionalFields = append(c.Create.OptionalFields, d.Name)
			}
			c.Update.UpdatableFields = append(c.Update.UpdatableFields, d.Name)
		}

		c.Read.Filters[d.Name] = FilterSpec{Type: d.Type, Description: d.Description, Operators: Operators(d.Type)}
		if d.Type.Sortable() {
			c.Read.Sorts[d.Name] = SortSpec{Type: d.Type, Description: d.Description, Directions: append([]string(nil), directions...)}
		}

		if managed || !d.Type.Writable() {
			continue
		}
		if isTitle {
			c.Create.Example[d.Name] = property.Value{"title": []any{map[string]any{"text": map[string]any{"content": PlaceholderTitle}}}}
			continue
		}
		ex := example(d, s.ValueTypes[d.Name])
		c.Create.Example[d.Name] = ex
		c.Update.Example[d.Name] = ex
	}

	if len(s.PropertyOrder) > 0 {
		first := s.Properties[s.PropertyOrder[0]]
		c.Read.Example = ReadExample{
			Filter: map[string]any{
				"property":        first.Name,
				first.RemoteType: map[string]any{Operators(first.Type)[0]: "value"},
			},
			Sorts: []map[string]any{{"property": first.Name, "direction": "descending"}},
		}
	}
	return c
}

// example encodes the first observed sample of a field, or its zero value.
func example(d schema.PropertyDescriptor, vt schema.ValueTypeSample) property.Value {
	if vt.HasData && len(vt.SampleValues) > 0 {
		if v, ok := property.Encode(d.Type, vt.SampleValues[0]); ok {
			return v
		}
	}
	return property.Zero(d.Type)
}

// CreateSchema returns the JSON Schema of a create payload for s: one
// property per writable field, with title fields required.
func CreateSchema(s *schema.Snapshot) *jsonschema.Schema {
	out := &jsonschema.Schema{
		Schema:      "https://json-schema.org/draft/2020-12/schema",
		Title:       s.Title,
		Description: "Create payload for the " + s.Title + " collection",
		Type:        "object",
		Properties:  map[string]*jsonschema.Schema{},
		Required:    []string{},
	}
	for _, d := range s.Descriptors() {
		if d.SystemManaged() {
			continue
		}
		vs := jschema.ValueSchema(d.Type)
		if vs == nil {
			continue
		}
		vs.Description = d.Description
		out.Properties[d.Name] = vs
		if d.Validation.Required {
			out.Required = append(out.Required, d.Name)
		}
	}
	return out
}
