// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package jschema provides JSON Schema fragments describing property write shapes
// and helpers for reading key order from raw JSON documents.
package jschema

import (
	"fmt"
	"sync"

	"github.com/dacolabs/records/internal/property"
	"github.com/google/jsonschema-go/jsonschema"
)

// ValueSchema returns the JSON Schema of the typed write form for t.
// It returns nil for types the platform computes itself.
func ValueSchema(t property.Type) *jsonschema.Schema {
	key := t.String()
	switch t {
	case property.TypeTitle, property.TypeText:
		return object([]string{key}, map[string]*jsonschema.Schema{key: richText()})
	case property.TypeNumber:
		return object(nil, map[string]*jsonschema.Schema{key: {Types: []string{"number", "null"}}})
	case property.TypeSelect:
		return object(nil, map[string]*jsonschema.Schema{key: {
			Types:      []string{"object", "null"},
			Properties: map[string]*jsonschema.Schema{"name": {Type: "string"}},
		}})
	case property.TypeMultiSelect:
		return object([]string{key}, map[string]*jsonschema.Schema{key: arrayOf(&jsonschema.Schema{
			Type:       "object",
			Required:   []string{"name"},
			Properties: map[string]*jsonschema.Schema{"name": {Type: "string"}},
		})})
	case property.TypeDate:
		return object([]string{key}, map[string]*jsonschema.Schema{key: {
			Type:     "object",
			Required: []string{"start"},
			Properties: map[string]*jsonschema.Schema{
				"start": {Type: "string"},
				"end":   {Types: []string{"string", "null"}},
			},
		}})
	case property.TypeCheckbox:
		return object([]string{key}, map[string]*jsonschema.Schema{key: {Type: "boolean"}})
	case property.TypeURL, property.TypeEmail, property.TypePhone:
		return object(nil, map[string]*jsonschema.Schema{key: {Types: []string{"string", "null"}}})
	case property.TypeRelation:
		return object([]string{key}, map[string]*jsonschema.Schema{key: arrayOf(&jsonschema.Schema{
			Type:       "object",
			Required:   []string{"id"},
			Properties: map[string]*jsonschema.Schema{"id": {Type: "string"}},
		})})
	case property.TypeUnknown:
		return &jsonschema.Schema{Type: "object"}
	default:
		return nil
	}
}

var resolvedShapes sync.Map // property.Type -> *jsonschema.Resolved

// ValidateValue checks v against the write shape of t.
func ValidateValue(t property.Type, v any) error {
	resolved, err := resolveShape(t)
	if err != nil {
		return err
	}
	if pv, ok := v.(property.Value); ok {
		v = map[string]any(pv)
	}
	return resolved.Validate(v)
}

func resolveShape(t property.Type) (*jsonschema.Resolved, error) {
	if r, ok := resolvedShapes.Load(t); ok {
		return r.(*jsonschema.Resolved), nil
	}
	s := ValueSchema(t)
	if s == nil {
		return nil, fmt.Errorf("%s values are computed by the platform and cannot be written", t)
	}
	r, err := s.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("resolving %s shape: %w", t, err)
	}
	resolvedShapes.Store(t, r)
	return r, nil
}

func object(required []string, props map[string]*jsonschema.Schema) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:       "object",
		Required:   required,
		Properties: props,
	}
}

func arrayOf(items *jsonschema.Schema) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "array", Items: items}
}

func richText() *jsonschema.Schema {
	return arrayOf(&jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"text": {
				Type:       "object",
				Properties: map[string]*jsonschema.Schema{"content": {Type: "string"}},
			},
			"plain_text": {Type: "string"},
		},
	})
}
