// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package schema

import (
	"strings"

	"github.com/dacolabs/records/internal/property"
	"github.com/dacolabs/records/internal/remote"
)

// Validation patterns attached to url and email descriptors.
const (
	URLPattern   = `^https?://`
	EmailPattern = `^[^@]+@[^@]+\.[^@]+$`
)

// PropertyDescriptor is the normalized description of one collection property.
type PropertyDescriptor struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	Type        property.Type  `json:"type" yaml:"type"`
	RemoteType  string         `json:"remoteType" yaml:"remoteType"`
	Description string         `json:"description" yaml:"description"`
	Options     Options        `json:"options" yaml:"options"`
	Validation  ValidationRule `json:"validation" yaml:"validation"`
}

// Options holds the type-specific settings of a property.
type Options struct {
	Choices      []Choice `json:"choices,omitempty" yaml:"choices,omitempty"`
	Format       string   `json:"format,omitempty" yaml:"format,omitempty"`
	CollectionID string   `json:"collectionId,omitempty" yaml:"collectionId,omitempty"`
}

// Choice is one option of a select or multi-select property.
type Choice struct {
	ID    string `json:"id,omitempty" yaml:"id,omitempty"`
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
}

// ValidationRule is derived from the property type alone.
type ValidationRule struct {
	Type     property.Type `json:"type" yaml:"type"`
	Required bool          `json:"required" yaml:"required"`
	Pattern  string        `json:"pattern,omitempty" yaml:"pattern,omitempty"`
}

// SystemManaged reports whether the platform maintains the property's value.
// Both the remote id and the declared type are consulted.
func (d PropertyDescriptor) SystemManaged() bool {
	return strings.Contains(d.ID, "created") || strings.Contains(d.ID, "last_edited") || d.Type.SystemManaged()
}

// Describe builds the descriptor for a remote property declaration.
func Describe(name string, p remote.PropertySchema) PropertyDescriptor {
	t := property.ParseType(p.Type)
	if p.Name != "" {
		name = p.Name
	}
	return PropertyDescriptor{
		ID:          p.ID,
		Name:        name,
		Type:        t,
		RemoteType:  p.Type,
		Description: t.Description(p.Type),
		Options:     optionsFor(t, p.Config),
		Validation:  ruleFor(t),
	}
}

func optionsFor(t property.Type, cfg map[string]any) Options {
	var opts Options
	switch t {
	case property.TypeSelect, property.TypeMultiSelect:
		opts.Choices = []Choice{}
		items, _ := cfg["options"].([]any)
		for _, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			c := Choice{}
			c.ID, _ = m["id"].(string)
			c.Name, _ = m["name"].(string)
			c.Color, _ = m["color"].(string)
			opts.Choices = append(opts.Choices, c)
		}
	case property.TypeNumber:
		opts.Format, _ = cfg["format"].(string)
		if opts.Format == "" {
			opts.Format = "number"
		}
	case property.TypeDate:
		opts.Format = "date"
	case property.TypeRelation:
		opts.CollectionID, _ = cfg["database_id"].(string)
	}
	return opts
}

func ruleFor(t property.Type) ValidationRule {
	rule := ValidationRule{Type: t}
	switch t {
	case property.TypeTitle:
		rule.Required = true
	case property.TypeURL:
		rule.Pattern = URLPattern
	case property.TypeEmail:
		rule.Pattern = EmailPattern
	}
	return rule
}

// ValueTypeSample collects observed values of one property across the sample records.
type ValueTypeSample struct {
	Type         property.Type `json:"type" yaml:"type"`
	SampleValues []any         `json:"sampleValues" yaml:"sampleValues"`
	HasData      bool          `json:"hasData" yaml:"hasData"`
}

// MaxSampleValues bounds ValueTypeSample.SampleValues.
const MaxSampleValues = 3

func sampleValueTypes(records []remote.Record) map[string]ValueTypeSample {
	out := map[string]ValueTypeSample{}
	for _, rec := range records {
		for name, v := range rec.Properties {
			vt, ok := out[name]
			if !ok {
				t, _ := v.Type()
				vt = ValueTypeSample{Type: t, SampleValues: []any{}}
			}
			if scalar := property.Decode(v); !empty(scalar) {
				vt.HasData = true
				if len(vt.SampleValues) < MaxSampleValues {
					vt.SampleValues = append(vt.SampleValues, scalar)
				}
			}
			out[name] = vt
		}
	}
	return out
}

func empty(v any) bool {
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
