// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package records

import (
	"github.com/dacolabs/records/internal/property"
	"github.com/dacolabs/records/internal/remote"
)

// SimpleRecord is a record whose property values are decoded to scalars.
type SimpleRecord struct {
	Object         string         `json:"object" yaml:"object"`
	ID             string         `json:"id" yaml:"id"`
	CreatedTime    string         `json:"created_time,omitempty" yaml:"createdTime,omitempty"`
	LastEditedTime string         `json:"last_edited_time,omitempty" yaml:"lastEditedTime,omitempty"`
	Archived       bool           `json:"archived" yaml:"archived"`
	URL            string         `json:"url,omitempty" yaml:"url,omitempty"`
	Parent         map[string]any `json:"parent,omitempty" yaml:"parent,omitempty"`
	Properties     map[string]any `json:"properties" yaml:"properties"`
}

// Simplify decodes every property of rec.
func Simplify(rec remote.Record) SimpleRecord {
	return SimpleRecord{
		Object:         rec.Object,
		ID:             rec.ID,
		CreatedTime:    rec.CreatedTime,
		LastEditedTime: rec.LastEditedTime,
		Archived:       rec.Archived,
		URL:            rec.URL,
		Parent:         rec.Parent,
		Properties:     property.Simplify(rec.Properties),
	}
}

// SimplifyAll decodes every record of recs.
func SimplifyAll(recs []remote.Record) []SimpleRecord {
	out := make([]SimpleRecord, 0, len(recs))
	for _, rec := range recs {
		out = append(out, Simplify(rec))
	}
	return out
}
