// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package sandbox

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dacolabs/records/internal/property"
	"github.com/dacolabs/records/internal/remote"
	"gopkg.in/yaml.v3"
)

// Seed describes collections and records to load into a sandbox.
type Seed struct {
	Collections []SeedCollection `yaml:"collections"`
}

// SeedCollection is one collection of a seed file. Record values are given
// in simplified form and encoded with the property codec.
type SeedCollection struct {
	ID         string           `yaml:"id"`
	Title      string           `yaml:"title"`
	Properties []SeedProperty   `yaml:"properties"`
	Records    []map[string]any `yaml:"records,omitempty"`
}

// SeedProperty declares one property of a seeded collection.
type SeedProperty struct {
	Name   string         `yaml:"name"`
	Type   string         `yaml:"type"`
	Config map[string]any `yaml:"config,omitempty"`
}

// LoadSeed reads a YAML seed file.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes a YAML seed document.
func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parsing seed: %w", err)
	}
	for i, c := range seed.Collections {
		if c.ID == "" {
			return nil, fmt.Errorf("seed collection %d: id is required", i)
		}
	}
	return &seed, nil
}

// SeedResult counts what Apply created.
type SeedResult struct {
	Collections int `json:"collections" yaml:"collections"`
	Records     int `json:"records" yaml:"records"`
}

// Apply creates every collection of the seed and inserts its records.
// Collections are upserted; records are always appended.
func (s *Store) Apply(ctx context.Context, seed *Seed) (SeedResult, error) {
	var res SeedResult
	for _, c := range seed.Collections {
		def := CollectionDef{ID: c.ID, Title: c.Title}
		types := make(map[string]property.Type, len(c.Properties))
		for _, p := range c.Properties {
			def.Properties = append(def.Properties, remote.PropertySchema{
				Name:   p.Name,
				Type:   p.Type,
				Config: p.Config,
			})
			types[p.Name] = property.ParseType(p.Type)
		}
		if _, err := s.CreateCollection(ctx, def); err != nil {
			return res, err
		}
		res.Collections++

		for i, rec := range c.Records {
			props := make(map[string]any, len(rec))
			for name, scalar := range rec {
				t, ok := types[name]
				if !ok {
					return res, fmt.Errorf("collection %s record %d: unknown property %q", c.ID, i, name)
				}
				v, ok := property.Encode(t, seedScalar(scalar))
				if !ok {
					return res, fmt.Errorf("collection %s record %d: property %q cannot be written", c.ID, i, name)
				}
				props[name] = map[string]any(v)
			}
			if _, err := s.CreateRecord(ctx, c.ID, props); err != nil {
				return res, fmt.Errorf("collection %s record %d: %w", c.ID, i, err)
			}
			res.Records++
		}
	}
	return res, nil
}

// seedScalar turns YAML-native values into the scalars the codec expects.
func seedScalar(v any) any {
	switch x := v.(type) {
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format("2006-01-02")
		}
		return x.Format(time.RFC3339)
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = seedScalar(e)
		}
		return out
	}
	return v
}
