// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package validate checks write payloads against a collection's analyzed schema.
package validate

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/dacolabs/records/internal/jschema"
	"github.com/dacolabs/records/internal/property"
	"github.com/dacolabs/records/internal/schema"
)

// Result is the outcome of validating one payload. Warnings never affect Valid.
type Result struct {
	Valid    bool     `json:"valid" yaml:"valid"`
	Errors   []string `json:"errors" yaml:"errors"`
	Warnings []string `json:"warnings" yaml:"warnings"`
}

func (r *Result) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Validator validates payloads for one collection.
type Validator struct {
	analyzer *schema.Analyzer
}

// New creates a validator backed by a.
func New(a *schema.Analyzer) *Validator {
	return &Validator{analyzer: a}
}

// Validate analyzes the collection and checks payload against it. When the
// analysis fails the result is invalid and the analysis error is returned too.
func (v *Validator) Validate(ctx context.Context, payload map[string]any) (Result, error) {
	snap, err := v.analyzer.Analyze(ctx)
	if err != nil {
		return Result{
			Valid:    false,
			Errors:   []string{fmt.Sprintf("schema analysis failed: %v", err)},
			Warnings: []string{},
		}, err
	}
	return Check(snap, payload), nil
}

// Check validates a typed-form payload against snap. Every problem is
// reported; fields are visited in a stable order.
func Check(snap *schema.Snapshot, payload map[string]any) Result {
	res := Result{Errors: []string{}, Warnings: []string{}}

	for _, d := range snap.Descriptors() {
		if !d.Validation.Required {
			continue
		}
		v, ok := payload[d.Name]
		switch {
		case !ok || v == nil:
			res.errorf("required field %q is missing", d.Name)
		case d.Type == property.TypeTitle && property.TitleText(v) == "":
			res.errorf("required field %q must have a non-empty title", d.Name)
		}
	}

	names := make([]string, 0, len(payload))
	for name := range payload {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		d, ok := snap.Descriptor(name)
		if !ok {
			res.Warnings = append(res.Warnings, schema.UnknownFieldWarning(name))
			continue
		}
		if d.SystemManaged() {
			res.errorf("field %q is managed by the platform and cannot be written", name)
			continue
		}
		value, err := jsonValue(payload[name])
		if err != nil {
			res.errorf("field %q: %v", name, err)
			continue
		}
		if err := jschema.ValidateValue(d.Type, value); err != nil {
			res.errorf("field %q: %v", name, err)
		}
	}

	res.Valid = len(res.Errors) == 0
	return res
}

// jsonValue normalizes Go values to their JSON-decoded form.
func jsonValue(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
