// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package records is the generic record service: one facade per collection
// over schema analysis, validation and the remote platform.
package records

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/dacolabs/records/internal/contract"
	"github.com/dacolabs/records/internal/logging"
	"github.com/dacolabs/records/internal/property"
	"github.com/dacolabs/records/internal/remote"
	"github.com/dacolabs/records/internal/schema"
	"github.com/dacolabs/records/internal/validate"
	"github.com/google/jsonschema-go/jsonschema"
)

// Format selects how write payload values are expressed.
type Format string

// Write formats.
const (
	// FormatTyped values are already in the platform's typed form.
	FormatTyped Format = "typed"
	// FormatSimple values are scalars, encoded using the collection schema.
	FormatSimple Format = "simple"
)

// ParseFormat accepts "", "typed" and "simple".
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatTyped:
		return FormatTyped, nil
	case FormatSimple:
		return FormatSimple, nil
	}
	return "", fmt.Errorf("unknown format %q (want typed or simple)", s)
}

// Write is a create or update payload.
type Write struct {
	Properties     map[string]any
	Format         Format
	SkipValidation bool
}

// Query is forwarded to the platform unchanged.
type Query = remote.QueryParams

// ListResult is one page of records.
type ListResult struct {
	Records    []remote.Record `json:"records"`
	Count      int             `json:"count"`
	HasMore    bool            `json:"hasMore"`
	NextCursor string          `json:"nextCursor,omitempty"`
}

// PropertyValue is one property of a record, as returned by the property endpoints.
type PropertyValue struct {
	Name  string `json:"name" yaml:"name"`
	Type  string `json:"type" yaml:"type"`
	Value any    `json:"value" yaml:"value"`
}

// Service is the record facade for one collection.
type Service struct {
	name         string
	label        string
	collectionID string
	client       remote.Client
	analyzer     *schema.Analyzer
	validator    *validate.Validator
	logger       *log.Logger
}

type serviceOptions struct {
	label    string
	analyzer []schema.AnalyzerOption
	logger   *log.Logger
}

// Option configures a Service.
type Option func(*serviceOptions)

// WithLabel sets a human-readable label for the collection.
func WithLabel(label string) Option {
	return func(o *serviceOptions) { o.label = label }
}

// WithCache shares a schema cache between services.
func WithCache(c *schema.Cache) Option {
	return func(o *serviceOptions) { o.analyzer = append(o.analyzer, schema.WithCache(c)) }
}

// WithSampleSize sets how many records schema analysis samples.
func WithSampleSize(n int) Option {
	return func(o *serviceOptions) { o.analyzer = append(o.analyzer, schema.WithSampleSize(n)) }
}

// WithLogger sets the logger of the service and its analyzer.
func WithLogger(l *log.Logger) Option {
	return func(o *serviceOptions) { o.logger = l }
}

// NewService creates the facade for collectionID, registered under name.
func NewService(name, collectionID string, client remote.Client, opts ...Option) *Service {
	o := serviceOptions{logger: logging.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger.With("collection", name)
	analyzer := schema.NewAnalyzer(client, collectionID, append(o.analyzer, schema.WithLogger(logger))...)
	return &Service{
		name:         name,
		label:        o.label,
		collectionID: collectionID,
		client:       client,
		analyzer:     analyzer,
		validator:    validate.New(analyzer),
		logger:       logger,
	}
}

// Name returns the name the service is registered under.
func (s *Service) Name() string { return s.name }

// Label returns the display label, falling back to the name.
func (s *Service) Label() string {
	if s.label == "" {
		return s.name
	}
	return s.label
}

// CollectionID returns the remote collection id.
func (s *Service) CollectionID() string { return s.collectionID }

// List queries the collection.
func (s *Service) List(ctx context.Context, q Query) (*ListResult, error) {
	res, err := s.client.QueryCollection(ctx, s.collectionID, q)
	if err != nil {
		s.logger.Error("query failed", "err", err)
		return nil, newOpError(OpQuery, err)
	}
	s.logger.Debug("query", "count", len(res.Results), "hasMore", res.HasMore)
	return &ListResult{
		Records:    res.Results,
		Count:      len(res.Results),
		HasMore:    res.HasMore,
		NextCursor: res.NextCursor,
	}, nil
}

// Get retrieves one record, archived or not.
func (s *Service) Get(ctx context.Context, id string) (*remote.Record, error) {
	rec, err := s.client.RetrieveRecord(ctx, id)
	if err != nil {
		s.logger.Error("retrieve failed", "id", id, "err", err)
		return nil, newOpError(OpRetrieve, err)
	}
	s.logger.Debug("retrieve", "id", id)
	return rec, nil
}

// Create validates w (unless skipped) and creates a record. An invalid
// payload returns a *ValidationError and never reaches the platform.
func (s *Service) Create(ctx context.Context, w Write) (*remote.Record, error) {
	props, ignored, err := s.typed(ctx, w)
	if err != nil {
		return nil, err
	}
	if len(ignored) > 0 {
		s.logger.Warn("create payload has unknown fields", "warnings", ignored)
	}
	if !w.SkipValidation {
		res, err := s.validator.Validate(ctx, props)
		if err != nil {
			return nil, newOpError(OpSchemaAnalysis, err)
		}
		if !res.Valid {
			s.logger.Warn("create rejected", "errors", res.Errors)
			return nil, &ValidationError{Result: res}
		}
	}

	rec, err := s.client.CreateRecord(ctx, s.collectionID, props)
	if err != nil {
		s.logger.Error("create failed", "err", err)
		return nil, newOpError(OpCreate, err)
	}
	s.logger.Info("record created", "id", rec.ID)
	return rec, nil
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, id string, w Write) (*remote.Record, error) {
	props, ignored, err := s.typed(ctx, w)
	if err != nil {
		return nil, err
	}
	if len(ignored) > 0 {
		s.logger.Warn("update payload has unknown fields", "warnings", ignored)
	}
	return s.update(ctx, id, props)
}

// UpdateProperties applies per-property updates. Each update is either
// {"type": T, "value": V}, encoded for T, or a value already in typed form.
func (s *Service) UpdateProperties(ctx context.Context, id string, updates map[string]map[string]any) (*remote.Record, error) {
	props := make(map[string]any, len(updates))
	var problems []string
	for name, u := range updates {
		v, err := EncodeUpdate(u)
		if err != nil {
			problems = append(problems, fmt.Sprintf("field %q: %v", name, err))
			continue
		}
		props[name] = map[string]any(v)
	}
	if len(problems) > 0 {
		sort.Strings(problems)
		return nil, invalid(problems...)
	}
	return s.update(ctx, id, props)
}

// EncodeUpdate converts one per-property update into typed form.
func EncodeUpdate(u map[string]any) (property.Value, error) {
	name, hasType := u["type"].(string)
	value, hasValue := u["value"]
	if !hasType || !hasValue {
		return property.Value(u), nil
	}
	t := property.ParseType(name)
	v, ok := property.Encode(t, value)
	if !ok {
		return nil, fmt.Errorf("%s values cannot be written", name)
	}
	return v, nil
}

func (s *Service) update(ctx context.Context, id string, props map[string]any) (*remote.Record, error) {
	rec, err := s.client.UpdateRecord(ctx, id, remote.UpdateParams{Properties: props})
	if err != nil {
		s.logger.Error("update failed", "id", id, "err", err)
		return nil, newOpError(OpUpdate, err)
	}
	s.logger.Info("record updated", "id", id)
	return rec, nil
}

// Archive archives a record. This is the only delete the platform offers.
func (s *Service) Archive(ctx context.Context, id string) (*remote.Record, error) {
	archived := true
	rec, err := s.client.UpdateRecord(ctx, id, remote.UpdateParams{Archived: &archived})
	if err != nil {
		s.logger.Error("archive failed", "id", id, "err", err)
		return nil, newOpError(OpDelete, err)
	}
	s.logger.Info("record archived", "id", id)
	return rec, nil
}

// Properties returns every property of a record, simplified when asked.
func (s *Service) Properties(ctx context.Context, id string, simplified bool) (map[string]any, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if simplified {
		return property.Simplify(rec.Properties), nil
	}
	out := make(map[string]any, len(rec.Properties))
	for name, v := range rec.Properties {
		out[name] = v
	}
	return out, nil
}

// Property returns a single property of a record.
func (s *Service) Property(ctx context.Context, id, name string, simplified bool) (*PropertyValue, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	v, ok := rec.Properties[name]
	if !ok {
		return nil, &OpError{
			Op:      OpRetrieve,
			Code:    CodePropertyNotFound,
			Message: fmt.Sprintf("property %q not found", name),
			Status:  http.StatusNotFound,
		}
	}
	_, typeName := v.Type()
	pv := &PropertyValue{Name: name, Type: typeName, Value: v}
	if simplified {
		pv.Value = property.Decode(v)
	}
	return pv, nil
}

// AnalyzeSchema returns the collection snapshot, re-fetching it when refresh is set.
func (s *Service) AnalyzeSchema(ctx context.Context, refresh bool) (*schema.Snapshot, error) {
	analyze := s.analyzer.Analyze
	if refresh {
		analyze = s.analyzer.Refresh
	}
	snap, err := analyze(ctx)
	if err != nil {
		return nil, newOpError(OpSchemaAnalysis, err)
	}
	return snap, nil
}

// GenerateContract derives the CRUD contract from the current snapshot.
func (s *Service) GenerateContract(ctx context.Context) (*contract.Contract, error) {
	snap, err := s.AnalyzeSchema(ctx, false)
	if err != nil {
		return nil, err
	}
	return contract.Generate(snap), nil
}

// CreateSchema returns the JSON Schema of a create payload.
func (s *Service) CreateSchema(ctx context.Context) (*jsonschema.Schema, error) {
	snap, err := s.AnalyzeSchema(ctx, false)
	if err != nil {
		return nil, err
	}
	return contract.CreateSchema(snap), nil
}

// Validate checks a payload without writing it.
func (s *Service) Validate(ctx context.Context, w Write) (validate.Result, error) {
	props, ignored, err := s.typed(ctx, w)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			return ve.Result, nil
		}
		return validate.Result{Valid: false, Errors: []string{err.Error()}, Warnings: []string{}}, err
	}
	res, err := s.validator.Validate(ctx, props)
	if err != nil {
		return res, newOpError(OpSchemaAnalysis, err)
	}
	if len(ignored) > 0 {
		res.Warnings = append(res.Warnings, ignored...)
		sort.Strings(res.Warnings)
	}
	return res, nil
}

// typed returns w's properties in typed form. Unknown fields of a simple
// payload are dropped and returned as warnings.
func (s *Service) typed(ctx context.Context, w Write) (map[string]any, []string, error) {
	if w.Properties == nil {
		return nil, nil, invalid("properties are required")
	}
	if w.Format != FormatSimple {
		return w.Properties, nil, nil
	}
	snap, err := s.AnalyzeSchema(ctx, false)
	if err != nil {
		return nil, nil, err
	}
	props, problems, warnings := snap.EncodeSimple(w.Properties)
	if len(problems) > 0 {
		ve := invalid(problems...)
		ve.Result.Warnings = append(ve.Result.Warnings, warnings...)
		return nil, nil, ve
	}
	return props, warnings, nil
}
