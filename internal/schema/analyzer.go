// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package schema introspects remote collections and caches the result.
package schema

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dacolabs/records/internal/logging"
	"github.com/dacolabs/records/internal/remote"
)

// DefaultSampleSize is the number of records fetched to observe real values.
const DefaultSampleSize = 10

// MaxSampleRecords bounds Snapshot.SampleRecords.
const MaxSampleRecords = 3

// CodeAnalysisFailed is the default code of an AnalysisError.
const CodeAnalysisFailed = "SCHEMA_ANALYSIS_ERROR"

// Snapshot is the result of analyzing one collection at a point in time.
// It is never mutated after construction.
type Snapshot struct {
	CollectionID  string                        `json:"collectionId" yaml:"collectionId"`
	Title         string                        `json:"title" yaml:"title"`
	Properties    map[string]PropertyDescriptor `json:"properties" yaml:"properties"`
	PropertyOrder []string                      `json:"propertyOrder" yaml:"propertyOrder"`
	ValueTypes    map[string]ValueTypeSample    `json:"valueTypes" yaml:"valueTypes"`
	SampleRecords []remote.Record               `json:"sampleRecords" yaml:"-"`
	TotalCount    int                           `json:"totalCount" yaml:"totalCount"`
	LastAnalyzed  time.Time                     `json:"lastAnalyzed" yaml:"lastAnalyzed"`
}

// Descriptors returns the property descriptors in schema order.
func (s *Snapshot) Descriptors() []PropertyDescriptor {
	out := make([]PropertyDescriptor, 0, len(s.PropertyOrder))
	for _, name := range s.PropertyOrder {
		out = append(out, s.Properties[name])
	}
	return out
}

// Descriptor looks up a property by name.
func (s *Snapshot) Descriptor(name string) (PropertyDescriptor, bool) {
	d, ok := s.Properties[name]
	return d, ok
}

// AnalysisError reports a failed schema analysis.
type AnalysisError struct {
	Code    string
	Message string
	Err     error
}

func (e *AnalysisError) Error() string {
	return e.Message
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// Analyzer produces snapshots for a single collection.
type Analyzer struct {
	client       remote.Client
	collectionID string
	cache        *Cache
	sampleSize   int
	logger       *log.Logger
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithCache shares a cache between analyzers.
func WithCache(c *Cache) AnalyzerOption {
	return func(a *Analyzer) { a.cache = c }
}

// WithSampleSize sets how many records are fetched per analysis.
func WithSampleSize(n int) AnalyzerOption {
	return func(a *Analyzer) {
		if n > 0 {
			a.sampleSize = n
		}
	}
}

// WithLogger sets the analyzer's logger.
func WithLogger(l *log.Logger) AnalyzerOption {
	return func(a *Analyzer) { a.logger = l }
}

// NewAnalyzer creates an analyzer for collectionID.
func NewAnalyzer(client remote.Client, collectionID string, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		client:       client,
		collectionID: collectionID,
		sampleSize:   DefaultSampleSize,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.cache == nil {
		a.cache = NewCache(DefaultTTL)
	}
	if a.logger == nil {
		a.logger = logging.Discard()
	}
	return a
}

// CollectionID returns the analyzed collection's id.
func (a *Analyzer) CollectionID() string {
	return a.collectionID
}

// Analyze returns the live snapshot, fetching schema and samples on a miss.
// Failures are not cached.
func (a *Analyzer) Analyze(ctx context.Context) (*Snapshot, error) {
	if s, ok := a.cache.Get(a.collectionID); ok {
		return s, nil
	}
	a.logger.Debug("schema cache miss", "collection", a.collectionID)

	col, err := a.client.RetrieveCollection(ctx, a.collectionID)
	if err != nil {
		return nil, a.fail(err)
	}
	sample, err := a.client.QueryCollection(ctx, a.collectionID, remote.QueryParams{PageSize: a.sampleSize})
	if err != nil {
		return nil, a.fail(err)
	}

	s := build(a.collectionID, col, sample.Results, a.cache.Now())
	a.cache.Put(s)
	a.logger.Info("schema analyzed", "collection", a.collectionID, "title", s.Title, "properties", len(s.Properties))
	return s, nil
}

// Refresh discards any cached snapshot and analyzes again.
func (a *Analyzer) Refresh(ctx context.Context) (*Snapshot, error) {
	a.cache.Invalidate(a.collectionID)
	return a.Analyze(ctx)
}

func (a *Analyzer) fail(err error) error {
	a.logger.Error("schema analysis failed", "collection", a.collectionID, "err", err)
	ae := &AnalysisError{Code: CodeAnalysisFailed, Message: err.Error(), Err: err}
	var re *remote.Error
	if errors.As(err, &re) {
		ae.Message = re.Message
		if re.Code != "" {
			ae.Code = re.Code
		}
	}
	return ae
}

func build(collectionID string, col *remote.Collection, records []remote.Record, now time.Time) *Snapshot {
	s := &Snapshot{
		CollectionID:  collectionID,
		Title:         col.Title,
		Properties:    make(map[string]PropertyDescriptor, len(col.Properties)),
		PropertyOrder: propertyOrder(col),
		ValueTypes:    sampleValueTypes(records),
		TotalCount:    len(records),
		LastAnalyzed:  now.UTC(),
	}
	if s.Title == "" {
		s.Title = "Unknown"
	}
	for name, p := range col.Properties {
		s.Properties[name] = Describe(name, p)
	}
	n := len(records)
	if n > MaxSampleRecords {
		n = MaxSampleRecords
	}
	s.SampleRecords = append([]remote.Record{}, records[:n]...)
	return s
}

// propertyOrder keeps the platform's order and appends anything it missed by name.
func propertyOrder(col *remote.Collection) []string {
	order := make([]string, 0, len(col.Properties))
	seen := make(map[string]bool, len(col.Properties))
	for _, name := range col.Order {
		if _, ok := col.Properties[name]; ok && !seen[name] {
			order = append(order, name)
			seen[name] = true
		}
	}
	var rest []string
	for name := range col.Properties {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}
