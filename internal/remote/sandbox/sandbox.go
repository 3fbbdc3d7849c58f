// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package sandbox implements remote.Client on a local SQLite database so the
// service can run and be tested without the hosted platform.
package sandbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dacolabs/records/internal/property"
	"github.com/dacolabs/records/internal/remote"
	"github.com/google/uuid"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

var _ remote.Client = (*Store)(nil)

// Store is a SQLite-backed stand-in for the remote platform.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open opens (creating if needed) the sandbox database at dsn.
func Open(dsn string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One connection keeps in-memory databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialising sandbox: %w", err)
	}
	return s, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) init() error {
	stmts := []string{
		`PRAGMA foreign_keys=ON;`,
		`CREATE TABLE IF NOT EXISTS collections (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			properties TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS records (
			id TEXT PRIMARY KEY,
			collection_id TEXT NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
			archived INTEGER NOT NULL DEFAULT 0,
			created_time TEXT NOT NULL,
			last_edited_time TEXT NOT NULL,
			properties TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS records_by_collection ON records(collection_id, archived);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// CollectionDef declares a sandbox collection. Property order is preserved.
type CollectionDef struct {
	ID         string
	Title      string
	Properties []remote.PropertySchema
}

// CreateCollection creates or replaces a collection definition and returns its id.
func (s *Store) CreateCollection(ctx context.Context, def CollectionDef) (string, error) {
	if def.ID == "" {
		def.ID = uuid.NewString()
	}
	seen := make(map[string]struct{}, len(def.Properties))
	for i := range def.Properties {
		p := &def.Properties[i]
		if p.Name == "" {
			return "", fmt.Errorf("collection %q: property %d has no name", def.ID, i)
		}
		if _, dup := seen[p.Name]; dup {
			return "", fmt.Errorf("collection %q: duplicate property %q", def.ID, p.Name)
		}
		seen[p.Name] = struct{}{}
		if p.ID == "" {
			p.ID = propertyID(p.Type)
		}
	}

	props, err := json.Marshal(def.Properties)
	if err != nil {
		return "", err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO collections(id, title, properties, created_at) VALUES(?,?,?,?)
		 ON CONFLICT(id) DO UPDATE SET title=excluded.title, properties=excluded.properties`,
		def.ID, def.Title, string(props), s.timestamp())
	if err != nil {
		return "", err
	}
	return def.ID, nil
}

// CollectionIDs lists the ids of every sandbox collection, oldest first.
func (s *Store) CollectionIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM collections ORDER BY created_at, rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// propertyID mirrors the platform's ids: fixed ids for title and timestamp
// properties, short random ids otherwise.
func propertyID(typ string) string {
	switch property.ParseType(typ) {
	case property.TypeTitle:
		return "title"
	case property.TypeCreatedTime, property.TypeCreatedBy, property.TypeLastEditedTime, property.TypeLastEditedBy:
		return typ
	}
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// RetrieveCollection implements remote.Client.
func (s *Store) RetrieveCollection(ctx context.Context, collectionID string) (*remote.Collection, error) {
	title, props, err := s.loadCollection(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	col := &remote.Collection{
		ID:         collectionID,
		Title:      title,
		Properties: make(map[string]remote.PropertySchema, len(props)),
		Order:      make([]string, 0, len(props)),
	}
	for _, p := range props {
		col.Properties[p.Name] = p
		col.Order = append(col.Order, p.Name)
	}
	return col, nil
}

// QueryCollection implements remote.Client.
func (s *Store) QueryCollection(ctx context.Context, collectionID string, params remote.QueryParams) (*remote.QueryResult, error) {
	_, schema, err := s.loadCollection(ctx, collectionID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, archived, created_time, last_edited_time, properties FROM records
		 WHERE collection_id=? AND archived=0 ORDER BY created_time DESC, rowid DESC`, collectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var all []remote.Record
	for rows.Next() {
		rec, err := scanRecord(rows, collectionID, schema)
		if err != nil {
			return nil, err
		}
		all = append(all, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	matched, err := applyQuery(all, schema, params, s.now())
	if err != nil {
		return nil, err
	}
	return page(matched, params.StartCursor, params.PageSize)
}

// CreateRecord implements remote.Client.
func (s *Store) CreateRecord(ctx context.Context, collectionID string, properties map[string]any) (*remote.Record, error) {
	_, schema, err := s.loadCollection(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	stored, err := normalize(schema, properties)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	now := s.timestamp()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO records(id, collection_id, archived, created_time, last_edited_time, properties) VALUES(?,?,0,?,?,?)`,
		id, collectionID, now, now, string(data)); err != nil {
		return nil, err
	}
	return s.RetrieveRecord(ctx, id)
}

// UpdateRecord implements remote.Client.
func (s *Store) UpdateRecord(ctx context.Context, recordID string, params remote.UpdateParams) (*remote.Record, error) {
	collectionID, archived, stored, err := s.loadRecordRow(ctx, recordID)
	if err != nil {
		return nil, err
	}

	if len(params.Properties) > 0 {
		_, schema, err := s.loadCollection(ctx, collectionID)
		if err != nil {
			return nil, err
		}
		changes, err := normalize(schema, params.Properties)
		if err != nil {
			return nil, err
		}
		for name, v := range changes {
			stored[name] = v
		}
	}
	if params.Archived != nil {
		archived = *params.Archived
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE records SET archived=?, last_edited_time=?, properties=? WHERE id=?`,
		archived, s.timestamp(), string(data), recordID); err != nil {
		return nil, err
	}
	return s.RetrieveRecord(ctx, recordID)
}

// RetrieveRecord implements remote.Client. Archived records stay retrievable.
func (s *Store) RetrieveRecord(ctx context.Context, recordID string) (*remote.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, archived, created_time, last_edited_time, properties, collection_id FROM records WHERE id=?`, recordID)

	var (
		rec          remote.Record
		props        string
		collectionID string
	)
	if err := row.Scan(&rec.ID, &rec.Archived, &rec.CreatedTime, &rec.LastEditedTime, &props, &collectionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, remote.NotFound("page", recordID)
		}
		return nil, err
	}
	_, schema, err := s.loadCollection(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	stored := map[string]map[string]any{}
	if err := json.Unmarshal([]byte(props), &stored); err != nil {
		return nil, fmt.Errorf("record %s: %w", recordID, err)
	}
	finishRecord(&rec, collectionID, schema, stored)
	return &rec, nil
}

func (s *Store) loadCollection(ctx context.Context, id string) (string, []remote.PropertySchema, error) {
	var title, props string
	err := s.db.QueryRowContext(ctx, `SELECT title, properties FROM collections WHERE id=?`, id).Scan(&title, &props)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, remote.NotFound("database", id)
	}
	if err != nil {
		return "", nil, err
	}
	var schema []remote.PropertySchema
	if err := json.Unmarshal([]byte(props), &schema); err != nil {
		return "", nil, fmt.Errorf("collection %s: %w", id, err)
	}
	return title, schema, nil
}

func (s *Store) loadRecordRow(ctx context.Context, id string) (string, bool, map[string]map[string]any, error) {
	var (
		collectionID string
		archived     bool
		props        string
	)
	err := s.db.QueryRowContext(ctx, `SELECT collection_id, archived, properties FROM records WHERE id=?`, id).
		Scan(&collectionID, &archived, &props)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil, remote.NotFound("page", id)
	}
	if err != nil {
		return "", false, nil, err
	}
	stored := map[string]map[string]any{}
	if err := json.Unmarshal([]byte(props), &stored); err != nil {
		return "", false, nil, fmt.Errorf("record %s: %w", id, err)
	}
	return collectionID, archived, stored, nil
}

func scanRecord(rows *sql.Rows, collectionID string, schema []remote.PropertySchema) (*remote.Record, error) {
	var (
		rec   remote.Record
		props string
	)
	if err := rows.Scan(&rec.ID, &rec.Archived, &rec.CreatedTime, &rec.LastEditedTime, &props); err != nil {
		return nil, err
	}
	stored := map[string]map[string]any{}
	if err := json.Unmarshal([]byte(props), &stored); err != nil {
		return nil, fmt.Errorf("record %s: %w", rec.ID, err)
	}
	finishRecord(&rec, collectionID, schema, stored)
	return &rec, nil
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format("2006-01-02T15:04:05.000Z")
}

// normalize checks a write payload against the collection schema and keeps
// only the type key of each value, the way the platform stores it.
func normalize(schema []remote.PropertySchema, props map[string]any) (map[string]map[string]any, error) {
	byName := make(map[string]remote.PropertySchema, len(schema))
	for _, p := range schema {
		byName[p.Name] = p
	}

	out := make(map[string]map[string]any, len(props))
	for name, raw := range props {
		p, ok := byName[name]
		if !ok {
			return nil, validationError("%s is not a property that exists.", name)
		}
		if !property.ParseType(p.Type).Writable() {
			return nil, validationError("%s is a %s property and cannot be written.", name, p.Type)
		}
		v, ok := asObject(raw)
		if !ok {
			return nil, validationError("%s should be an object.", name)
		}
		content, ok := v[p.Type]
		if !ok {
			return nil, validationError("%s is expected to be %s.", name, p.Type)
		}
		out[name] = map[string]any{p.Type: content}
	}
	return out, nil
}

func asObject(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case property.Value:
		return m, true
	}
	return nil, false
}

func validationError(format string, args ...any) *remote.Error {
	return &remote.Error{
		Status:  http.StatusBadRequest,
		Code:    "validation_error",
		Message: fmt.Sprintf(format, args...),
	}
}

// finishRecord fills in every schema property in read form: id and type
// annotations, plain_text on text runs, and platform-computed values.
func finishRecord(rec *remote.Record, collectionID string, schema []remote.PropertySchema, stored map[string]map[string]any) {
	rec.Object = "page"
	rec.Parent = map[string]any{"type": "database_id", "database_id": collectionID}
	rec.URL = "sandbox://" + collectionID + "/" + rec.ID
	rec.Properties = make(map[string]property.Value, len(schema))

	for _, p := range schema {
		v := property.Value{"id": p.ID, "type": p.Type}
		t := property.ParseType(p.Type)
		if content, ok := stored[p.Name][p.Type]; ok {
			v[p.Type] = content
		} else {
			v[p.Type] = emptyContent(t)
		}

		switch t {
		case property.TypeTitle, property.TypeText:
			v[p.Type] = withPlainText(v[p.Type])
		case property.TypeCreatedTime:
			v[p.Type] = rec.CreatedTime
		case property.TypeLastEditedTime:
			v[p.Type] = rec.LastEditedTime
		case property.TypeCreatedBy, property.TypeLastEditedBy:
			v[p.Type] = map[string]any{"object": "user", "id": "sandbox"}
		}
		rec.Properties[p.Name] = v
	}
}

func emptyContent(t property.Type) any {
	switch t {
	case property.TypeTitle, property.TypeText, property.TypeMultiSelect, property.TypeRelation:
		return []any{}
	case property.TypeCheckbox:
		return false
	case property.TypeFormula, property.TypeRollup, property.TypeUniqueID:
		return map[string]any{}
	}
	return nil
}

func withPlainText(content any) any {
	runs, ok := content.([]any)
	if !ok {
		return []any{}
	}
	out := make([]any, 0, len(runs))
	for _, r := range runs {
		run, ok := r.(map[string]any)
		if !ok {
			continue
		}
		annotated := make(map[string]any, len(run)+2)
		for k, v := range run {
			annotated[k] = v
		}
		if _, ok := annotated["plain_text"]; !ok {
			if text, ok := run["text"].(map[string]any); ok {
				annotated["plain_text"], _ = text["content"].(string)
			}
		}
		if _, ok := annotated["type"]; !ok {
			annotated["type"] = "text"
		}
		out = append(out, annotated)
	}
	return out
}
