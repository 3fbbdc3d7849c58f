// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package session

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/dacolabs/records/internal/records"
	"github.com/dacolabs/records/internal/remote"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		dir     string // relative to testdata, empty means use t.TempDir()
		env     map[string]string
		wantErr error
	}{
		{
			name:    "not initialized",
			dir:     "",
			wantErr: ErrNotInitialized,
		},
		{
			name:    "invalid config",
			dir:     "testdata/invalid-config",
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "missing token",
			dir:     "testdata/notion",
			wantErr: ErrMissingToken,
		},
		{
			name: "notion",
			dir:  "testdata/notion",
			env:  map[string]string{"TEST_NOTION_TOKEN": "secret"},
		},
		{
			name: "sandbox",
			dir:  "testdata/valid",
			env:  map[string]string{"PRODUCT_DATA": "products"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := tt.dir
			if dir == "" {
				dir = t.TempDir()
			}
			path, err := filepath.Abs(filepath.Join(dir, ConfigFileName))
			require.NoError(t, err)

			ctx, err := Load(context.Background(), Options{
				ConfigPath: path,
				Getenv:     envOf(tt.env),
				LogOutput:  &bytes.Buffer{},
			})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			sc := From(ctx)
			require.NotNil(t, sc)
			t.Cleanup(func() { _ = sc.Close() })
			assert.Equal(t, path, sc.ConfigPath)
			assert.Equal(t, 1, sc.Registry.Len())
		})
	}
}

func TestLoad_NotionClient(t *testing.T) {
	path, err := filepath.Abs("testdata/notion/records.yaml")
	require.NoError(t, err)

	ctx, err := Load(context.Background(), Options{
		ConfigPath: path,
		Getenv:     envOf(map[string]string{"TEST_NOTION_TOKEN": "secret"}),
		LogOutput:  &bytes.Buffer{},
	})
	require.NoError(t, err)

	sc := From(ctx)
	assert.IsType(t, &remote.HTTPClient{}, sc.Client)
	assert.Nil(t, sc.Sandbox)

	svc, err := sc.Registry.Get("vendors")
	require.NoError(t, err)
	assert.Equal(t, "0f1e2d3c4b5a69788796a5b4c3d2e1f0", svc.CollectionID())
	assert.Equal(t, "vendors", svc.Label())
}

func TestLoad_SandboxSeeded(t *testing.T) {
	path, err := filepath.Abs("testdata/valid/records.yaml")
	require.NoError(t, err)

	var logs bytes.Buffer
	ctx, err := Load(context.Background(), Options{
		ConfigPath: path,
		Getenv:     envOf(map[string]string{"PRODUCT_DATA": "products"}),
		LogOutput:  &logs,
	})
	require.NoError(t, err)
	sc := From(ctx)
	t.Cleanup(func() { _ = sc.Close() })

	require.NotNil(t, sc.Sandbox)
	svc, err := sc.Registry.Get("products")
	require.NoError(t, err)
	assert.Equal(t, "Products", svc.Label())

	res, err := svc.List(context.Background(), records.Query{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)
	assert.Contains(t, logs.String(), "sandbox seeded")
}

func TestLoad_WarnsOnMissingIDs(t *testing.T) {
	path, err := filepath.Abs("testdata/valid/records.yaml")
	require.NoError(t, err)

	var logs bytes.Buffer
	ctx, err := Load(context.Background(), Options{
		ConfigPath: path,
		Getenv:     envOf(nil),
		LogOutput:  &logs,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = From(ctx).Close() })

	assert.Contains(t, logs.String(), "collection id not configured")
	assert.Contains(t, logs.String(), "PRODUCT_DATA")
}

func TestFrom_NoContextStored(t *testing.T) {
	assert.Nil(t, From(context.Background()))
}

func TestRequireFromCommand(t *testing.T) {
	path, err := filepath.Abs("testdata/valid/records.yaml")
	require.NoError(t, err)

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())

	_, err = RequireFromCommand(cmd)
	assert.Error(t, err)

	load := PreRunLoad(func() Options {
		return Options{ConfigPath: path, Getenv: envOf(nil), LogOutput: &bytes.Buffer{}}
	})
	require.NoError(t, load(cmd, nil))

	sc, err := RequireFromCommand(cmd)
	require.NoError(t, err)
	assert.Equal(t, []string{"products"}, sc.Registry.Names())
	assert.NoError(t, PostRunClose(cmd, nil))
}
