// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_LoadAndSave(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "records.yaml")

	cfg := Config{
		Version: 1,
		Server:  Server{Addr: ":4000", Env: EnvDevelopment},
		Remote:  Remote{Kind: KindSandbox, Sandbox: Sandbox{DSN: "dev.db", Seed: "seed.yaml"}},
		Schema:  Schema{TTL: 90 * time.Second},
		Collections: map[string]Collection{
			"products": {IDEnv: "PRODUCT_DATA", Label: "Products"},
		},
	}

	err := cfg.Save(cfgPath)
	require.NoError(t, err)

	loaded, err := Load(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, cfg, *loaded)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "valid config",
			cfg:     Config{Version: 1},
			wantErr: "",
		},
		{
			name:    "unsupported version",
			cfg:     Config{Version: 99},
			wantErr: "unsupported config version",
		},
		{
			name:    "unknown remote kind",
			cfg:     Config{Version: 1, Remote: Remote{Kind: "airtable"}},
			wantErr: "remote.kind",
		},
		{
			name:    "unknown env",
			cfg:     Config{Version: 1, Server: Server{Env: "staging"}},
			wantErr: "server.env",
		},
		{
			name:    "sample size too large",
			cfg:     Config{Version: 1, Schema: Schema{SampleSize: 500}},
			wantErr: "sampleSize",
		},
		{
			name:    "bad collection name",
			cfg:     Config{Version: 1, Collections: map[string]Collection{"My Products": {ID: "x"}}},
			wantErr: "lowercase",
		},
		{
			name:    "collection without id",
			cfg:     Config{Version: 1, Collections: map[string]Collection{"products": {Label: "Products"}}},
			wantErr: "needs an id or idEnv",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestConfig_SaveFormat(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "records.yaml")

	cfg := Config{
		Version:     1,
		Remote:      Remote{Kind: KindNotion},
		Schema:      Schema{TTL: 5 * time.Minute},
		Collections: map[string]Collection{"products": {IDEnv: "PRODUCT_DATA"}},
	}

	err := cfg.Save(cfgPath)
	require.NoError(t, err)

	content, err := os.ReadFile(cfgPath) //nolint:gosec // test file path
	require.NoError(t, err)

	output := string(content)
	assert.Contains(t, output, "version: 1")
	assert.Contains(t, output, "kind: notion")
	assert.Contains(t, output, "ttl: 5m0s")
	assert.Contains(t, output, "idEnv: PRODUCT_DATA")
}

func TestConfig_Load(t *testing.T) {
	cfg, err := Load("testdata/valid.yaml")
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, EnvProduction, cfg.Server.Env)
	assert.Equal(t, 2*time.Minute, cfg.Schema.TTL)
	assert.Equal(t, 5, cfg.Schema.SampleSize)
	assert.Equal(t, Collection{IDEnv: "PRODUCT_DATA", Label: "Products"}, cfg.Collections["products"])
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Load_NotFound(t *testing.T) {
	_, err := Load("testdata/nonexistent.yaml")
	assert.Error(t, err)
}

func TestConfig_Load_Invalid(t *testing.T) {
	_, err := Load("testdata/invalid.yaml")
	assert.Error(t, err)
}

func TestConfig_Save_InvalidPath(t *testing.T) {
	cfg := Config{Version: 1}

	err := cfg.Save("/nonexistent/directory/config.yaml")
	assert.Error(t, err)
}

func TestConfig_Load_Empty(t *testing.T) {
	tmpDir := t.TempDir()
	emptyFile := filepath.Join(tmpDir, "empty.yaml")
	require.NoError(t, os.WriteFile(emptyFile, []byte(""), 0o600))

	_, err := Load(emptyFile)
	assert.Error(t, err)
}

func TestConfig_Normalize(t *testing.T) {
	cfg := Config{Version: 1}
	cfg.Normalize()
	assert.Equal(t, DefaultAddr, cfg.Server.Addr)
	assert.Equal(t, EnvDevelopment, cfg.Server.Env)
	assert.Equal(t, KindNotion, cfg.Remote.Kind)
	assert.Equal(t, DefaultTokenEnv, cfg.Remote.TokenEnv)
	assert.NotNil(t, cfg.Collections)
	assert.True(t, cfg.Development())

	sb := Config{Version: 1, Remote: Remote{Kind: KindSandbox}}
	sb.Normalize()
	assert.Equal(t, DefaultSandboxDSN, sb.Remote.Sandbox.DSN)
	assert.Empty(t, sb.Remote.TokenEnv)
}

func TestConfig_ApplyEnv(t *testing.T) {
	cfg, err := Load("testdata/valid.yaml")
	require.NoError(t, err)
	cfg.Normalize()

	env := map[string]string{
		"PRODUCT_DATA": "abc123",
		"PORT":         "9000",
		"RECORDS_ENV":  EnvDevelopment,
	}
	cfg.ApplyEnv(func(k string) string { return env[k] })

	assert.Equal(t, "abc123", cfg.Collections["products"].ID)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.True(t, cfg.Development())
	assert.Empty(t, cfg.Missing())
}

func TestConfig_Missing(t *testing.T) {
	cfg := Config{
		Version: 1,
		Collections: map[string]Collection{
			"products":  {IDEnv: "PRODUCT_DATA"},
			"vendors":   {ID: placeholderID},
			"customers": {ID: "c1"},
			"exchange":  {IDEnv: "EXCHANGE_DATA"},
		},
	}
	cfg.ApplyEnv(func(string) string { return "" })

	assert.Equal(t, []string{"exchange", "products", "vendors"}, cfg.Missing())
	assert.Equal(t, []string{"customers", "exchange", "products", "vendors"}, cfg.CollectionNames())
}
