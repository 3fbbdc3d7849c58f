// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		assert.NoError(t, loadDotEnv(filepath.Join(dir, "absent.env")))
	})

	t.Run("sets variables", func(t *testing.T) {
		path := filepath.Join(dir, "vars.env")
		require.NoError(t, os.WriteFile(path, []byte("RECORDS_DOTENV_TEST=from-file\n"), 0o600))
		t.Setenv("RECORDS_DOTENV_TEST", "")
		require.NoError(t, os.Unsetenv("RECORDS_DOTENV_TEST"))

		require.NoError(t, loadDotEnv(path))
		assert.Equal(t, "from-file", os.Getenv("RECORDS_DOTENV_TEST"))
	})

	t.Run("does not override", func(t *testing.T) {
		path := filepath.Join(dir, "override.env")
		require.NoError(t, os.WriteFile(path, []byte("RECORDS_DOTENV_KEEP=from-file\n"), 0o600))
		t.Setenv("RECORDS_DOTENV_KEEP", "from-env")

		require.NoError(t, loadDotEnv(path))
		assert.Equal(t, "from-env", os.Getenv("RECORDS_DOTENV_KEEP"))
	})
}
