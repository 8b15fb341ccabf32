/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	content := `
log:
  level: debug
database:
  connection:
    type: postgres
    host: db.local
    port: 5432
    conn_max_lifetime: 10m
  migrate:
    enable_foreign_key: false
  init:
    environment: test
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))

	for _, path := range []string{dir, filepath.Join(dir, "config.yaml")} {
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, "text", cfg.Log.Format)
		conn := cfg.Database.ConnectionConfig
		assert.Equal(t, "postgres", conn.Type)
		assert.Equal(t, "db.local", conn.Host)
		assert.Equal(t, 5432, conn.Port)
		assert.Equal(t, 10*time.Minute, conn.ConnMaxLifetime)
		assert.Equal(t, 100, conn.MaxOpenConns, "unset keys keep their defaults")
		assert.False(t, cfg.Database.DataMigrateConfig.EnableForeignKey)
		assert.True(t, cfg.Database.DataMigrateConfig.EnableMigrateOnStartup)
		assert.Equal(t, "test", cfg.Database.DataInitConfig.Environment)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PAYBOOK_LOG_FORMAT", "json")
	t.Setenv("PAYBOOK_DATABASE_CONNECTION_DBNAME", "ledger")
	t.Setenv("PAYBOOK_DATABASE_CONNECTION_SLOW_QUERY_TIME", "250ms")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "ledger", cfg.Database.ConnectionConfig.DBName)
	assert.Equal(t, 250*time.Millisecond, cfg.Database.ConnectionConfig.SlowQueryTime)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
