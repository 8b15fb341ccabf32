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

// Package dbtest opens migrated in-memory SQLite databases for tests.
package dbtest

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/tomoncle/paybook/database"
	_ "github.com/tomoncle/paybook/entity"
	"github.com/tomoncle/paybook/fixtures"
)

// Fixture is the data set loaded by NewSeeded. Payment averages: Bill 300,
// Steve 450, Sergey 500, Tim 350, Diane 300; overall 5350/14.
const Fixture = `
companies:
  - name: Google
    locales:
      - {lang: en, description: Search}
      - {lang: ru, description: Поиск}
  - name: Microsoft
  - name: Apple
users:
  - {username: bill, firstname: Bill, lastname: Gates, birth_date: 1955-10-28, role: admin, company: Microsoft, payments: [100, 300, 500]}
  - {username: steve, firstname: Steve, lastname: Jobs, birth_date: 1955-02-24, role: user, company: Apple, payments: [250, 600, 500], profile: {street: Infinite Loop 1, language: en}}
  - {username: sergey, firstname: Sergey, lastname: Brin, birth_date: 1973-08-21, role: user, company: Google, payments: [500, 500, 500]}
  - {username: tim, firstname: Tim, lastname: Cook, birth_date: 1960-11-01, role: user, company: Apple, payments: [400, 300]}
  - {username: diane, firstname: Diane, lastname: Greene, birth_date: 1955-01-01, role: admin, company: Google, payments: [300, 300, 300]}
  - {username: ivan, firstname: Ivan, lastname: Ivanov, birth_date: 1990-01-01}
`

// New returns a migrated, empty database closed with the test.
func New(t testing.TB) *bun.DB {
	t.Helper()
	cfg := database.DefaultConfig()
	cfg.ConnectionConfig.DBName = ":memory:"
	cfg.ConnectionConfig.HealthCheckInterval = 0
	cfg.ConnectionConfig.SlowQueryTime = 0

	manager := database.NewDatabaseManager(cfg)
	ctx := context.Background()
	require.NoError(t, manager.Connect(ctx))
	t.Cleanup(func() { _ = manager.Disconnect() })
	require.NoError(t, manager.RunMigrations(ctx))
	return manager.GetDB()
}

// NewSeeded returns a database holding Fixture.
func NewSeeded(t testing.TB) *bun.DB {
	t.Helper()
	db := New(t)
	set, err := fixtures.Parse(strings.NewReader(Fixture))
	require.NoError(t, err)
	_, err = set.Apply(context.Background(), db)
	require.NoError(t, err)
	return db
}
