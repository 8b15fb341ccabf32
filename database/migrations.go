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

package database

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/uptrace/bun"
)

// MigrationManager applies versioned schema steps once and records them in
// a tracking table.
type MigrationManager struct {
	db       *bun.DB
	logger   Logger
	registry ModelRegistry
	migrate  DataMigrateConfig
	seed     DataInitConfig
}

// Migration is an applied step as stored in the tracking table.
type Migration struct {
	bun.BaseModel `bun:"table:paybook_migrations"`

	Version     string    `bun:"version,pk"`
	Name        string    `bun:"name,notnull"`
	AppliedAt   time.Time `bun:"applied_at,notnull"`
	Description string    `bun:"description"`
}

// MigrationFunc is a step executed inside the migration transaction.
type MigrationFunc func(ctx context.Context, db bun.IDB) error

// MigrationItem describes one version.
type MigrationItem struct {
	Version     string
	Name        string
	Description string
	Up          MigrationFunc
}

type MigrationOption func(*MigrationManager)

// WithRegistry selects the models whose tables are created.
func WithRegistry(r ModelRegistry) MigrationOption {
	return func(mm *MigrationManager) { mm.registry = r }
}

func WithMigrateConfig(cfg DataMigrateConfig) MigrationOption {
	return func(mm *MigrationManager) { mm.migrate = cfg }
}

func WithInitConfig(cfg DataInitConfig) MigrationOption {
	return func(mm *MigrationManager) { mm.seed = cfg }
}

// NewMigrationManager returns a manager over the default registry with
// foreign keys enabled and seeding disabled, unless options say otherwise.
func NewMigrationManager(db *bun.DB, logger Logger, opts ...MigrationOption) *MigrationManager {
	if logger == nil {
		logger = GetLogger()
	}
	defaults := DefaultConfig()
	mm := &MigrationManager{
		db:       db,
		logger:   logger,
		registry: defaultRegistry,
		migrate:  defaults.DataMigrateConfig,
		seed:     defaults.DataInitConfig,
	}
	for _, opt := range opts {
		opt(mm)
	}
	return mm
}

// RunMigrations creates the tracking table and applies every pending step
// in version order, each in its own transaction.
func (mm *MigrationManager) RunMigrations(ctx context.Context) error {
	if mm.db == nil {
		return ErrNotInitialized
	}
	if _, ok := os.LookupEnv("BUNDEBUG_MIGRATION"); !ok {
		SilenceQueryLog(true)
		defer SilenceQueryLog(false)
	}

	if _, err := mm.db.NewCreateTable().Model((*Migration)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	migrations := mm.getAllMigrations()
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	for _, m := range migrations {
		if err := mm.runMigration(ctx, m); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", m.Version, err)
		}
	}

	mm.logger.Info("Database migrations completed")
	return nil
}

func (mm *MigrationManager) getAllMigrations() []MigrationItem {
	migrations := []MigrationItem{
		{
			Version:     "001",
			Name:        "create_base_tables",
			Description: "Create tables for registered models",
			Up:          mm.createBaseTables,
		},
	}
	if mm.seed.AutoInitOnStartup {
		migrations = append(migrations, MigrationItem{
			Version:     "002",
			Name:        "seed_initial_data",
			Description: "Seed data from SQL files",
			Up:          mm.seedInitialData,
		})
	}
	return migrations
}

func (mm *MigrationManager) runMigration(ctx context.Context, m MigrationItem) error {
	exists, err := mm.db.NewSelect().
		Model((*Migration)(nil)).
		Where("version = ?", m.Version).
		Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		mm.logger.Debug("Migration already applied", "version", m.Version)
		return nil
	}

	err = mm.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := m.Up(ctx, tx); err != nil {
			return err
		}
		record := &Migration{
			Version:     m.Version,
			Name:        m.Name,
			AppliedAt:   time.Now(),
			Description: m.Description,
		}
		_, err := tx.NewInsert().Model(record).Exec(ctx)
		return err
	})
	if err != nil {
		return err
	}
	mm.logger.Info("Migration applied", "version", m.Version, "name", m.Name)
	return nil
}

func (mm *MigrationManager) createBaseTables(ctx context.Context, db bun.IDB) error {
	models := mm.registry.Models()
	if mm.migrate.EnableForeignKey {
		if errs := ValidateConstraints(models); len(errs) > 0 {
			for _, err := range errs {
				mm.logger.Error("Invalid foreign key", "error", err)
			}
			return fmt.Errorf("foreign key validation failed, %d errors in total", len(errs))
		}
	}

	for _, model := range models {
		q := db.NewCreateTable().Model(model.Instance()).IfNotExists()
		if mm.migrate.EnableForeignKey {
			for _, fk := range model.ForeignKeys() {
				q = fk.apply(q)
			}
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table %s: %w", getModelName(model.Instance()), err)
		}
		mm.logger.Debug("Table ready", "model", getModelName(model.Instance()))
	}
	return nil
}

// InitData runs the SQL seed files outside the migration bookkeeping.
func (mm *MigrationManager) InitData(ctx context.Context) error {
	if mm.db == nil {
		return ErrNotInitialized
	}
	return mm.seedInitialData(ctx, mm.db)
}

func (mm *MigrationManager) seedInitialData(ctx context.Context, db bun.IDB) error {
	sqlManager := NewSQLInitManager(db, mm.seed.Environment)
	sqlManager.SetLogger(mm.logger)
	if mm.seed.Filepath != "" {
		sqlManager.SetSQLRootPath(mm.seed.Filepath)
	}
	if err := sqlManager.ExecuteInitialization(ctx); err != nil {
		return fmt.Errorf("SQL file initialization failed: %w", err)
	}
	return nil
}

// GetAppliedMigrations returns the tracking records ordered by version.
func (mm *MigrationManager) GetAppliedMigrations(ctx context.Context) ([]Migration, error) {
	var migrations []Migration
	err := mm.db.NewSelect().
		Model(&migrations).
		Order("version ASC").
		Scan(ctx)
	return migrations, err
}

func getModelName(model interface{}) string {
	if t := modelType(model); t != nil {
		return t.Name()
	}
	return fmt.Sprintf("%T", model)
}
