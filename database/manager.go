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
	"database/sql"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

const sqlLogEnv = "PAYBOOK_SQL_LOG"

type defaultDatabaseManager struct {
	config          *Config
	registry        ModelRegistry
	db              *bun.DB
	sqlDB           *sql.DB
	logger          Logger
	mu              sync.RWMutex
	connected       bool
	lastError       error
	healthStatus    *HealthStatus
	reconnectTries  int
	stopHealthCheck chan struct{}
}

// NewDatabaseManager returns a Bun-backed manager for cfg. Tables are taken
// from the default model registry. A nil cfg means DefaultConfig.
func NewDatabaseManager(cfg *Config) AbstractDatabaseManager {
	return newDatabaseManager(cfg, defaultRegistry)
}

func newDatabaseManager(cfg *Config, registry ModelRegistry) *defaultDatabaseManager {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &defaultDatabaseManager{
		config:       cfg,
		registry:     registry,
		logger:       GetLogger(),
		healthStatus: &HealthStatus{},
	}
}

func (dm *defaultDatabaseManager) conn() *ConnectionConfig {
	return &dm.config.ConnectionConfig
}

func (dm *defaultDatabaseManager) Connect(ctx context.Context) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if dm.connected && dm.db != nil {
		return nil
	}

	sqlDB, db, err := dm.createConnection()
	if err != nil {
		dm.lastError = err
		return fmt.Errorf("failed to create database connection: %w", err)
	}
	dm.sqlDB, dm.db = sqlDB, db
	dm.configureConnectionPool()

	pingCtx, cancel := context.WithTimeout(ctx, dm.conn().ConnectTimeout)
	defer cancel()
	if err := dm.db.PingContext(pingCtx); err != nil {
		dm.lastError = err
		_ = dm.db.Close()
		dm.db, dm.sqlDB = nil, nil
		return fmt.Errorf("database connection test failed: %w", err)
	}

	if dm.isSQLite() && dm.config.DataMigrateConfig.EnableForeignKey {
		if _, err := dm.db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			dm.lastError = err
			return fmt.Errorf("failed to enable sqlite foreign keys: %w", err)
		}
	}

	dm.db.RegisterModel(dm.registry.Instances()...)

	dm.connected = true
	dm.lastError = nil

	if dm.conn().HealthCheckInterval > 0 {
		dm.startHealthCheck()
	}

	dm.logger.Info("Database connected", "type", dm.conn().Type, "host", dm.conn().Host, "dbname", dm.conn().DBName)
	return nil
}

func (dm *defaultDatabaseManager) isSQLite() bool {
	t := strings.ToLower(dm.conn().Type)
	return t == "sqlite" || t == "sqlite3"
}

func (dm *defaultDatabaseManager) createConnection() (*sql.DB, *bun.DB, error) {
	cfg := dm.conn()
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 30 * time.Second
	}

	var (
		sqlDB *sql.DB
		db    *bun.DB
		err   error
	)
	switch strings.ToLower(cfg.Type) {
	case "mysql":
		sqlDB, err = sql.Open("mysql", mysqlDSN(cfg))
		if err == nil {
			db = bun.NewDB(sqlDB, mysqldialect.New())
		}
	case "postgres", "postgresql":
		sqlDB, err = sql.Open("postgres", postgresDSN(cfg))
		if err == nil {
			db = bun.NewDB(sqlDB, pgdialect.New())
		}
	case "sqlite", "sqlite3":
		sqlDB, err = sql.Open(sqliteshim.ShimName, sqliteDSN(cfg))
		if err == nil {
			db = bun.NewDB(sqlDB, sqlitedialect.New())
		}
	default:
		return nil, nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
	if err != nil {
		return nil, nil, err
	}

	if cfg.EnableQueryLog {
		db.AddQueryHook(bundebug.NewQueryHook(
			bundebug.WithVerbose(true),
			bundebug.FromEnv("BUNDEBUG"),
		))
	} else {
		db.AddQueryHook(NewQueryHook(WithQueryHookEnv(sqlLogEnv), WithQueryHookWriter(os.Stderr)))
	}
	if cfg.SlowQueryTime > 0 {
		db.AddQueryHook(NewSlowQueryHook(cfg.SlowQueryTime, dm.logger))
	}
	return sqlDB, db, nil
}

func mysqlDSN(cfg *ConnectionConfig) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&timeout=%s&readTimeout=%s&writeTimeout=%s",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.DBName,
		cfg.ConnectTimeout, cfg.ReadTimeout, cfg.WriteTimeout,
	)
}

func postgresDSN(cfg *ConnectionConfig) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&connect_timeout=%d",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.DBName,
		sslMode, int(cfg.ConnectTimeout.Seconds()),
	)
}

// sqliteDSN maps DBName to "<name>.db". An empty name or ":memory:" opens a
// private in-memory database, which lives as long as the single pooled
// connection.
func sqliteDSN(cfg *ConnectionConfig) string {
	switch {
	case cfg.DSN != "":
		return cfg.DSN
	case cfg.DBName == ":memory:" || cfg.DBName == "":
		return ":memory:"
	case strings.HasSuffix(cfg.DBName, ".db"):
		return cfg.DBName
	default:
		return cfg.DBName + ".db"
	}
}

func (dm *defaultDatabaseManager) configureConnectionPool() {
	if dm.sqlDB == nil {
		return
	}
	cfg := dm.conn()
	if dm.isSQLite() {
		// PRAGMA settings are per connection; keep exactly one alive.
		dm.sqlDB.SetMaxOpenConns(1)
		dm.sqlDB.SetMaxIdleConns(1)
		dm.sqlDB.SetConnMaxLifetime(0)
		dm.sqlDB.SetConnMaxIdleTime(0)
		return
	}
	dm.sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	dm.sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	dm.sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dm.sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
}

func (dm *defaultDatabaseManager) Disconnect() error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if dm.stopHealthCheck != nil {
		close(dm.stopHealthCheck)
		dm.stopHealthCheck = nil
	}
	return dm.closeLocked()
}

func (dm *defaultDatabaseManager) closeLocked() error {
	if dm.db == nil {
		return nil
	}
	err := dm.db.Close()
	dm.db = nil
	dm.sqlDB = nil
	dm.connected = false
	if err != nil {
		dm.logger.Error("Failed to close database connection", "error", err)
	} else {
		dm.logger.Info("Database connection closed")
	}
	return err
}

// Reconnect replaces the connection and leaves a running health check in
// place.
func (dm *defaultDatabaseManager) Reconnect(ctx context.Context) error {
	dm.logger.Info("Reconnecting to the database", "type", dm.conn().Type)
	dm.mu.Lock()
	if err := dm.closeLocked(); err != nil {
		dm.logger.Warn("Error closing the previous connection", "error", err)
	}
	dm.mu.Unlock()
	return dm.Connect(ctx)
}

func (dm *defaultDatabaseManager) Ping(ctx context.Context) error {
	dm.mu.RLock()
	db := dm.db
	dm.mu.RUnlock()
	if db == nil {
		return ErrNotConnected
	}
	return db.PingContext(ctx)
}

func (dm *defaultDatabaseManager) GetDB() *bun.DB {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.db
}

func (dm *defaultDatabaseManager) GetSQLDB() *sql.DB {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.sqlDB
}

func (dm *defaultDatabaseManager) HealthCheck(ctx context.Context) *HealthStatus {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	start := time.Now()
	status := &HealthStatus{LastCheckTime: start, Connected: dm.connected}
	if dm.db == nil {
		status.LastError = ErrNotInitialized.Error()
		return status
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err := dm.db.PingContext(pingCtx)
	status.ResponseTime = time.Since(start)
	if err != nil {
		status.Connected = false
		status.LastError = err.Error()
		dm.lastError = err
	} else {
		status.Healthy = true
		status.Connected = true
		dm.lastError = nil
	}

	stats := dm.sqlDB.Stats()
	status.ActiveConns = stats.InUse
	status.IdleConns = stats.Idle
	status.MaxOpenConns = stats.MaxOpenConnections

	dm.healthStatus = status
	return status
}

// startHealthCheck must be called with dm.mu held.
func (dm *defaultDatabaseManager) startHealthCheck() {
	if dm.stopHealthCheck != nil {
		return
	}
	stop := make(chan struct{})
	dm.stopHealthCheck = stop
	interval := dm.conn().HealthCheckInterval
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				status := dm.HealthCheck(ctx)
				cancel()
				if !status.Healthy && dm.conn().EnableReconnect {
					dm.handleReconnect()
				}
			case <-stop:
				return
			}
		}
	}()
}

func (dm *defaultDatabaseManager) handleReconnect() {
	cfg := dm.conn()
	if dm.reconnectTries >= cfg.MaxReconnectTries {
		dm.logger.Error("Max reconnect attempts reached", "tries", dm.reconnectTries)
		return
	}
	dm.reconnectTries++
	dm.logger.Info("Starting database reconnect", "try", dm.reconnectTries)

	time.Sleep(cfg.ReconnectInterval)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()
	if err := dm.Reconnect(ctx); err != nil {
		dm.logger.Error("Reconnect failed", "error", err, "try", dm.reconnectTries)
		return
	}
	dm.reconnectTries = 0
	dm.logger.Info("Reconnect succeeded")
}

func (dm *defaultDatabaseManager) GetStats() *DBStats {
	dm.mu.RLock()
	sqlDB := dm.sqlDB
	dm.mu.RUnlock()
	if sqlDB == nil {
		return &DBStats{}
	}

	stats := sqlDB.Stats()
	return &DBStats{
		MaxOpenConns:      stats.MaxOpenConnections,
		OpenConns:         stats.OpenConnections,
		InUse:             stats.InUse,
		Idle:              stats.Idle,
		WaitCount:         stats.WaitCount,
		WaitDuration:      stats.WaitDuration,
		MaxIdleClosed:     stats.MaxIdleClosed,
		MaxIdleTimeClosed: stats.MaxIdleTimeClosed,
		MaxLifetimeClosed: stats.MaxLifetimeClosed,
	}
}

func (dm *defaultDatabaseManager) migrationManager() (*MigrationManager, error) {
	db := dm.GetDB()
	if db == nil {
		return nil, ErrNotConnected
	}
	return NewMigrationManager(db, dm.logger,
		WithRegistry(dm.registry),
		WithMigrateConfig(dm.config.DataMigrateConfig),
		WithInitConfig(dm.config.DataInitConfig),
	), nil
}

func (dm *defaultDatabaseManager) RunMigrations(ctx context.Context) error {
	mm, err := dm.migrationManager()
	if err != nil {
		return err
	}
	return mm.RunMigrations(ctx)
}

func (dm *defaultDatabaseManager) InitData(ctx context.Context) error {
	mm, err := dm.migrationManager()
	if err != nil {
		return err
	}
	return mm.InitData(ctx)
}

func (dm *defaultDatabaseManager) SetLogger(logger Logger) {
	if logger == nil {
		return
	}
	dm.mu.Lock()
	defer dm.mu.Unlock()
	dm.logger = logger
}
