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
	"time"

	"github.com/uptrace/bun"
)

// AbstractDatabaseManager defines the operations for managing a database
// connection, running migrations, seeding data, and reporting health.
type AbstractDatabaseManager interface {
	Connect(ctx context.Context) error
	Disconnect() error
	Reconnect(ctx context.Context) error
	Ping(ctx context.Context) error
	HealthCheck(ctx context.Context) *HealthStatus
	GetDB() *bun.DB
	GetSQLDB() *sql.DB
	RunMigrations(ctx context.Context) error
	InitData(ctx context.Context) error
	GetStats() *DBStats
	SetLogger(logger Logger)
}

// HealthStatus holds the result of a health check against the database.
type HealthStatus struct {
	Healthy       bool          `json:"healthy"`
	Connected     bool          `json:"connected"`
	ResponseTime  time.Duration `json:"response_time"`
	ActiveConns   int           `json:"active_conns"`
	IdleConns     int           `json:"idle_conns"`
	MaxOpenConns  int           `json:"max_open_conns"`
	LastError     string        `json:"last_error,omitempty"`
	LastCheckTime time.Time     `json:"last_check_time"`
}

// DBStats mirrors database/sql pool stats.
type DBStats struct {
	MaxOpenConns      int           `json:"max_open_conns"`
	OpenConns         int           `json:"open_conns"`
	InUse             int           `json:"in_use"`
	Idle              int           `json:"idle"`
	WaitCount         int64         `json:"wait_count"`
	WaitDuration      time.Duration `json:"wait_duration"`
	MaxIdleClosed     int64         `json:"max_idle_closed"`
	MaxIdleTimeClosed int64         `json:"max_idle_time_closed"`
	MaxLifetimeClosed int64         `json:"max_lifetime_closed"`
}

// ConnectionConfig describes how to connect to a database and tune its pool.
type ConnectionConfig struct {
	Type                string        `json:"type" mapstructure:"type"` // postgres, mysql, sqlite
	Host                string        `json:"host" mapstructure:"host"`
	Port                int           `json:"port" mapstructure:"port"`
	Username            string        `json:"username" mapstructure:"username"`
	Password            string        `json:"password" mapstructure:"password"`
	DBName              string        `json:"dbname" mapstructure:"dbname"`
	DSN                 string        `json:"dsn" mapstructure:"dsn"` // overrides the generated DSN when set
	SSLMode             string        `json:"sslmode" mapstructure:"sslmode"`
	MaxIdleConns        int           `json:"max_idle_conns" mapstructure:"max_idle_conns"`
	MaxOpenConns        int           `json:"max_open_conns" mapstructure:"max_open_conns"`
	ConnMaxLifetime     time.Duration `json:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime     time.Duration `json:"conn_max_idle_time" mapstructure:"conn_max_idle_time"`
	ConnectTimeout      time.Duration `json:"connect_timeout" mapstructure:"connect_timeout"`
	ReadTimeout         time.Duration `json:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout        time.Duration `json:"write_timeout" mapstructure:"write_timeout"`
	EnableReconnect     bool          `json:"enable_reconnect" mapstructure:"enable_reconnect"`
	ReconnectInterval   time.Duration `json:"reconnect_interval" mapstructure:"reconnect_interval"`
	MaxReconnectTries   int           `json:"max_reconnect_tries" mapstructure:"max_reconnect_tries"`
	HealthCheckInterval time.Duration `json:"health_check_interval" mapstructure:"health_check_interval"`
	EnableQueryLog      bool          `json:"enable_query_log" mapstructure:"enable_query_log"`
	SlowQueryTime       time.Duration `json:"slow_query_time" mapstructure:"slow_query_time"`
}

// DataMigrateConfig controls schema migration behavior on startup.
type DataMigrateConfig struct {
	EnableMigrateOnStartup bool `json:"enable_migrate_on_startup" mapstructure:"enable_migrate_on_startup"`
	EnableForeignKey       bool `json:"enable_foreign_key" mapstructure:"enable_foreign_key"`
}

// DataInitConfig controls data seeding and environment selection.
type DataInitConfig struct {
	AutoInitOnStartup bool   `json:"auto_init_on_startup" mapstructure:"auto_init_on_startup"`
	Filepath          string `json:"filepath" mapstructure:"filepath"`
	Environment       string `json:"environment" mapstructure:"environment"`
	FixtureFile       string `json:"fixture_file" mapstructure:"fixture_file"`
}

// Config aggregates connection, migration, and data initialization settings.
type Config struct {
	ConnectionConfig  ConnectionConfig  `json:"connection_config" mapstructure:"connection"`
	DataMigrateConfig DataMigrateConfig `json:"data_migrate_config" mapstructure:"migrate"`
	DataInitConfig    DataInitConfig    `json:"data_init_config" mapstructure:"init"`
}

// DefaultConnectionConfig returns a connection config with sensible defaults.
func DefaultConnectionConfig() *ConnectionConfig {
	return &ConnectionConfig{
		Type:                "sqlite",
		DBName:              "paybook",
		MaxIdleConns:        10,
		MaxOpenConns:        100,
		ConnMaxLifetime:     time.Hour,
		ConnMaxIdleTime:     time.Minute * 30,
		ConnectTimeout:      time.Second * 10,
		ReadTimeout:         time.Second * 30,
		WriteTimeout:        time.Second * 30,
		EnableReconnect:     true,
		ReconnectInterval:   time.Second * 5,
		MaxReconnectTries:   3,
		HealthCheckInterval: time.Minute * 5,
		SlowQueryTime:       time.Second * 2,
	}
}

// DefaultConfig returns a full config with migrations and foreign keys on.
func DefaultConfig() *Config {
	return &Config{
		ConnectionConfig: *DefaultConnectionConfig(),
		DataMigrateConfig: DataMigrateConfig{
			EnableMigrateOnStartup: true,
			EnableForeignKey:       true,
		},
		DataInitConfig: DataInitConfig{
			Filepath:    "configs/sql",
			Environment: "dev",
		},
	}
}
