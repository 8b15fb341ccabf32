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

// Package config loads application settings from a YAML file and PAYBOOK_*
// environment variables on top of the database defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"

	"github.com/tomoncle/paybook/database"
)

const EnvPrefix = "PAYBOOK"

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

type Config struct {
	Log      LogConfig       `mapstructure:"log"`
	Database database.Config `mapstructure:"database"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		Log:      LogConfig{Level: "info", Format: "text"},
		Database: *database.DefaultConfig(),
	}
}

// Load reads path, which is either a YAML file or a directory holding
// config.yaml. A missing file is not an error. Environment variables such as
// PAYBOOK_DATABASE_CONNECTION_TYPE override both.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		v.SetConfigFile(path)
	} else if path != "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(path)
	}

	if path != "" {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it during
// Unmarshal.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	c := d.Database.ConnectionConfig
	conn := map[string]any{
		"type":                  c.Type,
		"host":                  c.Host,
		"port":                  c.Port,
		"username":              c.Username,
		"password":              c.Password,
		"dbname":                c.DBName,
		"dsn":                   c.DSN,
		"sslmode":               c.SSLMode,
		"max_idle_conns":        c.MaxIdleConns,
		"max_open_conns":        c.MaxOpenConns,
		"conn_max_lifetime":     c.ConnMaxLifetime,
		"conn_max_idle_time":    c.ConnMaxIdleTime,
		"connect_timeout":       c.ConnectTimeout,
		"read_timeout":          c.ReadTimeout,
		"write_timeout":         c.WriteTimeout,
		"enable_reconnect":      c.EnableReconnect,
		"reconnect_interval":    c.ReconnectInterval,
		"max_reconnect_tries":   c.MaxReconnectTries,
		"health_check_interval": c.HealthCheckInterval,
		"enable_query_log":      c.EnableQueryLog,
		"slow_query_time":       c.SlowQueryTime,
	}
	for k, val := range conn {
		v.SetDefault("database.connection."+k, val)
	}

	m := d.Database.DataMigrateConfig
	v.SetDefault("database.migrate.enable_migrate_on_startup", m.EnableMigrateOnStartup)
	v.SetDefault("database.migrate.enable_foreign_key", m.EnableForeignKey)

	i := d.Database.DataInitConfig
	v.SetDefault("database.init.auto_init_on_startup", i.AutoInitOnStartup)
	v.SetDefault("database.init.filepath", i.Filepath)
	v.SetDefault("database.init.environment", i.Environment)
	v.SetDefault("database.init.fixture_file", i.FixtureFile)
}
