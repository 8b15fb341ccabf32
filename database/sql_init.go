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
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/uptrace/bun"
)

const (
	commonSQLDir   = "common"
	unorderedFile  = 999
	sqlTimeLayout  = "2006-01-02 15:04:05"
	defaultSQLRoot = "configs/sql"
)

var fileOrderPattern = regexp.MustCompile(`^(\d+)_`)

// SQLInitManager seeds data from SQL files laid out as
//
//	<root>/common/*.sql
//	<root>/environments/<env>/*.sql
//
// Files run common first, then by their numeric "NNN_" prefix. Each file is
// a text/template that sees the process environment plus ENVIRONMENT and
// TIMESTAMP.
type SQLInitManager struct {
	db          bun.IDB
	environment string
	sqlRootPath string
	logger      Logger
}

// SQLFileInfo describes a discovered SQL file.
type SQLFileInfo struct {
	Path        string
	Name        string
	Order       int
	Environment string
}

// ExecutionResult is the outcome of one SQL file.
type ExecutionResult struct {
	File         string
	Err          error
	Duration     time.Duration
	RowsAffected int64
}

func NewSQLInitManager(db bun.IDB, environment string) *SQLInitManager {
	return &SQLInitManager{
		db:          db,
		environment: environment,
		sqlRootPath: defaultSQLRoot,
		logger:      GetLogger(),
	}
}

func (s *SQLInitManager) SetSQLRootPath(path string) {
	s.sqlRootPath = path
}

func (s *SQLInitManager) SetLogger(logger Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// ExecuteInitialization runs every discovered file, each in its own
// transaction, and stops at the first failure.
func (s *SQLInitManager) ExecuteInitialization(ctx context.Context) error {
	s.logger.Info("Starting SQL initialization", "environment", s.environment, "sql_path", s.sqlRootPath)

	files, err := s.GetSQLFiles()
	if err != nil {
		return fmt.Errorf("failed to get SQL files: %w", err)
	}
	if len(files) == 0 {
		s.logger.Info("No SQL files found to execute")
		return nil
	}

	for _, file := range files {
		result := s.executeFile(ctx, file)
		if result.Err != nil {
			s.logger.Error("SQL file execution failed", "file", result.File, "error", result.Err)
			return fmt.Errorf("SQL file execution failed %s: %w", result.File, result.Err)
		}
		s.logger.Info("SQL file executed", "file", result.File, "duration", result.Duration, "rows_affected", result.RowsAffected)
	}

	s.logger.Info("SQL initialization completed", "total_files", len(files), "environment", s.environment)
	return nil
}

// GetSQLFiles lists the common files followed by the environment files.
func (s *SQLInitManager) GetSQLFiles() ([]SQLFileInfo, error) {
	files, err := s.getFilesFromDir(filepath.Join(s.sqlRootPath, commonSQLDir), commonSQLDir)
	if err != nil {
		return nil, fmt.Errorf("failed to get common SQL files: %w", err)
	}
	if s.environment != "" {
		envFiles, err := s.getFilesFromDir(filepath.Join(s.sqlRootPath, "environments", s.environment), s.environment)
		if err != nil {
			return nil, fmt.Errorf("failed to get environment SQL files: %w", err)
		}
		files = append(files, envFiles...)
	}

	sort.SliceStable(files, func(i, j int) bool {
		if files[i].Environment != files[j].Environment {
			return files[i].Environment == commonSQLDir
		}
		if files[i].Order != files[j].Order {
			return files[i].Order < files[j].Order
		}
		return files[i].Name < files[j].Name
	})
	return files, nil
}

// getFilesFromDir treats a missing directory as empty.
func (s *SQLInitManager) getFilesFromDir(dir, environment string) ([]SQLFileInfo, error) {
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	var files []SQLFileInfo
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".sql") {
			return nil
		}
		files = append(files, SQLFileInfo{
			Path:        path,
			Name:        d.Name(),
			Order:       parseFileOrder(d.Name()),
			Environment: environment,
		})
		return nil
	})
	return files, err
}

func parseFileOrder(filename string) int {
	m := fileOrderPattern.FindStringSubmatch(filename)
	if len(m) < 2 {
		return unorderedFile
	}
	order, err := strconv.Atoi(m[1])
	if err != nil {
		return unorderedFile
	}
	return order
}

func (s *SQLInitManager) executeFile(ctx context.Context, file SQLFileInfo) (result ExecutionResult) {
	start := time.Now()
	result.File = file.Path
	defer func() { result.Duration = time.Since(start) }()

	content, err := os.ReadFile(file.Path)
	if err != nil {
		result.Err = fmt.Errorf("failed to read file: %w", err)
		return result
	}
	rendered, err := s.renderTemplate(string(content))
	if err != nil {
		result.Err = err
		return result
	}
	statements := splitSQLStatements(rendered)
	if len(statements) == 0 {
		return result
	}

	result.Err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, stmt := range statements {
			res, err := tx.ExecContext(ctx, stmt)
			if err != nil {
				return fmt.Errorf("failed to execute SQL statement: %s, error: %w", stmt, err)
			}
			if n, err := res.RowsAffected(); err == nil {
				result.RowsAffected += n
			}
		}
		return nil
	})
	return result
}

func (s *SQLInitManager) renderTemplate(content string) (string, error) {
	tmpl, err := template.New("sql").Option("missingkey=zero").Parse(content)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	vars := make(map[string]string)
	for _, env := range os.Environ() {
		if k, v, ok := strings.Cut(env, "="); ok {
			vars[k] = v
		}
	}
	vars["ENVIRONMENT"] = s.environment
	vars["TIMESTAMP"] = time.Now().Format(sqlTimeLayout)

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// splitSQLStatements splits on lines ending with ';' and drops "--" comment
// lines. Statements spanning several lines are joined with spaces.
func splitSQLStatements(content string) []string {
	var (
		statements []string
		current    strings.Builder
	)
	flush := func() {
		if stmt := strings.TrimSpace(current.String()); stmt != "" {
			statements = append(statements, stmt)
		}
		current.Reset()
	}

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteByte(' ')
		if strings.HasSuffix(line, ";") {
			flush()
		}
	}
	flush()
	return statements
}
