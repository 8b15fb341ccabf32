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
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

var (
	ErrNotInitialized = errors.New("database not initialized")
	ErrNotConnected   = errors.New("database not connected")
)

// SQLError classifies driver errors independently of the dialect.
type SQLError int

const (
	UnknownErr SQLError = iota
	NoRowsErr
	NoIndexErr
	NoColumnErr
	ExistIndexErr
	ExistColumnErr
	NoTableErr
	ExistTableErr
	DuplicateKeyErr
	NotNullViolationErr
	ForeignKeyViolationErr
	CheckConstraintViolationErr
	DataTruncatedErr
	InvalidTypeCastErr
	ConnectionErr
)

var sqlErrorNames = map[SQLError]string{
	UnknownErr:                  "unknown",
	NoRowsErr:                   "no_rows",
	NoIndexErr:                  "no_index",
	NoColumnErr:                 "no_column",
	ExistIndexErr:               "index_exists",
	ExistColumnErr:              "column_exists",
	NoTableErr:                  "no_table",
	ExistTableErr:               "table_exists",
	DuplicateKeyErr:             "duplicate_key",
	NotNullViolationErr:         "not_null_violation",
	ForeignKeyViolationErr:      "foreign_key_violation",
	CheckConstraintViolationErr: "check_violation",
	DataTruncatedErr:            "data_truncated",
	InvalidTypeCastErr:          "invalid_type_cast",
	ConnectionErr:               "connection",
}

func (e SQLError) String() string {
	if s, ok := sqlErrorNames[e]; ok {
		return s
	}
	return sqlErrorNames[UnknownErr]
}

var mysqlErrorNumbers = map[uint16]SQLError{
	1091: NoIndexErr,
	1054: NoColumnErr,
	1061: ExistIndexErr,
	1060: ExistColumnErr,
	1146: NoTableErr,
	1050: ExistTableErr,
	1062: DuplicateKeyErr,
	1048: NotNullViolationErr,
	1216: ForeignKeyViolationErr,
	1217: ForeignKeyViolationErr,
	1451: ForeignKeyViolationErr,
	1452: ForeignKeyViolationErr,
	3819: CheckConstraintViolationErr,
	1265: DataTruncatedErr,
	1406: DataTruncatedErr,
}

// messagePatterns matches Postgres SQLSTATE codes and SQLite messages. Every
// pattern of a group must be present; groups are tried in order.
var messagePatterns = []struct {
	kind  SQLError
	match [][]string
}{
	{NoColumnErr, [][]string{{"sqlstate 42703"}, {"undefined column"}, {"no such column"}}},
	{NoIndexErr, [][]string{{"sqlstate 42704"}, {"no such index"}, {"index", "does not exist"}}},
	{NoTableErr, [][]string{{"sqlstate 42p01"}, {"undefined table"}, {"no such table"}}},
	{ExistIndexErr, [][]string{{"index", "already exists"}}},
	{ExistTableErr, [][]string{{"table", "already exists"}, {"relation", "already exists"}}},
	{DuplicateKeyErr, [][]string{{"duplicate key value"}, {"unique constraint failed"}, {"sqlstate 23505"}}},
	{NotNullViolationErr, [][]string{{"not-null constraint"}, {"sqlstate 23502"}, {"not null constraint failed"}}},
	{ForeignKeyViolationErr, [][]string{{"foreign key violation"}, {"foreign key constraint failed"}, {"sqlstate 23503"}}},
	{CheckConstraintViolationErr, [][]string{{"check constraint"}, {"sqlstate 23514"}}},
	{DataTruncatedErr, [][]string{{"string data right truncation"}, {"sqlstate 22001"}, {"data truncated"}}},
	{InvalidTypeCastErr, [][]string{{"datatype mismatch"}, {"sqlstate 42804"}}},
	{ConnectionErr, [][]string{{"connection refused"}, {"bad connection"}, {"database is closed"}, {"sql: database is closed"}}},
}

// IsSqlError reports whether err came from the database and, if so, which
// class it belongs to.
func IsSqlError(err error) (is bool, sqlErr SQLError) {
	if err == nil {
		return false, UnknownErr
	}
	if errors.Is(err, sql.ErrNoRows) {
		return true, NoRowsErr
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		if kind, ok := mysqlErrorNumbers[mysqlErr.Number]; ok {
			return true, kind
		}
		return true, UnknownErr
	}
	if errors.Is(err, sql.ErrConnDone) {
		return true, ConnectionErr
	}
	s := strings.ToLower(err.Error())
	for _, p := range messagePatterns {
		for _, group := range p.match {
			if containsAll(s, group) {
				return true, p.kind
			}
		}
	}
	return false, UnknownErr
}

func containsAll(s string, parts []string) bool {
	for _, part := range parts {
		if !strings.Contains(s, part) {
			return false
		}
	}
	return true
}
