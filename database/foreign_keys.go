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
	"fmt"
	"strings"

	"github.com/uptrace/bun"
)

// Referential actions accepted for OnDelete and OnUpdate.
const (
	ActionCascade  = "CASCADE"
	ActionRestrict = "RESTRICT"
	ActionSetNull  = "SET NULL"
	ActionNoAction = "NO ACTION"
)

var validActions = []string{ActionCascade, ActionRestrict, ActionSetNull, ActionNoAction}

// ForeignKeyConstraint is a column reference declared on the owning table.
// It is emitted inside CREATE TABLE so that SQLite, which cannot add
// constraints later, gets the same schema as MySQL and Postgres.
type ForeignKeyConstraint struct {
	Column          string
	ReferenceTable  string
	ReferenceColumn string
	OnDelete        string
	OnUpdate        string
}

// References is shorthand for a constraint on the referenced table's id.
func References(column, table string) ForeignKeyConstraint {
	return ForeignKeyConstraint{Column: column, ReferenceTable: table, ReferenceColumn: "id"}
}

// OnDeleteAction returns a copy with the ON DELETE action set.
func (fk ForeignKeyConstraint) OnDeleteAction(action string) ForeignKeyConstraint {
	fk.OnDelete = action
	return fk
}

func (fk ForeignKeyConstraint) String() string {
	return fmt.Sprintf("%s -> %s(%s)", fk.Column, fk.ReferenceTable, fk.ReferenceColumn)
}

// Validate checks that every part is set and the actions are known.
func (fk ForeignKeyConstraint) Validate() error {
	switch {
	case fk.Column == "":
		return fmt.Errorf("foreign key: column name cannot be empty")
	case fk.ReferenceTable == "":
		return fmt.Errorf("foreign key %s: reference table cannot be empty", fk.Column)
	case fk.ReferenceColumn == "":
		return fmt.Errorf("foreign key %s: reference column cannot be empty", fk.Column)
	}
	for _, action := range []string{fk.OnDelete, fk.OnUpdate} {
		if action != "" && !isValidAction(action) {
			return fmt.Errorf("foreign key %s: invalid referential action %q", fk, action)
		}
	}
	return nil
}

func isValidAction(action string) bool {
	for _, a := range validActions {
		if strings.EqualFold(a, action) {
			return true
		}
	}
	return false
}

// apply adds the constraint to a CREATE TABLE query.
func (fk ForeignKeyConstraint) apply(q *bun.CreateTableQuery) *bun.CreateTableQuery {
	clause := "(?) REFERENCES ? (?)"
	if fk.OnDelete != "" {
		clause += " ON DELETE " + strings.ToUpper(fk.OnDelete)
	}
	if fk.OnUpdate != "" {
		clause += " ON UPDATE " + strings.ToUpper(fk.OnUpdate)
	}
	return q.ForeignKey(clause, bun.Ident(fk.Column), bun.Ident(fk.ReferenceTable), bun.Ident(fk.ReferenceColumn))
}

// ValidateConstraints validates the foreign keys of every model.
func ValidateConstraints(models []SQLModel) []error {
	var errs []error
	for _, m := range models {
		for _, fk := range m.ForeignKeys() {
			if err := fk.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("%T: %w", m.Instance(), err))
			}
		}
	}
	return errs
}
