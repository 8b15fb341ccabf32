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

package repository

import (
	"errors"
	"fmt"

	"github.com/tomoncle/paybook/database"
)

var (
	// ErrOptimisticLock is returned by Update when the stored version no
	// longer matches the entity's version.
	ErrOptimisticLock = errors.New("repository: optimistic lock failure, entity was modified concurrently")

	// ErrNoRowsAffected is returned by Update when no row has the entity's key.
	ErrNoRowsAffected = errors.New("repository: no rows affected")
)

// PersistenceError wraps a failure reported by Bun or the driver.
type PersistenceError struct {
	Op     string
	Entity string
	Kind   database.SQLError
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("repository: %s %s failed (%s): %v", e.Op, e.Entity, e.Kind, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsKind reports whether err is a PersistenceError of the given class.
func IsKind(err error, kind database.SQLError) bool {
	var pe *PersistenceError
	return errors.As(err, &pe) && pe.Kind == kind
}

func wrapErr(op, entity string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	_, kind := database.IsSqlError(err)
	return &PersistenceError{Op: op, Entity: entity, Kind: kind, Err: err}
}

// WrapError classifies err as a PersistenceError for queries built outside
// a Repository. It returns nil for a nil err.
func WrapError(op, entity string, err error) error {
	return wrapErr(op, entity, err)
}
