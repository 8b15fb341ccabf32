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
	"context"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"

	"github.com/tomoncle/paybook/predicate"
	"github.com/tomoncle/paybook/types"
)

// Entity is a persistent value identified by a key of type K.
type Entity[K comparable] interface {
	GetID() K
}

// Versioned entities are updated with optimistic locking on their
// "version" column.
type Versioned interface {
	GetVersion() int64
	SetVersion(v int64)
}

// CrudRepository defines the basic operations for one entity type.
type CrudRepository[K comparable, E Entity[K]] interface {
	// Save inserts entity and returns it with generated columns filled in.
	Save(ctx context.Context, entity *E) (*E, error)

	// FindByID returns the entity with key id. A missing row is reported
	// as (nil, false, nil).
	FindByID(ctx context.Context, id K, opts ...FindOption) (*E, bool, error)

	// Update writes every column of entity by primary key.
	Update(ctx context.Context, entity *E) error

	// Delete removes the row with key id. The statement has executed when
	// Delete returns; there is no deferred flush.
	Delete(ctx context.Context, id K) error

	// FindAll returns every row, unordered and unpaginated.
	FindAll(ctx context.Context) ([]*E, error)
}

// QueryRepository filters rows with predicates.
type QueryRepository[K comparable, E Entity[K]] interface {
	FindWhere(ctx context.Context, where predicate.Predicate, opts ...FindOption) ([]*E, error)
	Count(ctx context.Context, where predicate.Predicate) (int, error)
	Exists(ctx context.Context, id K) (bool, error)
	Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[E], error)
}

// BatchRepository writes several entities in one statement.
type BatchRepository[K comparable, E Entity[K]] interface {
	SaveAll(ctx context.Context, entities ...*E) error
	Upsert(ctx context.Context, fields []string, conflictKeys []string, entities ...*E) error
}

// Repository is the full generic repository. WithTx returns a copy bound to
// a transaction; the receiver is unchanged.
type Repository[K comparable, E Entity[K]] interface {
	CrudRepository[K, E]
	QueryRepository[K, E]
	BatchRepository[K, E]
	WithTx(db bun.IDB) Repository[K, E]
	DB() bun.IDB
	Table() *schema.Table
	NewSelect() *bun.SelectQuery
}
