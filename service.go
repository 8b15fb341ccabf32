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

package paybook

import (
	"context"
	"sync"

	"github.com/uptrace/bun"

	"github.com/tomoncle/paybook/database"
	"github.com/tomoncle/paybook/predicate"
	"github.com/tomoncle/paybook/repository"
	"github.com/tomoncle/paybook/types"
)

type Service[K comparable, E repository.Entity[K]] interface {
	// Get returns a single entity by its identifier.
	Get(ctx context.Context, id K, opts ...repository.FindOption) (*E, bool, error)

	// All returns all entities.
	All(ctx context.Context) ([]*E, error)

	// List returns entities that match where.
	List(ctx context.Context, where predicate.Predicate, opts ...repository.FindOption) ([]*E, error)

	// Page returns a paginated list of entities.
	Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[E], error)

	// Save inserts one or more new entities.
	Save(ctx context.Context, entities ...*E) error

	// SaveOrUpdate upserts entities, overwriting fields on conflict.
	SaveOrUpdate(ctx context.Context, fields []string, conflictKeys []string, entities ...*E) error

	Update(ctx context.Context, entity *E) error

	Delete(ctx context.Context, id K) error

	// InTx runs fn in a transaction with a repository bound to it.
	InTx(ctx context.Context, fn func(ctx context.Context, repo repository.Repository[K, E]) error) error

	// SelectBuilder returns a Bun select query for the entity's table.
	SelectBuilder() *bun.SelectQuery
}

type baseServiceImpl[K comparable, E repository.Entity[K]] struct {
	db   func() bun.IDB
	repo repository.Repository[K, E]
	once sync.Once
}

// NewService returns a Service backed by the global database connection,
// resolved on first use.
func NewService[K comparable, E repository.Entity[K]]() Service[K, E] {
	return &baseServiceImpl[K, E]{db: func() bun.IDB { return database.GetDB() }}
}

// NewServiceWithDB returns a Service bound to db.
func NewServiceWithDB[K comparable, E repository.Entity[K]](db bun.IDB) Service[K, E] {
	return &baseServiceImpl[K, E]{db: func() bun.IDB { return db }}
}

func (s *baseServiceImpl[K, E]) baseRepo() repository.Repository[K, E] {
	s.once.Do(func() { s.repo = repository.NewRepository[K, E](s.db()) })
	return s.repo
}

func (s *baseServiceImpl[K, E]) Get(ctx context.Context, id K, opts ...repository.FindOption) (*E, bool, error) {
	return s.baseRepo().FindByID(ctx, id, opts...)
}

func (s *baseServiceImpl[K, E]) All(ctx context.Context) ([]*E, error) {
	return s.baseRepo().FindAll(ctx)
}

func (s *baseServiceImpl[K, E]) List(ctx context.Context, where predicate.Predicate, opts ...repository.FindOption) ([]*E, error) {
	return s.baseRepo().FindWhere(ctx, where, opts...)
}

func (s *baseServiceImpl[K, E]) Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[E], error) {
	return s.baseRepo().Page(ctx, page)
}

func (s *baseServiceImpl[K, E]) Save(ctx context.Context, entities ...*E) error {
	if len(entities) == 1 {
		_, err := s.baseRepo().Save(ctx, entities[0])
		return err
	}
	return s.baseRepo().SaveAll(ctx, entities...)
}

func (s *baseServiceImpl[K, E]) SaveOrUpdate(ctx context.Context, fields []string, conflictKeys []string, entities ...*E) error {
	return s.baseRepo().Upsert(ctx, fields, conflictKeys, entities...)
}

func (s *baseServiceImpl[K, E]) Update(ctx context.Context, entity *E) error {
	return s.baseRepo().Update(ctx, entity)
}

func (s *baseServiceImpl[K, E]) Delete(ctx context.Context, id K) error {
	return s.baseRepo().Delete(ctx, id)
}

func (s *baseServiceImpl[K, E]) InTx(ctx context.Context, fn func(ctx context.Context, repo repository.Repository[K, E]) error) error {
	repo := s.baseRepo()
	return repo.DB().RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, repo.WithTx(tx))
	})
}

func (s *baseServiceImpl[K, E]) SelectBuilder() *bun.SelectQuery {
	return s.baseRepo().NewSelect().Model((*E)(nil))
}
