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
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/feature"
	"github.com/uptrace/bun/schema"

	"github.com/tomoncle/paybook/predicate"
	"github.com/tomoncle/paybook/types"
)

const versionColumn = "version"

type baseRepositoryImpl[K comparable, E Entity[K]] struct {
	db        bun.IDB
	table     *schema.Table
	pk        bun.Ident
	versioned bool
}

// NewRepository returns a repository for E over db, which may be a *bun.DB
// or a bun.Tx. It panics when E does not map to a table with exactly one
// primary key, or when a Versioned E has no version column.
func NewRepository[K comparable, E Entity[K]](db bun.IDB) Repository[K, E] {
	table := db.Dialect().Tables().Get(reflect.TypeFor[E]())
	if len(table.PKs) != 1 {
		panic(fmt.Sprintf("repository: %s must have exactly one primary key, got %d", table.TypeName, len(table.PKs)))
	}
	_, versioned := any(new(E)).(Versioned)
	if _, ok := table.FieldMap[versionColumn]; versioned && !ok {
		panic(fmt.Sprintf("repository: %s implements Versioned but has no %q column", table.TypeName, versionColumn))
	}
	return &baseRepositoryImpl[K, E]{
		db:        db,
		table:     table,
		pk:        bun.Ident(table.PKs[0].Name),
		versioned: versioned,
	}
}

func (r *baseRepositoryImpl[K, E]) WithTx(db bun.IDB) Repository[K, E] {
	clone := *r
	clone.db = db
	return &clone
}

func (r *baseRepositoryImpl[K, E]) DB() bun.IDB { return r.db }

func (r *baseRepositoryImpl[K, E]) Table() *schema.Table { return r.table }

func (r *baseRepositoryImpl[K, E]) NewSelect() *bun.SelectQuery { return r.db.NewSelect() }

func (r *baseRepositoryImpl[K, E]) name() string { return r.table.TypeName }

func (r *baseRepositoryImpl[K, E]) Save(ctx context.Context, entity *E) (*E, error) {
	if entity == nil {
		return nil, fmt.Errorf("repository: save %s: nil entity", r.name())
	}
	if _, err := r.db.NewInsert().Model(entity).Exec(ctx); err != nil {
		return nil, wrapErr("save", r.name(), err)
	}
	return entity, nil
}

func (r *baseRepositoryImpl[K, E]) SaveAll(ctx context.Context, entities ...*E) error {
	if len(entities) == 0 {
		return nil
	}
	batch := append([]*E(nil), entities...)
	if _, err := r.db.NewInsert().Model(&batch).Exec(ctx); err != nil {
		return wrapErr("save all", r.name(), err)
	}
	return nil
}

func (r *baseRepositoryImpl[K, E]) FindByID(ctx context.Context, id K, opts ...FindOption) (*E, bool, error) {
	entity := new(E)
	q := r.db.NewSelect().Model(entity).Where("?TableAlias.? = ?", r.pk, id)
	q = newFindConfig(opts).apply(q, r.db.Dialect().Name())
	if err := q.Limit(1).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, wrapErr("find", r.name(), err)
	}
	return entity, true, nil
}

func (r *baseRepositoryImpl[K, E]) FindAll(ctx context.Context) ([]*E, error) {
	entities := make([]*E, 0)
	if err := r.db.NewSelect().Model(&entities).Scan(ctx); err != nil {
		return nil, wrapErr("find all", r.name(), err)
	}
	return entities, nil
}

func (r *baseRepositoryImpl[K, E]) FindWhere(ctx context.Context, where predicate.Predicate, opts ...FindOption) ([]*E, error) {
	entities := make([]*E, 0)
	q := r.db.NewSelect().Model(&entities).ApplyQueryBuilder(where.Apply)
	q = newFindConfig(opts).apply(q, r.db.Dialect().Name())
	if err := q.Scan(ctx); err != nil {
		return nil, wrapErr("find", r.name(), err)
	}
	return entities, nil
}

func (r *baseRepositoryImpl[K, E]) Count(ctx context.Context, where predicate.Predicate) (int, error) {
	n, err := r.db.NewSelect().Model((*E)(nil)).ApplyQueryBuilder(where.Apply).Count(ctx)
	if err != nil {
		return 0, wrapErr("count", r.name(), err)
	}
	return n, nil
}

func (r *baseRepositoryImpl[K, E]) Exists(ctx context.Context, id K) (bool, error) {
	ok, err := r.db.NewSelect().Model((*E)(nil)).Where("?TableAlias.? = ?", r.pk, id).Exists(ctx)
	if err != nil {
		return false, wrapErr("exists", r.name(), err)
	}
	return ok, nil
}

func (r *baseRepositoryImpl[K, E]) Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[E], error) {
	if page == nil {
		page = types.NewDefaultPageRequest(1, 0)
	}
	entities := make([]*E, 0)
	q := r.db.NewSelect().Model(&entities).ApplyQueryBuilder(page.GetFilter().Apply)

	pagination := types.NewDefaultPagination[E](page.GetPage(), page.GetPageSize())
	total, err := q.Count(ctx)
	if err != nil {
		return nil, wrapErr("page", r.name(), err)
	}
	if total == 0 {
		return pagination, nil
	}
	if orders := page.GetOrders(); len(orders) > 0 {
		q = q.Order(orders...)
	} else {
		q = q.OrderExpr("?TableAlias.? ASC", r.pk)
	}
	err = q.Offset(page.GetOffset()).Limit(page.GetPageSize()).Scan(ctx)
	if err != nil {
		return nil, wrapErr("page", r.name(), err)
	}
	pagination.Total = total
	pagination.Items = entities
	return pagination, nil
}

// Update writes all columns of entity. Versioned entities are matched on
// their current version, which is incremented on success and left untouched
// on failure.
func (r *baseRepositoryImpl[K, E]) Update(ctx context.Context, entity *E) error {
	if entity == nil {
		return fmt.Errorf("repository: update %s: nil entity", r.name())
	}
	q := r.db.NewUpdate().Model(entity).WherePK()

	v, _ := any(entity).(Versioned)
	versioned := r.versioned
	var previous int64
	if versioned {
		previous = v.GetVersion()
		v.SetVersion(previous + 1)
		q = q.Where("? = ?", bun.Ident(versionColumn), previous)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		if versioned {
			v.SetVersion(previous)
		}
		return wrapErr("update", r.name(), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapErr("update", r.name(), err)
	}
	if n > 0 {
		return nil
	}

	if versioned {
		v.SetVersion(previous)
	}
	// MySQL reports 0 for rows whose values did not change, so look before
	// calling the row missing.
	exists, err := r.Exists(ctx, (*entity).GetID())
	switch {
	case err != nil:
		return err
	case !exists:
		return fmt.Errorf("update %s %v: %w", r.name(), (*entity).GetID(), ErrNoRowsAffected)
	case versioned:
		return fmt.Errorf("update %s %v: %w", r.name(), (*entity).GetID(), ErrOptimisticLock)
	}
	return nil
}

func (r *baseRepositoryImpl[K, E]) Delete(ctx context.Context, id K) error {
	_, err := r.db.NewDelete().Model((*E)(nil)).Where("? = ?", r.pk, id).Exec(ctx)
	return wrapErr("delete", r.name(), err)
}

// Upsert inserts entities and, on a conflict over conflictKeys (default:
// the primary key), overwrites fields. It uses ON CONFLICT on Postgres and
// SQLite, ON DUPLICATE KEY on MySQL, and insert-then-update elsewhere.
func (r *baseRepositoryImpl[K, E]) Upsert(ctx context.Context, fields []string, conflictKeys []string, entities ...*E) error {
	if len(fields) == 0 {
		return fmt.Errorf("repository: upsert %s: fields cannot be empty", r.name())
	}
	if len(entities) == 0 {
		return nil
	}
	batch := append([]*E(nil), entities...)
	features := r.db.Dialect().Features()

	var err error
	switch {
	case features.Has(feature.InsertOnConflict):
		err = r.upsertOnConflict(ctx, fields, conflictKeys, batch)
	case features.Has(feature.InsertOnDuplicateKey):
		err = r.upsertOnDuplicateKey(ctx, fields, batch)
	default:
		err = r.upsertFallback(ctx, batch)
	}
	return wrapErr("upsert", r.name(), err)
}

func (r *baseRepositoryImpl[K, E]) upsertOnConflict(ctx context.Context, fields, conflictKeys []string, batch []*E) error {
	keys := []bun.Ident{r.pk}
	if len(conflictKeys) > 0 {
		keys = idents(conflictKeys)
	}
	set, args := assignments("? = EXCLUDED.?", fields)
	_, err := r.db.NewInsert().
		Model(&batch).
		On("CONFLICT (?) DO UPDATE", bun.In(keys)).
		Set(set, args...).
		Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[K, E]) upsertOnDuplicateKey(ctx context.Context, fields []string, batch []*E) error {
	set, args := assignments("? = VALUES(?)", fields)
	_, err := r.db.NewInsert().
		Model(&batch).
		On("DUPLICATE KEY UPDATE "+set, args...).
		Exec(ctx)
	return err
}

func idents(names []string) []bun.Ident {
	out := make([]bun.Ident, len(names))
	for i, n := range names {
		out[i] = bun.Ident(n)
	}
	return out
}

// assignments repeats tmpl, which holds two placeholders, once per field.
func assignments(tmpl string, fields []string) (string, []any) {
	parts := make([]string, len(fields))
	args := make([]any, 0, 2*len(fields))
	for i, f := range fields {
		parts[i] = tmpl
		args = append(args, bun.Ident(f), bun.Ident(f))
	}
	return strings.Join(parts, ", "), args
}

func (r *baseRepositoryImpl[K, E]) upsertFallback(ctx context.Context, batch []*E) error {
	for _, entity := range batch {
		if _, err := r.db.NewInsert().Model(entity).Exec(ctx); err != nil {
			if _, updateErr := r.db.NewUpdate().Model(entity).WherePK().Exec(ctx); updateErr != nil {
				return fmt.Errorf("insert: %w, update: %v", err, updateErr)
			}
		}
	}
	return nil
}
