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

package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/tomoncle/paybook/database"
	"github.com/tomoncle/paybook/predicate"
	"github.com/tomoncle/paybook/repository"
	"github.com/tomoncle/paybook/types"
)

type team struct {
	bun.BaseModel `bun:"table:teams,alias:t"`

	ID      int       `bun:"id,pk,autoincrement"`
	Name    string    `bun:"name,notnull,unique"`
	Members []*member `bun:"rel:has-many,join:id=team_id"`
}

func (t team) GetID() int { return t.ID }

type member struct {
	bun.BaseModel `bun:"table:members,alias:m"`

	ID      int64  `bun:"id,pk,autoincrement"`
	Name    string `bun:"name,notnull"`
	Score   int    `bun:"score"`
	TeamID  int    `bun:"team_id,nullzero"`
	Version int64  `bun:"version,notnull,default:0"`
	Team    *team  `bun:"rel:belongs-to,join:team_id=id"`
}

func (m member) GetID() int64 { return m.ID }

func (m *member) GetVersion() int64 { return m.Version }

func (m *member) SetVersion(v int64) { m.Version = v }

type badVersioned struct {
	bun.BaseModel `bun:"table:bad_versioned"`

	ID int64 `bun:"id,pk"`
}

func (b badVersioned) GetID() int64 { return b.ID }

func (b *badVersioned) GetVersion() int64 { return 0 }

func (b *badVersioned) SetVersion(int64) {}

type compositeKey struct {
	bun.BaseModel `bun:"table:composite"`

	A int `bun:"a,pk"`
	B int `bun:"b,pk"`
}

func (c compositeKey) GetID() int { return c.A }

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	_, err = db.ExecContext(ctx, "PRAGMA foreign_keys = ON")
	require.NoError(t, err)
	for _, model := range []any{(*team)(nil), (*member)(nil)} {
		q := db.NewCreateTable().Model(model)
		if _, ok := model.(*member); ok {
			q = q.ForeignKey(`("team_id") REFERENCES "teams" ("id") ON DELETE CASCADE`)
		}
		_, err := q.Exec(ctx)
		require.NoError(t, err)
	}
	return db
}

func newRepos(t *testing.T) (repository.Repository[int, team], repository.Repository[int64, member]) {
	db := newTestDB(t)
	return repository.NewRepository[int, team](db), repository.NewRepository[int64, member](db)
}

func TestSaveAndFindByID(t *testing.T) {
	ctx := context.Background()
	teams, members := newRepos(t)

	saved, err := teams.Save(ctx, &team{Name: "red"})
	require.NoError(t, err)
	require.NotZero(t, saved.ID)

	m, err := members.Save(ctx, &member{Name: "ann", Score: 10, TeamID: saved.ID})
	require.NoError(t, err)

	found, ok, err := members.FindByID(ctx, m.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ann", found.Name)
	assert.Equal(t, 10, found.Score)
	assert.Nil(t, found.Team, "relations load only on request")
}

func TestFindByIDMissingKey(t *testing.T) {
	_, members := newRepos(t)

	found, ok, err := members.FindByID(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, found)
}

func TestFindByIDWithFetchHints(t *testing.T) {
	ctx := context.Background()
	teams, members := newRepos(t)

	red, err := teams.Save(ctx, &team{Name: "red"})
	require.NoError(t, err)
	require.NoError(t, members.SaveAll(ctx,
		&member{Name: "ann", TeamID: red.ID},
		&member{Name: "bob", TeamID: red.ID},
	))

	withTeam := repository.NewGraph("WithTeam", "Team")
	all, err := members.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	m, ok, err := members.FindByID(ctx, all[0].ID, repository.WithGraph(withTeam), repository.WithLock(repository.LockUpdate))
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, m.Team)
	assert.Equal(t, "red", m.Team.Name)

	tm, ok, err := teams.FindByID(ctx, red.ID, repository.WithRelations("Members"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, tm.Members, 2)

	tm, ok, err = teams.FindByID(ctx, red.ID, repository.WithColumns("id"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Empty(t, tm.Name)
}

func TestUpdateRoundTrip(t *testing.T) {
	ctx := context.Background()
	teams, _ := newRepos(t)

	red, err := teams.Save(ctx, &team{Name: "red"})
	require.NoError(t, err)

	red.Name = "crimson"
	require.NoError(t, teams.Update(ctx, red))

	found, ok, err := teams.FindByID(ctx, red.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "crimson", found.Name)

	err = teams.Update(ctx, &team{ID: 999, Name: "ghost"})
	assert.ErrorIs(t, err, repository.ErrNoRowsAffected)
}

func TestUpdateOptimisticLock(t *testing.T) {
	ctx := context.Background()
	_, members := newRepos(t)

	m, err := members.Save(ctx, &member{Name: "ann", Score: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 0, m.Version)

	first, _, err := members.FindByID(ctx, m.ID)
	require.NoError(t, err)
	second, _, err := members.FindByID(ctx, m.ID)
	require.NoError(t, err)

	first.Score = 2
	require.NoError(t, members.Update(ctx, first))
	assert.EqualValues(t, 1, first.Version)

	second.Score = 3
	err = members.Update(ctx, second)
	require.ErrorIs(t, err, repository.ErrOptimisticLock)
	assert.EqualValues(t, 0, second.Version, "version is restored on failure")

	stored, _, err := members.FindByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Score)
	assert.EqualValues(t, 1, stored.Version)
}

func TestDeleteIsWrittenThrough(t *testing.T) {
	ctx := context.Background()
	teams, members := newRepos(t)

	red, err := teams.Save(ctx, &team{Name: "red"})
	require.NoError(t, err)
	m, err := members.Save(ctx, &member{Name: "ann", TeamID: red.ID})
	require.NoError(t, err)

	require.NoError(t, members.Delete(ctx, m.ID))
	exists, err := members.Exists(ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	// deleting a missing key is a no-op
	require.NoError(t, members.Delete(ctx, m.ID))
}

func TestDeleteCascades(t *testing.T) {
	ctx := context.Background()
	teams, members := newRepos(t)

	red, err := teams.Save(ctx, &team{Name: "red"})
	require.NoError(t, err)
	require.NoError(t, members.SaveAll(ctx, &member{Name: "ann", TeamID: red.ID}))

	require.NoError(t, teams.Delete(ctx, red.ID))
	n, err := members.Count(ctx, predicate.All())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFindWhereAndCount(t *testing.T) {
	ctx := context.Background()
	_, members := newRepos(t)

	require.NoError(t, members.SaveAll(ctx,
		&member{Name: "ann", Score: 10},
		&member{Name: "bob", Score: 20},
		&member{Name: "cid", Score: 30},
	))

	minScore := 15
	where := predicate.New().
		Add(&minScore, predicate.Column("m.score").Gte).
		Add((*string)(nil), predicate.Column("m.name").Eq).
		BuildAnd()
	found, err := members.FindWhere(ctx, where, repository.WithQuery(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("m.score DESC")
	}))
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "cid", found[0].Name)
	assert.Equal(t, "bob", found[1].Name)

	n, err := members.Count(ctx, where)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := members.FindWhere(ctx, predicate.All())
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestPage(t *testing.T) {
	ctx := context.Background()
	_, members := newRepos(t)

	for _, name := range []string{"a", "b", "c", "d", "e"} {
		_, err := members.Save(ctx, &member{Name: name})
		require.NoError(t, err)
	}

	page, err := members.Page(ctx, types.NewDefaultPageRequest(2, 2))
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 3, page.Pages())
	require.Len(t, page.Items, 2)
	assert.Equal(t, "c", page.Items[0].Name)
	assert.Equal(t, "d", page.Items[1].Name)

	page, err = members.Page(ctx, types.NewPageRequestWithOrders(1, 2, "name DESC"))
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "e", page.Items[0].Name)

	page, err = members.Page(ctx, types.NewPageRequestWithFilter(1, 10, predicate.Eq("m.name", "zzz")))
	require.NoError(t, err)
	assert.Zero(t, page.Total)
	assert.Empty(t, page.Items)
}

func TestUpsert(t *testing.T) {
	ctx := context.Background()
	teams, _ := newRepos(t)

	red, err := teams.Save(ctx, &team{Name: "red"})
	require.NoError(t, err)

	err = teams.Upsert(ctx, []string{"name"}, nil,
		&team{ID: red.ID, Name: "crimson"},
		&team{ID: red.ID + 1, Name: "blue"},
	)
	require.NoError(t, err)

	all, err := teams.FindAll(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(all))
	for _, tm := range all {
		names = append(names, tm.Name)
	}
	assert.ElementsMatch(t, []string{"crimson", "blue"}, names)

	assert.Error(t, teams.Upsert(ctx, nil, nil, &team{Name: "x"}))
	assert.NoError(t, teams.Upsert(ctx, []string{"name"}, nil))
}

func TestDuplicateIsClassified(t *testing.T) {
	ctx := context.Background()
	teams, _ := newRepos(t)

	_, err := teams.Save(ctx, &team{Name: "red"})
	require.NoError(t, err)
	_, err = teams.Save(ctx, &team{Name: "red"})
	require.Error(t, err)

	var pe *repository.PersistenceError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "save", pe.Op)
	assert.True(t, repository.IsKind(err, database.DuplicateKeyErr))
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	teams, _ := newRepos(t)

	boom := errors.New("boom")
	err := teams.DB().RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := teams.WithTx(tx).Save(ctx, &team{Name: "red"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	all, err := teams.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestNewRepositoryPanics(t *testing.T) {
	db := newTestDB(t)

	assert.Panics(t, func() { repository.NewRepository[int, compositeKey](db) })
	assert.Panics(t, func() { repository.NewRepository[int64, badVersioned](db) })
	assert.NotPanics(t, func() { repository.NewRepository[int64, member](db) })
}

func TestNilEntity(t *testing.T) {
	ctx := context.Background()
	teams, _ := newRepos(t)

	_, err := teams.Save(ctx, nil)
	assert.Error(t, err)
	assert.Error(t, teams.Update(ctx, nil))
}
