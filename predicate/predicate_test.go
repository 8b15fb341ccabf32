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

package predicate

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type person struct {
	bun.BaseModel `bun:"table:people,alias:p"`

	ID        int64  `bun:"id,pk,autoincrement"`
	Firstname string `bun:"firstname"`
	Lastname  string `bun:"lastname"`
	Age       int    `bun:"age"`
}

type personFilter struct {
	FirstName *string
	LastName  *string
}

func strPtr(s string) *string { return &s }

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	_, err = db.NewCreateTable().Model((*person)(nil)).Exec(ctx)
	require.NoError(t, err)
	people := []*person{
		{Firstname: "Ivan", Lastname: "Ivanov", Age: 30},
		{Firstname: "Petr", Lastname: "Petrov", Age: 40},
	}
	_, err = db.NewInsert().Model(&people).Exec(ctx)
	require.NoError(t, err)
	return db
}

func selectNames(t *testing.T, db *bun.DB, p Predicate) []string {
	t.Helper()
	var people []person
	err := db.NewSelect().
		Model(&people).
		ApplyQueryBuilder(p.Apply).
		OrderExpr("p.id ASC").
		Scan(context.Background())
	require.NoError(t, err)
	names := make([]string, 0, len(people))
	for _, p := range people {
		names = append(names, p.Firstname)
	}
	return names
}

func filterPredicate(f personFilter) Predicate {
	return New().
		Add(f.FirstName, Column("p.firstname").Eq).
		Add(f.LastName, Column("p.lastname").Eq).
		BuildAnd()
}

func TestBuilderSkipsAbsentCriteria(t *testing.T) {
	db := newTestDB(t)

	p := filterPredicate(personFilter{FirstName: strPtr("Ivan")})
	assert.False(t, p.IsAll())
	assert.Equal(t, []string{"Ivan"}, selectNames(t, db, p))
}

func TestBuilderAllAbsentMatchesEverything(t *testing.T) {
	db := newTestDB(t)

	p := filterPredicate(personFilter{})
	assert.True(t, p.IsAll())
	assert.Equal(t, []string{"Ivan", "Petr"}, selectNames(t, db, p))
}

func TestBuilderBothCriteria(t *testing.T) {
	db := newTestDB(t)

	assert.Equal(t, []string{"Petr"},
		selectNames(t, db, filterPredicate(personFilter{FirstName: strPtr("Petr"), LastName: strPtr("Petrov")})))
	assert.Empty(t,
		selectNames(t, db, filterPredicate(personFilter{FirstName: strPtr("Ivan"), LastName: strPtr("Petrov")})))
}

func TestBuilderOr(t *testing.T) {
	db := newTestDB(t)

	p := New().
		Add("Ivan", Column("p.firstname").Eq).
		Add(41, Column("p.age").Gte).
		Add("Petrov", Column("p.lastname").Eq).
		BuildOr()
	assert.Equal(t, []string{"Ivan", "Petr"}, selectNames(t, db, p))

	assert.True(t, New().BuildOr().IsAll())
	assert.True(t, Or(Eq("p.firstname", "Ivan"), All()).IsAll())
}

func TestAndDropsIdentity(t *testing.T) {
	db := newTestDB(t)

	p := And(All(), Column("p.age").Lt(35), All())
	assert.Equal(t, []string{"Ivan"}, selectNames(t, db, p))
	assert.True(t, And().IsAll())
	assert.Empty(t, selectNames(t, db, And(None(), Eq("p.firstname", "Ivan"))))
}

func TestColumnOperators(t *testing.T) {
	db := newTestDB(t)

	tests := []struct {
		name string
		p    Predicate
		want []string
	}{
		{"ne", Column("p.firstname").Ne("Ivan"), []string{"Petr"}},
		{"gt", Column("p.age").Gt(30), []string{"Petr"}},
		{"lte", Column("p.age").Lte(30), []string{"Ivan"}},
		{"like", Column("p.lastname").Like("Pet%"), []string{"Petr"}},
		{"in", Column("p.firstname").In([]string{"Ivan", "Petr"}), []string{"Ivan", "Petr"}},
		{"is null", Column("p.lastname").IsNull(), []string{}},
		{"raw", Raw("p.age + ? > 50", 15), []string{"Petr"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, selectNames(t, db, tt.p))
		})
	}
}

func TestPresent(t *testing.T) {
	var nilStr *string
	empty := ""

	tests := []struct {
		name  string
		value any
		want  any
		ok    bool
	}{
		{"nil", nil, nil, false},
		{"nil pointer", nilStr, nil, false},
		{"empty string", "", nil, false},
		{"pointer to empty string", &empty, nil, false},
		{"empty slice", []int{}, nil, false},
		{"string", "Ivan", "Ivan", true},
		{"pointer", strPtr("Petr"), "Petr", true},
		{"zero int", 0, 0, true},
		{"null valuer", sql.NullString{}, nil, false},
		{"valid valuer", sql.NullInt64{Int64: 7, Valid: true}, int64(7), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Present(tt.value)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestBuildReportsInvalidCriterion(t *testing.T) {
	positive := func(v any) error {
		if v.(int) <= 0 {
			return errors.New("age must be positive")
		}
		return nil
	}

	b := New().
		AddChecked(-1, positive, Column("p.age").Eq).
		AddChecked(nil, positive, Column("p.age").Eq)
	p, err := b.Build()
	require.ErrorIs(t, err, ErrInvalidCriterion)
	assert.True(t, p.IsAll())
	assert.Equal(t, 0, b.Len())

	p, err = New().AddChecked(30, positive, Column("p.age").Eq).Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"Ivan"}, selectNames(t, newTestDB(t), p))
}

// grade is a column value with a closed set of names.
type grade string

func (g grade) Value() (driver.Value, error) {
	switch g {
	case "junior", "senior":
		return string(g), nil
	}
	return nil, fmt.Errorf("unknown grade %q", string(g))
}

func TestBuildReportsFailingValuer(t *testing.T) {
	accept := func(any) error { return nil }

	b := New().AddChecked(grade("boss"), accept, Column("p.lastname").Eq)
	p, err := b.Build()
	require.ErrorIs(t, err, ErrInvalidCriterion)
	assert.Contains(t, err.Error(), `unknown grade "boss"`)
	assert.True(t, p.IsAll())
	assert.Equal(t, 0, b.Len())

	_, err = New().AddChecked(grade("senior"), accept, Column("p.lastname").Eq).Build()
	require.NoError(t, err)

	got, ok := Present(grade("boss"))
	require.True(t, ok)
	assert.Equal(t, grade("boss"), got)

	// Add keeps the malformed value, so the query fails instead of matching every row.
	b = New().Add(grade("boss"), Column("p.lastname").Eq)
	require.Equal(t, 1, b.Len())
	var people []person
	err = newTestDB(t).NewSelect().
		Model(&people).
		ApplyQueryBuilder(b.BuildAnd().Apply).
		Scan(context.Background())
	assert.Error(t, err)
	assert.Empty(t, people)
}

func TestApplyRendersCondition(t *testing.T) {
	db := newTestDB(t)

	q := db.NewSelect().Model((*person)(nil)).
		ApplyQueryBuilder(filterPredicate(personFilter{FirstName: strPtr("Ivan")}).Apply)
	assert.Contains(t, q.String(), `WHERE ("p"."firstname" = 'Ivan')`)

	q = db.NewSelect().Model((*person)(nil)).ApplyQueryBuilder(All().Apply)
	assert.NotContains(t, q.String(), "WHERE")
}
