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
	"github.com/uptrace/bun"
)

// Predicate is a boolean condition over entity columns. The zero value
// matches every row and is the identity element of And.
type Predicate struct {
	apply func(q bun.QueryBuilder) bun.QueryBuilder
}

// Factory turns a present filter value into a Predicate.
type Factory func(value any) Predicate

// All returns the predicate that matches every row.
func All() Predicate { return Predicate{} }

// None returns the predicate that matches no row.
func None() Predicate {
	return Raw("1 = 0")
}

// Raw wraps a WHERE fragment with its placeholder arguments.
func Raw(query string, args ...any) Predicate {
	return Predicate{apply: func(q bun.QueryBuilder) bun.QueryBuilder {
		return q.Where(query, args...)
	}}
}

// IsAll reports whether p imposes no condition.
func (p Predicate) IsAll() bool { return p.apply == nil }

// Apply adds the condition to q. It matches the signature expected by
// SelectQuery.ApplyQueryBuilder and friends.
func (p Predicate) Apply(q bun.QueryBuilder) bun.QueryBuilder {
	if p.apply == nil {
		return q
	}
	return p.apply(q)
}

// And combines predicates so that all of them must hold. Identity members
// are dropped; with nothing left the result is All.
func And(predicates ...Predicate) Predicate {
	staged := make([]Predicate, 0, len(predicates))
	for _, p := range predicates {
		if !p.IsAll() {
			staged = append(staged, p)
		}
	}
	switch len(staged) {
	case 0:
		return All()
	case 1:
		return staged[0]
	}
	return Predicate{apply: func(q bun.QueryBuilder) bun.QueryBuilder {
		return q.WhereGroup(" AND ", func(g bun.QueryBuilder) bun.QueryBuilder {
			for _, p := range staged {
				g = p.apply(g)
			}
			return g
		})
	}}
}

// Or combines predicates so that at least one must hold. Any identity member
// makes the whole disjunction match everything.
func Or(predicates ...Predicate) Predicate {
	if len(predicates) == 0 {
		return All()
	}
	for _, p := range predicates {
		if p.IsAll() {
			return All()
		}
	}
	if len(predicates) == 1 {
		return predicates[0]
	}
	staged := append([]Predicate(nil), predicates...)
	return Predicate{apply: func(q bun.QueryBuilder) bun.QueryBuilder {
		return q.WhereGroup(" AND ", func(g bun.QueryBuilder) bun.QueryBuilder {
			for i, p := range staged {
				sep := " OR "
				if i == 0 {
					sep = " AND "
				}
				g = g.WhereGroup(sep, p.apply)
			}
			return g
		})
	}}
}

// Column names an entity column, optionally alias-qualified ("u.firstname").
// Its methods are Factory-compatible, so Column("u.firstname").Eq can be
// handed straight to Builder.Add.
type Column string

func (c Column) ident() bun.Ident { return bun.Ident(string(c)) }

func (c Column) compare(op string, value any) Predicate {
	ident := c.ident()
	return Predicate{apply: func(q bun.QueryBuilder) bun.QueryBuilder {
		return q.Where("? "+op+" ?", ident, value)
	}}
}

// Eq matches rows where the column equals value.
func (c Column) Eq(value any) Predicate { return c.compare("=", value) }

// Ne matches rows where the column differs from value.
func (c Column) Ne(value any) Predicate { return c.compare("<>", value) }

// Gt matches rows where the column is greater than value.
func (c Column) Gt(value any) Predicate { return c.compare(">", value) }

// Gte matches rows where the column is greater than or equal to value.
func (c Column) Gte(value any) Predicate { return c.compare(">=", value) }

// Lt matches rows where the column is less than value.
func (c Column) Lt(value any) Predicate { return c.compare("<", value) }

// Lte matches rows where the column is less than or equal to value.
func (c Column) Lte(value any) Predicate { return c.compare("<=", value) }

// Like matches rows where the column matches the LIKE pattern.
func (c Column) Like(pattern any) Predicate { return c.compare("LIKE", pattern) }

// In matches rows where the column is one of the slice elements.
func (c Column) In(values any) Predicate {
	ident := c.ident()
	return Predicate{apply: func(q bun.QueryBuilder) bun.QueryBuilder {
		return q.Where("? IN (?)", ident, bun.In(values))
	}}
}

// IsNull matches rows where the column is NULL.
func (c Column) IsNull() Predicate {
	ident := c.ident()
	return Predicate{apply: func(q bun.QueryBuilder) bun.QueryBuilder {
		return q.Where("? IS NULL", ident)
	}}
}

// Eq is shorthand for Column(column).Eq(value).
func Eq(column string, value any) Predicate { return Column(column).Eq(value) }
