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
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// LockMode is a pessimistic row lock taken by a read.
type LockMode int

const (
	LockNone LockMode = iota
	LockShare
	LockUpdate
)

// Graph is a named set of relations loaded together, e.g. a user with its
// company.
type Graph struct {
	Name      string
	Relations []string
}

// NewGraph returns a graph loading the given Bun relation names.
func NewGraph(name string, relations ...string) Graph {
	return Graph{Name: name, Relations: relations}
}

// FindOption is a fetch hint passed through to the select query.
type FindOption func(*findConfig)

type findConfig struct {
	relations []string
	columns   []string
	lock      LockMode
	queries   []func(*bun.SelectQuery) *bun.SelectQuery
}

// WithRelations eagerly loads the named relations, nested ones with dots
// ("Receiver.Company").
func WithRelations(names ...string) FindOption {
	return func(c *findConfig) { c.relations = append(c.relations, names...) }
}

// WithGraph eagerly loads every relation of g.
func WithGraph(g Graph) FindOption {
	return WithRelations(g.Relations...)
}

// WithColumns restricts the selected columns.
func WithColumns(columns ...string) FindOption {
	return func(c *findConfig) { c.columns = append(c.columns, columns...) }
}

// WithLock takes a row lock. It is ignored on SQLite, which has no
// SELECT ... FOR.
func WithLock(mode LockMode) FindOption {
	return func(c *findConfig) { c.lock = mode }
}

// WithQuery applies fn to the select query after the other options.
func WithQuery(fn func(*bun.SelectQuery) *bun.SelectQuery) FindOption {
	return func(c *findConfig) { c.queries = append(c.queries, fn) }
}

func newFindConfig(opts []FindOption) *findConfig {
	c := &findConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *findConfig) apply(q *bun.SelectQuery, name dialect.Name) *bun.SelectQuery {
	for _, rel := range c.relations {
		q = q.Relation(rel)
	}
	if len(c.columns) > 0 {
		q = q.Column(c.columns...)
	}
	if name != dialect.SQLite {
		switch c.lock {
		case LockShare:
			q = q.For("SHARE")
		case LockUpdate:
			q = q.For("UPDATE")
		}
	}
	for _, fn := range c.queries {
		q = fn(q)
	}
	return q
}
