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
	"database/sql/driver"
	"errors"
	"fmt"
	"reflect"
)

// ErrInvalidCriterion is recorded by AddChecked when a present value fails
// its check.
var ErrInvalidCriterion = errors.New("predicate: invalid filter criterion")

// Builder stages predicates for the filter values that are present and
// folds them into one condition. A Builder is meant to be built once.
type Builder struct {
	predicates []Predicate
	err        error
}

// New returns an empty builder.
func New() *Builder {
	return &Builder{}
}

// Add stages factory(value) when value is present and does nothing
// otherwise. Pointers are dereferenced before the factory sees the value.
func (b *Builder) Add(value any, factory Factory) *Builder {
	if v, ok := Present(value); ok {
		b.predicates = append(b.predicates, factory(v))
	}
	return b
}

// AddChecked behaves like Add, but a present value rejected by check, or a
// driver.Valuer that cannot produce its value, is not staged; the first
// rejection is kept and returned by Build.
func (b *Builder) AddChecked(value any, check func(value any) error, factory Factory) *Builder {
	v, ok, err := present(value)
	if !ok {
		return b
	}
	if err == nil && check != nil {
		err = check(v)
	}
	if err != nil {
		if b.err == nil {
			b.err = fmt.Errorf("%w: %v", ErrInvalidCriterion, err)
		}
		return b
	}
	b.predicates = append(b.predicates, factory(v))
	return b
}

// AddPredicate stages p unconditionally.
func (b *Builder) AddPredicate(p Predicate) *Builder {
	b.predicates = append(b.predicates, p)
	return b
}

// Len returns the number of staged predicates.
func (b *Builder) Len() int { return len(b.predicates) }

// BuildAnd joins the staged predicates with AND. With nothing staged it
// returns All, so an empty filter matches every row.
func (b *Builder) BuildAnd() Predicate {
	return And(b.predicates...)
}

// BuildOr joins the staged predicates with OR. With nothing staged it
// returns All.
func (b *Builder) BuildOr() Predicate {
	return Or(b.predicates...)
}

// Build is BuildAnd plus the first error recorded by AddChecked.
func (b *Builder) Build() (Predicate, error) {
	if b.err != nil {
		return All(), b.err
	}
	return b.BuildAnd(), nil
}

// Present reports whether value counts as a set filter criterion and returns
// it with pointer and interface indirections removed. nil, nil pointers,
// empty strings, empty slices and maps, and driver.Valuers yielding NULL are
// absent. A driver.Valuer whose Value fails is present and returned as is,
// so the failure surfaces when the query runs.
func Present(value any) (any, bool) {
	v, ok, _ := present(value)
	return v, ok
}

func present(value any) (any, bool, error) {
	if value == nil {
		return nil, false, nil
	}
	if valuer, ok := value.(driver.Valuer); ok {
		rv := reflect.ValueOf(value)
		if rv.Kind() == reflect.Pointer && rv.IsNil() {
			return nil, false, nil
		}
		v, err := valuer.Value()
		if err != nil {
			return value, true, err
		}
		if v == nil {
			return nil, false, nil
		}
		return v, true, nil
	}
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false, nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		if rv.Len() == 0 {
			return nil, false, nil
		}
	}
	return rv.Interface(), true, nil
}
