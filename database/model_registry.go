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
	"reflect"
	"sort"
	"sync"
)

var defaultRegistry = NewModelRegistry()

// SQLModel is a Bun model known to the migration manager. Instance returns
// a typed nil struct pointer; lower Priority tables are created first, so a
// referenced table must have a lower priority than its referrers.
type SQLModel interface {
	Instance() interface{}
	Priority() int
	ForeignKeys() []ForeignKeyConstraint
}

// ModelRegistry stores SQL models and exposes them in priority order.
type ModelRegistry interface {
	Register(model SQLModel)
	Models() []SQLModel
	Instances() []interface{}
}

type modelRegistry struct {
	models []SQLModel
	mutex  sync.RWMutex
}

// NewModelRegistry returns an empty registry.
func NewModelRegistry() ModelRegistry {
	return &modelRegistry{}
}

// Register adds model; registering the same Go type twice replaces the
// earlier entry.
func (r *modelRegistry) Register(model SQLModel) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	t := modelType(model.Instance())
	for i, m := range r.models {
		if modelType(m.Instance()) == t {
			r.models[i] = model
			return
		}
	}
	r.models = append(r.models, model)
}

func (r *modelRegistry) Models() []SQLModel {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]SQLModel, len(r.models))
	copy(result, r.models)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Priority() < result[j].Priority()
	})
	return result
}

func (r *modelRegistry) Instances() []interface{} {
	models := r.Models()
	out := make([]interface{}, len(models))
	for i, m := range models {
		out[i] = m.Instance()
	}
	return out
}

func modelType(instance interface{}) reflect.Type {
	t := reflect.TypeOf(instance)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// ModelAdapter is the plain SQLModel implementation.
type ModelAdapter struct {
	instance    interface{}
	priority    int
	foreignKeys []ForeignKeyConstraint
}

// NewModelAdapter wraps a model instance, its creation priority and the
// foreign keys declared on its table.
func NewModelAdapter(instance interface{}, priority int, fks ...ForeignKeyConstraint) SQLModel {
	return &ModelAdapter{instance: instance, priority: priority, foreignKeys: fks}
}

func (a *ModelAdapter) Instance() interface{} { return a.instance }

func (a *ModelAdapter) Priority() int { return a.priority }

func (a *ModelAdapter) ForeignKeys() []ForeignKeyConstraint { return a.foreignKeys }

// RegisterModel adds a model to the default registry.
func RegisterModel(model SQLModel) {
	defaultRegistry.Register(model)
}

// GetRegisteredModels returns the default registry's models by priority.
func GetRegisteredModels() []SQLModel {
	return defaultRegistry.Models()
}

func RegisteredModelInstances() []interface{} {
	return defaultRegistry.Instances()
}
