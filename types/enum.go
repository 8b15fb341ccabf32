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

package types

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Common illegal/default values used by enums.
const (
	IllegalValue = -1
	IllegalName  = "unknown"
	IllegalDesc  = "unknown"
)

// BaseEnum represents a basic enum contract used by domain types.
type BaseEnum interface {
	IsValid() bool
	Number() int
	String() string
	Desc() string
	Name() string
}

// Role is the access role of a user, stored by name.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

var roles = []struct {
	role Role
	desc string
}{
	{RoleAdmin, "administrator"},
	{RoleUser, "regular user"},
}

var _ BaseEnum = RoleAdmin

// ParseRole resolves a role name case-insensitively.
func ParseRole(name string) (Role, error) {
	for _, r := range roles {
		if strings.EqualFold(string(r.role), strings.TrimSpace(name)) {
			return r.role, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", name)
}

func (r Role) IsValid() bool { return r.Number() != IllegalValue }

func (r Role) Number() int {
	for i, item := range roles {
		if item.role == r {
			return i
		}
	}
	return IllegalValue
}

func (r Role) String() string { return r.Name() }

func (r Role) Name() string {
	if !r.IsValid() {
		return IllegalName
	}
	return string(r)
}

func (r Role) Desc() string {
	if n := r.Number(); n != IllegalValue {
		return roles[n].desc
	}
	return IllegalDesc
}

// Value implements driver.Valuer; an empty role is stored as NULL.
func (r Role) Value() (driver.Value, error) {
	if r == "" {
		return nil, nil
	}
	if !r.IsValid() {
		return nil, fmt.Errorf("invalid role %q", string(r))
	}
	return string(r), nil
}

// Scan implements sql.Scanner.
func (r *Role) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*r = ""
		return nil
	case string:
		*r = Role(v)
	case []byte:
		*r = Role(v)
	default:
		return fmt.Errorf("cannot scan %T into Role", value)
	}
	return nil
}
