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

// Package dto holds the read models and filters exchanged with callers.
package dto

import (
	"time"

	"github.com/tomoncle/paybook/types"
)

// PaymentFilter narrows payment reports by receiver. A nil field is not
// filtered on. Values are immutable; the With methods return copies.
type PaymentFilter struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

func (f PaymentFilter) WithFirstName(name string) PaymentFilter {
	f.FirstName = &name
	return f
}

func (f PaymentFilter) WithLastName(name string) PaymentFilter {
	f.LastName = &name
	return f
}

type CompanyReadDto struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type UserReadDto struct {
	ID        int64           `json:"id"`
	Username  string          `json:"username"`
	Firstname string          `json:"firstname"`
	Lastname  string          `json:"lastname"`
	BirthDate time.Time       `json:"birth_date"`
	Role      types.Role      `json:"role"`
	Company   *CompanyReadDto `json:"company,omitempty"`
}

// UserCreateDto is the input for registering a user.
type UserCreateDto struct {
	Username  string     `json:"username"`
	Firstname string     `json:"firstname"`
	Lastname  string     `json:"lastname"`
	BirthDate time.Time  `json:"birth_date"`
	Role      types.Role `json:"role"`
	CompanyID int        `json:"company_id"`
}

// CompanyAveragePayment is one row of the per-company payment report.
type CompanyAveragePayment struct {
	CompanyName string  `bun:"company_name" json:"company_name"`
	AvgAmount   float64 `bun:"avg_amount" json:"avg_amount"`
}

// UserAveragePayment is one row of the per-user payment report.
type UserAveragePayment struct {
	UserID    int64   `bun:"user_id" json:"user_id"`
	Firstname string  `bun:"firstname" json:"firstname"`
	Lastname  string  `bun:"lastname" json:"lastname"`
	AvgAmount float64 `bun:"avg_amount" json:"avg_amount"`
}
