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

package entity

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/tomoncle/paybook/repository"
	"github.com/tomoncle/paybook/types"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        int64      `bun:"id,pk,autoincrement" json:"id"`
	Username  string     `bun:"username,notnull,unique" json:"username"`
	Firstname string     `bun:"firstname" json:"firstname"`
	Lastname  string     `bun:"lastname" json:"lastname"`
	BirthDate time.Time  `bun:"birth_date,nullzero" json:"birth_date"`
	Role      types.Role `bun:"role,type:varchar(32)" json:"role"`
	CompanyID int        `bun:"company_id,nullzero" json:"company_id,omitempty"`

	Company  *Company   `bun:"rel:belongs-to,join:company_id=id" json:"company,omitempty"`
	Profile  *Profile   `bun:"rel:has-one,join:id=user_id" json:"profile,omitempty"`
	Payments []*Payment `bun:"rel:has-many,join:id=receiver_id" json:"payments,omitempty"`
}

func (u User) GetID() int64 { return u.ID }

// FullName joins first and last name.
func (u User) FullName() string {
	switch {
	case u.Firstname == "":
		return u.Lastname
	case u.Lastname == "":
		return u.Firstname
	}
	return u.Firstname + " " + u.Lastname
}

// Fetch graphs for users.
var (
	UserWithCompany            = repository.NewGraph("WithCompany", "Company")
	UserWithCompanyAndPayments = repository.NewGraph("WithCompanyAndPayments", "Company", "Payments")
	UserWithProfileAndCompany  = repository.NewGraph("WithProfileAndCompany", "Profile", "Company")
)

type Profile struct {
	bun.BaseModel `bun:"table:profile,alias:pr"`

	UserID   int64  `bun:"user_id,pk" json:"user_id"`
	Street   string `bun:"street" json:"street"`
	Language string `bun:"language,type:varchar(2)" json:"language"`

	User *User `bun:"rel:belongs-to,join:user_id=id" json:"-"`
}

func (p Profile) GetID() int64 { return p.UserID }
