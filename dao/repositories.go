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

package dao

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/tomoncle/paybook/entity"
	"github.com/tomoncle/paybook/predicate"
	"github.com/tomoncle/paybook/repository"
)

type CompanyRepository struct {
	repository.Repository[int, entity.Company]
}

func NewCompanyRepository(db bun.IDB) *CompanyRepository {
	return &CompanyRepository{repository.NewRepository[int, entity.Company](db)}
}

// FindByName returns the company called name.
func (r *CompanyRepository) FindByName(ctx context.Context, name string, opts ...repository.FindOption) (*entity.Company, bool, error) {
	companies, err := r.FindWhere(ctx, predicate.Eq("c.name", name), opts...)
	if err != nil || len(companies) == 0 {
		return nil, false, err
	}
	return companies[0], true, nil
}

type UserRepository struct {
	repository.Repository[int64, entity.User]
}

func NewUserRepository(db bun.IDB) *UserRepository {
	return &UserRepository{repository.NewRepository[int64, entity.User](db)}
}

func (r *UserRepository) WithTx(db bun.IDB) *UserRepository {
	return &UserRepository{r.Repository.WithTx(db)}
}

// FindByUsername looks a user up by its unique login name.
func (r *UserRepository) FindByUsername(ctx context.Context, username string, opts ...repository.FindOption) (*entity.User, bool, error) {
	users, err := r.FindWhere(ctx, predicate.Eq("u.username", username), opts...)
	if err != nil || len(users) == 0 {
		return nil, false, err
	}
	return users[0], true, nil
}

type ProfileRepository struct {
	repository.Repository[int64, entity.Profile]
}

func NewProfileRepository(db bun.IDB) *ProfileRepository {
	return &ProfileRepository{repository.NewRepository[int64, entity.Profile](db)}
}

type PaymentRepository struct {
	repository.Repository[int64, entity.Payment]
}

func NewPaymentRepository(db bun.IDB) *PaymentRepository {
	return &PaymentRepository{repository.NewRepository[int64, entity.Payment](db)}
}

// FindAllByReceiverID returns the payments received by a user, smallest
// amount first.
func (r *PaymentRepository) FindAllByReceiverID(ctx context.Context, receiverID int64) ([]*entity.Payment, error) {
	return r.FindWhere(ctx, predicate.Eq("p.receiver_id", receiverID),
		repository.WithQuery(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.amount ASC, ?TableAlias.id ASC")
		}))
}
