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
	"database/sql"

	"github.com/uptrace/bun"

	"github.com/tomoncle/paybook/dto"
	"github.com/tomoncle/paybook/entity"
	"github.com/tomoncle/paybook/predicate"
	"github.com/tomoncle/paybook/repository"
)

const (
	joinReceiver      = "JOIN users AS u ON u.id = p.receiver_id"
	joinUserCompany   = "JOIN company AS c ON c.id = u.company_id"
	joinCompanyUsers  = "JOIN users AS u ON u.company_id = c.id"
	joinUsersPayments = "JOIN payment AS p ON p.receiver_id = u.id"
)

// UserDao runs the reporting queries over users, companies and payments.
type UserDao struct {
	db bun.IDB
}

func NewUserDao(db bun.IDB) *UserDao {
	return &UserDao{db: db}
}

// WithTx returns a copy running on db.
func (d *UserDao) WithTx(db bun.IDB) *UserDao {
	return &UserDao{db: db}
}

// FindAll returns every user ordered by id.
func (d *UserDao) FindAll(ctx context.Context) ([]*entity.User, error) {
	users := make([]*entity.User, 0)
	err := d.db.NewSelect().Model(&users).OrderExpr("u.id ASC").Scan(ctx)
	if err != nil {
		return nil, repository.WrapError("find all", "User", err)
	}
	return users, nil
}

// FindAllByFirstName returns the users with the given first name.
func (d *UserDao) FindAllByFirstName(ctx context.Context, firstName string) ([]*entity.User, error) {
	users := make([]*entity.User, 0)
	err := d.db.NewSelect().
		Model(&users).
		ApplyQueryBuilder(predicate.Eq("u.firstname", firstName).Apply).
		OrderExpr("u.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, repository.WrapError("find by first name", "User", err)
	}
	return users, nil
}

// FindLimitedUsersOrderedByBirthday returns at most limit users, oldest
// first.
func (d *UserDao) FindLimitedUsersOrderedByBirthday(ctx context.Context, limit int) ([]*entity.User, error) {
	users := make([]*entity.User, 0)
	if limit <= 0 {
		return users, nil
	}
	err := d.db.NewSelect().
		Model(&users).
		OrderExpr("u.birth_date ASC, u.id ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, repository.WrapError("find by birthday", "User", err)
	}
	return users, nil
}

// FindAllByCompanyName returns the employees of the named company.
func (d *UserDao) FindAllByCompanyName(ctx context.Context, companyName string) ([]*entity.User, error) {
	users := make([]*entity.User, 0)
	err := d.db.NewSelect().
		Model(&users).
		Join(joinUserCompany).
		Where("c.name = ?", companyName).
		OrderExpr("u.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, repository.WrapError("find by company", "User", err)
	}
	return users, nil
}

// FindAllPaymentsByCompanyName returns the payments received by employees of
// the named company, ordered by receiver first name and then by amount.
func (d *UserDao) FindAllPaymentsByCompanyName(ctx context.Context, companyName string) ([]*entity.Payment, error) {
	payments := make([]*entity.Payment, 0)
	err := d.db.NewSelect().
		Model(&payments).
		Join(joinReceiver).
		Join(joinUserCompany).
		Where("c.name = ?", companyName).
		OrderExpr("u.firstname ASC, p.amount ASC, p.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, repository.WrapError("find by company", "Payment", err)
	}
	return payments, nil
}

// FindAveragePaymentAmount averages the payments of the receivers matching
// filter. Unset filter fields are not applied. ok is false when no payment
// matched.
func (d *UserDao) FindAveragePaymentAmount(ctx context.Context, filter dto.PaymentFilter) (avg float64, ok bool, err error) {
	where := predicate.New().
		Add(filter.FirstName, predicate.Column("u.firstname").Eq).
		Add(filter.LastName, predicate.Column("u.lastname").Eq).
		BuildAnd()

	var result sql.NullFloat64
	err = d.db.NewSelect().
		Model((*entity.Payment)(nil)).
		ColumnExpr("AVG(p.amount)").
		Join(joinReceiver).
		ApplyQueryBuilder(where.Apply).
		Scan(ctx, &result)
	if err != nil {
		return 0, false, repository.WrapError("average", "Payment", err)
	}
	return result.Float64, result.Valid, nil
}

// FindCompanyAveragePayments returns the average payment per company, by
// company name. Companies without payments are left out.
func (d *UserDao) FindCompanyAveragePayments(ctx context.Context) ([]dto.CompanyAveragePayment, error) {
	rows := make([]dto.CompanyAveragePayment, 0)
	err := d.db.NewSelect().
		Model((*entity.Company)(nil)).
		ColumnExpr("c.name AS company_name").
		ColumnExpr("AVG(p.amount) AS avg_amount").
		Join(joinCompanyUsers).
		Join(joinUsersPayments).
		GroupExpr("c.name").
		OrderExpr("c.name ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, repository.WrapError("average by company", "Payment", err)
	}
	return rows, nil
}

// FindUsersAboveAveragePayment returns the users whose average payment is
// above the average of all payments, by first name.
func (d *UserDao) FindUsersAboveAveragePayment(ctx context.Context) ([]dto.UserAveragePayment, error) {
	overall := d.db.NewSelect().
		TableExpr("payment AS p2").
		ColumnExpr("AVG(p2.amount)")

	rows := make([]dto.UserAveragePayment, 0)
	err := d.db.NewSelect().
		Model((*entity.User)(nil)).
		ColumnExpr("u.id AS user_id").
		ColumnExpr("u.firstname, u.lastname").
		ColumnExpr("AVG(p.amount) AS avg_amount").
		Join(joinUsersPayments).
		GroupExpr("u.id, u.firstname, u.lastname").
		Having("AVG(p.amount) > (?)", overall).
		OrderExpr("u.firstname ASC, u.id ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, repository.WrapError("above average", "User", err)
	}
	return rows, nil
}
