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

package dao_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomoncle/paybook/dao"
	"github.com/tomoncle/paybook/dto"
	"github.com/tomoncle/paybook/entity"
	"github.com/tomoncle/paybook/internal/dbtest"
	"github.com/tomoncle/paybook/repository"
)

func firstNames(users []*entity.User) []string {
	names := make([]string, len(users))
	for i, u := range users {
		names[i] = u.Firstname
	}
	return names
}

func TestFindAll(t *testing.T) {
	d := dao.NewUserDao(dbtest.NewSeeded(t))

	users, err := d.FindAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Bill", "Steve", "Sergey", "Tim", "Diane", "Ivan"}, firstNames(users))
}

func TestFindAllByFirstName(t *testing.T) {
	d := dao.NewUserDao(dbtest.NewSeeded(t))

	users, err := d.FindAllByFirstName(context.Background(), "Bill")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Gates", users[0].Lastname)

	users, err = d.FindAllByFirstName(context.Background(), "Nobody")
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestFindLimitedUsersOrderedByBirthday(t *testing.T) {
	d := dao.NewUserDao(dbtest.NewSeeded(t))
	ctx := context.Background()

	users, err := d.FindLimitedUsersOrderedByBirthday(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"Diane", "Steve", "Bill"}, firstNames(users))

	users, err = d.FindLimitedUsersOrderedByBirthday(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestFindAllByCompanyName(t *testing.T) {
	d := dao.NewUserDao(dbtest.NewSeeded(t))

	users, err := d.FindAllByCompanyName(context.Background(), "Apple")
	require.NoError(t, err)
	assert.Equal(t, []string{"Steve", "Tim"}, firstNames(users))
}

func TestFindAllPaymentsByCompanyName(t *testing.T) {
	d := dao.NewUserDao(dbtest.NewSeeded(t))

	payments, err := d.FindAllPaymentsByCompanyName(context.Background(), "Google")
	require.NoError(t, err)
	amounts := make([]int, len(payments))
	for i, p := range payments {
		amounts[i] = p.Amount
	}
	// Diane's payments come before Sergey's
	assert.Equal(t, []int{300, 300, 300, 500, 500, 500}, amounts)
}

func TestFindAveragePaymentAmount(t *testing.T) {
	d := dao.NewUserDao(dbtest.NewSeeded(t))
	ctx := context.Background()

	tests := []struct {
		name   string
		filter dto.PaymentFilter
		want   float64
		ok     bool
	}{
		{"first name only", dto.PaymentFilter{}.WithFirstName("Bill"), 300, true},
		{"both names", dto.PaymentFilter{}.WithFirstName("Steve").WithLastName("Jobs"), 450, true},
		{"last name only", dto.PaymentFilter{}.WithLastName("Cook"), 350, true},
		{"no criteria", dto.PaymentFilter{}, 5350.0 / 14, true},
		{"names of different users", dto.PaymentFilter{}.WithFirstName("Bill").WithLastName("Jobs"), 0, false},
		{"user without payments", dto.PaymentFilter{}.WithFirstName("Ivan"), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			avg, ok, err := d.FindAveragePaymentAmount(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, avg, 1e-9)
		})
	}
}

func TestFindCompanyAveragePayments(t *testing.T) {
	d := dao.NewUserDao(dbtest.NewSeeded(t))

	rows, err := d.FindCompanyAveragePayments(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Apple", rows[0].CompanyName)
	assert.InDelta(t, 410, rows[0].AvgAmount, 1e-9)
	assert.Equal(t, "Google", rows[1].CompanyName)
	assert.InDelta(t, 400, rows[1].AvgAmount, 1e-9)
	assert.Equal(t, "Microsoft", rows[2].CompanyName)
	assert.InDelta(t, 300, rows[2].AvgAmount, 1e-9)
}

func TestFindUsersAboveAveragePayment(t *testing.T) {
	d := dao.NewUserDao(dbtest.NewSeeded(t))

	rows, err := d.FindUsersAboveAveragePayment(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Sergey", rows[0].Firstname)
	assert.InDelta(t, 500, rows[0].AvgAmount, 1e-9)
	assert.Equal(t, "Steve", rows[1].Firstname)
	assert.Equal(t, "Jobs", rows[1].Lastname)
	assert.InDelta(t, 450, rows[1].AvgAmount, 1e-9)
}

func TestRepositories(t *testing.T) {
	db := dbtest.NewSeeded(t)
	ctx := context.Background()

	companies := dao.NewCompanyRepository(db)
	google, ok, err := companies.FindByName(ctx, "Google", repository.WithRelations("Users"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, google.Users, 2)
	desc, ok := google.Description("ru")
	assert.True(t, ok)
	assert.Equal(t, "Поиск", desc)

	_, ok, err = companies.FindByName(ctx, "Oracle")
	require.NoError(t, err)
	assert.False(t, ok)

	users := dao.NewUserRepository(db)
	steve, ok, err := users.FindByUsername(ctx, "steve", repository.WithGraph(entity.UserWithProfileAndCompany))
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, steve.Profile)
	assert.Equal(t, "Infinite Loop 1", steve.Profile.Street)
	require.NotNil(t, steve.Company)
	assert.Equal(t, "Apple", steve.Company.Name)

	payments, err := dao.NewPaymentRepository(db).FindAllByReceiverID(ctx, steve.ID)
	require.NoError(t, err)
	amounts := make([]int, len(payments))
	for i, p := range payments {
		amounts[i] = p.Amount
	}
	assert.Equal(t, []int{250, 500, 600}, amounts)
}

func TestDeleteUserCascadesToPayments(t *testing.T) {
	db := dbtest.NewSeeded(t)
	ctx := context.Background()
	users := dao.NewUserRepository(db)
	payments := dao.NewPaymentRepository(db)

	bill, ok, err := users.FindByUsername(ctx, "bill")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, users.Delete(ctx, bill.ID))

	left, err := payments.FindAllByReceiverID(ctx, bill.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestPaymentOptimisticLock(t *testing.T) {
	db := dbtest.NewSeeded(t)
	ctx := context.Background()
	payments := dao.NewPaymentRepository(db)

	all, err := payments.FindAll(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, all)
	id := all[0].ID

	a, _, err := payments.FindByID(ctx, id)
	require.NoError(t, err)
	b, _, err := payments.FindByID(ctx, id)
	require.NoError(t, err)

	a.Amount += 1
	require.NoError(t, payments.Update(ctx, a))
	b.Amount += 2
	assert.ErrorIs(t, payments.Update(ctx, b), repository.ErrOptimisticLock)
}
