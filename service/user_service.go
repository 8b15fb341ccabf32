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

// Package service exposes user operations as DTOs.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"

	"github.com/tomoncle/paybook/dao"
	"github.com/tomoncle/paybook/dto"
	"github.com/tomoncle/paybook/entity"
	"github.com/tomoncle/paybook/mapper"
	"github.com/tomoncle/paybook/repository"
	"github.com/tomoncle/paybook/types"
	"github.com/tomoncle/paybook/utils"
)

var ErrInvalidUser = errors.New("service: invalid user")

type UserService struct {
	db     bun.IDB
	users  *dao.UserRepository
	read   mapper.Mapper[*entity.User, *dto.UserReadDto]
	create mapper.Mapper[dto.UserCreateDto, *entity.User]
	logger *logrus.Logger
}

func NewUserService(db bun.IDB) *UserService {
	return &UserService{
		db:     db,
		users:  dao.NewUserRepository(db),
		read:   mapper.NewUserReadMapper(mapper.CompanyReadMapper{}),
		create: mapper.UserCreateMapper{},
		logger: utils.NewLogger("service"),
	}
}

// FindByID loads a user with its company and maps it to a read DTO.
func (s *UserService) FindByID(ctx context.Context, id int64) (*dto.UserReadDto, bool, error) {
	return FindUserByID(ctx, s, id, s.read)
}

// FindUserByID loads a user with its company and maps it with m.
func FindUserByID[T any](ctx context.Context, s *UserService, id int64, m mapper.Mapper[*entity.User, T]) (T, bool, error) {
	var zero T
	user, ok, err := s.users.FindByID(ctx, id, repository.WithGraph(entity.UserWithCompany))
	if err != nil || !ok {
		return zero, false, err
	}
	return m.MapFrom(user), true, nil
}

// Create registers a user and returns it as a read DTO.
func (s *UserService) Create(ctx context.Context, in dto.UserCreateDto) (*dto.UserReadDto, error) {
	if in.Username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidUser)
	}
	if in.Role != "" && !in.Role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidUser, string(in.Role))
	}

	var created *entity.User
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		users := s.users.WithTx(tx)
		user, err := users.Save(ctx, s.create.MapFrom(in))
		if err != nil {
			return err
		}
		created, _, err = users.FindByID(ctx, user.ID, repository.WithGraph(entity.UserWithCompany))
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"id": created.ID, "username": created.Username}).Info("user created")
	return s.read.MapFrom(created), nil
}

// Delete removes the user with the given id. It reports whether the user
// existed; deleting a missing user is not an error.
func (s *UserService) Delete(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		users := s.users.WithTx(tx)
		_, ok, err := users.FindByID(ctx, id)
		if err != nil || !ok {
			return err
		}
		if err := users.Delete(ctx, id); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if deleted {
		s.logger.WithField("id", id).Info("user deleted")
	}
	return deleted, nil
}

// Page returns one page of users as read DTOs.
func (s *UserService) Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[dto.UserReadDto], error) {
	users, err := s.users.Page(ctx, page)
	if err != nil {
		return nil, err
	}
	return &types.Pagination[dto.UserReadDto]{
		Page:     users.Page,
		PageSize: users.PageSize,
		Total:    users.Total,
		Items:    mapper.MapAll(s.read, users.Items),
	}, nil
}
