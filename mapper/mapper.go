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

// Package mapper converts entities to DTOs and back.
package mapper

import (
	"github.com/tomoncle/paybook/dto"
	"github.com/tomoncle/paybook/entity"
)

// Mapper converts F into T.
type Mapper[F, T any] interface {
	MapFrom(from F) T
}

// Func adapts a plain function to Mapper.
type Func[F, T any] func(F) T

func (f Func[F, T]) MapFrom(from F) T { return f(from) }

// MapAll maps every element of in.
func MapAll[F, T any](m Mapper[F, T], in []F) []T {
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = m.MapFrom(v)
	}
	return out
}

type CompanyReadMapper struct{}

func (CompanyReadMapper) MapFrom(c *entity.Company) *dto.CompanyReadDto {
	if c == nil {
		return nil
	}
	return &dto.CompanyReadDto{ID: c.ID, Name: c.Name}
}

// UserReadMapper maps a user and, when loaded, its company.
type UserReadMapper struct {
	company Mapper[*entity.Company, *dto.CompanyReadDto]
}

func NewUserReadMapper(company Mapper[*entity.Company, *dto.CompanyReadDto]) *UserReadMapper {
	if company == nil {
		company = CompanyReadMapper{}
	}
	return &UserReadMapper{company: company}
}

func (m *UserReadMapper) MapFrom(u *entity.User) *dto.UserReadDto {
	if u == nil {
		return nil
	}
	return &dto.UserReadDto{
		ID:        u.ID,
		Username:  u.Username,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		BirthDate: u.BirthDate,
		Role:      u.Role,
		Company:   m.company.MapFrom(u.Company),
	}
}

type UserCreateMapper struct{}

func (UserCreateMapper) MapFrom(in dto.UserCreateDto) *entity.User {
	return &entity.User{
		Username:  in.Username,
		Firstname: in.Firstname,
		Lastname:  in.Lastname,
		BirthDate: in.BirthDate,
		Role:      in.Role,
		CompanyID: in.CompanyID,
	}
}
