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

package mapper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tomoncle/paybook/dto"
	"github.com/tomoncle/paybook/entity"
	"github.com/tomoncle/paybook/types"
)

func TestUserReadMapper(t *testing.T) {
	birth := time.Date(1955, 10, 28, 0, 0, 0, 0, time.UTC)
	user := &entity.User{
		ID:        7,
		Username:  "bill",
		Firstname: "Bill",
		Lastname:  "Gates",
		BirthDate: birth,
		Role:      types.RoleAdmin,
		Company:   &entity.Company{ID: 3, Name: "Microsoft"},
	}

	got := NewUserReadMapper(nil).MapFrom(user)
	assert.Equal(t, &dto.UserReadDto{
		ID:        7,
		Username:  "bill",
		Firstname: "Bill",
		Lastname:  "Gates",
		BirthDate: birth,
		Role:      types.RoleAdmin,
		Company:   &dto.CompanyReadDto{ID: 3, Name: "Microsoft"},
	}, got)

	user.Company = nil
	assert.Nil(t, NewUserReadMapper(CompanyReadMapper{}).MapFrom(user).Company)
	assert.Nil(t, NewUserReadMapper(nil).MapFrom(nil))
}

func TestCustomCompanyMapper(t *testing.T) {
	upper := Func[*entity.Company, *dto.CompanyReadDto](func(c *entity.Company) *dto.CompanyReadDto {
		if c == nil {
			return nil
		}
		return &dto.CompanyReadDto{ID: c.ID, Name: "[" + c.Name + "]"}
	})
	got := NewUserReadMapper(upper).MapFrom(&entity.User{Company: &entity.Company{Name: "Apple"}})
	assert.Equal(t, "[Apple]", got.Company.Name)
}

func TestUserCreateMapper(t *testing.T) {
	u := UserCreateMapper{}.MapFrom(dto.UserCreateDto{Username: "tim", Firstname: "Tim", CompanyID: 2, Role: types.RoleUser})
	assert.Zero(t, u.ID)
	assert.Equal(t, "tim", u.Username)
	assert.Equal(t, 2, u.CompanyID)
	assert.Equal(t, types.RoleUser, u.Role)
}

func TestMapAll(t *testing.T) {
	users := []*entity.User{{ID: 1, Username: "a"}, {ID: 2, Username: "b"}}
	got := MapAll[*entity.User, *dto.UserReadDto](NewUserReadMapper(nil), users)
	assert.Len(t, got, 2)
	assert.Equal(t, "b", got[1].Username)
	assert.Empty(t, MapAll[*entity.User, *dto.UserReadDto](NewUserReadMapper(nil), nil))
}
