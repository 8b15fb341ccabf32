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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageRequestBounds(t *testing.T) {
	p := NewDefaultPageRequest(0, 0)
	assert.Equal(t, defaultPage, p.GetPage())
	assert.Equal(t, defaultPageSize, p.GetPageSize())
	assert.Equal(t, 0, p.GetOffset())

	p = NewDefaultPageRequest(3, maxPageSize+1)
	assert.Equal(t, maxPageSize, p.GetPageSize())
	assert.Equal(t, 2*maxPageSize, p.GetOffset())
	assert.True(t, p.GetFilter().IsAll())
}

func TestPaginationPages(t *testing.T) {
	assert.Equal(t, 0, (&Pagination[int]{PageSize: 10}).Pages())
	assert.Equal(t, 1, (&Pagination[int]{PageSize: 10, Total: 10}).Pages())
	assert.Equal(t, 2, (&Pagination[int]{PageSize: 10, Total: 11}).Pages())
}

func TestRole(t *testing.T) {
	r, err := ParseRole(" admin ")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)
	assert.Equal(t, "administrator", r.Desc())

	_, err = ParseRole("root")
	assert.Error(t, err)
	assert.Equal(t, IllegalName, Role("root").String())

	v, err := Role("").Value()
	require.NoError(t, err)
	assert.Nil(t, v)
	_, err = Role("root").Value()
	assert.Error(t, err)

	var scanned Role
	require.NoError(t, scanned.Scan([]byte("USER")))
	assert.Equal(t, RoleUser, scanned)
	require.NoError(t, scanned.Scan(nil))
	assert.Equal(t, Role(""), scanned)
	assert.Error(t, scanned.Scan(42))
}

func TestJSON(t *testing.T) {
	type locale struct {
		Lang string `json:"lang"`
	}
	j := NewJSON([]locale{{Lang: "en"}})
	v, err := j.Value()
	require.NoError(t, err)
	assert.Equal(t, `[{"lang":"en"}]`, v)

	var out JSON[[]locale]
	require.NoError(t, out.Scan(`[{"lang":"ru"}]`))
	assert.Equal(t, "ru", out.Data[0].Lang)
	require.NoError(t, out.Scan(nil))
	assert.Nil(t, out.Data)
	assert.Error(t, out.Scan(3.14))
}
