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
	"github.com/uptrace/bun"

	"github.com/tomoncle/paybook/types"
)

// LocaleInfo is a localized company description.
type LocaleInfo struct {
	Lang        string `json:"lang" yaml:"lang"`
	Description string `json:"description" yaml:"description"`
}

type Company struct {
	bun.BaseModel `bun:"table:company,alias:c"`

	ID      int                      `bun:"id,pk,autoincrement" json:"id"`
	Name    string                   `bun:"name,notnull,unique" json:"name"`
	Locales types.JSON[[]LocaleInfo] `bun:"locales,type:text" json:"locales"`
	Users   []*User                  `bun:"rel:has-many,join:id=company_id" json:"users,omitempty"`
}

func (c Company) GetID() int { return c.ID }

// Description returns the description for lang, if any.
func (c Company) Description(lang string) (string, bool) {
	for _, l := range c.Locales.Data {
		if l.Lang == lang {
			return l.Description, true
		}
	}
	return "", false
}
