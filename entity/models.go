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

import "github.com/tomoncle/paybook/database"

// Models returns the paybook tables in creation order with their foreign
// keys.
func Models() []database.SQLModel {
	return []database.SQLModel{
		database.NewModelAdapter((*Company)(nil), 10),
		database.NewModelAdapter((*User)(nil), 20,
			database.References("company_id", "company").OnDeleteAction(database.ActionSetNull),
		),
		database.NewModelAdapter((*Profile)(nil), 30,
			database.References("user_id", "users").OnDeleteAction(database.ActionCascade),
		),
		database.NewModelAdapter((*Payment)(nil), 30,
			database.References("receiver_id", "users").OnDeleteAction(database.ActionCascade),
		),
	}
}

func init() {
	for _, m := range Models() {
		database.RegisterModel(m)
	}
}
