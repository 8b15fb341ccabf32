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

	"github.com/tomoncle/paybook/repository"
)

// Payment is an amount paid to a user. Updates are guarded by Version.
type Payment struct {
	bun.BaseModel `bun:"table:payment,alias:p"`

	ID         int64 `bun:"id,pk,autoincrement" json:"id"`
	Amount     int   `bun:"amount,notnull" json:"amount"`
	ReceiverID int64 `bun:"receiver_id,notnull" json:"receiver_id"`
	Version    int64 `bun:"version,notnull,default:0" json:"version"`

	Receiver *User `bun:"rel:belongs-to,join:receiver_id=id" json:"receiver,omitempty"`
}

var _ repository.Versioned = (*Payment)(nil)

func (p Payment) GetID() int64 { return p.ID }

func (p *Payment) GetVersion() int64 { return p.Version }

func (p *Payment) SetVersion(v int64) { p.Version = v }
