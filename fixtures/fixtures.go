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

// Package fixtures imports companies, users and payments described in YAML.
package fixtures

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/uptrace/bun"
	"gopkg.in/yaml.v3"

	"github.com/tomoncle/paybook/dao"
	"github.com/tomoncle/paybook/entity"
	"github.com/tomoncle/paybook/types"
	"github.com/tomoncle/paybook/utils"
)

var logger = utils.NewLogger("fixtures")

type Set struct {
	Companies []Company `yaml:"companies"`
	Users     []User    `yaml:"users"`
}

type Company struct {
	Name    string              `yaml:"name"`
	Locales []entity.LocaleInfo `yaml:"locales"`
}

type User struct {
	Username  string    `yaml:"username"`
	Firstname string    `yaml:"firstname"`
	Lastname  string    `yaml:"lastname"`
	BirthDate time.Time `yaml:"birth_date"`
	Role      string    `yaml:"role"`
	Company   string    `yaml:"company"`
	Profile   *Profile  `yaml:"profile"`
	Payments  []int     `yaml:"payments"`
}

type Profile struct {
	Street   string `yaml:"street"`
	Language string `yaml:"language"`
}

// Result counts the rows written by Apply.
type Result struct {
	Companies int
	Users     int
	Payments  int
}

// Parse decodes a fixture set. Unknown keys are rejected.
func Parse(r io.Reader) (*Set, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	set := &Set{}
	if err := dec.Decode(set); err != nil && err != io.EOF {
		return nil, fmt.Errorf("fixtures: decode: %w", err)
	}
	return set, nil
}

func LoadFile(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fixtures: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Apply writes the set in one transaction. Companies and users that already
// exist by name are left as they are, and payments are only added for users
// created by this call, so applying the same set twice is a no-op.
func (s *Set) Apply(ctx context.Context, db bun.IDB) (*Result, error) {
	res := &Result{}
	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		companies := dao.NewCompanyRepository(tx)
		users := dao.NewUserRepository(tx)
		profiles := dao.NewProfileRepository(tx)
		payments := dao.NewPaymentRepository(tx)

		companyIDs := make(map[string]int, len(s.Companies))
		for _, c := range s.Companies {
			existing, ok, err := companies.FindByName(ctx, c.Name)
			if err != nil {
				return err
			}
			if ok {
				companyIDs[c.Name] = existing.ID
				continue
			}
			company := &entity.Company{Name: c.Name, Locales: types.NewJSON(c.Locales)}
			if _, err := companies.Save(ctx, company); err != nil {
				return err
			}
			companyIDs[c.Name] = company.ID
			res.Companies++
		}

		for _, u := range s.Users {
			_, exists, err := users.FindByUsername(ctx, u.Username)
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			user, err := u.toEntity(ctx, companies, companyIDs)
			if err != nil {
				return err
			}
			if _, err := users.Save(ctx, user); err != nil {
				return err
			}
			res.Users++

			if u.Profile != nil {
				profile := &entity.Profile{UserID: user.ID, Street: u.Profile.Street, Language: u.Profile.Language}
				if _, err := profiles.Save(ctx, profile); err != nil {
					return err
				}
			}
			batch := make([]*entity.Payment, len(u.Payments))
			for i, amount := range u.Payments {
				batch[i] = &entity.Payment{Amount: amount, ReceiverID: user.ID}
			}
			if err := payments.SaveAll(ctx, batch...); err != nil {
				return err
			}
			res.Payments += len(batch)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.WithField("companies", res.Companies).
		WithField("users", res.Users).
		WithField("payments", res.Payments).
		Info("fixtures applied")
	return res, nil
}

func (u User) toEntity(ctx context.Context, companies *dao.CompanyRepository, ids map[string]int) (*entity.User, error) {
	user := &entity.User{
		Username:  u.Username,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		BirthDate: u.BirthDate,
	}
	if u.Username == "" {
		return nil, fmt.Errorf("fixtures: user %s %s has no username", u.Firstname, u.Lastname)
	}
	if u.Role != "" {
		role, err := types.ParseRole(u.Role)
		if err != nil {
			return nil, fmt.Errorf("fixtures: user %s: %w", u.Username, err)
		}
		user.Role = role
	}
	if u.Company == "" {
		return user, nil
	}
	if id, ok := ids[u.Company]; ok {
		user.CompanyID = id
		return user, nil
	}
	company, ok, err := companies.FindByName(ctx, u.Company)
	switch {
	case err != nil:
		return nil, err
	case !ok:
		return nil, fmt.Errorf("fixtures: user %s: unknown company %q", u.Username, u.Company)
	}
	ids[u.Company] = company.ID
	user.CompanyID = company.ID
	return user, nil
}
