// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package gormstore

import (
	"errors"

	"github.com/blinklabs-io/ballot/database/models"
	"github.com/blinklabs-io/ballot/database/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetCollateralAccount returns the collateral balances for an account, or nil
// if the account has never been funded
func (s *Store) GetCollateralAccount(
	account string,
	txn types.Txn,
) (*models.CollateralAccount, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	ret := &models.CollateralAccount{}
	result := db.Where("account = ?", account).First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// GetCollateralAccounts returns all collateral accounts ordered by account
func (s *Store) GetCollateralAccounts(
	txn types.Txn,
) ([]models.CollateralAccount, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.CollateralAccount
	result := db.Order("account ASC").Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// SetCollateralAccount creates or overwrites the collateral balances for an
// account
func (s *Store) SetCollateralAccount(
	account *models.CollateralAccount,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	tmpAccount := models.CollateralAccount{
		Account:  account.Account,
		Free:     account.Free,
		Reserved: account.Reserved,
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account"}},
		DoUpdates: clause.AssignmentColumns([]string{"free", "reserved"}),
	}).Create(&tmpAccount)
	return result.Error
}
