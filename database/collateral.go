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

package database

import (
	"github.com/blinklabs-io/ballot/database/models"
)

// GetCollateralAccount returns the collateral balances for an account, or nil
// if the account has never been funded
func (d *Database) GetCollateralAccount(
	account string,
	txn *Txn,
) (*models.CollateralAccount, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.GetCollateralAccount(account, txn.Metadata())
}

// GetCollateralAccounts returns the collateral balances of all funded accounts
func (d *Database) GetCollateralAccounts(
	txn *Txn,
) ([]models.CollateralAccount, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.GetCollateralAccounts(txn.Metadata())
}

func (d *Database) SetCollateralAccount(
	account *models.CollateralAccount,
	txn *Txn,
) error {
	if txn == nil {
		return d.Transaction(true).Do(func(txn *Txn) error {
			return d.SetCollateralAccount(account, txn)
		})
	}
	return d.metadata.SetCollateralAccount(account, txn.Metadata())
}

// GetClockTick returns the persisted clock tick
func (d *Database) GetClockTick(txn *Txn) (uint64, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.GetClockTick(txn.Metadata())
}

func (d *Database) SetClockTick(tick uint64, txn *Txn) error {
	if txn == nil {
		return d.Transaction(true).Do(func(txn *Txn) error {
			return d.SetClockTick(tick, txn)
		})
	}
	return d.metadata.SetClockTick(tick, txn.Metadata())
}
