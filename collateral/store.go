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

package collateral

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/blinklabs-io/ballot/database"
	"github.com/blinklabs-io/ballot/database/models"
	"github.com/blinklabs-io/ballot/database/types"
	"lukechampine.com/uint128"
)

// Store keeps balances in the metadata database, so reservations survive
// restarts
type Store struct {
	db     *database.Database
	logger *slog.Logger
}

// NewStore returns a collateral store backed by db
func NewStore(db *database.Database, logger *slog.Logger) *Store {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Store{
		db:     db,
		logger: logger,
	}
}

func (s *Store) load(account string, txn *database.Txn) (*Balance, error) {
	tmpAccount, err := s.db.GetCollateralAccount(account, txn)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup collateral account: %w", err)
	}
	if tmpAccount == nil {
		return &Balance{Account: account}, nil
	}
	return &Balance{
		Account:  account,
		Free:     tmpAccount.Free.Uint128,
		Reserved: tmpAccount.Reserved.Uint128,
	}, nil
}

func (s *Store) save(b *Balance, txn *database.Txn) error {
	if err := s.db.SetCollateralAccount(
		&models.CollateralAccount{
			Account:  b.Account,
			Free:     types.NewUint128(b.Free),
			Reserved: types.NewUint128(b.Reserved),
		},
		txn,
	); err != nil {
		return fmt.Errorf("failed to store collateral account: %w", err)
	}
	return nil
}

// update applies fn to an account balance inside a single transaction. The
// balance is only written if fn succeeds
func (s *Store) update(account string, fn func(*Balance) error) error {
	if err := validateAccount(account); err != nil {
		return err
	}
	return s.db.Transaction(true).Do(func(txn *database.Txn) error {
		b, err := s.load(account, txn)
		if err != nil {
			return err
		}
		if err := fn(b); err != nil {
			return err
		}
		return s.save(b, txn)
	})
}

// Deposit credits the free balance of an account
func (s *Store) Deposit(account string, amount uint128.Uint128) error {
	return s.update(account, func(b *Balance) error {
		return b.deposit(amount)
	})
}

// Reserve moves amount from the free balance to the reserved balance
func (s *Store) Reserve(account string, amount uint128.Uint128) error {
	return s.update(account, func(b *Balance) error {
		return b.reserve(amount)
	})
}

// Unreserve returns up to amount of reserved collateral to the free balance
func (s *Store) Unreserve(account string, amount uint128.Uint128) error {
	return s.update(account, func(b *Balance) error {
		return b.unreserve(amount)
	})
}

// ReservedBalance returns the reserved balance of an account
func (s *Store) ReservedBalance(account string) (uint128.Uint128, error) {
	b, err := s.load(account, nil)
	if err != nil {
		return uint128.Zero, err
	}
	return b.Reserved, nil
}

// FreeBalance returns the free balance of an account
func (s *Store) FreeBalance(account string) (uint128.Uint128, error) {
	b, err := s.load(account, nil)
	if err != nil {
		return uint128.Zero, err
	}
	return b.Free, nil
}

// Balances returns every stored balance, sorted by account
func (s *Store) Balances() ([]Balance, error) {
	tmpAccounts, err := s.db.GetCollateralAccounts(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load collateral accounts: %w", err)
	}
	ret := make([]Balance, 0, len(tmpAccounts))
	for _, tmpAccount := range tmpAccounts {
		ret = append(
			ret,
			Balance{
				Account:  tmpAccount.Account,
				Free:     tmpAccount.Free.Uint128,
				Reserved: tmpAccount.Reserved.Uint128,
			},
		)
	}
	return ret, nil
}

// SeedGenesis credits initial free balances to accounts that have never been
// funded. Accounts that already exist are left alone, so seeding on every
// startup is safe
func (s *Store) SeedGenesis(balances map[string]uint128.Uint128) error {
	return s.db.Transaction(true).Do(func(txn *database.Txn) error {
		for account, amount := range balances {
			if err := validateAccount(account); err != nil {
				return fmt.Errorf("genesis balance: %w", err)
			}
			existing, err := s.db.GetCollateralAccount(account, txn)
			if err != nil {
				return fmt.Errorf(
					"failed to lookup collateral account: %w",
					err,
				)
			}
			if existing != nil {
				continue
			}
			if err := s.save(
				&Balance{Account: account, Free: amount},
				txn,
			); err != nil {
				return err
			}
			s.logger.Debug(
				"seeded genesis balance",
				"component", "collateral",
				"account", account,
				"amount", amount.String(),
			)
		}
		return nil
	})
}
