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

// Package collateral holds account balances that can be reserved as
// collateral for voting
package collateral

import (
	"errors"

	"lukechampine.com/uint128"
)

var (
	ErrInsufficientBalance = errors.New("insufficient free balance")
	ErrBalanceOverflow     = errors.New("balance overflow")
	ErrInvalidAccount      = errors.New("invalid account")
)

// Balance is the free and reserved collateral of a single account
type Balance struct {
	Account  string
	Free     uint128.Uint128
	Reserved uint128.Uint128
}

// deposit adds to the free balance
func (b *Balance) deposit(amount uint128.Uint128) error {
	free := b.Free.AddWrap(amount)
	if free.Cmp(b.Free) < 0 {
		return ErrBalanceOverflow
	}
	b.Free = free
	return nil
}

// reserve moves an amount from free to reserved
func (b *Balance) reserve(amount uint128.Uint128) error {
	if b.Free.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	reserved := b.Reserved.AddWrap(amount)
	if reserved.Cmp(b.Reserved) < 0 {
		return ErrBalanceOverflow
	}
	b.Free = b.Free.Sub(amount)
	b.Reserved = reserved
	return nil
}

// unreserve moves up to amount from reserved back to free. Any part of
// amount beyond what is reserved is ignored
func (b *Balance) unreserve(amount uint128.Uint128) error {
	if b.Reserved.Cmp(amount) < 0 {
		amount = b.Reserved
	}
	free := b.Free.AddWrap(amount)
	if free.Cmp(b.Free) < 0 {
		return ErrBalanceOverflow
	}
	b.Reserved = b.Reserved.Sub(amount)
	b.Free = free
	return nil
}

func validateAccount(account string) error {
	if account == "" {
		return ErrInvalidAccount
	}
	return nil
}
