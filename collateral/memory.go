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
	"slices"
	"strings"
	"sync"

	"lukechampine.com/uint128"
)

// Memory keeps balances in memory. The zero value is not usable, use
// NewMemory
type Memory struct {
	balances map[string]*Balance
	mu       sync.Mutex
}

// NewMemory returns an empty in-memory collateral gateway
func NewMemory() *Memory {
	return &Memory{
		balances: make(map[string]*Balance),
	}
}

func (m *Memory) balance(account string) *Balance {
	b, ok := m.balances[account]
	if !ok {
		b = &Balance{Account: account}
		m.balances[account] = b
	}
	return b
}

// Deposit credits the free balance of an account
func (m *Memory) Deposit(account string, amount uint128.Uint128) error {
	if err := validateAccount(account); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balance(account).deposit(amount)
}

// Reserve moves amount from free to reserved
func (m *Memory) Reserve(account string, amount uint128.Uint128) error {
	if err := validateAccount(account); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.balance(account)
	tmp := *b
	if err := tmp.reserve(amount); err != nil {
		return err
	}
	*b = tmp
	return nil
}

// Unreserve returns up to amount of reserved collateral to free
func (m *Memory) Unreserve(account string, amount uint128.Uint128) error {
	if err := validateAccount(account); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.balance(account)
	tmp := *b
	if err := tmp.unreserve(amount); err != nil {
		return err
	}
	*b = tmp
	return nil
}

// ReservedBalance returns the reserved balance of an account
func (m *Memory) ReservedBalance(account string) (uint128.Uint128, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.balances[account]; ok {
		return b.Reserved, nil
	}
	return uint128.Zero, nil
}

// FreeBalance returns the free balance of an account
func (m *Memory) FreeBalance(account string) (uint128.Uint128, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.balances[account]; ok {
		return b.Free, nil
	}
	return uint128.Zero, nil
}

// Balances returns a copy of every known balance, sorted by account
func (m *Memory) Balances() ([]Balance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ret := make([]Balance, 0, len(m.balances))
	for _, b := range m.balances {
		ret = append(ret, *b)
	}
	slices.SortFunc(ret, func(a, b Balance) int {
		return strings.Compare(a.Account, b.Account)
	})
	return ret, nil
}
