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

package models

import (
	"github.com/blinklabs-io/ballot/database/types"
)

// CollateralAccount tracks the free and reserved balance of an account for
// the database-backed collateral store
type CollateralAccount struct {
	Account  string        `gorm:"uniqueIndex;size:128;not null"`
	Free     types.Uint128 `gorm:"not null"`
	Reserved types.Uint128 `gorm:"not null"`
	ID       uint          `gorm:"primarykey"`
}

func (CollateralAccount) TableName() string {
	return "collateral_account"
}
