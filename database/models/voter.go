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

// Voter is a registered account and its current voting power
type Voter struct {
	Account     string        `gorm:"uniqueIndex;size:128;not null"`
	VotingPower types.Uint128 `gorm:"not null"`
	ID          uint          `gorm:"primarykey"`
}

func (Voter) TableName() string {
	return "voter"
}

// VotedProposal records the last proposal id an account voted on. A missing
// row means the account has never voted
type VotedProposal struct {
	Account    string `gorm:"uniqueIndex;size:128;not null"`
	ID         uint   `gorm:"primarykey"`
	ProposalId uint32 `gorm:"not null"`
}

func (VotedProposal) TableName() string {
	return "voted_proposal"
}
