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

// ActiveProposal is the single in-progress proposal. The table holds at most
// one row
type ActiveProposal struct {
	ContentHash []byte           `gorm:"size:32;not null"`
	Options     []ProposalOption `gorm:"foreignKey:ProposalId;references:ProposalId"`
	ID          uint             `gorm:"primarykey"`
	EndTick     types.Uint64     `gorm:"not null"`
	ProposalId  uint32           `gorm:"uniqueIndex;not null"`
}

func (ActiveProposal) TableName() string {
	return "active_proposal"
}

// ProposalOption is a single option of the active proposal along with its
// running vote total
type ProposalOption struct {
	ContentHash []byte        `gorm:"size:32;not null"`
	Votes       types.Uint128 `gorm:"not null"`
	ID          uint          `gorm:"primarykey"`
	ProposalId  uint32        `gorm:"index:idx_proposal_option,unique;not null"`
	OptionId    uint8         `gorm:"index:idx_proposal_option,unique"`
}

func (ProposalOption) TableName() string {
	return "proposal_option"
}

// GovernanceState holds module-wide counters. The table holds a single row
type GovernanceState struct {
	ID              uint `gorm:"primarykey"`
	ProposalCounter uint32
}

func (GovernanceState) TableName() string {
	return "governance_state"
}

// ClockState holds the current tick for the database-backed clock
type ClockState struct {
	ID   uint `gorm:"primarykey"`
	Tick types.Uint64
}

func (ClockState) TableName() string {
	return "clock_state"
}
