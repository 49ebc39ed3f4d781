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

package api

import (
	"context"

	"github.com/blinklabs-io/ballot/governance"
	"lukechampine.com/uint128"
)

// Node is the interface that the API server uses to run governance
// operations. This decouples the HTTP server from the concrete governance
// wiring and enables testing with mock implementations.
type Node interface {
	Register(ctx context.Context, account string) error
	TopUpPower(
		ctx context.Context,
		account string,
		amount uint128.Uint128,
	) (uint128.Uint128, error)
	Withdraw(ctx context.Context, account string) error
	CastVote(
		ctx context.Context,
		account string,
		allocations []governance.Allocation,
	) error
	CreateProposal(
		ctx context.Context,
		contentHash governance.ContentHash,
		optionHashes []governance.ContentHash,
	) (uint32, error)
	CloseProposal(ctx context.Context) (*governance.FinishedProposal, error)

	// Voter returns a voter along with its collateral balances
	Voter(account string) (VoterInfo, error)
	ActiveProposal() (*governance.Proposal, error)
	FinishedProposal(id uint32) (*governance.FinishedProposal, error)
	FinishedProposals() ([]*governance.FinishedProposal, error)

	// ClockTick returns the current governance clock tick
	ClockTick() (uint64, error)
	// AdvanceClock moves a manually driven clock forward. Clocks that
	// cannot be driven return ErrClockNotAdvanceable
	AdvanceClock(ticks uint64) (uint64, error)
}

// VoterInfo holds voter data needed by the API
type VoterInfo struct {
	Account         string
	VotingPower     uint128.Uint128
	ReservedBalance uint128.Uint128
	FreeBalance     uint128.Uint128
	VotedProposal   uint32
	HasVoted        bool
}
