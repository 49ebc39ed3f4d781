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

package governance

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/blinklabs-io/ballot/database/models"
	"github.com/blinklabs-io/ballot/database/types"
	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
	"lukechampine.com/uint128"
)

// MaxAccountLength is the longest account identifier accepted
const MaxAccountLength = 128

// ContentHash references off-chain proposal or option content
type ContentHash = lcommon.Blake2b256

// ParseContentHash decodes a hex encoded content hash with an optional 0x prefix
func ParseContentHash(value string) (ContentHash, error) {
	data, err := hex.DecodeString(strings.TrimPrefix(value, "0x"))
	if err != nil {
		return ContentHash{}, fmt.Errorf("invalid hash %q: %w", value, err)
	}
	if len(data) != lcommon.Blake2b256Size {
		return ContentHash{}, fmt.Errorf(
			"invalid hash %q: expected %d bytes, got %d",
			value,
			lcommon.Blake2b256Size,
			len(data),
		)
	}
	return lcommon.NewBlake2b256(data), nil
}

type ProposalStatus uint8

const (
	ProposalStatusInProgress ProposalStatus = iota
	ProposalStatusFinished
)

func (s ProposalStatus) String() string {
	switch s {
	case ProposalStatusInProgress:
		return "InProgress"
	case ProposalStatusFinished:
		return "Finished"
	default:
		return fmt.Sprintf("ProposalStatus(%d)", uint8(s))
	}
}

// Voter is a registered account and the power it can spend on a proposal
type Voter struct {
	Account     string
	VotingPower uint128.Uint128
}

// Option is a single choice on a proposal and its running vote total
type Option struct {
	Id          uint8
	Votes       uint128.Uint128
	ContentHash ContentHash
}

type Proposal struct {
	Id          uint32
	ContentHash ContentHash
	EndTick     uint64
	Status      ProposalStatus
	Options     []Option
}

// FinishedProposal is a closed proposal along with its winning option
type FinishedProposal struct {
	Proposal
	WinnerIndex uint8
	WinnerVotes uint128.Uint128
}

// Allocation assigns part of a voter's power to an option
type Allocation struct {
	OptionId uint8
	Votes    uint128.Uint128
}

// VotingPowerFor returns the voting power granted by the given reserved
// collateral: the integer square root of whatever exceeds the register fee,
// or zero if nothing does
func VotingPowerFor(reserved, registerFee uint128.Uint128) uint128.Uint128 {
	if reserved.Cmp(registerFee) <= 0 {
		return uint128.Zero
	}
	return isqrt(reserved.Sub(registerFee))
}

// isqrt returns floor(sqrt(n)). The result always fits in 64 bits
func isqrt(n uint128.Uint128) uint128.Uint128 {
	root := new(big.Int).Sqrt(n.Big())
	return uint128.From64(root.Uint64())
}

// checkedAdd adds two values, failing instead of wrapping
func checkedAdd(a, b uint128.Uint128) (uint128.Uint128, error) {
	sum := a.AddWrap(b)
	if sum.Cmp(a) < 0 {
		return uint128.Zero, ErrArithmeticOverflow
	}
	return sum, nil
}

func validateAccount(account string) error {
	if account == "" || len(account) > MaxAccountLength {
		return ErrInvalidAccount
	}
	return nil
}

func voterFromModel(m *models.Voter) Voter {
	return Voter{
		Account:     m.Account,
		VotingPower: m.VotingPower.Uint128,
	}
}

func proposalFromModel(m *models.ActiveProposal) *Proposal {
	ret := &Proposal{
		Id:          m.ProposalId,
		ContentHash: lcommon.NewBlake2b256(m.ContentHash),
		EndTick:     uint64(m.EndTick),
		Status:      ProposalStatusInProgress,
		Options:     make([]Option, 0, len(m.Options)),
	}
	for _, opt := range m.Options {
		ret.Options = append(
			ret.Options,
			Option{
				Id:          opt.OptionId,
				Votes:       opt.Votes.Uint128,
				ContentHash: lcommon.NewBlake2b256(opt.ContentHash),
			},
		)
	}
	return ret
}

func (p *Proposal) toModel() *models.ActiveProposal {
	ret := &models.ActiveProposal{
		ProposalId:  p.Id,
		ContentHash: p.ContentHash.Bytes(),
		EndTick:     types.Uint64(p.EndTick),
		Options:     make([]models.ProposalOption, 0, len(p.Options)),
	}
	for _, opt := range p.Options {
		ret.Options = append(
			ret.Options,
			models.ProposalOption{
				ProposalId:  p.Id,
				OptionId:    opt.Id,
				Votes:       types.NewUint128(opt.Votes),
				ContentHash: opt.ContentHash.Bytes(),
			},
		)
	}
	return ret
}

// clone returns a deep copy so staged tallies never alias stored state
func (p *Proposal) clone() *Proposal {
	ret := *p
	ret.Options = make([]Option, len(p.Options))
	copy(ret.Options, p.Options)
	return &ret
}

func (f *FinishedProposal) toModel() *models.FinishedProposal {
	ret := &models.FinishedProposal{
		Id:          f.Id,
		ContentHash: f.ContentHash.Bytes(),
		EndTick:     f.EndTick,
		Options:     make([]models.FinishedProposalOption, 0, len(f.Options)),
		WinnerIndex: f.WinnerIndex,
		WinnerVotes: f.WinnerVotes.String(),
	}
	for _, opt := range f.Options {
		ret.Options = append(
			ret.Options,
			models.FinishedProposalOption{
				Id:          opt.Id,
				Votes:       opt.Votes.String(),
				ContentHash: opt.ContentHash.Bytes(),
			},
		)
	}
	return ret
}

func finishedProposalFromModel(
	m *models.FinishedProposal,
) (*FinishedProposal, error) {
	winnerVotes, err := uint128.FromString(m.WinnerVotes)
	if err != nil {
		return nil, fmt.Errorf(
			"invalid winner votes for proposal %d: %w",
			m.Id,
			err,
		)
	}
	ret := &FinishedProposal{
		Proposal: Proposal{
			Id:          m.Id,
			ContentHash: lcommon.NewBlake2b256(m.ContentHash),
			EndTick:     m.EndTick,
			Status:      ProposalStatusFinished,
			Options:     make([]Option, 0, len(m.Options)),
		},
		WinnerIndex: m.WinnerIndex,
		WinnerVotes: winnerVotes,
	}
	for _, opt := range m.Options {
		votes, err := uint128.FromString(opt.Votes)
		if err != nil {
			return nil, fmt.Errorf(
				"invalid votes for option %d of proposal %d: %w",
				opt.Id,
				m.Id,
				err,
			)
		}
		ret.Options = append(
			ret.Options,
			Option{
				Id:          opt.Id,
				Votes:       votes,
				ContentHash: lcommon.NewBlake2b256(opt.ContentHash),
			},
		)
	}
	return ret, nil
}
