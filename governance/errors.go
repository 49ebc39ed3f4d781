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

import "errors"

var (
	ErrAlreadyVoter          = errors.New("account is already a voter")
	ErrNotAVoter             = errors.New("account is not a voter")
	ErrInvalidTokenAmount    = errors.New("token amount must exceed the register fee")
	ErrProposalAlreadyActive = errors.New("a proposal is already active")
	ErrNoActiveProposal      = errors.New("no active proposal")
	ErrNotEnoughVotes        = errors.New("not enough votes")
	ErrAlreadyVoted          = errors.New("account already voted on this proposal")
	ErrProposalNotFinished   = errors.New("proposal voting window has not ended")
	ErrInvalidOptionId       = errors.New("invalid option id")
	ErrProposalFinished      = errors.New("proposal voting window has ended")

	ErrTooManyOptions           = errors.New("too many proposal options")
	ErrTooManyAllocations       = errors.New("too many vote allocations")
	ErrProposalNotFound         = errors.New("proposal not found")
	ErrArithmeticOverflow       = errors.New("arithmetic overflow")
	ErrProposalCounterExhausted = errors.New("proposal counter exhausted")
	ErrInvalidAccount           = errors.New("invalid account")
)
