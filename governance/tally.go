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
	"lukechampine.com/uint128"
)

// selectWinner scans options left to right and keeps the first option with
// strictly more votes than the current best, starting from index 0 with no
// votes. Ties go to the earliest option, and an all-zero tally picks 0
func selectWinner(options []Option) (uint8, uint128.Uint128) {
	var winnerIndex uint8
	winnerVotes := uint128.Zero
	for _, opt := range options {
		if opt.Votes.Cmp(winnerVotes) > 0 {
			winnerIndex = opt.Id
			winnerVotes = opt.Votes
		}
	}
	return winnerIndex, winnerVotes
}

func finishProposal(p *Proposal) *FinishedProposal {
	snapshot := p.clone()
	snapshot.Status = ProposalStatusFinished
	winnerIndex, winnerVotes := selectWinner(snapshot.Options)
	return &FinishedProposal{
		Proposal:    *snapshot,
		WinnerIndex: winnerIndex,
		WinnerVotes: winnerVotes,
	}
}

// applyAllocations adds each allocation to every option with a matching id
// and returns the total votes used. Votes count as used once per matching
// option, so an allocation matching no option costs nothing. It stops at
// the first allocation naming an option id at or beyond maxOptions
func applyAllocations(
	options []Option,
	allocations []Allocation,
	maxOptions uint8,
) (uint128.Uint128, error) {
	used := uint128.Zero
	for _, alloc := range allocations {
		if alloc.OptionId >= maxOptions {
			return uint128.Zero, ErrInvalidOptionId
		}
		for i := range options {
			if options[i].Id != alloc.OptionId {
				continue
			}
			votes, err := checkedAdd(options[i].Votes, alloc.Votes)
			if err != nil {
				return uint128.Zero, err
			}
			options[i].Votes = votes
			used, err = checkedAdd(used, alloc.Votes)
			if err != nil {
				return uint128.Zero, err
			}
		}
	}
	return used, nil
}
