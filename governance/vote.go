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
	"context"
	"fmt"

	"github.com/blinklabs-io/ballot/database"
	"go.opentelemetry.io/otel/attribute"
)

// CastVote spends a voter's power on the active proposal. A voter can vote
// once per proposal.
//
// Unless StrictVoteCommit is set, the voter is marked as having voted even
// when the allocation is then rejected with ErrInvalidOptionId,
// ErrArithmeticOverflow or ErrNotEnoughVotes, and the votes submitted event
// is published even when the spend cap rejects the vote. Events go out after
// the transaction commits. With StrictVoteCommit a rejected vote leaves no
// trace
func (g *Governance) CastVote(
	ctx context.Context,
	account string,
	allocations []Allocation,
) (err error) {
	_, span := g.startSpan(
		ctx,
		"CastVote",
		attribute.String("account", account),
		attribute.Int("allocations", len(allocations)),
	)
	defer func() {
		if err != nil {
			g.metrics.votesRejected.WithLabelValues(voteRejectReason(err)).Inc()
		}
		endSpan(span, err)
	}()
	if err := validateAccount(account); err != nil {
		return err
	}
	if len(allocations) > int(g.config.MaxOptions) {
		return ErrTooManyAllocations
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	now, err := g.now()
	if err != nil {
		return err
	}
	var (
		voteErr    error
		proposalId uint32
		published  bool
	)
	err = g.db.Transaction(true).Do(func(txn *database.Txn) error {
		voter, err := g.db.GetVoter(account, txn)
		if err != nil {
			return fmt.Errorf("failed to lookup voter: %w", err)
		}
		if voter == nil {
			return ErrNotAVoter
		}
		power := voter.VotingPower.Uint128
		if power.IsZero() {
			return ErrNotEnoughVotes
		}
		active, err := g.db.GetActiveProposal(txn)
		if err != nil {
			return fmt.Errorf("failed to lookup active proposal: %w", err)
		}
		if active == nil {
			return ErrNoActiveProposal
		}
		proposal := proposalFromModel(active)
		if proposal.EndTick < now {
			return ErrProposalFinished
		}
		votedId, voted, err := g.db.GetVotedProposal(account, txn)
		if err != nil {
			return fmt.Errorf("failed to lookup vote marker: %w", err)
		}
		if voted && votedId == proposal.Id {
			return ErrAlreadyVoted
		}
		proposalId = proposal.Id
		markVoted := func() error {
			if err := g.db.SetVotedProposal(account, proposal.Id, txn); err != nil {
				return fmt.Errorf("failed to store vote marker: %w", err)
			}
			return nil
		}
		staged := proposal.clone()
		used, err := applyAllocations(
			staged.Options,
			allocations,
			g.config.MaxOptions,
		)
		if err != nil {
			if g.config.StrictVoteCommit {
				return err
			}
			// Keep the marker and drop the staged tally
			voteErr = err
			return markVoted()
		}
		if used.Cmp(power) > 0 {
			if g.config.StrictVoteCommit {
				return ErrNotEnoughVotes
			}
			voteErr = ErrNotEnoughVotes
			published = true
			return markVoted()
		}
		published = true
		if err := markVoted(); err != nil {
			return err
		}
		if err := g.db.SetActiveProposal(staged.toModel(), txn); err != nil {
			return fmt.Errorf("failed to store tally: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if published {
		g.publish(
			VotesSubmittedEventType,
			VotesSubmittedEvent{
				Account:     account,
				ProposalId:  proposalId,
				Allocations: append([]Allocation(nil), allocations...),
			},
		)
	}
	if voteErr != nil {
		g.logger.Debug(
			"rejected vote",
			"component", "governance",
			"account", account,
			"proposal_id", proposalId,
			"error", voteErr,
		)
		return voteErr
	}
	g.metrics.votesSubmitted.Inc()
	g.logger.Info(
		"accepted vote",
		"component", "governance",
		"account", account,
		"proposal_id", proposalId,
	)
	return nil
}

// VotedProposal returns the last proposal an account voted on. The boolean
// is false if the account has never voted
func (g *Governance) VotedProposal(account string) (uint32, bool, error) {
	proposalId, voted, err := g.db.GetVotedProposal(account, nil)
	if err != nil {
		return 0, false, fmt.Errorf("failed to lookup vote marker: %w", err)
	}
	return proposalId, voted, nil
}
