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
	"errors"
	"fmt"
	"math"

	"github.com/blinklabs-io/ballot/database"
	"go.opentelemetry.io/otel/attribute"
	"lukechampine.com/uint128"
)

// CreateProposal opens a new proposal with one option per content hash, in
// the given order. Only one proposal can be active at a time
func (g *Governance) CreateProposal(
	ctx context.Context,
	contentHash ContentHash,
	optionHashes []ContentHash,
) (proposalId uint32, err error) {
	_, span := g.startSpan(
		ctx,
		"CreateProposal",
		attribute.String("content_hash", contentHash.String()),
		attribute.Int("options", len(optionHashes)),
	)
	defer func() { endSpan(span, err) }()
	if len(optionHashes) > int(g.config.MaxOptions) {
		return 0, ErrTooManyOptions
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	now, err := g.now()
	if err != nil {
		return 0, err
	}
	var proposal *Proposal
	err = g.db.Transaction(true).Do(func(txn *database.Txn) error {
		active, err := g.db.GetActiveProposal(txn)
		if err != nil {
			return fmt.Errorf("failed to lookup active proposal: %w", err)
		}
		if active != nil {
			return ErrProposalAlreadyActive
		}
		counter, err := g.db.GetProposalCounter(txn)
		if err != nil {
			return fmt.Errorf("failed to load proposal counter: %w", err)
		}
		if counter == math.MaxUint32 {
			return ErrProposalCounterExhausted
		}
		if now > math.MaxUint64-g.config.MaxProposalDuration {
			return ErrArithmeticOverflow
		}
		proposal = &Proposal{
			Id:          counter,
			ContentHash: contentHash,
			EndTick:     now + g.config.MaxProposalDuration,
			Status:      ProposalStatusInProgress,
			Options:     make([]Option, 0, len(optionHashes)),
		}
		for idx, optionHash := range optionHashes {
			proposal.Options = append(
				proposal.Options,
				Option{
					// Bounded by MaxOptions, which is a uint8
					Id:          uint8(idx), // #nosec G115
					Votes:       uint128.Zero,
					ContentHash: optionHash,
				},
			)
		}
		if err := g.db.SetActiveProposal(proposal.toModel(), txn); err != nil {
			return fmt.Errorf("failed to store proposal: %w", err)
		}
		if err := g.db.SetProposalCounter(counter+1, txn); err != nil {
			return fmt.Errorf("failed to store proposal counter: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	g.metrics.proposalsCreated.Inc()
	g.metrics.activeProposal.Set(1)
	g.logger.Info(
		"created proposal",
		"component", "governance",
		"proposal_id", proposal.Id,
		"end_tick", proposal.EndTick,
		"options", len(proposal.Options),
	)
	g.publish(
		ProposalCreatedEventType,
		ProposalCreatedEvent{ProposalId: proposal.Id},
	)
	return proposal.Id, nil
}

// CloseProposal finishes the active proposal once its voting window has
// ended, archiving it along with the winning option
func (g *Governance) CloseProposal(
	ctx context.Context,
) (finished *FinishedProposal, err error) {
	_, span := g.startSpan(ctx, "CloseProposal")
	defer func() { endSpan(span, err) }()
	g.mu.Lock()
	defer g.mu.Unlock()
	now, err := g.now()
	if err != nil {
		return nil, err
	}
	err = g.db.Transaction(true).Do(func(txn *database.Txn) error {
		active, err := g.db.GetActiveProposal(txn)
		if err != nil {
			return fmt.Errorf("failed to lookup active proposal: %w", err)
		}
		if active == nil {
			return ErrNoActiveProposal
		}
		proposal := proposalFromModel(active)
		if proposal.EndTick > now {
			return ErrProposalNotFinished
		}
		finished = finishProposal(proposal)
		if err := g.db.AddFinishedProposal(finished.toModel(), txn); err != nil {
			return fmt.Errorf("failed to archive proposal: %w", err)
		}
		if err := g.db.DeleteActiveProposal(txn); err != nil {
			return fmt.Errorf("failed to clear active proposal: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	g.metrics.proposalsFinished.Inc()
	g.metrics.activeProposal.Set(0)
	g.logger.Info(
		"finished proposal",
		"component", "governance",
		"proposal_id", finished.Id,
		"winner_index", finished.WinnerIndex,
		"winner_votes", finished.WinnerVotes.String(),
	)
	g.publish(
		ProposalFinishedEventType,
		ProposalFinishedEvent{
			ProposalId:  finished.Id,
			WinnerIndex: finished.WinnerIndex,
			WinnerVotes: finished.WinnerVotes,
		},
	)
	return finished, nil
}

// ActiveProposal returns the active proposal, or nil if there is none
func (g *Governance) ActiveProposal() (*Proposal, error) {
	active, err := g.db.GetActiveProposal(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup active proposal: %w", err)
	}
	if active == nil {
		return nil, nil
	}
	return proposalFromModel(active), nil
}

// FinishedProposal returns an archived proposal by id
func (g *Governance) FinishedProposal(id uint32) (*FinishedProposal, error) {
	tmpProposal, err := g.db.GetFinishedProposal(id, nil)
	if err != nil {
		if errors.Is(err, database.ErrFinishedProposalNotFound) {
			return nil, ErrProposalNotFound
		}
		return nil, fmt.Errorf("failed to lookup finished proposal: %w", err)
	}
	return finishedProposalFromModel(tmpProposal)
}

// FinishedProposals returns the whole archive in id order
func (g *Governance) FinishedProposals() ([]*FinishedProposal, error) {
	tmpProposals, err := g.db.GetFinishedProposals(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load finished proposals: %w", err)
	}
	ret := make([]*FinishedProposal, 0, len(tmpProposals))
	for _, tmpProposal := range tmpProposals {
		finished, err := finishedProposalFromModel(tmpProposal)
		if err != nil {
			return nil, err
		}
		ret = append(ret, finished)
	}
	return ret, nil
}

// ProposalCount returns how many proposals have been created
func (g *Governance) ProposalCount() (uint32, error) {
	counter, err := g.db.GetProposalCounter(nil)
	if err != nil {
		return 0, fmt.Errorf("failed to load proposal counter: %w", err)
	}
	return counter - 1, nil
}
