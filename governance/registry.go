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

	"github.com/blinklabs-io/ballot/database/models"
	"github.com/blinklabs-io/ballot/database/types"
	"go.opentelemetry.io/otel/attribute"
	"lukechampine.com/uint128"
)

// Register makes an account a voter with zero voting power, reserving the
// register fee from its collateral
func (g *Governance) Register(ctx context.Context, account string) (err error) {
	_, span := g.startSpan(ctx, "Register", attribute.String("account", account))
	defer func() { endSpan(span, err) }()
	if err := validateAccount(account); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	voter, err := g.db.GetVoter(account, nil)
	if err != nil {
		return fmt.Errorf("failed to lookup voter: %w", err)
	}
	if voter != nil {
		return ErrAlreadyVoter
	}
	fee := g.config.RegisterFee
	if err := g.collateral.Reserve(account, fee); err != nil {
		return err
	}
	if err := g.db.SetVoter(
		&models.Voter{
			Account:     account,
			VotingPower: types.NewUint128(uint128.Zero),
		},
		nil,
	); err != nil {
		g.compensateReserve(account, fee)
		return fmt.Errorf("failed to store voter: %w", err)
	}
	g.metrics.voters.Inc()
	g.metrics.reserved.Add(amountFloat(fee))
	g.logger.Info(
		"registered voter",
		"component", "governance",
		"account", account,
		"fee", fee.String(),
	)
	g.publish(VoterRegisteredEventType, VoterRegisteredEvent{Account: account})
	return nil
}

// TopUpPower reserves additional collateral and recomputes the voter's power
// from everything it has reserved beyond the register fee
func (g *Governance) TopUpPower(
	ctx context.Context,
	account string,
	amount uint128.Uint128,
) (power uint128.Uint128, err error) {
	_, span := g.startSpan(
		ctx,
		"TopUpPower",
		attribute.String("account", account),
		attribute.String("amount", amount.String()),
	)
	defer func() { endSpan(span, err) }()
	if err := validateAccount(account); err != nil {
		return uint128.Zero, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	voter, err := g.db.GetVoter(account, nil)
	if err != nil {
		return uint128.Zero, fmt.Errorf("failed to lookup voter: %w", err)
	}
	if voter == nil {
		return uint128.Zero, ErrNotAVoter
	}
	if amount.Cmp(g.config.RegisterFee) <= 0 {
		return uint128.Zero, ErrInvalidTokenAmount
	}
	if err := g.collateral.Reserve(account, amount); err != nil {
		return uint128.Zero, err
	}
	reserved, err := g.collateral.ReservedBalance(account)
	if err != nil {
		g.compensateReserve(account, amount)
		return uint128.Zero, err
	}
	power = VotingPowerFor(reserved, g.config.RegisterFee)
	voter.VotingPower = types.NewUint128(power)
	if err := g.db.SetVoter(voter, nil); err != nil {
		g.compensateReserve(account, amount)
		return uint128.Zero, fmt.Errorf("failed to store voter: %w", err)
	}
	g.metrics.reserved.Add(amountFloat(amount))
	g.logger.Info(
		"updated voting power",
		"component", "governance",
		"account", account,
		"reserved", reserved.String(),
		"power", power.String(),
	)
	g.publish(
		PowerUpdatedEventType,
		PowerUpdatedEvent{Account: account, VotingPower: power},
	)
	return power, nil
}

// Withdraw removes a voter and releases all of its reserved collateral. It
// is refused while a proposal is active
func (g *Governance) Withdraw(ctx context.Context, account string) (err error) {
	_, span := g.startSpan(ctx, "Withdraw", attribute.String("account", account))
	defer func() { endSpan(span, err) }()
	if err := validateAccount(account); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	voter, err := g.db.GetVoter(account, nil)
	if err != nil {
		return fmt.Errorf("failed to lookup voter: %w", err)
	}
	if voter == nil {
		return ErrNotAVoter
	}
	active, err := g.db.GetActiveProposal(nil)
	if err != nil {
		return fmt.Errorf("failed to lookup active proposal: %w", err)
	}
	if active != nil {
		return ErrProposalAlreadyActive
	}
	reserved, err := g.collateral.ReservedBalance(account)
	if err != nil {
		return err
	}
	if err := g.collateral.Unreserve(account, reserved); err != nil {
		return err
	}
	if err := g.db.DeleteVoter(account, nil); err != nil {
		if err2 := g.collateral.Reserve(account, reserved); err2 != nil {
			g.logger.Error(
				"failed to restore collateral after database error",
				"component", "governance",
				"account", account,
				"amount", reserved.String(),
				"error", err2,
			)
		}
		return fmt.Errorf("failed to delete voter: %w", err)
	}
	g.metrics.voters.Dec()
	g.metrics.reserved.Sub(amountFloat(reserved))
	g.logger.Info(
		"voter withdrew",
		"component", "governance",
		"account", account,
		"released", reserved.String(),
	)
	g.publish(
		CollateralWithdrawnEventType,
		CollateralWithdrawnEvent{Account: account},
	)
	return nil
}

// VotingPower returns the current voting power of a voter
func (g *Governance) VotingPower(account string) (uint128.Uint128, error) {
	voter, err := g.db.GetVoter(account, nil)
	if err != nil {
		return uint128.Zero, fmt.Errorf("failed to lookup voter: %w", err)
	}
	if voter == nil {
		return uint128.Zero, ErrNotAVoter
	}
	return voter.VotingPower.Uint128, nil
}

// Voters returns all registered voters
func (g *Governance) Voters() ([]Voter, error) {
	tmpVoters, err := g.db.GetVoters(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load voters: %w", err)
	}
	ret := make([]Voter, 0, len(tmpVoters))
	for i := range tmpVoters {
		ret = append(ret, voterFromModel(&tmpVoters[i]))
	}
	return ret, nil
}
