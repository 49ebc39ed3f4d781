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
	"errors"

	"github.com/blinklabs-io/ballot/governance"
)

// ErrClockNotAdvanceable is returned when the configured clock is not
// manually driven
var ErrClockNotAdvanceable = errors.New("clock cannot be advanced manually")

type advancer interface {
	Advance(ticks uint64) (uint64, error)
}

// NodeAdapter wraps a Governance instance, its clock and its collateral
// gateway to implement the Node interface
type NodeAdapter struct {
	*governance.Governance
	clock      governance.Clock
	collateral governance.CollateralGateway
}

// NewNodeAdapter creates a NodeAdapter. Panics if gov is nil
func NewNodeAdapter(gov *governance.Governance) *NodeAdapter {
	if gov == nil {
		panic("NewNodeAdapter: Governance must not be nil")
	}
	cfg := gov.Config()
	return &NodeAdapter{
		Governance: gov,
		clock:      cfg.Clock,
		collateral: cfg.Collateral,
	}
}

func (a *NodeAdapter) Voter(account string) (VoterInfo, error) {
	power, err := a.VotingPower(account)
	if err != nil {
		return VoterInfo{}, err
	}
	ret := VoterInfo{
		Account:     account,
		VotingPower: power,
	}
	if ret.ReservedBalance, err = a.collateral.ReservedBalance(account); err != nil {
		return VoterInfo{}, err
	}
	if ret.FreeBalance, err = a.collateral.FreeBalance(account); err != nil {
		return VoterInfo{}, err
	}
	if ret.VotedProposal, ret.HasVoted, err = a.VotedProposal(account); err != nil {
		return VoterInfo{}, err
	}
	return ret, nil
}

func (a *NodeAdapter) ClockTick() (uint64, error) {
	return a.clock.Tick()
}

func (a *NodeAdapter) AdvanceClock(ticks uint64) (uint64, error) {
	tmpClock, ok := a.clock.(advancer)
	if !ok {
		return 0, ErrClockNotAdvanceable
	}
	return tmpClock.Advance(ticks)
}
