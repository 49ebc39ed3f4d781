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
	"github.com/blinklabs-io/ballot/event"
	"lukechampine.com/uint128"
)

const (
	VoterRegisteredEventType     event.EventType = "governance.voter_registered"
	PowerUpdatedEventType        event.EventType = "governance.power_updated"
	ProposalCreatedEventType     event.EventType = "governance.proposal_created"
	VotesSubmittedEventType      event.EventType = "governance.votes_submitted"
	ProposalFinishedEventType    event.EventType = "governance.proposal_finished"
	CollateralWithdrawnEventType event.EventType = "governance.collateral_withdrawn"
)

// EventTypes lists every event type published by the governance module
var EventTypes = []event.EventType{
	VoterRegisteredEventType,
	PowerUpdatedEventType,
	ProposalCreatedEventType,
	VotesSubmittedEventType,
	ProposalFinishedEventType,
	CollateralWithdrawnEventType,
}

type VoterRegisteredEvent struct {
	Account string
}

type PowerUpdatedEvent struct {
	Account     string
	VotingPower uint128.Uint128
}

type ProposalCreatedEvent struct {
	ProposalId uint32
}

// VotesSubmittedEvent describes the allocation a voter attempted
type VotesSubmittedEvent struct {
	Account     string
	ProposalId  uint32
	Allocations []Allocation
}

type ProposalFinishedEvent struct {
	ProposalId  uint32
	WinnerIndex uint8
	WinnerVotes uint128.Uint128
}

type CollateralWithdrawnEvent struct {
	Account string
}

func (g *Governance) publish(eventType event.EventType, data any) {
	if g.eventBus == nil {
		return
	}
	g.eventBus.Publish(eventType, event.NewEvent(eventType, data))
}
