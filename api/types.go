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

// RootResponse is returned by GET /
type RootResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	IsHealthy bool `json:"is_healthy"`
}

// ClockResponse is returned by the clock endpoints
type ClockResponse struct {
	Tick uint64 `json:"tick"`
}

// ClockAdvanceRequest is the body of POST /api/v0/clock/advance
type ClockAdvanceRequest struct {
	Ticks uint64 `json:"ticks"`
}

// VoterResponse represents a voter. Amounts are decimal strings, since they
// may exceed 64 bits
type VoterResponse struct {
	Account         string  `json:"account"`
	VotingPower     string  `json:"voting_power"`
	ReservedBalance string  `json:"reserved_balance"`
	FreeBalance     string  `json:"free_balance"`
	VotedProposal   *uint32 `json:"voted_proposal"`
}

// TopUpRequest is the body of POST /api/v0/voters/{account}/power
type TopUpRequest struct {
	Amount string `json:"amount"`
}

// TopUpResponse reports the voting power after a top up
type TopUpResponse struct {
	Account     string `json:"account"`
	VotingPower string `json:"voting_power"`
}

// AllocationRequest assigns votes to a single option
type AllocationRequest struct {
	OptionId uint8  `json:"option_id"`
	Votes    string `json:"votes"`
}

// VoteRequest is the body of POST /api/v0/voters/{account}/votes
type VoteRequest struct {
	Allocations []AllocationRequest `json:"allocations"`
}

// CreateProposalRequest is the body of POST /api/v0/proposals. Hashes are
// hex encoded
type CreateProposalRequest struct {
	ContentHash string   `json:"content_hash"`
	Options     []string `json:"options"`
}

// CreateProposalResponse reports the id of a new proposal
type CreateProposalResponse struct {
	Id uint32 `json:"id"`
}

// OptionResponse represents a proposal option
type OptionResponse struct {
	Id          uint8  `json:"id"`
	Votes       string `json:"votes"`
	ContentHash string `json:"content_hash"`
}

// ProposalResponse represents an active or finished proposal. Winner fields
// are only set on finished proposals
type ProposalResponse struct {
	Id          uint32           `json:"id"`
	ContentHash string           `json:"content_hash"`
	EndTick     uint64           `json:"end_tick"`
	Status      string           `json:"status"`
	Options     []OptionResponse `json:"options"`
	WinnerIndex *uint8           `json:"winner_index,omitempty"`
	WinnerVotes *string          `json:"winner_votes,omitempty"`
}

// ErrorResponse is the error body returned by every endpoint
type ErrorResponse struct {
	StatusCode int    `json:"status_code"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}
