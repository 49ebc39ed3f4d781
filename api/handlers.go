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
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/blinklabs-io/ballot/collateral"
	"github.com/blinklabs-io/ballot/governance"
	"github.com/blinklabs-io/ballot/internal/version"
	"lukechampine.com/uint128"
)

const maxRequestBodySize = 64 * 1024

// writeJSON writes a JSON response with the given status code
func writeJSON(
	w http.ResponseWriter,
	status int,
	v any,
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson
	json.NewEncoder(w).Encode(v)
}

// writeError writes an error response
func writeError(
	w http.ResponseWriter,
	status int,
	message string,
) {
	writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Error:      http.StatusText(status),
		Message:    message,
	})
}

// errorStatus maps governance and collateral errors to HTTP status codes
func errorStatus(err error) int {
	switch {
	case errors.Is(err, governance.ErrNotAVoter),
		errors.Is(err, governance.ErrNoActiveProposal),
		errors.Is(err, governance.ErrProposalNotFound):
		return http.StatusNotFound
	case errors.Is(err, governance.ErrAlreadyVoter),
		errors.Is(err, governance.ErrAlreadyVoted),
		errors.Is(err, governance.ErrProposalAlreadyActive),
		errors.Is(err, governance.ErrProposalFinished),
		errors.Is(err, governance.ErrProposalNotFinished),
		errors.Is(err, governance.ErrProposalCounterExhausted),
		errors.Is(err, ErrClockNotAdvanceable):
		return http.StatusConflict
	case errors.Is(err, governance.ErrInvalidTokenAmount),
		errors.Is(err, governance.ErrNotEnoughVotes),
		errors.Is(err, governance.ErrInvalidOptionId),
		errors.Is(err, governance.ErrTooManyOptions),
		errors.Is(err, governance.ErrTooManyAllocations),
		errors.Is(err, governance.ErrArithmeticOverflow),
		errors.Is(err, governance.ErrInvalidAccount),
		errors.Is(err, collateral.ErrInsufficientBalance),
		errors.Is(err, collateral.ErrBalanceOverflow):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeOpError writes the response for a failed node operation
func (s *Server) writeOpError(w http.ResponseWriter, op string, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(
			"failed to "+op,
			"error", err,
		)
		writeError(w, status, "failed to "+op)
		return
	}
	writeError(w, status, err.Error())
}

func decodeBody(w http.ResponseWriter, r *http.Request, dest any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.config.AdminToken == "" {
			writeError(w, http.StatusForbidden, "admin API is disabled")
			return
		}
		token, ok := strings.CutPrefix(
			r.Header.Get("Authorization"),
			"Bearer ",
		)
		if !ok ||
			subtle.ConstantTimeCompare(
				[]byte(token),
				[]byte(s.config.AdminToken),
			) != 1 {
			writeError(w, http.StatusUnauthorized, "invalid admin token")
			return
		}
		next(w, r)
	}
}

func (s *Server) handleRoot(
	w http.ResponseWriter,
	r *http.Request,
) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "the requested component has not been found")
		return
	}
	writeJSON(w, http.StatusOK, RootResponse{
		Name:    "ballot",
		Version: version.GetVersionString(),
	})
}

func (s *Server) handleHealth(
	w http.ResponseWriter,
	_ *http.Request,
) {
	writeJSON(w, http.StatusOK, HealthResponse{
		IsHealthy: true,
	})
}

func (s *Server) handleClock(
	w http.ResponseWriter,
	_ *http.Request,
) {
	tick, err := s.node.ClockTick()
	if err != nil {
		s.writeOpError(w, "read clock", err)
		return
	}
	writeJSON(w, http.StatusOK, ClockResponse{Tick: tick})
}

func (s *Server) handleClockAdvance(
	w http.ResponseWriter,
	r *http.Request,
) {
	var req ClockAdvanceRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tick, err := s.node.AdvanceClock(req.Ticks)
	if err != nil {
		s.writeOpError(w, "advance clock", err)
		return
	}
	writeJSON(w, http.StatusOK, ClockResponse{Tick: tick})
}

func (s *Server) writeVoter(w http.ResponseWriter, status int, account string) {
	info, err := s.node.Voter(account)
	if err != nil {
		s.writeOpError(w, "lookup voter", err)
		return
	}
	resp := VoterResponse{
		Account:         info.Account,
		VotingPower:     info.VotingPower.String(),
		ReservedBalance: info.ReservedBalance.String(),
		FreeBalance:     info.FreeBalance.String(),
	}
	if info.HasVoted {
		votedProposal := info.VotedProposal
		resp.VotedProposal = &votedProposal
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleGetVoter(
	w http.ResponseWriter,
	r *http.Request,
) {
	s.writeVoter(w, http.StatusOK, r.PathValue("account"))
}

func (s *Server) handleRegister(
	w http.ResponseWriter,
	r *http.Request,
) {
	account := r.PathValue("account")
	if err := s.node.Register(r.Context(), account); err != nil {
		s.writeOpError(w, "register voter", err)
		return
	}
	s.writeVoter(w, http.StatusCreated, account)
}

func (s *Server) handleWithdraw(
	w http.ResponseWriter,
	r *http.Request,
) {
	if err := s.node.Withdraw(r.Context(), r.PathValue("account")); err != nil {
		s.writeOpError(w, "withdraw voter", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTopUpPower(
	w http.ResponseWriter,
	r *http.Request,
) {
	var req TopUpRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	amount, err := uint128.FromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount: "+err.Error())
		return
	}
	account := r.PathValue("account")
	power, err := s.node.TopUpPower(r.Context(), account, amount)
	if err != nil {
		s.writeOpError(w, "top up voting power", err)
		return
	}
	writeJSON(w, http.StatusOK, TopUpResponse{
		Account:     account,
		VotingPower: power.String(),
	})
}

func (s *Server) handleCastVote(
	w http.ResponseWriter,
	r *http.Request,
) {
	var req VoteRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	allocations := make([]governance.Allocation, 0, len(req.Allocations))
	for _, alloc := range req.Allocations {
		votes, err := uint128.FromString(alloc.Votes)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid votes: "+err.Error())
			return
		}
		allocations = append(
			allocations,
			governance.Allocation{OptionId: alloc.OptionId, Votes: votes},
		)
	}
	if err := s.node.CastVote(r.Context(), r.PathValue("account"), allocations); err != nil {
		s.writeOpError(w, "cast vote", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateProposal(
	w http.ResponseWriter,
	r *http.Request,
) {
	var req CreateProposalRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	contentHash, err := governance.ParseContentHash(req.ContentHash)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	optionHashes := make([]governance.ContentHash, 0, len(req.Options))
	for _, option := range req.Options {
		optionHash, err := governance.ParseContentHash(option)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		optionHashes = append(optionHashes, optionHash)
	}
	id, err := s.node.CreateProposal(r.Context(), contentHash, optionHashes)
	if err != nil {
		s.writeOpError(w, "create proposal", err)
		return
	}
	writeJSON(w, http.StatusCreated, CreateProposalResponse{Id: id})
}

func proposalResponse(p *governance.Proposal) ProposalResponse {
	ret := ProposalResponse{
		Id:          p.Id,
		ContentHash: p.ContentHash.String(),
		EndTick:     p.EndTick,
		Status:      p.Status.String(),
		Options:     make([]OptionResponse, 0, len(p.Options)),
	}
	for _, opt := range p.Options {
		ret.Options = append(ret.Options, OptionResponse{
			Id:          opt.Id,
			Votes:       opt.Votes.String(),
			ContentHash: opt.ContentHash.String(),
		})
	}
	return ret
}

func finishedProposalResponse(f *governance.FinishedProposal) ProposalResponse {
	ret := proposalResponse(&f.Proposal)
	winnerIndex := f.WinnerIndex
	winnerVotes := f.WinnerVotes.String()
	ret.WinnerIndex = &winnerIndex
	ret.WinnerVotes = &winnerVotes
	return ret
}

func (s *Server) handleActiveProposal(
	w http.ResponseWriter,
	_ *http.Request,
) {
	active, err := s.node.ActiveProposal()
	if err != nil {
		s.writeOpError(w, "lookup active proposal", err)
		return
	}
	if active == nil {
		writeError(w, http.StatusNotFound, governance.ErrNoActiveProposal.Error())
		return
	}
	writeJSON(w, http.StatusOK, proposalResponse(active))
}

func (s *Server) handleCloseProposal(
	w http.ResponseWriter,
	r *http.Request,
) {
	finished, err := s.node.CloseProposal(r.Context())
	if err != nil {
		s.writeOpError(w, "close proposal", err)
		return
	}
	writeJSON(w, http.StatusOK, finishedProposalResponse(finished))
}

func (s *Server) handleFinishedProposal(
	w http.ResponseWriter,
	r *http.Request,
) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid proposal id")
		return
	}
	finished, err := s.node.FinishedProposal(uint32(id))
	if err != nil {
		s.writeOpError(w, "lookup proposal", err)
		return
	}
	writeJSON(w, http.StatusOK, finishedProposalResponse(finished))
}

func (s *Server) handleFinishedProposals(
	w http.ResponseWriter,
	r *http.Request,
) {
	params, err := ParsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	archive, err := s.node.FinishedProposals()
	if err != nil {
		s.writeOpError(w, "list proposals", err)
		return
	}
	if params.Order == PaginationOrderDesc {
		archive = slices.Clone(archive)
		slices.Reverse(archive)
	}
	SetPaginationHeaders(w, len(archive), params)
	start, end := params.Window(len(archive))
	ret := make([]ProposalResponse, 0, end-start)
	for _, finished := range archive[start:end] {
		ret = append(ret, finishedProposalResponse(finished))
	}
	writeJSON(w, http.StatusOK, ret)
}
