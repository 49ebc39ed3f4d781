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
	"math/big"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"lukechampine.com/uint128"
)

type governanceMetrics struct {
	voters            prometheus.Gauge
	activeProposal    prometheus.Gauge
	proposalsCreated  prometheus.Counter
	proposalsFinished prometheus.Counter
	votesSubmitted    prometheus.Counter
	votesRejected     *prometheus.CounterVec
	reserved          prometheus.Gauge
}

// amountFloat converts an amount for use as a metric value
func amountFloat(amount uint128.Uint128) float64 {
	ret, _ := new(big.Float).SetInt(amount.Big()).Float64()
	return ret
}

func (g *Governance) initMetrics() {
	promautoFactory := promauto.With(g.config.PromRegistry)
	g.metrics.voters = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "ballot_governance_voters",
		Help: "current count of registered voters",
	})
	g.metrics.activeProposal = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "ballot_governance_active_proposal",
		Help: "1 while a proposal is active, 0 otherwise",
	})
	g.metrics.proposalsCreated = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "ballot_governance_proposals_created_total",
			Help: "total proposals created",
		},
	)
	g.metrics.proposalsFinished = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "ballot_governance_proposals_finished_total",
			Help: "total proposals closed and archived",
		},
	)
	g.metrics.votesSubmitted = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "ballot_governance_votes_submitted_total",
			Help: "total votes accepted",
		},
	)
	g.metrics.votesRejected = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ballot_governance_votes_rejected_total",
			Help: "total votes rejected, by reason",
		},
		[]string{"reason"},
	)
	g.metrics.reserved = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "ballot_governance_collateral_reserved",
		Help: "collateral currently reserved by registered voters",
	})
}

func voteRejectReason(err error) string {
	switch err {
	case ErrNotAVoter:
		return "not_a_voter"
	case ErrNotEnoughVotes:
		return "not_enough_votes"
	case ErrNoActiveProposal:
		return "no_active_proposal"
	case ErrProposalFinished:
		return "proposal_finished"
	case ErrAlreadyVoted:
		return "already_voted"
	case ErrInvalidOptionId:
		return "invalid_option_id"
	case ErrTooManyAllocations:
		return "too_many_allocations"
	case ErrArithmeticOverflow:
		return "overflow"
	case ErrInvalidAccount:
		return "invalid_account"
	default:
		return "error"
	}
}
