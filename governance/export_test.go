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

import "github.com/prometheus/client_golang/prometheus"

// MetricCollector returns the collector behind a governance metric so
// external tests can read it with prometheus testutil
func (g *Governance) MetricCollector(
	name string,
	labels ...string,
) prometheus.Collector {
	switch name {
	case "ballot_governance_voters":
		return g.metrics.voters
	case "ballot_governance_active_proposal":
		return g.metrics.activeProposal
	case "ballot_governance_proposals_created_total":
		return g.metrics.proposalsCreated
	case "ballot_governance_proposals_finished_total":
		return g.metrics.proposalsFinished
	case "ballot_governance_votes_submitted_total":
		return g.metrics.votesSubmitted
	case "ballot_governance_votes_rejected_total":
		return g.metrics.votesRejected.WithLabelValues(labels...)
	case "ballot_governance_collateral_reserved":
		return g.metrics.reserved
	}
	return nil
}
