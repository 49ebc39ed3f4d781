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

package main

import (
	"strconv"

	"github.com/blinklabs-io/ballot/api"
	"github.com/blinklabs-io/ballot/governance"
	"github.com/pterm/pterm"
)

func voterTableData(infos []api.VoterInfo) pterm.TableData {
	data := pterm.TableData{
		{"Account", "Voting power", "Reserved", "Free", "Voted on"},
	}
	for _, info := range infos {
		votedOn := "-"
		if info.HasVoted {
			votedOn = strconv.FormatUint(uint64(info.VotedProposal), 10)
		}
		data = append(data, []string{
			info.Account,
			info.VotingPower.String(),
			info.ReservedBalance.String(),
			info.FreeBalance.String(),
			votedOn,
		})
	}
	return data
}

func optionTableData(
	options []governance.Option,
	winner *governance.FinishedProposal,
) pterm.TableData {
	data := pterm.TableData{
		{"Option", "Votes", "Content hash"},
	}
	for _, opt := range options {
		id := strconv.Itoa(int(opt.Id))
		if winner != nil && opt.Id == winner.WinnerIndex {
			id = pterm.LightGreen(id + " *")
		}
		data = append(data, []string{
			id,
			opt.Votes.String(),
			opt.ContentHash.String(),
		})
	}
	return data
}

func archiveTableData(archive []*governance.FinishedProposal) pterm.TableData {
	data := pterm.TableData{
		{"Id", "End tick", "Winner", "Winner votes", "Content hash"},
	}
	for _, finished := range archive {
		data = append(data, []string{
			strconv.FormatUint(uint64(finished.Id), 10),
			strconv.FormatUint(finished.EndTick, 10),
			strconv.Itoa(int(finished.WinnerIndex)),
			finished.WinnerVotes.String(),
			finished.ContentHash.String(),
		})
	}
	return data
}

func proposalSummary(p *governance.Proposal) string {
	return pterm.Sprintfln(
		"Status: %s\nEnd tick: %d\nContent: %s",
		p.Status.String(),
		p.EndTick,
		p.ContentHash.String(),
	)
}

func renderProposal(p *governance.Proposal) {
	pterm.DefaultBox.
		WithTitle(pterm.LightYellow("Proposal " + strconv.FormatUint(uint64(p.Id), 10))).
		WithTitleTopCenter().
		Println(proposalSummary(p))
	//nolint:errcheck
	pterm.DefaultTable.
		WithHasHeader().
		WithData(optionTableData(p.Options, nil)).
		Render()
}

func renderFinishedProposal(f *governance.FinishedProposal) {
	pterm.DefaultBox.
		WithTitle(pterm.LightGreen("Proposal " + strconv.FormatUint(uint64(f.Id), 10))).
		WithTitleTopCenter().
		Println(
			proposalSummary(&f.Proposal) +
				pterm.Sprintf(
					"Winner: option %d with %s votes",
					f.WinnerIndex,
					f.WinnerVotes.String(),
				),
		)
	//nolint:errcheck
	pterm.DefaultTable.
		WithHasHeader().
		WithData(optionTableData(f.Options, f)).
		Render()
}
