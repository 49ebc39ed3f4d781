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
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/blinklabs-io/ballot"
	"github.com/blinklabs-io/ballot/api"
	"github.com/blinklabs-io/ballot/governance"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func proposalCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "proposal [active|list|<id>]",
		Short:        "Show the active proposal, a finished proposal, or the archive",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			which := "active"
			if len(args) == 1 {
				which = args[0]
			}
			return withNode(cmd, func(_ context.Context, n *ballot.Node) error {
				gov := n.Governance()
				switch which {
				case "active":
					active, err := gov.ActiveProposal()
					if err != nil {
						return err
					}
					if active == nil {
						return governance.ErrNoActiveProposal
					}
					renderProposal(active)
				case "list":
					archive, err := gov.FinishedProposals()
					if err != nil {
						return err
					}
					return pterm.DefaultTable.
						WithHasHeader().
						WithData(archiveTableData(archive)).
						Render()
				default:
					id, err := strconv.ParseUint(which, 10, 32)
					if err != nil {
						return fmt.Errorf("invalid proposal id %q", which)
					}
					finished, err := gov.FinishedProposal(uint32(id))
					if err != nil {
						return err
					}
					renderFinishedProposal(finished)
				}
				return nil
			})
		},
	}
	return cmd
}

func clockCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "clock",
		Short:        "Show or advance the governance clock",
		SilenceUsage: true,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:          "show",
			Short:        "Show the current tick",
			Args:         cobra.NoArgs,
			SilenceUsage: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withNode(cmd, func(_ context.Context, n *ballot.Node) error {
					tick, err := n.Clock().Tick()
					if err != nil {
						return err
					}
					pterm.Info.Printfln("Current tick: %d", tick)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:          "advance <ticks>",
			Short:        "Advance the stored clock",
			Args:         cobra.ExactArgs(1),
			SilenceUsage: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				ticks, err := strconv.ParseUint(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid tick count %q", args[0])
				}
				return withNode(cmd, func(_ context.Context, n *ballot.Node) error {
					tick, err := api.NewNodeAdapter(n.Governance()).AdvanceClock(ticks)
					if err != nil {
						if errors.Is(err, api.ErrClockNotAdvanceable) {
							return fmt.Errorf("%w: set clockMode to 'stored'", err)
						}
						return err
					}
					pterm.Success.Printfln("Clock advanced to tick %d", tick)
					return nil
				})
			},
		},
	)
	return cmd
}
