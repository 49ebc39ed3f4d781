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
	"os"
	"strconv"
	"strings"

	"github.com/blinklabs-io/ballot"
	"github.com/blinklabs-io/ballot/api"
	"github.com/blinklabs-io/ballot/governance"
	"github.com/blinklabs-io/ballot/internal/config"
	"github.com/blinklabs-io/ballot/internal/node"
	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"lukechampine.com/uint128"
)

// withNode opens the node storage for the duration of fn
func withNode(
	cmd *cobra.Command,
	fn func(ctx context.Context, n *ballot.Node) error,
) error {
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		return errors.New("no config found in context")
	}
	n, err := node.Open(cmd.Context(), cfg, cliLogger(os.Stderr))
	if err != nil {
		return err
	}
	return errors.Join(fn(cmd.Context(), n), n.Stop())
}

func parseAmount(value string) (uint128.Uint128, error) {
	amount, err := uint128.FromString(value)
	if err != nil {
		return uint128.Zero, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	return amount, nil
}

// parseAllocations parses vote allocations given as <option-id>=<votes>
func parseAllocations(args []string) ([]governance.Allocation, error) {
	ret := make([]governance.Allocation, 0, len(args))
	for _, arg := range args {
		idStr, votesStr, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf(
				"invalid allocation %q: expected <option-id>=<votes>",
				arg,
			)
		}
		optionId, err := strconv.ParseUint(idStr, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid option id %q: %w", idStr, err)
		}
		votes, err := parseAmount(votesStr)
		if err != nil {
			return nil, err
		}
		ret = append(ret, governance.Allocation{
			OptionId: uint8(optionId),
			Votes:    votes,
		})
	}
	return ret, nil
}

// contentHash hashes text with Blake2b-256, or decodes it as a hex hash when raw is set
func contentHash(value string, raw bool) (governance.ContentHash, error) {
	if !raw {
		return lcommon.Blake2b256Hash([]byte(value)), nil
	}
	return governance.ParseContentHash(value)
}

func registerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "register <account>",
		Short:        "Register an account as a voter",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withNode(cmd, func(ctx context.Context, n *ballot.Node) error {
				if err := n.Governance().Register(ctx, args[0]); err != nil {
					return err
				}
				pterm.Success.Printfln("Registered voter %s", args[0])
				return nil
			})
		},
	}
	return cmd
}

func topUpCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "top-up <account> <amount>",
		Short:        "Reserve more collateral to increase voting power",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			return withNode(cmd, func(ctx context.Context, n *ballot.Node) error {
				power, err := n.Governance().TopUpPower(ctx, args[0], amount)
				if err != nil {
					return err
				}
				pterm.Success.Printfln(
					"Voting power of %s is now %s",
					args[0],
					pterm.LightCyan(power.String()),
				)
				return nil
			})
		},
	}
	return cmd
}

func withdrawCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "withdraw <account>",
		Short:        "Deregister a voter and release its collateral",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withNode(cmd, func(ctx context.Context, n *ballot.Node) error {
				if err := n.Governance().Withdraw(ctx, args[0]); err != nil {
					return err
				}
				pterm.Success.Printfln("Withdrew voter %s", args[0])
				return nil
			})
		},
	}
	return cmd
}

func voteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "vote <account> <option-id>=<votes>...",
		Short:        "Cast votes on the active proposal",
		Args:         cobra.MinimumNArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			allocations, err := parseAllocations(args[1:])
			if err != nil {
				return err
			}
			return withNode(cmd, func(ctx context.Context, n *ballot.Node) error {
				if err := n.Governance().CastVote(ctx, args[0], allocations); err != nil {
					return err
				}
				pterm.Success.Printfln("Votes of %s recorded", args[0])
				return nil
			})
		},
	}
	return cmd
}

func proposeCommand() *cobra.Command {
	var rawHashes bool
	cmd := &cobra.Command{
		Use:          "propose <content> <option>...",
		Short:        "Create a proposal with the given options",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			proposalHash, err := contentHash(args[0], rawHashes)
			if err != nil {
				return err
			}
			optionHashes := make([]governance.ContentHash, 0, len(args)-1)
			for _, option := range args[1:] {
				optionHash, err := contentHash(option, rawHashes)
				if err != nil {
					return err
				}
				optionHashes = append(optionHashes, optionHash)
			}
			return withNode(cmd, func(ctx context.Context, n *ballot.Node) error {
				id, err := n.Governance().CreateProposal(ctx, proposalHash, optionHashes)
				if err != nil {
					return err
				}
				pterm.Success.Printfln("Created proposal %d", id)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(
		&rawHashes,
		"raw-hashes",
		false,
		"treat content and options as hex encoded Blake2b-256 hashes",
	)
	return cmd
}

func closeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "close",
		Short:        "Close the active proposal once its voting window ended",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withNode(cmd, func(ctx context.Context, n *ballot.Node) error {
				finished, err := n.Governance().CloseProposal(ctx)
				if err != nil {
					return err
				}
				renderFinishedProposal(finished)
				return nil
			})
		},
	}
	return cmd
}

func voterCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "voter [account]",
		Short:        "Show a voter, or list all voters",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withNode(cmd, func(_ context.Context, n *ballot.Node) error {
				adapter := api.NewNodeAdapter(n.Governance())
				var accounts []string
				if len(args) == 1 {
					accounts = args
				} else {
					voters, err := n.Governance().Voters()
					if err != nil {
						return err
					}
					for _, voter := range voters {
						accounts = append(accounts, voter.Account)
					}
				}
				infos := make([]api.VoterInfo, 0, len(accounts))
				for _, account := range accounts {
					info, err := adapter.Voter(account)
					if err != nil {
						return err
					}
					infos = append(infos, info)
				}
				return pterm.DefaultTable.
					WithHasHeader().
					WithData(voterTableData(infos)).
					Render()
			})
		},
	}
	return cmd
}

func fundCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "fund <account> <amount>",
		Short:        "Credit free balance to an account (development only)",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			return withNode(cmd, func(_ context.Context, n *ballot.Node) error {
				if err := n.Collateral().Deposit(args[0], amount); err != nil {
					return err
				}
				free, err := n.Collateral().FreeBalance(args[0])
				if err != nil {
					return err
				}
				pterm.Success.Printfln(
					"Free balance of %s is now %s",
					args[0],
					free.String(),
				)
				return nil
			})
		},
	}
	return cmd
}
