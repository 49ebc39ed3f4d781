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
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blinklabs-io/ballot/api"
	"github.com/blinklabs-io/ballot/governance"
	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
)

func TestParseAllocations(t *testing.T) {
	allocations, err := parseAllocations([]string{"0=10", "2=5"})
	require.NoError(t, err)
	assert.Equal(
		t,
		[]governance.Allocation{
			{OptionId: 0, Votes: uint128.From64(10)},
			{OptionId: 2, Votes: uint128.From64(5)},
		},
		allocations,
	)
	for _, bad := range []string{"10", "x=1", "256=1", "1=-3", "1=many"} {
		_, err := parseAllocations([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestContentHash(t *testing.T) {
	hash, err := contentHash("hello", false)
	require.NoError(t, err)
	assert.Equal(t, lcommon.Blake2b256Hash([]byte("hello")), hash)
	raw, err := contentHash("0x"+hash.String(), true)
	require.NoError(t, err)
	assert.Equal(t, hash, raw)
	_, err = contentHash("hello", true)
	require.Error(t, err)
}

func TestTableData(t *testing.T) {
	voters := voterTableData([]api.VoterInfo{
		{
			Account:         "alice",
			VotingPower:     uint128.From64(10),
			ReservedBalance: uint128.From64(150),
			FreeBalance:     uint128.From64(850),
			VotedProposal:   3,
			HasVoted:        true,
		},
		{Account: "bob"},
	})
	require.Len(t, voters, 3)
	assert.Equal(t, []string{"alice", "10", "150", "850", "3"}, voters[1])
	assert.Equal(t, "-", voters[2][4])
	finished := &governance.FinishedProposal{
		Proposal: governance.Proposal{
			Id:      7,
			EndTick: 42,
			Options: []governance.Option{
				{Id: 0, Votes: uint128.From64(1)},
				{Id: 1, Votes: uint128.From64(9)},
			},
		},
		WinnerIndex: 1,
		WinnerVotes: uint128.From64(9),
	}
	archive := archiveTableData([]*governance.FinishedProposal{finished})
	require.Len(t, archive, 2)
	assert.Equal(t, []string{"7", "42", "1", "9"}, archive[1][:4])
	options := optionTableData(finished.Options, finished)
	require.Len(t, options, 3)
	assert.Equal(t, "0", options[1][0])
	assert.Contains(t, options[2][0], "*")
}

func TestListPlugins(t *testing.T) {
	shouldExit, output := listPlugins("badger", "sqlite")
	assert.False(t, shouldExit)
	assert.Empty(t, output)
	shouldExit, output = listPlugins("list", "list")
	assert.True(t, shouldExit)
	assert.Contains(t, output, "Available blob plugins:")
	assert.Contains(t, output, "badger")
	assert.Contains(t, output, "Available metadata plugins:")
	assert.Contains(t, output, "sqlite")
	assert.Contains(t, listAllPlugins(), "postgres")
}

func runCommand(t *testing.T, configPath string, args ...string) error {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	return cmd.Execute()
}

func TestCommandsEndToEnd(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dataDir := t.TempDir()
	configPath := filepath.Join(t.TempDir(), "ballot.yaml")
	require.NoError(t, os.WriteFile(
		configPath,
		[]byte(strings.Join([]string{
			"databasePath: " + dataDir,
			"genesisBalances:",
			`  alice: "1000"`,
		}, "\n")),
		0o600,
	))
	steps := [][]string{
		{"fund", "bob", "500"},
		{"register", "alice"},
		{"top-up", "alice", "100"},
		{"register", "bob"},
		{"propose", "proposal", "yes", "no"},
		{"vote", "alice", "1=6", "0=2"},
		{"proposal", "active"},
		{"voter"},
		{"clock", "advance", "10"},
		{"close"},
		{"proposal", "1"},
		{"proposal", "list"},
		{"clock", "show"},
		{"withdraw", "bob"},
	}
	for _, step := range steps {
		require.NoError(t, runCommand(t, configPath, step...), step)
	}
	// Failures surface as command errors
	err := runCommand(t, configPath, "close")
	require.ErrorIs(t, err, governance.ErrNoActiveProposal)
	err = runCommand(t, configPath, "register", "alice")
	require.ErrorIs(t, err, governance.ErrAlreadyVoter)
	err = runCommand(t, configPath, "vote", "alice", "oops")
	require.Error(t, err)
}
