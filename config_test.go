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

package ballot

import (
	"testing"
	"time"

	"github.com/blinklabs-io/ballot/governance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()
	assert.NotNil(t, cfg.logger)
	assert.Equal(t, ClockModeStored, cfg.clockMode)
	assert.Equal(t, DefaultTickLength, cfg.tickLength)
	assert.Equal(t, uint128.From64(governance.DefaultRegisterFee), cfg.registerFee)
	assert.Equal(t, uint8(governance.DefaultMaxOptions), cfg.maxOptions)
	assert.Equal(
		t,
		uint64(governance.DefaultMaxProposalDuration),
		cfg.maxProposalDuration,
	)
	assert.False(t, cfg.strictVoteCommit)
	assert.Empty(t, cfg.apiListenAddress)
}

func TestConfigOptions(t *testing.T) {
	genesis := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := NewConfig(
		WithDatabasePath("/tmp/ballot"),
		WithBlobPlugin("badger"),
		WithMetadataPlugin("sqlite"),
		WithRegisterFee(uint128.From64(10)),
		WithMaxOptions(5),
		WithMaxProposalDuration(100),
		WithStrictVoteCommit(true),
		WithClockMode(ClockModeWall),
		WithGenesisTime(genesis),
		WithTickLength(time.Second),
		WithApiListenAddress(":3000"),
		WithAdminToken("token"),
		WithShutdownTimeout(5*time.Second),
		WithGenesisBalances(map[string]uint128.Uint128{
			"alice": uint128.From64(1000),
		}),
	)
	assert.Equal(t, "/tmp/ballot", cfg.dataDir)
	assert.Equal(t, "badger", cfg.blobPlugin)
	assert.Equal(t, "sqlite", cfg.metadataPlugin)
	assert.Equal(t, uint128.From64(10), cfg.registerFee)
	assert.Equal(t, uint8(5), cfg.maxOptions)
	assert.Equal(t, uint64(100), cfg.maxProposalDuration)
	assert.True(t, cfg.strictVoteCommit)
	assert.Equal(t, ClockModeWall, cfg.clockMode)
	assert.Equal(t, genesis, cfg.genesisTime)
	assert.Equal(t, time.Second, cfg.tickLength)
	assert.Equal(t, ":3000", cfg.apiListenAddress)
	assert.Equal(t, "token", cfg.adminToken)
	assert.Equal(t, 5*time.Second, cfg.shutdownTimeout)
	assert.Len(t, cfg.genesisBalances, 1)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    []ConfigOptionFunc
		wantErr bool
	}{
		{name: "defaults"},
		{
			name: "wall clock",
			opts: []ConfigOptionFunc{
				WithClockMode(ClockModeWall),
				WithGenesisTime(time.Now()),
			},
		},
		{
			name:    "wall clock without genesis",
			opts:    []ConfigOptionFunc{WithClockMode(ClockModeWall)},
			wantErr: true,
		},
		{
			name: "wall clock with zero tick length",
			opts: []ConfigOptionFunc{
				WithClockMode(ClockModeWall),
				WithGenesisTime(time.Now()),
				WithTickLength(0),
			},
			wantErr: true,
		},
		{
			name:    "unknown clock mode",
			opts:    []ConfigOptionFunc{WithClockMode("sundial")},
			wantErr: true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			n, err := New(NewConfig(test.opts...))
			if test.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid configuration")
				return
			}
			require.NoError(t, err)
			require.NoError(t, n.Stop())
		})
	}
}
