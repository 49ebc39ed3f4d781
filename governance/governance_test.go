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

package governance_test

import (
	"context"
	"sync"
	"testing"

	"github.com/blinklabs-io/ballot/clock"
	"github.com/blinklabs-io/ballot/collateral"
	"github.com/blinklabs-io/ballot/database"
	"github.com/blinklabs-io/ballot/event"
	"github.com/blinklabs-io/ballot/governance"
	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
)

// recorder captures every governance event in publish order
type recorder struct {
	events []event.Event
	mu     sync.Mutex
}

func (r *recorder) Deliver(evt event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

func (r *recorder) Close() {}

func (r *recorder) all() []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]event.Event(nil), r.events...)
}

func (r *recorder) last() event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return event.Event{}
	}
	return r.events[len(r.events)-1]
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

type testEnv struct {
	gov        *governance.Governance
	db         *database.Database
	collateral *collateral.Memory
	clock      *clock.Manual
	events     *recorder
	registry   *prometheus.Registry
}

type testOptionFunc func(*governance.GovernanceConfig)

func withStrictVoteCommit() testOptionFunc {
	return func(cfg *governance.GovernanceConfig) {
		cfg.StrictVoteCommit = true
	}
}

func withGateway(
	fn func(governance.CollateralGateway) governance.CollateralGateway,
) testOptionFunc {
	return func(cfg *governance.GovernanceConfig) {
		cfg.Collateral = fn(cfg.Collateral)
	}
}

// newTestEnv mirrors a small chain: account 1 holds 1000, account 2 holds
// 500 and account 10 holds nothing. The fee is 50, proposals allow three
// options and last ten ticks
func newTestEnv(t testing.TB, opts ...testOptionFunc) *testEnv {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return newTestEnvWithDatabase(t, db, opts...)
}

func newTestEnvWithDatabase(
	t testing.TB,
	db *database.Database,
	opts ...testOptionFunc,
) *testEnv {
	t.Helper()
	env := &testEnv{
		db:         db,
		collateral: collateral.NewMemory(),
		clock:      clock.NewManual(1),
		events:     &recorder{},
		registry:   prometheus.NewRegistry(),
	}
	require.NoError(t, env.collateral.Deposit("1", uint128.From64(1000)))
	require.NoError(t, env.collateral.Deposit("2", uint128.From64(500)))
	eventBus := event.NewEventBus(nil, nil)
	t.Cleanup(eventBus.Stop)
	for _, evtType := range governance.EventTypes {
		eventBus.RegisterSubscriber(evtType, env.events)
	}
	cfg := governance.GovernanceConfig{
		PromRegistry:        env.registry,
		EventBus:            eventBus,
		Database:            db,
		Collateral:          env.collateral,
		Clock:               env.clock,
		RegisterFee:         uint128.From64(50),
		MaxOptions:          3,
		MaxProposalDuration: 10,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	gov, err := governance.New(cfg)
	require.NoError(t, err)
	env.gov = gov
	return env
}

func testHash(seed string) governance.ContentHash {
	return lcommon.Blake2b256Hash([]byte(seed))
}

func threeOptions() []governance.ContentHash {
	return []governance.ContentHash{
		testHash("option 0"),
		testHash("option 1"),
		testHash("option 2"),
	}
}

func allocations(votes ...uint64) []governance.Allocation {
	ret := make([]governance.Allocation, 0, len(votes))
	for i, v := range votes {
		ret = append(
			ret,
			governance.Allocation{
				OptionId: uint8(i), // #nosec G115
				Votes:    uint128.From64(v),
			},
		)
	}
	return ret
}

// voterWithPower registers an account and tops it up
func (e *testEnv) voterWithPower(t testing.TB, account string, amount uint64) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, e.gov.Register(ctx, account))
	_, err := e.gov.TopUpPower(ctx, account, uint128.From64(amount))
	require.NoError(t, err)
}

func (e *testEnv) createProposal(t testing.TB) uint32 {
	t.Helper()
	id, err := e.gov.CreateProposal(
		context.Background(),
		testHash("proposal"),
		threeOptions(),
	)
	require.NoError(t, err)
	return id
}

func (e *testEnv) optionVotes(t testing.TB) []uint64 {
	t.Helper()
	active, err := e.gov.ActiveProposal()
	require.NoError(t, err)
	require.NotNil(t, active)
	ret := make([]uint64, 0, len(active.Options))
	for _, opt := range active.Options {
		ret = append(ret, opt.Votes.Big().Uint64())
	}
	return ret
}

func (e *testEnv) metric(
	t testing.TB,
	name string,
	labels ...string,
) float64 {
	t.Helper()
	collector := e.gov.MetricCollector(name, labels...)
	require.NotNil(t, collector, "unknown metric %s", name)
	return testutil.ToFloat64(collector)
}
