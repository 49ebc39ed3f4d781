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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/blinklabs-io/ballot/clock"
	"github.com/blinklabs-io/ballot/collateral"
	"github.com/blinklabs-io/ballot/database"
	"github.com/blinklabs-io/ballot/governance"
	"github.com/blinklabs-io/ballot/internal/test/testutil"
	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"lukechampine.com/uint128"
)

const testAdminToken = "s3cret"

// mockNode implements Node for testing error paths
type mockNode struct {
	NodeAdapter
	err error
}

func (m *mockNode) ActiveProposal() (*governance.Proposal, error) {
	return nil, m.err
}

func (m *mockNode) ClockTick() (uint64, error) {
	return 0, m.err
}

type testServer struct {
	server *Server
	clock  *clock.Manual
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	gateway := collateral.NewMemory()
	require.NoError(t, gateway.Deposit("alice", uint128.From64(1000)))
	require.NoError(t, gateway.Deposit("bob", uint128.From64(500)))
	tmpClock := clock.NewManual(1)
	gov, err := governance.New(governance.GovernanceConfig{
		Database:    db,
		Collateral:  gateway,
		Clock:       tmpClock,
		RegisterFee: uint128.From64(50),
	})
	require.NoError(t, err)
	return &testServer{
		server: New(
			Config{ListenAddress: ":0", AdminToken: testAdminToken},
			NewNodeAdapter(gov),
			nil,
		),
		clock: tmpClock,
	}
}

func (ts *testServer) do(
	t *testing.T,
	method string,
	path string,
	body any,
	admin bool,
) *httptest.ResponseRecorder {
	t.Helper()
	var reqBody bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&reqBody).Encode(body))
	}
	req := httptest.NewRequest(method, path, &reqBody)
	if admin {
		req.Header.Set("Authorization", "Bearer "+testAdminToken)
	}
	w := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(w, req)
	return w
}

func decodeResponse[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var ret T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&ret))
	return ret
}

func hashHex(seed string) string {
	return lcommon.Blake2b256Hash([]byte(seed)).String()
}

func (ts *testServer) createProposal(t *testing.T) uint32 {
	t.Helper()
	w := ts.do(
		t,
		http.MethodPost,
		"/api/v0/proposals",
		CreateProposalRequest{
			ContentHash: hashHex("proposal"),
			Options: []string{
				hashHex("a"),
				hashHex("b"),
				hashHex("c"),
			},
		},
		true,
	)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeResponse[CreateProposalResponse](t, w).Id
}

func TestStartStop(t *testing.T) {
	defer goleak.VerifyNone(t)
	s := New(Config{ListenAddress: "127.0.0.1:0"}, &mockNode{}, nil)
	require.NoError(t, s.Start(context.Background()))
	addr := s.Addr()
	require.NotNil(t, addr)
	err := s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already started")
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://%s/health", addr.String()))
	require.NoError(t, err)
	var health HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	resp.Body.Close()
	assert.True(t, health.IsHealthy)
	client.CloseIdleConnections()
	stopCtx, stopCancel := context.WithTimeout(
		context.Background(),
		5*time.Second,
	)
	defer stopCancel()
	require.NoError(t, s.Stop(stopCtx))
	assert.Nil(t, s.Addr())
}

func TestStopOnContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)
	s := New(Config{ListenAddress: "127.0.0.1:0"}, &mockNode{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	cancel()
	testutil.WaitForCondition(
		t,
		func() bool { return s.Addr() == nil },
		5*time.Second,
		"server should stop on context cancellation",
	)
}

func TestHandleRoot(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	resp := decodeResponse[RootResponse](t, w)
	assert.Equal(t, "ballot", resp.Name)
	w = ts.do(t, http.MethodGet, "/nope", nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVoterLifecycle(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/api/v0/voters/alice", nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = ts.do(t, http.MethodPost, "/api/v0/voters/alice", nil, false)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	voter := decodeResponse[VoterResponse](t, w)
	assert.Equal(t, "alice", voter.Account)
	assert.Equal(t, "0", voter.VotingPower)
	assert.Equal(t, "50", voter.ReservedBalance)
	assert.Equal(t, "950", voter.FreeBalance)
	assert.Nil(t, voter.VotedProposal)
	w = ts.do(t, http.MethodPost, "/api/v0/voters/alice", nil, false)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = ts.do(
		t,
		http.MethodPost,
		"/api/v0/voters/alice/power",
		TopUpRequest{Amount: "100"},
		false,
	)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "10", decodeResponse[TopUpResponse](t, w).VotingPower)
	w = ts.do(
		t,
		http.MethodPost,
		"/api/v0/voters/alice/power",
		TopUpRequest{Amount: "10"},
		false,
	)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = ts.do(
		t,
		http.MethodPost,
		"/api/v0/voters/alice/power",
		TopUpRequest{Amount: "lots"},
		false,
	)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = ts.do(t, http.MethodDelete, "/api/v0/voters/alice", nil, false)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = ts.do(t, http.MethodDelete, "/api/v0/voters/alice", nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeResponse[ErrorResponse](t, w)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Not Found", resp.Error)
	assert.Equal(t, governance.ErrNotAVoter.Error(), resp.Message)
}

func TestRegisterInsufficientBalance(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodPost, "/api/v0/voters/carol", nil, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse[ErrorResponse](t, w)
	assert.Equal(t, collateral.ErrInsufficientBalance.Error(), resp.Message)
}

func TestAdminAuth(t *testing.T) {
	ts := newTestServer(t)
	body := CreateProposalRequest{ContentHash: hashHex("proposal")}
	w := ts.do(t, http.MethodPost, "/api/v0/proposals", body, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	req := httptest.NewRequest(http.MethodPost, "/api/v0/proposals", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	// No token configured disables the admin routes entirely
	ts.server.config.AdminToken = ""
	w = ts.do(t, http.MethodPost, "/api/v0/proposals", body, true)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestProposalFlow(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/api/v0/proposals/active", nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
	id := ts.createProposal(t)
	assert.Equal(t, uint32(1), id)
	w = ts.do(t, http.MethodGet, "/api/v0/proposals/active", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	active := decodeResponse[ProposalResponse](t, w)
	assert.Equal(t, id, active.Id)
	assert.Equal(t, hashHex("proposal"), active.ContentHash)
	assert.Equal(t, uint64(11), active.EndTick)
	assert.Equal(t, "InProgress", active.Status)
	require.Len(t, active.Options, 3)
	assert.Equal(t, hashHex("b"), active.Options[1].ContentHash)
	assert.Nil(t, active.WinnerIndex)
	// Second proposal conflicts
	w = ts.do(
		t,
		http.MethodPost,
		"/api/v0/proposals",
		CreateProposalRequest{ContentHash: hashHex("other")},
		true,
	)
	assert.Equal(t, http.StatusConflict, w.Code)
	// Vote
	require.Equal(
		t,
		http.StatusCreated,
		ts.do(t, http.MethodPost, "/api/v0/voters/bob", nil, false).Code,
	)
	require.Equal(
		t,
		http.StatusOK,
		ts.do(
			t,
			http.MethodPost,
			"/api/v0/voters/bob/power",
			TopUpRequest{Amount: "144"},
			false,
		).Code,
	)
	vote := VoteRequest{
		Allocations: []AllocationRequest{
			{OptionId: 0, Votes: "6"},
			{OptionId: 1, Votes: "5"},
		},
	}
	w = ts.do(t, http.MethodPost, "/api/v0/voters/bob/votes", vote, false)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
	w = ts.do(t, http.MethodPost, "/api/v0/voters/bob/votes", vote, false)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = ts.do(t, http.MethodGet, "/api/v0/voters/bob", nil, false)
	voter := decodeResponse[VoterResponse](t, w)
	require.NotNil(t, voter.VotedProposal)
	assert.Equal(t, id, *voter.VotedProposal)
	// Close too early, then advance the clock and close
	w = ts.do(t, http.MethodPost, "/api/v0/proposals/active/close", nil, false)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = ts.do(
		t,
		http.MethodPost,
		"/api/v0/clock/advance",
		ClockAdvanceRequest{Ticks: 14},
		true,
	)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint64(15), decodeResponse[ClockResponse](t, w).Tick)
	w = ts.do(t, http.MethodPost, "/api/v0/proposals/active/close", nil, false)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	finished := decodeResponse[ProposalResponse](t, w)
	assert.Equal(t, "Finished", finished.Status)
	require.NotNil(t, finished.WinnerIndex)
	assert.Equal(t, uint8(0), *finished.WinnerIndex)
	require.NotNil(t, finished.WinnerVotes)
	assert.Equal(t, "6", *finished.WinnerVotes)
	w = ts.do(t, http.MethodGet, "/api/v0/proposals/1", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, finished, decodeResponse[ProposalResponse](t, w))
	w = ts.do(t, http.MethodGet, "/api/v0/proposals/2", nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = ts.do(t, http.MethodGet, "/api/v0/proposals/abc", nil, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateProposalInvalidHash(t *testing.T) {
	ts := newTestServer(t)
	for _, body := range []CreateProposalRequest{
		{ContentHash: "zz"},
		{ContentHash: "abcd"},
		{ContentHash: hashHex("ok"), Options: []string{"1234"}},
	} {
		w := ts.do(t, http.MethodPost, "/api/v0/proposals", body, true)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
	w := ts.do(
		t,
		http.MethodPost,
		"/api/v0/proposals",
		map[string]any{"unknown": true},
		true,
	)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFinishedProposalsPagination(t *testing.T) {
	ts := newTestServer(t)
	for range 3 {
		ts.createProposal(t)
		_, err := ts.clock.Advance(governance.DefaultMaxProposalDuration)
		require.NoError(t, err)
		w := ts.do(t, http.MethodPost, "/api/v0/proposals/active/close", nil, false)
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := ts.do(t, http.MethodGet, "/api/v0/proposals?count=2", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "3", w.Header().Get("X-Pagination-Count-Total"))
	assert.Equal(t, "2", w.Header().Get("X-Pagination-Page-Total"))
	page := decodeResponse[[]ProposalResponse](t, w)
	require.Len(t, page, 2)
	assert.Equal(t, uint32(1), page[0].Id)
	assert.Equal(t, uint32(2), page[1].Id)
	w = ts.do(t, http.MethodGet, "/api/v0/proposals?count=2&page=2", nil, false)
	page = decodeResponse[[]ProposalResponse](t, w)
	require.Len(t, page, 1)
	assert.Equal(t, uint32(3), page[0].Id)
	w = ts.do(t, http.MethodGet, "/api/v0/proposals?order=desc&count=1", nil, false)
	page = decodeResponse[[]ProposalResponse](t, w)
	require.Len(t, page, 1)
	assert.Equal(t, uint32(3), page[0].Id)
	w = ts.do(t, http.MethodGet, "/api/v0/proposals?page=9", nil, false)
	page = decodeResponse[[]ProposalResponse](t, w)
	assert.Empty(t, page)
	w = ts.do(t, http.MethodGet, "/api/v0/proposals?order=sideways", nil, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClockNotAdvanceable(t *testing.T) {
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	defer db.Close()
	wall, err := clock.NewWall(time.Now(), time.Second)
	require.NoError(t, err)
	gov, err := governance.New(governance.GovernanceConfig{
		Database:   db,
		Collateral: collateral.NewMemory(),
		Clock:      wall,
	})
	require.NoError(t, err)
	ts := &testServer{
		server: New(
			Config{AdminToken: testAdminToken},
			NewNodeAdapter(gov),
			nil,
		),
	}
	w := ts.do(
		t,
		http.MethodPost,
		"/api/v0/clock/advance",
		ClockAdvanceRequest{Ticks: 1},
		true,
	)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = ts.do(t, http.MethodGet, "/api/v0/clock", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestInternalErrorsAreHidden(t *testing.T) {
	s := New(Config{}, &mockNode{err: assert.AnError}, nil)
	for _, path := range []string{"/api/v0/proposals/active", "/api/v0/clock"} {
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(
			w,
			httptest.NewRequest(http.MethodGet, path, nil),
		)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		resp := decodeResponse[ErrorResponse](t, w)
		assert.Equal(t, 500, resp.StatusCode)
		assert.Equal(t, "Internal Server Error", resp.Error)
		assert.NotContains(t, resp.Message, assert.AnError.Error())
	}
}
