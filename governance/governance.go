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
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/blinklabs-io/ballot/database"
	"github.com/blinklabs-io/ballot/event"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"lukechampine.com/uint128"
)

const (
	DefaultRegisterFee         = 50
	DefaultMaxOptions          = 3
	DefaultMaxProposalDuration = 10
)

const tracerName = "github.com/blinklabs-io/ballot/governance"

// CollateralGateway reserves and releases the collateral backing voter
// registrations and voting power
type CollateralGateway interface {
	Reserve(account string, amount uint128.Uint128) error
	Unreserve(account string, amount uint128.Uint128) error
	ReservedBalance(account string) (uint128.Uint128, error)
	FreeBalance(account string) (uint128.Uint128, error)
}

// Clock provides the current tick. Successive calls never go backwards
type Clock interface {
	Tick() (uint64, error)
}

type GovernanceConfig struct {
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
	EventBus     *event.EventBus
	Database     *database.Database
	Collateral   CollateralGateway
	Clock        Clock
	// RegisterFee is reserved on registration and excluded from voting power
	RegisterFee uint128.Uint128
	// MaxOptions bounds both the options of a proposal and the allocations
	// of a vote. Zero selects DefaultMaxOptions
	MaxOptions uint8
	// MaxProposalDuration is the voting window in ticks. Zero selects
	// DefaultMaxProposalDuration
	MaxProposalDuration uint64
	// StrictVoteCommit discards the vote marker when a vote fails validation
	StrictVoteCommit bool
}

// Governance runs the voter registry, the proposal lifecycle and the vote
// ledger. Operations are serialized
type Governance struct {
	config     GovernanceConfig
	logger     *slog.Logger
	db         *database.Database
	collateral CollateralGateway
	clock      Clock
	eventBus   *event.EventBus
	tracer     trace.Tracer
	metrics    governanceMetrics
	mu         sync.Mutex
}

func New(cfg GovernanceConfig) (*Governance, error) {
	if cfg.Database == nil {
		return nil, errors.New("governance: database must be provided")
	}
	if cfg.Collateral == nil {
		return nil, errors.New("governance: collateral gateway must be provided")
	}
	if cfg.Clock == nil {
		return nil, errors.New("governance: clock must be provided")
	}
	if cfg.MaxOptions == 0 {
		cfg.MaxOptions = DefaultMaxOptions
	}
	if cfg.MaxProposalDuration == 0 {
		cfg.MaxProposalDuration = DefaultMaxProposalDuration
	}
	g := &Governance{
		config:     cfg,
		logger:     cfg.Logger,
		db:         cfg.Database,
		collateral: cfg.Collateral,
		clock:      cfg.Clock,
		eventBus:   cfg.EventBus,
		tracer:     otel.Tracer(tracerName),
	}
	if g.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		g.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	g.initMetrics()
	// Seed gauges from stored state
	voters, err := g.db.GetVoters(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load voters: %w", err)
	}
	g.metrics.voters.Set(float64(len(voters)))
	for _, voter := range voters {
		reserved, err := g.collateral.ReservedBalance(voter.Account)
		if err != nil {
			return nil, fmt.Errorf("failed to load reserved collateral: %w", err)
		}
		g.metrics.reserved.Add(amountFloat(reserved))
	}
	active, err := g.db.GetActiveProposal(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load active proposal: %w", err)
	}
	if active != nil {
		g.metrics.activeProposal.Set(1)
	}
	return g, nil
}

// Config returns the effective configuration
func (g *Governance) Config() GovernanceConfig {
	return g.config
}

func (g *Governance) startSpan(
	ctx context.Context,
	name string,
	attrs ...attribute.KeyValue,
) (context.Context, trace.Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	return g.tracer.Start(
		ctx,
		"governance."+name,
		trace.WithAttributes(attrs...),
	)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// now reads the clock. It must not be called while a database transaction
// is open, since clock implementations may use the same database
func (g *Governance) now() (uint64, error) {
	tick, err := g.clock.Tick()
	if err != nil {
		return 0, fmt.Errorf("failed to read clock: %w", err)
	}
	return tick, nil
}

// compensateReserve releases a reservation whose database write failed
func (g *Governance) compensateReserve(
	account string,
	amount uint128.Uint128,
) {
	if err := g.collateral.Unreserve(account, amount); err != nil {
		g.logger.Error(
			"failed to release collateral after database error",
			"component", "governance",
			"account", account,
			"amount", amount.String(),
			"error", err,
		)
	}
}
