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
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/blinklabs-io/ballot/api"
	"github.com/blinklabs-io/ballot/clock"
	"github.com/blinklabs-io/ballot/collateral"
	"github.com/blinklabs-io/ballot/database"
	"github.com/blinklabs-io/ballot/event"
	"github.com/blinklabs-io/ballot/governance"
)

const defaultShutdownTimeout = 30 * time.Second

type Node struct {
	eventBus      *event.EventBus
	db            *database.Database
	collateral    *collateral.Store
	clock         governance.Clock
	governance    *governance.Governance
	api           *api.Server
	shutdownFuncs []func(context.Context) error
	config        Config
	done          chan struct{}
	startOnce     sync.Once
	shutdownOnce  sync.Once
}

func New(cfg Config) (*Node, error) {
	eventBus := event.NewEventBus(cfg.promRegistry, cfg.logger)
	n := &Node{
		config:   cfg,
		eventBus: eventBus,
		done:     make(chan struct{}),
	}
	if err := n.configValidate(); err != nil {
		eventBus.Stop()
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return n, nil
}

// Start opens storage and brings up the governance module. The REST API is
// started when a listen address is configured. Calling Start more than once
// is an error
func (n *Node) Start(ctx context.Context) error {
	err := errors.New("node already started")
	n.startOnce.Do(func() {
		err = n.start(ctx)
	})
	return err
}

func (n *Node) start(ctx context.Context) error {
	// Configure tracing
	if n.config.tracing {
		if err := n.setupTracing(ctx); err != nil {
			return err
		}
	}
	// Load database
	db, err := database.New(&database.Config{
		DataDir:        n.config.dataDir,
		Logger:         n.config.logger,
		BlobPlugin:     n.config.blobPlugin,
		MetadataPlugin: n.config.metadataPlugin,
	})
	if db != nil {
		n.db = db
	}
	if err != nil {
		var dbErr database.CommitTimestampError
		if errors.As(err, &dbErr) {
			return fmt.Errorf(
				"database is inconsistent, restore it from a backup: %w",
				err,
			)
		}
		return fmt.Errorf("failed to open database: %w", err)
	}
	// Collateral
	n.collateral = collateral.NewStore(n.db, n.config.logger)
	if len(n.config.genesisBalances) > 0 {
		if err := n.collateral.SeedGenesis(n.config.genesisBalances); err != nil {
			return fmt.Errorf("failed to seed genesis balances: %w", err)
		}
	}
	// Clock
	switch n.config.clockMode {
	case ClockModeWall:
		wall, err := clock.NewWall(n.config.genesisTime, n.config.tickLength)
		if err != nil {
			return err
		}
		n.clock = wall
	default:
		n.clock = clock.NewStored(n.db)
	}
	// Governance
	gov, err := governance.New(governance.GovernanceConfig{
		Logger:              n.config.logger,
		PromRegistry:        n.config.promRegistry,
		EventBus:            n.eventBus,
		Database:            n.db,
		Collateral:          n.collateral,
		Clock:               n.clock,
		RegisterFee:         n.config.registerFee,
		MaxOptions:          n.config.maxOptions,
		MaxProposalDuration: n.config.maxProposalDuration,
		StrictVoteCommit:    n.config.strictVoteCommit,
	})
	if err != nil {
		return fmt.Errorf("failed to load governance: %w", err)
	}
	n.governance = gov
	// Log governance events
	for _, eventType := range governance.EventTypes {
		n.eventBus.SubscribeFunc(eventType, n.logEvent)
	}
	// Configure REST API
	if n.config.apiListenAddress != "" {
		n.api = api.New(
			api.Config{
				ListenAddress: n.config.apiListenAddress,
				AdminToken:    n.config.adminToken,
			},
			api.NewNodeAdapter(n.governance),
			n.config.logger,
		)
		if err := n.api.Start(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Run starts the node and blocks until ctx is cancelled or the node is stopped
func (n *Node) Run(ctx context.Context) error {
	if err := n.Start(ctx); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
	case <-n.done:
	}
	return nil
}

func (n *Node) logEvent(evt event.Event) {
	n.config.logger.Info(
		"governance event",
		"component", "governance",
		"type", string(evt.Type),
		"data", fmt.Sprintf("%+v", evt.Data),
	)
}

// Governance returns the governance module. It is nil until the node is started
func (n *Node) Governance() *governance.Governance {
	return n.governance
}

// Collateral returns the database backed collateral store
func (n *Node) Collateral() *collateral.Store {
	return n.collateral
}

// Clock returns the governance clock
func (n *Node) Clock() governance.Clock {
	return n.clock
}

// EventBus returns the node event bus
func (n *Node) EventBus() *event.EventBus {
	return n.eventBus
}

// ApiAddr returns the address of the REST API listener, or nil if it is not running
func (n *Node) ApiAddr() net.Addr {
	if n.api == nil {
		return nil
	}
	return n.api.Addr()
}

func (n *Node) Stop() error {
	var err error
	n.shutdownOnce.Do(func() {
		err = n.shutdown()
	})
	return err
}

func (n *Node) shutdown() error {
	shutdownTimeout := defaultShutdownTimeout
	if n.config.shutdownTimeout > 0 {
		shutdownTimeout = n.config.shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error

	n.config.logger.Debug("starting graceful shutdown", "component", "node")

	// Phase 1: Stop accepting new work
	if n.api != nil {
		if stopErr := n.api.Stop(ctx); stopErr != nil {
			err = errors.Join(err, fmt.Errorf("api shutdown: %w", stopErr))
		}
	}

	// Phase 2: Drain event subscribers
	if n.eventBus != nil {
		n.eventBus.Stop()
	}

	// Phase 3: Close database
	if n.db != nil {
		if closeErr := n.db.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("database close: %w", closeErr))
		}
	}

	// Phase 4: Call registered shutdown functions
	for _, fn := range n.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	n.shutdownFuncs = nil

	n.config.logger.Debug("graceful shutdown complete", "component", "node")
	close(n.done)
	return err
}
