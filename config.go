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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/blinklabs-io/ballot/governance"
	"github.com/prometheus/client_golang/prometheus"
	"lukechampine.com/uint128"
)

// Clock modes
const (
	ClockModeStored = "stored"
	ClockModeWall   = "wall"
)

const DefaultTickLength = 6 * time.Second

type Config struct {
	promRegistry        prometheus.Registerer
	logger              *slog.Logger
	genesisBalances     map[string]uint128.Uint128
	genesisTime         time.Time
	dataDir             string
	blobPlugin          string
	metadataPlugin      string
	clockMode           string
	apiListenAddress    string
	adminToken          string
	registerFee         uint128.Uint128
	maxProposalDuration uint64
	tickLength          time.Duration
	shutdownTimeout     time.Duration
	maxOptions          uint8
	strictVoteCommit    bool
	tracing             bool
	tracingStdout       bool
}

func (n *Node) configValidate() error {
	switch n.config.clockMode {
	case ClockModeStored:
	case ClockModeWall:
		if n.config.tickLength <= 0 {
			return fmt.Errorf(
				"invalid tick length: %s",
				n.config.tickLength,
			)
		}
		if n.config.genesisTime.IsZero() {
			return errors.New("wall clock requires a genesis time")
		}
	default:
		return fmt.Errorf("unknown clock mode: %q", n.config.clockMode)
	}
	if n.config.apiListenAddress != "" && n.config.adminToken == "" {
		n.config.logger.Warn(
			"no admin token configured, admin API routes are disabled",
			"component", "node",
		)
	}
	return nil
}

// ConfigOptionFunc is a type that represents functions that modify the node config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new ballot config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger:              slog.New(slog.NewJSONHandler(io.Discard, nil)),
		clockMode:           ClockModeStored,
		tickLength:          DefaultTickLength,
		registerFee:         uint128.From64(governance.DefaultRegisterFee),
		maxOptions:          governance.DefaultMaxOptions,
		maxProposalDuration: governance.DefaultMaxProposalDuration,
	}
	// Apply options
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithDatabasePath specifies the persistent data directory to use. The default is to store everything in memory
func WithDatabasePath(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

// WithBlobPlugin specifies the blob storage plugin to use.
func WithBlobPlugin(plugin string) ConfigOptionFunc {
	return func(c *Config) {
		c.blobPlugin = plugin
	}
}

// WithMetadataPlugin specifies the metadata storage plugin to use.
func WithMetadataPlugin(plugin string) ConfigOptionFunc {
	return func(c *Config) {
		c.metadataPlugin = plugin
	}
}

// WithLogger specifies the logger to use. This defaults to discarding log output
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithPrometheusRegistry specifies a prometheus.Registerer instance to add metrics to. In most cases, prometheus.DefaultRegistry would be
// a good choice to get metrics working
func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithRegisterFee specifies the collateral reserved on voter registration
func WithRegisterFee(fee uint128.Uint128) ConfigOptionFunc {
	return func(c *Config) {
		c.registerFee = fee
	}
}

// WithMaxOptions bounds the options of a proposal and the allocations of a vote
func WithMaxOptions(maxOptions uint8) ConfigOptionFunc {
	return func(c *Config) {
		c.maxOptions = maxOptions
	}
}

// WithMaxProposalDuration specifies the voting window in ticks
func WithMaxProposalDuration(ticks uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.maxProposalDuration = ticks
	}
}

// WithStrictVoteCommit discards the vote marker of a vote that fails validation. By default the marker is kept
func WithStrictVoteCommit(strict bool) ConfigOptionFunc {
	return func(c *Config) {
		c.strictVoteCommit = strict
	}
}

// WithClockMode selects the governance clock. "stored" keeps the tick in the database and only moves it on request,
// "wall" derives it from the time elapsed since genesis
func WithClockMode(mode string) ConfigOptionFunc {
	return func(c *Config) {
		c.clockMode = mode
	}
}

// WithGenesisTime specifies the start of tick 0 for the wall clock
func WithGenesisTime(genesis time.Time) ConfigOptionFunc {
	return func(c *Config) {
		c.genesisTime = genesis
	}
}

// WithTickLength specifies the duration of a tick for the wall clock. The default is 6 seconds
func WithTickLength(tickLength time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.tickLength = tickLength
	}
}

// WithGenesisBalances specifies free balances credited to accounts that do not exist yet in the collateral store
func WithGenesisBalances(
	balances map[string]uint128.Uint128,
) ConfigOptionFunc {
	return func(c *Config) {
		c.genesisBalances = balances
	}
}

// WithApiListenAddress specifies the listen address for the REST API server. An empty string disables the server.
// The default is empty (disabled)
func WithApiListenAddress(addr string) ConfigOptionFunc {
	return func(c *Config) {
		c.apiListenAddress = addr
	}
}

// WithAdminToken specifies the bearer token guarding the admin API routes
func WithAdminToken(token string) ConfigOptionFunc {
	return func(c *Config) {
		c.adminToken = token
	}
}

// WithTracing enables tracing. By default, spans are submitted to a HTTP(s) endpoint using OTLP. This can be configured
// using the OTEL_EXPORTER_OTLP_* env vars documented in the README for [go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp]
func WithTracing(tracing bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracing = tracing
	}
}

// WithTracingStdout enables tracing output to stdout. This also requires tracing to enabled separately. This is mostly useful for debugging
func WithTracingStdout(stdout bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracingStdout = stdout
	}
}

// WithShutdownTimeout specifies the timeout for graceful shutdown. The default is 30 seconds
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}
