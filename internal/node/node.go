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

package node

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/blinklabs-io/ballot"
	"github.com/blinklabs-io/ballot/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NodeOptions converts the loaded config into node options. The REST API
// is only configured when withApi is set
func NodeOptions(
	cfg *config.Config,
	logger *slog.Logger,
	withApi bool,
) ([]ballot.ConfigOptionFunc, error) {
	registerFee, err := cfg.RegisterFeeAmount()
	if err != nil {
		return nil, err
	}
	genesisBalances, err := cfg.GenesisBalanceAmounts()
	if err != nil {
		return nil, err
	}
	genesisTime, err := cfg.GenesisTimeValue()
	if err != nil {
		return nil, err
	}
	tickLength := 6 * time.Second
	if cfg.TickLength != "" {
		tickLength, err = time.ParseDuration(cfg.TickLength)
		if err != nil {
			return nil, fmt.Errorf("invalid tick length: %w", err)
		}
	}
	shutdownTimeout := 30 * time.Second
	if cfg.ShutdownTimeout != "" {
		shutdownTimeout, err = time.ParseDuration(cfg.ShutdownTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
		}
	}
	clockMode := string(cfg.ClockMode)
	if clockMode == "" {
		clockMode = ballot.ClockModeStored
	}
	opts := []ballot.ConfigOptionFunc{
		ballot.WithLogger(logger),
		ballot.WithDatabasePath(cfg.DatabasePath),
		ballot.WithBlobPlugin(cfg.BlobPlugin),
		ballot.WithMetadataPlugin(cfg.MetadataPlugin),
		ballot.WithRegisterFee(registerFee),
		ballot.WithMaxOptions(cfg.MaxOptions),
		ballot.WithMaxProposalDuration(cfg.MaxProposalDuration),
		ballot.WithStrictVoteCommit(cfg.StrictVoteCommit),
		ballot.WithClockMode(clockMode),
		ballot.WithGenesisTime(genesisTime),
		ballot.WithTickLength(tickLength),
		ballot.WithGenesisBalances(genesisBalances),
		ballot.WithShutdownTimeout(shutdownTimeout),
		ballot.WithTracing(cfg.Tracing),
		ballot.WithTracingStdout(cfg.TracingStdout),
	}
	if withApi && cfg.ApiPort > 0 {
		opts = append(
			opts,
			ballot.WithApiListenAddress(
				fmt.Sprintf("%s:%d", cfg.BindAddr, cfg.ApiPort),
			),
			ballot.WithAdminToken(cfg.AdminToken),
		)
	}
	return opts, nil
}

// Open starts a node without network listeners for one-shot commands. The
// caller must Stop it
func Open(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
) (*ballot.Node, error) {
	opts, err := NodeOptions(cfg, logger, false)
	if err != nil {
		return nil, err
	}
	n, err := ballot.New(ballot.NewConfig(opts...))
	if err != nil {
		return nil, err
	}
	if err := n.Start(ctx); err != nil {
		return nil, errors.Join(err, n.Stop())
	}
	return n, nil
}

func Run(cfg *config.Config, logger *slog.Logger) error {
	logger.Debug(fmt.Sprintf("config: %+v", cfg), "component", "node")
	opts, err := NodeOptions(cfg, logger, true)
	if err != nil {
		return err
	}
	opts = append(
		opts,
		// Enable metrics with default prometheus registry
		ballot.WithPrometheusRegistry(prometheus.DefaultRegisterer),
	)
	n, err := ballot.New(ballot.NewConfig(opts...))
	if err != nil {
		return err
	}
	shutdownTimeout := 30 * time.Second
	if cfg.ShutdownTimeout != "" {
		if tmpTimeout, err := time.ParseDuration(cfg.ShutdownTimeout); err == nil {
			shutdownTimeout = tmpTimeout
		}
	}
	// Metrics listener
	var metricsServer *http.Server
	metricsErrCh := make(chan error, 1)
	if cfg.MetricsPort > 0 {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr: fmt.Sprintf(
				"%s:%d",
				cfg.BindAddr,
				cfg.MetricsPort,
			),
			Handler:           mux,
			ReadHeaderTimeout: 60 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		}
		logger.Info(
			"serving prometheus metrics on "+metricsServer.Addr,
			"component", "node",
		)
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil &&
				!errors.Is(err, http.ErrServerClosed) {
				metricsErrCh <- fmt.Errorf("metrics listener: %w", err)
			}
		}()
	}
	stopMetrics := func() {
		if metricsServer == nil {
			return
		}
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			shutdownTimeout,
		)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error(
				"metrics server shutdown error",
				"component", "node",
				"error", err,
			)
		}
	}
	defer stopMetrics()

	// Wait for interrupt/termination signal
	signalCtx, signalCtxStop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer signalCtxStop()

	// Run node in goroutine
	errChan := make(chan error, 1)
	go func() {
		errChan <- n.Run(signalCtx)
	}()

	select {
	case <-signalCtx.Done():
		logger.Info("signal received, initiating graceful shutdown", "component", "node")
	case err = <-metricsErrCh:
		logger.Error("metrics server error", "component", "node", "error", err)
	case err = <-errChan:
		if err != nil {
			logger.Error("node error", "component", "node", "error", err)
		}
	}
	if stopErr := n.Stop(); stopErr != nil {
		logger.Error(
			"shutdown errors occurred",
			"component", "node",
			"error", stopErr,
		)
		err = errors.Join(err, stopErr)
	}
	if err == nil {
		logger.Info("shutdown complete", "component", "node")
	}
	return err
}
