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
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"
)

const DefaultListenAddress = ":3000"

// Config holds the REST API server settings
type Config struct {
	ListenAddress string
	// AdminToken guards proposal creation and clock control. Admin routes
	// are refused when it is empty
	AdminToken string
}

// Server is the governance REST API server
type Server struct {
	config     Config
	logger     *slog.Logger
	node       Node
	httpServer *http.Server
	listenAddr net.Addr
	doneCh     chan struct{}
	mu         sync.Mutex
}

// New creates a new REST API server instance
func New(
	cfg Config,
	node Node,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.New(
			slog.NewJSONHandler(io.Discard, nil),
		)
	}
	logger = logger.With("component", "api")
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}
	return &Server{
		config: cfg,
		logger: logger,
		node:   node,
	}
}

// Handler returns the HTTP handler serving every API route
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/v0/clock", s.handleClock)
	mux.HandleFunc(
		"POST /api/v0/clock/advance",
		s.requireAdmin(s.handleClockAdvance),
	)
	mux.HandleFunc("GET /api/v0/voters/{account}", s.handleGetVoter)
	mux.HandleFunc("POST /api/v0/voters/{account}", s.handleRegister)
	mux.HandleFunc("DELETE /api/v0/voters/{account}", s.handleWithdraw)
	mux.HandleFunc(
		"POST /api/v0/voters/{account}/power",
		s.handleTopUpPower,
	)
	mux.HandleFunc(
		"POST /api/v0/voters/{account}/votes",
		s.handleCastVote,
	)
	mux.HandleFunc("GET /api/v0/proposals", s.handleFinishedProposals)
	mux.HandleFunc(
		"POST /api/v0/proposals",
		s.requireAdmin(s.handleCreateProposal),
	)
	mux.HandleFunc(
		"GET /api/v0/proposals/active",
		s.handleActiveProposal,
	)
	mux.HandleFunc(
		"POST /api/v0/proposals/active/close",
		s.handleCloseProposal,
	)
	mux.HandleFunc("GET /api/v0/proposals/{id}", s.handleFinishedProposal)
	return mux
}

// Start starts the HTTP server in a background goroutine. The server is
// shut down when ctx is cancelled or Stop is called
func (s *Server) Start(
	ctx context.Context,
) error {
	s.mu.Lock()
	if s.httpServer != nil {
		s.mu.Unlock()
		return errors.New("server already started")
	}
	server := &http.Server{
		Addr:              s.config.ListenAddress,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 60 * time.Second,
	}
	s.httpServer = server
	doneCh := make(chan struct{})
	s.doneCh = doneCh
	s.mu.Unlock()

	// Bind first so port conflicts are reported to the caller
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		s.mu.Lock()
		s.httpServer = nil
		s.doneCh = nil
		s.mu.Unlock()
		return fmt.Errorf("failed to listen for API server: %w", err)
	}
	s.mu.Lock()
	s.listenAddr = ln.Addr()
	s.mu.Unlock()
	go func() {
		if err := server.Serve(ln); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(
				"API server error",
				"error", err,
			)
		}
	}()
	s.logger.Info(
		"API listener started on " + ln.Addr().String(),
	)

	// Monitor context for cancellation
	go func() {
		select {
		case <-ctx.Done():
		case <-doneCh:
			return
		}
		//nolint:contextcheck
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			30*time.Second,
		)
		defer cancel()
		//nolint:contextcheck
		if err := s.Stop(shutdownCtx); err != nil {
			s.logger.Error(
				"failed to shutdown API server on context cancellation",
				"error", err,
			)
		}
	}()
	return nil
}

// Addr returns the address the server is listening on, or nil if it is not
// running
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.httpServer == nil {
		return nil
	}
	return s.listenAddr
}

// Stop gracefully shuts down the HTTP server
func (s *Server) Stop(
	ctx context.Context,
) error {
	s.mu.Lock()
	srv := s.httpServer
	s.httpServer = nil
	if s.doneCh != nil {
		close(s.doneCh)
		s.doneCh = nil
	}
	s.mu.Unlock()
	if srv != nil {
		s.logger.Debug("shutting down API server")
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown API server: %w", err)
		}
	}
	return nil
}
