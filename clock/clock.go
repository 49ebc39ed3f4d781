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

// Package clock provides tick sources for proposal voting windows
package clock

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/blinklabs-io/ballot/database"
)

var (
	// ErrTickOverflow is returned when advancing would pass the largest tick
	ErrTickOverflow  = errors.New("clock tick overflow")
	// ErrClockBackward is returned when setting a tick below the current one
	ErrClockBackward = errors.New("clock cannot move backward")
)

// Manual is a clock that only moves when told to
type Manual struct {
	tick uint64
	mu   sync.Mutex
}

// NewManual returns a manual clock starting at the given tick
func NewManual(start uint64) *Manual {
	return &Manual{tick: start}
}

// Tick returns the current tick
func (m *Manual) Tick() (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tick, nil
}

// Advance moves the clock forward and returns the new tick
func (m *Manual) Advance(ticks uint64) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tick > math.MaxUint64-ticks {
		return m.tick, ErrTickOverflow
	}
	m.tick += ticks
	return m.tick, nil
}

// Set moves the clock to the given tick, which must not be in the past
func (m *Manual) Set(tick uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tick < m.tick {
		return ErrClockBackward
	}
	m.tick = tick
	return nil
}

// Stored is a manually advanced clock whose tick is persisted in the
// metadata database
type Stored struct {
	db *database.Database
	mu sync.Mutex
}

// NewStored returns a clock backed by the tick stored in db
func NewStored(db *database.Database) *Stored {
	return &Stored{db: db}
}

// Tick returns the persisted tick, 0 if the clock has never advanced
func (s *Stored) Tick() (uint64, error) {
	tick, err := s.db.GetClockTick(nil)
	if err != nil {
		return 0, fmt.Errorf("failed to load clock tick: %w", err)
	}
	return tick, nil
}

// Advance moves the persisted tick forward and returns the new tick
func (s *Stored) Advance(ticks uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ret uint64
	err := s.db.Transaction(true).Do(func(txn *database.Txn) error {
		tick, err := s.db.GetClockTick(txn)
		if err != nil {
			return fmt.Errorf("failed to load clock tick: %w", err)
		}
		if tick > math.MaxUint64-ticks {
			return ErrTickOverflow
		}
		ret = tick + ticks
		return s.db.SetClockTick(ret, txn)
	})
	if err != nil {
		return 0, err
	}
	return ret, nil
}

// Wall derives ticks from elapsed wall clock time since a genesis instant
type Wall struct {
	genesis    time.Time
	tickLength time.Duration
	nowFunc    func() time.Time
	last       uint64
	mu         sync.Mutex
}

// WallOptionFunc configures a Wall clock
type WallOptionFunc func(*Wall)

// WithNowFunc replaces the time source
func WithNowFunc(nowFunc func() time.Time) WallOptionFunc {
	return func(w *Wall) {
		w.nowFunc = nowFunc
	}
}

// NewWall returns a clock that counts tickLength intervals since genesis
func NewWall(
	genesis time.Time,
	tickLength time.Duration,
	opts ...WallOptionFunc,
) (*Wall, error) {
	if tickLength <= 0 {
		return nil, fmt.Errorf("invalid tick length: %s", tickLength)
	}
	w := &Wall{
		genesis:    genesis,
		tickLength: tickLength,
		nowFunc:    time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Tick returns the number of whole tick lengths since genesis. Times before
// genesis are tick 0, and a wall clock stepping backward never lowers the
// returned tick
func (w *Wall) Tick() (uint64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	elapsed := w.nowFunc().Sub(w.genesis)
	if elapsed > 0 {
		// #nosec G115
		tick := uint64(elapsed / w.tickLength)
		if tick > w.last {
			w.last = tick
		}
	}
	return w.last, nil
}
