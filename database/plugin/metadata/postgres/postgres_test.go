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

package postgres

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/blinklabs-io/ballot/database/models"
	"github.com/stretchr/testify/require"
)

func TestWithHost(t *testing.T) {
	m := &MetadataStorePostgres{}
	option := WithHost("db.local")

	option(m)

	if m.host != "db.local" {
		t.Errorf("Expected host to be 'db.local', got '%s'", m.host)
	}
}

func TestWithPort(t *testing.T) {
	m := &MetadataStorePostgres{}
	option := WithPort(uint(5433))

	option(m)

	if m.port != 5433 {
		t.Errorf("Expected port to be 5433, got '%d'", m.port)
	}
}

func TestWithLogger(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := &MetadataStorePostgres{}
	option := WithLogger(logger)

	option(m)

	if m.logger != logger {
		t.Errorf("Expected logger to be set")
	}
}

func TestDefaults(t *testing.T) {
	m, err := NewWithOptions(WithPassword("secret"))
	require.NoError(t, err)
	require.Equal(
		t,
		"host=localhost user=postgres password=secret dbname=postgres port=5432 sslmode=disable TimeZone=UTC",
		m.connString(),
	)
}

func TestDSNOverride(t *testing.T) {
	m, err := NewWithOptions(
		WithHost("db.local"),
		WithDSN("  host=other dbname=ballot "),
	)
	require.NoError(t, err)
	require.Equal(t, "host=other dbname=ballot", m.connString())
}

func TestCloseWithoutStart(t *testing.T) {
	m, err := NewWithOptions()
	require.NoError(t, err)
	require.NoError(t, m.Close())
	_, err = m.GetCommitTimestamp()
	require.ErrorIs(t, err, errNotStarted)
}

// TestPostgresVoterRoundTrip runs against a real server when POSTGRES_DSN is set
func TestPostgresVoterRoundTrip(t *testing.T) {
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Skip("Skipping postgres integration test: POSTGRES_DSN not set")
	}
	m, err := NewWithOptions(WithDSN(dsn))
	require.NoError(t, err)
	require.NoError(t, m.Start())
	defer m.Close() //nolint:errcheck
	account := "postgres-test-" + t.Name()
	txn := m.Transaction()
	require.NoError(t, m.SetVoter(&models.Voter{Account: account}, txn))
	voter, err := m.GetVoter(account, txn)
	require.NoError(t, err)
	require.NotNil(t, voter)
	require.NoError(t, txn.Rollback())
}
