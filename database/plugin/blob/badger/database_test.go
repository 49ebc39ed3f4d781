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

package badger_test

import (
	"testing"

	"github.com/blinklabs-io/ballot/database/plugin/blob/badger"
	"github.com/blinklabs-io/ballot/database/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, dataDir string) *badger.BlobStoreBadger {
	t.Helper()
	store, err := badger.New(
		badger.WithDataDir(dataDir),
		badger.WithGc(false),
	)
	require.NoError(t, err)
	return store
}

func TestGetSetDelete(t *testing.T) {
	store := newTestStore(t, "")
	defer store.Close() //nolint:errcheck
	txn := store.NewTransaction(true)
	_, err := store.Get(txn, []byte("missing"))
	require.ErrorIs(t, err, types.ErrBlobKeyNotFound)
	require.NoError(t, store.Set(txn, []byte("key"), []byte("value")))
	require.NoError(t, txn.Commit())
	txn = store.NewTransaction(true)
	val, err := store.Get(txn, []byte("key"))
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), val)
	require.NoError(t, store.Delete(txn, []byte("key")))
	require.NoError(t, txn.Commit())
	txn = store.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	_, err = store.Get(txn, []byte("key"))
	require.ErrorIs(t, err, types.ErrBlobKeyNotFound)
}

func TestRollbackDiscardsWrites(t *testing.T) {
	store := newTestStore(t, "")
	defer store.Close() //nolint:errcheck
	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, []byte("key"), []byte("value")))
	require.NoError(t, txn.Rollback())
	// Finished transactions can't be reused
	require.Error(t, store.Set(txn, []byte("key"), []byte("value")))
	txn = store.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	_, err := store.Get(txn, []byte("key"))
	require.ErrorIs(t, err, types.ErrBlobKeyNotFound)
}

func TestNilAndForeignTxn(t *testing.T) {
	store := newTestStore(t, "")
	defer store.Close() //nolint:errcheck
	other := newTestStore(t, "")
	defer other.Close() //nolint:errcheck
	_, err := store.Get(nil, []byte("key"))
	require.ErrorIs(t, err, types.ErrNilTxn)
	otherTxn := other.NewTransaction(false)
	defer otherTxn.Rollback() //nolint:errcheck
	_, err = store.Get(otherTxn, []byte("key"))
	require.Error(t, err)
	iter := store.NewIterator(otherTxn, types.BlobIteratorOptions{})
	defer iter.Close()
	assert.False(t, iter.Valid())
	require.Error(t, iter.Err())
}

func TestIteratorPrefixOrder(t *testing.T) {
	store := newTestStore(t, "")
	defer store.Close() //nolint:errcheck
	txn := store.NewTransaction(true)
	for _, id := range []uint32{3, 1, 256, 2} {
		require.NoError(
			t,
			store.Set(txn, types.FinishedProposalKey(id), []byte{byte(id)}),
		)
	}
	require.NoError(t, store.Set(txn, []byte("other"), []byte{0}))
	require.NoError(t, txn.Commit())
	txn = store.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	prefix := []byte(types.FinishedProposalKeyPrefix)
	iter := store.NewIterator(txn, types.BlobIteratorOptions{Prefix: prefix})
	defer iter.Close()
	var ids []uint32
	for iter.Rewind(); iter.ValidForPrefix(prefix); iter.Next() {
		id, ok := types.FinishedProposalIdFromKey(iter.Item().Key())
		require.True(t, ok)
		ids = append(ids, id)
	}
	require.NoError(t, iter.Err())
	assert.Equal(t, []uint32{1, 2, 3, 256}, ids)
}

func TestCommitTimestamp(t *testing.T) {
	dataDir := t.TempDir()
	store := newTestStore(t, dataDir)
	timestamp, err := store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(0), timestamp)
	require.ErrorIs(t, store.SetCommitTimestamp(1, nil), types.ErrNilTxn)
	txn := store.NewTransaction(true)
	require.NoError(t, store.SetCommitTimestamp(1700000000000, txn))
	require.NoError(t, txn.Commit())
	require.NoError(t, store.Close())
	// Reopen and verify persistence
	store = newTestStore(t, dataDir)
	defer store.Close() //nolint:errcheck
	timestamp, err = store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000000), timestamp)
}
