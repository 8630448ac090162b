// Copyright 2025 Blink Labs Software
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

	"github.com/blinklabs-io/tokenreg/database/plugin"
	"github.com/blinklabs-io/tokenreg/database/plugin/blob/badger"
	"github.com/blinklabs-io/tokenreg/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *badger.BlobStoreBadger {
	t.Helper()
	store, err := badger.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close() //nolint:errcheck
	})
	return store
}

func TestGetSetDelete(t *testing.T) {
	store := newTestStore(t)
	key := types.DescriptorBlobKey("gaming", 0)

	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, key, []byte(`{"name":"Foo"}`)))
	require.NoError(t, txn.Commit())

	txn = store.NewTransaction(false)
	val, err := store.Get(txn, key)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Foo"}`, string(val))
	require.NoError(t, txn.Rollback())

	txn = store.NewTransaction(true)
	require.NoError(t, store.Delete(txn, key))
	require.NoError(t, txn.Commit())

	txn = store.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	_, err = store.Get(txn, key)
	assert.ErrorIs(t, err, types.ErrBlobKeyNotFound)
}

func TestRollbackDiscardsWrites(t *testing.T) {
	store := newTestStore(t)
	key := types.DescriptorBlobKey("gaming", 1)
	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, key, []byte("x")))
	require.NoError(t, txn.Rollback())

	// A finished transaction is rejected
	assert.Error(t, store.Set(txn, key, []byte("x")))

	txn = store.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	_, err := store.Get(txn, key)
	assert.ErrorIs(t, err, types.ErrBlobKeyNotFound)
}

func TestPrefixIterator(t *testing.T) {
	store := newTestStore(t)
	txn := store.NewTransaction(true)
	for id := range uint64(3) {
		require.NoError(t, store.Set(txn, types.DescriptorBlobKey("game", id), []byte{byte(id)}))
	}
	require.NoError(t, store.Set(txn, types.DescriptorBlobKey("gamer", 0), []byte{9}))
	require.NoError(t, txn.Commit())

	txn = store.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	prefix := types.DescriptorBlobUseCasePrefix("game")
	iter := store.NewIterator(txn, types.BlobIteratorOptions{Prefix: prefix})
	defer iter.Close()
	var ids []uint64
	for iter.Rewind(); iter.ValidForPrefix(prefix); iter.Next() {
		_, id, err := types.ParseDescriptorBlobKey(iter.Item().Key())
		require.NoError(t, err)
		ids = append(ids, id)
	}
	require.NoError(t, iter.Err())
	assert.Equal(t, []uint64{0, 1, 2}, ids)
}

func TestIteratorWithBadTxn(t *testing.T) {
	store := newTestStore(t)
	iter := store.NewIterator(nil, types.BlobIteratorOptions{})
	assert.False(t, iter.Valid())
	assert.ErrorIs(t, iter.Err(), types.ErrNilTxn)
}

func TestCommitTimestamp(t *testing.T) {
	store := newTestStore(t)
	ts, err := store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(0), ts)

	txn := store.NewTransaction(true)
	require.NoError(t, store.SetCommitTimestamp(1700000000000, txn))
	require.NoError(t, txn.Commit())
	ts, err = store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000000), ts)
}

func TestOnDisk(t *testing.T) {
	dataDir := t.TempDir()
	store, err := badger.New(
		badger.WithDataDir(dataDir),
		badger.WithGc(true),
		badger.WithPromRegistry(prometheus.NewRegistry()),
	)
	require.NoError(t, err)
	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, []byte("k"), []byte("v")))
	require.NoError(t, txn.Commit())
	require.NoError(t, store.Close())

	store, err = badger.New(badger.WithDataDir(dataDir), badger.WithGc(false))
	require.NoError(t, err)
	defer store.Close() //nolint:errcheck
	txn = store.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	val, err := store.Get(txn, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), val)
}

func TestPluginValueThreshold(t *testing.T) {
	require.NoError(
		t,
		plugin.SetPluginOption(plugin.PluginTypeBlob, "badger", "data-dir", t.TempDir()),
	)
	require.NoError(
		t,
		plugin.SetPluginOption(plugin.PluginTypeBlob, "badger", "value-threshold", 64),
	)
	t.Cleanup(func() {
		_ = plugin.SetPluginOption(plugin.PluginTypeBlob, "badger", "data-dir", ".tokenreg")
		_ = plugin.SetPluginOption(plugin.PluginTypeBlob, "badger", "value-threshold", badger.DefaultValueThreshold)
	})
	store, ok := badger.NewFromCmdlineOptions().(*badger.BlobStoreBadger)
	require.True(t, ok)
	defer store.Close() //nolint:errcheck

	// Larger than the threshold, so it is written to the value log
	payload := make([]byte, 1024)
	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, []byte("big"), payload))
	require.NoError(t, txn.Commit())
	txn = store.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	val, err := store.Get(txn, []byte("big"))
	require.NoError(t, err)
	assert.Equal(t, payload, val)
}
