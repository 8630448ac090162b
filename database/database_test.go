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

package database_test

import (
	"context"
	"testing"

	"github.com/blinklabs-io/tokenreg/auth"
	"github.com/blinklabs-io/tokenreg/database"
	"github.com/blinklabs-io/tokenreg/database/models"
	"github.com/blinklabs-io/tokenreg/database/types"
	"github.com/blinklabs-io/tokenreg/registry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPayload = `{"name":"Foo","symbol":"TOK"}`

func newTestDatabase(t *testing.T, dataDir string) *database.Database {
	t.Helper()
	db, err := database.New(&database.Config{
		DataDir:      dataDir,
		PromRegistry: prometheus.NewRegistry(),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close() //nolint:errcheck
	})
	return db
}

func seedChainState(t *testing.T, db *database.Database) {
	t.Helper()
	require.NoError(
		t,
		db.ImportChainState(
			[]string{"tokensmaster", "manager", "submitter", "token.seeds"},
			[]models.Asset{
				{Contract: "token.seeds", SymbolCode: "TOK", Issuer: "submitter", MaxSupply: 1000},
				{Contract: "token.seeds", SymbolCode: "SEED", Issuer: "submitter", MaxSupply: 1000},
			},
		),
	)
}

func testDescriptor(id uint64, symbol string) *registry.Descriptor {
	key := registry.Key{
		Submitter:  "submitter",
		UseCase:    "gaming",
		Chain:      "eth",
		Contract:   "token.seeds",
		SymbolCode: symbol,
	}
	return &registry.Descriptor{
		ID:          id,
		Submitter:   key.Submitter,
		UseCase:     key.UseCase,
		Contract:    key.Contract,
		SymbolCode:  key.SymbolCode,
		Chain:       key.Chain,
		JSON:        testPayload,
		Fingerprint: key.Fingerprint(registry.HasherSHA256),
	}
}

func TestChainState(t *testing.T) {
	db := newTestDatabase(t, "")
	ctx := context.Background()
	seedChainState(t, db)

	ok, err := db.IsAccount(ctx, "manager")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = db.IsAccount(ctx, "nobody")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = db.AssetExists(ctx, "token.seeds", "TOK")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = db.AssetExists(ctx, "token.seeds", "NOPE")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = db.Account("nobody")
	assert.ErrorIs(t, err, models.ErrAccountNotFound)
	_, err = db.Asset("token.seeds", "NOPE")
	assert.ErrorIs(t, err, models.ErrAssetNotFound)
	asset, err := db.Asset("token.seeds", "SEED")
	require.NoError(t, err)
	assert.Equal(t, types.Uint64(1000), asset.MaxSupply)

	accounts, err := db.Accounts()
	require.NoError(t, err)
	assert.Len(t, accounts, 4)
	assets, err := db.Assets()
	require.NoError(t, err)
	assert.Len(t, assets, 2)

	assert.Error(t, db.ImportChainState(nil, nil))
}

func TestApplyAndLoad(t *testing.T) {
	db := newTestDatabase(t, "")
	ctx := context.Background()
	useCase := &registry.UseCase{
		ID:      "gaming",
		Manager: "manager",
		Policy:  registry.Policy{AllowedChain: "eth", UniqueSymbols: true},
	}
	require.NoError(t, db.Apply(ctx, []registry.Change{
		{Type: registry.ChangePutUseCase, UseCaseID: "gaming", UseCase: useCase},
		{Type: registry.ChangeAddDescriptor, UseCaseID: "gaming", Descriptor: testDescriptor(0, "TOK")},
		{Type: registry.ChangeAddDescriptor, UseCaseID: "gaming", Descriptor: testDescriptor(1, "SEED")},
		{Type: registry.ChangeApproveDescriptor, UseCaseID: "gaming", Descriptor: testDescriptor(1, "SEED")},
	}))

	snapshot, err := db.Load(ctx)
	require.NoError(t, err)
	require.Len(t, snapshot.UseCases, 1)
	assert.Equal(t, *useCase, snapshot.UseCases[0])
	require.Len(t, snapshot.Descriptors, 2)
	assert.Equal(t, *testDescriptor(0, "TOK"), snapshot.Descriptors[0])
	assert.True(t, snapshot.Descriptors[1].Approved)
	assert.Equal(t, testPayload, snapshot.Descriptors[1].JSON)

	require.NoError(t, db.Apply(ctx, []registry.Change{
		{Type: registry.ChangeDeleteDescriptor, UseCaseID: "gaming", Descriptor: testDescriptor(0, "TOK")},
	}))
	snapshot, err = db.Load(ctx)
	require.NoError(t, err)
	require.Len(t, snapshot.Descriptors, 1)
	assert.Equal(t, uint64(1), snapshot.Descriptors[0].ID)

	require.NoError(t, db.Apply(ctx, []registry.Change{
		{Type: registry.ChangeDeleteUseCaseDescriptors, UseCaseID: "gaming"},
		{Type: registry.ChangeDeleteUseCase, UseCaseID: "gaming"},
	}))
	snapshot, err = db.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, snapshot.UseCases)
	assert.Empty(t, snapshot.Descriptors)

	// Payloads are gone from the blob store too
	txn := db.Transaction(false)
	defer txn.Release()
	_, err = db.Blob().Get(txn.Blob(), types.DescriptorBlobKey("gaming", 1))
	assert.ErrorIs(t, err, types.ErrBlobKeyNotFound)
}

func TestApplyIsAtomic(t *testing.T) {
	db := newTestDatabase(t, "")
	ctx := context.Background()
	useCase := &registry.UseCase{ID: "gaming", Manager: "manager"}
	require.NoError(t, db.Apply(ctx, []registry.Change{
		{Type: registry.ChangePutUseCase, UseCaseID: "gaming", UseCase: useCase},
		{Type: registry.ChangeAddDescriptor, UseCaseID: "gaming", Descriptor: testDescriptor(0, "TOK")},
	}))

	// The second change fails on the duplicate fingerprint
	dup := testDescriptor(5, "TOK")
	err := db.Apply(ctx, []registry.Change{
		{Type: registry.ChangeAddDescriptor, UseCaseID: "gaming", Descriptor: testDescriptor(1, "SEED")},
		{Type: registry.ChangeAddDescriptor, UseCaseID: "gaming", Descriptor: dup},
	})
	require.Error(t, err)

	snapshot, err := db.Load(ctx)
	require.NoError(t, err)
	require.Len(t, snapshot.Descriptors, 1)
	txn := db.Transaction(false)
	defer txn.Release()
	_, err = db.Blob().Get(txn.Blob(), types.DescriptorBlobKey("gaming", 1))
	assert.ErrorIs(t, err, types.ErrBlobKeyNotFound)
}

func TestCommitTimestampsMatch(t *testing.T) {
	db := newTestDatabase(t, "")
	seedChainState(t, db)
	metadataTimestamp, err := db.Metadata().GetCommitTimestamp()
	require.NoError(t, err)
	blobTimestamp, err := db.Blob().GetCommitTimestamp()
	require.NoError(t, err)
	assert.Positive(t, metadataTimestamp)
	assert.Equal(t, metadataTimestamp, blobTimestamp)
}

func TestCommitTimestampMismatch(t *testing.T) {
	dataDir := t.TempDir()
	db, err := database.New(&database.Config{DataDir: dataDir})
	require.NoError(t, err)
	seedChainState(t, db)
	// Advance only the blob store
	txn := db.Blob().NewTransaction(true)
	require.NoError(t, db.Blob().SetCommitTimestamp(1, txn))
	require.NoError(t, txn.Commit())
	require.NoError(t, db.Close())

	db, err = database.New(&database.Config{DataDir: dataDir})
	require.NotNil(t, db)
	defer db.Close() //nolint:errcheck
	var tsErr database.CommitTimestampError
	require.ErrorAs(t, err, &tsErr)
	assert.Equal(t, int64(1), tsErr.BlobTimestamp)
}

func TestRegistryPersistence(t *testing.T) {
	dataDir := t.TempDir()
	db, err := database.New(&database.Config{DataDir: dataDir})
	require.NoError(t, err)
	seedChainState(t, db)

	newRegistry := func(db *database.Database) *registry.Registry {
		r, err := registry.New(
			context.Background(),
			"tokensmaster",
			registry.WithAuthorizer(auth.CallerAuthorizer{}),
			registry.WithAccountOracle(db),
			registry.WithAssetLookup(db),
			registry.WithStore(db),
		)
		require.NoError(t, err)
		return r
	}
	root := auth.WithCaller(context.Background(), "tokensmaster")
	manager := auth.WithCaller(context.Background(), "manager")
	submitter := auth.WithCaller(context.Background(), "submitter")
	key := registry.Key{
		Submitter:  "submitter",
		UseCase:    "gaming",
		Chain:      "eth",
		Contract:   "token.seeds",
		SymbolCode: "TOK",
	}

	r := newRegistry(db)
	require.NoError(t, r.CreateNamespace(root, "gaming", "manager"))
	require.NoError(t, r.SetPolicy(manager, "gaming", true, "eth", "name symbol"))
	_, err = r.Submit(submitter, key, testPayload)
	require.NoError(t, err)
	require.NoError(t, r.Approve(manager, key, true))
	require.NoError(t, db.Close())

	db, err = database.New(&database.Config{DataDir: dataDir})
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck
	r = newRegistry(db)
	d, ok := r.DescriptorByKey(key)
	require.True(t, ok)
	assert.True(t, d.Approved)
	assert.Equal(t, testPayload, d.JSON)
	uc, ok := r.UseCase("gaming")
	require.True(t, ok)
	assert.Equal(t, "name symbol", uc.RequiredFields)

	require.NoError(t, r.ResetAll(root))
	snapshot, err := db.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snapshot.UseCases)
	assert.Empty(t, snapshot.Descriptors)
}

func TestRepairAfterPartialCommit(t *testing.T) {
	dataDir := t.TempDir()
	db, err := database.New(&database.Config{DataDir: dataDir})
	require.NoError(t, err)
	useCase := &registry.UseCase{ID: "gaming", Manager: "manager"}
	require.NoError(t, db.Apply(context.Background(), []registry.Change{
		{Type: registry.ChangePutUseCase, UseCaseID: "gaming", UseCase: useCase},
		{Type: registry.ChangeAddDescriptor, UseCaseID: "gaming", Descriptor: testDescriptor(0, "TOK")},
		{Type: registry.ChangeAddDescriptor, UseCaseID: "gaming", Descriptor: testDescriptor(1, "SEED")},
	}))
	// Blob side of a delete and an add committed, metadata side lost
	txn := db.Blob().NewTransaction(true)
	require.NoError(t, db.Blob().Delete(txn, types.DescriptorBlobKey("gaming", 0)))
	require.NoError(t, db.Blob().Set(txn, types.DescriptorBlobKey("gaming", 2), []byte(testPayload)))
	require.NoError(t, db.Blob().SetCommitTimestamp(1, txn))
	require.NoError(t, txn.Commit())
	require.NoError(t, db.Close())

	db, err = database.New(&database.Config{DataDir: dataDir})
	require.NotNil(t, db)
	var tsErr database.CommitTimestampError
	require.ErrorAs(t, err, &tsErr)
	_, err = db.Load(context.Background())
	require.ErrorIs(t, err, types.ErrBlobKeyNotFound)

	removed, err := db.Repair()
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	snapshot, err := db.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, snapshot.Descriptors, 1)
	assert.Equal(t, uint64(1), snapshot.Descriptors[0].ID)
	require.NoError(t, db.Close())

	db, err = database.New(&database.Config{DataDir: dataDir})
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck
	removed, err = db.Repair()
	require.NoError(t, err)
	assert.Zero(t, removed)
}
