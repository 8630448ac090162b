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

package node

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blinklabs-io/tokenreg/database"
	"github.com/blinklabs-io/tokenreg/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func writeFile(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const testSeed = `
accounts:
  - tokensmaster
  - manager
  - token.seeds
assets:
  - contract: token.seeds
    symbol: SEED
    issuer: token.seeds
    supply: 1000
    maxSupply: 10000
`

func TestReadSeedFile(t *testing.T) {
	seed, err := ReadSeedFile(writeFile(t, "seed.yaml", testSeed))
	require.NoError(t, err)
	assert.Equal(t, []string{"tokensmaster", "manager", "token.seeds"}, seed.Accounts)
	require.Len(t, seed.Assets, 1)
	assert.Equal(t, "SEED", seed.Assets[0].SymbolCode)
	assert.Equal(t, uint64(10000), seed.Assets[0].MaxSupply)
}

func TestReadSeedFileInvalid(t *testing.T) {
	tests := map[string]string{
		"empty":         "accounts: []\n",
		"blank account": "accounts: [\"\"]\n",
		"no contract":   "assets:\n  - symbol: TOK\n",
		"bad symbol":    "assets:\n  - contract: c\n    symbol: tok\n",
		"over supply":   "assets:\n  - contract: c\n    symbol: TOK\n    supply: 2\n    maxSupply: 1\n",
		"not yaml":      "accounts: [",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadSeedFile(writeFile(t, "seed.yaml", content))
			assert.Error(t, err)
		})
	}
}

func TestImportSeedBatches(t *testing.T) {
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	defer db.Close()

	seed := &SeedFile{}
	for i := range loadBatchSize + 10 {
		seed.Accounts = append(seed.Accounts, fmt.Sprintf("acct%d", i))
	}
	for i := range loadBatchSize + 3 {
		seed.Assets = append(seed.Assets, SeedAsset{
			Contract:   "token.seeds",
			SymbolCode: "T" + strings.ToUpper(fmt.Sprintf("%x", i)),
			Supply:     uint64(i),
		})
	}
	require.NoError(t, importSeed(db, discardLogger(), seed))

	accounts, err := db.Accounts()
	require.NoError(t, err)
	assert.Len(t, accounts, loadBatchSize+10)
	assets, err := db.Assets()
	require.NoError(t, err)
	assert.Len(t, assets, loadBatchSize+3)
}

func TestLoadOnDisk(t *testing.T) {
	dataDir := t.TempDir()
	cfg := &config.Config{DatabasePath: dataDir}
	require.NoError(t, Load(cfg, discardLogger(), writeFile(t, "seed.yaml", testSeed)))

	db, err := database.New(&database.Config{DataDir: dataDir})
	require.NoError(t, err)
	defer db.Close()
	asset, err := db.Asset("token.seeds", "SEED")
	require.NoError(t, err)
	require.NotNil(t, asset)
	assert.Equal(t, "token.seeds", asset.Issuer)
	ok, err := db.IsAccount(t.Context(), "manager")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRepairResyncsStores(t *testing.T) {
	dataDir := t.TempDir()
	cfg := &config.Config{DatabasePath: dataDir}
	require.NoError(t, Load(cfg, discardLogger(), writeFile(t, "seed.yaml", testSeed)))

	db, err := database.New(&database.Config{DataDir: dataDir})
	require.NoError(t, err)
	txn := db.Blob().NewTransaction(true)
	require.NoError(t, db.Blob().SetCommitTimestamp(1, txn))
	require.NoError(t, txn.Commit())
	require.NoError(t, db.Close())

	require.NoError(t, Repair(cfg, discardLogger()))
	db, err = database.New(&database.Config{DataDir: dataDir})
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestJwtSecret(t *testing.T) {
	secret, err := JwtSecret(&config.Config{JwtSecret: "inline"})
	require.NoError(t, err)
	assert.Equal(t, []byte("inline"), secret)

	path := writeFile(t, "jwt.secret", "from-file\n")
	secret, err = JwtSecret(&config.Config{JwtSecretFile: path})
	require.NoError(t, err)
	assert.Equal(t, []byte("from-file"), secret)

	_, err = JwtSecret(&config.Config{})
	assert.ErrorIs(t, err, ErrNoJwtSecret)
}
