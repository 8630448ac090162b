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
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/blinklabs-io/tokenreg/database"
	"github.com/blinklabs-io/tokenreg/database/models"
	"github.com/blinklabs-io/tokenreg/database/types"
	"github.com/blinklabs-io/tokenreg/internal/config"
	"github.com/blinklabs-io/tokenreg/registry"
	"gopkg.in/yaml.v3"
)

const loadBatchSize = 500

// SeedFile lists the accounts and assets known to the registry host. The
// account oracle and asset ledger read from these tables.
type SeedFile struct {
	Accounts []string    `yaml:"accounts"`
	Assets   []SeedAsset `yaml:"assets"`
}

type SeedAsset struct {
	Contract   string `yaml:"contract"`
	SymbolCode string `yaml:"symbol"`
	Issuer     string `yaml:"issuer"`
	Supply     uint64 `yaml:"supply"`
	MaxSupply  uint64 `yaml:"maxSupply"`
}

func (s SeedAsset) model() models.Asset {
	return models.Asset{
		Contract:   s.Contract,
		SymbolCode: s.SymbolCode,
		Issuer:     s.Issuer,
		Supply:     types.Uint64(s.Supply),
		MaxSupply:  types.Uint64(s.MaxSupply),
	}
}

// ReadSeedFile parses and validates a seed file
func ReadSeedFile(path string) (*SeedFile, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading seed file: %w", err)
	}
	var seed SeedFile
	if err := yaml.Unmarshal(buf, &seed); err != nil {
		return nil, fmt.Errorf("error parsing seed file: %w", err)
	}
	if len(seed.Accounts) == 0 && len(seed.Assets) == 0 {
		return nil, errors.New("seed file has no accounts or assets")
	}
	for _, account := range seed.Accounts {
		if account == "" {
			return nil, errors.New("seed file has an empty account name")
		}
	}
	for _, asset := range seed.Assets {
		if asset.Contract == "" {
			return nil, fmt.Errorf(
				"asset %s has no contract",
				asset.SymbolCode,
			)
		}
		if !registry.ValidSymbolCode(asset.SymbolCode) {
			return nil, fmt.Errorf(
				"asset %s@%s has an invalid symbol code",
				asset.SymbolCode,
				asset.Contract,
			)
		}
		if asset.MaxSupply > 0 && asset.Supply > asset.MaxSupply {
			return nil, fmt.Errorf(
				"asset %s@%s supply exceeds max supply",
				asset.SymbolCode,
				asset.Contract,
			)
		}
	}
	return &seed, nil
}

// Load imports the accounts and assets of a seed file into the database
func Load(cfg *config.Config, logger *slog.Logger, seedPath string) error {
	seed, err := ReadSeedFile(seedPath)
	if err != nil {
		return err
	}
	// Load database
	db, err := database.New(&database.Config{
		DataDir:        cfg.DatabasePath,
		BlobPlugin:     cfg.BlobPlugin,
		MetadataPlugin: cfg.MetadataPlugin,
		Logger:         logger,
	})
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return err
	}
	defer db.Close()
	return importSeed(db, logger, seed)
}

// Repair opens the database even when its stores are out of sync and removes
// the descriptor entries left behind by a partial commit
func Repair(cfg *config.Config, logger *slog.Logger) error {
	db, err := database.New(&database.Config{
		DataDir:        cfg.DatabasePath,
		BlobPlugin:     cfg.BlobPlugin,
		MetadataPlugin: cfg.MetadataPlugin,
		Logger:         logger,
	})
	if err != nil {
		var tsErr database.CommitTimestampError
		if db == nil || !errors.As(err, &tsErr) {
			if db != nil {
				_ = db.Close()
			}
			return err
		}
		logger.Warn(
			"repairing database",
			"component", "node",
			"error", err,
		)
	}
	defer db.Close()
	removed, err := db.Repair()
	if err != nil {
		return fmt.Errorf("repair failed: %w", err)
	}
	logger.Info(
		fmt.Sprintf("repair removed %d descriptor entries", removed),
		"component", "node",
	)
	return nil
}

func importSeed(
	db *database.Database,
	logger *slog.Logger,
	seed *SeedFile,
) error {
	logger.Info(
		fmt.Sprintf(
			"importing %d accounts and %d assets",
			len(seed.Accounts),
			len(seed.Assets),
		),
		"component", "node",
	)
	for start := 0; start < len(seed.Accounts); start += loadBatchSize {
		end := min(start+loadBatchSize, len(seed.Accounts))
		if err := db.ImportChainState(seed.Accounts[start:end], nil); err != nil {
			return fmt.Errorf("failed to import accounts: %w", err)
		}
	}
	batch := make([]models.Asset, 0, loadBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := db.ImportChainState(nil, batch); err != nil {
			return fmt.Errorf("failed to import assets: %w", err)
		}
		batch = batch[:0]
		return nil
	}
	for _, asset := range seed.Assets {
		batch = append(batch, asset.model())
		if len(batch) == cap(batch) {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}
	logger.Info("finished import", "component", "node")
	return nil
}
