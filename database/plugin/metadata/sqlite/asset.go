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

package sqlite

import (
	"errors"

	"github.com/blinklabs-io/tokenreg/database/models"
	"github.com/blinklabs-io/tokenreg/database/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetAsset gets an asset by contract and symbol code, returning nil if it does
// not exist
func (d *MetadataStoreSqlite) GetAsset(
	contract string,
	symbolCode string,
	txn types.Txn,
) (*models.Asset, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	ret := &models.Asset{}
	result := db.Where("contract = ? AND symbol_code = ?", contract, symbolCode).
		First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

func (d *MetadataStoreSqlite) GetAssets(txn types.Txn) ([]models.Asset, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.Asset
	if result := db.Order("contract, symbol_code").Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// SetAsset creates the asset or updates its issuer and supply
func (d *MetadataStoreSqlite) SetAsset(asset *models.Asset, txn types.Txn) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "contract"},
			{Name: "symbol_code"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"issuer",
			"supply",
			"max_supply",
		}),
	}).Create(asset)
	return result.Error
}
