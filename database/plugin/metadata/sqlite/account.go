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
	"fmt"

	"github.com/blinklabs-io/tokenreg/database/models"
	"github.com/blinklabs-io/tokenreg/database/types"
	"gorm.io/gorm"
)

// GetAccount gets an account, returning nil if it does not exist
func (d *MetadataStoreSqlite) GetAccount(
	name string,
	txn types.Txn,
) (*models.Account, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	ret := &models.Account{}
	result := db.Where("name = ?", name).First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

func (d *MetadataStoreSqlite) GetAccounts(txn types.Txn) ([]models.Account, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.Account
	if result := db.Order("name").Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// SetAccount saves an account if it does not already exist
func (d *MetadataStoreSqlite) SetAccount(name string, txn types.Txn) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	account := &models.Account{}
	result := db.FirstOrCreate(account, models.Account{Name: name})
	if result.Error != nil {
		return fmt.Errorf("failed to find or create account: %w", result.Error)
	}
	return nil
}
