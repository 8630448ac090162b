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
	"github.com/blinklabs-io/tokenreg/database/models"
	"github.com/blinklabs-io/tokenreg/database/types"
	"gorm.io/gorm/clause"
)

// GetUseCases returns all use cases ordered by ID
func (d *MetadataStoreSqlite) GetUseCases(
	txn types.Txn,
) ([]models.UseCase, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.UseCase
	if result := db.Order("id").Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// SetUseCase creates the use case or replaces its manager and policy
func (d *MetadataStoreSqlite) SetUseCase(
	useCase *models.UseCase,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"manager",
			"allowed_chain",
			"required_fields",
			"unique_symbols",
		}),
	}).Create(useCase)
	return result.Error
}

func (d *MetadataStoreSqlite) DeleteUseCase(id string, txn types.Txn) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&models.UseCase{}).Error
}
