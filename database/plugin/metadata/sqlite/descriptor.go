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
	"fmt"

	"github.com/blinklabs-io/tokenreg/database/models"
	"github.com/blinklabs-io/tokenreg/database/types"
)

// GetDescriptors returns all descriptors ordered by use case and ID
func (d *MetadataStoreSqlite) GetDescriptors(
	txn types.Txn,
) ([]models.Descriptor, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.Descriptor
	if result := db.Order("use_case, id").Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// GetDescriptorsBySymbol returns the descriptors of a use case with the given
// symbol code
func (d *MetadataStoreSqlite) GetDescriptorsBySymbol(
	useCase string,
	symbolCode string,
	txn types.Txn,
) ([]models.Descriptor, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.Descriptor
	result := db.Where("use_case = ? AND symbol_code = ?", useCase, symbolCode).
		Order("id").
		Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

func (d *MetadataStoreSqlite) AddDescriptor(
	descriptor *models.Descriptor,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Create(descriptor).Error
}

func (d *MetadataStoreSqlite) ApproveDescriptor(
	useCase string,
	id uint64,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Model(&models.Descriptor{}).
		Where("use_case = ? AND id = ?", useCase, id).
		Update("approved", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("descriptor %s/%d not found", useCase, id)
	}
	return nil
}

func (d *MetadataStoreSqlite) DeleteDescriptor(
	useCase string,
	id uint64,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Where("use_case = ? AND id = ?", useCase, id).
		Delete(&models.Descriptor{}).Error
}

func (d *MetadataStoreSqlite) DeleteDescriptorsByUseCase(
	useCase string,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Where("use_case = ?", useCase).
		Delete(&models.Descriptor{}).Error
}
