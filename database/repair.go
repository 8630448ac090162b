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

package database

import (
	"errors"

	"github.com/blinklabs-io/tokenreg/database/types"
)

// Repair brings the metadata and blob stores back in line after a partial
// commit. Descriptor rows without a payload and payloads without a row are
// removed, and the commit writes a fresh timestamp to both stores. It returns
// the number of removed entries.
func (d *Database) Repair() (int, error) {
	removed := 0
	txn := d.Transaction(true)
	err := txn.Do(func(txn *Txn) error {
		descriptors, err := d.metadata.GetDescriptors(txn.Metadata())
		if err != nil {
			return err
		}
		rows := make(map[string]struct{}, len(descriptors))
		for _, tmpDescriptor := range descriptors {
			key := types.DescriptorBlobKey(tmpDescriptor.UseCase, tmpDescriptor.ID)
			_, err := d.blob.Get(txn.Blob(), key)
			if err == nil {
				rows[string(key)] = struct{}{}
				continue
			}
			if !errors.Is(err, types.ErrBlobKeyNotFound) {
				return err
			}
			d.logger.Warn(
				"removing descriptor without payload",
				"use_case", tmpDescriptor.UseCase,
				"id", tmpDescriptor.ID,
			)
			if err := d.metadata.DeleteDescriptor(
				tmpDescriptor.UseCase,
				tmpDescriptor.ID,
				txn.Metadata(),
			); err != nil {
				return err
			}
			removed++
		}
		prefix := []byte(types.DescriptorBlobKeyPrefix)
		iter := d.blob.NewIterator(
			txn.Blob(),
			types.BlobIteratorOptions{Prefix: prefix},
		)
		var orphans [][]byte
		for iter.Rewind(); iter.ValidForPrefix(prefix); iter.Next() {
			key := iter.Item().Key()
			if _, ok := rows[string(key)]; !ok {
				orphans = append(orphans, key)
			}
		}
		err = iter.Err()
		iter.Close()
		if err != nil {
			return err
		}
		for _, key := range orphans {
			d.logger.Warn("removing orphaned descriptor payload", "key", key)
			if err := d.blob.Delete(txn.Blob(), key); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
