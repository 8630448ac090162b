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
	"context"
	"errors"
	"fmt"

	"github.com/blinklabs-io/tokenreg/database/models"
	"github.com/blinklabs-io/tokenreg/database/types"
	"github.com/blinklabs-io/tokenreg/registry"
)

// Load reads the full registry state
func (d *Database) Load(_ context.Context) (*registry.Snapshot, error) {
	useCases, err := d.metadata.GetUseCases(nil)
	if err != nil {
		return nil, fmt.Errorf("load use cases: %w", err)
	}
	descriptors, err := d.metadata.GetDescriptors(nil)
	if err != nil {
		return nil, fmt.Errorf("load descriptors: %w", err)
	}
	ret := &registry.Snapshot{
		UseCases:    make([]registry.UseCase, 0, len(useCases)),
		Descriptors: make([]registry.Descriptor, 0, len(descriptors)),
	}
	for _, uc := range useCases {
		ret.UseCases = append(ret.UseCases, registry.UseCase{
			ID:      uc.ID,
			Manager: uc.Manager,
			Policy: registry.Policy{
				AllowedChain:   uc.AllowedChain,
				RequiredFields: uc.RequiredFields,
				UniqueSymbols:  uc.UniqueSymbols,
			},
		})
	}
	txn := d.Transaction(false)
	defer txn.Release()
	for _, tmpDescriptor := range descriptors {
		fp, err := registry.FingerprintFromBytes(tmpDescriptor.Fingerprint)
		if err != nil {
			return nil, fmt.Errorf(
				"descriptor %s/%d: %w",
				tmpDescriptor.UseCase,
				tmpDescriptor.ID,
				err,
			)
		}
		payload, err := d.blob.Get(
			txn.Blob(),
			types.DescriptorBlobKey(tmpDescriptor.UseCase, tmpDescriptor.ID),
		)
		if err != nil {
			return nil, fmt.Errorf(
				"descriptor %s/%d payload: %w",
				tmpDescriptor.UseCase,
				tmpDescriptor.ID,
				err,
			)
		}
		ret.Descriptors = append(ret.Descriptors, registry.Descriptor{
			ID:          tmpDescriptor.ID,
			Submitter:   tmpDescriptor.Submitter,
			UseCase:     tmpDescriptor.UseCase,
			Contract:    tmpDescriptor.Contract,
			SymbolCode:  tmpDescriptor.SymbolCode,
			Chain:       tmpDescriptor.Chain,
			JSON:        string(payload),
			Fingerprint: fp,
			Approved:    tmpDescriptor.Approved,
		})
	}
	return ret, nil
}

// Apply persists a batch of registry changes in a single transaction
func (d *Database) Apply(_ context.Context, changes []registry.Change) error {
	txn := d.Transaction(true)
	return txn.Do(func(txn *Txn) error {
		for _, change := range changes {
			if err := d.applyChange(txn, change); err != nil {
				return fmt.Errorf("%s: %w", change.Type, err)
			}
		}
		return nil
	})
}

func (d *Database) applyChange(txn *Txn, change registry.Change) error {
	switch change.Type {
	case registry.ChangePutUseCase:
		uc := change.UseCase
		return d.metadata.SetUseCase(
			&models.UseCase{
				ID:             uc.ID,
				Manager:        uc.Manager,
				AllowedChain:   uc.AllowedChain,
				RequiredFields: uc.RequiredFields,
				UniqueSymbols:  uc.UniqueSymbols,
			},
			txn.Metadata(),
		)
	case registry.ChangeDeleteUseCase:
		return d.metadata.DeleteUseCase(change.UseCaseID, txn.Metadata())
	case registry.ChangeAddDescriptor:
		desc := change.Descriptor
		if err := d.metadata.AddDescriptor(
			&models.Descriptor{
				UseCase:     desc.UseCase,
				ID:          desc.ID,
				Fingerprint: desc.Fingerprint.Bytes(),
				SymbolCode:  desc.SymbolCode,
				Submitter:   desc.Submitter,
				Contract:    desc.Contract,
				Chain:       desc.Chain,
				Approved:    desc.Approved,
			},
			txn.Metadata(),
		); err != nil {
			return err
		}
		return d.blob.Set(
			txn.Blob(),
			types.DescriptorBlobKey(desc.UseCase, desc.ID),
			[]byte(desc.JSON),
		)
	case registry.ChangeApproveDescriptor:
		return d.metadata.ApproveDescriptor(
			change.UseCaseID,
			change.Descriptor.ID,
			txn.Metadata(),
		)
	case registry.ChangeDeleteDescriptor:
		if err := d.metadata.DeleteDescriptor(
			change.UseCaseID,
			change.Descriptor.ID,
			txn.Metadata(),
		); err != nil {
			return err
		}
		return d.blob.Delete(
			txn.Blob(),
			types.DescriptorBlobKey(change.UseCaseID, change.Descriptor.ID),
		)
	case registry.ChangeDeleteUseCaseDescriptors:
		if err := d.metadata.DeleteDescriptorsByUseCase(
			change.UseCaseID,
			txn.Metadata(),
		); err != nil {
			return err
		}
		return d.deleteDescriptorPayloads(txn, change.UseCaseID)
	default:
		return fmt.Errorf("unknown change type %d", change.Type)
	}
}

func (d *Database) deleteDescriptorPayloads(txn *Txn, useCase string) error {
	prefix := types.DescriptorBlobUseCasePrefix(useCase)
	iter := d.blob.NewIterator(
		txn.Blob(),
		types.BlobIteratorOptions{Prefix: prefix},
	)
	var keys [][]byte
	for iter.Rewind(); iter.ValidForPrefix(prefix); iter.Next() {
		keys = append(keys, iter.Item().Key())
	}
	err := iter.Err()
	iter.Close()
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := d.blob.Delete(txn.Blob(), key); err != nil {
			return err
		}
	}
	return nil
}

// IsAccount reports whether an account with the given name exists
func (d *Database) IsAccount(_ context.Context, account string) (bool, error) {
	tmpAccount, err := d.metadata.GetAccount(account, nil)
	if err != nil {
		return false, err
	}
	return tmpAccount != nil, nil
}

// AssetExists reports whether the contract has issued the symbol
func (d *Database) AssetExists(
	_ context.Context,
	contract string,
	symbolCode string,
) (bool, error) {
	asset, err := d.metadata.GetAsset(contract, symbolCode, nil)
	if err != nil {
		return false, err
	}
	return asset != nil, nil
}

// Account returns the named account
func (d *Database) Account(name string) (*models.Account, error) {
	account, err := d.metadata.GetAccount(name, nil)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, models.ErrAccountNotFound
	}
	return account, nil
}

// Accounts returns all known accounts ordered by name
func (d *Database) Accounts() ([]models.Account, error) {
	return d.metadata.GetAccounts(nil)
}

// Assets returns all known assets ordered by contract and symbol
func (d *Database) Assets() ([]models.Asset, error) {
	return d.metadata.GetAssets(nil)
}

// Asset returns the asset issued by contract with the given symbol
func (d *Database) Asset(contract string, symbolCode string) (*models.Asset, error) {
	asset, err := d.metadata.GetAsset(contract, symbolCode, nil)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, models.ErrAssetNotFound
	}
	return asset, nil
}

// ImportChainState saves accounts and assets in a single transaction. Existing
// accounts are kept and existing assets are updated.
func (d *Database) ImportChainState(
	accounts []string,
	assets []models.Asset,
) error {
	if len(accounts) == 0 && len(assets) == 0 {
		return errors.New("nothing to import")
	}
	txn := d.Transaction(true)
	return txn.Do(func(txn *Txn) error {
		for _, account := range accounts {
			if err := d.metadata.SetAccount(account, txn.Metadata()); err != nil {
				return fmt.Errorf("account %s: %w", account, err)
			}
		}
		for i := range assets {
			if err := d.metadata.SetAsset(&assets[i], txn.Metadata()); err != nil {
				return fmt.Errorf("asset %s: %w", assets[i].String(), err)
			}
		}
		return nil
	})
}
