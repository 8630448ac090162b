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

package metadata

import (
	"fmt"

	"github.com/blinklabs-io/tokenreg/database/models"
	"github.com/blinklabs-io/tokenreg/database/plugin"
	"github.com/blinklabs-io/tokenreg/database/types"
	"gorm.io/gorm"
)

type MetadataStore interface {
	// Database
	Close() error
	DB() *gorm.DB
	GetCommitTimestamp() (int64, error)
	SetCommitTimestamp(int64, types.Txn) error
	Transaction() types.Txn

	// Registry
	GetUseCases(types.Txn) ([]models.UseCase, error)
	SetUseCase(*models.UseCase, types.Txn) error
	DeleteUseCase(
		string, // id
		types.Txn,
	) error
	GetDescriptors(types.Txn) ([]models.Descriptor, error)
	GetDescriptorsBySymbol(
		string, // useCase
		string, // symbolCode
		types.Txn,
	) ([]models.Descriptor, error)
	AddDescriptor(*models.Descriptor, types.Txn) error
	ApproveDescriptor(
		string, // useCase
		uint64, // id
		types.Txn,
	) error
	DeleteDescriptor(
		string, // useCase
		uint64, // id
		types.Txn,
	) error
	DeleteDescriptorsByUseCase(
		string, // useCase
		types.Txn,
	) error

	// Chain state
	GetAccount(
		string, // name
		types.Txn,
	) (*models.Account, error)
	GetAccounts(types.Txn) ([]models.Account, error)
	SetAccount(
		string, // name
		types.Txn,
	) error
	GetAsset(
		string, // contract
		string, // symbolCode
		types.Txn,
	) (*models.Asset, error)
	GetAssets(types.Txn) ([]models.Asset, error)
	SetAsset(*models.Asset, types.Txn) error
}

// New returns the started metadata plugin selected by name
func New(pluginName string) (MetadataStore, error) {
	p, err := plugin.StartPlugin(plugin.PluginTypeMetadata, pluginName)
	if err != nil {
		return nil, err
	}
	metadataStore, ok := p.(MetadataStore)
	if !ok {
		return nil, fmt.Errorf(
			"plugin '%s' does not implement MetadataStore interface",
			pluginName,
		)
	}
	return metadataStore, nil
}
