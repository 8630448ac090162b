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

package models

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/tokenreg/database/types"
)

var ErrAssetNotFound = errors.New("asset not found")

// Asset is a token issued by a contract account
type Asset struct {
	Contract   string       `gorm:"uniqueIndex:idx_asset_contract_symbol;size:12"`
	SymbolCode string       `gorm:"uniqueIndex:idx_asset_contract_symbol;size:7"`
	Issuer     string       `gorm:"size:12"`
	ID         uint         `gorm:"primaryKey"`
	Supply     types.Uint64 `gorm:"not null"`
	MaxSupply  types.Uint64 `gorm:"not null"`
}

func (Asset) TableName() string {
	return "asset"
}

// String returns the extended symbol form, e.g. TOK@token.seeds
func (a Asset) String() string {
	return fmt.Sprintf("%s@%s", a.SymbolCode, a.Contract)
}
