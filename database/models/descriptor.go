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

// Descriptor holds the indexed columns of a submitted token descriptor. The
// JSON payload lives in the blob store.
type Descriptor struct {
	UseCase     string `gorm:"primaryKey;size:12;uniqueIndex:idx_descriptor_fingerprint,priority:1;index:idx_descriptor_symbol,priority:1"`
	Fingerprint []byte `gorm:"size:32;not null;uniqueIndex:idx_descriptor_fingerprint,priority:2"`
	SymbolCode  string `gorm:"size:7;index:idx_descriptor_symbol,priority:2"`
	Submitter   string `gorm:"size:12"`
	Contract    string `gorm:"size:12"`
	Chain       string `gorm:"size:12"`
	ID          uint64 `gorm:"primaryKey;autoIncrement:false"`
	Approved    bool   `gorm:"index"`
}

func (Descriptor) TableName() string {
	return "descriptor"
}
