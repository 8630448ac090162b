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

package registry

import "strings"

// MaxJSONLength is the largest descriptor payload accepted, in bytes
const MaxJSONLength = 2048

const (
	// MaxChainLength is the longest allowed chain name
	MaxChainLength = 12
	// MaxFieldNameLength is the longest allowed required field name
	MaxFieldNameLength = 12
	// MaxSymbolCodeLength is the longest valid symbol code
	MaxSymbolCodeLength = 7

	// fieldNameCharset is the account name alphabet. Field names are held to
	// it for compatibility, which means JSON keys using other characters can
	// never be required.
	fieldNameCharset = ".12345abcdefghijklmnopqrstuvwxyz"
)

// Policy is the submission policy of a use case
type Policy struct {
	AllowedChain   string
	RequiredFields string
	UniqueSymbols  bool
}

// UseCase is a namespace of descriptors with its own manager and policy
type UseCase struct {
	ID      string
	Manager string
	Policy
}

// FieldList returns the required field names of the use case
func (u UseCase) FieldList() []string {
	return ParseFields(u.RequiredFields)
}

// Key is the identifying tuple of a descriptor. Its fingerprint is the
// deduplication key within a use case.
type Key struct {
	Submitter  string
	UseCase    string
	Chain      string
	Contract   string
	SymbolCode string
}

// Descriptor is a submitted token metadata record
type Descriptor struct {
	Submitter   string
	UseCase     string
	Contract    string
	SymbolCode  string
	Chain       string
	JSON        string
	ID          uint64
	Fingerprint Fingerprint
	Approved    bool
}

// Key returns the identifying tuple of the descriptor
func (d *Descriptor) Key() Key {
	return Key{
		Submitter:  d.Submitter,
		UseCase:    d.UseCase,
		Chain:      d.Chain,
		Contract:   d.Contract,
		SymbolCode: d.SymbolCode,
	}
}

// ParseFields splits a space-separated field list, dropping empty entries
func ParseFields(fields string) []string {
	return strings.Fields(fields)
}

// ValidSymbolCode reports whether code is 1-7 upper case letters
func ValidSymbolCode(code string) bool {
	if len(code) == 0 || len(code) > MaxSymbolCodeLength {
		return false
	}
	for i := range len(code) {
		if code[i] < 'A' || code[i] > 'Z' {
			return false
		}
	}
	return true
}

func validateChain(chain string) error {
	if len(chain) > MaxChainLength {
		return NewError(KindInvalidArgument, "chain name too long")
	}
	return nil
}

func validateFields(fields string) error {
	nameLength := 0
	for i := range len(fields) {
		c := fields[i]
		if c == ' ' {
			nameLength = 0
			continue
		}
		if strings.IndexByte(fieldNameCharset, c) < 0 {
			return NewError(KindInvalidArgument, "invalid field name")
		}
		nameLength++
		if nameLength > MaxFieldNameLength {
			return NewError(KindInvalidArgument, "field name too long")
		}
	}
	return nil
}
