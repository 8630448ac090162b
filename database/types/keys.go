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

package types

import (
	"encoding/binary"
	"errors"
	"slices"
)

const (
	// DescriptorBlobKeyPrefix prefixes the stored JSON payload of a descriptor
	DescriptorBlobKeyPrefix = "dj"
	// descriptorBlobKeySeparator ends the use case ID. Use case IDs are account
	// names and cannot contain it.
	descriptorBlobKeySeparator = 0x00
)

var ErrInvalidBlobKey = errors.New("invalid descriptor blob key")

func blobKeyUint64ToBytes(input uint64) []byte {
	ret := make([]byte, 8)
	binary.BigEndian.PutUint64(ret, input)
	return ret
}

// DescriptorBlobUseCasePrefix returns the key prefix shared by all descriptor
// payloads of a use case
func DescriptorBlobUseCasePrefix(useCase string) []byte {
	return slices.Concat(
		[]byte(DescriptorBlobKeyPrefix),
		[]byte(useCase),
		[]byte{descriptorBlobKeySeparator},
	)
}

func DescriptorBlobKey(useCase string, id uint64) []byte {
	return slices.Concat(
		DescriptorBlobUseCasePrefix(useCase),
		blobKeyUint64ToBytes(id),
	)
}

// ParseDescriptorBlobKey is the inverse of DescriptorBlobKey
func ParseDescriptorBlobKey(key []byte) (string, uint64, error) {
	prefixLen := len(DescriptorBlobKeyPrefix)
	if len(key) < prefixLen+1+8 ||
		string(key[:prefixLen]) != DescriptorBlobKeyPrefix {
		return "", 0, ErrInvalidBlobKey
	}
	sepIdx := len(key) - 9
	if key[sepIdx] != descriptorBlobKeySeparator {
		return "", 0, ErrInvalidBlobKey
	}
	useCase := string(key[prefixLen:sepIdx])
	id := binary.BigEndian.Uint64(key[sepIdx+1:])
	return useCase, id, nil
}
