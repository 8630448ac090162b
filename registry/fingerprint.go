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

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
)

// FingerprintSize is the length of a fingerprint in bytes
const FingerprintSize = 32

// Fingerprint identifies a descriptor key within a use case
type Fingerprint [FingerprintSize]byte

func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// Bytes returns a copy of the fingerprint as a byte slice
func (f Fingerprint) Bytes() []byte {
	ret := make([]byte, FingerprintSize)
	copy(ret, f[:])
	return ret
}

// FingerprintFromBytes converts a stored fingerprint back to its array form
func FingerprintFromBytes(data []byte) (Fingerprint, error) {
	var ret Fingerprint
	if len(data) != FingerprintSize {
		return ret, fmt.Errorf(
			"invalid fingerprint length: %d",
			len(data),
		)
	}
	copy(ret[:], data)
	return ret, nil
}

// Hasher produces a fingerprint from the encoded descriptor key
type Hasher func([]byte) Fingerprint

// HasherSHA256 is the default fingerprint hash
func HasherSHA256(data []byte) Fingerprint {
	return sha256.Sum256(data)
}

func HasherBlake2b(data []byte) Fingerprint {
	return blake2b.Sum256(data)
}

func HasherBlake3(data []byte) Fingerprint {
	return blake3.Sum256(data)
}

// HasherByName returns the fingerprint hash registered under name
func HasherByName(name string) (Hasher, error) {
	switch name {
	case "", "sha256":
		return HasherSHA256, nil
	case "blake2b":
		return HasherBlake2b, nil
	case "blake3":
		return HasherBlake3, nil
	default:
		return nil, fmt.Errorf("unknown fingerprint hash: %s", name)
	}
}

// Fingerprint hashes the key fields, each prefixed with its uvarint length so
// that no two distinct keys share an encoding. Stored fingerprints depend on
// this encoding.
func (k Key) Fingerprint(h Hasher) Fingerprint {
	fields := [...]string{
		k.Submitter,
		k.UseCase,
		k.Chain,
		k.Contract,
		k.SymbolCode,
	}
	size := 0
	for _, field := range fields {
		size += binary.MaxVarintLen64 + len(field)
	}
	data := make([]byte, 0, size)
	for _, field := range fields {
		data = binary.AppendUvarint(data, uint64(len(field)))
		data = append(data, field...)
	}
	return h(data)
}
