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

package types_test

import (
	"database/sql"
	"database/sql/driver"
	"testing"

	"github.com/blinklabs-io/tokenreg/database/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUint64ScanValue(t *testing.T) {
	for _, val := range []uint64{0, 123, 1<<64 - 1} {
		orig := types.Uint64(val)
		var valuer driver.Valuer = orig
		out, err := valuer.Value()
		require.NoError(t, err)
		var tmp types.Uint64
		var scanner sql.Scanner = &tmp
		require.NoError(t, scanner.Scan(out))
		assert.Equal(t, orig, tmp)
	}
	var tmp types.Uint64
	assert.Error(t, tmp.Scan(int64(5)))
	assert.Error(t, tmp.Scan("-1"))
}

func TestDescriptorBlobKey(t *testing.T) {
	key := types.DescriptorBlobKey("gaming", 258)
	assert.Equal(
		t,
		[]byte("djgaming\x00\x00\x00\x00\x00\x00\x00\x01\x02"),
		key,
	)
	assert.True(
		t,
		len(key) > len(types.DescriptorBlobUseCasePrefix("gaming")),
	)
	assert.Equal(t, types.DescriptorBlobUseCasePrefix("gaming"), key[:9])

	useCase, id, err := types.ParseDescriptorBlobKey(key)
	require.NoError(t, err)
	assert.Equal(t, "gaming", useCase)
	assert.Equal(t, uint64(258), id)

	_, _, err = types.ParseDescriptorBlobKey([]byte("bp12345678"))
	assert.ErrorIs(t, err, types.ErrInvalidBlobKey)
	_, _, err = types.ParseDescriptorBlobKey([]byte("djgaming-12345678"))
	assert.ErrorIs(t, err, types.ErrInvalidBlobKey)
}

func TestDescriptorBlobKeyPrefixIsolation(t *testing.T) {
	// A use case whose name extends another must not share its prefix
	short := types.DescriptorBlobUseCasePrefix("game")
	long := types.DescriptorBlobKey("gamer", 0)
	assert.NotEqual(t, short, long[:len(short)])
}
