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

package secret_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/blinklabs-io/tokenreg/internal/secret"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEncrypted(t *testing.T) {
	assert.True(t, secret.IsEncrypted([]byte(`{"data":"ENC[...]","sops":{}}`)))
	assert.False(t, secret.IsEncrypted([]byte(`{"data":"plain"}`)))
	assert.False(t, secret.IsEncrypted([]byte("not json")))
}

func TestLoadFilePlain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jwt.secret")
	require.NoError(t, os.WriteFile(path, []byte("  s3cret\n"), 0o600))
	data, err := secret.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("s3cret"), data)
}

func TestLoadFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jwt.secret")
	require.NoError(t, os.WriteFile(path, []byte("\n\n"), 0o600))
	_, err := secret.LoadFile(path)
	assert.ErrorIs(t, err, secret.ErrEmptySecret)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := secret.LoadFile(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestLoadFileBadSopsDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jwt.secret")
	require.NoError(t, os.WriteFile(
		path,
		[]byte(`{"data":"ENC[garbage]","sops":{"version":"3.9.0"}}`),
		0o600,
	))
	_, err := secret.LoadFile(path)
	assert.Error(t, err)
}

func TestEncryptRequiresMasterKey(t *testing.T) {
	t.Setenv("TOKENREG_GCP_KMS_RESOURCE_ID", "")
	t.Setenv("TOKENREG_AWS_KMS_KEY_ARNS", "")
	_, err := secret.Encrypt([]byte("s3cret"))
	assert.ErrorIs(t, err, secret.ErrNoMasterKeys)
}

func TestEncryptRefusesEncrypted(t *testing.T) {
	_, err := secret.Encrypt([]byte(`{"data":"x","sops":{}}`))
	assert.ErrorIs(t, err, secret.ErrAlreadyEncrypted)
}
