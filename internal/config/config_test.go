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

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetGlobalConfig(t *testing.T) {
	t.Helper()
	globalConfig = defaultConfig()
	// Keep the user's own config file out of the search path
	t.Setenv("HOME", t.TempDir())
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tokenreg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_WithoutConfigFile_UsesDefaults(t *testing.T) {
	resetGlobalConfig(t)
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
	assert.Same(t, cfg, GetConfig())
}

func TestLoad_CompareFullStruct(t *testing.T) {
	resetGlobalConfig(t)
	path := writeConfig(t, `
databasePath: "/var/lib/tokenreg"
blobPlugin: "badger"
metadataPlugin: "sqlite"
bindAddr: "127.0.0.1"
rootAccount: "admin"
jwtSecretFile: "/etc/tokenreg/jwt.secret"
jwtIssuer: "registry"
fingerprintHash: "blake3"
shutdownTimeout: "10s"
apiPort: 8000
metricsPort: 9100
debug: true
tracing: true
tracingStdout: true
`)
	expected := &Config{
		DatabasePath:    "/var/lib/tokenreg",
		BlobPlugin:      "badger",
		MetadataPlugin:  "sqlite",
		BindAddr:        "127.0.0.1",
		RootAccount:     "admin",
		JwtSecretFile:   "/etc/tokenreg/jwt.secret",
		JwtIssuer:       "registry",
		FingerprintHash: "blake3",
		ShutdownTimeout: "10s",
		ApiPort:         8000,
		MetricsPort:     9100,
		Debug:           true,
		Tracing:         true,
		TracingStdout:   true,
	}
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, expected, cfg)
}

func TestLoad_ConfigSection(t *testing.T) {
	resetGlobalConfig(t)
	path := writeConfig(t, `
config:
  apiPort: 9999
  rootAccount: "admin"
database:
  blob:
    plugin: "badger"
    badger:
      gc: false
  metadata:
    plugin: "sqlite"
    sqlite:
      data-dir: "/tmp/tokenreg"
    bogus: 1
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, uint(9999), cfg.ApiPort)
	assert.Equal(t, "admin", cfg.RootAccount)
	assert.Equal(t, "badger", cfg.BlobPlugin)
	assert.Equal(t, "sqlite", cfg.MetadataPlugin)
	// Untouched fields keep their defaults
	assert.Equal(t, uint(12798), cfg.MetricsPort)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	resetGlobalConfig(t)
	path := writeConfig(t, `
apiPort: 8000
rootAccount: "admin"
`)
	t.Setenv("TOKENREG_PORT", "9001")
	t.Setenv("TOKENREG_ROOT_ACCOUNT", "operator")
	t.Setenv("TOKENREG_JWT_SECRET", "s3cret")
	t.Setenv("TOKENREG_DATABASE_BLOB_PLUGIN", "other")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, uint(9001), cfg.ApiPort)
	assert.Equal(t, "operator", cfg.RootAccount)
	assert.Equal(t, "s3cret", cfg.JwtSecret)
	assert.Equal(t, "other", cfg.BlobPlugin)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown hash", `fingerprintHash: "md5"`},
		{"empty root", `rootAccount: ""`},
		{"bad timeout", `shutdownTimeout: "soon"`},
		{"port range", `apiPort: 70000`},
		{"not yaml", `apiPort: [`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resetGlobalConfig(t)
			_, err := LoadConfig(writeConfig(t, tc.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	resetGlobalConfig(t)
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_EmptyRootIsReported(t *testing.T) {
	resetGlobalConfig(t)
	_, err := LoadConfig(writeConfig(t, `rootAccount: ""`))
	assert.ErrorIs(t, err, ErrNoRootAccount)
}

func TestShutdownTimeoutDuration(t *testing.T) {
	cfg := &Config{ShutdownTimeout: "5s"}
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeoutDuration())
	cfg.ShutdownTimeout = ""
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeoutDuration())
}

func TestContext(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
	cfg := defaultConfig()
	ctx := WithContext(context.Background(), cfg)
	assert.Same(t, cfg, FromContext(ctx))
}
