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

package sqlite

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/blinklabs-io/tokenreg/database/plugin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	m := &MetadataStoreSqlite{}
	for _, opt := range []SqliteOptionFunc{
		WithDataDir("/tmp/test"),
		WithLogger(logger),
		WithPromRegistry(reg),
		WithJournalMode("truncate"),
		WithBusyTimeout(time.Second),
	} {
		opt(m)
	}
	assert.Equal(t, "/tmp/test", m.dataDir)
	assert.Equal(t, logger, m.logger)
	assert.Equal(t, reg, m.promRegistry)
	assert.Equal(t, "truncate", m.journalMode)
	assert.Equal(t, time.Second, m.busyTimeout)
}

func TestJournalMode(t *testing.T) {
	mode, err := normalizeJournalMode("")
	require.NoError(t, err)
	assert.Equal(t, DefaultJournalMode, mode)
	mode, err = normalizeJournalMode("delete")
	require.NoError(t, err)
	assert.Equal(t, "DELETE", mode)
	_, err = normalizeJournalMode("wal2")
	assert.Error(t, err)

	_, err = NewWithOptions(WithDataDir(t.TempDir()), WithJournalMode("bogus"))
	assert.ErrorContains(t, err, "invalid sqlite journal mode")

	store, err := NewWithOptions(
		WithDataDir(t.TempDir()),
		WithJournalMode("delete"),
	)
	require.NoError(t, err)
	var journalMode string
	require.NoError(t, store.db.Raw("PRAGMA journal_mode").Scan(&journalMode).Error)
	assert.Equal(t, "delete", journalMode)
	require.NoError(t, store.Close())
}

func TestPluginOptions(t *testing.T) {
	t.Cleanup(initCmdlineOptions)
	require.NoError(
		t,
		plugin.SetPluginOption(plugin.PluginTypeMetadata, "sqlite", "journal-mode", "truncate"),
	)
	require.NoError(
		t,
		plugin.SetPluginOption(plugin.PluginTypeMetadata, "sqlite", "busy-timeout", 250),
	)
	require.NoError(
		t,
		plugin.SetPluginOption(plugin.PluginTypeMetadata, "sqlite", "data-dir", ""),
	)
	cmdlineOptionsMutex.RLock()
	assert.Equal(t, "truncate", cmdlineOptions.journalMode)
	assert.Equal(t, uint64(250), cmdlineOptions.busyTimeoutMs)
	cmdlineOptionsMutex.RUnlock()

	p := NewFromCmdlineOptions()
	store, ok := p.(*MetadataStoreSqlite)
	require.True(t, ok)
	assert.Equal(t, "TRUNCATE", store.journalMode)
	assert.Equal(t, 250*time.Millisecond, store.busyTimeout)
	require.NoError(t, store.Close())
}
