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

package tokenreg_test

import (
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/blinklabs-io/tokenreg"
	"github.com/blinklabs-io/tokenreg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeRunAndStop(t *testing.T) {
	secret := []byte("node-test-secret")
	n, err := tokenreg.New(
		tokenreg.NewConfig(
			tokenreg.WithRootAccount("tokensmaster"),
			tokenreg.WithJwtSecret(secret),
			tokenreg.WithJwtIssuer("tokenreg"),
			tokenreg.WithApiListenAddress("127.0.0.1:0"),
			tokenreg.WithFingerprintHash("blake2b"),
		),
	)
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() {
		errCh <- n.Run(context.Background())
	}()
	require.Eventually(t, func() bool {
		return n.ApiAddr() != nil
	}, 10*time.Second, 20*time.Millisecond)

	require.NoError(t, n.Database().ImportChainState(
		[]string{"tokensmaster", "manager"},
		nil,
	))

	tokens, err := auth.NewTokens(secret, "tokenreg")
	require.NoError(t, err)
	token, err := tokens.Issue("tokensmaster", time.Minute)
	require.NoError(t, err)
	req, err := http.NewRequest(
		http.MethodPost,
		"http://"+n.ApiAddr().String()+"/v1/namespaces",
		bytes.NewBufferString(`{"id":"gaming","manager":"manager"}`),
	)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	client := &http.Client{
		Transport: &http.Transport{DisableKeepAlives: true},
	}
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	uc, ok := n.Registry().UseCase("gaming")
	require.True(t, ok)
	assert.Equal(t, "manager", uc.Manager)

	require.NoError(t, n.Stop())
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("node did not stop")
	}
	// Stop is idempotent
	assert.NoError(t, n.Stop())
}

func TestNodeWithoutApi(t *testing.T) {
	n, err := tokenreg.New(
		tokenreg.NewConfig(tokenreg.WithRootAccount("tokensmaster")),
	)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- n.Run(ctx)
	}()
	require.Eventually(t, func() bool {
		return n.Registry() != nil
	}, 10*time.Second, 20*time.Millisecond)
	assert.Nil(t, n.ApiAddr())
	cancel()
	require.NoError(t, <-errCh)
	require.NoError(t, n.Stop())
}
