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

// Package auth carries the authenticated caller through a context and checks
// it against the authority an operation requires.
package auth

import (
	"context"

	"github.com/blinklabs-io/tokenreg/registry"
)

type ctxKey struct{}

var callerKey = ctxKey{}

// WithCaller returns a context carrying the authenticated caller account
func WithCaller(ctx context.Context, account string) context.Context {
	return context.WithValue(ctx, callerKey, account)
}

// CallerFromContext returns the authenticated caller, if any
func CallerFromContext(ctx context.Context) (string, bool) {
	account, ok := ctx.Value(callerKey).(string)
	if !ok || account == "" {
		return "", false
	}
	return account, true
}

// CallerAuthorizer grants the authority of an account only to a caller
// authenticated as that same account
type CallerAuthorizer struct{}

func (CallerAuthorizer) RequireAuth(ctx context.Context, account string) error {
	caller, ok := CallerFromContext(ctx)
	if !ok || caller != account {
		return registry.NewError(
			registry.KindUnauthorized,
			"missing authority of %s",
			account,
		)
	}
	return nil
}
