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
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

type RegistryOptionFunc func(*Registry)

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) RegistryOptionFunc {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithPromRegistry specifies the prometheus registry to use for metrics
func WithPromRegistry(registry prometheus.Registerer) RegistryOptionFunc {
	return func(r *Registry) {
		r.promRegistry = registry
	}
}

// WithAuthorizer specifies the caller authorization check
func WithAuthorizer(authorizer Authorizer) RegistryOptionFunc {
	return func(r *Registry) {
		r.authorizer = authorizer
	}
}

// WithAccountOracle specifies the account existence check
func WithAccountOracle(accounts AccountOracle) RegistryOptionFunc {
	return func(r *Registry) {
		r.accounts = accounts
	}
}

// WithAssetLookup specifies the external asset metadata lookup
func WithAssetLookup(assets AssetLookup) RegistryOptionFunc {
	return func(r *Registry) {
		r.assets = assets
	}
}

// WithStore specifies the persistent store. Without one the registry only
// lives in memory.
func WithStore(store Store) RegistryOptionFunc {
	return func(r *Registry) {
		r.store = store
	}
}

// WithHasher specifies the fingerprint hash. The default is SHA-256.
func WithHasher(hasher Hasher) RegistryOptionFunc {
	return func(r *Registry) {
		r.hasher = hasher
	}
}
