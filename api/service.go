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

package api

import (
	"context"

	"github.com/blinklabs-io/tokenreg/registry"
)

// RegistryService is the interface that the API server uses to run registry
// operations. It is satisfied by *registry.Registry.
type RegistryService interface {
	CreateNamespace(ctx context.Context, id string, manager string) error
	DestroyNamespace(ctx context.Context, id string, manager string) error
	SetPolicy(
		ctx context.Context,
		id string,
		uniqueSymbols bool,
		allowedChain string,
		requiredFields string,
	) error
	ResetAll(ctx context.Context) error
	Submit(
		ctx context.Context,
		key registry.Key,
		json string,
	) (registry.Descriptor, error)
	Approve(ctx context.Context, key registry.Key, approve bool) error

	UseCase(id string) (registry.UseCase, bool)
	UseCases() []registry.UseCase
	Descriptor(useCase string, id uint64) (registry.Descriptor, bool)
	Descriptors(useCase string, symbolCode string) []registry.Descriptor
}

// TokenVerifier checks a bearer token and returns the account it was issued
// to. It is satisfied by *auth.Tokens.
type TokenVerifier interface {
	Verify(token string) (string, error)
}
