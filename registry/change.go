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

import "context"

// ChangeType identifies the mutation carried by a Change
type ChangeType int

const (
	ChangePutUseCase ChangeType = iota + 1
	ChangeDeleteUseCase
	ChangeAddDescriptor
	ChangeApproveDescriptor
	ChangeDeleteDescriptor
	// ChangeDeleteUseCaseDescriptors removes every descriptor of a use case.
	// It always precedes the ChangeDeleteUseCase for the same use case.
	ChangeDeleteUseCaseDescriptors
)

func (c ChangeType) String() string {
	switch c {
	case ChangePutUseCase:
		return "put_use_case"
	case ChangeDeleteUseCase:
		return "delete_use_case"
	case ChangeAddDescriptor:
		return "add_descriptor"
	case ChangeApproveDescriptor:
		return "approve_descriptor"
	case ChangeDeleteDescriptor:
		return "delete_descriptor"
	case ChangeDeleteUseCaseDescriptors:
		return "delete_use_case_descriptors"
	default:
		return "unknown"
	}
}

// Change is a single staged mutation. UseCase is set for use case changes,
// Descriptor for single descriptor changes, and UseCaseID always names the
// affected use case.
type Change struct {
	UseCase    *UseCase
	Descriptor *Descriptor
	UseCaseID  string
	Type       ChangeType
}

// Snapshot is the full registry state as loaded from a Store
type Snapshot struct {
	UseCases    []UseCase
	Descriptors []Descriptor
}

// Store persists registry changes. Apply must be all-or-nothing: when it
// returns an error, none of the changes may be visible to a later Load.
type Store interface {
	Load(ctx context.Context) (*Snapshot, error)
	Apply(ctx context.Context, changes []Change) error
}

// Authorizer verifies that the current caller holds the authority of account
type Authorizer interface {
	RequireAuth(ctx context.Context, account string) error
}

// AccountOracle reports whether an account exists
type AccountOracle interface {
	IsAccount(ctx context.Context, account string) (bool, error)
}

// AssetLookup reports whether the external ledger knows a token issued by
// contract under symbolCode
type AssetLookup interface {
	AssetExists(
		ctx context.Context,
		contract string,
		symbolCode string,
	) (bool, error)
}
