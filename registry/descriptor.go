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
	"context"

	"github.com/blinklabs-io/tokenreg/fieldcheck"
)

// Submit adds an unapproved descriptor to a use case. It requires the
// authority of submitter.
func (r *Registry) Submit(
	ctx context.Context,
	key Key,
	json string,
) (ret Descriptor, err error) {
	ctx, finish := r.begin(ctx, "submit")
	defer func() { err = finish(err) }()
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireAuth(ctx, key.Submitter); err != nil {
		return ret, err
	}
	ok, err := r.isAccount(ctx, key.Contract)
	if err != nil {
		return ret, err
	}
	if !ok {
		return ret, NewError(KindNotFound, "no contract account")
	}
	if !ValidSymbolCode(key.SymbolCode) {
		return ret, NewError(KindInvalidArgument, "invalid symbol")
	}
	if len(json) > MaxJSONLength {
		return ret, NewError(
			KindInvalidArgument,
			"json string is > %d",
			MaxJSONLength,
		)
	}
	uc, exists := r.useCases[key.UseCase]
	if !exists {
		return ret, NewError(KindNotFound, "invalid use case")
	}
	if uc.AllowedChain != key.Chain {
		return ret, NewError(KindInvalidArgument, "invalid chain")
	}
	table := r.tables[key.UseCase]
	fp := key.Fingerprint(r.hasher)
	if _, found := table.getByFingerprint(fp); found {
		return ret, NewError(KindAlreadyExists, "token already submitted")
	}
	ok, err = r.assets.AssetExists(ctx, key.Contract, key.SymbolCode)
	if err != nil {
		return ret, wrapError(KindInternal, err, "asset lookup failed")
	}
	if !ok {
		return ret, NewError(
			KindNotFound,
			"no symbol %s in %s",
			key.SymbolCode,
			key.Contract,
		)
	}
	if err := fieldcheck.Check(uc.FieldList(), json); err != nil {
		return ret, wrapError(
			KindInvalidArgument,
			err,
			"json error: %s",
			err,
		)
	}
	if uc.UniqueSymbols && len(table.withSymbol(key.SymbolCode)) > 0 {
		return ret, NewError(KindAlreadyExists, "duplicate symbol")
	}
	d := Descriptor{
		ID:          table.nextID(),
		Submitter:   key.Submitter,
		UseCase:     key.UseCase,
		Contract:    key.Contract,
		SymbolCode:  key.SymbolCode,
		Chain:       key.Chain,
		JSON:        json,
		Fingerprint: fp,
	}
	if err := r.commit(ctx, []Change{
		{Type: ChangeAddDescriptor, UseCaseID: key.UseCase, Descriptor: &d},
	}); err != nil {
		return ret, err
	}
	return d, nil
}

// Approve accepts or rejects the descriptor identified by key. Rejection
// deletes the descriptor. It requires the authority of the use case manager.
func (r *Registry) Approve(
	ctx context.Context,
	key Key,
	approve bool,
) (err error) {
	operation := "approve"
	if !approve {
		operation = "reject"
	}
	ctx, finish := r.begin(ctx, operation)
	defer func() { err = finish(err) }()
	r.mu.Lock()
	defer r.mu.Unlock()

	uc, exists := r.useCases[key.UseCase]
	if !exists {
		return NewError(KindNotFound, "usecase not found")
	}
	if err := r.requireAuth(ctx, uc.Manager); err != nil {
		return err
	}
	table := r.tables[key.UseCase]
	d, found := table.getByFingerprint(key.Fingerprint(r.hasher))
	if !found {
		return NewError(KindNotFound, "no matching row to approve")
	}
	target := *d
	if !approve {
		return r.commit(ctx, []Change{
			{Type: ChangeDeleteDescriptor, UseCaseID: key.UseCase, Descriptor: &target},
		})
	}
	for _, other := range table.withSymbol(key.SymbolCode) {
		if other.ID == d.ID || !other.Approved {
			continue
		}
		if other.Contract == key.Contract &&
			other.UseCase == key.UseCase &&
			other.Chain == key.Chain {
			return NewError(
				KindPolicyViolation,
				"cannot overwrite existing token",
			)
		}
	}
	if d.Approved {
		return nil
	}
	return r.commit(ctx, []Change{
		{Type: ChangeApproveDescriptor, UseCaseID: key.UseCase, Descriptor: &target},
	})
}
