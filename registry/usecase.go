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
	"maps"
	"slices"
)

// CreateNamespace adds an empty use case managed by manager. It requires the
// root authority.
func (r *Registry) CreateNamespace(
	ctx context.Context,
	id string,
	manager string,
) (err error) {
	ctx, finish := r.begin(ctx, "create_namespace")
	defer func() { err = finish(err) }()
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireAuth(ctx, r.root); err != nil {
		return err
	}
	ok, err := r.isAccount(ctx, manager)
	if err != nil {
		return err
	}
	if !ok {
		return NewError(KindNotFound, "manager account not found")
	}
	if _, exists := r.useCases[id]; exists {
		return NewError(KindAlreadyExists, "usecase already exists")
	}
	if err := r.commit(ctx, []Change{
		{
			Type:      ChangePutUseCase,
			UseCaseID: id,
			UseCase:   &UseCase{ID: id, Manager: manager},
		},
	}); err != nil {
		return err
	}
	r.logger.Info("use case created", "use_case", id, "manager", manager)
	return nil
}

// DestroyNamespace removes a use case and every descriptor in it. It requires
// the root authority and manager must be the current manager of the use case.
func (r *Registry) DestroyNamespace(
	ctx context.Context,
	id string,
	manager string,
) (err error) {
	ctx, finish := r.begin(ctx, "destroy_namespace")
	defer func() { err = finish(err) }()
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireAuth(ctx, r.root); err != nil {
		return err
	}
	ok, err := r.isAccount(ctx, manager)
	if err != nil {
		return err
	}
	if !ok {
		return NewError(KindNotFound, "manager account not found")
	}
	uc, exists := r.useCases[id]
	if !exists {
		return NewError(KindNotFound, "usecase '%s' does not exist", id)
	}
	if uc.Manager != manager {
		return NewError(
			KindPermissionDenied,
			"'%s' does not manage usecase '%s'",
			manager,
			id,
		)
	}
	if err := r.commit(ctx, destroyChanges(id)); err != nil {
		return err
	}
	r.logger.Info("use case destroyed", "use_case", id)
	return nil
}

// SetPolicy replaces the submission policy of a use case. It requires the
// authority of the use case manager.
func (r *Registry) SetPolicy(
	ctx context.Context,
	id string,
	uniqueSymbols bool,
	allowedChain string,
	requiredFields string,
) (err error) {
	ctx, finish := r.begin(ctx, "set_policy")
	defer func() { err = finish(err) }()
	r.mu.Lock()
	defer r.mu.Unlock()

	uc, exists := r.useCases[id]
	if !exists {
		return NewError(KindNotFound, "usecase not found")
	}
	if err := r.requireAuth(ctx, uc.Manager); err != nil {
		return err
	}
	if err := validateChain(allowedChain); err != nil {
		return err
	}
	if err := validateFields(requiredFields); err != nil {
		return err
	}
	updated := *uc
	updated.Policy = Policy{
		AllowedChain:   allowedChain,
		RequiredFields: requiredFields,
		UniqueSymbols:  uniqueSymbols,
	}
	return r.commit(ctx, []Change{
		{Type: ChangePutUseCase, UseCaseID: id, UseCase: &updated},
	})
}

// ResetAll removes every use case and descriptor. It requires the root
// authority.
func (r *Registry) ResetAll(ctx context.Context) (err error) {
	ctx, finish := r.begin(ctx, "reset")
	defer func() { err = finish(err) }()
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireAuth(ctx, r.root); err != nil {
		return err
	}
	var changes []Change
	for _, id := range slices.Sorted(maps.Keys(r.useCases)) {
		changes = append(changes, destroyChanges(id)...)
	}
	if len(changes) == 0 {
		return nil
	}
	if err := r.commit(ctx, changes); err != nil {
		return err
	}
	r.logger.Info("registry reset", "use_cases", len(changes)/2)
	return nil
}

// destroyChanges removes the descriptors of a use case before the use case
// itself so no descriptor outlives its use case
func destroyChanges(id string) []Change {
	return []Change{
		{Type: ChangeDeleteUseCaseDescriptors, UseCaseID: id},
		{Type: ChangeDeleteUseCase, UseCaseID: id},
	}
}
