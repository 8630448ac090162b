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

// Package registry implements a permissioned registry of token descriptors
// grouped into use cases. Every exported operation is atomic: all checks run
// against the committed state, the resulting changes are persisted through
// the Store, and only then applied in memory.
package registry

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/blinklabs-io/tokenreg/registry"

type Registry struct {
	promRegistry prometheus.Registerer
	authorizer   Authorizer
	accounts     AccountOracle
	assets       AssetLookup
	store        Store
	hasher       Hasher
	logger       *slog.Logger
	tracer       trace.Tracer
	useCases     map[string]*UseCase
	tables       map[string]*descriptorTable
	metrics      registryMetrics
	root         string
	mu           sync.Mutex
}

// New creates a registry whose administrative operations require the
// authority of root. If a store is configured, its contents are loaded.
func New(
	ctx context.Context,
	root string,
	opts ...RegistryOptionFunc,
) (*Registry, error) {
	r := &Registry{
		root:     root,
		hasher:   HasherSHA256,
		useCases: make(map[string]*UseCase),
		tables:   make(map[string]*descriptorTable),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		r.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	r.logger = r.logger.With("component", "registry")
	if r.authorizer == nil || r.accounts == nil || r.assets == nil {
		return nil, ErrMissingCollaborator
	}
	if root == "" {
		return nil, fmt.Errorf("%w: root account", ErrMissingCollaborator)
	}
	r.tracer = otel.Tracer(tracerName)
	r.metrics.init(r.promRegistry)
	if r.store != nil {
		if err := r.load(ctx); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Root returns the account holding registry administration authority
func (r *Registry) Root() string {
	return r.root
}

func (r *Registry) load(ctx context.Context) error {
	snapshot, err := r.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load registry: %w", err)
	}
	for i := range snapshot.UseCases {
		uc := snapshot.UseCases[i]
		r.useCases[uc.ID] = &uc
		r.tables[uc.ID] = newDescriptorTable()
	}
	for i := range snapshot.Descriptors {
		d := snapshot.Descriptors[i]
		table, ok := r.tables[d.UseCase]
		if !ok {
			return fmt.Errorf(
				"load registry: descriptor %d references unknown use case %q",
				d.ID,
				d.UseCase,
			)
		}
		if d.Key().Fingerprint(r.hasher) != d.Fingerprint {
			return fmt.Errorf(
				"load registry: descriptor %d in use case %q: %w (was the fingerprint hash changed?)",
				d.ID,
				d.UseCase,
				ErrFingerprintMismatch,
			)
		}
		table.insert(&d)
	}
	r.updateGauges()
	r.logger.Debug(
		"loaded registry state",
		"use_cases", len(snapshot.UseCases),
		"descriptors", len(snapshot.Descriptors),
	)
	return nil
}

// begin starts a traced operation. The returned function must be called with
// the operation result.
func (r *Registry) begin(
	ctx context.Context,
	operation string,
) (context.Context, func(error) error) {
	ctx, span := r.tracer.Start(ctx, "registry."+operation)
	return ctx, func(err error) error {
		result := "ok"
		if err != nil {
			result = KindOf(err).String()
			span.SetStatus(codes.Error, err.Error())
			r.logger.Debug(
				"operation rejected",
				"operation", operation,
				"reason", err.Error(),
			)
		}
		span.SetAttributes(attribute.String("result", result))
		span.End()
		r.metrics.operations.WithLabelValues(operation, result).Inc()
		return err
	}
}

func (r *Registry) requireAuth(ctx context.Context, account string) error {
	if err := r.authorizer.RequireAuth(ctx, account); err != nil {
		if KindOf(err) == KindUnauthorized {
			return err
		}
		return wrapError(
			KindUnauthorized,
			err,
			"missing authority of %s",
			account,
		)
	}
	return nil
}

func (r *Registry) isAccount(ctx context.Context, account string) (bool, error) {
	ok, err := r.accounts.IsAccount(ctx, account)
	if err != nil {
		return false, wrapError(KindInternal, err, "account lookup failed")
	}
	return ok, nil
}

// commit persists changes and then applies them in memory. Nothing is applied
// when the store rejects the changes.
func (r *Registry) commit(ctx context.Context, changes []Change) error {
	if r.store != nil {
		if err := r.store.Apply(ctx, changes); err != nil {
			return wrapError(KindInternal, err, "persist changes: %s", err)
		}
	}
	for _, change := range changes {
		r.apply(change)
	}
	r.updateGauges()
	return nil
}

func (r *Registry) apply(change Change) {
	switch change.Type {
	case ChangePutUseCase:
		uc := *change.UseCase
		r.useCases[uc.ID] = &uc
		if _, ok := r.tables[uc.ID]; !ok {
			r.tables[uc.ID] = newDescriptorTable()
		}
	case ChangeDeleteUseCase:
		delete(r.useCases, change.UseCaseID)
		delete(r.tables, change.UseCaseID)
	case ChangeAddDescriptor:
		d := *change.Descriptor
		r.tables[change.UseCaseID].insert(&d)
	case ChangeApproveDescriptor:
		if d, ok := r.tables[change.UseCaseID].get(change.Descriptor.ID); ok {
			d.Approved = true
		}
	case ChangeDeleteDescriptor:
		r.tables[change.UseCaseID].remove(change.Descriptor.ID)
	case ChangeDeleteUseCaseDescriptors:
		r.tables[change.UseCaseID] = newDescriptorTable()
	}
}

func (r *Registry) updateGauges() {
	descriptors := 0
	approved := 0
	for _, table := range r.tables {
		descriptors += table.len()
		for _, d := range table.rows {
			if d.Approved {
				approved++
			}
		}
	}
	r.metrics.useCases.Set(float64(len(r.useCases)))
	r.metrics.descriptors.Set(float64(descriptors))
	r.metrics.approvedDescriptors.Set(float64(approved))
}

// UseCase returns a copy of the use case with the given id
func (r *Registry) UseCase(id string) (UseCase, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	uc, ok := r.useCases[id]
	if !ok {
		return UseCase{}, false
	}
	return *uc, true
}

// UseCases returns copies of all use cases ordered by id
func (r *Registry) UseCases() []UseCase {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := slices.Sorted(maps.Keys(r.useCases))
	ret := make([]UseCase, 0, len(ids))
	for _, id := range ids {
		ret = append(ret, *r.useCases[id])
	}
	return ret
}

// Descriptor returns a copy of a descriptor by use case and id
func (r *Registry) Descriptor(useCase string, id uint64) (Descriptor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	table, ok := r.tables[useCase]
	if !ok {
		return Descriptor{}, false
	}
	d, ok := table.get(id)
	if !ok {
		return Descriptor{}, false
	}
	return *d, true
}

// DescriptorByKey returns a copy of the descriptor whose fingerprint matches
// key
func (r *Registry) DescriptorByKey(key Key) (Descriptor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	table, ok := r.tables[key.UseCase]
	if !ok {
		return Descriptor{}, false
	}
	d, ok := table.getByFingerprint(key.Fingerprint(r.hasher))
	if !ok {
		return Descriptor{}, false
	}
	return *d, true
}

// Descriptors returns copies of the descriptors of a use case in id order.
// A non-empty symbolCode restricts the result to that symbol.
func (r *Registry) Descriptors(useCase string, symbolCode string) []Descriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	table, ok := r.tables[useCase]
	if !ok {
		return nil
	}
	var rows []*Descriptor
	if symbolCode != "" {
		rows = table.withSymbol(symbolCode)
	} else {
		rows = table.all()
	}
	ret := make([]Descriptor, 0, len(rows))
	for _, d := range rows {
		ret = append(ret, *d)
	}
	return ret
}
