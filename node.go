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

package tokenreg

import (
	"context"
	"errors"
	"fmt"
	"net"
	"slices"
	"sync"

	"github.com/blinklabs-io/tokenreg/api"
	"github.com/blinklabs-io/tokenreg/auth"
	"github.com/blinklabs-io/tokenreg/database"
	"github.com/blinklabs-io/tokenreg/registry"
)

type Node struct {
	db            *database.Database
	registry      *registry.Registry
	api           *api.API
	shutdownFuncs []func(context.Context) error
	config        Config
	done          chan struct{}
	shutdownOnce  sync.Once
	mu            sync.Mutex
}

func New(cfg Config) (*Node, error) {
	n := &Node{
		config: cfg,
		done:   make(chan struct{}),
	}
	if err := n.configValidate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	n.config.logger = n.config.logger.With("component", "node")
	return n, nil
}

// Run opens the database, loads the registry from it and serves the API. It
// blocks until ctx is done or the node is stopped.
func (n *Node) Run(ctx context.Context) error {
	// Configure tracing
	if n.config.tracing {
		if err := n.setupTracing(ctx); err != nil {
			return err
		}
	}
	// Load database
	db, err := database.New(&database.Config{
		DataDir:        n.config.dataDir,
		BlobPlugin:     n.config.blobPlugin,
		MetadataPlugin: n.config.metadataPlugin,
		Logger:         n.config.logger,
		PromRegistry:   n.config.promRegistry,
	})
	if db != nil {
		n.mu.Lock()
		n.db = db
		n.mu.Unlock()
		n.addShutdownFunc(func(context.Context) error { return db.Close() })
	}
	if err != nil {
		var dbErr database.CommitTimestampError
		if errors.As(err, &dbErr) {
			n.config.logger.Error(
				"metadata and blob stores are out of sync, refusing to start (run 'tokenreg repair')",
				"error", err,
			)
		}
		return fmt.Errorf("failed to open database: %w", err)
	}
	// Load registry
	hasher, err := registry.HasherByName(n.config.fingerprintHash)
	if err != nil {
		return err
	}
	reg, err := registry.New(
		ctx,
		n.config.rootAccount,
		registry.WithLogger(n.config.logger),
		registry.WithPromRegistry(n.config.promRegistry),
		registry.WithAuthorizer(auth.CallerAuthorizer{}),
		registry.WithAccountOracle(db),
		registry.WithAssetLookup(db),
		registry.WithStore(db),
		registry.WithHasher(hasher),
	)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	n.mu.Lock()
	n.registry = reg
	n.mu.Unlock()
	n.config.logger.Info(
		"registry loaded",
		"use_cases", len(reg.UseCases()),
		"root", reg.Root(),
	)
	// Start API
	if n.config.apiListenAddress != "" {
		tokens, err := auth.NewTokens(n.config.jwtSecret, n.config.jwtIssuer)
		if err != nil {
			return err
		}
		apiServer := api.New(
			api.Config{
				ListenAddress: n.config.apiListenAddress,
				PromRegistry:  n.config.promRegistry,
			},
			reg,
			tokens,
			n.config.logger,
		)
		if err := apiServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start API: %w", err)
		}
		n.mu.Lock()
		n.api = apiServer
		n.mu.Unlock()
		n.addShutdownFunc(apiServer.Stop)
	}

	// Wait for shutdown
	select {
	case <-ctx.Done():
	case <-n.done:
	}
	return nil
}

// Registry returns the loaded registry, or nil before Run has loaded it
func (n *Node) Registry() *registry.Registry {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.registry
}

// Database returns the open database, or nil before Run has opened it
func (n *Node) Database() *database.Database {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.db
}

// ApiAddr returns the address the API is listening on, if it is running
func (n *Node) ApiAddr() net.Addr {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.api == nil {
		return nil
	}
	return n.api.Addr()
}

// addShutdownFunc registers cleanup for a started component. Cleanup runs in
// reverse registration order.
func (n *Node) addShutdownFunc(fn func(context.Context) error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.shutdownFuncs = append(n.shutdownFuncs, fn)
}

func (n *Node) Stop() error {
	var err error
	n.shutdownOnce.Do(func() {
		err = n.shutdown()
	})
	return err
}

func (n *Node) shutdown() error {
	shutdownTimeout := DefaultShutdownTimeout
	if n.config.shutdownTimeout > 0 {
		shutdownTimeout = n.config.shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	n.mu.Lock()
	funcs := n.shutdownFuncs
	n.shutdownFuncs = nil
	n.mu.Unlock()

	var err error
	n.config.logger.Debug("starting graceful shutdown")
	for _, fn := range slices.Backward(funcs) {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	n.config.logger.Debug("graceful shutdown complete")
	close(n.done)
	return err
}
