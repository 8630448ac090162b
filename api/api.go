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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const DefaultListenAddress = ":8080"

type Config struct {
	PromRegistry  prometheus.Registerer
	ListenAddress string
}

// API is the HTTP front end of the registry
type API struct {
	config     Config
	logger     *slog.Logger
	registry   RegistryService
	tokens     TokenVerifier
	httpServer *http.Server
	metrics    apiMetrics
	listenAddr net.Addr
	mu         sync.Mutex
}

// New creates a new API server instance.
func New(
	cfg Config,
	registry RegistryService,
	tokens TokenVerifier,
	logger *slog.Logger,
) *API {
	if logger == nil {
		logger = slog.New(
			slog.NewJSONHandler(io.Discard, nil),
		)
	}
	logger = logger.With("component", "api")
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}
	a := &API{
		config:   cfg,
		logger:   logger,
		registry: registry,
		tokens:   tokens,
	}
	a.metrics.init(cfg.PromRegistry)
	return a
}

// Handler returns the routed HTTP handler with all middleware applied
func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", a.handleHealth)
	mux.HandleFunc("GET /v1/namespaces", a.handleListNamespaces)
	mux.HandleFunc("GET /v1/namespaces/{id}", a.handleGetNamespace)
	mux.HandleFunc(
		"GET /v1/namespaces/{id}/descriptors",
		a.handleListDescriptors,
	)
	mux.HandleFunc(
		"GET /v1/namespaces/{id}/descriptors/{did}",
		a.handleGetDescriptor,
	)
	mux.Handle("POST /v1/reset", a.requireCaller(a.handleReset))
	mux.Handle(
		"POST /v1/namespaces",
		a.requireCaller(a.handleCreateNamespace),
	)
	mux.Handle(
		"DELETE /v1/namespaces/{id}",
		a.requireCaller(a.handleDestroyNamespace),
	)
	mux.Handle(
		"PUT /v1/namespaces/{id}/policy",
		a.requireCaller(a.handleSetPolicy),
	)
	mux.Handle(
		"POST /v1/namespaces/{id}/descriptors",
		a.requireCaller(a.handleSubmit),
	)
	mux.Handle(
		"POST /v1/namespaces/{id}/approvals",
		a.requireCaller(a.handleApprove),
	)
	return otelhttp.NewHandler(a.withRequestID(mux), "tokenreg-api")
}

// Start starts the HTTP server in a background goroutine.
// The server is shut down when ctx is cancelled.
func (a *API) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.httpServer != nil {
		a.mu.Unlock()
		return errors.New("server already started")
	}
	server := &http.Server{
		Addr:              a.config.ListenAddress,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 60 * time.Second,
	}
	a.httpServer = server
	a.mu.Unlock()

	// Bind first so that port conflicts are reported to the caller
	if err := a.startServer(server); err != nil {
		a.mu.Lock()
		a.httpServer = nil
		a.mu.Unlock()
		return err
	}

	a.logger.Info(
		"API listener started on " + a.Addr().String(),
	)

	go func() {
		<-ctx.Done()
		//nolint:contextcheck
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			30*time.Second,
		)
		defer cancel()
		//nolint:contextcheck
		if err := a.Stop(shutdownCtx); err != nil {
			a.logger.Error(
				"failed to shutdown API server on context cancellation",
				"error", err,
			)
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP server.
func (a *API) Stop(ctx context.Context) error {
	a.mu.Lock()
	srv := a.httpServer
	a.httpServer = nil
	a.mu.Unlock()

	if srv != nil {
		a.logger.Debug("shutting down API server")
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown API server: %w", err)
		}
	}
	return nil
}

// Addr returns the address the server is listening on, or nil if it has not
// been started
func (a *API) Addr() net.Addr {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.listenAddr
}

func (a *API) startServer(server *http.Server) error {
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen for API server: %w", err)
	}
	a.mu.Lock()
	a.listenAddr = ln.Addr()
	a.mu.Unlock()
	go func() {
		if err := server.Serve(ln); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			a.logger.Error(
				"API server error",
				"error", err,
			)
		}
	}()
	return nil
}
