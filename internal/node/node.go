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

package node

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	_ "net/http/pprof" // #nosec G108
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blinklabs-io/tokenreg"
	"github.com/blinklabs-io/tokenreg/internal/config"
	"github.com/blinklabs-io/tokenreg/internal/secret"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var ErrNoJwtSecret = errors.New(
	"no JWT secret configured: set jwtSecret or jwtSecretFile",
)

// JwtSecret returns the bearer token secret from the config, reading it from
// jwtSecretFile when jwtSecret is not set
func JwtSecret(cfg *config.Config) ([]byte, error) {
	if cfg.JwtSecret != "" {
		return []byte(cfg.JwtSecret), nil
	}
	if cfg.JwtSecretFile != "" {
		return secret.LoadFile(cfg.JwtSecretFile)
	}
	return nil, ErrNoJwtSecret
}

func Run(cfg *config.Config, logger *slog.Logger) error {
	logger.Debug(
		fmt.Sprintf(
			"config: databasePath=%s blobPlugin=%s metadataPlugin=%s apiPort=%d metricsPort=%d",
			cfg.DatabasePath,
			cfg.BlobPlugin,
			cfg.MetadataPlugin,
			cfg.ApiPort,
			cfg.MetricsPort,
		),
		"component", "node",
	)
	shutdownTimeout := cfg.ShutdownTimeoutDuration()

	opts := []tokenreg.ConfigOptionFunc{
		tokenreg.WithLogger(logger),
		tokenreg.WithDatabasePath(cfg.DatabasePath),
		tokenreg.WithBlobPlugin(cfg.BlobPlugin),
		tokenreg.WithMetadataPlugin(cfg.MetadataPlugin),
		tokenreg.WithRootAccount(cfg.RootAccount),
		tokenreg.WithFingerprintHash(cfg.FingerprintHash),
		tokenreg.WithShutdownTimeout(shutdownTimeout),
		// Enable metrics with default prometheus registry
		tokenreg.WithPrometheusRegistry(prometheus.DefaultRegisterer),
		tokenreg.WithTracing(cfg.Tracing),
		tokenreg.WithTracingStdout(cfg.TracingStdout),
	}
	if cfg.ApiPort > 0 {
		jwtSecret, err := JwtSecret(cfg)
		if err != nil {
			return err
		}
		opts = append(
			opts,
			tokenreg.WithJwtSecret(jwtSecret),
			tokenreg.WithJwtIssuer(cfg.JwtIssuer),
			tokenreg.WithApiListenAddress(
				fmt.Sprintf("%s:%d", cfg.BindAddr, cfg.ApiPort),
			),
		)
	}
	n, err := tokenreg.New(tokenreg.NewConfig(opts...))
	if err != nil {
		return err
	}

	// Metrics and debug listener
	var metricsServer *http.Server
	if cfg.MetricsPort > 0 {
		http.Handle("/metrics", promhttp.Handler())
		logger.Info(
			"serving prometheus metrics on "+fmt.Sprintf(
				"%s:%d",
				cfg.BindAddr,
				cfg.MetricsPort,
			),
			"component",
			"node",
		)
		metricsServer = &http.Server{
			Addr: fmt.Sprintf(
				"%s:%d",
				cfg.BindAddr,
				cfg.MetricsPort,
			),
			ReadHeaderTimeout: 60 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil &&
				!errors.Is(err, http.ErrServerClosed) {
				logger.Error(
					fmt.Sprintf("failed to start metrics listener: %s", err),
					"component", "node",
				)
				os.Exit(1)
			}
		}()
	}
	stopMetrics := func() {
		if metricsServer == nil {
			return
		}
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			shutdownTimeout,
		)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", "error", err)
		}
	}

	// Wait for interrupt/termination signal
	signalCtx, signalCtxStop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer signalCtxStop()

	// Run node in goroutine
	errChan := make(chan error, 1)
	go func() {
		//nolint:contextcheck
		errChan <- n.Run(signalCtx)
	}()

	// Wait for signal or error
	select {
	case <-signalCtx.Done():
		logger.Info("signal received, initiating graceful shutdown")
		stopMetrics()
		if err := n.Stop(); err != nil {
			logger.Error("shutdown errors occurred", "error", err)
			return err
		}
		logger.Info("shutdown complete")
		return nil

	case err := <-errChan:
		stopMetrics()
		if stopErr := n.Stop(); stopErr != nil {
			logger.Error(
				"shutdown errors occurred",
				"error",
				stopErr,
			)
			if err == nil {
				return stopErr
			}
		}
		if err != nil {
			logger.Error("node error", "error", err)
			return err
		}
		logger.Info("node stopped")
		return nil
	}
}
