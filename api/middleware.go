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
	"net/http"
	"strings"
	"time"

	"github.com/blinklabs-io/tokenreg/auth"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// withRequestID tags each request with an ID, echoed back in the response,
// and records its outcome
func (a *API) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		// r.Pattern is filled in by the mux on the shared request
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		a.metrics.observe(route, rec.status, time.Since(start))
		a.logger.Debug(
			"handled request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// requireCaller authenticates the bearer token and attaches its subject to the
// request context as the caller
func (a *API) requireCaller(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			w.Header().Set("WWW-Authenticate", "Bearer")
			a.writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if a.tokens == nil {
			a.writeError(
				w,
				http.StatusUnauthorized,
				"token verification is not configured",
			)
			return
		}
		account, err := a.tokens.Verify(token)
		if err != nil {
			a.logger.Debug("rejected bearer token", "error", err)
			w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
			a.writeError(w, http.StatusUnauthorized, "invalid bearer token")
			return
		}
		next(w, r.WithContext(auth.WithCaller(r.Context(), account)))
	})
}
