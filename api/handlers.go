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
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/blinklabs-io/tokenreg/registry"
)

// maxRequestBody bounds request bodies. The largest legitimate body is a
// submission carrying a descriptor payload plus its escaping overhead.
const maxRequestBody = 4 * registry.MaxJSONLength

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, HealthResponse{IsHealthy: true})
}

func (a *API) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := a.registry.ResetAll(r.Context()); err != nil {
		a.writeRegistryError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleCreateNamespace(w http.ResponseWriter, r *http.Request) {
	var req CreateNamespaceRequest
	if !a.decodeBody(w, r, &req) {
		return
	}
	if err := a.registry.CreateNamespace(
		r.Context(),
		req.ID,
		req.Manager,
	); err != nil {
		a.writeRegistryError(w, err)
		return
	}
	uc, ok := a.registry.UseCase(req.ID)
	if !ok {
		a.writeError(
			w,
			http.StatusInternalServerError,
			"namespace vanished after create",
		)
		return
	}
	a.writeJSON(w, http.StatusCreated, namespaceResponse(uc))
}

func (a *API) handleDestroyNamespace(w http.ResponseWriter, r *http.Request) {
	var req DestroyNamespaceRequest
	if !a.decodeBody(w, r, &req) {
		return
	}
	if err := a.registry.DestroyNamespace(
		r.Context(),
		r.PathValue("id"),
		req.Manager,
	); err != nil {
		a.writeRegistryError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleSetPolicy(w http.ResponseWriter, r *http.Request) {
	var req PolicyRequest
	if !a.decodeBody(w, r, &req) {
		return
	}
	id := r.PathValue("id")
	if err := a.registry.SetPolicy(
		r.Context(),
		id,
		req.UniqueSymbols,
		req.AllowedChain,
		req.RequiredFields,
	); err != nil {
		a.writeRegistryError(w, err)
		return
	}
	uc, ok := a.registry.UseCase(id)
	if !ok {
		a.writeError(
			w,
			http.StatusInternalServerError,
			"namespace vanished after policy update",
		)
		return
	}
	a.writeJSON(w, http.StatusOK, namespaceResponse(uc))
}

func (a *API) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if !a.decodeBody(w, r, &req) {
		return
	}
	key := registry.Key{
		Submitter:  req.Submitter,
		UseCase:    r.PathValue("id"),
		Chain:      req.Chain,
		Contract:   req.Contract,
		SymbolCode: req.SymbolCode,
	}
	d, err := a.registry.Submit(r.Context(), key, req.JSON)
	if err != nil {
		a.writeRegistryError(w, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, descriptorResponse(d))
}

func (a *API) handleApprove(w http.ResponseWriter, r *http.Request) {
	var req ApprovalRequest
	if !a.decodeBody(w, r, &req) {
		return
	}
	key := registry.Key{
		Submitter:  req.Submitter,
		UseCase:    r.PathValue("id"),
		Chain:      req.Chain,
		Contract:   req.Contract,
		SymbolCode: req.SymbolCode,
	}
	if err := a.registry.Approve(r.Context(), key, req.Approve); err != nil {
		a.writeRegistryError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleListNamespaces(w http.ResponseWriter, r *http.Request) {
	useCases := a.registry.UseCases()
	resp := make([]NamespaceResponse, 0, len(useCases))
	for _, uc := range useCases {
		resp = append(resp, namespaceResponse(uc))
	}
	a.writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleGetNamespace(w http.ResponseWriter, r *http.Request) {
	uc, ok := a.registry.UseCase(r.PathValue("id"))
	if !ok {
		a.writeError(w, http.StatusNotFound, "invalid use case")
		return
	}
	a.writeJSON(w, http.StatusOK, namespaceResponse(uc))
}

func (a *API) handleListDescriptors(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := a.registry.UseCase(id); !ok {
		a.writeError(w, http.StatusNotFound, "invalid use case")
		return
	}
	descriptors := a.registry.Descriptors(id, r.URL.Query().Get("symbol"))
	resp := make([]DescriptorResponse, 0, len(descriptors))
	for _, d := range descriptors {
		resp = append(resp, descriptorResponse(d))
	}
	a.writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleGetDescriptor(w http.ResponseWriter, r *http.Request) {
	did, err := strconv.ParseUint(r.PathValue("did"), 10, 64)
	if err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid descriptor id")
		return
	}
	d, ok := a.registry.Descriptor(r.PathValue("id"), did)
	if !ok {
		a.writeError(w, http.StatusNotFound, "descriptor not found")
		return
	}
	a.writeJSON(w, http.StatusOK, descriptorResponse(d))
}

// decodeBody reads a JSON request body into v. It writes a 400 response and
// returns false on failure.
func (a *API) decodeBody(
	w http.ResponseWriter,
	r *http.Request,
	v any,
) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			a.writeError(
				w,
				http.StatusRequestEntityTooLarge,
				"request body too large",
			)
			return false
		}
		a.writeError(
			w,
			http.StatusBadRequest,
			"invalid request body: "+err.Error(),
		)
		return false
	}
	return true
}

// statusForError maps a registry error kind onto an HTTP status
func statusForError(err error) int {
	switch registry.KindOf(err) {
	case registry.KindUnauthorized, registry.KindPermissionDenied:
		return http.StatusForbidden
	case registry.KindNotFound:
		return http.StatusNotFound
	case registry.KindAlreadyExists, registry.KindPolicyViolation:
		return http.StatusConflict
	case registry.KindInvalidArgument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (a *API) writeRegistryError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		a.logger.Error("registry operation failed", "error", err)
		message = "internal error"
	}
	a.writeError(w, status, message)
}

func (a *API) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Error("failed to encode response", "error", err)
	}
}

func (a *API) writeError(w http.ResponseWriter, status int, message string) {
	a.writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Error:      http.StatusText(status),
		Message:    message,
	})
}
