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

import "github.com/blinklabs-io/tokenreg/registry"

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	StatusCode int    `json:"status_code"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

type HealthResponse struct {
	IsHealthy bool `json:"is_healthy"`
}

type CreateNamespaceRequest struct {
	ID      string `json:"id"`
	Manager string `json:"manager"`
}

type DestroyNamespaceRequest struct {
	Manager string `json:"manager"`
}

type PolicyRequest struct {
	AllowedChain   string `json:"allowedChain"`
	RequiredFields string `json:"requiredFields"`
	UniqueSymbols  bool   `json:"uniqueSymbols"`
}

type SubmitRequest struct {
	Submitter  string `json:"submitter"`
	Chain      string `json:"chain"`
	Contract   string `json:"contract"`
	SymbolCode string `json:"symbolCode"`
	JSON       string `json:"json"`
}

type ApprovalRequest struct {
	Submitter  string `json:"submitter"`
	Chain      string `json:"chain"`
	Contract   string `json:"contract"`
	SymbolCode string `json:"symbolCode"`
	Approve    bool   `json:"approve"`
}

type NamespaceResponse struct {
	ID             string `json:"id"`
	Manager        string `json:"manager"`
	AllowedChain   string `json:"allowedChain"`
	RequiredFields string `json:"requiredFields"`
	UniqueSymbols  bool   `json:"uniqueSymbols"`
}

type DescriptorResponse struct {
	Namespace   string `json:"namespace"`
	Submitter   string `json:"submitter"`
	Chain       string `json:"chain"`
	Contract    string `json:"contract"`
	SymbolCode  string `json:"symbolCode"`
	JSON        string `json:"json"`
	Fingerprint string `json:"fingerprint"`
	ID          uint64 `json:"id"`
	Approved    bool   `json:"approved"`
}

func namespaceResponse(uc registry.UseCase) NamespaceResponse {
	return NamespaceResponse{
		ID:             uc.ID,
		Manager:        uc.Manager,
		AllowedChain:   uc.AllowedChain,
		RequiredFields: uc.RequiredFields,
		UniqueSymbols:  uc.UniqueSymbols,
	}
}

func descriptorResponse(d registry.Descriptor) DescriptorResponse {
	return DescriptorResponse{
		ID:          d.ID,
		Namespace:   d.UseCase,
		Submitter:   d.Submitter,
		Chain:       d.Chain,
		Contract:    d.Contract,
		SymbolCode:  d.SymbolCode,
		JSON:        d.JSON,
		Fingerprint: d.Fingerprint.String(),
		Approved:    d.Approved,
	}
}
