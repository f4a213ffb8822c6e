// Copyright 2026 The Tenauth Authors
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

package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/tenauth/tenauth/internal/observability/logger"
)

// CreateTenantRequest represents tenant creation data
type CreateTenantRequest struct {
	Name   string `json:"name"`
	Domain string `json:"domain,omitempty"`
}

// CreateTenant creates a new tenant
// @Summary Create Tenant
// @Description Create a tenant with a freshly generated ID
// @Tags Tenants
// @Accept json
// @Produce json
// @Param request body CreateTenantRequest true "Tenant Data"
// @Success 201 {object} tenant.Tenant
// @Failure 400 {object} map[string]string
// @Router /tenants [post]
func (h *Handler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	var req CreateTenantRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "tenant name is required")
		return
	}

	t, err := h.tenantService.CreateTenant(r.Context(), req.Name, req.Domain)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to create tenant", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to create tenant")
		return
	}

	respondJSON(w, http.StatusCreated, t)
}
