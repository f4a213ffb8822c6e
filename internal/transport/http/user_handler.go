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
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tenauth/tenauth/internal/identity"
	"github.com/tenauth/tenauth/internal/observability/logger"
)

// Tenant-scoped user CRUD. Every handler here reads its tenant from the
// verified claims placed in context by AuthMiddleware. Cross-tenant
// lookups answer 404, never 403: a caller must not learn whether a
// record exists under another tenant.

// ListUsers returns all users in the caller's tenant
// @Summary List Users
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} identity.User
// @Failure 401 {object} map[string]string
// @Router /users [get]
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	users, err := h.identityService.ListUsers(r.Context(), claims.TenantID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list users",
			logger.Error(err),
			logger.TenantID(claims.TenantID),
		)
		respondError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	if users == nil {
		users = []*identity.User{}
	}
	respondJSON(w, http.StatusOK, users)
}

// GetUser returns one user from the caller's tenant
// @Summary Get User
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID"
// @Success 200 {object} identity.User
// @Failure 404 {object} map[string]string
// @Router /users/{userID} [get]
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	userID := chi.URLParam(r, "userID")

	user, err := h.identityService.GetUser(r.Context(), claims.TenantID, userID)
	if err != nil {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// CreateUserRequest represents user creation data. TenantID is accepted
// in the payload for wire compatibility but never read: the new record
// is always bound to the caller's token tenant.
type CreateUserRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	TenantID  string `json:"tenant_id,omitempty"`
}

// CreateUser creates a user inside the caller's tenant
// @Summary Create User
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateUserRequest true "User Data"
// @Success 201 {object} identity.User
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /users [post]
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.identityService.CreateUser(
		r.Context(),
		claims.TenantID, // req.TenantID is deliberately ignored
		claims.UserID,
		req.Email,
		req.Password,
		req.Role,
		req.FirstName,
		req.LastName,
	)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrUserAlreadyExists):
			respondError(w, http.StatusConflict, "user with this email already exists in your tenant")
		case errors.Is(err, identity.ErrInvalidEmail), errors.Is(err, identity.ErrInvalidRole):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			slog.ErrorContext(r.Context(), "failed to create user",
				logger.Error(err),
				logger.TenantID(claims.TenantID),
			)
			respondError(w, http.StatusInternalServerError, "failed to create user")
		}
		return
	}

	respondJSON(w, http.StatusCreated, user)
}

// UpdateUser applies a partial update to a user in the caller's tenant
// @Summary Update User
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID"
// @Param request body identity.UserUpdate true "Fields to update"
// @Success 200 {object} identity.User
// @Failure 404 {object} map[string]string
// @Router /users/{userID} [put]
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	userID := chi.URLParam(r, "userID")

	var update identity.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.identityService.UpdateUser(r.Context(), claims.TenantID, claims.UserID, userID, update)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrUserNotFound):
			respondError(w, http.StatusNotFound, "user not found")
		case errors.Is(err, identity.ErrInvalidRole):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			slog.ErrorContext(r.Context(), "failed to update user",
				logger.Error(err),
				logger.TenantID(claims.TenantID),
			)
			respondError(w, http.StatusInternalServerError, "failed to update user")
		}
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// DeleteUser removes a user from the caller's tenant
// @Summary Delete User
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /users/{userID} [delete]
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	userID := chi.URLParam(r, "userID")

	if err := h.identityService.DeleteUser(r.Context(), claims.TenantID, claims.UserID, userID); err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to delete user",
			logger.Error(err),
			logger.TenantID(claims.TenantID),
		)
		respondError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "user deleted successfully",
	})
}

// GetSelf returns the user record matching the caller's claims
// @Summary Get Current User
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} identity.User
// @Failure 404 {object} map[string]string
// @Router /me [get]
func (h *Handler) GetSelf(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	user, err := h.identityService.GetUser(r.Context(), claims.TenantID, claims.UserID)
	if err != nil {
		// Valid token but no matching record: the user was deleted
		// after the token was minted.
		respondError(w, http.StatusNotFound, "user not found")
		return
	}

	respondJSON(w, http.StatusOK, user)
}
