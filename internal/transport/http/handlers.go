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
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tenauth/tenauth/internal/audit"
	"github.com/tenauth/tenauth/internal/identity"
	"github.com/tenauth/tenauth/internal/observability/logger"
	"github.com/tenauth/tenauth/internal/tenant"
	"github.com/tenauth/tenauth/internal/token"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Handler holds HTTP handlers and dependencies
type Handler struct {
	identityService *identity.Service
	tenantService   *tenant.Service
	tokenService    *token.Service
	auditLogger     audit.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	identityService *identity.Service,
	tenantService *tenant.Service,
	tokenService *token.Service,
	auditLogger audit.Logger,
) *Handler {
	return &Handler{
		identityService: identityService,
		tenantService:   tenantService,
		tokenService:    tokenService,
		auditLogger:     auditLogger,
	}
}

// NewRouter creates a new HTTP router
func NewRouter(h *Handler, rateLimiter *RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(RateLimitMiddleware(rateLimiter))
	r.Use(func(handler http.Handler) http.Handler {
		return otelhttp.NewHandler(handler, "http_request",
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	})
	r.Use(LoggingMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check
	r.Get("/health", h.HealthCheck)

	// Pre-authentication routes. These are the only routes that accept
	// a client-supplied tenant_id; no session or token exists yet.
	r.Post("/tenants", h.CreateTenant)
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)

	// Protected routes: tenant scope comes from verified claims only.
	r.Group(func(r chi.Router) {
		r.Use(h.AuthMiddleware)

		r.Get("/auth/verify", h.VerifyToken)
		r.Get("/me", h.GetSelf)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.ListUsers)
			r.Post("/", h.CreateUser)
			r.Get("/{userID}", h.GetUser)
			r.Put("/{userID}", h.UpdateUser)
			r.Delete("/{userID}", h.DeleteUser)
		})
	})

	return r
}

// HealthResponse is the health check body
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// HealthCheck returns the health status
// @Summary Health Check
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: "tenauth",
	})
}

// RegisterRequest represents registration data. TenantID is trusted here
// because registration happens before any principal exists.
type RegisterRequest struct {
	Email    string `json:"email" example:"user@example.com"`
	Password string `json:"password" example:"secret123"`
	TenantID string `json:"tenant_id"`
	Role     string `json:"role,omitempty" example:"user"`
}

// TokenResponse is returned from registration and login
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	TenantID    string `json:"tenant_id"`
	UserID      string `json:"user_id"`
	Role        string `json:"role"`
}

// Register handles user registration
// @Summary Register a new user
// @Description Register a user under an existing tenant and mint a token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration Data"
// @Success 201 {object} TokenResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" || req.TenantID == "" {
		respondError(w, http.StatusBadRequest, "email, password and tenant_id are required")
		return
	}

	user, err := h.identityService.Register(r.Context(), req.TenantID, req.Email, req.Password, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrUserAlreadyExists):
			respondError(w, http.StatusConflict, "user already registered")
		case errors.Is(err, identity.ErrUnknownTenant):
			respondError(w, http.StatusBadRequest, "tenant does not exist")
		case errors.Is(err, identity.ErrInvalidEmail), errors.Is(err, identity.ErrInvalidRole):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			slog.ErrorContext(r.Context(), "failed to register user",
				logger.Error(err),
				logger.Email(req.Email),
			)
			respondError(w, http.StatusInternalServerError, "failed to register user")
		}
		return
	}

	h.issueToken(w, r, http.StatusCreated, user)
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" example:"user@example.com"`
	Password string `json:"password" example:"secret123"`
	TenantID string `json:"tenant_id"`
}

// Login handles user login
// @Summary Login
// @Description Authenticate by (tenant_id, email, password) and mint a token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" || req.TenantID == "" {
		respondError(w, http.StatusBadRequest, "email, password and tenant_id are required")
		return
	}

	user, err := h.identityService.Authenticate(r.Context(), req.TenantID, req.Email, req.Password)
	if err != nil {
		// One message for unknown user and wrong password alike.
		respondError(w, http.StatusUnauthorized, "incorrect email or password")
		return
	}

	h.issueToken(w, r, http.StatusOK, user)
}

// VerifyToken reports the claims of a valid token
// @Summary Verify Token
// @Description Validate the presented bearer token and echo its claims
// @Tags Auth
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]string
// @Router /auth/verify [get]
func (h *Handler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	respondJSON(w, http.StatusOK, map[string]any{
		"valid": true,
		"user": map[string]string{
			"email":     claims.Email(),
			"tenant_id": claims.TenantID,
			"user_id":   claims.UserID,
			"role":      claims.Role,
		},
	})
}

func (h *Handler) issueToken(w http.ResponseWriter, r *http.Request, status int, user *identity.User) {
	accessToken, err := h.tokenService.Issue(user.Email, user.TenantID, user.ID, user.Role)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to issue token",
			logger.Error(err),
			logger.UserID(user.ID),
		)
		respondError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	h.auditLogger.Log(r.Context(), audit.Event{
		Type:      audit.TypeTokenIssued,
		TenantID:  user.TenantID,
		ActorID:   user.ID,
		Resource:  "token",
		IPAddress: getIPAddress(r),
		UserAgent: r.UserAgent(),
	})

	respondJSON(w, status, TokenResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
		TenantID:    user.TenantID,
		UserID:      user.ID,
		Role:        user.Role,
	})
}

// Helper functions
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

func getIPAddress(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
