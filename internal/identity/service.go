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

package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tenauth/tenauth/internal/audit"
	"github.com/tenauth/tenauth/internal/id"
	"github.com/tenauth/tenauth/internal/tenant"
)

// Service provides identity-related business logic.
//
// Every operation takes an explicit tenantID. For Register and
// Authenticate this is the client-supplied tenant (pre-authentication,
// no verified principal exists yet). For everything else it must be the
// tenant from verified token claims; callers never pass a tenant taken
// from request input on those paths.
type Service struct {
	users       UserRepository
	tenants     tenant.Repository
	hasher      *PasswordHasher
	auditLogger audit.Logger
}

// NewService creates a new identity service
func NewService(users UserRepository, tenants tenant.Repository, hasher *PasswordHasher, auditLogger audit.Logger) *Service {
	return &Service{
		users:       users,
		tenants:     tenants,
		hasher:      hasher,
		auditLogger: auditLogger,
	}
}

// Register creates a user under an existing tenant. The tenant must
// already exist; registration is the only path that verifies tenant
// existence because it trusts a client-supplied tenant ID.
func (s *Service) Register(ctx context.Context, tenantID, email, password, role string) (*User, error) {
	if !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if role == "" {
		role = RoleUser
	}
	if !ValidRole(role) {
		return nil, ErrInvalidRole
	}

	if _, err := s.tenants.GetByID(ctx, tenantID); err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			return nil, ErrUnknownTenant
		}
		return nil, fmt.Errorf("failed to verify tenant: %w", err)
	}

	user, err := s.createUser(ctx, tenantID, email, password, role, "", "")
	if err != nil {
		return nil, err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeUserCreated,
		TenantID: tenantID,
		ActorID:  user.ID, // self-registration
		Resource: "user",
		Metadata: map[string]any{"email": user.Email, "role": user.Role},
	})

	return user, nil
}

// Authenticate authenticates a user by (tenant_id, email, password).
// It returns ErrInvalidCredentials for both unknown users and password
// mismatches; callers must not be able to tell which failed.
func (s *Service) Authenticate(ctx context.Context, tenantID, email, password string) (*User, error) {
	user, err := s.users.GetByEmail(ctx, tenantID, email)
	if err != nil {
		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeLoginFailed,
			TenantID: tenantID,
			Resource: email,
			Metadata: map[string]any{"reason": "user_not_found"},
		})
		return nil, ErrInvalidCredentials
	}

	valid, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil || !valid {
		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeLoginFailed,
			TenantID: tenantID,
			ActorID:  user.ID,
			Resource: "login",
			Metadata: map[string]any{"reason": "invalid_password"},
		})
		return nil, ErrInvalidCredentials
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeLoginSuccess,
		TenantID: tenantID,
		ActorID:  user.ID,
		Resource: "login",
	})

	return user, nil
}

// CreateUser creates a user inside the caller's tenant. tenantID must
// come from verified claims; any tenant carried in request input is
// ignored upstream, so a caller cannot create a record under a foreign
// tenant.
func (s *Service) CreateUser(ctx context.Context, tenantID, actorID, email, password, role, firstName, lastName string) (*User, error) {
	if !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if role == "" {
		role = RoleUser
	}
	if !ValidRole(role) {
		return nil, ErrInvalidRole
	}

	user, err := s.createUser(ctx, tenantID, email, password, role, firstName, lastName)
	if err != nil {
		return nil, err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeUserCreated,
		TenantID: tenantID,
		ActorID:  actorID,
		Resource: "user",
		Metadata: map[string]any{"email": user.Email, "role": user.Role},
	})

	return user, nil
}

// GetUser retrieves a user by ID within the caller's tenant. A user that
// exists under a different tenant is reported as not found.
func (s *Service) GetUser(ctx context.Context, tenantID, userID string) (*User, error) {
	return s.users.GetByID(ctx, tenantID, userID)
}

// ListUsers returns all users in the caller's tenant.
func (s *Service) ListUsers(ctx context.Context, tenantID string) ([]*User, error) {
	return s.users.List(ctx, tenantID)
}

// UpdateUser applies a partial profile update within the caller's tenant.
// TenantID and Email are immutable; only first name, last name and role
// can change.
func (s *Service) UpdateUser(ctx context.Context, tenantID, actorID, userID string, update UserUpdate) (*User, error) {
	user, err := s.users.GetByID(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	if update.FirstName != nil {
		user.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		user.LastName = *update.LastName
	}
	if update.Role != nil {
		if !ValidRole(*update.Role) {
			return nil, ErrInvalidRole
		}
		user.Role = *update.Role
	}
	user.UpdatedAt = time.Now()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeUserUpdated,
		TenantID: tenantID,
		ActorID:  actorID,
		Resource: "user",
		Metadata: map[string]any{"user_id": userID},
	})

	return user, nil
}

// DeleteUser removes a user within the caller's tenant.
func (s *Service) DeleteUser(ctx context.Context, tenantID, actorID, userID string) error {
	if err := s.users.Delete(ctx, tenantID, userID); err != nil {
		return err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeUserDeleted,
		TenantID: tenantID,
		ActorID:  actorID,
		Resource: "user",
		Metadata: map[string]any{"user_id": userID},
	})

	return nil
}

func (s *Service) createUser(ctx context.Context, tenantID, email, password, role, firstName, lastName string) (*User, error) {
	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &User{
		ID:           id.NewUUIDv7(),
		Email:        email,
		PasswordHash: passwordHash,
		TenantID:     tenantID,
		Role:         role,
		FirstName:    firstName,
		LastName:     lastName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func isValidEmail(email string) bool {
	// Shape check only; deliverability is not this service's concern.
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && len(email) < 255
}
