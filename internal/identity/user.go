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
	"time"
)

// Domain errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnknownTenant      = errors.New("tenant does not exist")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrInvalidRole        = errors.New("invalid role")
)

// Roles a user may hold within a tenant. Role is carried in token claims
// for future privilege checks; no operation is gated by role today.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents a user identity scoped to a single tenant.
//
// Tenant membership is fixed for the lifetime of the record: TenantID is
// set once at creation and never updated. The (TenantID, Email) pair is
// unique; the same email in two tenants is two distinct users.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	TenantID     string    `json:"tenant_id"`
	Role         string    `json:"role"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserUpdate carries the mutable profile fields. Nil means "leave as is".
type UserUpdate struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Role      *string `json:"role"`
}

// UserRepository defines the interface for user persistence.
//
// Every method is scoped by tenant ID; implementations must never match a
// record across tenants. Create must serialize concurrent inserts of the
// same (tenant_id, email) so that exactly one wins and the rest observe
// ErrUserAlreadyExists.
type UserRepository interface {
	// Create inserts a new user. Returns ErrUserAlreadyExists if the
	// (tenant_id, email) pair is taken.
	Create(ctx context.Context, user *User) error

	// GetByEmail retrieves a user by email within a tenant.
	GetByEmail(ctx context.Context, tenantID, email string) (*User, error)

	// GetByID retrieves a user by ID within a tenant.
	GetByID(ctx context.Context, tenantID, userID string) (*User, error)

	// List returns all users belonging to a tenant.
	List(ctx context.Context, tenantID string) ([]*User, error)

	// Update persists mutable fields of an existing user.
	Update(ctx context.Context, user *User) error

	// Delete removes a user. Returns ErrUserNotFound if the
	// (tenant_id, user_id) pair matches no record.
	Delete(ctx context.Context, tenantID, userID string) error
}

// ValidRole reports whether role is one of the enumerated roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}
