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

// Package memory provides in-memory implementations of the tenant and
// user repositories for tests and demo runs. A single mutex per
// repository gives the per-key atomicity the design requires; in
// particular, concurrent registrations of the same (tenant_id, email)
// are serialized so exactly one wins.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/tenauth/tenauth/internal/identity"
	"github.com/tenauth/tenauth/internal/tenant"
)

// TenantRepository implements tenant.Repository
type TenantRepository struct {
	mu      sync.RWMutex
	tenants map[string]tenant.Tenant
}

// NewTenantRepository creates an empty in-memory tenant repository
func NewTenantRepository() *TenantRepository {
	return &TenantRepository{
		tenants: make(map[string]tenant.Tenant),
	}
}

func (r *TenantRepository) Create(ctx context.Context, t *tenant.Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tenants[t.ID] = *t
	return nil
}

func (r *TenantRepository) GetByID(ctx context.Context, id string) (*tenant.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tenants[id]
	if !ok {
		return nil, tenant.ErrTenantNotFound
	}
	return &t, nil
}

func (r *TenantRepository) List(ctx context.Context) ([]*tenant.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tenants := make([]*tenant.Tenant, 0, len(r.tenants))
	for _, t := range r.tenants {
		t := t
		tenants = append(tenants, &t)
	}
	sort.Slice(tenants, func(i, j int) bool { return tenants[i].CreatedAt.Before(tenants[j].CreatedAt) })
	return tenants, nil
}

// UserRepository implements identity.UserRepository
type UserRepository struct {
	mu sync.Mutex
	// keyed by user ID; the (tenant_id, email) uniqueness check happens
	// under the same lock as the insert
	users map[string]identity.User
}

// NewUserRepository creates an empty in-memory user repository
func NewUserRepository() *UserRepository {
	return &UserRepository{
		users: make(map[string]identity.User),
	}
}

func (r *UserRepository) Create(ctx context.Context, user *identity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.TenantID == user.TenantID && u.Email == user.Email {
			return identity.ErrUserAlreadyExists
		}
	}

	r.users[user.ID] = *user
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, tenantID, email string) (*identity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.TenantID == tenantID && u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, identity.ErrUserNotFound
}

func (r *UserRepository) GetByID(ctx context.Context, tenantID, userID string) (*identity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok || u.TenantID != tenantID {
		return nil, identity.ErrUserNotFound
	}
	return &u, nil
}

func (r *UserRepository) List(ctx context.Context, tenantID string) ([]*identity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var users []*identity.User
	for _, u := range r.users {
		if u.TenantID == tenantID {
			u := u
			users = append(users, &u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, user *identity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[user.ID]
	if !ok || existing.TenantID != user.TenantID {
		return identity.ErrUserNotFound
	}
	r.users[user.ID] = *user
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, tenantID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok || u.TenantID != tenantID {
		return identity.ErrUserNotFound
	}
	delete(r.users, userID)
	return nil
}
