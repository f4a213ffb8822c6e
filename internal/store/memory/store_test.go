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

package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/tenauth/tenauth/internal/id"
	"github.com/tenauth/tenauth/internal/identity"
	"github.com/tenauth/tenauth/internal/tenant"
)

func newUser(tenantID, email string) *identity.User {
	now := time.Now()
	return &identity.User{
		ID:           id.NewUUIDv7(),
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$aGFzaA",
		TenantID:     tenantID,
		Role:         identity.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Concurrent inserts of the same (tenant_id, email) must admit exactly
// one winner; every loser gets ErrUserAlreadyExists.
func TestUserRepositoryConcurrentCreateSameEmail(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()
	tenantID := id.NewUUIDv7()

	const attempts = 32
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.Create(ctx, newUser(tenantID, "race@acme.com"))
		}(i)
	}
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, identity.ErrUserAlreadyExists):
			lost++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if won != 1 {
		t.Errorf("winners = %d, want exactly 1", won)
	}
	if lost != attempts-1 {
		t.Errorf("losers = %d, want %d", lost, attempts-1)
	}

	users, err := repo.List(ctx, tenantID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("stored users = %d, want 1", len(users))
	}
}

func TestUserRepositoryTenantScoping(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()
	tenantA := id.NewUUIDv7()
	tenantB := id.NewUUIDv7()

	userA := newUser(tenantA, "shared@example.com")
	if err := repo.Create(ctx, userA); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Same email under a different tenant is not a conflict.
	userB := newUser(tenantB, "shared@example.com")
	if err := repo.Create(ctx, userB); err != nil {
		t.Errorf("same email under another tenant rejected: %v", err)
	}

	if _, err := repo.GetByID(ctx, tenantB, userA.ID); !errors.Is(err, identity.ErrUserNotFound) {
		t.Errorf("cross-tenant GetByID: err = %v, want ErrUserNotFound", err)
	}
	if _, err := repo.GetByEmail(ctx, tenantB, userA.Email); err != nil {
		t.Errorf("GetByEmail in tenant B should find tenant B's record: %v", err)
	}
	if err := repo.Delete(ctx, tenantB, userA.ID); !errors.Is(err, identity.ErrUserNotFound) {
		t.Errorf("cross-tenant Delete: err = %v, want ErrUserNotFound", err)
	}

	stale := *userA
	stale.TenantID = tenantB
	if err := repo.Update(ctx, &stale); !errors.Is(err, identity.ErrUserNotFound) {
		t.Errorf("cross-tenant Update: err = %v, want ErrUserNotFound", err)
	}
}

func TestUserRepositoryListOrdering(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()
	tenantID := id.NewUUIDv7()

	base := time.Now()
	for i := 0; i < 3; i++ {
		u := newUser(tenantID, fmt.Sprintf("user%d@acme.com", i))
		// Insert newest first to prove List sorts by creation time.
		u.CreatedAt = base.Add(time.Duration(-i) * time.Minute)
		if err := repo.Create(ctx, u); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	users, err := repo.List(ctx, tenantID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("list size = %d, want 3", len(users))
	}
	for i := 1; i < len(users); i++ {
		if users[i].CreatedAt.Before(users[i-1].CreatedAt) {
			t.Errorf("list not ordered by creation time at index %d", i)
		}
	}
}

// Mutating a returned record must not write through to the store.
func TestUserRepositoryReturnsCopies(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()
	tenantID := id.NewUUIDv7()

	u := newUser(tenantID, "alice@acme.com")
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetByID(ctx, tenantID, u.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got.Role = identity.RoleAdmin

	again, err := repo.GetByID(ctx, tenantID, u.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if again.Role != identity.RoleUser {
		t.Errorf("store record mutated through returned pointer: role = %q", again.Role)
	}
}

func TestTenantRepository(t *testing.T) {
	repo := NewTenantRepository()
	ctx := context.Background()

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, tenant.ErrTenantNotFound) {
		t.Errorf("missing tenant: err = %v, want ErrTenantNotFound", err)
	}

	base := time.Now()
	for i, name := range []string{"Acme Corp", "Tech Startup", "Digital Agency"} {
		tn := &tenant.Tenant{
			ID:        id.NewUUIDv7(),
			Name:      name,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := repo.Create(ctx, tn); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	tenants, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tenants) != 3 {
		t.Fatalf("list size = %d, want 3", len(tenants))
	}
	if tenants[0].Name != "Acme Corp" || tenants[2].Name != "Digital Agency" {
		t.Errorf("list not ordered by creation time: %q, %q, %q", tenants[0].Name, tenants[1].Name, tenants[2].Name)
	}
}
