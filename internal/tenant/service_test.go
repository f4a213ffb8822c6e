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

package tenant_test

import (
	"context"
	"errors"
	"testing"

	"github.com/tenauth/tenauth/internal/audit"
	"github.com/tenauth/tenauth/internal/store/memory"
	"github.com/tenauth/tenauth/internal/tenant"
)

type noopAudit struct{}

func (noopAudit) Log(ctx context.Context, event audit.Event) {}

func TestCreateAndGetTenant(t *testing.T) {
	svc := tenant.NewService(memory.NewTenantRepository(), noopAudit{})
	ctx := context.Background()

	created, err := svc.CreateTenant(ctx, "Acme Corp", "acme.com")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Error("expected generated tenant ID")
	}
	if created.Name != "Acme Corp" || created.Domain != "acme.com" {
		t.Errorf("unexpected tenant: %+v", created)
	}

	got, err := svc.GetTenant(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("got ID %q, want %q", got.ID, created.ID)
	}
}

func TestCreateTenantRequiresName(t *testing.T) {
	svc := tenant.NewService(memory.NewTenantRepository(), noopAudit{})

	if _, err := svc.CreateTenant(context.Background(), "", "acme.com"); err == nil {
		t.Error("expected error for empty name")
	}
}

// Tenant names are not unique; two tenants with the same name get
// distinct IDs.
func TestCreateTenantDuplicateNames(t *testing.T) {
	svc := tenant.NewService(memory.NewTenantRepository(), noopAudit{})
	ctx := context.Background()

	first, err := svc.CreateTenant(ctx, "Acme Corp", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := svc.CreateTenant(ctx, "Acme Corp", "")
	if err != nil {
		t.Fatalf("create duplicate name: %v", err)
	}
	if first.ID == second.ID {
		t.Error("expected distinct IDs for duplicate names")
	}

	tenants, err := svc.ListTenants(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tenants) != 2 {
		t.Errorf("list size = %d, want 2", len(tenants))
	}
}

func TestGetTenantNotFound(t *testing.T) {
	svc := tenant.NewService(memory.NewTenantRepository(), noopAudit{})

	_, err := svc.GetTenant(context.Background(), "missing")
	if !errors.Is(err, tenant.ErrTenantNotFound) {
		t.Errorf("err = %v, want ErrTenantNotFound", err)
	}
}
