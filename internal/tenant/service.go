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

package tenant

import (
	"context"
	"fmt"
	"time"

	"github.com/tenauth/tenauth/internal/audit"
	"github.com/tenauth/tenauth/internal/id"
)

// Service provides tenant management business logic
type Service struct {
	repo        Repository
	auditLogger audit.Logger
}

// NewService creates a new tenant service
func NewService(repo Repository, auditLogger audit.Logger) *Service {
	return &Service{
		repo:        repo,
		auditLogger: auditLogger,
	}
}

// CreateTenant creates a new tenant with a freshly generated ID.
// It always succeeds for a valid name; there is no uniqueness
// requirement on tenant names.
func (s *Service) CreateTenant(ctx context.Context, name, domain string) (*Tenant, error) {
	if name == "" {
		return nil, fmt.Errorf("tenant name is required")
	}

	t := &Tenant{
		ID:        id.NewUUIDv7(),
		Name:      name,
		Domain:    domain,
		CreatedAt: time.Now(),
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeTenantCreated,
		TenantID: t.ID,
		Resource: "tenant",
		Metadata: map[string]any{"name": t.Name},
	})

	return t, nil
}

// GetTenant retrieves a tenant by ID
func (s *Service) GetTenant(ctx context.Context, tenantID string) (*Tenant, error) {
	return s.repo.GetByID(ctx, tenantID)
}

// ListTenants lists all tenants
func (s *Service) ListTenants(ctx context.Context) ([]*Tenant, error) {
	return s.repo.List(ctx)
}
