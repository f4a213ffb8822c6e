package tenant

import (
	"context"
	"errors"
)

var ErrTenantNotFound = errors.New("tenant not found")

// Repository defines the interface for tenant storage.
type Repository interface {
	Create(ctx context.Context, tenant *Tenant) error
	GetByID(ctx context.Context, id string) (*Tenant, error)
	List(ctx context.Context) ([]*Tenant, error)
}
