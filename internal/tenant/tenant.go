package tenant

import (
	"time"
)

// Tenant represents an isolated customer account. Tenants are created
// once and never deleted; every user belongs to exactly one tenant.
type Tenant struct {
	ID        string    `json:"tenant_id"`
	Name      string    `json:"name"`
	Domain    string    `json:"domain,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
