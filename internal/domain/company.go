package domain

import (
	"time"

	"github.com/google/uuid"
)

// Company is a sub-organization owned by exactly one tenant. The company
// with the earliest creation timestamp acts as the tenant's primary company
// when a request carries no explicit company signal.
type Company struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
