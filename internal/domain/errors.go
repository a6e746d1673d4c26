package domain

import "errors"

var (
	// ErrTenantNotResolved means no signal matched an active tenant. Callers
	// must treat it as a client error, never as "use defaults".
	ErrTenantNotResolved = errors.New("tenant not resolved")

	// ErrTenantUnavailable means the tenant resolved but its database could
	// not be reached. Retryable.
	ErrTenantUnavailable = errors.New("tenant database unavailable")

	// ErrNoCompanyFound means a resolved tenant owns zero companies while the
	// operation requires company scope. Distinct from ErrTenantNotResolved so
	// operators can tell mis-provisioned tenants from unresolved requests.
	ErrNoCompanyFound = errors.New("no company found for tenant")

	// ErrModuleNotFound means a lifecycle operation targeted a module slug
	// with no record.
	ErrModuleNotFound = errors.New("module not found")
)
