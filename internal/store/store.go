// Package store is the read-only data access the dialplan, directory and
// configuration resolvers depend on. Writes belong to the (out of scope)
// admin REST surface; this package only ever reads tenant/gateway
// snapshots.
package store

import (
	"context"
	"errors"

	"switchplane/internal/tenant"
)

// ErrNotFound is returned by lookups with no matching aggregate.
var ErrNotFound = errors.New("store: not found")

// Store is the interface every resolver depends on. Postgres is the
// production implementation (postgres.go); tests use an in-memory fake
// (memory.go) so resolver logic never needs a live database.
type Store interface {
	// GetTenantByDomain returns the full tenant document for domain.
	GetTenantByDomain(ctx context.Context, domain string) (tenant.Tenant, error)

	// GetTenantAndDIDByDIDNumber returns the tenant owning an active DID
	// with the given canonical number, along with that DID.
	GetTenantAndDIDByDIDNumber(ctx context.Context, didNumber string) (tenant.Tenant, tenant.DID, error)

	// GetAllExternalGateways returns the full global gateway pool.
	// Postgres returns it ordered by gateway name; Memory returns its
	// slice as given.
	GetAllExternalGateways(ctx context.Context) ([]tenant.Gateway, error)

	// FindSIPClient returns one client of one tenant directly, without
	// requiring the caller to load and scan the whole tenant document.
	FindSIPClient(ctx context.Context, domain, userID string) (tenant.SIPClient, error)
}
