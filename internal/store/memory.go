package store

import (
	"context"

	"switchplane/internal/tenant"
)

// Memory is an in-memory Store used by resolver tests so dialplan,
// directory and configuration logic can be exercised without a database.
type Memory struct {
	Tenants  map[string]tenant.Tenant
	Gateways []tenant.Gateway
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{Tenants: map[string]tenant.Tenant{}}
}

// PutTenant registers t under its normalized domain name.
func (m *Memory) PutTenant(t tenant.Tenant) {
	m.Tenants[tenant.NormalizeDomain(t.DomainName)] = t
}

func (m *Memory) GetTenantByDomain(ctx context.Context, domain string) (tenant.Tenant, error) {
	t, ok := m.Tenants[tenant.NormalizeDomain(domain)]
	if !ok {
		return tenant.Tenant{}, ErrNotFound
	}
	return t, nil
}

func (m *Memory) GetTenantAndDIDByDIDNumber(ctx context.Context, didNumber string) (tenant.Tenant, tenant.DID, error) {
	canonical := tenant.NormalizeDID(didNumber)
	for _, t := range m.Tenants {
		if did, ok := t.FindActiveDID(canonical); ok {
			return t, did, nil
		}
	}
	return tenant.Tenant{}, tenant.DID{}, ErrNotFound
}

func (m *Memory) GetAllExternalGateways(ctx context.Context) ([]tenant.Gateway, error) {
	return m.Gateways, nil
}

func (m *Memory) FindSIPClient(ctx context.Context, domain, userID string) (tenant.SIPClient, error) {
	t, err := m.GetTenantByDomain(ctx, domain)
	if err != nil {
		return tenant.SIPClient{}, err
	}
	c, ok := t.FindSIPClient(userID)
	if !ok {
		return tenant.SIPClient{}, ErrNotFound
	}
	return c, nil
}
