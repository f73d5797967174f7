package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"switchplane/internal/tenant"
)

// pool is the minimal pgxpool surface Postgres needs, so tests can swap in
// pgxmock without depending on the concrete *pgxpool.Pool type.
type pool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Postgres is the production Store: tenants are stored one row per domain
// as a JSONB document, gateways are stored one row per name.
type Postgres struct {
	pool pool
}

// NewPostgres wraps an already-connected pgxpool.Pool.
func NewPostgres(p *pgxpool.Pool) *Postgres {
	return &Postgres{pool: p}
}

func (s *Postgres) GetTenantByDomain(ctx context.Context, domain string) (tenant.Tenant, error) {
	normalized := tenant.NormalizeDomain(domain)

	var raw []byte
	err := s.pool.QueryRow(ctx, `
		SELECT document FROM switchplane.tenants WHERE domain_key = $1
	`, normalized).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return tenant.Tenant{}, ErrNotFound
		}
		return tenant.Tenant{}, fmt.Errorf("query tenant: %w", err)
	}

	var t tenant.Tenant
	if err := json.Unmarshal(raw, &t); err != nil {
		return tenant.Tenant{}, fmt.Errorf("decode tenant document: %w", err)
	}
	return t, nil
}

func (s *Postgres) GetTenantAndDIDByDIDNumber(ctx context.Context, didNumber string) (tenant.Tenant, tenant.DID, error) {
	canonical := tenant.NormalizeDID(didNumber)
	if canonical == "" {
		return tenant.Tenant{}, tenant.DID{}, ErrNotFound
	}

	var raw []byte
	err := s.pool.QueryRow(ctx, `
		SELECT document FROM switchplane.tenants
		WHERE document->'dids' @> jsonb_build_array(jsonb_build_object('did_number', $1::text))
		LIMIT 1
	`, canonical).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return tenant.Tenant{}, tenant.DID{}, ErrNotFound
		}
		return tenant.Tenant{}, tenant.DID{}, fmt.Errorf("query tenant by did: %w", err)
	}

	var t tenant.Tenant
	if err := json.Unmarshal(raw, &t); err != nil {
		return tenant.Tenant{}, tenant.DID{}, fmt.Errorf("decode tenant document: %w", err)
	}

	did, ok := t.FindActiveDID(canonical)
	if !ok {
		return tenant.Tenant{}, tenant.DID{}, ErrNotFound
	}
	return t, did, nil
}

func (s *Postgres) GetAllExternalGateways(ctx context.Context) ([]tenant.Gateway, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT name, realm, username, password, proxy,
		       register, register_transport, dtmf_type, codec_prefs
		FROM switchplane.external_gateways
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("query gateways: %w", err)
	}
	defer rows.Close()

	var gws []tenant.Gateway
	for rows.Next() {
		var g tenant.Gateway
		if err := rows.Scan(
			&g.Name, &g.Realm, &g.Username, &g.Password, &g.Proxy,
			&g.Register, &g.RegisterTransport, &g.DTMFType, &g.CodecPrefs,
		); err != nil {
			return nil, fmt.Errorf("scan gateway: %w", err)
		}
		gws = append(gws, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gateways: %w", err)
	}
	return gws, nil
}

func (s *Postgres) FindSIPClient(ctx context.Context, domain, userID string) (tenant.SIPClient, error) {
	t, err := s.GetTenantByDomain(ctx, domain)
	if err != nil {
		return tenant.SIPClient{}, err
	}
	c, ok := t.FindSIPClient(userID)
	if !ok {
		return tenant.SIPClient{}, ErrNotFound
	}
	return c, nil
}
