package store

import (
	"context"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
)

const sampleTenantDoc = `{
	"domain_name": "a.example",
	"sip_clients": [{"user_id": "1001", "password": "secret"}],
	"groups": [],
	"dids": [{"did_number": "+15125550100", "active": true, "routing_type": "extension", "routing_target": "1001"}],
	"dialplan": []
}`

func TestPostgresGetTenantByDomain(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("new mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT document FROM switchplane\.tenants WHERE domain_key = \$1`).
		WithArgs("aexample").
		WillReturnRows(pgxmock.NewRows([]string{"document"}).AddRow([]byte(sampleTenantDoc)))

	s := &Postgres{pool: mock}
	got, err := s.GetTenantByDomain(context.Background(), "A.Example")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.DomainName != "a.example" {
		t.Fatalf("expected domain a.example, got %q", got.DomainName)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresGetTenantByDomainNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("new mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT document FROM switchplane\.tenants WHERE domain_key = \$1`).
		WithArgs("aexample").
		WillReturnRows(pgxmock.NewRows([]string{"document"}))

	s := &Postgres{pool: mock}
	_, err = s.GetTenantByDomain(context.Background(), "a.example")
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgresGetAllExternalGateways(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("new mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT name, realm, username, password, proxy`).
		WillReturnRows(pgxmock.NewRows([]string{
			"name", "realm", "username", "password", "proxy",
			"register", "register_transport", "dtmf_type", "codec_prefs",
		}).AddRow("gw1", "sip.example.net", "user", "pass", "sip.example.net",
			true, "udp", "rfc2833", ""))

	s := &Postgres{pool: mock}
	gws, err := s.GetAllExternalGateways(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gws) != 1 || gws[0].Name != "gw1" {
		t.Fatalf("expected one gateway named gw1, got %+v", gws)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
