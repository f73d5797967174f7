package configuration

import (
	"context"
	"testing"

	"switchplane/internal/fsxml"
	"switchplane/internal/store"
	"switchplane/internal/tenant"
)

func TestResolveSofiaConfWithGateways(t *testing.T) {
	st := store.NewMemory()
	st.Gateways = []tenant.Gateway{
		{Name: "gw1", Realm: "sip.example.net", Username: "u", Password: "p", Proxy: "sip.example.net", Register: true},
	}

	doc := NewResolver(st).Resolve(context.Background(), SofiaConfKey)
	cfg := doc.Section[0].Configuration
	if cfg == nil || len(cfg.Profiles) != 2 {
		t.Fatalf("expected two profiles, got %+v", cfg)
	}
	if cfg.Profiles[0].Name != "internal" || cfg.Profiles[1].Name != "external" {
		t.Fatalf("expected internal then external, got %q, %q", cfg.Profiles[0].Name, cfg.Profiles[1].Name)
	}
	if len(cfg.Profiles[1].Gateways) != 1 || cfg.Profiles[1].Gateways[0].Name != "gw1" {
		t.Fatalf("expected one gateway named gw1, got %+v", cfg.Profiles[1].Gateways)
	}
}

func TestResolveSofiaConfEmptyPool(t *testing.T) {
	st := store.NewMemory()
	doc := NewResolver(st).Resolve(context.Background(), SofiaConfKey)
	cfg := doc.Section[0].Configuration
	if len(cfg.Profiles[1].Gateways) != 0 {
		t.Fatalf("expected empty gateway list, got %+v", cfg.Profiles[1].Gateways)
	}
}

func TestResolveUnknownKeyReturnsNotFound(t *testing.T) {
	st := store.NewMemory()
	doc := NewResolver(st).Resolve(context.Background(), "other.conf")
	if doc.Section[0].Result == nil || doc.Section[0].Result.Status != "not found" {
		t.Fatalf("expected not-found result, got %+v", doc.Section[0])
	}
}

func TestResolveSofiaConfIdempotent(t *testing.T) {
	st := store.NewMemory()
	st.Gateways = []tenant.Gateway{{Name: "gw1"}, {Name: "gw2"}}
	r := NewResolver(st)

	first, err1 := fsxml.Render(r.Resolve(context.Background(), SofiaConfKey))
	second, err2 := fsxml.Render(r.Resolve(context.Background(), SofiaConfKey))
	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected render errors: %v %v", err1, err2)
	}
	if string(first) != string(second) {
		t.Fatalf("expected idempotent rendering, got:\n%s\nvs\n%s", first, second)
	}
}
