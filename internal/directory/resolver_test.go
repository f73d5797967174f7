package directory

import (
	"context"
	"testing"

	"switchplane/internal/store"
	"switchplane/internal/tenant"
)

func TestResolveSIPClient(t *testing.T) {
	st := store.NewMemory()
	st.PutTenant(tenant.Tenant{
		DomainName: "a.example",
		SIPClients: []tenant.SIPClient{
			{UserID: "1001", Password: "secret", EnableVoicemail: true, VoicemailPin: "1234"},
		},
	})

	doc := NewResolver(st).Resolve(context.Background(), "a.example", "1001")
	dom := doc.Section[0].Domain
	if len(dom.User) != 1 || dom.User[0].ID != "1001" {
		t.Fatalf("expected user 1001, got %+v", dom.User)
	}
	foundPassword, foundVMPassword := false, false
	for _, p := range dom.User[0].Params {
		if p.Name == "password" && p.Value == "secret" {
			foundPassword = true
		}
		if p.Name == "vm-password" && p.Value == "1234" {
			foundVMPassword = true
		}
	}
	if !foundPassword || !foundVMPassword {
		t.Fatalf("expected password and vm-password params, got %+v", dom.User[0].Params)
	}
}

func TestResolveGroupVoicemailPseudoUser(t *testing.T) {
	st := store.NewMemory()
	st.PutTenant(tenant.Tenant{
		DomainName: "a.example",
		Groups: []tenant.Group{
			{Name: "sales", VoicemailBoxID: "9000"},
		},
	})

	doc := NewResolver(st).Resolve(context.Background(), "a.example", "9000")
	dom := doc.Section[0].Domain
	if len(dom.User) != 1 || dom.User[0].ID != "9000" {
		t.Fatalf("expected pseudo user 9000, got %+v", dom.User)
	}
	if dom.User[0].Params[0].Value != noSIPAuthPassword {
		t.Fatalf("expected NO_SIP_AUTH password, got %+v", dom.User[0].Params)
	}
}

func TestResolveDIDFailoverVoicemailPseudoUser(t *testing.T) {
	st := store.NewMemory()
	st.PutTenant(tenant.Tenant{
		DomainName: "a.example",
		DIDs: []tenant.DID{
			{
				DIDNumber:             "+15125551234",
				Active:                true,
				RoutingType:           tenant.RoutingTypeExtension,
				RoutingTarget:         "1001",
				FailoverRoutingType:   tenant.RoutingTypeDialplanExtension,
				FailoverRoutingTarget: "voicemail_1001",
			},
		},
	})

	doc := NewResolver(st).Resolve(context.Background(), "a.example", "1001")
	dom := doc.Section[0].Domain
	if len(dom.User) != 1 || dom.User[0].ID != "1001" {
		t.Fatalf("expected pseudo user 1001, got %+v", dom.User)
	}
}

func TestResolveUnknownUserReturnsEmptyDocument(t *testing.T) {
	st := store.NewMemory()
	st.PutTenant(tenant.Tenant{DomainName: "a.example"})

	doc := NewResolver(st).Resolve(context.Background(), "a.example", "nobody")
	dom := doc.Section[0].Domain
	if dom == nil || len(dom.User) != 0 {
		t.Fatalf("expected empty user list, got %+v", dom)
	}
}

func TestResolveUnknownDomainReturnsEmptyDocument(t *testing.T) {
	st := store.NewMemory()
	doc := NewResolver(st).Resolve(context.Background(), "missing.example", "1001")
	if doc.Section[0].Domain == nil || len(doc.Section[0].Domain.User) != 0 {
		t.Fatalf("expected empty document for unknown domain, got %+v", doc.Section[0])
	}
}
