// Package configuration emits the sofia.conf SIP-profile document: a
// fixed internal registration profile and an external profile populated
// from the shared gateway pool.
package configuration

import (
	"context"

	"switchplane/internal/fsxml"
	"switchplane/internal/store"
	"switchplane/internal/tenant"
)

// SofiaConfKey is the only configuration key this resolver recognizes.
const SofiaConfKey = "sofia.conf"

// Resolver answers configuration lookups against a Store.
type Resolver struct {
	Store store.Store
}

// NewResolver returns a Resolver backed by st.
func NewResolver(st store.Store) *Resolver {
	return &Resolver{Store: st}
}

// Resolve emits the profile set for key, or a "not found" document for
// anything other than SofiaConfKey.
func (r *Resolver) Resolve(ctx context.Context, key string) *fsxml.Document {
	if key != SofiaConfKey {
		return fsxml.NotFoundDocument()
	}

	gateways, err := r.Store.GetAllExternalGateways(ctx)
	if err != nil {
		gateways = nil
	}

	return fsxml.EmitConfiguration([]fsxml.SIPProfile{
		internalProfile(),
		externalProfile(gateways),
	})
}

func internalProfile() fsxml.SIPProfile {
	return fsxml.SIPProfile{
		Name: "internal",
		Settings: []fsxml.KV{
			{Name: "context", Value: "default"},
			{Name: "sip-port", Value: "5060"},
			{Name: "auth-calls", Value: "true"},
			{Name: "apply-nat-acl", Value: "nat.auto"},
			{Name: "presence-privacy", Value: "false"},
			{Name: "manage-presence", Value: "true"},
			{Name: "inbound-codec-negotiation", Value: "generous"},
			{Name: "record-path", Value: "/var/lib/switchplane/recordings"},
			{Name: "record-template", Value: "${caller_id_number}.${target_domain}.${uuid}.wav"},
		},
	}
}

// externalProfile enumerates the shared gateway pool. An empty pool still
// yields a well-formed profile with the documented safe defaults and no
// gateways.
func externalProfile(gateways []tenant.Gateway) fsxml.SIPProfile {
	gws := make([]fsxml.ProfileGateway, 0, len(gateways))
	for _, g := range gateways {
		params := []fsxml.KV{
			{Name: "realm", Value: g.Realm},
			{Name: "username", Value: g.Username},
			{Name: "password", Value: g.Password},
			{Name: "proxy", Value: g.Proxy},
			{Name: "register", Value: boolString(g.Register)},
		}
		if g.RegisterTransport != "" {
			params = append(params, fsxml.KV{Name: "register-transport", Value: g.RegisterTransport})
		}
		if g.DTMFType != "" {
			params = append(params, fsxml.KV{Name: "dtmf-type", Value: g.DTMFType})
		}
		if g.CodecPrefs != "" {
			params = append(params, fsxml.KV{Name: "codec-prefs", Value: g.CodecPrefs})
		}
		gws = append(gws, fsxml.ProfileGateway{Name: g.Name, Params: params})
	}

	return fsxml.SIPProfile{
		Name: "external",
		Settings: []fsxml.KV{
			{Name: "context", Value: "public"},
			{Name: "sip-port", Value: "5080"},
			{Name: "auth-calls", Value: "false"},
			{Name: "apply-nat-acl", Value: "nat.auto"},
			{Name: "inbound-codec-negotiation", Value: "generous"},
		},
		Gateways: gws,
	}
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
