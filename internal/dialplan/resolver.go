package dialplan

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"switchplane/internal/cnam"
	"switchplane/internal/fsxml"
	"switchplane/internal/store"
	"switchplane/internal/tenant"
)

const voicemailRetrievalCode = "*98"

var (
	pstnPattern      = regexp.MustCompile(`^(\+?1?)?(\d{10})$`)
	externalDialRe   = regexp.MustCompile(`^\+?\d{10,15}$`)
)

// Resolver is the dialplan router. It holds no per-request state: every
// call to Resolve is a pure function of its inputs and whatever the store
// and CNAM client return for that request.
type Resolver struct {
	Store store.Store
	CNAM  cnam.Client

	// OutboundTrunkProfile names the sofia gateway profile local dial-out
	// (destinations of 10-15 digits dialed from inside a tenant) bridges
	// through, distinct from the pool gateway the outbound-PSTN match
	// selects for a bare North-American number.
	OutboundTrunkProfile string
}

// NewResolver returns a Resolver with the documented outbound trunk
// profile default.
func NewResolver(st store.Store, cnamClient cnam.Client) *Resolver {
	return &Resolver{Store: st, CNAM: cnamClient, OutboundTrunkProfile: "outbound"}
}

// Resolve classifies the request and returns the XML program the switch
// should execute. It never returns nil and never panics on bad input;
// every unhandled path degrades to fsxml.ErrorDocument.
func (r *Resolver) Resolve(ctx context.Context, vars RequestVars) *fsxml.Document {
	switch vars.Context() {
	case "public":
		return r.resolvePublic(ctx, vars)
	case "default":
		return r.resolveDefault(ctx, vars)
	default:
		slog.Warn("dialplan: unrecognized context, emitting fallback", "context", vars.Context())
		return fsxml.ErrorDocument()
	}
}

func (r *Resolver) resolvePublic(ctx context.Context, vars RequestVars) *fsxml.Document {
	did := vars.RealDID()
	if did == "" {
		slog.Info("dialplan: public context call with no DID hint")
		return fsxml.ErrorDocument()
	}
	return r.resolveInboundDID(ctx, vars, did)
}

func (r *Resolver) resolveDefault(ctx context.Context, vars RequestVars) *fsxml.Document {
	if doc := r.interDomainGuard(vars); doc != nil {
		return doc
	}

	domain := vars.Domain()
	destination := vars.Destination()

	if doc, matched := r.resolveOutboundPSTN(ctx, destination); matched {
		return doc
	}

	t, err := r.Store.GetTenantByDomain(ctx, domain)
	if err != nil {
		slog.Info("dialplan: no tenant for domain, emitting fallback", "domain", domain)
		return fsxml.ErrorDocument()
	}

	if actions := r.localDispatch(t, domain, destination); actions != nil {
		return fsxml.EmitDialplan(fsxml.ExtensionProgram{
			Context:        "default",
			Name:           "local",
			ConditionField: "destination_number",
			Expression:     anchor(destination),
			Actions:        actions,
		})
	}

	return fsxml.ErrorDocument()
}

// interDomainGuard rejects a call whose originating channel names a SIP
// domain other than the one the request claims to belong to.
func (r *Resolver) interDomainGuard(vars RequestVars) *fsxml.Document {
	callerDomain, ok := domainFromChannelName(vars.CallerChannelName())
	if !ok {
		return nil
	}
	if tenant.NormalizeDomain(callerDomain) == tenant.NormalizeDomain(vars.Domain()) {
		return nil
	}
	return fsxml.EmitDialplan(fsxml.ExtensionProgram{
		Context:        "default",
		Name:           "reject",
		ConditionField: "destination_number",
		Expression:     anchor(vars.Destination()),
		Actions: []fsxml.ProgramAction{
			{Application: "hangup", Data: "CALL_REJECTED"},
		},
	})
}

func domainFromChannelName(channelName string) (string, bool) {
	idx := strings.LastIndex(channelName, "@")
	if idx < 0 || idx == len(channelName)-1 {
		return "", false
	}
	return channelName[idx+1:], true
}

// resolveOutboundPSTN matches a bare North-American number and bridges it
// through the first gateway in the shared pool. matched is false (letting
// the caller fall through to local dispatch) both when the destination
// doesn't look like a PSTN number and when it does but no gateway exists.
func (r *Resolver) resolveOutboundPSTN(ctx context.Context, destination string) (*fsxml.Document, bool) {
	m := pstnPattern.FindStringSubmatch(destination)
	if m == nil {
		return nil, false
	}
	gateways, err := r.Store.GetAllExternalGateways(ctx)
	if err != nil || len(gateways) == 0 {
		return nil, false
	}
	gw := gateways[0]
	number := "+1" + m[2]

	doc := fsxml.EmitDialplan(fsxml.ExtensionProgram{
		Context:        "default",
		Name:           "outbound_pstn",
		ConditionField: "destination_number",
		Expression:     anchor(destination),
		Actions: []fsxml.ProgramAction{
			{Application: "bridge", Data: fmt.Sprintf("sofia/gateway/%s/%s", gw.Name, number)},
			{Application: "playback", Data: "ivr/ivr-call_cannot_be_completed_as_dialed.wav"},
			{Application: "hangup"},
		},
	})
	return doc, true
}

// localDispatch runs the fixed precedence chain for calls placed inside a
// tenant's own domain. It returns nil when nothing in the chain matches,
// signalling the caller to fall back to the generic no-route program.
func (r *Resolver) localDispatch(t tenant.Tenant, domain, destination string) []fsxml.ProgramAction {
	if destination == voicemailRetrievalCode {
		return []fsxml.ProgramAction{
			{Application: "answer"},
			{Application: "sleep", Data: "1000"},
			{Application: "voicemail", Data: fmt.Sprintf("check default %s", domain)},
			{Application: "hangup"},
		}
	}

	if grp, ok := t.FindGroup(destination); ok {
		return groupDialActions(grp, domain)
	}

	for _, entry := range t.Dialplan {
		if entry.ConditionField != "destination_number" {
			continue
		}
		re, err := regexp.Compile(entry.ConditionExpression)
		if err != nil {
			slog.Warn("dialplan: tenant extension has invalid regex, skipping",
				"domain", domain, "extension", entry.Name, "error", err)
			continue
		}
		if re.MatchString(destination) {
			return actionsFromTenant(entry.Actions)
		}
	}

	if client, ok := t.FindSIPClient(byNormalizedUserID(t, destination)); ok {
		return directClientActions(client, domain)
	}

	if externalDialRe.MatchString(destination) {
		return []fsxml.ProgramAction{
			{Application: "bridge", Data: fmt.Sprintf("sofia/gateway/%s/%s", r.OutboundTrunkProfile, destination)},
			{Application: "playback", Data: "ivr/ivr-call_cannot_be_completed_as_dialed.wav"},
			{Application: "hangup"},
		}
	}

	return nil
}

// byNormalizedUserID returns the user_id in t matching destination after
// case/format-insensitive comparison, or "" if none matches.
func byNormalizedUserID(t tenant.Tenant, destination string) string {
	want := tenant.NormalizeIdentifier(destination)
	for _, c := range t.SIPClients {
		if tenant.NormalizeIdentifier(c.UserID) == want {
			return c.UserID
		}
	}
	return ""
}

// groupBridgeAction builds the single bridge action that rings a group's
// members in precedence order, with no failure-handling tail of its own —
// callers decide what happens if the bridge doesn't connect.
func groupBridgeAction(g tenant.Group, domain string) fsxml.ProgramAction {
	members := make([]tenant.GroupMember, len(g.Members))
	copy(members, g.Members)
	sort.SliceStable(members, func(i, j int) bool { return members[i].Order < members[j].Order })

	uris := make([]string, 0, len(members))
	for _, m := range members {
		uris = append(uris, fmt.Sprintf("user/%s@%s", m.UserID, domain))
	}

	sep := ","
	if g.Type == tenant.GroupTypeHunt {
		sep = "|"
	}

	data := strings.Join(uris, sep)
	if g.Timeout > 0 {
		data = fmt.Sprintf("timeout=%d,%s", g.Timeout, data)
	}

	return fsxml.ProgramAction{Application: "bridge", Data: data}
}

// groupDialActions is groupBridgeAction plus the group's own no-answer
// tail, used for local dispatch where the group is the terminal routing
// target and must supply its own fallback.
func groupDialActions(g tenant.Group, domain string) []fsxml.ProgramAction {
	actions := []fsxml.ProgramAction{groupBridgeAction(g, domain)}
	return append(actions, noAnswerFallback(domain, g.VoicemailBoxID, g.NoAnswerAction)...)
}

func directClientActions(c tenant.SIPClient, domain string) []fsxml.ProgramAction {
	setAndExport := func(name, value string) []fsxml.ProgramAction {
		kv := name + "=" + value
		return []fsxml.ProgramAction{
			{Application: "set", Data: kv},
			{Application: "export", Data: kv},
		}
	}

	actions := setAndExport("dialed_extension", c.UserID)
	actions = append(actions,
		fsxml.ProgramAction{Application: "set", Data: fmt.Sprintf("user_exists=${user_exists(id %s %s)}", c.UserID, domain)},
		fsxml.ProgramAction{Application: "set", Data: "RECORD_SESSION=${recordings_enabled}"},
		fsxml.ProgramAction{Application: "set", Data: fmt.Sprintf("call_forward_enabled=${user_data(%s@%s var call_forward_enabled)}", c.UserID, domain)},
		fsxml.ProgramAction{Application: "set", Data: "park_after_bridge=true"},
		fsxml.ProgramAction{Application: "set", Data: "ringback=${us-ring}"},
		fsxml.ProgramAction{Application: "set", Data: "transfer_ringback=${us-ring}"},
		fsxml.ProgramAction{Application: "set", Data: fmt.Sprintf("call_timeout=%d", c.NoAnswerTimeout())},
		fsxml.ProgramAction{Application: "set", Data: "hangup_after_bridge=true"},
		fsxml.ProgramAction{Application: "set", Data: "continue_on_fail=true"},
		fsxml.ProgramAction{Application: "hash", Data: fmt.Sprintf("insert/call_return/${caller_id_number}/%s", c.UserID)},
		fsxml.ProgramAction{Application: "hash", Data: fmt.Sprintf("insert/last_dial_ext/%s/${caller_id_number}", c.UserID)},
		fsxml.ProgramAction{Application: "bridge", Data: fmt.Sprintf("user/%s@%s", c.UserID, domain)},
	)

	boxID := ""
	if c.EnableVoicemail {
		boxID = c.UserID
	}
	return append(actions, noAnswerFallback(domain, boxID, nil)...)
}

// noAnswerFallback is the shared "what happens if the bridge doesn't
// connect" tail for group and direct-client dispatch: prefer the
// mailbox, then a declared custom action, then a plain announcement.
func noAnswerFallback(domain, voicemailBoxID string, custom []tenant.Action) []fsxml.ProgramAction {
	if voicemailBoxID != "" {
		return []fsxml.ProgramAction{
			{Application: "answer"},
			{Application: "sleep", Data: "1000"},
			{Application: "voicemail", Data: fmt.Sprintf("default %s %s", domain, voicemailBoxID)},
			{Application: "hangup"},
		}
	}
	if len(custom) > 0 {
		return actionsFromTenant(custom)
	}
	return []fsxml.ProgramAction{
		{Application: "answer"},
		{Application: "playback", Data: "ivr/ivr-call_cannot_be_completed_as_dialed.wav"},
		{Application: "hangup"},
	}
}

func actionsFromTenant(in []tenant.Action) []fsxml.ProgramAction {
	out := make([]fsxml.ProgramAction, 0, len(in))
	for _, a := range in {
		out = append(out, fsxml.ProgramAction{Application: a.Application, Data: a.Data})
	}
	return out
}

// resolveInboundDID handles a public-context call once a real DID has
// been extracted: CNAM-enrich the caller, locate the owning tenant,
// build the identity-rewrite preamble and dispatch on the DID's
// routing_type, finishing with its declared failover.
func (r *Resolver) resolveInboundDID(ctx context.Context, vars RequestVars, realDID string) *fsxml.Document {
	name, number := r.enrichCallerIdentity(ctx, vars)

	t, did, err := r.Store.GetTenantAndDIDByDIDNumber(ctx, realDID)
	if err != nil {
		slog.Info("dialplan: no tenant owns inbound DID, emitting fallback", "did", realDID)
		return fsxml.ErrorDocument()
	}
	domain := t.DomainName

	preamble := identityPreamble(name, number, domain)

	dispatch, ok := dispatchDIDRouting(t, did, domain)
	if !ok {
		slog.Info("dialplan: DID routing target missing, emitting fallback",
			"domain", domain, "did", did.DIDNumber, "routing_type", did.RoutingType)
		return fsxml.ErrorDocument()
	}

	actions := append(preamble, dispatch...)
	actions = append(actions, didFailoverActions(domain, did)...)

	return fsxml.EmitDialplan(fsxml.ExtensionProgram{
		Context:        "default",
		Name:           "inbound_did",
		ConditionField: "destination_number",
		Expression:     anchor(vars.Destination()),
		Actions:        actions,
	})
}

func (r *Resolver) enrichCallerIdentity(ctx context.Context, vars RequestVars) (name, number string) {
	number = vars.CallerIDNumber()
	name = vars.CallerIDName()

	if r.CNAM != nil {
		if rec, _ := r.CNAM.Lookup(ctx, number); rec != nil {
			name = fmt.Sprintf("%s, %s, %s", rec.NationalNumberFormatted, rec.CallerIDName, rec.Location)
		}
	}

	number = strings.TrimPrefix(number, "+1")
	return name, number
}

func identityPreamble(name, number, domain string) []fsxml.ProgramAction {
	setAndExport := func(k, v string) []fsxml.ProgramAction {
		kv := k + "=" + v
		return []fsxml.ProgramAction{
			{Application: "set", Data: kv},
			{Application: "export", Data: kv},
		}
	}

	var actions []fsxml.ProgramAction
	actions = append(actions, setAndExport("caller_id_name", name)...)
	actions = append(actions, setAndExport("caller_id_number", number)...)
	actions = append(actions, setAndExport("effective_caller_id_name", name)...)
	actions = append(actions, setAndExport("effective_caller_id_number", number)...)
	actions = append(actions, setAndExport("sip_invite_domain", domain)...)
	actions = append(actions, setAndExport("sip_from_host", domain)...)
	actions = append(actions, setAndExport("sip_from_user", number)...)
	actions = append(actions, setAndExport("sip_from_display", name)...)
	actions = append(actions, setAndExport("sip_from_uri", number+"@"+domain)...)
	actions = append(actions,
		fsxml.ProgramAction{Application: "set", Data: "continue_on_fail=true"},
		fsxml.ProgramAction{Application: "set", Data: "hangup_after_bridge=true"},
	)
	return actions
}

// dispatchDIDRouting builds the primary routing action for a DID. ok is
// false when the routing_type names a target that no longer exists.
func dispatchDIDRouting(t tenant.Tenant, did tenant.DID, domain string) ([]fsxml.ProgramAction, bool) {
	switch did.RoutingType {
	case tenant.RoutingTypeExtension:
		if _, ok := t.FindSIPClient(did.RoutingTarget); !ok {
			return nil, false
		}
		return []fsxml.ProgramAction{
			{Application: "bridge", Data: fmt.Sprintf("user/%s@%s", did.RoutingTarget, domain)},
		}, true
	case tenant.RoutingTypeGroup:
		grp, ok := t.FindGroup(did.RoutingTarget)
		if !ok {
			return nil, false
		}
		// Bridge only: didFailoverActions is the sole failure-handling
		// tail for every DID routing_type, including group, so the
		// group's own no-answer fallback must not also run here.
		return []fsxml.ProgramAction{groupBridgeAction(grp, domain)}, true
	case tenant.RoutingTypeIVR:
		return []fsxml.ProgramAction{
			{Application: "transfer", Data: fmt.Sprintf("%s XML %s_ivr_context", did.RoutingTarget, domain)},
		}, true
	default:
		return []fsxml.ProgramAction{
			{Application: "transfer", Data: did.RoutingTarget},
		}, true
	}
}

func didFailoverActions(domain string, did tenant.DID) []fsxml.ProgramAction {
	if did.FailoverRoutingType == tenant.RoutingTypeDialplanExtension {
		if boxID, ok := tenant.VoicemailBoxFromTarget(did.FailoverRoutingTarget); ok {
			return []fsxml.ProgramAction{
				{Application: "answer"},
				{Application: "sleep", Data: "1000"},
				{Application: "voicemail", Data: fmt.Sprintf("default %s %s", domain, boxID)},
				{Application: "hangup"},
			}
		}
	}
	return []fsxml.ProgramAction{
		{Application: "answer"},
		{Application: "playback", Data: "ivr/ivr-call_cannot_be_completed_as_dialed.wav"},
		{Application: "hangup"},
	}
}

func anchor(destination string) string {
	return "^" + regexp.QuoteMeta(destination) + "$"
}
