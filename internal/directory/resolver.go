// Package directory answers "who is this SIP user" lookups: a registered
// client, a voicemail-only pseudo-user for a group or DID mailbox, or an
// empty document when nothing matches.
package directory

import (
	"context"
	"log/slog"

	"switchplane/internal/fsxml"
	"switchplane/internal/store"
	"switchplane/internal/tenant"
)

// noSIPAuthPassword marks the pseudo-users synthesized for voicemail-only
// mailboxes: they never register, so any credential check must fail
// closed rather than accept a real password.
const noSIPAuthPassword = "NO_SIP_AUTH"

// Resolver answers directory lookups against a Store.
type Resolver struct {
	Store store.Store
}

// NewResolver returns a Resolver backed by st.
func NewResolver(st store.Store) *Resolver {
	return &Resolver{Store: st}
}

// Resolve looks up (domain, userOrMailboxID) in precedence order: a
// registered SIP client, then a group mailbox, then a DID failover
// mailbox. A miss on all three yields the documented empty document.
func (r *Resolver) Resolve(ctx context.Context, domain, userOrMailboxID string) *fsxml.Document {
	t, err := r.Store.GetTenantByDomain(ctx, domain)
	if err != nil {
		slog.Info("directory: no tenant for domain", "domain", domain)
		return fsxml.EmitDirectory(domain, nil)
	}

	if client, ok := t.FindSIPClient(userOrMailboxID); ok {
		return fsxml.EmitDirectory(domain, sipClientUser(client, domain))
	}

	if grp, ok := t.FindGroupByVoicemailBox(userOrMailboxID); ok {
		return fsxml.EmitDirectory(domain, voicemailPseudoUser(grp.VoicemailBoxID))
	}

	if did, ok := t.FindDIDByFailoverVoicemail(userOrMailboxID); ok {
		boxID, _ := tenant.VoicemailBoxFromTarget(did.FailoverRoutingTarget)
		return fsxml.EmitDirectory(domain, voicemailPseudoUser(boxID))
	}

	return fsxml.EmitDirectory(domain, nil)
}

func sipClientUser(c tenant.SIPClient, domain string) *fsxml.DirectoryUser {
	params := []fsxml.KV{{Name: "password", Value: c.Password}}
	if c.EnableVoicemail {
		params = append(params, fsxml.KV{Name: "vm-password", Value: c.VoicemailPin})
	}

	vars := []fsxml.KV{
		{Name: "user_context", Value: "default"},
		{Name: "domain_name", Value: domain},
		{Name: "dial-string", Value: "{sip_invite_domain=" + domain + "}user/" + c.UserID + "@" + domain},
	}
	if c.VoicemailEmail != "" {
		vars = append(vars, fsxml.KV{Name: "voicemail_mail_to", Value: c.VoicemailEmail})
	}
	callerIDName := c.LocalCallerIDName
	if callerIDName == "" {
		callerIDName = c.DisplayName
	}
	vars = append(vars,
		fsxml.KV{Name: "effective_caller_id_name", Value: callerIDName},
		fsxml.KV{Name: "effective_caller_id_number", Value: c.UserID},
	)

	return &fsxml.DirectoryUser{ID: c.UserID, Params: params, Vars: vars}
}

// voicemailPseudoUser builds a directory entry for a mailbox with no SIP
// registration of its own. The data model carries a PIN on a SIPClient's
// own mailbox but not on group/DID mailboxes, so this entry's PIN is left
// for the mailbox app itself to challenge for.
func voicemailPseudoUser(boxID string) *fsxml.DirectoryUser {
	return &fsxml.DirectoryUser{
		ID: boxID,
		Params: []fsxml.KV{
			{Name: "password", Value: noSIPAuthPassword},
		},
		Vars: []fsxml.KV{
			{Name: "vm-mailbox", Value: boxID},
		},
	}
}
