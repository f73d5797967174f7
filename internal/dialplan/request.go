// Package dialplan implements the call-routing engine: it classifies an
// inbound switch request, looks up tenant and gateway data, and emits the
// extension program the switch should execute.
package dialplan

// RequestVars is the read-only view over the switch's loose string-keyed
// request. Field access follows the documented precedence chains instead
// of exposing the raw map, so callers never need to know which of several
// synonymous keys a given trunk populated.
type RequestVars map[string]string

func (v RequestVars) first(keys ...string) string {
	for _, k := range keys {
		if val, ok := v[k]; ok && val != "" {
			return val
		}
	}
	return ""
}

// Domain returns the request's domain hint.
func (v RequestVars) Domain() string {
	return v.first("domain", "variable_domain_name", "variable_sip_to_host")
}

// Context returns the dialplan context the switch is asking about,
// defaulting to "default" when absent.
func (v RequestVars) Context() string {
	c := v.first("Caller-Context", "variable_dialplan_context")
	if c == "" {
		return "default"
	}
	return c
}

// Destination returns the dialed identifier.
func (v RequestVars) Destination() string {
	return v.first("Caller-Destination-Number", "destination_number")
}

// TrunkDIDOverride returns the trunk-asserted real DID, when the carrier
// supplies one out of band from the SIP To-user.
func (v RequestVars) TrunkDIDOverride() string {
	return v.first("variable_signalwire_actual_did")
}

// TrunkCalleeHint returns the SIP To-user/destination-user the trunk sent,
// used as the DID when no explicit override is present.
func (v RequestVars) TrunkCalleeHint() string {
	return v.first("variable_sip_to_user", "variable_sip_dest_user")
}

// RealDID resolves the actual dialed number for an inbound trunk call:
// the explicit override if the carrier supplied one, else the SIP To-user
// hint.
func (v RequestVars) RealDID() string {
	if did := v.TrunkDIDOverride(); did != "" {
		return did
	}
	return v.TrunkCalleeHint()
}

// CallerIDNumber returns the caller's asserted number.
func (v RequestVars) CallerIDNumber() string {
	return v.first("Caller-Caller-ID-Number")
}

// CallerIDName returns the caller's asserted display name.
func (v RequestVars) CallerIDName() string {
	return v.first("Caller-Caller-ID-Name")
}

// CallerChannelName returns the originating channel name, which for
// same-switch inter-domain calls carries the caller's own SIP domain
// after an "@".
func (v RequestVars) CallerChannelName() string {
	return v.first("Caller-Channel-Name")
}
