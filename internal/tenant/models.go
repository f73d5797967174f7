// Package tenant defines the multi-tenant data model shared by the store
// adapter and every lookup resolver (dialplan, directory, configuration).
package tenant

// Tenant is the aggregate root for everything scoped to one SIP domain.
// The resolvers only ever read a Tenant; nothing in this module mutates one.
type Tenant struct {
	DomainName string `json:"domain_name"`

	SIPClients []SIPClient        `json:"sip_clients"`
	Groups     []Group            `json:"groups"`
	DIDs       []DID              `json:"dids"`
	Dialplan   []DialplanEntry    `json:"dialplan"`
}

// SIPClient is a registered extension belonging to a Tenant.
type SIPClient struct {
	UserID       string `json:"user_id"`
	Password     string `json:"password"`
	DisplayName  string `json:"display_name"`

	EnableVoicemail  bool   `json:"enable_voicemail"`
	VoicemailPin     string `json:"voicemail_pin"`
	VoicemailEmail   string `json:"voicemail_email"`

	// NoAnswerTimeoutSeconds is 0 when unset; callers must apply the
	// documented default of 30 seconds.
	NoAnswerTimeoutSeconds int `json:"no_answer_timeout"`

	LocalCallerIDName string `json:"local_caller_id_name"`
}

// NoAnswerTimeout returns the client's configured ring timeout, falling
// back to the documented default of 30 seconds.
func (c SIPClient) NoAnswerTimeout() int {
	if c.NoAnswerTimeoutSeconds <= 0 {
		return 30
	}
	return c.NoAnswerTimeoutSeconds
}

// GroupType distinguishes hunt groups (sequential ring) from ring groups
// (simultaneous ring).
type GroupType string

const (
	GroupTypeHunt GroupType = "hunt"
	GroupTypeRing GroupType = "ring"
)

// GroupStrategy is retained separately from GroupType because the source
// schema historically allowed a strategy override independent of type;
// resolvers only consult Type to decide "|" vs "," joins (see dialplan
// resolver), Strategy is carried through for future dial-string tuning.
type GroupStrategy string

const (
	GroupStrategySequential   GroupStrategy = "sequential"
	GroupStrategySimultaneous GroupStrategy = "simultaneous"
	GroupStrategyRandom       GroupStrategy = "random"
)

// GroupMember is one ringable member of a Group, in ring precedence order.
type GroupMember struct {
	UserID string `json:"user_id"`
	Order  int    `json:"order"`
}

// Group is a hunt or ring group of SIPClients.
type Group struct {
	Name    string        `json:"name"`
	Type    GroupType     `json:"type"`
	Timeout int           `json:"timeout"`
	Members []GroupMember `json:"members"`
	Strategy GroupStrategy `json:"strategy"`

	// VoicemailBoxID is empty when the group has no shared mailbox.
	VoicemailBoxID string `json:"voicemail_box_id,omitempty"`

	// NoAnswerAction, when set, is appended verbatim instead of the
	// default voicemail-or-announce fallback.
	NoAnswerAction []Action `json:"no_answer_action,omitempty"`
}

// RoutingType enumerates what a DID or a failover points at.
type RoutingType string

const (
	RoutingTypeExtension      RoutingType = "extension"
	RoutingTypeGroup          RoutingType = "group"
	RoutingTypeIVR            RoutingType = "ivr"
	RoutingTypeExternalNumber RoutingType = "external_number"
	RoutingTypeCustom         RoutingType = "custom"

	// RoutingTypeDialplanExtension only ever appears as a DID's
	// FailoverRoutingType; it marks a failover target of the form
	// "voicemail_<box_id>" rather than a primary routing target.
	RoutingTypeDialplanExtension RoutingType = "dialplan_extension"
)

// DID is a public phone number routed into a Tenant.
//
// DIDNumber is stored in canonical form (leading "+1" for North American
// numbers, see tenant.NormalizeDID); lookups must normalize before
// comparing.
type DID struct {
	DIDNumber string      `json:"did_number"`
	Active    bool        `json:"active"`

	RoutingType   RoutingType `json:"routing_type"`
	RoutingTarget string      `json:"routing_target"`

	FailoverRoutingType   RoutingType `json:"failover_routing_type,omitempty"`
	FailoverRoutingTarget string      `json:"failover_routing_target,omitempty"`
}

// Action is one ordered step of a dialplan extension's condition block.
type Action struct {
	Application string `json:"application"`
	Data        string `json:"data"`
}

// DialplanEntry is a tenant-authored dialplan extension.
type DialplanEntry struct {
	Name                string `json:"name"`
	ConditionField      string `json:"condition_field"`
	ConditionExpression string `json:"condition_expression"`
	Actions             []Action `json:"actions"`
}

// Gateway is an upstream SIP trunk. Gateways are a separate aggregate,
// globally unique by Name, independent of any Tenant.
type Gateway struct {
	Name     string `json:"name"`
	Realm    string `json:"realm"`
	Username string `json:"username"`
	Password string `json:"password"`
	Proxy    string `json:"proxy"`

	Register          bool   `json:"register"`
	RegisterTransport string `json:"register_transport,omitempty"`
	DTMFType          string `json:"dtmf_type,omitempty"`
	CodecPrefs        string `json:"codec_prefs,omitempty"`
}

// FindSIPClient returns the client with the given UserID, if any.
func (t Tenant) FindSIPClient(userID string) (SIPClient, bool) {
	for _, c := range t.SIPClients {
		if c.UserID == userID {
			return c, true
		}
	}
	return SIPClient{}, false
}

// FindGroup returns the group with the given Name, if any.
func (t Tenant) FindGroup(name string) (Group, bool) {
	for _, g := range t.Groups {
		if g.Name == name {
			return g, true
		}
	}
	return Group{}, false
}

// FindGroupByVoicemailBox returns the group owning the given mailbox, if any.
func (t Tenant) FindGroupByVoicemailBox(boxID string) (Group, bool) {
	for _, g := range t.Groups {
		if g.VoicemailBoxID != "" && g.VoicemailBoxID == boxID {
			return g, true
		}
	}
	return Group{}, false
}

// FindActiveDID returns the active DID matching a canonical number, if any.
func (t Tenant) FindActiveDID(canonicalNumber string) (DID, bool) {
	for _, d := range t.DIDs {
		if d.Active && d.DIDNumber == canonicalNumber {
			return d, true
		}
	}
	return DID{}, false
}

// FindDIDByFailoverVoicemail returns a DID whose failover target names a
// voicemail box matching either the DID number or the mailbox id itself.
func (t Tenant) FindDIDByFailoverVoicemail(idOrNumber string) (DID, bool) {
	for _, d := range t.DIDs {
		boxID, ok := VoicemailBoxFromTarget(d.FailoverRoutingTarget)
		if !ok {
			continue
		}
		if d.DIDNumber == idOrNumber || boxID == idOrNumber {
			return d, true
		}
	}
	return DID{}, false
}
