package fsxml

import (
	"bytes"
	"encoding/xml"
	"log/slog"
)

// KV is a generic name/value pair; resolvers build directory variables,
// profile settings and gateway params out of these without needing to know
// about the underlying XML node types.
type KV struct {
	Name  string
	Value string
}

// ProgramAction is one ordered dialplan application invocation.
type ProgramAction struct {
	Application string
	Data        string
}

// ExtensionProgram is the resolver's output: exactly one extension in one
// context, per spec.md's "compact, bit-sensitive XML program" contract.
type ExtensionProgram struct {
	Context        string
	Name           string
	ConditionField string
	Expression     string
	Actions        []ProgramAction
}

func (p ExtensionProgram) valid() bool {
	return p.Context != "" && p.Name != "" && p.ConditionField != "" && p.Expression != "" && p.Actions != nil
}

// EmitDialplan renders a single-extension dialplan document. A malformed
// program (missing required fields, nil actions) never reaches the switch
// as-is: it's swapped for the standard error program and logged.
func EmitDialplan(p ExtensionProgram) *Document {
	if !p.valid() {
		slog.Error("fsxml: malformed extension program, substituting error program",
			"context", p.Context, "name", p.Name)
		return ErrorDocument()
	}

	actions := make([]ActionNode, 0, len(p.Actions))
	for _, a := range p.Actions {
		actions = append(actions, ActionNode{App: a.Application, Data: a.Data})
	}

	return &Document{
		Type: "freeswitch/xml",
		Section: []Section{
			{
				Name: "dialplan",
				Context: &ContextNode{
					Name: p.Context,
					Extension: []ExtensionNode{
						{
							Name: p.Name,
							Condition: []ConditionNode{
								{
									Field:  p.ConditionField,
									Expr:   p.Expression,
									Action: actions,
								},
							},
						},
					},
				},
			},
		},
	}
}

// ErrorDocument is the "application error" fallback: answer, tell the
// caller the call cannot be completed, hang up. Every internal-error path
// and every genuine no-route decision in the dialplan resolver funnels
// through this shape (or the inter-domain guard's single hangup program)
// so the switch always gets a well-formed program to execute.
func ErrorDocument() *Document {
	return EmitDialplan(ExtensionProgram{
		Context:        "default",
		Name:           "error",
		ConditionField: "destination_number",
		Expression:     "^.*$",
		Actions: []ProgramAction{
			{Application: "answer"},
			{Application: "playback", Data: "ivr/ivr-call_cannot_be_completed_as_dialed.wav"},
			{Application: "hangup"},
		},
	})
}

// DirectoryUser is one resolved directory entry.
type DirectoryUser struct {
	ID     string
	Params []KV
	Vars   []KV
}

// EmitDirectory renders a directory lookup result. A nil user produces the
// documented "unknown user" shape: the domain node is present but carries
// no <user> child.
func EmitDirectory(domain string, user *DirectoryUser) *Document {
	dn := &DomainNode{Name: domain}
	if user != nil {
		dn.User = []UserNode{
			{
				ID:     user.ID,
				Params: toParams(user.Params),
				Vars:   toVariables(user.Vars),
			},
		}
	}
	return &Document{
		Type:    "freeswitch/xml",
		Section: []Section{{Name: "directory", Domain: dn}},
	}
}

// SIPProfile is one sofia.conf profile (internal or external).
type SIPProfile struct {
	Name     string
	Settings []KV
	Gateways []ProfileGateway
}

// ProfileGateway is one gateway entry inside a SIPProfile.
type ProfileGateway struct {
	Name   string
	Params []KV
}

// EmitConfiguration renders the sofia.conf configuration document carrying
// the given profiles, in order.
func EmitConfiguration(profiles []SIPProfile) *Document {
	nodes := make([]ProfileNode, 0, len(profiles))
	for _, p := range profiles {
		gws := make([]GatewayNode, 0, len(p.Gateways))
		for _, g := range p.Gateways {
			gws = append(gws, GatewayNode{Name: g.Name, Param: toParams(g.Params)})
		}
		nodes = append(nodes, ProfileNode{
			Name:     p.Name,
			Settings: toParams(p.Settings),
			Gateways: gws,
		})
	}

	return &Document{
		Type: "freeswitch/xml",
		Section: []Section{
			{
				Name: "configuration",
				Configuration: &ConfigurationNode{
					Name:        "sofia.conf",
					Description: "sip profiles",
					Profiles:    nodes,
				},
			},
		},
	}
}

// NotFoundDocument is the generic "result not found" response used for
// unrecognized configuration keys.
func NotFoundDocument() *Document {
	return &Document{
		Type:    "freeswitch/xml",
		Section: []Section{{Name: "result", Result: &ResultNode{Status: "not found"}}},
	}
}

func toParams(kvs []KV) []ParamNode {
	if kvs == nil {
		return nil
	}
	out := make([]ParamNode, 0, len(kvs))
	for _, kv := range kvs {
		out = append(out, ParamNode{Name: kv.Name, Value: kv.Value})
	}
	return out
}

func toVariables(kvs []KV) []VariableNode {
	if kvs == nil {
		return nil
	}
	out := make([]VariableNode, 0, len(kvs))
	for _, kv := range kvs {
		out = append(out, VariableNode{Name: kv.Name, Value: kv.Value})
	}
	return out
}

// Render serializes a Document the way mod_xml_curl expects: an XML
// declaration followed by an indented body.
func Render(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
