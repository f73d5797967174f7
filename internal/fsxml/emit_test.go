package fsxml

import (
	"strings"
	"testing"
)

func TestEmitDialplanWellFormed(t *testing.T) {
	doc := EmitDialplan(ExtensionProgram{
		Context:        "default",
		Name:           "local",
		ConditionField: "destination_number",
		Expression:     "^1001$",
		Actions: []ProgramAction{
			{Application: "bridge", Data: "user/1001@a.example"},
		},
	})

	if len(doc.Section) != 1 {
		t.Fatalf("expected exactly one section, got %d", len(doc.Section))
	}
	ctx := doc.Section[0].Context
	if ctx == nil || len(ctx.Extension) != 1 {
		t.Fatalf("expected exactly one extension")
	}
	if !strings.HasPrefix(ctx.Extension[0].Condition[0].Expr, "^") || !strings.HasSuffix(ctx.Extension[0].Condition[0].Expr, "$") {
		t.Fatalf("expression must be anchored, got %q", ctx.Extension[0].Condition[0].Expr)
	}
}

func TestEmitDialplanMalformedFallsBackToError(t *testing.T) {
	doc := EmitDialplan(ExtensionProgram{})
	if doc.Section[0].Name != "dialplan" {
		t.Fatalf("expected dialplan fallback section, got %q", doc.Section[0].Name)
	}
	actions := doc.Section[0].Context.Extension[0].Condition[0].Action
	if len(actions) != 3 || actions[0].App != "answer" || actions[len(actions)-1].App != "hangup" {
		t.Fatalf("expected answer/.../hangup error program, got %+v", actions)
	}
}

func TestEmitDirectoryEmptyHasNoUser(t *testing.T) {
	doc := EmitDirectory("a.example", nil)
	dom := doc.Section[0].Domain
	if dom == nil {
		t.Fatalf("expected domain node")
	}
	if len(dom.User) != 0 {
		t.Fatalf("expected no user nodes, got %d", len(dom.User))
	}
}

func TestEmitDirectoryWithUser(t *testing.T) {
	doc := EmitDirectory("a.example", &DirectoryUser{
		ID:     "1001",
		Params: []KV{{Name: "password", Value: "p"}},
		Vars:   []KV{{Name: "user_context", Value: "default"}},
	})
	dom := doc.Section[0].Domain
	if len(dom.User) != 1 || dom.User[0].ID != "1001" {
		t.Fatalf("expected user 1001, got %+v", dom.User)
	}
}

func TestRenderEscapesIdentifiersButKeepsExpressionUsable(t *testing.T) {
	doc := EmitDialplan(ExtensionProgram{
		Context:        "default",
		Name:           `sales & "support"`,
		ConditionField: "destination_number",
		Expression:     `^\+15125550100$`,
		Actions: []ProgramAction{
			{Application: "set", Data: "foo=${bar}"},
		},
	})
	out, err := Render(doc)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, "&amp;") {
		t.Fatalf("expected identifier ampersand to be escaped: %s", s)
	}
	if !strings.Contains(s, `${bar}`) {
		t.Fatalf("expected switch interpolation token to survive verbatim: %s", s)
	}
	if !strings.Contains(s, `\+15125550100`) {
		t.Fatalf("expected regex metacharacters to survive verbatim: %s", s)
	}
}

func TestNotFoundDocument(t *testing.T) {
	doc := NotFoundDocument()
	if doc.Section[0].Result == nil || doc.Section[0].Result.Status != "not found" {
		t.Fatalf("expected not-found result section, got %+v", doc.Section[0])
	}
}
