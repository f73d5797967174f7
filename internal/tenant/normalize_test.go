package tenant

import "testing"

func TestNormalizeDomain(t *testing.T) {
	cases := map[string]string{
		"A.Example.com": "aexamplecom",
		" a-example ":   "aexample",
		"a.example":     "aexample",
	}
	for in, want := range cases {
		if got := NormalizeDomain(in); got != want {
			t.Errorf("NormalizeDomain(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeDID(t *testing.T) {
	cases := map[string]string{
		"5125551234":    "+15125551234",
		"15125551234":   "+15125551234",
		"+15125551234":  "+15125551234",
		"+442071838750": "+442071838750",
	}
	for in, want := range cases {
		if got := NormalizeDID(in); got != want {
			t.Errorf("NormalizeDID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestVoicemailBoxFromTarget(t *testing.T) {
	if box, ok := VoicemailBoxFromTarget("voicemail_1001"); !ok || box != "1001" {
		t.Fatalf("expected box 1001, got %q, %v", box, ok)
	}
	if _, ok := VoicemailBoxFromTarget("transfer_1001"); ok {
		t.Fatalf("expected no match for non-voicemail target")
	}
	if _, ok := VoicemailBoxFromTarget("voicemail_"); ok {
		t.Fatalf("expected no match for empty box id")
	}
}

func TestFindActiveDIDIgnoresInactive(t *testing.T) {
	tn := Tenant{
		DIDs: []DID{
			{DIDNumber: "+15125551234", Active: false},
			{DIDNumber: "+15125559999", Active: true},
		},
	}
	if _, ok := tn.FindActiveDID("+15125551234"); ok {
		t.Fatalf("expected inactive DID to be ignored")
	}
	if _, ok := tn.FindActiveDID("+15125559999"); !ok {
		t.Fatalf("expected active DID to be found")
	}
}
