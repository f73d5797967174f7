package tenant

import (
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeDomain lowercases a domain and strips everything that isn't a
// letter or digit, so that "A.Example.com" and "a-example-com" compare
// equal the way the inter-domain guard requires.
func NormalizeDomain(domain string) string {
	return nonAlphanumeric.ReplaceAllString(strings.ToLower(strings.TrimSpace(domain)), "")
}

// NormalizeIdentifier applies the same alphanumeric-lowercase fold used to
// compare a dialed destination against a SIP client's user_id.
func NormalizeIdentifier(id string) string {
	return NormalizeDomain(id)
}

var tenDigitNANP = regexp.MustCompile(`^(?:\+?1)?(\d{10})$`)

// NormalizeDID converts a 10-digit or 1+10-digit North American number into
// its canonical "+1XXXXXXXXXX" storage form. Numbers that don't match the
// NANP shape are returned unchanged, since the store treats did_number as
// an opaque string outside North America.
func NormalizeDID(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if m := tenDigitNANP.FindStringSubmatch(trimmed); m != nil {
		return "+1" + m[1]
	}
	return trimmed
}

// VoicemailBoxFromTarget extracts the mailbox id from a
// "voicemail_<box_id>" routing target, as used by DID failover targets.
func VoicemailBoxFromTarget(target string) (string, bool) {
	const prefix = "voicemail_"
	if !strings.HasPrefix(target, prefix) {
		return "", false
	}
	box := strings.TrimPrefix(target, prefix)
	if box == "" {
		return "", false
	}
	return box, true
}
