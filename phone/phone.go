// Package phone canonicalizes phone identifiers across the formats the
// engine sees: CRM form input, provider chat ids (possibly carrying a
// mail-style domain suffix such as 77001234567@c.us), and stored records.
package phone

import "strings"

// Normalize returns the local canonical form of a raw phone identifier:
// a single leading + followed by digits only. Chat-id domain suffixes,
// whitespace, hyphens, and parentheses are stripped. Empty input yields
// the empty string. Normalize is idempotent.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if at := strings.IndexByte(s, '@'); at >= 0 {
		s = s[:at]
	}
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '-', '(', ')':
			return -1
		}
		return r
	}, s)
	s = strings.TrimLeft(s, "+")
	if s == "" {
		return ""
	}
	return "+" + s
}

// GatewayChatID returns the form the provider expects on outbound sends:
// the normalized number without the leading +. The asymmetry with Normalize
// is deliberate; local storage keys on the prefixed form, the gateway
// rejects it.
func GatewayChatID(raw string) string {
	return strings.TrimPrefix(Normalize(raw), "+")
}
