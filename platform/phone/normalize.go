// Package phone normalizes lead contact numbers so search and dedupe can
// compare them byte for byte.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Numbers arrive without a country code more often than not; the customer
// base is domestic.
const defaultRegion = "US"

// NormalizeE164 formats a number to E.164. Input that does not parse as a
// real number is stored as typed, trimmed: a bad number is still better
// kept than silently dropped.
func NormalizeE164(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}
