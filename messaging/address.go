package messaging

import "strings"

// DefaultUserServer is the network qualifier appended to bare phone numbers.
const DefaultUserServer = "s.whatsapp.net"

// NormalizeAddress turns a phone-number-like recipient into the network's
// addressing form. Inputs that already carry a qualifier pass through
// unchanged.
func NormalizeAddress(to string) string {
	if strings.Contains(to, "@") {
		return to
	}
	return to + "@" + DefaultUserServer
}
