// Package privacy provides helpers for keeping personal data out of logs.
package privacy

import (
	"net"
	"strings"
)

// AnonymizeIP truncates an IP address to a network prefix suitable for
// logging: the last IPv4 octet is zeroed, IPv6 keeps the first 48 bits.
// Invalid input collapses to "invalid" rather than leaking as-is.
func AnonymizeIP(ip string) string {
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return "invalid"
	}
	if v4 := parsed.To4(); v4 != nil {
		return net.IPv4(v4[0], v4[1], v4[2], 0).String() + "/24"
	}
	masked := parsed.Mask(net.CIDRMask(48, 128))
	return masked.String() + "/48"
}
