package clientip

import (
	"net"
	"net/http"
	"strings"
)

// RealClientIP returns the client IP from the request without the port.
// Only r.RemoteAddr is read; behind a trusted proxy the server installs chi's
// RealIP middleware first, which rewrites RemoteAddr from the forwarding headers.
func RealClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.Trim(strings.TrimSpace(r.RemoteAddr), "[]")
	}
	return strings.TrimSpace(host)
}
