package pipeline

import (
	"net/url"
	"strings"
)

const (
	// DefaultBase is where the backend listens during local development.
	DefaultBase = "http://127.0.0.1:5001"
	backendPort = "5001"
)

var loopbackHosts = map[string]bool{
	"127.0.0.1": true,
	"localhost": true,
	"::1":       true,
}

// ResolveBase picks the backend address for a page origin. Local files,
// an empty origin and loopback hosts on another port use DefaultBase; any
// other origin is the backend itself.
func ResolveBase(pageOrigin string) string {
	origin := strings.TrimSpace(pageOrigin)
	if origin == "" || origin == "null" {
		return DefaultBase
	}
	u, err := url.Parse(origin)
	if err != nil || u.Scheme == "" {
		return DefaultBase
	}
	if strings.EqualFold(u.Scheme, "file") || u.Host == "" {
		return DefaultBase
	}
	host := strings.ToLower(u.Hostname())
	if loopbackHosts[host] && u.Port() != backendPort {
		return DefaultBase
	}
	return strings.ToLower(u.Scheme) + "://" + u.Host
}
