// Package platform decides whether a session endpoint warrants keep-alive.
//
// The managed platform terminates idle connections, so sessions against it
// (or against self-hosted gateways fronting it, identified by credentials)
// are the ones worth keeping warm. Classification is a pure function of its
// inputs; it never reads the environment and never fails — a malformed
// endpoint simply classifies as false.
package platform

import (
	"net/url"
	"strings"

	"github.com/vinayprograms/mcpkeep/credentials"
)

// managedDomains are the domains known to enforce idle-connection
// termination. A host matches when it equals a domain or is a subdomain
// of one.
var managedDomains = []string{
	"agentgrid.io",
	"agentgrid.dev",
}

// ShouldKeepAlive reports whether a session against endpoint deserves
// background liveness probing. True when the endpoint's host belongs to
// the managed platform, or when creds carry a non-empty access token or
// profile identifier (self-hosted gateways fronting the platform).
func ShouldKeepAlive(endpoint string, creds *credentials.Bundle) bool {
	if !creds.Empty() {
		return true
	}
	host := hostOf(endpoint)
	if host == "" {
		return false
	}
	for _, domain := range managedDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// hostOf extracts the lowercase hostname from an endpoint string.
// Returns "" for anything it cannot parse.
func hostOf(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return ""
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return ""
	}
	host := u.Hostname()
	if host == "" {
		// Bare "host:port" or "host/path" forms parse without a host;
		// retry as a scheme-relative URL.
		if u2, err2 := url.Parse("//" + endpoint); err2 == nil {
			host = u2.Hostname()
		}
	}
	return strings.ToLower(host)
}
