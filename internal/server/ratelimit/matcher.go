package ratelimit

import (
	"net/http"
	"strings"
)

// unlimited is returned for routes that are never throttled.
var unlimited = EndpointConfig{}

// MatchEndpoint returns the configuration for a request, or nil when the
// default limit applies. Exact paths win over prefixes; GET /health is
// always unlimited.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if path == "/health" && method == http.MethodGet {
		ec := unlimited
		return &ec
	}

	for i := range configs {
		if configs[i].Path == path && configs[i].Method == method {
			return &configs[i]
		}
	}

	for i := range configs {
		c := &configs[i]
		if c.Method == method && strings.HasSuffix(c.Path, "/") && strings.HasPrefix(path, c.Path) {
			return c
		}
	}

	return nil
}
