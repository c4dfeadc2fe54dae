package soap

import (
	"fmt"
	"net/url"
	"strings"
)

// JNET hosts
const (
	ProductionEndpoint = "https://ws.jnet.pa.gov/"
	BetaEndpoint       = "https://ws.jnet.beta.pa.gov/"
	// ServicePath is the CCE request/reply service below the host
	ServicePath = "AOPC/CCERequest"
)

// ResolveBase maps an environment name to its host. Anything that is not a
// known name is returned unchanged so a full URL can be configured.
func ResolveBase(environment string) string {
	switch strings.ToLower(strings.TrimSpace(environment)) {
	case "", "jnet", "production", "prod":
		return ProductionEndpoint
	case "beta", "test":
		return BetaEndpoint
	default:
		return environment
	}
}

// EndpointURL appends the service path to base.
func EndpointURL(base string) string {
	return strings.TrimRight(base, "/") + "/" + ServicePath
}

// ValidateEndpoint checks that endpoint is an absolute http(s) URL.
func ValidateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("invalid endpoint %q: scheme must be http or https", endpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid endpoint %q: missing host", endpoint)
	}
	return nil
}
