package utils

import (
	"net/url"
	"strings"
)

// OriginPolicy decides which Origin header values may read the API
// cross-origin. An empty allowlist means every origin is allowed, the
// default for this read-only service.
type OriginPolicy struct {
	allowed  map[string]bool
	allowAll bool
}

// NewOriginPolicy builds a policy from configured origins. Entries are
// normalized to lowercase scheme://host[:port]; malformed entries are
// dropped.
func NewOriginPolicy(origins []string) *OriginPolicy {
	p := &OriginPolicy{allowed: make(map[string]bool)}
	for _, raw := range origins {
		normalized, ok := normalizeOrigin(raw)
		if !ok {
			continue
		}
		p.allowed[normalized] = true
	}
	if len(p.allowed) == 0 {
		p.allowAll = true
	}
	return p
}

// Allows reports whether the given Origin header value is acceptable.
func (p *OriginPolicy) Allows(origin string) bool {
	if origin == "" {
		return false
	}
	if p.allowAll {
		return true
	}
	normalized, ok := normalizeOrigin(origin)
	if !ok {
		return false
	}
	return p.allowed[normalized]
}

func normalizeOrigin(raw string) (string, bool) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", false
	}
	return strings.ToLower(parsed.Scheme + "://" + parsed.Host), true
}
