package utils

import "testing"

func TestOriginPolicyAllowlist(t *testing.T) {
	policy := NewOriginPolicy([]string{
		"https://guide.example.com",
		"HTTP://Localhost:3000",
		"not a url",
	})

	tests := []struct {
		origin  string
		allowed bool
	}{
		{"https://guide.example.com", true},
		{"HTTPS://GUIDE.EXAMPLE.COM", true},
		{"http://localhost:3000", true},

		{"https://evil.example.com", false},
		{"http://guide.example.com", false}, // scheme matters
		{"https://guide.example.com:8443", false},
		{"", false},
		{"not a url", false},
	}

	for _, tt := range tests {
		if got := policy.Allows(tt.origin); got != tt.allowed {
			t.Errorf("Allows(%q) = %v, want %v", tt.origin, got, tt.allowed)
		}
	}
}

func TestOriginPolicyEmptyAllowsAll(t *testing.T) {
	policy := NewOriginPolicy(nil)
	for _, origin := range []string{"https://anywhere.example.com", "http://localhost"} {
		if !policy.Allows(origin) {
			t.Errorf("empty policy should allow %q", origin)
		}
	}
	if policy.Allows("") {
		t.Error("a missing origin header is never allowed")
	}
}
