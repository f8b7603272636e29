package headers

import (
	"strings"
	"testing"
)

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		patterns []string
		want     bool
	}{
		{"prefix wildcard", "x-correlation-id", []string{"x-*"}, true},
		{"prefix wildcard other header", "x-request-id", []string{"x-*"}, true},
		{"no match", "user-agent", []string{"x-*"}, false},
		{"suffix wildcard", "tenant-id", []string{"*-id"}, true},
		{"suffix wildcard user", "user-id", []string{"*-id"}, true},
		{"multiple patterns first wins", "x-tenant-id", []string{"x-*", "*-id"}, true},
		{"cf prefix", "cf-ray", []string{"cf-*"}, true},
		{"cloudfront prefix", "cloudfront-viewer-country", []string{"cloudfront-*"}, true},
		{"unmatched by all", "authorization", []string{"x-*", "*-id"}, false},
		{"case insensitive header", "X-Correlation-ID", []string{"x-*"}, true},
		{"case insensitive upper", "X-CUSTOM-HEADER", []string{"x-*"}, true},
		{"case insensitive pattern", "x-tenant", []string{"X-*"}, true},
		{"exact pattern", "user-agent", []string{"user-agent"}, true},
		{"inner wildcard", "x-edge-location", []string{"x-*-location"}, true},
		{"lone star matches everything", "anything", []string{"*"}, true},
		{"empty pattern list", "x-correlation-id", nil, false},
		{"empty header only matches star", "", []string{"x-*"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchPattern(tt.header, tt.patterns); got != tt.want {
				t.Errorf("MatchPattern(%q, %v) = %v, want %v", tt.header, tt.patterns, got, tt.want)
			}
		})
	}
}

// Matching must be invariant under letter casing of the header.
func TestMatchPatternCaseInvariant(t *testing.T) {
	patterns := []string{"x-*", "*-id", "cf-ray"}
	headers := []string{"x-correlation-id", "tenant-id", "cf-ray", "authorization", "X-Edge-Location"}

	for _, h := range headers {
		if MatchPattern(h, patterns) != MatchPattern(strings.ToUpper(h), patterns) {
			t.Errorf("MatchPattern(%q) differs from MatchPattern(%q)", h, strings.ToUpper(h))
		}
	}
}

func TestShouldCapture(t *testing.T) {
	policy := &CapturePolicy{
		Allow:    []string{"user-agent"},
		Patterns: []string{"x-*"},
		Redact:   []string{"authorization"},
	}

	tests := []struct {
		header string
		want   bool
	}{
		{"x-tenant-id", true},   // pattern match
		{"user-agent", true},    // allow-list
		{"User-Agent", true},    // allow-list, case-insensitive
		{"authorization", false}, // redact-listed but not capture-listed
		{"accept", false},
	}

	for _, tt := range tests {
		if got := policy.ShouldCapture(tt.header); got != tt.want {
			t.Errorf("ShouldCapture(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}

// Redaction is evaluated independently of capture: a header can satisfy
// both decisions at once, and redact must not consult capture.
func TestRedactIndependentOfCapture(t *testing.T) {
	policy := &CapturePolicy{
		Allow:  []string{"authorization"},
		Redact: []string{"authorization", "cookie"},
	}

	if !policy.ShouldCapture("authorization") {
		t.Error("ShouldCapture(authorization) = false, want true")
	}
	if !policy.ShouldRedact("authorization") {
		t.Error("ShouldRedact(authorization) = false, want true")
	}

	// cookie is redact-listed but not captured; the redact decision
	// still holds on its own.
	if policy.ShouldCapture("cookie") {
		t.Error("ShouldCapture(cookie) = true, want false")
	}
	if !policy.ShouldRedact("Cookie") {
		t.Error("ShouldRedact(Cookie) = false, want true")
	}
}

func TestCaptureValue(t *testing.T) {
	policy := &CapturePolicy{
		Allow:  []string{"authorization", "x-correlation-id"},
		Redact: []string{"authorization"},
	}

	if got := policy.CaptureValue("authorization", "Bearer secret-token"); got != RedactedValue {
		t.Errorf("CaptureValue(authorization) = %q, want %q", got, RedactedValue)
	}
	if got := policy.CaptureValue("x-correlation-id", "req-42"); got != "req-42" {
		t.Errorf("CaptureValue(x-correlation-id) = %q, want raw value", got)
	}
}

func TestAttributeKey(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"X-Correlation-ID", "http.request.header.x-correlation-id"},
		{"user-agent", "http.request.header.user-agent"},
		{"Authorization", "http.request.header.authorization"},
	}

	for _, tt := range tests {
		if got := AttributeKey(tt.header); got != tt.want {
			t.Errorf("AttributeKey(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
