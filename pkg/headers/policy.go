package headers

import "strings"

// RedactedValue is recorded in place of a header value when the header
// matches the redact policy.
const RedactedValue = "[REDACTED]"

// attributePrefix is the span attribute namespace for captured request
// headers, following OpenTelemetry semantic conventions.
const attributePrefix = "http.request.header."

// MatchPattern reports whether the header name matches any of the given
// wildcard patterns. Matching is case-insensitive and "*" matches any
// sequence of characters (including none). The first matching pattern
// short-circuits. It never returns an error; a nil or empty pattern
// list simply never matches.
func MatchPattern(name string, patterns []string) bool {
	lower := strings.ToLower(name)
	for _, p := range patterns {
		if matchGlob(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// matchGlob matches s against a pattern where "*" matches any sequence.
// Both inputs must already be lowercased.
func matchGlob(s, pattern string) bool {
	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return s == pattern
	}

	// Anchored prefix and suffix, floating middle segments.
	if !strings.HasPrefix(s, parts[0]) {
		return false
	}
	s = s[len(parts[0]):]

	last := parts[len(parts)-1]
	if !strings.HasSuffix(s, last) {
		return false
	}
	s = s[:len(s)-len(last)]

	for _, part := range parts[1 : len(parts)-1] {
		if part == "" {
			continue
		}
		idx := strings.Index(s, part)
		if idx < 0 {
			return false
		}
		s = s[idx+len(part):]
	}
	return true
}

// CapturePolicy decides which headers are captured as span attributes
// and which captured values are redacted. The capture and redact
// decisions are independent: a header may be captured and redacted at
// the same time.
type CapturePolicy struct {
	// Allow is the explicit allow-list of header names. Case-insensitive.
	Allow []string

	// Patterns are wildcard patterns matched against header names.
	Patterns []string

	// Redact lists headers whose captured value is replaced with
	// RedactedValue. Case-insensitive.
	Redact []string
}

// ShouldCapture reports whether the header should be captured as a span
// attribute: true when the name is in the allow-list or matches any
// configured pattern.
func (p *CapturePolicy) ShouldCapture(name string) bool {
	return containsFold(p.Allow, name) || MatchPattern(name, p.Patterns)
}

// ShouldRedact reports whether the captured value of the header must be
// masked. The decision does not consult ShouldCapture.
func (p *CapturePolicy) ShouldRedact(name string) bool {
	return containsFold(p.Redact, name)
}

// CaptureValue returns the value to record for a captured header,
// applying the redact policy.
func (p *CapturePolicy) CaptureValue(name, value string) string {
	if p.ShouldRedact(name) {
		return RedactedValue
	}
	return value
}

// AttributeKey returns the span attribute key for a captured header,
// lowercasing the header name per semantic conventions.
func AttributeKey(name string) string {
	return attributePrefix + strings.ToLower(name)
}

// containsFold reports whether list contains s under case folding.
func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}
