package correlation

import (
	"net/http"
	"testing"

	"auriga-hq/tracewire/pkg/config"
)

func boolPtr(b bool) *bool { return &b }

// defaultManager returns a Manager with the default header priority list.
func defaultManager() *Manager {
	return NewManager(config.CorrelationConfig{
		Headers: []string{"x-correlation-id", "x-request-id"},
	})
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		headers http.Header
		want    string
		wantOK  bool
	}{
		{
			name:    "primary header present",
			headers: http.Header{"X-Correlation-Id": []string{"req-42"}},
			want:    "req-42",
			wantOK:  true,
		},
		{
			name:    "fallback header",
			headers: http.Header{"X-Request-Id": []string{"fallback-7"}},
			want:    "fallback-7",
			wantOK:  true,
		},
		{
			name: "priority order wins",
			headers: http.Header{
				"X-Correlation-Id": []string{"primary"},
				"X-Request-Id":     []string{"secondary"},
			},
			want:   "primary",
			wantOK: true,
		},
		{
			name:    "empty value skipped",
			headers: http.Header{"X-Correlation-Id": []string{""}, "X-Request-Id": []string{"next"}},
			want:    "next",
			wantOK:  true,
		},
		{
			name:    "nothing configured present",
			headers: http.Header{"Authorization": []string{"Bearer t"}},
			wantOK:  false,
		},
		{
			name:    "empty headers",
			headers: http.Header{},
			wantOK:  false,
		},
	}

	m := defaultManager()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := m.Extract(tt.headers)
			if ok != tt.wantOK {
				t.Fatalf("Extract() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Extract() = %q, want %q", got, tt.want)
			}
		})
	}
}

// Extraction must be insensitive to the letter casing of inbound headers.
func TestExtractCaseInsensitive(t *testing.T) {
	m := defaultManager()

	for _, key := range []string{"x-correlation-id", "X-CORRELATION-ID", "X-Correlation-Id"} {
		h := http.Header{}
		h.Set(key, "req-42")

		got, ok := m.Extract(h)
		if !ok || got != "req-42" {
			t.Errorf("Extract() with header %q = (%q, %v), want (req-42, true)", key, got, ok)
		}
	}
}

func TestResolve(t *testing.T) {
	t.Run("inbound value wins", func(t *testing.T) {
		m := defaultManager()
		h := http.Header{}
		h.Set("x-correlation-id", "req-42")

		got, ok := m.Resolve(h)
		if !ok || got != "req-42" {
			t.Fatalf("Resolve() = (%q, %v), want (req-42, true)", got, ok)
		}
	})

	t.Run("generates when missing", func(t *testing.T) {
		m := defaultManager()

		first, ok := m.Resolve(http.Header{})
		if !ok {
			t.Fatal("Resolve() ok = false, want generated ID")
		}
		if len(first) != 36 {
			t.Errorf("generated ID length = %d, want 36", len(first))
		}

		second, _ := m.Resolve(http.Header{})
		if first == second {
			t.Errorf("successive generated IDs are equal: %q", first)
		}
	})

	t.Run("unresolved when generation disabled", func(t *testing.T) {
		m := NewManager(config.CorrelationConfig{
			Headers:    []string{"x-correlation-id"},
			GenerateID: boolPtr(false),
		})

		got, ok := m.Resolve(http.Header{})
		if ok || got != "" {
			t.Errorf("Resolve() = (%q, %v), want unresolved", got, ok)
		}
	})
}

func TestPropagationHeaders(t *testing.T) {
	t.Run("highest priority header only", func(t *testing.T) {
		m := defaultManager()

		got := m.PropagationHeaders("req-42")
		if len(got) != 1 {
			t.Fatalf("PropagationHeaders() = %v, want exactly one header", got)
		}
		if got["x-correlation-id"] != "req-42" {
			t.Errorf("PropagationHeaders()[x-correlation-id] = %q, want req-42", got["x-correlation-id"])
		}
	})

	t.Run("empty for unresolved id", func(t *testing.T) {
		m := defaultManager()
		if got := m.PropagationHeaders(""); len(got) != 0 {
			t.Errorf("PropagationHeaders(\"\") = %v, want empty", got)
		}
	})

	t.Run("empty when propagation disabled", func(t *testing.T) {
		m := NewManager(config.CorrelationConfig{
			Headers:     []string{"x-correlation-id"},
			Propagation: boolPtr(false),
		})
		if got := m.PropagationHeaders("req-42"); len(got) != 0 {
			t.Errorf("PropagationHeaders() = %v, want empty with propagation off", got)
		}
	})
}

func TestNewID(t *testing.T) {
	id := NewID()
	if len(id) != 36 {
		t.Errorf("NewID() length = %d, want 36", len(id))
	}
	if id == NewID() {
		t.Error("NewID() returned the same value twice")
	}
}
