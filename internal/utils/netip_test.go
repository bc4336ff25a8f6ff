package utils

import (
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remote     string
		headers    map[string]string
		trustProxy bool
		want       string
	}{
		{"remote addr", "203.0.113.7:4242", nil, false, "203.0.113.7"},
		{"headers ignored without trust", "203.0.113.7:4242", map[string]string{"X-Forwarded-For": "10.0.0.1"}, false, "203.0.113.7"},
		{"cloudflare first", "127.0.0.1:1", map[string]string{"CF-Connecting-IP": "198.51.100.1", "X-Forwarded-For": "10.0.0.1"}, true, "198.51.100.1"},
		{"left-most forwarded", "127.0.0.1:1", map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}, true, "10.0.0.1"},
		{"real ip", "127.0.0.1:1", map[string]string{"X-Real-IP": "10.9.9.9"}, true, "10.9.9.9"},
		{"ipv6 remote", "[2001:db8::1]:443", nil, false, "2001:db8::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r, tt.trustProxy); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIPMatcher(t *testing.T) {
	m := NewIPMatcher([]string{"10.0.0.0/8", "192.168.1.10", "not-an-ip"})

	if m.IsEmpty() {
		t.Fatal("IsEmpty() = true, want false")
	}

	tests := map[string]bool{
		"10.20.30.40":  true,
		"192.168.1.10": true,
		"192.168.1.11": false,
		"garbage":      false,
	}
	for ip, want := range tests {
		if got := m.Allow(ip); got != want {
			t.Errorf("Allow(%q) = %v, want %v", ip, got, want)
		}
	}

	if !NewIPMatcher(nil).IsEmpty() {
		t.Error("NewIPMatcher(nil).IsEmpty() = false, want true")
	}
}
