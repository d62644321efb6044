package security

import (
	"net/http/httptest"
	"testing"
)

func TestDetectSuspiciousRequest(t *testing.T) {
	d := NewDetector()

	cases := []struct {
		name       string
		path       string
		userAgent  string
		suspicious bool
	}{
		{"normal page", "/", "Mozilla/5.0", false},
		{"form submit", "/entries/income", "Mozilla/5.0", false},
		{"path traversal", "/../etc/passwd", "Mozilla/5.0", true},
		{"env probe", "/.env", "Mozilla/5.0", true},
		{"wp scan", "/wp-admin/setup.php", "Mozilla/5.0", true},
		{"sqlmap agent", "/", "sqlmap/1.7", true},
	}
	for _, tc := range cases {
		req := httptest.NewRequest("GET", tc.path, nil)
		req.Header.Set("User-Agent", tc.userAgent)
		if got := d.DetectSuspiciousRequest(req); got != tc.suspicious {
			t.Fatalf("%s: expected suspicious=%v", tc.name, tc.suspicious)
		}
	}

	if d.GetMetrics().SuspiciousRequests == 0 {
		t.Fatalf("suspicious requests must be counted")
	}
}

func TestExtractClientIP(t *testing.T) {
	d := NewDetector()

	// Direct connection from a public address ignores forwarded headers.
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "203.0.113.7:4242"
	req.Header.Set("X-Forwarded-For", "198.51.100.1")
	if got := d.ExtractClientIP(req); got != "203.0.113.7" {
		t.Fatalf("public remote: %s", got)
	}

	// Trusted proxy passes the forwarded client through.
	req = httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.5:4242"
	req.Header.Set("X-Forwarded-For", "198.51.100.1, 10.0.0.5")
	if got := d.ExtractClientIP(req); got != "198.51.100.1" {
		t.Fatalf("forwarded client: %s", got)
	}

	// Garbage forwarded value falls back to the direct IP.
	req = httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.5:4242"
	req.Header.Set("X-Forwarded-For", "not-an-ip")
	if got := d.ExtractClientIP(req); got != "10.0.0.5" {
		t.Fatalf("bad forwarded header: %s", got)
	}
}
