// Package security provides suspicious-request detection, trusted-proxy IP
// extraction, and the response header set applied to every page.
package security

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
)

// pathPatterns are probe and injection fragments matched against the
// lowercased path and query. The app exposes no PHP, git or shell surface,
// so any of these marks the request.
var pathPatterns = []string{
	"../", "..\\", ".env", "wp-admin", "phpmyadmin",
	"admin.php", "config.php", ".git", ".ssh",
	"eval(", "javascript:", "<script", "union select",
	"base64", "0x", "etc/passwd", "cmd.exe",
}

// agentPatterns flag scanner and script user agents. Browsers and htmx are
// the only expected clients.
var agentPatterns = []string{
	"sqlmap", "nmap", "nikto", "gobuster", "dirb",
	"curl", "wget", "python-requests", "scanner",
	"bot", "crawler", "spider", "scraper",
}

var unusualMethods = map[string]bool{
	"TRACE": true, "TRACK": true, "DEBUG": true, "CONNECT": true,
}

// DetectionMetrics is a snapshot of detection counters.
type DetectionMetrics struct {
	SuspiciousRequests int64
	InvalidIPAttempts  int64
}

// Detector classifies requests and resolves client IPs behind known proxies.
type Detector struct {
	suspiciousRequests int64
	invalidIPAttempts  int64
	trustedProxies     []*net.IPNet
}

// NewDetector trusts loopback and the RFC 1918 ranges as proxy sources.
func NewDetector() *Detector {
	d := &Detector{}
	for _, cidr := range []string{"127.0.0.0/8", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"} {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(fmt.Sprintf("trusted proxy CIDR %s: %v", cidr, err))
		}
		d.trustedProxies = append(d.trustedProxies, network)
	}
	return d
}

// AddTrustedProxy extends the trusted proxy set with another network.
func (d *Detector) AddTrustedProxy(cidr string) error {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		return fmt.Errorf("invalid CIDR %s: %w", cidr, err)
	}
	d.trustedProxies = append(d.trustedProxies, network)
	return nil
}

// DetectSuspiciousRequest reports whether the request looks like a probe.
// Detection is advisory: callers log and count, they do not block.
func (d *Detector) DetectSuspiciousRequest(r *http.Request) bool {
	suspicious := d.classify(r)
	if suspicious {
		atomic.AddInt64(&d.suspiciousRequests, 1)
	}
	return suspicious
}

func (d *Detector) classify(r *http.Request) bool {
	if unusualMethods[r.Method] {
		return true
	}
	if len(r.URL.String()) > 2048 {
		return true
	}

	haystack := strings.ToLower(r.URL.Path) + "?" + strings.ToLower(r.URL.RawQuery)
	for _, p := range pathPatterns {
		if strings.Contains(haystack, p) {
			return true
		}
	}

	agent := strings.ToLower(r.Header.Get("User-Agent"))
	for _, p := range agentPatterns {
		if strings.Contains(agent, p) {
			return true
		}
	}

	// Stacking both forwarding headers with a long hop chain suggests
	// header manipulation rather than a real proxy path.
	if r.Header.Get("X-Real-IP") != "" {
		if xff := r.Header.Get("X-Forwarded-For"); strings.Count(xff, ",") > 5 {
			return true
		}
	}
	return false
}

// ExtractClientIP resolves the requesting client's IP. Forwarded headers are
// honored only when the direct peer is a trusted proxy, otherwise they are
// attacker-controlled and ignored.
func (d *Detector) ExtractClientIP(r *http.Request) string {
	directIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		directIP = r.RemoteAddr
	}
	parsed := net.ParseIP(directIP)
	if parsed == nil {
		atomic.AddInt64(&d.invalidIPAttempts, 1)
		return directIP
	}
	if !d.isTrustedProxy(parsed) {
		return directIP
	}

	// X-Forwarded-For lists client first, proxies after.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.SplitN(xff, ",", 2)[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" && net.ParseIP(xri) != nil {
		return xri
	}
	return directIP
}

func (d *Detector) isTrustedProxy(ip net.IP) bool {
	for _, network := range d.trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

func (d *Detector) GetMetrics() DetectionMetrics {
	return DetectionMetrics{
		SuspiciousRequests: atomic.LoadInt64(&d.suspiciousRequests),
		InvalidIPAttempts:  atomic.LoadInt64(&d.invalidIPAttempts),
	}
}
