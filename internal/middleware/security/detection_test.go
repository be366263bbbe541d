package security

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectSuspiciousRequest(t *testing.T) {
	d := NewDetector()

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "normal api path", path: "/api/despesas", want: false},
		{name: "path traversal", path: "/uploads/../etc/passwd", want: true},
		{name: "env probe", path: "/.env", want: true},
		{name: "wordpress probe", path: "/wp-admin/setup.php", want: true},
		{name: "git probe", path: "/.git/config", want: true},
		{name: "report path", path: "/api/relatorios/mensal/2024/3", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.path, nil)
			assert.Equal(t, tt.want, d.DetectSuspiciousRequest(r))
		})
	}
}

func TestDetectSuspiciousRequest_QueryAndMethod(t *testing.T) {
	d := NewDetector()

	// Percent-encoded payloads must be decoded before matching.
	r := httptest.NewRequest("GET", "/api/despesas?busca=union%20select", nil)
	assert.True(t, d.DetectSuspiciousRequest(r))

	r = httptest.NewRequest("GET", "/api/despesas?busca=UNION+SELECT", nil)
	assert.True(t, d.DetectSuspiciousRequest(r))

	r = httptest.NewRequest("GET", "/api/despesas?busca=mercado", nil)
	assert.False(t, d.DetectSuspiciousRequest(r))

	r = httptest.NewRequest("TRACE", "/api/despesas", nil)
	assert.True(t, d.DetectSuspiciousRequest(r))
}

func TestDetectSuspiciousRequest_CountsMetrics(t *testing.T) {
	d := NewDetector()

	d.DetectSuspiciousRequest(httptest.NewRequest("GET", "/.env", nil))
	d.DetectSuspiciousRequest(httptest.NewRequest("GET", "/api/despesas", nil))

	assert.Equal(t, int64(1), d.GetMetrics().SuspiciousRequests)
}

func TestExtractClientIP(t *testing.T) {
	d := NewDetector()

	// Direct connection, no proxy headers.
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "203.0.113.7:4321"
	assert.Equal(t, "203.0.113.7", d.ExtractClientIP(r))

	// Forwarded header from an untrusted source is ignored.
	r.Header.Set("X-Forwarded-For", "198.51.100.9")
	assert.Equal(t, "203.0.113.7", d.ExtractClientIP(r))

	// Same header honored when the direct peer is a trusted proxy.
	r.RemoteAddr = "10.0.0.5:4321"
	assert.Equal(t, "198.51.100.9", d.ExtractClientIP(r))

	// First entry wins in a multi-hop chain.
	r.Header.Set("X-Forwarded-For", "198.51.100.9, 10.0.0.5")
	assert.Equal(t, "198.51.100.9", d.ExtractClientIP(r))
}

func TestExtractClientIP_RealIPFallback(t *testing.T) {
	d := NewDetector()

	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "127.0.0.1:4321"
	r.Header.Set("X-Real-IP", "198.51.100.9")
	assert.Equal(t, "198.51.100.9", d.ExtractClientIP(r))
}

func TestAddTrustedProxy(t *testing.T) {
	d := NewDetector()

	require.NoError(t, d.AddTrustedProxy("203.0.113.0/24"))
	assert.Error(t, d.AddTrustedProxy("not-a-cidr"))

	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "203.0.113.7:4321"
	r.Header.Set("X-Forwarded-For", "198.51.100.9")
	assert.Equal(t, "198.51.100.9", d.ExtractClientIP(r))
}
