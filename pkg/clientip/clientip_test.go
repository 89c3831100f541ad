package clientip_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pagedeck/pagedeck/pkg/clientip"
)

func TestFromRequest(t *testing.T) {
	t.Parallel()

	t.Run("prefers cloudflare header", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("CF-Connecting-IP", "203.0.113.7")
		req.Header.Set("X-Forwarded-For", "198.51.100.1")

		assert.Equal(t, "203.0.113.7", clientip.FromRequest(req))
	})

	t.Run("takes first valid forwarded entry", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-Forwarded-For", "not-an-ip, 198.51.100.1, 10.0.0.1")

		assert.Equal(t, "198.51.100.1", clientip.FromRequest(req))
	})

	t.Run("falls back to real ip header", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-Real-IP", "192.0.2.44")

		assert.Equal(t, "192.0.2.44", clientip.FromRequest(req))
	})

	t.Run("falls back to remote addr", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = "192.0.2.1:51234"

		assert.Equal(t, "192.0.2.1", clientip.FromRequest(req))
	})

	t.Run("normalizes ipv6", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-Real-IP", "2001:0db8:0000:0000:0000:0000:0000:0001")

		assert.Equal(t, "2001:db8::1", clientip.FromRequest(req))
	})

	t.Run("ignores malformed headers", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("CF-Connecting-IP", "garbage")
		req.RemoteAddr = "192.0.2.9:443"

		assert.Equal(t, "192.0.2.9", clientip.FromRequest(req))
	})
}
