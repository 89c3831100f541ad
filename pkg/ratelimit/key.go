package ratelimit

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/pagedeck/pagedeck/pkg/clientip"
)

// maxKeyLength caps counter keys to keep storage backends happy.
const maxKeyLength = 64

// KeyFunc extracts a counter key from an HTTP request.
type KeyFunc func(*http.Request) string

// UnattributableKey is the shared bucket for requests with no usable client
// address. They compete for one window instead of bypassing the limiter or
// failing the request.
const UnattributableKey = "ip:unknown"

// IPKey keys the counter by client network address. Used as the fallback
// for requests that carry no tenant identity, such as unauthenticated probes.
func IPKey(r *http.Request) string {
	if ip := clientip.FromRequest(r); ip != "" {
		return "ip:" + ip
	}
	return UnattributableKey
}

// Composite joins several key funcs into one key, hashing overlong results.
func Composite(keyFuncs ...KeyFunc) KeyFunc {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(keyFuncs))
		for _, fn := range keyFuncs {
			if key := fn(r); key != "" {
				parts = append(parts, key)
			}
		}

		if len(parts) == 0 {
			return ""
		}

		combined := strings.Join(parts, ":")
		if len(combined) > maxKeyLength {
			hash := sha256.Sum256([]byte(combined))
			return hex.EncodeToString(hash[:16])
		}
		return combined
	}
}
