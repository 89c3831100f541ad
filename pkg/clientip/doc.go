// Package clientip extracts the originating client address from HTTP
// requests, looking through common proxy headers before falling back to
// the connection's remote address.
//
// The governance layer uses the client address as the rate-limit key for
// requests that resolve to no tenant.
package clientip
