// Package settings loads tenant-scoped settings for request handling.
//
// Settings are best-effort: the tenant resolver attaches them when the
// lookup succeeds and proceeds with nil values when it does not. A failed
// settings lookup must never fail a request.
package settings
