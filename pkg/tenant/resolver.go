package tenant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// keyPattern matches valid resolution keys: DNS-label shaped, lowercase.
var keyPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// Resolver binds one inbound request to exactly one tenant, or to the
// platform's marketing mode, or fails closed.
//
// Resolution order (first match wins):
//  1. Explicit credential header carrying a tenant id (UUID-shaped).
//  2. The same header carrying a resolution key (string-shaped).
//  3. A candidate key derived from the request's host name.
//
// When the host yields no candidate at all the request is classified as
// marketing mode. When a candidate exists but no tenant record matches,
// resolution fails with ErrTenantNotFound.
type Resolver struct {
	directory     Directory
	cache         Cache
	cacheTTL      time.Duration
	regions       RegionCache
	settings      SettingsStore
	logger        *slog.Logger
	header        string
	devSuffixes   map[string]struct{}
	requireActive bool
}

// NewResolver creates a resolver over the given tenant directory.
func NewResolver(directory Directory, opts ...ResolverOption) (*Resolver, error) {
	if directory == nil {
		return nil, ErrDirectoryRequired
	}

	r := &Resolver{
		directory:     directory,
		cache:         NewNoOpCache(),
		cacheTTL:      5 * time.Minute,
		logger:        slog.New(slog.DiscardHandler),
		header:        "X-Tenant-ID",
		devSuffixes:   map[string]struct{}{"localhost": {}, "local": {}, "test": {}},
		requireActive: true,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// Resolve maps the request to a Resolution or fails closed.
func (r *Resolver) Resolve(req *http.Request) (*Resolution, error) {
	ctx := req.Context()

	// An explicit credential bypasses host parsing entirely.
	if cred := strings.TrimSpace(req.Header.Get(r.header)); cred != "" {
		if id, err := uuid.Parse(cred); err == nil {
			return r.build(ctx, "id:"+id.String(), func(ctx context.Context) (*Tenant, error) {
				return r.directory.ByID(ctx, id)
			})
		}

		key := strings.ToLower(cred)
		if !keyPattern.MatchString(key) {
			return nil, ErrInvalidIdentifier
		}
		return r.build(ctx, "key:"+key, func(ctx context.Context) (*Tenant, error) {
			return r.directory.ByKey(ctx, key)
		})
	}

	key, ok := r.candidateFromHost(req.Host)
	if !ok {
		// The platform's own domain: serve without a tenant.
		return &Resolution{Mode: ModeMarketing}, nil
	}
	if !keyPattern.MatchString(key) {
		return nil, ErrInvalidIdentifier
	}

	return r.build(ctx, "key:"+key, func(ctx context.Context) (*Tenant, error) {
		return r.directory.ByKey(ctx, key)
	})
}

// candidateFromHost derives a resolution key from the request's host name.
// With more than two labels the leftmost is the candidate; with exactly two
// labels the leftmost is still a candidate when the suffix is a known
// development domain (acme.localhost). A leading "www" label is ignored.
func (r *Resolver) candidateFromHost(host string) (string, bool) {
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}
	host = strings.ToLower(host)

	labels := strings.Split(host, ".")
	if len(labels) > 1 && labels[0] == "www" {
		labels = labels[1:]
	}

	switch {
	case len(labels) > 2:
		return labels[0], true
	case len(labels) == 2:
		if _, ok := r.devSuffixes[labels[1]]; ok {
			return labels[0], true
		}
	}
	return "", false
}

// build runs the directory lookup (through the cache), validates the tenant's
// status, and attaches the region handle and best-effort settings.
func (r *Resolver) build(ctx context.Context, cacheKey string, lookup func(context.Context) (*Tenant, error)) (*Resolution, error) {
	t, cached := r.cache.Get(ctx, cacheKey)
	if !cached {
		var err error
		t, err = lookup(ctx)
		if err != nil {
			if errors.Is(err, ErrTenantNotFound) {
				return nil, ErrTenantNotFound
			}
			return nil, fmt.Errorf("tenant: directory lookup: %w", err)
		}
		r.cache.Set(ctx, cacheKey, t, r.cacheTTL)
	}

	if r.requireActive {
		switch t.Status {
		case StatusSuspended:
			return nil, ErrTenantSuspended
		case StatusPending:
			return nil, ErrTenantPending
		}
	}

	res := &Resolution{Mode: ModeTenant, Tenant: t}

	if r.regions != nil && t.Region != "" {
		conn, err := r.regions.Get(ctx, t.Region)
		if err != nil {
			return nil, fmt.Errorf("tenant: open region handle: %w", err)
		}
		res.Conn = conn
	}

	if r.settings != nil {
		values, err := r.settings.Get(ctx, t.ID)
		if err != nil {
			// Settings are best-effort: log and serve without them.
			r.logger.WarnContext(ctx, "tenant settings lookup failed",
				slog.String("tenant_id", t.ID.String()),
				slog.Any("error", err))
			values = nil
		}
		res.Settings = values
	}

	return res, nil
}
