package governor_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagedeck/pagedeck/pkg/governor"
	"github.com/pagedeck/pagedeck/pkg/plan"
	"github.com/pagedeck/pagedeck/pkg/tenant"
)

type staticDirectory struct {
	tenant *tenant.Tenant
}

func (d staticDirectory) ByID(_ context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	if d.tenant != nil && d.tenant.ID == id {
		return d.tenant, nil
	}
	return nil, tenant.ErrTenantNotFound
}

func (d staticDirectory) ByKey(_ context.Context, key string) (*tenant.Tenant, error) {
	if d.tenant != nil && d.tenant.Key == key {
		return d.tenant, nil
	}
	return nil, tenant.ErrTenantNotFound
}

func governedRequest(res *tenant.Resolution) *http.Request {
	req := httptest.NewRequest("GET", "https://acme.pagedeck.app/pages", nil)
	req.RemoteAddr = "203.0.113.7:4432"
	if res != nil {
		req = req.WithContext(tenant.WithResolution(req.Context(), res))
	}
	return req
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("admitted request carries budgets", func(t *testing.T) {
		t.Parallel()

		gov, err := governor.New(testPlans(t, plan.DefaultLimits()), testStore(t))
		require.NoError(t, err)

		handler := gov.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, ok := governor.LimitsFromContext(r.Context())
			assert.True(t, ok)
			_, ok = r.Context().Deadline()
			assert.True(t, ok)
			w.WriteHeader(http.StatusOK)
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, governedRequest(proResolution()))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "600", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "599", rec.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
	})

	t.Run("rate limited request gets 429 with Retry-After", func(t *testing.T) {
		t.Parallel()

		limits := map[plan.Tier]plan.Limits{
			plan.TierFree: {
				MaxRequestsPerWindow: 1,
				WindowDuration:       time.Minute,
				QueryTimeout:         time.Second,
				APITimeout:           time.Second,
				WorkerTaskTimeout:    time.Second,
			},
		}
		gov, err := governor.New(testPlans(t, limits), testStore(t))
		require.NoError(t, err)

		res := proResolution()
		res.Tenant.Plan = plan.TierFree
		handler := gov.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, governedRequest(res))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, governedRequest(res))

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	})

	t.Run("slow handler gets 504", func(t *testing.T) {
		t.Parallel()

		limits := map[plan.Tier]plan.Limits{
			plan.TierFree: {
				MaxRequestsPerWindow: 100,
				WindowDuration:       time.Minute,
				QueryTimeout:         time.Second,
				APITimeout:           30 * time.Millisecond,
				WorkerTaskTimeout:    time.Second,
			},
		}
		gov, err := governor.New(testPlans(t, limits), testStore(t))
		require.NoError(t, err)

		released := make(chan struct{})
		handler := gov.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Partial output before the deadline fires must be discarded.
			_, _ = w.Write([]byte("partial"))
			<-r.Context().Done()
			close(released)
		}))

		res := proResolution()
		res.Tenant.Plan = plan.TierFree
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, governedRequest(res))

		assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
		assert.NotContains(t, rec.Body.String(), "partial")

		select {
		case <-released:
		case <-time.After(time.Second):
			t.Fatal("handler was not released by context cancellation")
		}
	})

	t.Run("no resolution governed as marketing traffic", func(t *testing.T) {
		t.Parallel()

		gov, err := governor.New(testPlans(t, plan.DefaultLimits()), testStore(t))
		require.NoError(t, err)

		handler := gov.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limits, ok := governor.LimitsFromContext(r.Context())
			require.True(t, ok)
			assert.Equal(t, plan.DefaultLimits()[plan.TierFree], limits)
			w.WriteHeader(http.StatusOK)
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, governedRequest(nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "60", rec.Header().Get("X-RateLimit-Limit"))
	})

	t.Run("skip paths bypass governance", func(t *testing.T) {
		t.Parallel()

		gov, err := governor.New(testPlans(t, plan.DefaultLimits()), testStore(t))
		require.NoError(t, err)

		handler := gov.Middleware(governor.WithSkipPaths("/health"))(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, ok := governor.LimitsFromContext(r.Context())
				assert.False(t, ok)
				w.WriteHeader(http.StatusOK)
			}))

		req := httptest.NewRequest("GET", "https://acme.pagedeck.app/health", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	})

	t.Run("composes with tenant middleware on chi", func(t *testing.T) {
		t.Parallel()

		acme := proResolution().Tenant
		resolver, err := tenant.NewResolver(staticDirectory{tenant: acme})
		require.NoError(t, err)

		gov, err := governor.New(testPlans(t, plan.DefaultLimits()), testStore(t))
		require.NoError(t, err)

		router := chi.NewRouter()
		router.Use(tenant.Middleware(resolver))
		router.Use(gov.Middleware())
		router.Get("/pages", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("ok"))
		})

		req := httptest.NewRequest("GET", "https://acme.pagedeck.app/pages", nil)
		req.Host = "acme.pagedeck.app"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "600", rec.Header().Get("X-RateLimit-Limit"))
	})
}
