package governor

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/pagedeck/pagedeck/pkg/ratelimit"
	"github.com/pagedeck/pagedeck/pkg/tenant"
)

// MiddlewareOption configures the governed middleware.
type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	skipPaths map[string]struct{}
	keyFunc   ratelimit.KeyFunc
}

// WithSkipPaths exempts exact request paths from governance, typically
// health and readiness endpoints.
func WithSkipPaths(paths ...string) MiddlewareOption {
	return func(cfg *middlewareConfig) {
		for _, p := range paths {
			cfg.skipPaths[p] = struct{}{}
		}
	}
}

// WithFallbackKeyFunc overrides the rate key used for requests with no
// resolved tenant. Defaults to the client address.
func WithFallbackKeyFunc(fn ratelimit.KeyFunc) MiddlewareOption {
	return func(cfg *middlewareConfig) {
		if fn != nil {
			cfg.keyFunc = fn
		}
	}
}

// Middleware governs every request: rate check, deadline arming, budget
// propagation. Rate-limited requests receive 429 with X-RateLimit headers
// and Retry-After. Requests whose handler outlives the plan's API timeout
// receive 504 and the buffered partial response is discarded.
//
// Expects tenant.Middleware to have run first; requests with no resolution
// in context are governed as marketing traffic keyed by client address.
func (g *Governor) Middleware(opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{
		skipPaths: make(map[string]struct{}),
		keyFunc:   ratelimit.IPKey,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, skip := cfg.skipPaths[r.URL.Path]; skip {
				next.ServeHTTP(w, r)
				return
			}

			res, _ := tenant.FromContext(r.Context())
			ctx, cancel, decision, err := g.CheckAndBind(r.Context(), res, cfg.keyFunc(r))
			defer cancel()

			if decision.Result != nil {
				writeRateHeaders(w, decision.Result)
			}

			switch {
			case errors.Is(err, ErrRateLimited):
				w.Header().Set("Retry-After", strconv.Itoa(int(decision.Result.RetryAfter().Seconds())+1))
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			case err != nil:
				g.logger.ErrorContext(r.Context(), "admission check failed", "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			serveWithDeadline(w, r.WithContext(ctx), next)
		})
	}
}

func writeRateHeaders(w http.ResponseWriter, result *ratelimit.Result) {
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

// serveWithDeadline runs next against a buffered writer so a 504 can still
// be written if the handler misses the request deadline. The late handler
// keeps running against the cancelled context; its output is dropped.
func serveWithDeadline(w http.ResponseWriter, r *http.Request, next http.Handler) {
	tw := newTimeoutWriter()
	done := make(chan struct{})
	panicChan := make(chan any, 1)

	go func() {
		defer func() {
			if p := recover(); p != nil {
				panicChan <- p
			}
		}()
		next.ServeHTTP(tw, r)
		close(done)
	}()

	select {
	case p := <-panicChan:
		panic(p)
	case <-done:
		tw.flushTo(w)
	case <-r.Context().Done():
		if errors.Is(r.Context().Err(), context.DeadlineExceeded) {
			tw.markTimedOut()
			http.Error(w, "Gateway Timeout", http.StatusGatewayTimeout)
			return
		}
		<-done
		tw.flushTo(w)
	}
}

type timeoutWriter struct {
	mu       sync.Mutex
	header   http.Header
	body     bytes.Buffer
	status   int
	timedOut bool
}

func newTimeoutWriter() *timeoutWriter {
	return &timeoutWriter{header: make(http.Header)}
}

func (tw *timeoutWriter) Header() http.Header { return tw.header }

func (tw *timeoutWriter) Write(p []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	if tw.status == 0 {
		tw.status = http.StatusOK
	}
	return tw.body.Write(p)
}

func (tw *timeoutWriter) WriteHeader(status int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut || tw.status != 0 {
		return
	}
	tw.status = status
}

// markTimedOut claims the response for the 504 path. Any output the late
// handler buffered, or writes after this point, is dropped.
func (tw *timeoutWriter) markTimedOut() {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.timedOut = true
}

func (tw *timeoutWriter) flushTo(w http.ResponseWriter) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	for k, vv := range tw.header {
		for _, v := range vv {
			w.Header().Add(k, v)
		}
	}
	if tw.status == 0 {
		tw.status = http.StatusOK
	}
	w.WriteHeader(tw.status)
	_, _ = w.Write(tw.body.Bytes())
}
