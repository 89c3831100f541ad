// Package httpserver provides a lightweight wrapper around net/http with
// graceful shutdown, configurable timeouts, and health-check handlers.
//
// Run blocks until the context is cancelled or an interrupt/TERM signal
// arrives, then shuts the server down with a configurable deadline.
// Construction goes through New with functional options, or NewFromConfig
// with environment-sourced settings.
//
//	r := chi.NewRouter()
//	r.Get("/healthz", httpserver.HealthCheckHandler(ctx, log))
//	r.Get("/readyz", httpserver.HealthCheckHandler(ctx, log, redis.Healthcheck(client)))
//
//	var cfg httpserver.Config
//	config.MustLoad(&cfg)
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, r); err != nil {
//	    log.Error("server stopped", logger.Error(err))
//	}
//
// Run wraps listen errors with ErrStart; Shutdown wraps shutdown errors
// with ErrShutdown.
package httpserver
