// Package logger provides a context-aware wrapper around Go's slog package
// with functional options for configuration, helper attribute constructors,
// and transparent injection of values stored in context.Context.
//
// New builds a *slog.Logger whose handler runs registered ContextExtractor
// callbacks on every record, so request-scoped identifiers such as the
// tenant id or request id appear on all logs without being threaded through
// call sites.
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.AppEnv, "pagedeck"),
//	    logger.WithContextExtractors(tenant.LoggerExtractor()),
//	)
//	logger.SetAsDefault(log)
//
//	log.InfoContext(ctx, "page rendered",
//	    logger.PluginID("seo-meta"),
//	    logger.Duration(time.Since(start)),
//	)
//
// Helper constructors such as Error, TenantID, and PluginID keep attribute
// naming consistent across packages. Error and Errors produce attributes
// only when the supplied error is non-nil, so they can be passed
// unconditionally.
package logger
