package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/pagedeck/pagedeck/pkg/config"
	"github.com/pagedeck/pagedeck/pkg/governor"
	"github.com/pagedeck/pagedeck/pkg/httpserver"
	"github.com/pagedeck/pagedeck/pkg/logger"
	"github.com/pagedeck/pagedeck/pkg/pg"
	"github.com/pagedeck/pagedeck/pkg/plan"
	"github.com/pagedeck/pagedeck/pkg/plugin"
	"github.com/pagedeck/pagedeck/pkg/ratelimit"
	"github.com/pagedeck/pagedeck/pkg/redis"
	"github.com/pagedeck/pagedeck/pkg/region"
	"github.com/pagedeck/pagedeck/pkg/settings"
	"github.com/pagedeck/pagedeck/pkg/tenant"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("pagedeck exited", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var (
		appCfg    config.AppConfig
		tenantCfg config.TenantConfig
		planCfg   config.PlanConfig
		pluginCfg config.PluginConfig
		pgCfg     pg.Config
		redisCfg  redis.Config
		regionCfg region.PGXConfig
		httpCfg   httpserver.Config
	)
	config.MustLoad(&appCfg)
	config.MustLoad(&tenantCfg)
	config.MustLoad(&planCfg)
	config.MustLoad(&pluginCfg)
	config.MustLoad(&pgCfg)
	config.MustLoad(&redisCfg)
	config.MustLoad(&regionCfg)
	config.MustLoad(&httpCfg)

	log := logger.New(
		logger.WithEnvironment(appCfg.Env, "pagedeck"),
		logger.WithLevel(parseLogLevel(appCfg.LogLevel)),
		logger.WithContextExtractors(tenant.LoggerExtractor()),
	)
	logger.SetAsDefault(log)

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return fmt.Errorf("connect control-plane database: %w", err)
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	redisClient, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() { _ = redisClient.Close() }()

	source := plan.NewInMemSource(plan.DefaultLimits())
	if planCfg.LimitsFile != "" {
		source = plan.NewYAMLSource(planCfg.LimitsFile)
	}
	plans, err := plan.NewRegistry(source)
	if err != nil {
		return fmt.Errorf("load plan limits: %w", err)
	}

	regions := region.NewCache(region.NewPGXFactory(regionCfg))
	defer regions.Close()

	directory, err := tenant.NewPGXDirectory(pool)
	if err != nil {
		return err
	}
	resolver, err := tenant.NewResolver(directory,
		tenant.WithHeader(tenantCfg.Header),
		tenant.WithDevSuffixes(tenantCfg.DevSuffixes...),
		tenant.WithCache(tenant.NewInMemoryCacheWithSize(tenantCfg.CacheSize), tenantCfg.CacheTTL),
		tenant.WithRegionCache(regions),
		tenant.WithSettingsStore(settings.NewRedisStore(redisClient)),
		tenant.WithLogger(log),
	)
	if err != nil {
		return err
	}

	gov, err := governor.New(plans, ratelimit.NewRedisStore(redisClient), governor.WithLogger(log))
	if err != nil {
		return err
	}

	supervisor, err := plugin.NewSupervisor(plugin.NewDirLoader(pluginCfg.Dir),
		plugin.WithLogger(log),
		plugin.WithLoadTimeout(pluginCfg.LoadTimeout),
	)
	if err != nil {
		return err
	}
	defer func() { _ = supervisor.Close() }()

	loadPlugins(ctx, log, supervisor, pluginCfg.Dir)

	router := newRouter(ctx, log, resolver, gov, supervisor, pool, redisClient)

	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))
	return srv.Run(ctx, router)
}

// loadPlugins starts a worker for every module present in the plugin
// directory. A module that fails to load is logged and skipped; the rest of
// the platform serves without it.
func loadPlugins(ctx context.Context, log *slog.Logger, supervisor *plugin.Supervisor, dir string) {
	modules, err := filepath.Glob(filepath.Join(dir, "*.js"))
	if err != nil {
		log.WarnContext(ctx, "plugin directory scan failed", logger.Error(err))
		return
	}

	for _, module := range modules {
		pluginID := strings.TrimSuffix(filepath.Base(module), ".js")
		if err := supervisor.Load(ctx, pluginID); err != nil {
			log.WarnContext(ctx, "plugin load failed",
				logger.PluginID(pluginID), logger.Error(err))
			continue
		}
		log.InfoContext(ctx, "plugin loaded", logger.PluginID(pluginID))
	}
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
