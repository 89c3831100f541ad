package config

import "time"

// AppConfig holds process-wide settings shared by every component.
type AppConfig struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// TenantConfig tunes tenant resolution.
type TenantConfig struct {
	Header      string        `env:"TENANT_HEADER" envDefault:"X-Tenant-ID"`
	CacheSize   int           `env:"TENANT_CACHE_SIZE" envDefault:"1000"`
	CacheTTL    time.Duration `env:"TENANT_CACHE_TTL" envDefault:"5m"`
	DevSuffixes []string      `env:"TENANT_DEV_SUFFIXES" envSeparator:"," envDefault:"localhost,local,test"`
}

// PlanConfig points at the plan limits definition. An empty file path
// means the compiled-in defaults apply.
type PlanConfig struct {
	LimitsFile string `env:"PLAN_LIMITS_FILE"`
}

// PluginConfig tunes the extension runtime.
type PluginConfig struct {
	Dir         string        `env:"PLUGIN_DIR" envDefault:"./plugins"`
	LoadTimeout time.Duration `env:"PLUGIN_LOAD_TIMEOUT" envDefault:"10s"`
}
