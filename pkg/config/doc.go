// Package config loads application configuration from environment
// variables into typed structs, parsing each type at most once per process.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11:
// godotenv pulls a local .env file into the environment before the first
// parse, env.Parse populates any struct from `env` field tags, and the
// result is cached by type name so every caller sees the same values.
//
//	var cfg config.TenantConfig
//	if err := config.Load(&cfg); err != nil {
//	    log.Fatalf("parsing env: %v", err)
//	}
//
// MustLoad panics instead of returning an error, for configuration the
// process cannot start without. ResetCache clears the cache between tests;
// LoadEnv overrides the environment from explicit .env files.
//
// The predefined structs in app.go (AppConfig, TenantConfig, PlanConfig,
// PluginConfig) cover the platform's standard knobs; packages with their
// own settings declare their own tagged structs, like region.PGXConfig and
// redis.Config.
package config
