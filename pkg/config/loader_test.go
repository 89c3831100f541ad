package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagedeck/pagedeck/pkg/config"
)

type SuccessConfig struct {
	TestString string `env:"TEST_STRING_SUCCESS" envDefault:"default_value"`
	TestInt    int    `env:"TEST_INT_SUCCESS" envDefault:"42"`
	TestBool   bool   `env:"TEST_BOOL_SUCCESS" envDefault:"true"`
}

type DefaultConfig struct {
	TestString string `env:"TEST_STRING_DEFAULT" envDefault:"default_value"`
	TestInt    int    `env:"TEST_INT_DEFAULT" envDefault:"42"`
}

type SingletonConfig struct {
	TestString string `env:"TEST_STRING_SINGLETON" envDefault:"default_value"`
}

type RequiredConfig struct {
	Required string `env:"TEST_REQUIRED_VALUE,required"`
}

type FileConfig struct {
	Value string `env:"CUSTOM_FILE_VALUE"`
	Count int    `env:"CUSTOM_FILE_INT"`
}

func TestLoad(t *testing.T) {
	t.Run("reads environment variables", func(t *testing.T) {
		t.Setenv("TEST_STRING_SUCCESS", "test_value")
		t.Setenv("TEST_INT_SUCCESS", "100")
		t.Setenv("TEST_BOOL_SUCCESS", "false")
		config.ResetCache()

		var cfg SuccessConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "test_value", cfg.TestString)
		assert.Equal(t, 100, cfg.TestInt)
		assert.False(t, cfg.TestBool)
	})

	t.Run("applies tag defaults", func(t *testing.T) {
		os.Unsetenv("TEST_STRING_DEFAULT")
		os.Unsetenv("TEST_INT_DEFAULT")
		config.ResetCache()

		var cfg DefaultConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "default_value", cfg.TestString)
		assert.Equal(t, 42, cfg.TestInt)
	})

	t.Run("missing required value fails", func(t *testing.T) {
		os.Unsetenv("TEST_REQUIRED_VALUE")
		config.ResetCache()

		var cfg RequiredConfig
		err := config.Load(&cfg)
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("caches per type", func(t *testing.T) {
		t.Setenv("TEST_STRING_SINGLETON", "first_value")
		config.ResetCache()

		var first SingletonConfig
		require.NoError(t, config.Load(&first))

		t.Setenv("TEST_STRING_SINGLETON", "second_value")

		var second SingletonConfig
		require.NoError(t, config.Load(&second))
		assert.Equal(t, "first_value", second.TestString)
	})

	t.Run("reset cache re-parses", func(t *testing.T) {
		t.Setenv("TEST_STRING_SINGLETON", "first_value")
		config.ResetCache()

		var first SingletonConfig
		require.NoError(t, config.Load(&first))

		t.Setenv("TEST_STRING_SINGLETON", "second_value")
		config.ResetCache()

		var second SingletonConfig
		require.NoError(t, config.Load(&second))
		assert.Equal(t, "second_value", second.TestString)
	})

	t.Run("nil pointer rejected", func(t *testing.T) {
		var cfg *SuccessConfig
		err := config.Load(cfg)
		assert.ErrorIs(t, err, config.ErrNilPointer)
	})
}

func TestMustLoad(t *testing.T) {
	os.Unsetenv("TEST_REQUIRED_VALUE")
	config.ResetCache()

	assert.Panics(t, func() {
		var cfg RequiredConfig
		config.MustLoad(&cfg)
	})
}

func TestLoadEnv(t *testing.T) {
	t.Run("loads values from file", func(t *testing.T) {
		os.Unsetenv("CUSTOM_FILE_VALUE")
		os.Unsetenv("CUSTOM_FILE_INT")
		config.ResetCache()

		require.NoError(t, config.LoadEnv("testdata/.env.test"))

		var cfg FileConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "from_file", cfg.Value)
		assert.Equal(t, 1234, cfg.Count)
	})

	t.Run("missing file fails", func(t *testing.T) {
		assert.Error(t, config.LoadEnv("testdata/does-not-exist.env"))
	})
}

func TestAppConfigDefaults(t *testing.T) {
	os.Unsetenv("TENANT_HEADER")
	os.Unsetenv("TENANT_CACHE_SIZE")
	os.Unsetenv("TENANT_CACHE_TTL")
	os.Unsetenv("TENANT_DEV_SUFFIXES")
	config.ResetCache()

	var cfg config.TenantConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "X-Tenant-ID", cfg.Header)
	assert.Equal(t, 1000, cfg.CacheSize)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, []string{"localhost", "local", "test"}, cfg.DevSuffixes)
}
