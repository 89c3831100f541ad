package plan_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagedeck/pagedeck/pkg/plan"
)

func TestNewRegistry(t *testing.T) {
	t.Parallel()

	t.Run("loads default table", func(t *testing.T) {
		t.Parallel()

		registry, err := plan.NewRegistry(plan.NewInMemSource(plan.DefaultLimits()))
		require.NoError(t, err)

		limits := registry.ForTier(plan.TierFree)
		assert.Equal(t, 60, limits.MaxRequestsPerWindow)
		assert.Equal(t, time.Minute, limits.WindowDuration)
	})

	t.Run("requires a source", func(t *testing.T) {
		t.Parallel()

		_, err := plan.NewRegistry(nil)
		assert.ErrorIs(t, err, plan.ErrSourceRequired)
	})

	t.Run("rejects table without free tier", func(t *testing.T) {
		t.Parallel()

		table := map[plan.Tier]plan.Limits{
			plan.TierPro: plan.DefaultLimits()[plan.TierPro],
		}

		_, err := plan.NewRegistry(plan.NewInMemSource(table))
		assert.ErrorIs(t, err, plan.ErrNoFreeTier)
	})

	t.Run("rejects invalid limits entry", func(t *testing.T) {
		t.Parallel()

		table := plan.DefaultLimits()
		broken := table[plan.TierPro]
		broken.MaxRequestsPerWindow = 0
		table[plan.TierPro] = broken

		_, err := plan.NewRegistry(plan.NewInMemSource(table))
		assert.ErrorIs(t, err, plan.ErrInvalidLimits)
	})
}

func TestRegistryForTier(t *testing.T) {
	t.Parallel()

	registry, err := plan.NewRegistry(plan.NewInMemSource(plan.DefaultLimits()))
	require.NoError(t, err)

	t.Run("every known tier has an entry", func(t *testing.T) {
		t.Parallel()

		for _, tier := range plan.Tiers() {
			limits := registry.ForTier(tier)
			assert.NoError(t, limits.Validate(), "tier %s", tier)
		}
	})

	t.Run("unknown tier falls back to free limits", func(t *testing.T) {
		t.Parallel()

		free := registry.ForTier(plan.TierFree)
		unknown := registry.ForTier(plan.Tier("platinum"))
		assert.Equal(t, free, unknown)
	})

	t.Run("zero value tier falls back to free limits", func(t *testing.T) {
		t.Parallel()

		var tier plan.Tier
		assert.Equal(t, registry.ForTier(plan.TierFree), registry.ForTier(tier))
	})

	t.Run("higher tiers carry larger budgets", func(t *testing.T) {
		t.Parallel()

		free := registry.ForTier(plan.TierFree)
		pro := registry.ForTier(plan.TierPro)
		enterprise := registry.ForTier(plan.TierEnterprise)

		assert.Greater(t, pro.MaxRequestsPerWindow, free.MaxRequestsPerWindow)
		assert.Greater(t, enterprise.MaxRequestsPerWindow, pro.MaxRequestsPerWindow)
		assert.Greater(t, enterprise.WorkerTaskTimeout, free.WorkerTaskTimeout)
	})
}

func TestParseTier(t *testing.T) {
	t.Parallel()

	assert.Equal(t, plan.TierPro, plan.ParseTier("pro"))
	assert.Equal(t, plan.TierEnterprise, plan.ParseTier("enterprise"))
	assert.Equal(t, plan.TierFree, plan.ParseTier("free"))
	assert.Equal(t, plan.TierFree, plan.ParseTier(""))
	assert.Equal(t, plan.TierFree, plan.ParseTier("legacy-gold"))
}

func TestYAMLSource(t *testing.T) {
	t.Parallel()

	t.Run("loads limits from file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "limits.yml")
		content := `
free:
  max_requests_per_window: 60
  window_duration: 60s
  query_timeout: 5s
  api_timeout: 15s
  worker_task_timeout: 2s
pro:
  max_requests_per_window: 600
  window_duration: 1m
  query_timeout: 10s
  api_timeout: 30s
  worker_task_timeout: 5s
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		registry, err := plan.NewRegistry(plan.NewYAMLSource(path))
		require.NoError(t, err)

		pro := registry.ForTier(plan.TierPro)
		assert.Equal(t, 600, pro.MaxRequestsPerWindow)
		assert.Equal(t, time.Minute, pro.WindowDuration)
		assert.Equal(t, 5*time.Second, pro.WorkerTaskTimeout)
	})

	t.Run("rejects malformed duration", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "limits.yml")
		content := `
free:
  max_requests_per_window: 60
  window_duration: sixty seconds
  query_timeout: 5s
  api_timeout: 15s
  worker_task_timeout: 2s
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		_, err := plan.NewRegistry(plan.NewYAMLSource(path))
		assert.ErrorIs(t, err, plan.ErrInvalidLimits)
	})

	t.Run("missing file fails", func(t *testing.T) {
		t.Parallel()

		_, err := plan.NewRegistry(plan.NewYAMLSource(filepath.Join(t.TempDir(), "nope.yml")))
		assert.Error(t, err)
	})
}
