package plugin_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagedeck/pagedeck/pkg/plugin"
)

func TestDirLoader(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "seo-meta.js"), []byte("// module"), 0o644))
	loader := plugin.NewDirLoader(dir)

	t.Run("resolves existing module", func(t *testing.T) {
		t.Parallel()

		path, err := loader.Resolve("seo-meta")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "seo-meta.js"), path)
	})

	t.Run("unknown plugin", func(t *testing.T) {
		t.Parallel()

		_, err := loader.Resolve("ghost")
		assert.ErrorIs(t, err, plugin.ErrModuleNotFound)
	})

	t.Run("rejects traversal and malformed ids", func(t *testing.T) {
		t.Parallel()

		for _, id := range []string{"../seo-meta", "a/b", "..", ".hidden", "UPPER", "", "trailing-"} {
			_, err := loader.Resolve(id)
			assert.ErrorIs(t, err, plugin.ErrInvalidPluginID, "id %q", id)
		}
	})
}

func TestKindValid(t *testing.T) {
	t.Parallel()

	for _, k := range []plugin.Kind{
		plugin.KindRegister, plugin.KindRegisterHook, plugin.KindRegisterRoute,
		plugin.KindCallHook, plugin.KindCallRoute,
		plugin.KindPing, plugin.KindPong,
		plugin.KindResult, plugin.KindError, plugin.KindLog, plugin.KindExit,
	} {
		assert.True(t, k.Valid(), "kind %q", k)
	}

	assert.False(t, plugin.Kind("shutdown").Valid())
	assert.False(t, plugin.Kind("").Valid())
}

func TestLogMessageEnvelope(t *testing.T) {
	t.Parallel()

	// Log text rides in its own field, not in Payload, so the envelope
	// stays valid JSON when a worker speaks over a byte pipe.
	raw, err := json.Marshal(plugin.Message{
		Kind:  plugin.KindLog,
		Level: "warn",
		Text:  "rendering without title",
	})
	require.NoError(t, err)
	require.True(t, json.Valid(raw))

	var decoded plugin.Message
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "rendering without title", decoded.Text)
	assert.Empty(t, decoded.Payload)
}
