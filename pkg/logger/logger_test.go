package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHelpersBeforeInit(t *testing.T) {
	assert.NotPanics(t, func() {
		Info("not initialised", zap.String("k", "v"))
		Debug("still fine")
	})
}

func TestInitInvalidLevel(t *testing.T) {
	err := Init("loud", "json", "stdout")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestInitWritesJSONToFile(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, Init("info", "json", path))

	Info("interaction appended", zap.Int64("interaction_id", 7))
	Debug("filtered out")
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"interaction appended"`)
	assert.Contains(t, string(data), `"interaction_id":7`)
	assert.NotContains(t, string(data), "filtered out")
}
