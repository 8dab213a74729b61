package logx

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_FileSinkJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop.log")
	log, err := New(Options{Production: true, Level: "warn", File: path})
	require.NoError(t, err)

	log.Info("dropped below level")
	log.With("component", "checkout").Warn("stock low", "product_id", "p-1", "left", 2)
	log.Sync()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "stock low", entry["msg"])
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "checkout", entry["component"])
	assert.Equal(t, "p-1", entry["product_id"])
	assert.EqualValues(t, 2, entry["left"])
}

func TestNew_BadLevelFallsBackToInfo(t *testing.T) {
	log, err := New(Options{Level: "loud"})
	require.NoError(t, err)
	assert.True(t, log.SugaredLogger.Desugar().Core().Enabled(0))
	assert.False(t, log.SugaredLogger.Desugar().Core().Enabled(-1))
}
