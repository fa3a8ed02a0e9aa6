package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "table.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
id: "table-01"
log:
  level: "debug"
`)
	require.NoError(t, Load(path))

	require.Equal(t, "table-01", TableNodeConfig.ID)
	require.Equal(t, "debug", TableNodeConfig.LogConf.Level)
	// untouched keys fall back to defaults
	require.Equal(t, "table", TableNodeConfig.ServerType)
	require.Equal(t, 5300, TableNodeConfig.MetricPort)
	require.Equal(t, "nats://localhost:4222", TableNodeConfig.NatsConf.URL)
	require.Equal(t, "UP_TO_8_POINTS", TableNodeConfig.GameSettings.TaiCapPolicy)
	require.Equal(t, 15, TableNodeConfig.GameSettings.DeadlineSeconds)
	require.True(t, TableNodeConfig.GameSettings.FlowerReplacement)
}

func TestLoadOverridesGameSettings(t *testing.T) {
	path := writeConfig(t, `
id: "table-02"
game:
  taiCapPolicy: "NO_LIMIT"
  deadlinePolicy: "SOFT"
  deadlineSeconds: 8
  flowerReplacement: false
`)
	require.NoError(t, Load(path))

	require.Equal(t, "NO_LIMIT", TableNodeConfig.GameSettings.TaiCapPolicy)
	require.Equal(t, "SOFT", TableNodeConfig.GameSettings.DeadlinePolicy)
	require.Equal(t, 8, TableNodeConfig.GameSettings.DeadlineSeconds)
	require.False(t, TableNodeConfig.GameSettings.FlowerReplacement)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	require.Error(t, Load(""))
	require.Error(t, Load("/nonexistent/table.yaml"))
}
