package main

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetViper points viper at a throwaway config file under t.TempDir
// so config tests never touch the real ~/.tcga-explore.yaml.
func resetViper(t *testing.T) string {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfgFile := filepath.Join(t.TempDir(), "config.yaml")
	viper.SetConfigFile(cfgFile)
	return cfgFile
}

func TestConfigSet_UnknownKey(t *testing.T) {
	resetViper(t)

	err := runConfigSet("proejct", "TCGA-GBM")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown config key "proejct"`)
	assert.Contains(t, err.Error(), "data_dir, project, workers")
}

func TestConfigSet_WorkersMustBeInteger(t *testing.T) {
	resetViper(t)

	err := runConfigSet("workers", "many")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be an integer")

	err = runConfigSet("workers", "-2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be negative")
}

func TestConfigSet_WritesTypedValue(t *testing.T) {
	cfgFile := resetViper(t)

	require.NoError(t, runConfigSet("workers", "8"))
	require.NoError(t, runConfigSet("project", "TCGA-GBM"))

	assert.Equal(t, 8, viper.GetInt("workers"))

	// Round-trip through the written file.
	viper.Reset()
	viper.SetConfigFile(cfgFile)
	require.NoError(t, viper.ReadInConfig())
	assert.Equal(t, 8, viper.GetInt("workers"))
	assert.Equal(t, "TCGA-GBM", viper.GetString("project"))
}

func TestConfigSet_EmptyProjectRejected(t *testing.T) {
	resetViper(t)

	err := runConfigSet("project", "")
	require.Error(t, err)
}

func TestConfigGet_UnknownKey(t *testing.T) {
	resetViper(t)

	err := runConfigGet("workerz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config key")
}

func TestConfigGet_FallsBackToDefault(t *testing.T) {
	resetViper(t)
	viper.SetDefault("workers", 0)

	// Nothing set in the config file; get must still succeed.
	require.NoError(t, runConfigGet("workers"))
	assert.NoFileExists(t, viper.ConfigFileUsed())
}
