package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liangyou/gosdk/internal/remote"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DefaultProjectFile, cfg.ProjectFile)
	assert.Equal(t, remote.DefaultAPIBase, cfg.APIBase)
	assert.Equal(t, remote.DefaultDownloadBase, cfg.DownloadBase)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, filepath.Join(cfg.RootDir, "versions"), cfg.VersionsDir)
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	file := "root-dir: " + dir + "\ncache-ttl: 90s\nlog-level: debug\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(file), 0o644))

	t.Setenv("GOSDK_LOG_LEVEL", "error")

	cfg, err := Load(viper.New(), dir)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.RootDir)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, filepath.Join(dir, "versions"), cfg.VersionsDir)
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("root-dir: [unterminated"), 0o644))

	_, err := Load(viper.New(), dir)
	require.Error(t, err)
}

func TestLoadValidates(t *testing.T) {
	v := viper.New()
	v.Set(KeyProject, "")

	_, err := Load(v, t.TempDir())
	require.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	level, err = ParseLevel(" WARN ")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}
