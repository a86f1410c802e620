package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/xfer/internal/config"
	"github.com/bamsammich/xfer/internal/platform"
)

func writeConfig(t *testing.T, content string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	configDir := filepath.Join(dir, "xfer")
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(content), 0o644))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Nil(t, cfg.Copy.Verify)
	assert.Nil(t, cfg.Capabilities.RangeCopy)
	assert.Nil(t, cfg.Log.Level)
}

func TestLoad_FullConfig(t *testing.T) {
	writeConfig(t, `
[capabilities]
extended_stat = true
range_copy = false

[copy]
verify = true
checksum = "xxhash"
bwlimit = "100M"
progress = false

[log]
level = "debug"
file = "/tmp/xfer.log"
`)

	cfg, err := config.Load()
	require.NoError(t, err)

	require.NotNil(t, cfg.Capabilities.ExtendedStat)
	assert.True(t, *cfg.Capabilities.ExtendedStat)
	require.NotNil(t, cfg.Capabilities.RangeCopy)
	assert.False(t, *cfg.Capabilities.RangeCopy)

	require.NotNil(t, cfg.Copy.Verify)
	assert.True(t, *cfg.Copy.Verify)
	require.NotNil(t, cfg.Copy.Checksum)
	assert.Equal(t, "xxhash", *cfg.Copy.Checksum)
	require.NotNil(t, cfg.Copy.BWLimit)
	assert.Equal(t, "100M", *cfg.Copy.BWLimit)
	require.NotNil(t, cfg.Copy.Progress)
	assert.False(t, *cfg.Copy.Progress)

	require.NotNil(t, cfg.Log.Level)
	assert.Equal(t, "debug", *cfg.Log.Level)
	require.NotNil(t, cfg.Log.File)
	assert.Equal(t, "/tmp/xfer.log", *cfg.Log.File)
}

func TestLoad_PartialConfig(t *testing.T) {
	writeConfig(t, `
[log]
level = "warn"
`)

	cfg, err := config.Load()
	require.NoError(t, err)

	// Copy section entirely absent.
	assert.Nil(t, cfg.Copy.Verify)
	assert.Nil(t, cfg.Copy.BWLimit)

	require.NotNil(t, cfg.Log.Level)
	assert.Equal(t, "warn", *cfg.Log.Level)
}

func TestLoad_InvalidTOML(t *testing.T) {
	writeConfig(t, "invalid [[[")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoadFile_Missing(t *testing.T) {
	cfg, err := config.LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, config.Config{}, cfg)
}

func TestPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	assert.Equal(t, "/custom/config/xfer/config.toml", config.Path())
}

func TestCapabilitiesApply(t *testing.T) {
	yes, no := true, false
	full := platform.Capabilities{ExtendedStat: true, RangeCopy: true}

	tests := []struct {
		name string
		cfg  config.CapabilitiesConfig
		in   platform.Capabilities
		want platform.Capabilities
	}{
		{name: "unset keeps detection", in: full, want: full},
		{
			name: "disable range copy",
			cfg:  config.CapabilitiesConfig{RangeCopy: &no},
			in:   full,
			want: platform.Capabilities{ExtendedStat: true},
		},
		{
			name: "disable both",
			cfg:  config.CapabilitiesConfig{ExtendedStat: &no, RangeCopy: &no},
			in:   full,
			want: platform.Capabilities{},
		},
		{
			name: "true never enables",
			cfg:  config.CapabilitiesConfig{ExtendedStat: &yes, RangeCopy: &yes},
			in:   platform.Capabilities{},
			want: platform.Capabilities{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Apply(tt.in))
		})
	}
}
