package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/bamsammich/xfer/internal/platform"
)

// Config represents the optional xfer configuration file.
type Config struct {
	Capabilities CapabilitiesConfig `toml:"capabilities"`
	Copy         CopyConfig         `toml:"copy"`
	Log          LogConfig          `toml:"log"`
}

// CapabilitiesConfig can force detected kernel features off. Setting a field
// to true never enables a feature the kernel lacks.
type CapabilitiesConfig struct {
	ExtendedStat *bool `toml:"extended_stat"`
	RangeCopy    *bool `toml:"range_copy"`
}

// CopyConfig holds persistent defaults for the copy command.
type CopyConfig struct {
	Verify   *bool   `toml:"verify"`
	Checksum *string `toml:"checksum"`
	BWLimit  *string `toml:"bwlimit"`
	Progress *bool   `toml:"progress"`
}

// LogConfig holds persistent logging defaults.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
}

// Apply returns caps with every feature this section disables turned off.
func (c CapabilitiesConfig) Apply(caps platform.Capabilities) platform.Capabilities {
	return caps.Without(
		c.ExtendedStat != nil && !*c.ExtendedStat,
		c.RangeCopy != nil && !*c.RangeCopy,
	)
}

// Path returns the resolved path to the config file.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "xfer", "config.toml")
}

// Load reads the config file from the XDG path. Returns a zero Config
// (no error) if the file does not exist.
func Load() (Config, error) {
	path := Path()
	if path == "" {
		return Config{}, nil
	}
	return LoadFile(path)
}

// LoadFile reads the config file at path. A missing file yields a zero Config.
func LoadFile(path string) (Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, err
	}
	return cfg, nil
}
