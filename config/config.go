// Package config loads the pageinfod configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	DefaultSocket     = "/run/pageinfo/driver.sock"
	DefaultSocketMode = "0666"

	EnvSocket      = "PAGEINFO_SOCKET"
	EnvSnapshotDir = "PAGEINFO_SNAPSHOT_DIR"
)

// Config is the daemon configuration.
type Config struct {
	// Socket is the path of the control socket.
	Socket string `yaml:"socket"`
	// SocketMode is the octal permission of the control socket.
	SocketMode string `yaml:"socket_mode"`
	// SnapshotDir serves process snapshots from <dir>/<pid> instead of live processes.
	SnapshotDir string `yaml:"snapshot_dir"`
	// KPageFlags reads /proc/kpageflags for page flag words when permitted.
	KPageFlags bool `yaml:"kpageflags"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Socket:     DefaultSocket,
		SocketMode: DefaultSocketMode,
		KPageFlags: true,
	}
}

// Load reads path over the defaults and applies environment overrides.
// An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from PAGEINFO_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvSocket); v != "" {
		c.Socket = v
	}
	if v := os.Getenv(EnvSnapshotDir); v != "" {
		c.SnapshotDir = v
	}
}

// Validate checks the fields that have no usable zero value.
func (c Config) Validate() error {
	if c.Socket == "" {
		return errors.New("config: socket path is empty")
	}
	if _, err := c.Mode(); err != nil {
		return err
	}
	if c.SnapshotDir != "" {
		info, err := os.Stat(c.SnapshotDir)
		if err != nil {
			return fmt.Errorf("config: snapshot_dir: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("config: snapshot_dir %s: %w", c.SnapshotDir, fs.ErrInvalid)
		}
	}
	return nil
}

// Mode parses SocketMode.
func (c Config) Mode() (os.FileMode, error) {
	mode, err := strconv.ParseUint(c.SocketMode, 8, 32)
	if err != nil || mode > 0o777 {
		return 0, fmt.Errorf("config: invalid socket_mode %q", c.SocketMode)
	}
	return os.FileMode(mode), nil
}
