// Package config holds the immutable server configuration assembled from
// CLI flags and an optional YAML file.
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

// Config is the full server configuration. It is built once at startup and
// never mutated afterwards.
type Config struct {
	// Host is the bind host, e.g. "localhost" or "0.0.0.0".
	Host string `yaml:"host"`
	// Port is the TCP port to listen on.
	Port int `yaml:"port"`
	// Level is the log verbosity: debug, info, warn, error.
	Level string `yaml:"level"`
	// NoDirList disables auto-generated directory listings.
	NoDirList bool `yaml:"no_dirlist"`
	// RootDir is the filesystem subtree exposed for serving.
	RootDir string `yaml:"rootdir"`
	// ReadOnly disables multipart uploads.
	ReadOnly bool `yaml:"read_only"`
	// Markdown renders .md files as HTML pages instead of raw bytes.
	Markdown bool `yaml:"markdown"`
	// PIDFile, when set, receives the process ID at startup.
	PIDFile string `yaml:"pid_file"`
	// LogFile, when set, receives log output instead of stderr.
	LogFile string `yaml:"log_file"`
}

// Default returns the configuration used when no flags or file override it.
func Default() Config {
	return Config{
		Host:    "localhost",
		Port:    8080,
		Level:   "info",
		RootDir: ".",
	}
}

// Load reads a YAML configuration file. Fields absent from the file keep
// their default values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration and normalizes RootDir to an absolute
// path. It must be called before the config is used.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port out of range [1..65535]: %d", c.Port)
	}

	if _, err := log.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("invalid log level %q", c.Level)
	}

	root, err := filepath.Abs(c.RootDir)
	if err != nil {
		return fmt.Errorf("resolve root directory: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("root directory does not exist: %s", root)
	}
	if !info.IsDir() {
		return fmt.Errorf("root directory is not a directory: %s", root)
	}
	c.RootDir = root

	return nil
}

// Addr returns the host:port address to bind.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
