package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Library Library `json:"library" yaml:"library"`
	Log     Log     `json:"log"     yaml:"log"`
}

type Library struct {
	MusicDir     string `json:"music_dir"     yaml:"music_dir"`
	SnapshotFile string `json:"snapshot_file" yaml:"snapshot_file"`
}

type Log struct {
	Level  string `json:"level"  yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

func (cfg *Config) validate() error {
	if cfg.Library.MusicDir == "" {
		return errors.New("library music dir is empty")
	}

	if cfg.Library.SnapshotFile == "" {
		return errors.New("library snapshot file is empty")
	}

	switch cfg.Log.Level {
	case "", "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level %q is not one of trace, debug, info, warn, error", cfg.Log.Level)
	}

	switch cfg.Log.Format {
	case "", "pretty", "packed":
	default:
		return fmt.Errorf("log format %q is not one of pretty, packed", cfg.Log.Format)
	}

	return nil
}

func (cfg *Config) expandPaths() error {
	musicDir, err := expandHome(cfg.Library.MusicDir)
	if nil != err {
		return fmt.Errorf("failed to expand library music dir: %v", err)
	}
	cfg.Library.MusicDir = musicDir

	snapshotFile, err := expandHome(cfg.Library.SnapshotFile)
	if nil != err {
		return fmt.Errorf("failed to expand library snapshot file: %v", err)
	}
	cfg.Library.SnapshotFile = snapshotFile

	return nil
}

func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}

	home, err := os.UserHomeDir()
	if nil != err {
		return "", fmt.Errorf("failed to resolve user home dir: %v", err)
	}

	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

func FromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if nil != err {
		return nil, fmt.Errorf("failed to read config file %q: %v", filePath, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); nil != err {
		return nil, fmt.Errorf("failed to unmarshal config file %q: %v", filePath, err)
	}

	if err := cfg.validate(); nil != err {
		return nil, fmt.Errorf("validation failed: %v", err)
	}

	if err := cfg.expandPaths(); nil != err {
		return nil, err
	}

	return &cfg, nil
}

func FromString(data string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(data), &cfg); nil != err {
		return nil, fmt.Errorf("failed to unmarshal config: %v", err)
	}

	if err := cfg.validate(); nil != err {
		return nil, fmt.Errorf("validation failed: %v", err)
	}

	if err := cfg.expandPaths(); nil != err {
		return nil, err
	}

	return &cfg, nil
}
