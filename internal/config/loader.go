package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/droidsweep/droidsweep/internal/domain"
)

// maxPullSizeDefault bounds what a duplicate scan will stage locally.
const maxPullSizeDefault = 500 * 1024 * 1024

// DefaultConfigPaths returns the default paths to search for config files
func DefaultConfigPaths() []string {
	paths := []string{
		".",
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(configDir, "droidsweep"))
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, ".config", "droidsweep"))
		paths = append(paths, filepath.Join(homeDir, ".droidsweep"))
	}

	return paths
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("adb.bin", "adb")
	v.SetDefault("staging.dir", "~/.cache/droidsweep/staging")
	v.SetDefault("transfer.album", "My Album")
	v.SetDefault("transfer.on_conflict", "ask")
	v.SetDefault("transfer.confirm_timeout", "10m")
	v.SetDefault("scan.max_pull_size", maxPullSizeDefault)
	v.SetDefault("history.path", "~/.config/droidsweep/history.db")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file.max_size_mb", 10)
	v.SetDefault("logging.file.max_age_days", 14)
	v.SetDefault("logging.file.max_backups", 3)
	v.SetDefault("metrics.listen", "127.0.0.1:9921")
}

// Load reads and parses a configuration file.
// If path is empty, searches default locations for droidsweep.yaml;
// a missing file is not an error, defaults apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("DROIDSWEEP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("droidsweep")
		v.SetConfigType("yaml")
		for _, p := range DefaultConfigPaths() {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// No file anywhere: run on defaults unless one was demanded
			if path != "" {
				return nil, domain.ErrConfigNotFound
			}
		} else if os.IsNotExist(err) {
			return nil, domain.ErrConfigNotFound
		} else {
			return nil, fmt.Errorf("%w: %v", domain.ErrConfigInvalid, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfigInvalid, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFromString parses configuration from a YAML string
func LoadFromString(yamlContent string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")

	if err := v.ReadConfig(strings.NewReader(yamlContent)); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfigInvalid, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfigInvalid, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
