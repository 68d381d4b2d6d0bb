package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/droidsweep/droidsweep/internal/domain"
)

// Config is the complete droidsweep configuration.
type Config struct {
	// ADB configures the debug bridge invocation
	ADB ADBConfig `mapstructure:"adb"`

	// Staging configures the local staging area for pulled files
	Staging StagingConfig `mapstructure:"staging"`

	// Transfer configures copy/move destination and conflict handling
	Transfer TransferConfig `mapstructure:"transfer"`

	// Scan configures the duplicate scan pipeline
	Scan ScanConfig `mapstructure:"scan"`

	// Cloud selects and configures the object store backend
	Cloud CloudConfig `mapstructure:"cloud"`

	// History configures the operation history database
	History HistoryConfig `mapstructure:"history"`

	// Logging configures log level, format and rotation
	Logging LoggingConfig `mapstructure:"logging"`

	// Metrics configures the Prometheus endpoint
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// ADBConfig configures how the debug bridge binary is invoked.
type ADBConfig struct {
	// Bin is the adb executable name or path
	Bin string `mapstructure:"bin"`

	// Serial targets a specific device (-s); empty uses the default device
	Serial string `mapstructure:"serial"`
}

// StagingConfig configures the local staging area.
type StagingConfig struct {
	Dir string `mapstructure:"dir"`
}

// TransferConfig configures copy/move operations.
type TransferConfig struct {
	// DestRoot is the local folder organized files land under
	DestRoot string `mapstructure:"dest_root"`

	// Album is the top folder name inside DestRoot
	Album string `mapstructure:"album"`

	// OnConflict is the default conflict policy: ask, skip or overwrite
	OnConflict string `mapstructure:"on_conflict"`

	// ConfirmTimeout bounds the wait for an interactive conflict decision
	ConfirmTimeout time.Duration `mapstructure:"confirm_timeout"`
}

// ScanConfig configures the duplicate scan.
type ScanConfig struct {
	// MaxPullSize is the largest file (bytes) staged for local hashing;
	// larger files are skipped during a scan
	MaxPullSize int64 `mapstructure:"max_pull_size"`
}

// CloudConfig selects the object store backend.
type CloudConfig struct {
	// Backend is one of: s3, gdrive, localdir
	Backend string `mapstructure:"backend"`

	S3       S3Config       `mapstructure:"s3"`
	GDrive   GDriveConfig   `mapstructure:"gdrive"`
	LocalDir LocalDirConfig `mapstructure:"localdir"`
}

// S3Config configures the S3-compatible backend.
type S3Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	PathStyle bool   `mapstructure:"path_style"`
}

// GDriveConfig configures the Google Drive backend.
type GDriveConfig struct {
	CredentialsFile string `mapstructure:"credentials_file"`
	TokenFile       string `mapstructure:"token_file"`

	// RootFolder is the Drive folder all object keys live under
	RootFolder string `mapstructure:"root_folder"`
}

// LocalDirConfig configures the directory-backed store.
type LocalDirConfig struct {
	Path string `mapstructure:"path"`
}

// HistoryConfig configures the operation history database.
type HistoryConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level  string        `mapstructure:"level"`
	Format string        `mapstructure:"format"`
	File   LogFileConfig `mapstructure:"file"`
}

// LogFileConfig configures the rotating log file.
type LogFileConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
}

// Validate checks if the configuration is complete and consistent
func (c *Config) Validate() error {
	if c.ADB.Bin == "" {
		return fmt.Errorf("%w: adb.bin cannot be empty", domain.ErrConfigInvalid)
	}

	switch c.Transfer.OnConflict {
	case "ask", "skip", "overwrite":
	default:
		return fmt.Errorf("%w: transfer.on_conflict must be ask, skip or overwrite (got %q)",
			domain.ErrConfigInvalid, c.Transfer.OnConflict)
	}

	if c.Transfer.ConfirmTimeout <= 0 {
		return fmt.Errorf("%w: transfer.confirm_timeout must be positive", domain.ErrConfigInvalid)
	}

	if c.Scan.MaxPullSize <= 0 {
		return fmt.Errorf("%w: scan.max_pull_size must be positive", domain.ErrConfigInvalid)
	}

	switch c.Cloud.Backend {
	case "":
		// cloud operations disabled
	case "s3":
		if c.Cloud.S3.Bucket == "" {
			return fmt.Errorf("%w: cloud.s3.bucket is required for the s3 backend", domain.ErrConfigInvalid)
		}
	case "gdrive":
		if c.Cloud.GDrive.CredentialsFile == "" {
			return fmt.Errorf("%w: cloud.gdrive.credentials_file is required for the gdrive backend", domain.ErrConfigInvalid)
		}
	case "localdir":
		if c.Cloud.LocalDir.Path == "" {
			return fmt.Errorf("%w: cloud.localdir.path is required for the localdir backend", domain.ErrConfigInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown cloud backend: %s", domain.ErrConfigInvalid, c.Cloud.Backend)
	}

	return nil
}

// StagingDir returns the expanded staging directory path.
func (c *Config) StagingDir() string {
	return ExpandPath(c.Staging.Dir)
}

// HistoryPath returns the expanded history database path.
func (c *Config) HistoryPath() string {
	return ExpandPath(c.History.Path)
}

// ExpandPath expands ~ and environment variables in a path
func ExpandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			if len(path) > 1 && (path[1] == '/' || path[1] == filepath.Separator) {
				path = filepath.Join(home, path[2:])
			} else if len(path) == 1 {
				path = home
			}
		}
	}
	path = os.ExpandEnv(path)
	return filepath.Clean(path)
}
