package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/droidsweep/droidsweep/internal/adb"
	"github.com/droidsweep/droidsweep/internal/config"
	"github.com/droidsweep/droidsweep/internal/logger"
	"github.com/droidsweep/droidsweep/internal/service"
	"github.com/droidsweep/droidsweep/internal/state"
)

var (
	flagConfig  string
	flagVerbose bool
	flagSerial  string

	cfg *config.Config
	dev *adb.Device
)

var rootCmd = &cobra.Command{
	Use:   "droidsweep",
	Short: "Duplicate finder and file organizer for Android devices",
	Long: `droidsweep browses a USB-connected Android device over adb,
finds duplicate files by content hash, and copies, moves, or backs
up files into an organized local folder tree or a cloud object
store.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(flagConfig)
		if err != nil {
			return err
		}
		if flagSerial != "" {
			cfg.ADB.Serial = flagSerial
		}
		if flagVerbose {
			cfg.Logging.Level = "debug"
		}

		if err := logger.Init(loggerConfig(cfg.Logging)); err != nil {
			return err
		}

		dev = adb.NewDevice(adb.NewExecRunner(cfg.ADB.Bin, cfg.ADB.Serial), logger.Get())
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Shutdown()
	},
}

// Execute runs the command tree under ctx. Cancelling ctx cancels the
// running operation.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVarP(&flagSerial, "serial", "s", "", "target a specific device serial")
}

// loggerConfig maps the file config onto the logger package's own
// config. Console output goes to stderr so command output on stdout
// stays clean for piping.
func loggerConfig(lc config.LoggingConfig) logger.Config {
	c := logger.Config{
		Level:   logger.ParseLevel(lc.Level),
		Format:  logger.ParseFormat(lc.Format),
		Outputs: []logger.OutputConfig{{Type: logger.OutputStderr}},
	}

	if lc.File.Enabled {
		c.Outputs = append(c.Outputs, logger.OutputConfig{Type: logger.OutputFile})
		c.File = logger.FileConfig{
			Enabled:    true,
			Path:       config.ExpandPath(lc.File.Path),
			MaxSizeMB:  lc.File.MaxSizeMB,
			MaxAgeDays: lc.File.MaxAgeDays,
			MaxBackups: lc.File.MaxBackups,
			Compress:   lc.File.Compress,
		}
	}

	return c
}

// newService wires the operations service, with the history database
// when it opens. A broken history file degrades to an unrecorded run
// rather than blocking the operation.
func newService() (*service.Service, func(), error) {
	var history *state.Manager
	if cfg.History.Path != "" {
		m, err := state.NewManager(cfg.HistoryPath())
		if err != nil {
			logger.Get().Warn("operation history unavailable", "error", err.Error())
		} else {
			history = m
		}
	}

	svc, err := service.NewService(cfg, dev, history, logger.Get())
	if err != nil {
		if history != nil {
			history.Close()
		}
		return nil, nil, err
	}

	cleanup := func() {
		if history != nil {
			history.Close()
		}
	}
	return svc, cleanup, nil
}
