package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/droidsweep/droidsweep/internal/daemon"
	"github.com/droidsweep/droidsweep/internal/logger"
	"github.com/droidsweep/droidsweep/internal/metrics"
	"github.com/droidsweep/droidsweep/internal/watch"
)

var (
	flagWatchInterval time.Duration
	flagWatchMetrics  bool
	flagWatchDaemon   bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Monitor device connectivity until interrupted",
	Long: `Poll the bridge on an interval and log device state transitions.
With --daemon a pid file is written so "droidsweep watch stop" can
terminate a backgrounded watch. With --metrics a Prometheus endpoint
is served on metrics.listen.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.Get()

		if flagWatchDaemon {
			pidPath, err := daemon.DefaultPIDPath()
			if err != nil {
				return err
			}
			pidFile := daemon.NewPIDFile(pidPath)
			if err := pidFile.Write(); err != nil {
				return err
			}
			defer pidFile.Remove()
			log.Info("watch pid file written", "path", pidFile.Path())
		}

		if flagWatchMetrics || cfg.Metrics.Enabled {
			srv := &http.Server{Addr: cfg.Metrics.Listen, Handler: metrics.Handler()}
			go func() {
				log.Info("metrics endpoint listening", "addr", cfg.Metrics.Listen)
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("metrics endpoint failed", "error", err.Error())
				}
			}()
			defer srv.Close()
		}

		monitor, err := watch.NewMonitor(flagWatchInterval, dev, log)
		if err != nil {
			return err
		}
		if err := monitor.Start(cmd.Context()); err != nil {
			return err
		}

		<-cmd.Context().Done()

		stats := monitor.Stats()
		log.Info("watch stopping",
			"polls", stats.TotalPolls,
			"transitions", stats.Transitions,
			"state", string(stats.State))
		return nil
	},
}

var watchStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a backgrounded watch",
	RunE: func(cmd *cobra.Command, args []string) error {
		pidPath, err := daemon.DefaultPIDPath()
		if err != nil {
			return err
		}
		pidFile := daemon.NewPIDFile(pidPath)

		running, err := pidFile.IsRunning()
		if err != nil || !running {
			return fmt.Errorf("no watch daemon is running")
		}
		if err := pidFile.Kill(); err != nil {
			return err
		}

		pid, _ := pidFile.Read()
		fmt.Printf("stopped watch daemon (pid %d)\n", pid)
		return nil
	},
}

func init() {
	watchCmd.Flags().DurationVarP(&flagWatchInterval, "interval", "i", 30*time.Second, "poll interval")
	watchCmd.Flags().BoolVar(&flagWatchMetrics, "metrics", false, "serve the Prometheus endpoint")
	watchCmd.Flags().BoolVar(&flagWatchDaemon, "daemon", false, "write a pid file for \"watch stop\"")
	watchCmd.AddCommand(watchStopCmd)
	rootCmd.AddCommand(watchCmd)
}
