package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mediasync/pkg/logger"
	"mediasync/pkg/scheduler"
)

// runCmd starts the long-running daemon.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the periodic sync daemon",
	Long: `Run one sync cycle immediately and then one every schedule interval
(4 hours by default) until interrupted. A trigger that fires while a
cycle is still in progress is dropped, not queued.`,
	Run: runDaemon,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runDaemon(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		logger.GetLogger().WithError(err).Fatal("failed to load configuration")
	}

	log := logger.GetLogger()
	log.WithField("version", version).Info("mediasync starting")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(cfg)
	s := scheduler.New(cfg.Schedule.Interval, scheduler.JobFunc(a.runCycle), log)
	s.Start(ctx)

	log.Info("mediasync stopped")
}
