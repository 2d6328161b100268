package main

import (
	"os"

	"github.com/spf13/cobra"

	"mediasync/pkg/logger"
)

// syncCmd runs a single cycle and exits.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one sync cycle and exit",
	Long: `Run a single sync cycle over all configured accounts and exit. The
exit code is non-zero when the cycle could not complete for at least
one platform.`,
	Run: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		logger.GetLogger().WithError(err).Fatal("failed to load configuration")
	}

	a := newApp(cfg)
	if err := a.runCycle(cmd.Context()); err != nil {
		a.log.WithError(err).Error("sync cycle failed")
		os.Exit(1)
	}
}
