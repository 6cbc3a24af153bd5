package cmd

import (
	"fmt"
	"os"

	"cvsync/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "cvsync",
	Short: "Nautobot and CloudVision sync",
	Long: `cvsync keeps a Nautobot inventory and Arista CloudVision in step.
It imports devices, system tags and interfaces from CloudVision into Nautobot
and pushes Nautobot tags back to CloudVision as user tags.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console encoding at debug level gives readable timestamps for CLI errors.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
