package cmd

import (
	"fmt"
	"os"

	"github.com/mj1618/luckydog/internal/config"
	"github.com/mj1618/luckydog/internal/logging"
	"github.com/mj1618/luckydog/internal/output"
	"github.com/mj1618/luckydog/internal/version"
	"github.com/spf13/cobra"
)

// appConfig is the loaded configuration with flag overrides applied. It is
// set by the root command before any subcommand runs.
var appConfig = config.Default()

var rootCmd = &cobra.Command{
	Use:   "luckydog",
	Short: "Claim WeChat red packets on an Android device",
	Long: `luckydog watches an Android device over adb and opens incoming WeChat red packets:
it clicks unopened packets in chats, presses the open button on the packet popup,
backs out of the detail page and opens packet notifications.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.PersistentFlags().String("format", "yaml", "Output format: yaml, json")
	rootCmd.PersistentFlags().Bool("pretty", false, "Pretty-print JSON output")
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file (overlays the built-in WeChat profile)")
	rootCmd.PersistentFlags().String("serial", "", "Device serial (default: the only attached device)")
	rootCmd.PersistentFlags().String("adb", "", "Path to the adb binary")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-file", "", "Also append logs to this file")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		format, _ := rootCmd.PersistentFlags().GetString("format")
		f, err := output.ParseFormat(format)
		if err != nil {
			return err
		}
		output.OutputFormat = f
		output.PrettyOutput, _ = rootCmd.PersistentFlags().GetBool("pretty")

		path, _ := rootCmd.PersistentFlags().GetString("config")
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		applyFlagOverrides(cmd, &cfg)
		appConfig = cfg

		return logging.Init(cfg.Log)
	}
	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return logging.Close()
	}
}

// applyFlagOverrides copies explicitly set persistent flags over cfg.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("serial") {
		cfg.ADB.Serial, _ = flags.GetString("serial")
	}
	if flags.Changed("adb") {
		cfg.ADB.Path, _ = flags.GetString("adb")
	}
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-file") {
		cfg.Log.File, _ = flags.GetString("log-file")
	}
}
