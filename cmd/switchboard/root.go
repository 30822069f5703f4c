package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/botarmy/switchboard/internal/config"
)

// settings merges the config file, SWITCHBOARD_* variables and flags.
var settings = config.New()

var rootCmd = &cobra.Command{
	Use:   "switchboard",
	Short: "Switchboard runs menu-driven information capture bots",
	Long: `Switchboard drives stacked conversation frames for chat bots: a reason menu,
an action menu and a field collector, over Telegram or a local console.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default ./switchboard.yaml or ./switchboard.toml)")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.String("content", "", "Content file with texts, buttons and fields (default: built-in)")
	flags.String("store", "memory", "Session store: memory, file or redis")

	mustBind("log.level", "log-level")
	mustBind("content.path", "content")
	mustBind("store.driver", "store")
}

func mustBind(key, flag string) {
	if err := settings.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	file, _ := cmd.Flags().GetString("config")
	return config.Load(settings, file)
}
