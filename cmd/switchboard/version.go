package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/botarmy/switchboard"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of switchboard",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "switchboard version %s\n", strings.TrimSpace(switchboard.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
