package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/botarmy/switchboard/internal/config"
	"github.com/botarmy/switchboard/pkg/identity"
)

var validateCmd = &cobra.Command{
	Use:   "validate [content-file]",
	Short: "Check a content file and the frames built from it",
	Long:  `Loads the content, resolves choice and branch references and composes the frames, reporting every problem found.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if len(args) == 1 {
			cfg.Content.Path = args[0]
		}
		if err := runValidate(cfg); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Content is valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cfg config.Config) error {
	c, err := loadContent(cfg)
	if err != nil {
		return err
	}
	if _, err := c.Registry(); err != nil {
		return err
	}
	_, err = identity.New(c)
	return err
}
