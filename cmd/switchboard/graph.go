package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/botarmy/switchboard/internal/presentation/graph"
	"github.com/botarmy/switchboard/pkg/identity"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the conversation frames as a Mermaid flowchart",
	Long:  `Renders frames, states, child entries and resume targets. With --session, the session's stack is highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		c, err := loadContent(cfg)
		if err != nil {
			return err
		}
		flow, err := identity.New(c)
		if err != nil {
			return err
		}

		var overlay *graph.Overlay
		if id, _ := cmd.Flags().GetString("session"); id != "" {
			st, err := openStorage(cfg)
			if err != nil {
				return err
			}
			defer st.close()
			s, err := st.store.Load(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("loading session %q: %w", id, err)
			}
			overlay = &graph.Overlay{Stack: s.Stack}
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(flow.Frames(), overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("session", "", "Highlight the stack of this session")
}
