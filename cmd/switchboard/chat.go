package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/botarmy/switchboard"
	"github.com/botarmy/switchboard/internal/presentation/tui"
	"github.com/botarmy/switchboard/pkg/adapters/console"
	"github.com/botarmy/switchboard/pkg/domain"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the bot in this terminal",
	Long: `Runs the conversation locally. Type /start to begin and /stop to end.
Options are pressed by typing their number; share a contact with "@contact <phone>"
and a location with "@location <lat>,<long>".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		party, _ := cmd.Flags().GetString("party")
		plain, _ := cmd.Flags().GetBool("plain")

		logger := newLogger(cfg)
		c, err := loadContent(cfg)
		if err != nil {
			return err
		}
		st, err := openStorage(cfg)
		if err != nil {
			return err
		}
		defer st.close()

		interactive := term.IsTerminal(int(os.Stdout.Fd()))
		opts := []console.Option{console.WithParty(party)}
		if interactive && !plain {
			width, _, err := term.GetSize(int(os.Stdout.Fd()))
			if err != nil {
				width = 80
			}
			render, err := tui.NewRenderer("", width)
			if err != nil {
				return err
			}
			opts = append(opts, console.WithRenderer(render))
			tui.PrintBanner(os.Stdout)
		}
		con := console.New(os.Stdin, os.Stdout, opts...)

		bot, err := switchboard.New(
			switchboard.WithContent(c),
			switchboard.WithStore(st.store),
			switchboard.WithTransport(con),
			switchboard.WithExporter(newExporter(cfg, logger)),
			switchboard.WithLogger(logger),
		)
		if err != nil {
			return err
		}

		fmt.Fprintln(os.Stdout, "Type /start to begin, /stop to end. Ctrl+D quits.")
		return con.Run(cmd.Context(), func(ctx context.Context, u domain.Update) error {
			_, err := bot.Handle(ctx, u)
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().String("party", console.DefaultParty, "Party ID of the local user")
	chatCmd.Flags().Bool("plain", false, "Print messages without markdown rendering")
}
