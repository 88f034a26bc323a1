package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newConversationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "conversation",
		Aliases: []string{"conversations", "conv"},
		Short:   "Browse saved conversations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved conversations",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			convs, err := app.Flow.Conversations(cmd.Context())
			if err != nil {
				return err
			}
			if app.JSON {
				return printJSON(convs)
			}
			rows := make([][]string, 0, len(convs))
			for _, c := range convs {
				rows = append(rows, []string{c.ID, orDash(c.Title), fmt.Sprintf("%d", c.TurnCount), formatTime(c.CreatedAt)})
			}
			table(os.Stdout, []string{"ID", "TITLE", "TURNS", "CREATED"}, rows)
			return nil
		},
	})

	return cmd
}
