package command

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/uhhhh15/starmark/internal/store"
)

// NewLsCmd creates the ls command.
func NewLsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List messages in the current conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			msgs := ctx.Host.Messages()
			records, err := ctx.Store.Collection()
			if err != nil {
				return writeCommandError(cmd, err)
			}

			visible := make([]string, len(msgs))
			for i := range msgs {
				visible[i] = strconv.Itoa(i)
			}
			starred := store.IconStates(records, visible)

			if ctx.JSONMode {
				out := make([]map[string]any, len(msgs))
				for i, m := range msgs {
					out[i] = map[string]any{
						"index":     i,
						"sender":    m.Sender,
						"is_user":   m.IsUser,
						"body":      m.Body,
						"favorited": starred[strconv.Itoa(i)],
					}
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(out)
			}

			if len(msgs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No messages")
				return nil
			}
			for i, m := range msgs {
				marker := " "
				if starred[strconv.Itoa(i)] {
					marker = "*"
				}
				age := ""
				if m.SendDate != 0 {
					age = " · " + humanize.Time(time.Unix(m.SendDate, 0))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s [%d] %s%s\n    %s\n", marker, i, m.Sender, age, m.Body)
			}
			return nil
		},
	}
	return cmd
}
