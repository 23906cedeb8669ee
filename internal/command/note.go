package command

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/uhhhh15/starmark/internal/store"
)

// NewNoteCmd creates the note command.
func NewNoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note <index> [text]",
		Short: "Set or clear the note on a favorited message",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return writeCommandError(cmd, fmt.Errorf("invalid index: %s", args[0]))
			}

			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			rec, found := ctx.Store.ByMessageID(strconv.Itoa(index))
			if !found {
				return writeCommandError(cmd, fmt.Errorf("message %d is not favorited", index))
			}

			text := ""
			if len(args) == 2 {
				text = args[1]
			}
			if err := ctx.Store.UpdateNote(rec.ID, text); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return writeCommandError(cmd, fmt.Errorf("message %d is not favorited", index))
				}
				return writeCommandError(cmd, err)
			}

			if text == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared note on message %d\n", index)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Noted message %d\n", index)
			}
			return nil
		},
	}
	return cmd
}
