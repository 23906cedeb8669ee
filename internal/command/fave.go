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

// NewFaveCmd creates the fave command.
func NewFaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fave <index>",
		Short: "Favorite a message by index",
		Args:  cobra.ExactArgs(1),
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

			msg, ok := ctx.Host.MessageAt(index)
			if !ok {
				return writeCommandError(cmd, fmt.Errorf("no message at index %d", index))
			}

			messageID := strconv.Itoa(index)
			if existing, found := ctx.Store.ByMessageID(messageID); found {
				if ctx.JSONMode {
					return json.NewEncoder(cmd.OutOrStdout()).Encode(existing)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Message %d is already favorited\n", index)
				return nil
			}

			rec, err := ctx.Store.Add(messageID, msg.Sender, msg.Role())
			if err != nil {
				return writeCommandError(cmd, err)
			}

			if ctx.JSONMode {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(rec)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Favorited message %d (%s)\n", index, msg.Sender)
			return nil
		},
	}
	return cmd
}

// NewUnfaveCmd creates the unfave command.
func NewUnfaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unfave <index>",
		Short: "Remove the favorite on a message",
		Args:  cobra.ExactArgs(1),
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

			if !ctx.Store.RemoveByMessageID(strconv.Itoa(index)) {
				return writeCommandError(cmd, fmt.Errorf("message %d is not favorited", index))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unfavorited message %d\n", index)
			return nil
		},
	}
	return cmd
}

// NewFavesCmd creates the faves command.
func NewFavesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "faves",
		Short: "List favorites in the current conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			records, err := ctx.Store.Collection()
			if err != nil {
				return writeCommandError(cmd, err)
			}
			sorted := store.SortedByIndex(records)

			if ctx.JSONMode {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(sorted)
			}

			if len(sorted) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No favorites")
				return nil
			}
			for _, rec := range sorted {
				line := fmt.Sprintf("[%s] %s (%s)", rec.MessageID, rec.Sender, rec.Role)
				if idx, convErr := strconv.Atoi(rec.MessageID); convErr == nil {
					if msg, ok := ctx.Host.MessageAt(idx); ok && msg.SendDate != 0 {
						line += " · " + humanize.Time(time.Unix(msg.SendDate, 0))
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
				if rec.Note != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "    note: %s\n", rec.Note)
				}
			}
			return nil
		},
	}
	return cmd
}
