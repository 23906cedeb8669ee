package command

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewRmCmd creates the rm command.
func NewRmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <index>",
		Short: "Delete a message from the current conversation",
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

			if err := ctx.Host.DeleteMessage(index); err != nil {
				return writeCommandError(cmd, err)
			}
			// One-shot process: apply the deletion reaction directly
			// instead of through a running listener.
			removed := ctx.Store.HandleMessageDeleted(index)

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted message %d", index)
			if removed > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), " (and %d favorite(s) referencing it)", removed)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
	return cmd
}

// NewEditCmd creates the edit command.
func NewEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <index> <body>",
		Short: "Replace the body of a message",
		Args:  cobra.ExactArgs(2),
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

			if err := ctx.Host.UpdateMessage(index, args[1]); err != nil {
				return writeCommandError(cmd, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated message %d\n", index)
			return nil
		},
	}
	return cmd
}
