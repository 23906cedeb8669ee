package command

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/uhhhh15/starmark/internal/db"
)

// NewSwitchCmd creates the switch command.
func NewSwitchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "switch [conversation-id]",
		Short: "Switch conversations, or list them when no id is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			newConv, _ := cmd.Flags().GetBool("new")

			chat, err := ctx.Host.Context()
			if err != nil {
				return writeCommandError(cmd, err)
			}

			if newConv {
				id, err := ctx.Host.CreateConversation(chat.EntityID())
				if err != nil {
					return writeCommandError(cmd, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Switched to new conversation %s\n", id)
				return nil
			}

			if len(args) == 0 {
				convs, err := db.ListConversations(ctx.Host.DB(), chat.EntityID())
				if err != nil {
					return writeCommandError(cmd, err)
				}
				if ctx.JSONMode {
					return json.NewEncoder(cmd.OutOrStdout()).Encode(convs)
				}
				for _, c := range convs {
					marker := " "
					if c.ID == chat.ConversationID {
						marker = "*"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s  %s\n", marker, c.ID, c.Name)
				}
				return nil
			}

			if err := ctx.Host.SwitchConversation(args[0]); err != nil {
				return writeCommandError(cmd, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Switched to %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().Bool("new", false, "create a new conversation and switch to it")
	return cmd
}

// NewRenameCmd creates the rename command.
func NewRenameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename <name>",
		Short: "Rename the current conversation (its id changes with the name)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			if err := ctx.Host.RenameConversation(args[0]); err != nil {
				return writeCommandError(cmd, err)
			}
			chat, err := ctx.Host.Context()
			if err != nil {
				return writeCommandError(cmd, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed; conversation id is now %s\n", chat.ConversationID)
			return nil
		},
	}
	return cmd
}
