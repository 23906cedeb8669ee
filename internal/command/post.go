package command

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/uhhhh15/starmark/internal/types"
)

// NewPostCmd creates the post command.
func NewPostCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post <body>",
		Short: "Append a message to the current conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			asUser, _ := cmd.Flags().GetBool("user")
			chat, err := ctx.Host.Context()
			if err != nil {
				return writeCommandError(cmd, err)
			}

			sender := chat.CharacterName
			if asUser {
				sender = chat.UserName
			}
			msg := types.Message{
				Sender: sender,
				IsUser: asUser,
				Body:   args[0],
			}
			if err := ctx.Host.InsertMessage(msg); err != nil {
				return writeCommandError(cmd, err)
			}

			index := ctx.Host.MessageCount() - 1
			if ctx.JSONMode {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"index":  index,
					"sender": sender,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Posted message %d as %s\n", index, sender)
			return nil
		},
	}

	cmd.Flags().Bool("user", false, "post as the user instead of the character")
	return cmd
}
