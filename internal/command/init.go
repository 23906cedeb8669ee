package command

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/uhhhh15/starmark/internal/core"
	"github.com/uhhhh15/starmark/internal/db"
	"github.com/uhhhh15/starmark/internal/host"
	"github.com/uhhhh15/starmark/internal/types"
)

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a starmark project in the current directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			characterName, _ := cmd.Flags().GetString("character")
			userName, _ := cmd.Flags().GetString("user")
			group, _ := cmd.Flags().GetBool("group")

			project, err := core.InitProject("", force)
			if err != nil {
				return writeCommandError(cmd, err)
			}

			conn, err := db.OpenDatabase(project)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer conn.Close()

			kind := "character"
			prefix := "char"
			if group {
				kind = "group"
				prefix = "grp"
			}
			entityID, err := core.GenerateGUID(prefix)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if err := db.CreateEntity(conn, types.Entity{
				ID:   entityID,
				Kind: kind,
				Name: characterName,
			}); err != nil {
				return writeCommandError(cmd, err)
			}
			if err := db.SetState(conn, db.StateUserName, userName); err != nil {
				return writeCommandError(cmd, err)
			}
			conn.Close()

			// Create and switch to the first conversation through the
			// host so the marker file and signal plumbing get set up.
			h, err := host.Open(project)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer h.Close()
			convID, err := h.CreateConversation(entityID)
			if err != nil {
				return writeCommandError(cmd, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s with %s %q (conversation %s)\n",
				project.DataDir(), kind, characterName, convID)
			return nil
		},
	}

	cmd.Flags().String("character", "Assistant", "character display name")
	cmd.Flags().String("user", "User", "user display name")
	cmd.Flags().Bool("group", false, "create a group instead of a character")

	return cmd
}
