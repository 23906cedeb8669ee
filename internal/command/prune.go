package command

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewPruneCmd creates the prune command.
func NewPruneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove favorites whose messages no longer exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")

			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			if !force {
				ok, err := confirmPrompt(cmd.InOrStdin(), cmd.OutOrStdout(),
					"Remove favorites pointing at missing messages? [y/N] ")
				if err != nil {
					return writeCommandError(cmd, err)
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
					return nil
				}
			}

			count := ctx.Host.MessageCount()
			removed, err := ctx.Store.PruneInvalid(count, func(index int) bool {
				_, ok := ctx.Host.MessageAt(index)
				return ok
			})
			if err != nil {
				return writeCommandError(cmd, err)
			}

			if removed == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to prune")
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d favorite(s)\n", removed)
			}
			return nil
		},
	}
	return cmd
}
