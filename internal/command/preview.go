package command

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/uhhhh15/starmark/internal/db"
	"github.com/uhhhh15/starmark/internal/notify"
	"github.com/uhhhh15/starmark/internal/preview"
)

// noopUI satisfies the preview UI surface for headless runs; there is
// no composition control to hide outside the panel.
type noopUI struct{}

func (noopUI) EnterPreviewMode() {}
func (noopUI) ExitPreviewMode()  {}

// NewPreviewCmd creates the preview command.
func NewPreviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show favorites in a disposable preview conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			ret, _ := cmd.Flags().GetBool("return")
			quiet, _ := cmd.Flags().GetBool("quiet")

			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			conn := ctx.Host.DB()
			notifier := notify.New(cmd.OutOrStdout())
			notifier.Quiet = quiet

			if ret {
				originalID, err := db.GetState(conn, db.StatePreviewReturn)
				if err != nil {
					return writeCommandError(cmd, err)
				}
				if originalID == "" {
					return writeCommandError(cmd, fmt.Errorf("no preview to return from"))
				}
				if err := ctx.Host.SwitchConversation(originalID); err != nil {
					return writeCommandError(cmd, err)
				}
				if err := db.SetState(conn, db.StatePreviewReturn, ""); err != nil {
					return writeCommandError(cmd, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Returned to %s\n", originalID)
				return nil
			}

			// The process exits after filling, so the return pointer is
			// persisted up front for the next invocation.
			chat, err := ctx.Host.Context()
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if err := db.SetState(conn, db.StatePreviewReturn, chat.ConversationID); err != nil {
				return writeCommandError(cmd, err)
			}

			orch := preview.New(ctx.Host, ctx.Store,
				preview.DBMapping{DB: conn}, noopUI{}, notifier)
			if err := orch.Enter(cmd.Context()); err != nil {
				_ = db.SetState(conn, db.StatePreviewReturn, "")
				return writeCommandError(cmd, err)
			}
			if !orch.Active() {
				// Entry declined (for example, no favorites); nothing to
				// return from.
				return db.SetState(conn, db.StatePreviewReturn, "")
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Preview conversation is live; run `starmark preview --return` to go back")
			return nil
		},
	}

	cmd.Flags().Bool("return", false, "return to the conversation that was live before preview")
	cmd.Flags().Bool("quiet", false, "suppress desktop notifications")
	return cmd
}
