package command

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/uhhhh15/starmark/internal/export"
	"github.com/uhhhh15/starmark/internal/host"
	"github.com/uhhhh15/starmark/internal/panel"
)

// NewPanelCmd creates the panel command.
func NewPanelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "panel",
		Short: "Open the interactive favorites panel",
		RunE: func(cmd *cobra.Command, args []string) error {
			exportDir, _ := cmd.Flags().GetString("out")
			debug, _ := cmd.Flags().GetBool("debug")

			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			watchCtx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			if _, err := host.NewWatcher(watchCtx, ctx.Host, debug); err != nil {
				return writeCommandError(cmd, err)
			}

			if exportDir == "" {
				exportDir = "."
			}
			ctx.Store.SetDebug(debug)

			err = panel.Run(panel.Options{
				Host:      ctx.Host,
				Store:     ctx.Store,
				Writer:    export.Writer{Dir: exportDir},
				ExportDir: exportDir,
			})
			if err != nil {
				return writeCommandError(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().String("out", "", "directory for exports triggered from the panel")
	cmd.Flags().Bool("debug", false, "log diagnostics to stderr")
	return cmd
}
