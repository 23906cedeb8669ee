package command

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/uhhhh15/starmark/internal/export"
)

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export favorites from the current conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			outDir, _ := cmd.Flags().GetString("out")

			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			src, err := export.Snapshot(ctx.Host, ctx.Store)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if len(src.Records) == 0 {
				return writeCommandError(cmd, fmt.Errorf("no favorites to export"))
			}

			if outDir == "" {
				outDir = "."
			}
			writer := export.Writer{Dir: outDir}

			var path string
			switch format {
			case "txt":
				path, err = writer.WriteText(src)
			case "jsonl":
				path, err = writer.WriteLines(src)
			case "worldbook":
				path, err = writer.WriteWorldbook(src)
			default:
				err = fmt.Errorf("unknown format %q (want txt, jsonl, or worldbook)", format)
			}
			if err != nil {
				return writeCommandError(cmd, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d favorite(s) to %s\n", len(src.Records), path)
			return nil
		},
	}

	cmd.Flags().String("format", "txt", "export format: txt, jsonl, or worldbook")
	cmd.Flags().String("out", "", "output directory (default current directory)")
	return cmd
}
