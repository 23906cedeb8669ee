package command

import (
	"os"

	"github.com/spf13/cobra"
)

const AppName = "starmark"

// Version is overwritten at build time using -ldflags.
var Version = "dev"

// NewRootCmd builds the command tree.
func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           AppName,
		Short:         "Starmark - favorites for local chat conversations",
		Long:          "Starmark marks messages in a conversation as favorites, annotates them, exports them, and previews the favorited subset as a side conversation.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.Version = version
	cmd.SetVersionTemplate(AppName + " version {{.Version}}\n")
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.PersistentFlags().Bool("json", false, "output in JSON format")
	cmd.PersistentFlags().Bool("force", false, "force action (skip confirmations)")

	cmd.AddCommand(
		NewInitCmd(),
		NewPostCmd(),
		NewLsCmd(),
		NewRmCmd(),
		NewEditCmd(),
		NewSwitchCmd(),
		NewRenameCmd(),
		NewFaveCmd(),
		NewUnfaveCmd(),
		NewFavesCmd(),
		NewNoteCmd(),
		NewPruneCmd(),
		NewExportCmd(),
		NewPreviewCmd(),
		NewPanelCmd(),
	)

	return cmd
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCmd(Version).Execute()
}
