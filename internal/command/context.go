package command

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/uhhhh15/starmark/internal/core"
	"github.com/uhhhh15/starmark/internal/host"
	"github.com/uhhhh15/starmark/internal/store"
)

// CommandContext provides shared command resources.
type CommandContext struct {
	Host     *host.Local
	Store    *store.Store
	Project  core.Project
	JSONMode bool
}

// GetContext resolves the project and opens the host for a command.
func GetContext(cmd *cobra.Command) (*CommandContext, error) {
	jsonMode, _ := cmd.Flags().GetBool("json")

	project, err := core.DiscoverProject("")
	if err != nil {
		return nil, err
	}
	h, err := host.Open(project)
	if err != nil {
		return nil, err
	}

	return &CommandContext{
		Host:     h,
		Store:    store.New(h),
		Project:  project,
		JSONMode: jsonMode,
	}, nil
}

// Close flushes pending saves and releases the host.
func (c *CommandContext) Close() {
	_ = c.Host.Close()
}

func confirmPrompt(input io.Reader, output io.Writer, prompt string) (bool, error) {
	fmt.Fprint(output, prompt)
	reader := bufio.NewReader(input)
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	response := strings.TrimSpace(strings.ToLower(line))
	return response == "y" || response == "yes", nil
}
