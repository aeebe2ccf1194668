package config

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Open config file in editor",
		Long: `Open the configuration file in your default editor.

The editor is $EDITOR, then $VISUAL, then 'vi' ('notepad' on Windows).

Example:
  EDITOR=nano harvester config edit`,
		Args: cobra.NoArgs,
		RunE: runEdit,
	}
}

func editorCommand() string {
	for _, env := range []string{"EDITOR", "VISUAL"} {
		if editor := os.Getenv(env); editor != "" {
			return editor
		}
	}
	if runtime.GOOS == "windows" {
		return "notepad"
	}
	return "vi"
}

func runEdit(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		return fmt.Errorf("config file not found")
	}

	editor := editorCommand()
	fmt.Fprintf(cmd.OutOrStdout(), "Opening %s with %s...\n", configFile, editor) //nolint:errcheck // best effort

	editorCmd := exec.CommandContext(cmd.Context(), editor, configFile) //nolint:gosec // Editor from user's environment variable
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}

	return nil
}
