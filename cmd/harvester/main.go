package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/socialharvester/harvester/internal/commands"
	"github.com/socialharvester/harvester/internal/ui"
	"github.com/socialharvester/harvester/pkg/bugsnag"
)

func main() {
	bugsnag.Initialize()
	defer bugsnag.NotifyOnPanic(context.Background())

	rootCmd := commands.NewRootCmd()
	err := rootCmd.Execute()
	if err == nil {
		return
	}

	var uiErr *ui.UIError
	if errors.As(err, &uiErr) {
		if uiErr.Type == ui.ErrorTypeInternal {
			bugsnag.NotifyError(context.Background(), err)
		}
		if !uiErr.SilentExit {
			fmt.Fprint(os.Stderr, ui.FormatError(uiErr))
		}
		os.Exit(1)
	}

	errMsg := err.Error()
	switch {
	case strings.HasPrefix(errMsg, "unknown command"):
		// Usage is silenced for commands, so show it here
		_ = rootCmd.Usage()
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, err)
	default:
		// Cobra already printed usage for unknown flags and bad arguments
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(1)
}
