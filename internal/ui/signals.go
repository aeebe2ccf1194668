package ui

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// SignalCancelMsg is delivered to the dashboard on SIGINT or SIGTERM
type SignalCancelMsg struct {
	Signal os.Signal
}

// HandleSignals replaces bubbletea's signal handling with one that lets the
// model shut the synchronizer down before quitting. A second signal, or the
// shutdown timeout, exits immediately.
// Must be called before p.Run. Call the returned func once the program has exited.
func HandleSignals(p *tea.Program, shutdownTimeout time.Duration) func() {
	if shutdownTimeout == 0 {
		shutdownTimeout = 2 * time.Second
	}
	tea.WithoutSignalHandler()(p)

	sigCh := make(chan os.Signal, 1)
	doneCh := make(chan struct{})
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)

		var sig os.Signal
		select {
		case sig = <-sigCh:
		case <-doneCh:
			return
		}
		p.Send(SignalCancelMsg{Signal: sig})

		timer := time.NewTimer(shutdownTimeout)
		defer timer.Stop()

		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\nForce quitting...")
			os.Exit(130)
		case <-timer.C:
			fmt.Fprintln(os.Stderr, "\nTimed out waiting for jobs to detach, force quitting...")
			os.Exit(130)
		case <-doneCh:
		}
	}()

	var closed bool
	return func() {
		if !closed {
			closed = true
			close(doneCh)
		}
	}
}
