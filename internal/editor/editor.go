// Package editor launches the user's text editor on a wiki entry.
package editor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// Exec opens files by running an external editor command in the foreground
// and waiting for it to exit.
type Exec struct {
	command string
}

// NewExec returns an Exec using command, falling back to $EDITOR and then
// to vi when command is empty.
func NewExec(command string) *Exec {
	if command == "" {
		command = os.Getenv("EDITOR")
	}
	if command == "" {
		command = "vi"
	}
	return &Exec{command: command}
}

// Open runs the editor on path, attached to the caller's terminal.
func (e *Exec) Open(ctx context.Context, path string) error {
	cmd := exec.CommandContext(ctx, e.command, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("editor: %s %s: %w", e.command, path, err)
	}
	return nil
}
