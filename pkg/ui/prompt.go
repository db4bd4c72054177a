package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// Prompt blocks until the user confirms on the console
type Prompt struct {
	in          io.Reader
	out         io.Writer
	interactive bool
}

// NewPrompt creates a prompt reading from stdin
func NewPrompt() *Prompt {
	return &Prompt{
		in:          os.Stdin,
		out:         os.Stdout,
		interactive: term.IsTerminal(int(os.Stdin.Fd())),
	}
}

// NewPromptWithIO creates a prompt over arbitrary streams
func NewPromptWithIO(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{in: in, out: out, interactive: true}
}

// Wait prints message and blocks until a line is entered. There is no
// timeout. Closed input counts as confirmation so piped runs proceed.
func (p *Prompt) Wait(ctx context.Context, message string) error {
	if !p.interactive {
		fmt.Fprintf(p.out, "%s\n", Yellow("Input is not a terminal; continuing once it is closed or a line arrives."))
	}
	fmt.Fprintf(p.out, "%s ", Cyan(message))

	done := make(chan error, 1)
	go func() {
		_, err := bufio.NewReader(p.in).ReadString('\n')
		if errors.Is(err, io.EOF) {
			err = nil
		}
		done <- err
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(p.out)
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		return nil
	}
}
