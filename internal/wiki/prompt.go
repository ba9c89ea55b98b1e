package wiki

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Prompter is the synchronous prompt surface the store talks to. The
// terminal implementation below is the production one; tests substitute a
// scripted fake.
type Prompter interface {
	// Input reads one free-text line.
	Input(ctx context.Context, label string) (string, error)
	// Pick presents choices and returns the selection. Free text that is
	// not a choice is returned as typed.
	Pick(ctx context.Context, label string, choices []string) (string, error)
	// Confirm asks a yes/no question, defaulting to no.
	Confirm(ctx context.Context, label string) (bool, error)
}

// TermPrompter prompts on a line-oriented terminal.
type TermPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTermPrompter creates a TermPrompter reading from in and writing to out.
func NewTermPrompter(in io.Reader, out io.Writer) *TermPrompter {
	return &TermPrompter{in: bufio.NewReader(in), out: out}
}

func (p *TermPrompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("prompt: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Input implements Prompter.
func (p *TermPrompter) Input(_ context.Context, label string) (string, error) {
	fmt.Fprint(p.out, label)
	return p.readLine()
}

// Pick implements Prompter. Choices are numbered; the user answers with a
// number, an exact choice, or free text.
func (p *TermPrompter) Pick(_ context.Context, label string, choices []string) (string, error) {
	for i, c := range choices {
		fmt.Fprintf(p.out, "%3d. %s\n", i+1, c)
	}
	fmt.Fprintf(p.out, "%s: ", label)
	line, err := p.readLine()
	if err != nil {
		return "", err
	}
	if n, convErr := strconv.Atoi(line); convErr == nil && n >= 1 && n <= len(choices) {
		return choices[n-1], nil
	}
	return line, nil
}

// Confirm implements Prompter.
func (p *TermPrompter) Confirm(_ context.Context, label string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N] ", label)
	line, err := p.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
