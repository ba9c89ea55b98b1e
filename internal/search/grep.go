package search

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Grep shells out to a ripgrep-compatible search tool. The binary is never
// probed up front; a missing tool surfaces as the exec error of the first
// search.
type Grep struct {
	bin string
}

// NewGrep returns a Grep using the given binary ("rg" when empty).
func NewGrep(bin string) *Grep {
	if bin == "" {
		bin = "rg"
	}
	return &Grep{bin: bin}
}

// Search runs the tool with line numbers enabled and parses its
// file:line:text output. Exit status 1 means no matches and yields an
// empty result.
func (g *Grep) Search(ctx context.Context, pattern, root string) ([]Match, error) {
	args := []string{"--line-number", "--no-heading", "--color=never", "-e", pattern, root}
	cmd := exec.CommandContext(ctx, g.bin, args...)

	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return nil, nil
		}
		return nil, fmt.Errorf("search: %s: %w", g.bin, err)
	}
	return parseGrepOutput(out), nil
}

// parseGrepOutput splits file:line:text lines. Lines that do not fit the
// shape (tool banners, context separators) are skipped.
func parseGrepOutput(out []byte) []Match {
	var matches []Match
	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		file, rest, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		lineno, text, ok := strings.Cut(rest, ":")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(lineno)
		if err != nil {
			continue
		}
		matches = append(matches, Match{File: file, Line: n, Text: text})
	}
	return matches
}
