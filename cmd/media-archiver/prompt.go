package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/alanbriolat/media-archiver/async"
)

// prompter asks for URLs and yes/no answers on a line-oriented terminal.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

// readLine returns the next line without its line ending. It gives up when ctx is done, although the read itself
// carries on in the background until input arrives.
func (p *prompter) readLine(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	result := async.RunResult(func() (string, error) {
		return p.in.ReadString('\n')
	})
	select {
	case r := <-result:
		line, err := r.Parts()
		line = strings.TrimRight(line, "\r\n")
		if err != nil && !(err == io.EOF && line != "") {
			return "", err
		}
		return line, nil
	case <-ctx.Done():
		fmt.Fprintln(p.out)
		return "", ctx.Err()
	}
}

// URL keeps asking until a non-blank line is entered.
func (p *prompter) URL(ctx context.Context) (string, error) {
	for {
		line, err := p.readLine(ctx, "URL: ")
		if err != nil {
			return "", err
		}
		if line = strings.TrimSpace(line); line != "" {
			return line, nil
		}
	}
}

// Confirm asks a yes/no question, where an empty answer means yes.
func (p *prompter) Confirm(ctx context.Context, question string) (bool, error) {
	for {
		line, err := p.readLine(ctx, question+" [Y/n]: ")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "", "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
	}
}
