// Package cli provides interactive terminal prompt helpers shared by the
// server setup wizard and the client forms.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// ErrNoInput is returned when the input stream ends before a valid answer.
var ErrNoInput = errors.New("no more input")

// Prompter handles interactive terminal prompts.
type Prompter struct {
	In      io.Reader
	Out     io.Writer
	scanner *bufio.Scanner
	eof     bool
}

// DefaultPrompter returns a Prompter connected to stdin/stdout.
func DefaultPrompter() *Prompter {
	return &Prompter{In: os.Stdin, Out: os.Stdout}
}

// Printf writes to the prompter output.
func (p *Prompter) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.Out, format, args...)
}

func (p *Prompter) readLine() string {
	if p.scanner == nil {
		p.scanner = bufio.NewScanner(p.In)
	}
	if p.scanner.Scan() {
		return strings.TrimSpace(p.scanner.Text())
	}
	p.eof = true
	return ""
}

// Ask prints a question with a default value and reads one line.
// Returns the default if the user presses Enter without typing.
func (p *Prompter) Ask(question, defaultVal string) string {
	if defaultVal != "" {
		p.Printf("%s [%s]: ", question, defaultVal)
	} else {
		p.Printf("%s: ", question)
	}
	line := p.readLine()
	if line != "" {
		return line
	}
	return defaultVal
}

// AskValid repeats Ask until check accepts the answer. The checker's error
// message is shown before asking again. Returns ErrNoInput if the input ends.
func (p *Prompter) AskValid(question, defaultVal string, check func(string) error) (string, error) {
	for {
		ans := p.Ask(question, defaultVal)
		err := check(ans)
		if err == nil {
			return ans, nil
		}
		if p.eof {
			return "", ErrNoInput
		}
		p.Printf("  %s\n", err)
	}
}

// AskPassword reads a line without echoing. Falls back to plain read if
// stdin is not a terminal (e.g. during tests or piped input).
func (p *Prompter) AskPassword(question string) string {
	p.Printf("%s: ", question)

	if f, ok := p.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		p.Printf("\n") // newline after hidden input
		if err == nil {
			return strings.TrimSpace(string(b))
		}
	}

	return p.readLine()
}

// AskInt asks for a non-negative integer with a default value.
func (p *Prompter) AskInt(question string, defaultVal int) (int, error) {
	ans, err := p.AskValid(question, strconv.Itoa(defaultVal), func(s string) error {
		if n, err := strconv.Atoi(s); err != nil || n < 0 {
			return errors.New("Please enter a non-negative number.")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	n, _ := strconv.Atoi(ans)
	return n, nil
}

// Choose presents a numbered list of options and returns the index of the
// selected one.
func (p *Prompter) Choose(question string, options []string, defaultIdx int) (int, error) {
	p.Printf("%s\n", question)
	for i, opt := range options {
		marker := "  "
		if i == defaultIdx {
			marker = "> "
		}
		p.Printf("%s%d) %s\n", marker, i+1, opt)
	}

	ans, err := p.AskValid("Choice", strconv.Itoa(defaultIdx+1), func(s string) error {
		if n, err := strconv.Atoi(s); err != nil || n < 1 || n > len(options) {
			return fmt.Errorf("Please enter a number between 1 and %d.", len(options))
		}
		return nil
	})
	if err != nil {
		return -1, err
	}
	n, _ := strconv.Atoi(ans)
	return n - 1, nil
}

// Confirm asks a yes/no question.
func (p *Prompter) Confirm(question string, defaultYes bool) bool {
	hint := "y/N"
	if defaultYes {
		hint = "Y/n"
	}
	ans := p.Ask(fmt.Sprintf("%s [%s]", question, hint), "")
	if ans == "" {
		return defaultYes
	}
	return strings.HasPrefix(strings.ToLower(ans), "y")
}
