package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func newTestPrompter(input string) (*Prompter, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &Prompter{
		In:  strings.NewReader(input),
		Out: out,
	}, out
}

func TestAsk_WithInput(t *testing.T) {
	p, _ := newTestPrompter("hello\n")
	got := p.Ask("Name", "default")
	if got != "hello" {
		t.Errorf("Ask() = %q, want %q", got, "hello")
	}
}

func TestAsk_EmptyUsesDefault(t *testing.T) {
	p, _ := newTestPrompter("   \n")
	got := p.Ask("Name", "fallback")
	if got != "fallback" {
		t.Errorf("Ask() = %q, want %q", got, "fallback")
	}
}

func TestAskValid_RetriesUntilAccepted(t *testing.T) {
	p, out := newTestPrompter("bad\ngood\n")
	got, err := p.AskValid("Word", "", func(s string) error {
		if s != "good" {
			return errors.New("Not good.")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("AskValid: %v", err)
	}
	if got != "good" {
		t.Errorf("AskValid() = %q, want %q", got, "good")
	}
	if !strings.Contains(out.String(), "Not good.") {
		t.Errorf("validation message not shown: %q", out.String())
	}
}

func TestAskValid_EOF(t *testing.T) {
	p, _ := newTestPrompter("bad\n")
	_, err := p.AskValid("Word", "", func(s string) error {
		return errors.New("never")
	})
	if !errors.Is(err, ErrNoInput) {
		t.Errorf("expected ErrNoInput, got %v", err)
	}
}

func TestAskPassword_Fallback(t *testing.T) {
	// Not a real terminal, so it falls back to plain read.
	p, _ := newTestPrompter("secret123\n")
	got := p.AskPassword("Password")
	if got != "secret123" {
		t.Errorf("AskPassword() = %q, want %q", got, "secret123")
	}
}

func TestAskInt(t *testing.T) {
	p, _ := newTestPrompter("x\n5\n")
	got, err := p.AskInt("Count", 1)
	if err != nil || got != 5 {
		t.Errorf("AskInt() = %d, %v; want 5", got, err)
	}

	p, _ = newTestPrompter("\n")
	got, err = p.AskInt("Count", 3)
	if err != nil || got != 3 {
		t.Errorf("AskInt() default = %d, %v; want 3", got, err)
	}
}

func TestChoose(t *testing.T) {
	options := []string{"alpha", "beta", "gamma"}

	p, _ := newTestPrompter("2\n")
	if got, err := p.Choose("Pick one", options, 0); err != nil || got != 1 {
		t.Errorf("Choose() = %d, %v; want 1", got, err)
	}

	p, _ = newTestPrompter("\n")
	if got, err := p.Choose("Pick one", options, 2); err != nil || got != 2 {
		t.Errorf("Choose() default = %d, %v; want 2", got, err)
	}

	p, out := newTestPrompter("9\n1\n")
	if got, err := p.Choose("Pick one", options, 0); err != nil || got != 0 {
		t.Errorf("Choose() retry = %d, %v; want 0", got, err)
	}
	if !strings.Contains(out.String(), "between 1 and 3") {
		t.Errorf("range hint not shown: %q", out.String())
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input      string
		defaultYes bool
		want       bool
	}{
		{"y\n", false, true},
		{"yes\n", false, true},
		{"n\n", true, false},
		{"\n", true, true},
		{"\n", false, false},
	}
	for _, tt := range tests {
		p, _ := newTestPrompter(tt.input)
		if got := p.Confirm("Continue?", tt.defaultYes); got != tt.want {
			t.Errorf("Confirm(%q, %v) = %v, want %v", tt.input, tt.defaultYes, got, tt.want)
		}
	}
}
