// Package prompt reads operator input for the interactive wallet.
package prompt

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/manifoldco/promptui"
	"golang.org/x/term"
)

// ErrInterrupt is returned when the operator presses Ctrl-C or closes input
var ErrInterrupt = errors.New("interrupted")

// Prompter is the operator dialogue used by the handler
type Prompter interface {
	// Select shows items and returns the chosen index
	Select(label string, items []string) (int, error)

	// Input reads one line; validate, when set, is re-run until it accepts the input
	Input(label string, validate func(string) error) (string, error)

	// Password reads a secret with masked echo (caller should zero it after use)
	Password(label string) ([]byte, error)

	// Pause waits for Enter
	Pause() error

	// Clear clears the screen
	Clear()
}

// Terminal implements Prompter with promptui on the process terminal
type Terminal struct {
	in  *os.File
	out *os.File

	// promptui streams; nil uses the process terminal
	stdin  io.ReadCloser
	stdout io.WriteCloser
}

// NewTerminal creates a Terminal on the process stdin and stdout
func NewTerminal() *Terminal {
	return &Terminal{in: os.Stdin, out: os.Stdout}
}

// IsInteractive reports whether stdin is a terminal
func (t *Terminal) IsInteractive() bool {
	return term.IsTerminal(int(t.in.Fd()))
}

// Select shows a list of items
func (t *Terminal) Select(label string, items []string) (int, error) {
	s := promptui.Select{
		Label:    label,
		Items:    items,
		Size:     10,
		HideHelp: true,
		Stdin:    t.stdin,
		Stdout:   t.stdout,
	}
	idx, _, err := s.Run()
	if err != nil {
		return -1, mapErr(err)
	}
	return idx, nil
}

// Input reads a line of text
func (t *Terminal) Input(label string, validate func(string) error) (string, error) {
	p := promptui.Prompt{
		Label:  label,
		Stdin:  t.stdin,
		Stdout: t.stdout,
	}
	if validate != nil {
		p.Validate = promptui.ValidateFunc(validate)
	}
	value, err := p.Run()
	if err != nil {
		return "", mapErr(err)
	}
	return value, nil
}

// Password reads a masked password.
// The terminal stays in raw mode while reading, so Ctrl-C is returned as
// ErrInterrupt instead of raising SIGINT.
func (t *Terminal) Password(label string) ([]byte, error) {
	p := promptui.Prompt{
		Label:  label,
		Mask:   '*',
		Stdin:  t.stdin,
		Stdout: t.stdout,
	}
	value, err := p.Run()
	if err != nil {
		return nil, mapErr(err)
	}
	return []byte(value), nil
}

// Pause waits until the operator presses Enter
func (t *Terminal) Pause() error {
	p := promptui.Prompt{
		Label:       "Press Enter to continue...",
		HideEntered: true,
		Stdin:       t.stdin,
		Stdout:      t.stdout,
		Templates: &promptui.PromptTemplates{
			Prompt:  "{{ . }} ",
			Valid:   "{{ . }} ",
			Invalid: "{{ . }} ",
			Success: "",
		},
	}
	_, err := p.Run()
	return mapErr(err)
}

// Clear clears the screen
func (t *Terminal) Clear() {
	clearScreen(t.out)
}

func clearScreen(w io.Writer) {
	fmt.Fprint(w, "\033[H\033[2J")
}

// mapErr turns promptui's interrupt and EOF into ErrInterrupt
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, promptui.ErrInterrupt), errors.Is(err, promptui.ErrEOF), errors.Is(err, io.EOF):
		return ErrInterrupt
	default:
		return fmt.Errorf("prompt failed: %w", err)
	}
}
