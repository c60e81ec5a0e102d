// Package render probes the terminal the help text is written to.
package render

import (
	"os"

	"golang.org/x/sys/unix"
)

// Terminal describes an interactive terminal.
type Terminal struct {
	fd int
}

// NewTerminal returns a Terminal for f, or an error when f is not one.
func NewTerminal(f *os.File) (*Terminal, error) {
	fd := int(f.Fd())
	if _, err := unix.IoctlGetTermios(fd, ioctlGetTermios); err != nil {
		return nil, err
	}
	return &Terminal{fd: fd}, nil
}

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	_, err := NewTerminal(f)
	return err == nil
}

// Size returns the terminal's columns and rows.
func (t *Terminal) Size() (cols, rows int, err error) {
	ws, err := unix.IoctlGetWinsize(t.fd, unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, err
	}
	return int(ws.Col), int(ws.Row), nil
}

// WrapWidth returns the wrap column for text written to f: the terminal
// width less a small margin, capped at limit. Non-terminals get limit.
func WrapWidth(f *os.File, limit int) int {
	t, err := NewTerminal(f)
	if err != nil {
		return limit
	}
	cols, _, err := t.Size()
	if err != nil || cols <= 8 {
		return limit
	}
	return min(cols-2, limit)
}
