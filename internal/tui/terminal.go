package tui

import (
	"os"

	"github.com/mattn/go-isatty"
)

// Interactive reports whether f is attached to a terminal, so a prompt can
// be shown on it.
func Interactive(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
