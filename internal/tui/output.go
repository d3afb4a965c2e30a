package tui

import (
	"fmt"
	"io"
)

// Header prints a bold title line.
func Header(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf(format, args...)))
}

// Step prints a progress line.
func Step(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, dimStyle.Render("· ")+labelStyle.Render(fmt.Sprintf(format, args...)))
}

// Success prints a completion line.
func Success(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, okStyle.Render("✓ ")+fmt.Sprintf(format, args...))
}

// Warn prints a non-fatal problem.
func Warn(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, warnStyle.Render("! "+fmt.Sprintf(format, args...)))
}

// Error prints a fatal problem.
func Error(w io.Writer, err error) {
	fmt.Fprintln(w, errStyle.Render("error: ")+err.Error())
}
