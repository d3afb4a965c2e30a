package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/matheuskafuri/newsdesk/internal/tui"
)

var errNoArgument = errors.New("missing argument")

// argOrAsk joins args into one value. With no args and a terminal on stdin
// it asks interactively; otherwise it fails with a usage error.
func argOrAsk(args []string, label, placeholder, usage string) (string, error) {
	if v := strings.TrimSpace(strings.Join(args, " ")); v != "" {
		return v, nil
	}
	if !tui.Interactive(os.Stdin) {
		return "", fmt.Errorf("%w: %s", errNoArgument, usage)
	}
	return tui.Ask(label, placeholder)
}
