package browser

import (
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Target validates what Open would launch. http and https URLs pass
// through; anything else must be an existing local file and is returned as
// an absolute path.
func Target(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("nothing to open")
	}
	if u, err := url.Parse(raw); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		if u.Scheme != "http" && u.Scheme != "https" {
			return "", fmt.Errorf("refusing to open URL with scheme %q (only http/https allowed)", u.Scheme)
		}
		return raw, nil
	}
	abs, err := filepath.Abs(raw)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", raw, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", raw, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", raw)
	}
	return abs, nil
}

// Open launches the OS default handler for a URL or a generated file.
func Open(raw string) error {
	target, err := Target(raw)
	if err != nil {
		return err
	}

	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", target).Start()
	case "windows":
		// Use rundll32 instead of cmd /c start to avoid shell interpretation
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", target).Start()
	default:
		return exec.Command("xdg-open", target).Start()
	}
}
