package shared

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

var getRuntime = func() string { return runtime.GOOS }

// startCommand runs the platform opener without waiting for it.
var startCommand = func(cmd *exec.Cmd) error { return cmd.Start() }

// WebURL turns a Spotify URI such as spotify:playlist:abc into its open.spotify.com
// address. Other locations are returned unchanged.
func WebURL(location string) string {
	kind, id, ok := strings.Cut(strings.TrimPrefix(location, "spotify:"), ":")
	if !strings.HasPrefix(location, "spotify:") || !ok || id == "" {
		return location
	}
	return "https://open.spotify.com/" + kind + "/" + id
}

// OpenBrowser opens the default system browser to the web address of location.
//
// Supports macOS, Linux, and Windows platforms.
func OpenBrowser(location string) error {
	url := WebURL(location)
	if url == "" {
		return fmt.Errorf("%w: nothing to open", ErrInvalidInput)
	}

	var cmd *exec.Cmd
	rt := getRuntime()
	switch rt {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return fmt.Errorf("unsupported platform: %s", rt)
	}

	if err := startCommand(cmd); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
