package shared

import (
	"errors"
	"os/exec"
	"strings"
	"testing"
)

func TestWebURL(t *testing.T) {
	tests := []struct {
		location string
		want     string
	}{
		{location: "spotify:playlist:37i9dQ", want: "https://open.spotify.com/playlist/37i9dQ"},
		{location: "spotify:track:abc", want: "https://open.spotify.com/track/abc"},
		{location: "https://open.spotify.com/playlist/x", want: "https://open.spotify.com/playlist/x"},
		{location: "spotify:playlist:", want: "spotify:playlist:"},
		{location: "", want: ""},
	}

	for _, tt := range tests {
		if got := WebURL(tt.location); got != tt.want {
			t.Errorf("WebURL(%q) = %q, want %q", tt.location, got, tt.want)
		}
	}
}

func TestOpenBrowser(t *testing.T) {
	restore := func(rt func() string, start func(*exec.Cmd) error) {
		getRuntime, startCommand = rt, start
	}

	t.Run("Platform Commands", func(t *testing.T) {
		defer restore(getRuntime, startCommand)

		tests := []struct {
			platform string
			program  string
		}{
			{platform: "darwin", program: "open"},
			{platform: "linux", program: "xdg-open"},
			{platform: "windows", program: "cmd"},
		}

		for _, tt := range tests {
			t.Run(tt.platform, func(t *testing.T) {
				var started *exec.Cmd
				getRuntime = func() string { return tt.platform }
				startCommand = func(cmd *exec.Cmd) error { started = cmd; return nil }

				if err := OpenBrowser("spotify:playlist:abc"); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if started == nil || started.Args[0] != tt.program {
					t.Fatalf("expected %s to be started, got %v", tt.program, started)
				}
				if last := started.Args[len(started.Args)-1]; last != "https://open.spotify.com/playlist/abc" {
					t.Errorf("expected the web URL, got %q", last)
				}
			})
		}
	})

	t.Run("Unsupported Platform", func(t *testing.T) {
		defer restore(getRuntime, startCommand)
		getRuntime = func() string { return "plan9" }

		if err := OpenBrowser("https://example.com"); err == nil || !strings.Contains(err.Error(), "unsupported platform") {
			t.Errorf("expected unsupported platform error, got %v", err)
		}
	})

	t.Run("Start Failure", func(t *testing.T) {
		defer restore(getRuntime, startCommand)
		getRuntime = func() string { return "linux" }
		startCommand = func(cmd *exec.Cmd) error { return errors.New("no display") }

		if err := OpenBrowser("https://example.com"); err == nil || !strings.Contains(err.Error(), "failed to open browser") {
			t.Errorf("expected start error, got %v", err)
		}
	})

	t.Run("Empty Location", func(t *testing.T) {
		if err := OpenBrowser(""); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}
