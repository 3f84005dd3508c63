// Package browser hands URLs to the system's default browser.
package browser

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
)

var ErrUnsupported = errors.New("no known browser launcher for this platform")

// Command returns the launcher command for url on goos.
func Command(goos, url string) (*exec.Cmd, error) {
	switch goos {
	case "darwin":
		return exec.Command("open", url), nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return exec.Command("xdg-open", url), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, goos)
}

// Open starts the launcher without waiting for the browser.
func Open(url string) error {
	cmd, err := Command(runtime.GOOS, url)
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	// Reap the launcher so it does not linger as a zombie.
	go func() { _ = cmd.Wait() }()
	return nil
}
