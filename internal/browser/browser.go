// Package browser hands URLs and commands to the desktop: the default
// browser for issue composers and login pages, the clipboard for install
// and verify commands.
package browser

import (
	"errors"
	"os/exec"
	"runtime"

	"github.com/atotto/clipboard"

	"github.com/dreamswag/ci5dev/internal/logger"
)

var ErrNoOpener = errors.New("no browser opener found")

// Opener opens URLs. The zero value uses the platform opener.
type Opener struct {
	lookPath func(string) (string, error)
	start    func(name string, args ...string) error
}

func startCommand(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Command picks the program and arguments used to open url.
func (o *Opener) Command(url string) (string, []string, error) {
	lookPath := o.lookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	exists := func(name string) bool {
		_, err := lookPath(name)
		return err == nil
	}

	switch {
	case runtime.GOOS == "windows":
		return "cmd", []string{"/c", "start", "", url}, nil
	case exists("xdg-open"):
		return "xdg-open", []string{url}, nil
	case exists("open"):
		return "open", []string{url}, nil
	case exists("wslview"):
		return "wslview", []string{url}, nil
	}
	return "", nil, ErrNoOpener
}

// Open starts the opener without waiting for it.
func (o *Opener) Open(url string) error {
	name, args, err := o.Command(url)
	if err != nil {
		logger.LogError("OPEN_URL", url, err)
		return err
	}

	start := o.start
	if start == nil {
		start = startCommand
	}
	if err := start(name, args...); err != nil {
		logger.LogError("OPEN_URL", url, err)
		return err
	}
	logger.Log("Opened %s with %s", url, name)
	return nil
}

// Copy writes text to the system clipboard.
func Copy(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		logger.LogError("CLIPBOARD", "", err)
		return err
	}
	return nil
}

// ClipboardAvailable reports whether Copy can work on this system.
func ClipboardAvailable() bool {
	return !clipboard.Unsupported
}
