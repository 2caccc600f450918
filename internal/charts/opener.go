package charts

import (
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Opener hands a rendered file to a viewer
type Opener interface {
	Open(path string) error
}

// NoopOpener leaves rendered files where they are
type NoopOpener struct{}

// Open does nothing
func (NoopOpener) Open(string) error { return nil }

// viewerMethod is one way of launching the system viewer
type viewerMethod struct {
	name string
	cmd  string
	args []string
}

// BrowserOpener launches the platform viewer for a file without waiting for it
type BrowserOpener struct {
	logger *slog.Logger
	// start launches the command; replaced in tests.
	start func(name string, args ...string) error
}

// NewBrowserOpener creates an opener using the platform commands
func NewBrowserOpener(logger *slog.Logger) *BrowserOpener {
	if logger == nil {
		logger = slog.Default()
	}
	return &BrowserOpener{logger: logger, start: startDetached}
}

// Open tries each platform method in turn until one starts
func (o *BrowserOpener) Open(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	url := "file://" + filepath.ToSlash(abs)

	var lastErr error
	for _, method := range viewerMethods(runtime.GOOS, url) {
		if err := o.start(method.cmd, method.args...); err != nil {
			lastErr = err
			o.logger.Debug("Viewer method failed",
				slog.String("method", method.name),
				slog.String("error", err.Error()))
			continue
		}
		o.logger.Info("Viewer opened",
			slog.String("method", method.name),
			slog.String("url", url))
		return nil
	}
	return fmt.Errorf("failed to open viewer for %s: %w", path, lastErr)
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}

// viewerMethods returns the commands to try for goos, in order
func viewerMethods(goos, url string) []viewerMethod {
	switch goos {
	case "windows":
		return []viewerMethod{
			{name: "start_command", cmd: "cmd", args: []string{"/c", "start", "", url}},
			{name: "rundll32", cmd: "rundll32", args: []string{"url.dll,FileProtocolHandler", url}},
			{name: "explorer", cmd: "explorer", args: []string{url}},
		}
	case "darwin":
		return []viewerMethod{
			{name: "open", cmd: "open", args: []string{url}},
		}
	default:
		return []viewerMethod{
			{name: "xdg-open", cmd: "xdg-open", args: []string{url}},
			{name: "sensible-browser", cmd: "sensible-browser", args: []string{url}},
			{name: "firefox", cmd: "firefox", args: []string{url}},
		}
	}
}
