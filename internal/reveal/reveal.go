// Package reveal opens folders and files in the desktop file browser.
package reveal

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog/log"
)

// Revealer launches the platform file browser. Launches are fire-and-forget:
// the browser process is started and not waited for.
type Revealer struct {
	goos  string
	start func(name string, args ...string) error
}

// New returns a Revealer for the running platform.
func New() *Revealer {
	return &Revealer{goos: runtime.GOOS, start: startDetached}
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// Command returns the program and arguments that show dir, or select file
// when file is true.
func (r *Revealer) Command(path string, file bool) (string, []string) {
	switch r.goos {
	case "windows":
		if file {
			return "explorer", []string{"/select,", path}
		}
		return "explorer", []string{path}
	case "darwin":
		if file {
			return "open", []string{"-R", path}
		}
		return "open", []string{path}
	default:
		if file {
			return "xdg-open", []string{filepath.Dir(path)}
		}
		return "xdg-open", []string{path}
	}
}

// Dir opens dir in the file browser.
func (r *Revealer) Dir(dir string) error {
	return r.reveal(dir, false)
}

// File opens the folder containing path with path selected where the
// platform supports it.
func (r *Revealer) File(path string) error {
	return r.reveal(path, true)
}

func (r *Revealer) reveal(path string, file bool) error {
	st, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("reveal %s: %w", path, err)
	}
	if file && st.IsDir() {
		file = false
	}
	name, args := r.Command(path, file)
	if err := r.start(name, args...); err != nil {
		log.Warn().Err(err).Str("path", path).Str("cmd", name).Msg("could not open file browser")
		return fmt.Errorf("reveal %s: %w", path, err)
	}
	log.Debug().Str("path", path).Str("cmd", name).Msg("opened file browser")
	return nil
}
