// Package prefs persists user preferences (recent files, last directories,
// theme) in a TOML file. Preference problems are never fatal: a missing or
// unreadable file yields defaults and failed saves are only logged.
package prefs

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"

	"github.com/local/pdfplanner/internal/fileutil"
	"github.com/local/pdfplanner/internal/validate"
)

const (
	FileName       = "prefs.toml"
	MaxRecentFiles = 5

	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Data is the on-disk layout.
type Data struct {
	LastInputDir        string   `toml:"last_input_dir"`
	LastOutputDir       string   `toml:"last_output_dir"`
	RecentFiles         []string `toml:"recent_files"`
	Theme               string   `toml:"theme"`
	DefaultOutputSubdir string   `toml:"default_output_subdir"`
}

func defaults() Data {
	return Data{Theme: ThemeDark, DefaultOutputSubdir: fileutil.DefaultOutputSubdir}
}

// Store is a TOML-backed preference store.
type Store struct {
	mu       sync.RWMutex
	filePath string
	data     Data
}

// DefaultDir returns <UserConfigDir>/pdfplanner.
func DefaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".pdfplanner")
	}
	return filepath.Join(dir, "pdfplanner")
}

// Open loads preferences from dir (DefaultDir when empty).
func Open(dir string) *Store {
	if dir == "" {
		dir = DefaultDir()
	}
	s := &Store{filePath: filepath.Join(dir, FileName), data: defaults()}
	if err := s.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("path", s.filePath).Msg("preferences unreadable, using defaults")
	}
	return s
}

// Path returns the preference file path.
func (s *Store) Path() string { return s.filePath }

// Load reads the file, replacing in-memory values. On error the defaults stay.
func (s *Store) Load() error {
	raw, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}
	d := defaults()
	if err := toml.Unmarshal(raw, &d); err != nil {
		return err
	}
	if d.Theme != ThemeDark && d.Theme != ThemeLight {
		d.Theme = ThemeDark
	}
	if strings.TrimSpace(d.DefaultOutputSubdir) == "" {
		d.DefaultOutputSubdir = fileutil.DefaultOutputSubdir
	}

	s.mu.Lock()
	s.data = d
	s.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the current values.
func (s *Store) Snapshot() Data {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d := s.data
	d.RecentFiles = append([]string(nil), s.data.RecentFiles...)
	return d
}

// save writes the file; the caller holds the lock.
func (s *Store) save() {
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0o700); err != nil {
		log.Warn().Err(err).Str("path", s.filePath).Msg("could not create preferences directory")
		return
	}
	raw, err := toml.Marshal(s.data)
	if err != nil {
		log.Warn().Err(err).Msg("could not encode preferences")
		return
	}
	if err := os.WriteFile(s.filePath, raw, 0o600); err != nil {
		log.Warn().Err(err).Str("path", s.filePath).Msg("could not save preferences")
	}
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// LastInputDir returns the last directory a PDF was opened from, or the home
// directory when unset or gone.
func (s *Store) LastInputDir() string {
	s.mu.RLock()
	p := s.data.LastInputDir
	s.mu.RUnlock()
	if p != "" && exists(p) {
		return p
	}
	home, _ := os.UserHomeDir()
	return home
}

// SetLastInputDir records p, or the directory of p when it is a file.
func (s *Store) SetLastInputDir(p string) {
	st, err := os.Stat(p)
	if p == "" || err != nil {
		return
	}
	if !st.IsDir() {
		p = filepath.Dir(p)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.LastInputDir = p
	s.save()
}

// LastOutputDir returns the last output directory, or DefaultOutputDir.
func (s *Store) LastOutputDir() string {
	s.mu.RLock()
	p := s.data.LastOutputDir
	s.mu.RUnlock()
	if p != "" && exists(p) {
		return p
	}
	return s.DefaultOutputDir()
}

// SetLastOutputDir records p.
func (s *Store) SetLastOutputDir(p string) {
	if p == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.LastOutputDir = p
	s.save()
}

// DefaultOutputDir returns ~/Documents/<default_output_subdir>.
func (s *Store) DefaultOutputDir() string {
	s.mu.RLock()
	sub := s.data.DefaultOutputSubdir
	s.mu.RUnlock()
	return fileutil.DefaultOutputDir(sub)
}

// OutputPath joins filename (".pdf" appended when missing) to LastOutputDir.
func (s *Store) OutputPath(filename string) string {
	return filepath.Join(s.LastOutputDir(), validate.EnsurePDFExt(filename))
}

// RecentFiles returns recently opened files that still exist, most recent first.
func (s *Store) RecentFiles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.data.RecentFiles))
	for _, f := range s.data.RecentFiles {
		if exists(f) {
			out = append(out, f)
		}
	}
	return out
}

// AddRecentFile moves p to the front of the recent list.
func (s *Store) AddRecentFile(p string) {
	if p == "" || !exists(p) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	recent := []string{p}
	for _, f := range s.data.RecentFiles {
		if f != p {
			recent = append(recent, f)
		}
	}
	if len(recent) > MaxRecentFiles {
		recent = recent[:MaxRecentFiles]
	}
	s.data.RecentFiles = recent
	s.save()
}

// ClearRecentFiles empties the recent list.
func (s *Store) ClearRecentFiles() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.RecentFiles = nil
	s.save()
}

// Theme returns "dark" or "light".
func (s *Store) Theme() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Theme
}

// SetTheme stores theme if it is "dark" or "light".
func (s *Store) SetTheme(theme string) {
	if theme != ThemeDark && theme != ThemeLight {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Theme = theme
	s.save()
}
