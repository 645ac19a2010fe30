// Package fileutil has the small filesystem helpers around output files.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
)

// DefaultOutputSubdir is created under the user's Documents folder.
const DefaultOutputSubdir = "Extracted PDFs"

// EnsureUnique returns path if nothing exists there, otherwise the first free
// "name (n).ext" next to it.
func EnsureUnique(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}
	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	name := strings.TrimSuffix(filepath.Base(path), ext)
	for n := 1; ; n++ {
		p := filepath.Join(dir, fmt.Sprintf("%s (%d)%s", name, n, ext))
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return p
		}
	}
}

// TruncatePath shortens path for display to at most max runes, keeping the
// file name visible.
func TruncatePath(path string, max int) string {
	r := []rune(path)
	if len(r) <= max {
		return path
	}
	name := []rune(filepath.Base(path))
	if len(name) >= max-3 {
		return "..." + string(name[len(name)-(max-3):])
	}
	remaining := max - len(name) - 4
	if remaining > 0 {
		dir := []rune(filepath.Dir(path))
		if remaining > len(dir) {
			remaining = len(dir)
		}
		return "..." + string(dir[len(dir)-remaining:]) + string(filepath.Separator) + string(name)
	}
	return "..." + string(name)
}

// SuggestName proposes an output file name (without extension) for the
// 0-based pages of source.
func SuggestName(source string, pages []int) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	if source == "" {
		base = "extracted"
	}
	if len(pages) == 0 {
		return base + "_extract"
	}
	first, last := pages[0]+1, pages[len(pages)-1]+1
	switch {
	case len(pages) == 1:
		return fmt.Sprintf("%s_page_%d", base, first)
	case last-first+1 == len(pages):
		return fmt.Sprintf("%s_pages_%d-%d", base, first, last)
	default:
		return base + "_selection"
	}
}

// FormatBytes renders a byte count for display.
func FormatBytes(n int64) string {
	if n < 0 {
		return "Unknown"
	}
	return humanize.IBytes(uint64(n))
}

// FileSize returns the formatted size of the file at path, or "Unknown".
func FileSize(path string) string {
	st, err := os.Stat(path)
	if err != nil {
		return "Unknown"
	}
	return FormatBytes(st.Size())
}

// Ago renders t relative to now, e.g. "3 days ago".
func Ago(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.Time(t)
}

// DefaultOutputDir returns ~/Documents/<subdir>, creating it when missing. It
// falls back to ~/Documents and then the home directory.
func DefaultOutputDir(subdir string) string {
	if subdir == "" {
		subdir = DefaultOutputSubdir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		wd, _ := os.Getwd()
		return wd
	}
	docs := filepath.Join(home, "Documents")
	out := filepath.Join(docs, subdir)
	err = os.MkdirAll(out, 0o755)
	if err == nil {
		return out
	}
	log.Warn().Err(err).Str("path", out).Msg("could not create default output directory")
	if st, err := os.Stat(docs); err == nil && st.IsDir() {
		return docs
	}
	return home
}
