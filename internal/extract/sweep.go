package extract

import (
    "os"
    "path/filepath"
    "strings"
    "time"

    "github.com/rs/zerolog/log"
)

// SweepTemps removes temporary outputs in dir older than maxAge, left behind
// when the process died mid-write. It returns the number of files removed.
func SweepTemps(dir string, maxAge time.Duration) int {
    entries, err := os.ReadDir(dir)
    if err != nil { return 0 }
    prefix, suffix, _ := strings.Cut(TempPattern, "*")
    now := time.Now()
    removed := 0
    for _, e := range entries {
        if e.IsDir() { continue }
        name := e.Name()
        if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) { continue }
        info, err := e.Info()
        if err != nil { continue }
        if now.Sub(info.ModTime()) < maxAge { continue }
        p := filepath.Join(dir, name)
        if err := os.Remove(p); err != nil {
            log.Warn().Err(err).Str("path", p).Msg("could not remove stale temp output")
            continue
        }
        removed++
    }
    if removed > 0 { log.Info().Str("dir", dir).Int("removed", removed).Msg("swept stale temp outputs") }
    return removed
}
