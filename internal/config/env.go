package config

import (
    "os"
    "strconv"
    "strings"
    "time"

    "github.com/joho/godotenv"
)

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
    Level        string
    Pretty       bool
    File         string
    MaxSizeMB    int
    MaxBackups   int
    MaxAgeDays   int
    Compress     bool
}

// ThumbsConfig controls thumbnail rendering and the lazy grid loader.
type ThumbsConfig struct {
    Width     int
    BatchSize int
    Lookahead int
    Tick      time.Duration
}

// ExtractConfig controls the extraction routine.
type ExtractConfig struct {
    TempMaxAge time.Duration
}

// PrefsConfig locates the preference file.
type PrefsConfig struct {
    Dir string // empty means os.UserConfigDir()/pdfplanner
}

// WatchConfig controls reloading the source file when it changes on disk.
type WatchConfig struct {
    Enabled  bool
    Debounce time.Duration
}

// Config is the top-level configuration.
type Config struct {
    Logging LoggingConfig
    Thumbs  ThumbsConfig
    Extract ExtractConfig
    Prefs   PrefsConfig
    Watch   WatchConfig
}

// Load reads an optional .env file and then builds the config from the environment.
// Variables already present in the environment win over the file.
func Load(envFiles ...string) Config {
    if len(envFiles) == 0 { envFiles = []string{".env"} }
    for _, f := range envFiles {
        if _, err := os.Stat(f); err == nil {
            _ = godotenv.Load(f)
        }
    }
    return FromEnv()
}

// FromEnv loads configuration from environment with sensible defaults.
func FromEnv() Config {
    cfg := Config{}

    // Logging defaults
    cfg.Logging = LoggingConfig{
        Level:      getEnv("LOG_LEVEL", "info"),
        Pretty:     parseBool(getEnv("LOG_PRETTY", devDefaultPretty())),
        File:       getEnv("LOG_FILE", defaultLogFile()),
        MaxSizeMB:  parseInt(getEnv("LOG_MAX_SIZE_MB", "10"), 10),
        MaxBackups: parseInt(getEnv("LOG_MAX_BACKUPS", "3"), 3),
        MaxAgeDays: parseInt(getEnv("LOG_MAX_AGE_DAYS", "14"), 14),
        Compress:   parseBool(getEnv("LOG_COMPRESS", "true")),
    }

    cfg.Thumbs = ThumbsConfig{
        Width:     parseInt(getEnv("THUMB_WIDTH", "240"), 240),
        BatchSize: parseInt(getEnv("THUMB_BATCH_SIZE", "4"), 4),
        Lookahead: parseInt(getEnv("THUMB_LOOKAHEAD", "12"), 12),
        Tick:      parseDuration(getEnv("THUMB_TICK", "15ms"), 15*time.Millisecond),
    }
    if cfg.Thumbs.Width <= 0 { cfg.Thumbs.Width = 240 }
    if cfg.Thumbs.BatchSize <= 0 { cfg.Thumbs.BatchSize = 4 }
    if cfg.Thumbs.Lookahead < 0 { cfg.Thumbs.Lookahead = 0 }

    cfg.Extract = ExtractConfig{
        TempMaxAge: parseDuration(getEnv("EXTRACT_TEMP_MAX_AGE", "1h"), time.Hour),
    }

    cfg.Prefs = PrefsConfig{
        Dir: getEnv("PREFS_DIR", ""),
    }

    cfg.Watch = WatchConfig{
        Enabled:  parseBool(getEnv("WATCH_SOURCE", "true")),
        Debounce: parseDuration(getEnv("WATCH_DEBOUNCE", "300ms"), 300*time.Millisecond),
    }

    return cfg
}

// Helpers
func getEnv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func parseInt(s string, def int) int {
    if s == "" { return def }
    if n, err := strconv.Atoi(s); err == nil { return n }
    return def
}

func parseBool(s string) bool {
    v := strings.ToLower(strings.TrimSpace(s))
    return v == "1" || v == "true" || v == "yes" || v == "on"
}

func parseDuration(s string, def time.Duration) time.Duration {
    if s == "" { return def }
    if d, err := time.ParseDuration(s); err == nil { return d }
    return def
}

func devDefaultPretty() string {
    env := strings.ToLower(os.Getenv("ENVIRONMENT"))
    if env == "dev" || env == "development" || env == "local" { return "true" }
    return "false"
}

func defaultLogFile() string {
    dir, err := os.UserCacheDir()
    if err != nil || dir == "" { return "logs/pdfplanner.log" }
    return dir + string(os.PathSeparator) + "pdfplanner" + string(os.PathSeparator) + "pdfplanner.log"
}
