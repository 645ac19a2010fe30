package logger

import (
    "fmt"
    "io"
    "os"
    "path/filepath"
    "time"

    "github.com/rs/zerolog"
    "github.com/rs/zerolog/log"
    lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Options defines logger initialization parameters.
type Options struct {
    Level      string
    Pretty     bool
    File       string
    MaxSizeMB  int
    MaxBackups int
    MaxAgeDays int
    Compress   bool

    // Console mirrors log lines to stderr. Off while the terminal UI owns the screen.
    Console bool
    // Extra writers, mainly for tests.
    Writers []io.Writer
}

var rotor *lumberjack.Logger

// Init sets up global logger: file rotation plus optional console output.
func Init(opts Options) error {
    // Ensure log directory exists
    if opts.File != "" {
        if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
            return fmt.Errorf("create logs dir: %w", err)
        }
    }

    // Build writers
    var writers []io.Writer

    if opts.File != "" {
        rotor = &lumberjack.Logger{
            Filename:   opts.File,
            MaxSize:    opts.MaxSizeMB,
            MaxBackups: opts.MaxBackups,
            MaxAge:     opts.MaxAgeDays,
            Compress:   opts.Compress,
        }
        writers = append(writers, rotor)
    }

    if opts.Console {
        if opts.Pretty {
            writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
        } else {
            writers = append(writers, os.Stderr)
        }
    }

    writers = append(writers, opts.Writers...)
    if len(writers) == 0 {
        writers = append(writers, io.Discard)
    }

    out := io.MultiWriter(writers...)

    // Global zerolog config
    zerolog.TimeFieldFormat = time.RFC3339
    lvl, err := zerolog.ParseLevel(opts.Level)
    if err != nil || opts.Level == "" {
        lvl = zerolog.InfoLevel
    }

    log.Logger = zerolog.New(out).Level(lvl).With().Timestamp().Str("app", "pdfplanner").Logger()
    return nil
}

// Close flushes and closes the rotating file, if any. Later log calls are dropped.
func Close() {
    log.Logger = zerolog.Nop()
    if rotor != nil {
        _ = rotor.Close()
        rotor = nil
    }
}
