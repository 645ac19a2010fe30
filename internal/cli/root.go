// Package cli wires the command line: the root command opens the terminal UI,
// and subcommands extract, inspect and thumbnail PDFs without it.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/local/pdfplanner/internal/apperr"
	"github.com/local/pdfplanner/internal/config"
	"github.com/local/pdfplanner/internal/logger"
	"github.com/local/pdfplanner/internal/prefs"
)

// version is set at build time with -ldflags "-X".
var version = "dev"

// options are shared by all commands and filled before any of them runs.
type options struct {
	envFile  string
	logLevel string

	cfg   config.Config
	store *prefs.Store
}

func (o *options) setup() error {
	o.cfg = config.Load(o.envFile)
	if o.logLevel != "" {
		o.cfg.Logging.Level = o.logLevel
	}
	err := logger.Init(logger.Options{
		Level:      o.cfg.Logging.Level,
		Pretty:     o.cfg.Logging.Pretty,
		File:       o.cfg.Logging.File,
		MaxSizeMB:  o.cfg.Logging.MaxSizeMB,
		MaxBackups: o.cfg.Logging.MaxBackups,
		MaxAgeDays: o.cfg.Logging.MaxAgeDays,
		Compress:   o.cfg.Logging.Compress,
	})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	return nil
}

// prefs opens the preference store on first use.
func (o *options) prefs() *prefs.Store {
	if o.store == nil {
		o.store = prefs.Open(o.cfg.Prefs.Dir)
	}
	return o.store
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	o := &options{}

	cmd := &cobra.Command{
		Use:   "pdfplanner [file.pdf]",
		Short: "Pick, rotate and extract pages of a PDF",
		Long: `pdfplanner shows the pages of a PDF as a grid of thumbnails. Select
pages, rotate them, and save the selection as a new PDF.

Controls:
  arrows/hjkl  - Move
  space        - Select page
  r / R        - Rotate right / left
  enter        - View page (+/- zoom)
  x            - Extract selection
  f            - Open file
  ?            - Help
  q            - Quit`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return o.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, o, args)
		},
	}

	cmd.PersistentFlags().StringVar(&o.envFile, "env", ".env", "environment file to load")
	cmd.PersistentFlags().StringVar(&o.logLevel, "log-level", "", "log level, overrides LOG_LEVEL")

	cmd.AddCommand(
		newExtractCmd(o),
		newInfoCmd(o),
		newThumbsCmd(o),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	err := execute(NewRootCmd())
	if err == nil {
		return 0
	}
	msg := apperr.UserMessage(err)
	if msg == "" {
		msg = err.Error()
	}
	fmt.Fprintln(os.Stderr, "Error:", msg)
	return exitCode(err)
}

// execute runs cmd and closes the log file whether or not the command failed.
func execute(cmd *cobra.Command) error {
	defer logger.Close()
	return cmd.Execute()
}

// exitCode maps error kinds to exit codes: 2 for bad input, 3 for unreadable
// documents, 130 for cancellation, 1 otherwise.
func exitCode(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindEmpty:
		return 2
	case apperr.KindDocument:
		return 3
	case apperr.KindCancelled:
		return 130
	}
	if errors.Is(err, os.ErrNotExist) {
		return 3
	}
	return 1
}
