package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/local/pdfplanner/internal/extract"
	"github.com/local/pdfplanner/internal/fileutil"
	"github.com/local/pdfplanner/internal/pdfdoc"
	"github.com/local/pdfplanner/internal/selection"
	"github.com/local/pdfplanner/internal/validate"
)

type extractFlags struct {
	pages  string
	rotate string
	out    string
	force  bool
}

func newExtractCmd(o *options) *cobra.Command {
	f := &extractFlags{}
	cmd := &cobra.Command{
		Use:   "extract <file.pdf>",
		Short: "Extract pages into a new PDF",
		Long: `Copy the chosen pages of a PDF, in ascending order, into a new PDF.

Pages are 1-based: "1-3,7,10-" selects pages 1 to 3, 7, and 10 to the end.
Rotations are given per page as page=degrees, e.g. "2=90,5=-90"; they are
added to the page's own rotation. Without --out the file is written to the
last output folder with a name derived from the source. An existing file is
never replaced unless --force is given; a free "name (n).pdf" is used instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, o, f, args[0])
		},
	}
	cmd.Flags().StringVarP(&f.pages, "pages", "p", "", "pages to extract (default all)")
	cmd.Flags().StringVarP(&f.rotate, "rotate", "r", "", "rotations as page=degrees, comma separated")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "output file")
	cmd.Flags().BoolVarP(&f.force, "force", "f", false, "overwrite an existing output file")
	return cmd
}

// buildSelection turns the page and rotation flags into a selection over total pages.
func buildSelection(pages, rotate string, total int) (*selection.State, error) {
	sel := selection.New(total)
	if pages == "" {
		sel.SelectAll()
	} else {
		idx, err := validate.ParsePageSpec(pages, total)
		if err != nil {
			return nil, err
		}
		for _, p := range idx {
			if err := sel.SetSelected(p, true); err != nil {
				return nil, err
			}
		}
	}

	rots, err := validate.ParseRotations(rotate, total)
	if err != nil {
		return nil, err
	}
	for p, deg := range rots {
		if _, err := sel.SetRotation(p, deg); err != nil {
			return nil, err
		}
	}
	return sel, nil
}

func runExtract(cmd *cobra.Command, o *options, f *extractFlags, src string) error {
	if err := validate.PDFFile(src); err != nil {
		return err
	}
	doc, err := pdfdoc.Open(src)
	if err != nil {
		return err
	}

	sel, err := buildSelection(f.pages, f.rotate, doc.PageCount)
	if err != nil {
		return err
	}

	out := f.out
	if out == "" {
		out = o.prefs().OutputPath(fileutil.SuggestName(src, sel.Selected()))
	} else {
		out = validate.EnsurePDFExt(out)
	}
	if !f.force {
		out = fileutil.EnsureUnique(out)
	}

	stderr := cmd.ErrOrStderr()
	job, err := extract.NewJob(extract.Request{
		Source:     doc,
		Pages:      sel.Snapshot(),
		OutputPath: out,
	}, extract.Options{
		Progress: func(done, total int) {
			fmt.Fprintf(stderr, "\rProcessing page %d of %d", done, total)
		},
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := job.Run(ctx)
	fmt.Fprintln(stderr)
	if err != nil {
		return err
	}

	o.prefs().SetLastOutputDir(filepath.Dir(res.Path))
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %d pages to %s (%s) in %s\n",
		res.Pages, res.Path, fileutil.FormatBytes(res.Size), res.Duration.Round(time.Millisecond))
	return nil
}
