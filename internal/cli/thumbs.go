package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/local/pdfplanner/internal/apperr"
	"github.com/local/pdfplanner/internal/imagerender"
	"github.com/local/pdfplanner/internal/pdfdoc"
	"github.com/local/pdfplanner/internal/thumbcache"
	"github.com/local/pdfplanner/internal/validate"
)

// newRenderer is replaced in tests.
var newRenderer = func() imagerender.Renderer { return imagerender.NewPageRenderer() }

type thumbsFlags struct {
	out     string
	width   int
	pages   string
	rotate  string
	gray    bool
	quality int
}

func newThumbsCmd(o *options) *cobra.Command {
	f := &thumbsFlags{}
	cmd := &cobra.Command{
		Use:   "thumbs <file.pdf>",
		Short: "Write JPEG thumbnails of PDF pages",
		Long: `Render pages of a PDF to JPEG files named <name>_p001.jpg and so on.
Rotations use the same page=degrees form as extract.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runThumbs(cmd, o, f, args[0])
		},
	}
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "output directory (default <last output folder>/<name>_thumbs)")
	cmd.Flags().IntVarP(&f.width, "width", "w", 0, "thumbnail width in pixels (default THUMB_WIDTH)")
	cmd.Flags().StringVarP(&f.pages, "pages", "p", "", "pages to render (default all)")
	cmd.Flags().StringVarP(&f.rotate, "rotate", "r", "", "rotations as page=degrees, comma separated")
	cmd.Flags().BoolVar(&f.gray, "gray", false, "write grayscale images")
	cmd.Flags().IntVarP(&f.quality, "quality", "q", 85, "JPEG quality, 1-100")
	return cmd
}

func runThumbs(cmd *cobra.Command, o *options, f *thumbsFlags, src string) error {
	if f.quality < 1 || f.quality > 100 {
		return apperr.Invalid("quality", apperr.ReasonBadQuality, "quality must be between 1 and 100, got %d", f.quality)
	}
	width := f.width
	if width <= 0 {
		width = o.cfg.Thumbs.Width
	}

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

	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	dir := f.out
	if dir == "" {
		dir = filepath.Join(o.prefs().LastOutputDir(), base+"_thumbs")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	mode := imagerender.ColorRGB
	if f.gray {
		mode = imagerender.ColorGray
	}

	r := newRenderer()
	if c, ok := r.(io.Closer); ok {
		defer c.Close()
	}
	cache := thumbcache.New(r)
	cache.InvalidateAll(doc)

	pages := sel.Selected()
	written, failed := 0, 0
	for i, p := range pages {
		raster, err := cache.GetOrRender(doc, p, width, sel.Rotation(p))
		var rf *apperr.RenderFailure
		switch {
		case errors.As(err, &rf):
			log.Warn().Err(err).Str("source", src).Int("page", p).Msg("thumbnail skipped")
			failed++
			continue
		case err != nil:
			return err
		}
		name := filepath.Join(dir, fmt.Sprintf("%s_p%03d.jpg", base, p+1))
		if err := writeJPEG(name, raster, f.quality, mode); err != nil {
			return err
		}
		written++
		fmt.Fprintf(cmd.ErrOrStderr(), "\rRendered %d of %d", i+1, len(pages))
	}
	fmt.Fprintln(cmd.ErrOrStderr())

	log.Info().Str("source", src).Int("pages", written).Int("failed", failed).Int("width", width).
		Msg("thumbnails written")
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d thumbnails to %s\n", written, dir)
	if failed > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%d pages could not be rendered\n", failed)
	}
	return nil
}

func writeJPEG(path string, r *imagerender.Raster, quality int, mode imagerender.ColorMode) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := imagerender.EncodeJPEG(f, r.Image, quality, mode); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
