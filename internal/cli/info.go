package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/local/pdfplanner/internal/fileutil"
	"github.com/local/pdfplanner/internal/pdfdoc"
	"github.com/local/pdfplanner/internal/validate"
)

func newInfoCmd(_ *options) *cobra.Command {
	return &cobra.Command{
		Use:   "info <file.pdf>",
		Short: "Show page count, size and metadata of a PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validate.PDFFile(args[0]); err != nil {
				return err
			}
			doc, err := pdfdoc.Open(args[0])
			if err != nil {
				return err
			}
			printInfo(cmd.OutOrStdout(), doc)
			return nil
		},
	}
}

func printInfo(w io.Writer, doc *pdfdoc.Document) {
	row := func(k, v string) {
		if v != "" {
			fmt.Fprintf(w, "%-10s %s\n", k+":", v)
		}
	}
	row("File", doc.Path)
	row("Pages", fmt.Sprintf("%d", doc.PageCount))
	row("Size", fileutil.FormatBytes(doc.Size))
	row("Modified", fileutil.Ago(doc.ModTime))
	row("Title", doc.Info.Title)
	row("Author", doc.Info.Author)
	row("Subject", doc.Info.Subject)
	row("Creator", doc.Info.Creator)

	var rotated []string
	for i := 0; i < doc.PageCount; i++ {
		if r := doc.IntrinsicRotation(i); r != 0 {
			rotated = append(rotated, fmt.Sprintf("%d (%d°)", i+1, r))
		}
	}
	if len(rotated) == 0 {
		row("Rotated", "none")
		return
	}
	row("Rotated", strings.Join(rotated, ", "))
}
