package extract

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/local/pdfplanner/internal/apperr"
	"github.com/local/pdfplanner/internal/pdfdoc"
	"github.com/local/pdfplanner/internal/pdftest"
	"github.com/local/pdfplanner/internal/selection"
)

func openSource(t *testing.T, dir string, pages []pdftest.Page) *pdfdoc.Document {
	t.Helper()
	doc, err := pdfdoc.Open(pdftest.Write(t, dir, "source.pdf", pages))
	require.NoError(t, err)
	return doc
}

func names(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var out []string
	for _, e := range entries {
		out = append(out, e.Name())
	}
	return out
}

func TestJob_ExtractsInOrderWithRotation(t *testing.T) {
	dir := t.TempDir()
	pages := pdftest.Pages(8)
	pages[2].Rotate = 90
	src := openSource(t, dir, pages)
	before, err := os.ReadFile(src.Path)
	require.NoError(t, err)

	var progress [][2]int
	out := filepath.Join(dir, "out.pdf")
	job, err := NewJob(Request{
		Source:     src,
		Pages:      selection.Snapshot{{Page: 0, Rotation: 180}, {Page: 2, Rotation: 0}, {Page: 6, Rotation: 0}},
		OutputPath: out,
	}, Options{Progress: func(done, total int) { progress = append(progress, [2]int{done, total}) }})
	require.NoError(t, err)
	assert.Equal(t, 3, job.Total())

	steps := 0
	for {
		done, err := job.Step()
		steps++
		require.NoError(t, err)
		if done {
			break
		}
	}
	assert.Equal(t, 5, steps, "copy, one step per page, write")
	assert.Equal(t, [][2]int{{1, 3}, {2, 3}, {3, 3}}, progress)
	assert.Equal(t, 3, job.Done())

	assert.Equal(t, []int{0, 2, 6}, pdftest.SourcePages(t, out))
	rot, err := pdfdoc.PageRotations(out)
	require.NoError(t, err)
	assert.Equal(t, []int{180, 90, 0}, rot)

	res := job.Result()
	assert.Equal(t, out, res.Path)
	assert.Equal(t, 3, res.Pages)
	assert.Positive(t, res.Size)

	after, err := os.ReadFile(src.Path)
	require.NoError(t, err)
	assert.Equal(t, before, after, "source is never modified")
	assert.ElementsMatch(t, []string{"source.pdf", "out.pdf"}, names(t, dir))

	done, err := job.Step()
	assert.True(t, done)
	assert.NoError(t, err)
}

func TestJob_RotationComposesWithIntrinsic(t *testing.T) {
	dir := t.TempDir()
	src := openSource(t, dir, []pdftest.Page{{Rotate: 90}, {Rotate: 270}, {Rotate: 180}})
	out := filepath.Join(dir, "out.pdf")

	job, err := NewJob(Request{
		Source:     src,
		Pages:      selection.Snapshot{{Page: 0, Rotation: 270}, {Page: 1, Rotation: 180}, {Page: 2, Rotation: 90}},
		OutputPath: out,
	}, Options{})
	require.NoError(t, err)
	_, err = job.Run(context.Background())
	require.NoError(t, err)

	rot, err := pdfdoc.PageRotations(out)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 90, 270}, rot)
}

func TestNewJob_EmptySelection(t *testing.T) {
	dir := t.TempDir()
	src := openSource(t, dir, pdftest.Pages(3))
	out := filepath.Join(dir, "out.pdf")

	_, err := NewJob(Request{Source: src, OutputPath: out}, Options{})
	assert.ErrorIs(t, err, apperr.ErrEmptySelection)
	assert.Equal(t, apperr.KindEmpty, apperr.KindOf(err))
	assert.NoFileExists(t, out)
}

func TestNewJob_Rejects(t *testing.T) {
	dir := t.TempDir()
	src := openSource(t, dir, pdftest.Pages(3))
	out := filepath.Join(dir, "out.pdf")

	_, err := NewJob(Request{Source: src, Pages: selection.Snapshot{{Page: 3}}, OutputPath: out}, Options{})
	assert.ErrorIs(t, err, apperr.ErrOutOfRange)

	_, err = NewJob(Request{Source: src, Pages: selection.Snapshot{{Page: 1}, {Page: 0}}, OutputPath: out}, Options{})
	assert.Error(t, err)

	var ve *apperr.InputValidationError
	_, err = NewJob(Request{Source: src, Pages: selection.Snapshot{{Page: 0, Rotation: 45}}, OutputPath: out}, Options{})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, apperr.ReasonBadRotation, ve.Reason)

	_, err = NewJob(Request{Source: src, Pages: selection.Snapshot{{Page: 0}}, OutputPath: filepath.Join(dir, "out.txt")}, Options{})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, apperr.ReasonNotPDFSuffix, ve.Reason)

	_, err = NewJob(Request{Source: src, Pages: selection.Snapshot{{Page: 0}}, OutputPath: src.Path}, Options{})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, apperr.ReasonSameAsSource, ve.Reason)

	_, err = NewJob(Request{Pages: selection.Snapshot{{Page: 0}}, OutputPath: out}, Options{})
	assert.ErrorIs(t, err, apperr.ErrNoDocument)
}

func TestNewJob_SnapshotIsCopied(t *testing.T) {
	dir := t.TempDir()
	src := openSource(t, dir, pdftest.Pages(4))
	snap := selection.Snapshot{{Page: 1, Rotation: 0}, {Page: 3, Rotation: 0}}

	job, err := NewJob(Request{Source: src, Pages: snap, OutputPath: filepath.Join(dir, "out.pdf")}, Options{})
	require.NoError(t, err)

	snap[0].Rotation = 90
	assert.Equal(t, 0, job.Request().Pages[0].Rotation)
}

func TestJob_Cancel(t *testing.T) {
	dir := t.TempDir()
	src := openSource(t, dir, pdftest.Pages(4))
	out := filepath.Join(dir, "out.pdf")

	job, err := NewJob(Request{Source: src, Pages: selection.Snapshot{{Page: 0}, {Page: 1}, {Page: 2}}, OutputPath: out}, Options{})
	require.NoError(t, err)

	done, err := job.Step()
	require.NoError(t, err)
	require.False(t, done)

	job.Cancel()
	done, err = job.Step()
	assert.True(t, done)
	assert.ErrorIs(t, err, apperr.ErrCancelled)
	assert.NoFileExists(t, out)
	assert.ElementsMatch(t, []string{"source.pdf"}, names(t, dir))
}

func TestJob_RunHonoursContext(t *testing.T) {
	dir := t.TempDir()
	src := openSource(t, dir, pdftest.Pages(2))
	out := filepath.Join(dir, "out.pdf")

	job, err := NewJob(Request{Source: src, Pages: selection.Snapshot{{Page: 0}}, OutputPath: out}, Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = job.Run(ctx)
	assert.ErrorIs(t, err, apperr.ErrCancelled)
	assert.NoFileExists(t, out)
}

func TestJob_SourceRemovedAfterValidation(t *testing.T) {
	dir := t.TempDir()
	src := openSource(t, dir, pdftest.Pages(2))
	out := filepath.Join(dir, "out.pdf")

	job, err := NewJob(Request{Source: src, Pages: selection.Snapshot{{Page: 0}}, OutputPath: out}, Options{})
	require.NoError(t, err)
	require.NoError(t, os.Remove(src.Path))

	_, err = job.Run(context.Background())
	var de *apperr.DocumentError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, apperr.DocNotFound, de.Kind)
	assert.NoFileExists(t, out)
}

func TestJob_CreatesMissingOutputDir(t *testing.T) {
	dir := t.TempDir()
	src := openSource(t, dir, pdftest.Pages(2))
	out := filepath.Join(dir, "Extracted PDFs", "out.pdf")

	job, err := NewJob(Request{Source: src, Pages: selection.Snapshot{{Page: 1}}, OutputPath: out}, Options{})
	require.NoError(t, err)
	_, err = job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1}, pdftest.SourcePages(t, out))
}

func TestJob_OverwritesExistingOutput(t *testing.T) {
	dir := t.TempDir()
	src := openSource(t, dir, pdftest.Pages(3))
	out := filepath.Join(dir, "out.pdf")
	require.NoError(t, os.WriteFile(out, []byte("old"), 0o644))

	job, err := NewJob(Request{Source: src, Pages: selection.Snapshot{{Page: 2}}, OutputPath: out}, Options{})
	require.NoError(t, err)
	_, err = job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{2}, pdftest.SourcePages(t, out))
}

type failingAssembly struct {
	pages int
	err   error
}

func (a *failingAssembly) PageCount() int            { return a.pages }
func (a *failingAssembly) RotatePage(int, int) error { return nil }
func (a *failingAssembly) WriteTo(w io.Writer) (int64, error) {
	_, _ = w.Write([]byte("%PDF-1.4\n"))
	return 0, a.err
}

type fakeAssembler struct{ asm *failingAssembly }

func (f fakeAssembler) CopyPages(string, []int) (pdfdoc.PageAssembly, error) { return f.asm, nil }

func TestJob_WriteFailureRemovesTemp(t *testing.T) {
	dir := t.TempDir()
	src := &pdfdoc.Document{ID: uuid.New(), Path: filepath.Join(dir, "virtual.pdf"), PageCount: 5}
	out := filepath.Join(dir, "out.pdf")
	diskFull := errors.New("write: no space left on device")

	job, err := NewJob(Request{Source: src, Pages: selection.Snapshot{{Page: 0}, {Page: 4}}, OutputPath: out},
		Options{Assembler: fakeAssembler{&failingAssembly{pages: 2, err: diskFull}}, SkipVerify: true})
	require.NoError(t, err)

	_, err = job.Run(context.Background())
	var ioErr *apperr.IOFailure
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "write", ioErr.Op)
	assert.True(t, apperr.IsDiskFull(err))
	assert.NoFileExists(t, out)
	assert.Empty(t, names(t, dir), "temp output removed")
}

func TestJob_PageCountMismatch(t *testing.T) {
	dir := t.TempDir()
	src := &pdfdoc.Document{ID: uuid.New(), Path: filepath.Join(dir, "virtual.pdf"), PageCount: 5}

	job, err := NewJob(Request{Source: src, Pages: selection.Snapshot{{Page: 0}, {Page: 4}}, OutputPath: filepath.Join(dir, "out.pdf")},
		Options{Assembler: fakeAssembler{&failingAssembly{pages: 1}}, SkipVerify: true})
	require.NoError(t, err)

	_, err = job.Run(context.Background())
	assert.Error(t, err)
	assert.Empty(t, names(t, dir))
}

func TestSweepTemps(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, ".pdfplanner-123.tmp")
	fresh := filepath.Join(dir, ".pdfplanner-456.tmp")
	other := filepath.Join(dir, "keep.tmp")
	for _, p := range []string{old, fresh, other} {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}
	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))
	require.NoError(t, os.Chtimes(other, past, past))

	assert.Equal(t, 1, SweepTemps(dir, time.Hour))
	assert.NoFileExists(t, old)
	assert.FileExists(t, fresh)
	assert.FileExists(t, other)

	assert.Zero(t, SweepTemps(filepath.Join(dir, "missing"), time.Hour))
}
