// Package extract writes the selected pages of the loaded document to a new PDF.
// The work is a stepped job so the host can update progress between pages.
package extract

import (
    "context"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "sync/atomic"
    "time"

    "github.com/google/uuid"
    "github.com/rs/zerolog/log"

    "github.com/local/pdfplanner/internal/apperr"
    "github.com/local/pdfplanner/internal/metrics"
    "github.com/local/pdfplanner/internal/pdfdoc"
    "github.com/local/pdfplanner/internal/selection"
    "github.com/local/pdfplanner/internal/validate"
)

// TempPattern names temporary output files in the destination directory.
const TempPattern = ".pdfplanner-*.tmp"

// Request is the immutable input of one extraction.
type Request struct {
    Source     *pdfdoc.Document
    Pages      selection.Snapshot
    OutputPath string
}

// Options tunes a Job.
type Options struct {
    Assembler  pdfdoc.Assembler      // nil uses pdfcpu
    Progress   func(done, total int) // called after each page
    SkipVerify bool                  // skip re-reading the page count of the output
}

// Result describes a finished extraction.
type Result struct {
    JobID    string
    Path     string
    Pages    int
    Size     int64
    Duration time.Duration
}

type phase int

const (
    phaseCopy phase = iota
    phaseRotate
    phaseWrite
    phaseDone
)

// Job is one extraction. Step advances it by one unit of work.
type Job struct {
    id      string
    req     Request
    opts    Options
    started time.Time

    phase     phase
    asm       pdfdoc.PageAssembly
    next      int
    cancelled atomic.Bool
    err       error
    result    Result
}

// NewJob validates req and returns a job ready to Step. The page snapshot is
// copied, so the caller may keep editing its selection.
func NewJob(req Request, opts Options) (*Job, error) {
    if len(req.Pages) == 0 { return nil, apperr.ErrEmptySelection }
    if req.Source == nil { return nil, apperr.ErrNoDocument }

    prev := -1
    for _, pr := range req.Pages {
        if !req.Source.Contains(pr.Page) {
            return nil, fmt.Errorf("extract page %d: %w", pr.Page+1, apperr.ErrOutOfRange)
        }
        if pr.Page <= prev {
            return nil, fmt.Errorf("extract: pages must be ascending and unique, got %d after %d", pr.Page+1, prev+1)
        }
        switch pr.Rotation {
        case 0, 90, 180, 270:
        default:
            return nil, apperr.Invalid("rotation", apperr.ReasonBadRotation, "Rotation must be 0, 90, 180 or 270, got %d", pr.Rotation)
        }
        prev = pr.Page
    }

    if err := validate.OutputPath(req.OutputPath); err != nil { return nil, err }
    if samePath(req.OutputPath, req.Source.Path) {
        return nil, apperr.Invalid("output", apperr.ReasonSameAsSource, "Output file cannot be the source PDF")
    }

    if opts.Assembler == nil { opts.Assembler = pdfdoc.PDFCPUAssembler{} }
    req.Pages = append(selection.Snapshot(nil), req.Pages...)

    return &Job{id: uuid.NewString(), req: req, opts: opts}, nil
}

// ID returns the job identifier used in logs.
func (j *Job) ID() string { return j.id }

// Total returns the number of pages the output will have.
func (j *Job) Total() int { return len(j.req.Pages) }

// Done returns the number of pages finished so far.
func (j *Job) Done() int {
    if j.phase == phaseDone && j.err == nil { return j.Total() }
    return j.next
}

// Request returns the job's snapshot of its input.
func (j *Job) Request() Request { return j.req }

// Cancel asks the job to stop before its next step. It is safe to call from
// any goroutine.
func (j *Job) Cancel() { j.cancelled.Store(true) }

// Result returns the outcome once Step has reported done without error.
func (j *Job) Result() Result { return j.result }

// Step performs the next unit of work: copying the pages, rotating one page, or
// writing the file. It returns done=true once the job has finished, either
// successfully or with the returned error.
func (j *Job) Step() (bool, error) {
    if j.phase == phaseDone { return true, j.err }
    if j.started.IsZero() {
        j.started = time.Now()
        log.Info().Str("job", j.id).Str("source", j.req.Source.Path).Str("output", j.req.OutputPath).
            Int("pages", j.Total()).Msg("extraction started")
    }
    if j.cancelled.Load() { return true, j.finish(apperr.ErrCancelled) }

    switch j.phase {
    case phaseCopy:
        asm, err := j.opts.Assembler.CopyPages(j.req.Source.Path, j.req.Pages.Pages())
        if err != nil { return true, j.finish(err) }
        if asm.PageCount() != j.Total() {
            return true, j.finish(fmt.Errorf("extract: copied %d pages, expected %d", asm.PageCount(), j.Total()))
        }
        j.asm = asm
        j.phase = phaseRotate
        return false, nil

    case phaseRotate:
        pr := j.req.Pages[j.next]
        if err := j.asm.RotatePage(j.next, pr.Rotation); err != nil {
            return true, j.finish(fmt.Errorf("extract page %d: %w", pr.Page+1, err))
        }
        j.next++
        if j.opts.Progress != nil { j.opts.Progress(j.next, j.Total()) }
        if j.next == j.Total() { j.phase = phaseWrite }
        return false, nil

    case phaseWrite:
        size, err := j.write()
        if err != nil { return true, j.finish(err) }
        j.result = Result{
            JobID:    j.id,
            Path:     j.req.OutputPath,
            Pages:    j.Total(),
            Size:     size,
            Duration: time.Since(j.started),
        }
        return true, j.finish(nil)
    }
    return true, j.err
}

// Run drives the job to completion. Cancelling ctx cancels the job at the next step.
func (j *Job) Run(ctx context.Context) (Result, error) {
    for {
        if ctx.Err() != nil { j.Cancel() }
        done, err := j.Step()
        if done { return j.result, err }
    }
}

func (j *Job) finish(err error) error {
    j.phase = phaseDone
    j.err = err
    j.asm = nil

    switch {
    case err == nil:
        metrics.IncExtraction("ok")
        for i := 0; i < j.Total(); i++ { metrics.IncPagesExtracted() }
        log.Info().Str("job", j.id).Str("output", j.result.Path).Int("pages", j.result.Pages).
            Int64("size", j.result.Size).Dur("took", j.result.Duration).Msg("extraction finished")
    case errors.Is(err, apperr.ErrCancelled):
        metrics.IncExtraction("cancelled")
        log.Info().Str("job", j.id).Int("done", j.next).Msg("extraction cancelled")
    default:
        metrics.IncExtraction("failed")
        log.Error().Err(err).Str("job", j.id).Str("output", j.req.OutputPath).Msg("extraction failed")
    }
    return err
}

// write stores the assembly in a temp file next to the output and renames it
// into place. The temp file is removed on every failure path.
func (j *Job) write() (int64, error) {
    out := j.req.OutputPath
    dir := filepath.Dir(out)
    if err := os.MkdirAll(dir, 0o755); err != nil {
        return 0, &apperr.IOFailure{Op: "create directory", Path: dir, Err: err}
    }

    f, err := os.CreateTemp(dir, TempPattern)
    if err != nil { return 0, &apperr.IOFailure{Op: "create", Path: dir, Err: err} }
    tmp := f.Name()
    ok := false
    defer func() {
        if !ok {
            _ = f.Close()
            if rmErr := os.Remove(tmp); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
                log.Warn().Err(rmErr).Str("path", tmp).Msg("could not remove temp output")
            }
        }
    }()

    n, err := j.asm.WriteTo(f)
    if err != nil { return 0, &apperr.IOFailure{Op: "write", Path: tmp, Err: err} }
    if err := f.Sync(); err != nil { return 0, &apperr.IOFailure{Op: "sync", Path: tmp, Err: err} }
    if err := f.Close(); err != nil { return 0, &apperr.IOFailure{Op: "close", Path: tmp, Err: err} }

    if !j.opts.SkipVerify {
        got, err := pdfdoc.PageCountFile(tmp)
        if err != nil { return 0, fmt.Errorf("extract: verify output: %w", err) }
        if got != j.Total() {
            return 0, fmt.Errorf("extract: output has %d pages, expected %d", got, j.Total())
        }
    }

    if err := os.Rename(tmp, out); err != nil {
        return 0, &apperr.IOFailure{Op: "rename", Path: out, Err: err}
    }
    ok = true
    return n, nil
}

func samePath(a, b string) bool {
    if a == "" || b == "" { return false }
    aa, err1 := filepath.Abs(a)
    bb, err2 := filepath.Abs(b)
    if err1 != nil || err2 != nil { return filepath.Clean(a) == filepath.Clean(b) }
    if aa == bb { return true }
    sa, err1 := os.Stat(aa)
    sb, err2 := os.Stat(bb)
    return err1 == nil && err2 == nil && os.SameFile(sa, sb)
}
