// Package session owns the state of one editing session (the loaded document,
// its selection, the thumbnail cache and loader, and the running extraction)
// and applies host events to it.
package session

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/local/pdfplanner/internal/apperr"
	"github.com/local/pdfplanner/internal/extract"
	"github.com/local/pdfplanner/internal/gridload"
	"github.com/local/pdfplanner/internal/imagerender"
	"github.com/local/pdfplanner/internal/metrics"
	"github.com/local/pdfplanner/internal/pdfdoc"
	"github.com/local/pdfplanner/internal/selection"
	"github.com/local/pdfplanner/internal/thumbcache"
	"github.com/local/pdfplanner/internal/validate"
)

// Prefs is the part of the preference store the session updates.
type Prefs interface {
	AddRecentFile(path string)
	SetLastInputDir(path string)
	SetLastOutputDir(path string)
	LastOutputDir() string
}

// Revealer opens the file browser.
type Revealer interface {
	Dir(dir string) error
	File(path string) error
}

// Deps are the collaborators of a Session. Opener, Renderer and Assembler
// default to the pdfcpu and MuPDF implementations.
type Deps struct {
	Opener    pdfdoc.Opener
	Renderer  imagerender.Renderer
	Assembler pdfdoc.Assembler
	Prefs     Prefs
	Revealer  Revealer
	// CheckFile validates a path before it is opened; validate.PDFFile by default.
	CheckFile func(path string) error
}

// Options tunes the loader and extraction.
type Options struct {
	Loader     gridload.Options
	SkipVerify bool
}

// Session is driven from the host's event loop only.
type Session struct {
	deps Deps
	opts Options

	doc    *pdfdoc.Document
	sel    *selection.State
	cache  *thumbcache.Cache
	loader *gridload.Loader

	job        *extract.Job
	progress   Progress
	lastOutput string
}

// New returns an empty session.
func New(deps Deps, opts Options) *Session {
	if deps.Opener == nil {
		deps.Opener = pdfdoc.PDFCPU{}
	}
	if deps.Renderer == nil {
		deps.Renderer = imagerender.NewPageRenderer()
	}
	if deps.Assembler == nil {
		deps.Assembler = pdfdoc.PDFCPUAssembler{}
	}
	if deps.CheckFile == nil {
		deps.CheckFile = validate.PDFFile
	}
	cache := thumbcache.New(deps.Renderer)
	return &Session{
		deps:   deps,
		opts:   opts,
		sel:    selection.New(0),
		cache:  cache,
		loader: gridload.New(cache, opts.Loader),
	}
}

// Doc returns the loaded document, or nil.
func (s *Session) Doc() *pdfdoc.Document { return s.doc }

// Selection returns the selection state of the loaded document.
func (s *Session) Selection() *selection.State { return s.sel }

// Loader returns the grid loader.
func (s *Session) Loader() *gridload.Loader { return s.loader }

// Cache returns the thumbnail cache.
func (s *Session) Cache() *thumbcache.Cache { return s.cache }

// Busy reports whether an extraction is running.
func (s *Session) Busy() bool { return s.job != nil }

// Progress returns the progress of the running extraction.
func (s *Session) Progress() Progress { return s.progress }

// LastOutput returns the path of the last successful extraction.
func (s *Session) LastOutput() string { return s.lastOutput }

// Load validates and opens path. Only when that succeeds is the current
// document replaced, together with its selection, thumbnails and queued
// renders; on failure the session is left exactly as it was.
func (s *Session) Load(path string) error {
	if err := s.deps.CheckFile(path); err != nil {
		metrics.IncDocument("failed")
		return err
	}
	doc, err := s.deps.Opener.Open(path)
	if err != nil {
		metrics.IncDocument("failed")
		return err
	}

	s.doc = doc
	s.sel.Reset(doc.PageCount)
	s.cache.InvalidateAll(doc)
	s.loader.Reset(doc, s.sel.Rotation)
	metrics.IncDocument("ok")

	if s.deps.Prefs != nil {
		s.deps.Prefs.AddRecentFile(path)
		s.deps.Prefs.SetLastInputDir(path)
	}
	log.Info().Str("doc", doc.ID.String()).Str("path", path).Int("pages", doc.PageCount).Msg("document loaded")
	return nil
}

// Thumbnail returns the best available thumbnail of page and its render
// error, if the last attempt failed.
func (s *Session) Thumbnail(page int) (*imagerender.Raster, error) {
	if err := s.loader.Failed(page); err != nil {
		return nil, err
	}
	r, _ := s.loader.Best(page)
	return r, nil
}

// Preview renders page at width with its rotation override applied.
func (s *Session) Preview(page, width int) (*imagerender.Raster, error) {
	if s.doc == nil {
		return nil, apperr.ErrNoDocument
	}
	return s.cache.GetOrRender(s.doc, page, width, s.sel.Rotation(page))
}

// Dispatch applies ev and reports what the host should do next.
func (s *Session) Dispatch(ev Event) Effect {
	switch e := ev.(type) {
	case FileSelected:
		return s.load(e.Path)

	case SourceChanged:
		if s.doc == nil || filepath.Clean(e.Path) != filepath.Clean(s.doc.Path) {
			return Effect{}
		}
		if e.Removed {
			if _, err := os.Stat(s.doc.Path); err != nil {
				return Effect{Notice: "Source file was moved or deleted"}
			}
		}
		eff := s.load(s.doc.Path)
		if eff.Err == nil {
			eff.Notice = "Source file changed on disk, reloaded"
		}
		return eff

	case ToggledPage:
		if s.doc == nil {
			return Effect{Err: apperr.ErrNoDocument}
		}
		_, err := s.sel.Toggle(e.Page)
		return Effect{Err: err}

	case SelectedAll:
		s.sel.SelectAll()
		return Effect{}

	case ClearedSelection:
		s.sel.Clear()
		return Effect{}

	case RangeChosen:
		if s.doc == nil {
			return Effect{Err: apperr.ErrNoDocument}
		}
		return Effect{Err: s.sel.SelectRange(e.Start, e.End)}

	case PresetChosen:
		r, ok := e.Preset.Range(s.sel.PageCount())
		if !ok {
			return Effect{}
		}
		return Effect{Err: s.sel.SelectRange(r.Start, r.End)}

	case Rotated:
		if s.doc == nil {
			return Effect{Err: apperr.ErrNoDocument}
		}
		if _, err := s.sel.SetRotation(e.Page, e.Delta); err != nil {
			return Effect{Err: err}
		}
		s.loader.Invalidate(e.Page)
		return Effect{ScheduleLoader: s.loader.Pending() > 0}

	case ViewportChanged:
		s.loader.SetViewport(e.First, e.Last)
		return Effect{ScheduleLoader: s.loader.Pending() > 0}

	case Resized:
		s.loader.SetWidth(e.Width)
		return Effect{ScheduleLoader: s.loader.Pending() > 0}

	case LoaderTick:
		res := s.loader.Step()
		return Effect{Rendered: res.Done, Failed: res.Failed, ScheduleLoader: res.More}

	case ExtractRequested:
		return s.startExtraction(e.OutputPath)

	case ExtractTick:
		return s.stepExtraction()

	case ExtractCancelled:
		if s.job == nil {
			return Effect{}
		}
		s.job.Cancel()
		return Effect{ScheduleExtract: true}

	case OpenOutputFolder:
		return s.openOutput()
	}
	return Effect{Err: fmt.Errorf("session: unhandled event %T", ev)}
}

func (s *Session) load(path string) Effect {
	if err := s.Load(path); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("load failed, keeping current document")
		return Effect{Err: err}
	}
	return Effect{Loaded: true, ScheduleLoader: s.loader.Pending() > 0}
}

func (s *Session) startExtraction(out string) Effect {
	if s.job != nil {
		return Effect{Err: apperr.ErrBusy}
	}
	if s.doc == nil {
		return Effect{Err: apperr.ErrNoDocument}
	}
	job, err := extract.NewJob(extract.Request{
		Source:     s.doc,
		Pages:      s.sel.Snapshot(),
		OutputPath: out,
	}, extract.Options{
		Assembler:  s.deps.Assembler,
		SkipVerify: s.opts.SkipVerify,
		Progress: func(done, total int) {
			s.progress = Progress{Done: done, Total: total}
		},
	})
	if err != nil {
		return Effect{Err: err}
	}
	s.job = job
	s.progress = Progress{Total: job.Total()}
	p := s.progress
	return Effect{ScheduleExtract: true, Progress: &p}
}

func (s *Session) stepExtraction() Effect {
	if s.job == nil {
		return Effect{}
	}
	done, err := s.job.Step()
	p := s.progress
	if !done {
		return Effect{ScheduleExtract: true, Progress: &p}
	}

	job := s.job
	s.job = nil
	s.progress = Progress{}
	if err != nil {
		return Effect{Err: err}
	}
	res := job.Result()
	s.lastOutput = res.Path
	if s.deps.Prefs != nil {
		s.deps.Prefs.SetLastOutputDir(filepath.Dir(res.Path))
	}
	return Effect{Finished: &res, Progress: &p}
}

func (s *Session) openOutput() Effect {
	if s.deps.Revealer == nil {
		return Effect{}
	}
	var err error
	switch {
	case s.lastOutput != "":
		err = s.deps.Revealer.File(s.lastOutput)
	case s.deps.Prefs != nil:
		err = s.deps.Revealer.Dir(s.deps.Prefs.LastOutputDir())
	default:
		return Effect{Notice: "Nothing extracted yet"}
	}
	if err != nil {
		log.Warn().Err(err).Str("path", s.lastOutput).Msg("open folder failed")
		return Effect{Notice: "Could not open the output folder"}
	}
	return Effect{}
}
