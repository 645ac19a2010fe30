// Package gridload schedules thumbnail renders for the visible part of the page
// grid. The host drives it by calling Step and yielding to its event loop in
// between, so no single call renders more than one small batch.
package gridload

import (
	"github.com/rs/zerolog/log"

	"github.com/local/pdfplanner/internal/imagerender"
	"github.com/local/pdfplanner/internal/metrics"
	"github.com/local/pdfplanner/internal/pdfdoc"
	"github.com/local/pdfplanner/internal/thumbcache"
)

const (
	DefaultBatchSize = 4
	DefaultLookahead = 12
	DefaultWidth     = 240
)

// Options configures a Loader. Zero values take the defaults; a negative
// Lookahead disables it.
type Options struct {
	Width     int
	BatchSize int
	Lookahead int
}

// Request is one thumbnail to render.
type Request struct {
	Page     int
	Width    int
	Rotation int
}

// Batch is a set of requests taken from the queue, tagged with the document
// they were issued against.
type Batch struct {
	Doc      *pdfdoc.Document
	Requests []Request
}

// Empty reports whether the batch has nothing to render.
func (b Batch) Empty() bool { return len(b.Requests) == 0 }

// Cell is the outcome of one request.
type Cell struct {
	Request
	Raster *imagerender.Raster
	Err    error
}

// StepResult reports what a step committed. Stale is set when the document
// changed while the batch was rendering and its results were discarded.
type StepResult struct {
	Done   []Cell
	Failed []Cell
	Stale  bool
	More   bool
}

// Loader is the lazy grid loader. Like the cache it feeds, it is driven from a
// single goroutine.
type Loader struct {
	cache     *thumbcache.Cache
	rotation  func(page int) int
	doc       *pdfdoc.Document
	width     int
	batchSize int
	lookahead int

	first, last int
	queue       []Request
	inflight    map[Request]struct{}
	failed      map[Request]error
}

// New returns a loader committing into cache.
func New(cache *thumbcache.Cache, opts Options) *Loader {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	switch {
	case opts.Lookahead == 0:
		opts.Lookahead = DefaultLookahead
	case opts.Lookahead < 0:
		opts.Lookahead = 0
	}
	l := &Loader{
		cache:     cache,
		width:     opts.Width,
		batchSize: opts.BatchSize,
		lookahead: opts.Lookahead,
	}
	l.Reset(nil, nil)
	return l
}

// Reset binds the loader to doc and drops all queued, in-flight and failed
// state. rotation reports the current override of a page; nil means none.
func (l *Loader) Reset(doc *pdfdoc.Document, rotation func(page int) int) {
	if rotation == nil {
		rotation = func(int) int { return 0 }
	}
	l.doc = doc
	l.rotation = rotation
	l.queue = nil
	l.inflight = make(map[Request]struct{})
	l.failed = make(map[Request]error)
	l.first, l.last = 0, -1
}

// Doc returns the bound document.
func (l *Loader) Doc() *pdfdoc.Document { return l.doc }

// Width returns the current thumbnail width.
func (l *Loader) Width() int { return l.width }

// Pending returns the number of queued requests.
func (l *Loader) Pending() int { return len(l.queue) }

// SetViewport sets the visible cells (0-based, inclusive) and rebuilds the
// queue: visible pages first, then the lookahead after them.
func (l *Loader) SetViewport(first, last int) {
	l.first, l.last = first, last
	l.rebuild()
}

// SetWidth changes the thumbnail width. Queued requests for the old width are
// dropped and re-enqueued at the new one; thumbnails already rendered at the old
// width stay available through Best.
func (l *Loader) SetWidth(width int) {
	if width <= 0 || width == l.width {
		return
	}
	l.width = width
	l.rebuild()
}

// Invalidate re-enqueues page, typically after its rotation changed.
func (l *Loader) Invalidate(page int) {
	for req := range l.failed {
		if req.Page == page {
			delete(l.failed, req)
		}
	}
	l.rebuild()
}

// Best returns the thumbnail to show for page: the current width if rendered,
// otherwise the widest thumbnail at the current rotation.
func (l *Loader) Best(page int) (*imagerender.Raster, bool) {
	return l.cache.Best(page, l.width, l.rotation(page))
}

// Failed returns the render error of page at the current width and rotation.
func (l *Loader) Failed(page int) error {
	return l.failed[l.request(page)]
}

func (l *Loader) request(page int) Request {
	return Request{Page: page, Width: l.width, Rotation: l.rotation(page)}
}

func (l *Loader) wanted(req Request) bool {
	if _, ok := l.inflight[req]; ok {
		return false
	}
	if _, ok := l.failed[req]; ok {
		return false
	}
	return !l.cache.Contains(thumbcache.Key{Doc: l.doc.ID, Page: req.Page, Width: req.Width, Rotation: req.Rotation})
}

func (l *Loader) rebuild() {
	l.queue = l.queue[:0]
	if l.doc == nil || l.last < l.first {
		return
	}
	first := max(l.first, 0)
	last := min(l.last+l.lookahead, l.doc.PageCount-1)
	for p := first; p <= last; p++ {
		if req := l.request(p); l.wanted(req) {
			l.queue = append(l.queue, req)
		}
	}
}

// TakeBatch removes up to BatchSize requests from the queue and marks them in
// flight.
func (l *Loader) TakeBatch() Batch {
	n := min(l.batchSize, len(l.queue))
	b := Batch{Doc: l.doc, Requests: append([]Request(nil), l.queue[:n]...)}
	l.queue = l.queue[n:]
	for _, req := range b.Requests {
		l.inflight[req] = struct{}{}
	}
	return b
}

// RenderBatch renders b. Nothing is shown to the grid until Commit.
func (l *Loader) RenderBatch(b Batch) []Cell {
	cells := make([]Cell, len(b.Requests))
	for i, req := range b.Requests {
		r, err := l.cache.Render(b.Doc, req.Page, req.Width, req.Rotation)
		cells[i] = Cell{Request: req, Raster: r, Err: err}
	}
	return cells
}

// Commit stores the results of b. If the loader has been reset to another
// document since b was taken, nothing is stored and the result is Stale.
func (l *Loader) Commit(b Batch, cells []Cell) StepResult {
	metrics.IncBatch()
	if l.doc == nil || b.Doc == nil || b.Doc.ID != l.doc.ID {
		for range cells {
			metrics.IncStale()
		}
		log.Debug().Int("cells", len(cells)).Msg("discarding stale thumbnail batch")
		return StepResult{Stale: true, More: len(l.queue) > 0}
	}

	var res StepResult
	for _, c := range cells {
		delete(l.inflight, c.Request)
		if c.Err != nil {
			l.failed[c.Request] = c.Err
			res.Failed = append(res.Failed, c)
			continue
		}
		l.cache.Store(thumbcache.Key{Doc: b.Doc.ID, Page: c.Page, Width: c.Width, Rotation: c.Rotation}, c.Raster)
		res.Done = append(res.Done, c)
	}
	res.More = len(l.queue) > 0
	return res
}

// Step renders and commits one batch.
func (l *Loader) Step() StepResult {
	b := l.TakeBatch()
	if b.Empty() {
		return StepResult{}
	}
	return l.Commit(b, l.RenderBatch(b))
}
