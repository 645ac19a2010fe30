// Package thumbcache memoizes rendered page thumbnails for the loaded document.
package thumbcache

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/local/pdfplanner/internal/apperr"
	"github.com/local/pdfplanner/internal/imagerender"
	"github.com/local/pdfplanner/internal/metrics"
	"github.com/local/pdfplanner/internal/pdfdoc"
)

// Key identifies a thumbnail. Doc is the identity of a load, not the path, so
// reloading the same file never reuses entries.
type Key struct {
	Doc      uuid.UUID
	Page     int
	Width    int
	Rotation int
}

// Cache holds thumbnails of exactly one document. It is not safe for
// concurrent use; the host event loop is its only caller.
type Cache struct {
	renderer imagerender.Renderer
	doc      *pdfdoc.Document
	entries  map[Key]*imagerender.Raster
}

// New returns an empty cache that renders through r.
func New(r imagerender.Renderer) *Cache {
	return &Cache{renderer: r, entries: make(map[Key]*imagerender.Raster)}
}

// InvalidateAll drops every entry and binds the cache to doc (nil unbinds).
func (c *Cache) InvalidateAll(doc *pdfdoc.Document) {
	dropped := len(c.entries)
	c.entries = make(map[Key]*imagerender.Raster)
	c.doc = doc
	metrics.SetCacheEntries(0)

	ev := log.Debug().Int("dropped", dropped)
	if doc != nil {
		ev = ev.Str("doc", doc.ID.String())
	}
	ev.Msg("thumbnail cache invalidated")
}

// Doc returns the document the cache is bound to.
func (c *Cache) Doc() *pdfdoc.Document { return c.doc }

// Len returns the number of cached thumbnails.
func (c *Cache) Len() int { return len(c.entries) }

// Contains reports whether key is cached.
func (c *Cache) Contains(key Key) bool {
	_, ok := c.entries[key]
	return ok
}

// Lookup returns the cached raster for key.
func (c *Cache) Lookup(key Key) (*imagerender.Raster, bool) {
	r, ok := c.entries[key]
	return r, ok
}

// Best returns the thumbnail of page at width and rotation if cached, or else
// the widest cached thumbnail of page at that rotation.
func (c *Cache) Best(page, width, rotation int) (*imagerender.Raster, bool) {
	if c.doc == nil {
		return nil, false
	}
	if r, ok := c.entries[Key{Doc: c.doc.ID, Page: page, Width: width, Rotation: rotation}]; ok {
		return r, true
	}
	var best *imagerender.Raster
	bestWidth := 0
	for k, r := range c.entries {
		if k.Page == page && k.Rotation == rotation && k.Width > bestWidth {
			best, bestWidth = r, k.Width
		}
	}
	return best, best != nil
}

// Store commits raster under key. Keys of any document other than the bound
// one are refused, so a render issued before a document change cannot land in
// the new cache.
func (c *Cache) Store(key Key, raster *imagerender.Raster) bool {
	if c.doc == nil || key.Doc != c.doc.ID || raster == nil {
		metrics.IncStale()
		log.Debug().
			Str("doc", key.Doc.String()).
			Int("page", key.Page).
			Msg("discarding thumbnail of a replaced document")
		return false
	}
	c.entries[key] = raster
	metrics.SetCacheEntries(len(c.entries))
	return true
}

// Render produces the thumbnail for the key without storing it. A cached
// unrotated thumbnail of the same width is reused instead of calling the
// renderer again.
func (c *Cache) Render(doc *pdfdoc.Document, page, width, rotation int) (*imagerender.Raster, error) {
	if err := check(doc, page, width, rotation); err != nil {
		return nil, err
	}

	if rotation != 0 {
		if base, ok := c.entries[Key{Doc: doc.ID, Page: page, Width: width}]; ok {
			return rotate(base, rotation), nil
		}
	}

	start := time.Now()
	r, err := c.renderer.RenderPage(doc, page, width)
	if err != nil {
		metrics.ObserveRender("failed", time.Since(start))
		log.Warn().Err(err).Str("doc", doc.ID.String()).Int("page", page).Msg("thumbnail render failed")
		return nil, &apperr.RenderFailure{Page: page, Err: err}
	}
	metrics.ObserveRender("ok", time.Since(start))

	if rotation != 0 {
		if doc.ID == c.docID() {
			c.entries[Key{Doc: doc.ID, Page: page, Width: width}] = r
			metrics.SetCacheEntries(len(c.entries))
		}
		r = rotate(r, rotation)
	}
	return r, nil
}

// GetOrRender returns the cached thumbnail for (doc, page, width, rotation),
// rendering and storing it on a miss. Failed renders are never stored.
func (c *Cache) GetOrRender(doc *pdfdoc.Document, page, width, rotation int) (*imagerender.Raster, error) {
	if err := check(doc, page, width, rotation); err != nil {
		return nil, err
	}
	key := Key{Doc: doc.ID, Page: page, Width: width, Rotation: rotation}
	if r, ok := c.entries[key]; ok {
		metrics.CacheHit()
		return r, nil
	}
	metrics.CacheMiss()

	r, err := c.Render(doc, page, width, rotation)
	if err != nil {
		return nil, err
	}
	c.Store(key, r)
	return r, nil
}

func (c *Cache) docID() uuid.UUID {
	if c.doc == nil {
		return uuid.Nil
	}
	return c.doc.ID
}

func check(doc *pdfdoc.Document, page, width, rotation int) error {
	if doc == nil {
		return apperr.ErrNoDocument
	}
	if !doc.Contains(page) {
		return fmt.Errorf("thumbnail of page %d: %w", page+1, apperr.ErrOutOfRange)
	}
	if width <= 0 {
		return apperr.Invalid("width", apperr.ReasonBadWidth, "Thumbnail width must be positive, got %d", width)
	}
	switch rotation {
	case 0, 90, 180, 270:
	default:
		return apperr.Invalid("rotation", apperr.ReasonBadRotation, "Rotation must be 0, 90, 180 or 270, got %d", rotation)
	}
	return nil
}

func rotate(r *imagerender.Raster, deg int) *imagerender.Raster {
	img := imagerender.Rotate(r.Image, deg)
	b := img.Bounds()
	return &imagerender.Raster{Image: img, Width: b.Dx(), Height: b.Dy()}
}
