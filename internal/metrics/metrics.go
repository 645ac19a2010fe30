package metrics

import (
    "time"

    "github.com/prometheus/client_golang/prometheus"
)

var (
    registry = prometheus.NewRegistry()

    thumbLookups = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "pdfplanner",
            Name:      "thumb_cache_lookups_total",
            Help:      "Thumbnail cache lookups by result (hit, miss)",
        },
        []string{"result"},
    )

    renders = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "pdfplanner",
            Name:      "renders_total",
            Help:      "Page renders by result (ok, failed, stale)",
        },
        []string{"result"},
    )

    renderLatency = prometheus.NewHistogram(
        prometheus.HistogramOpts{
            Namespace: "pdfplanner",
            Name:      "render_duration_seconds",
            Help:      "Duration of single page renders",
            Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
        },
    )

    cacheEntries = prometheus.NewGauge(
        prometheus.GaugeOpts{
            Namespace: "pdfplanner",
            Name:      "thumb_cache_entries",
            Help:      "Thumbnails currently held in memory",
        },
    )

    loaderBatches = prometheus.NewCounter(
        prometheus.CounterOpts{
            Namespace: "pdfplanner",
            Name:      "loader_batches_total",
            Help:      "Grid loader batches executed",
        },
    )

    documentsLoaded = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "pdfplanner",
            Name:      "documents_loaded_total",
            Help:      "Document loads by result (ok, rejected)",
        },
        []string{"result"},
    )

    extractions = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "pdfplanner",
            Name:      "extractions_total",
            Help:      "Extraction runs by result (success, failed, cancelled)",
        },
        []string{"result"},
    )

    pagesExtracted = prometheus.NewCounter(
        prometheus.CounterOpts{
            Namespace: "pdfplanner",
            Name:      "pages_extracted_total",
            Help:      "Pages written to output documents",
        },
    )
)

func init() {
    registry.MustRegister(thumbLookups, renders, renderLatency, cacheEntries, loaderBatches, documentsLoaded, extractions, pagesExtracted)
}

// Registry exposes the private registry, e.g. for dumping on exit.
func Registry() *prometheus.Registry { return registry }

func CacheHit()  { thumbLookups.WithLabelValues("hit").Inc() }
func CacheMiss() { thumbLookups.WithLabelValues("miss").Inc() }

func SetCacheEntries(n int) { cacheEntries.Set(float64(n)) }

// ObserveRender records one renderer call.
func ObserveRender(result string, dur time.Duration) {
    renders.WithLabelValues(result).Inc()
    if result != "stale" { renderLatency.Observe(dur.Seconds()) }
}

func IncStale()          { renders.WithLabelValues("stale").Inc() }
func IncBatch()          { loaderBatches.Inc() }
func IncPagesExtracted() { pagesExtracted.Inc() }

func IncDocument(result string)   { documentsLoaded.WithLabelValues(result).Inc() }
func IncExtraction(result string) { extractions.WithLabelValues(result).Inc() }

// Summary is a point-in-time read of the counters shown in the status bar.
type Summary struct {
    Hits         float64
    Misses       float64
    Entries      float64
    Failed       float64
    Stale        float64
    PagesWritten float64
}

// Snapshot gathers the registry into a Summary.
func Snapshot() Summary {
    var s Summary
    families, err := registry.Gather()
    if err != nil { return s }
    for _, mf := range families {
        for _, m := range mf.GetMetric() {
            label := ""
            for _, lp := range m.GetLabel() {
                if lp.GetName() == "result" { label = lp.GetValue() }
            }
            switch mf.GetName() {
            case "pdfplanner_thumb_cache_lookups_total":
                if label == "hit" { s.Hits = m.GetCounter().GetValue() }
                if label == "miss" { s.Misses = m.GetCounter().GetValue() }
            case "pdfplanner_renders_total":
                if label == "failed" { s.Failed = m.GetCounter().GetValue() }
                if label == "stale" { s.Stale = m.GetCounter().GetValue() }
            case "pdfplanner_thumb_cache_entries":
                s.Entries = m.GetGauge().GetValue()
            case "pdfplanner_pages_extracted_total":
                s.PagesWritten = m.GetCounter().GetValue()
            }
        }
    }
    return s
}

// HitRatio returns hits/(hits+misses), 0 when nothing was looked up.
func (s Summary) HitRatio() float64 {
    total := s.Hits + s.Misses
    if total == 0 { return 0 }
    return s.Hits / total
}
