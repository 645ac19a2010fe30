package session

import (
	"github.com/local/pdfplanner/internal/extract"
	"github.com/local/pdfplanner/internal/gridload"
	"github.com/local/pdfplanner/internal/selection"
)

// Event is anything the host reports to the session. Dispatch is the only
// place events are applied.
type Event interface{ event() }

type (
	FileSelected     struct{ Path string }
	ToggledPage      struct{ Page int }
	SelectedAll      struct{}
	ClearedSelection struct{}
	// RangeChosen selects a 1-based inclusive range, replacing the selection.
	RangeChosen  struct{ Start, End int }
	PresetChosen struct{ Preset selection.Preset }
	Rotated      struct{ Page, Delta int }
	// ViewportChanged carries the visible cells, 0-based inclusive.
	ViewportChanged  struct{ First, Last int }
	Resized          struct{ Width int }
	ExtractRequested struct{ OutputPath string }
	ExtractCancelled struct{}
	SourceChanged    struct {
		Path    string
		Removed bool
	}
	OpenOutputFolder struct{}

	// LoaderTick and ExtractTick are scheduled by the host when an Effect asks
	// for another loader or extraction step.
	LoaderTick  struct{}
	ExtractTick struct{}
)

func (FileSelected) event()     {}
func (ToggledPage) event()      {}
func (SelectedAll) event()      {}
func (ClearedSelection) event() {}
func (RangeChosen) event()      {}
func (PresetChosen) event()     {}
func (Rotated) event()          {}
func (ViewportChanged) event()  {}
func (Resized) event()          {}
func (ExtractRequested) event() {}
func (ExtractCancelled) event() {}
func (SourceChanged) event()    {}
func (OpenOutputFolder) event() {}
func (LoaderTick) event()       {}
func (ExtractTick) event()      {}

// Progress is the state of a running extraction.
type Progress struct {
	Done  int
	Total int
}

// Effect tells the host what happened and what to schedule next.
type Effect struct {
	// Loaded is set when a new document replaced the previous one.
	Loaded bool
	// ScheduleLoader asks for a LoaderTick after yielding to the event loop.
	ScheduleLoader bool
	// ScheduleExtract asks for an ExtractTick after yielding to the event loop.
	ScheduleExtract bool

	Rendered []gridload.Cell
	Failed   []gridload.Cell
	Progress *Progress
	Finished *extract.Result

	Notice string
	Err    error
}
