// Package selection holds which pages of the loaded document are selected for
// extraction and the rotation override of each page.
package selection

import (
	"fmt"
	"sort"

	"github.com/local/pdfplanner/internal/apperr"
	"github.com/local/pdfplanner/internal/validate"
)

// PageRotation is one entry of an extraction snapshot.
type PageRotation struct {
	Page     int // 0-based source page
	Rotation int // override in {0, 90, 180, 270}
}

// Snapshot is the selected pages in ascending source order with their
// overrides. It is a copy; later edits to the State do not affect it.
type Snapshot []PageRotation

// Pages returns the 0-based page indices of the snapshot.
func (s Snapshot) Pages() []int {
	out := make([]int, len(s))
	for i, pr := range s {
		out[i] = pr.Page
	}
	return out
}

// State is the selection and rotation overrides for one document.
// Rotation overrides are kept for unselected pages too, so deselecting and
// reselecting a page does not lose its rotation.
type State struct {
	pageCount int
	selected  map[int]struct{}
	rotations map[int]int
}

// New returns an empty State for a document of pageCount pages.
func New(pageCount int) *State {
	s := &State{}
	s.Reset(pageCount)
	return s
}

// Reset clears selection and rotations and rebinds to a new page count.
func (s *State) Reset(pageCount int) {
	if pageCount < 0 {
		pageCount = 0
	}
	s.pageCount = pageCount
	s.selected = make(map[int]struct{})
	s.rotations = make(map[int]int)
}

// PageCount returns the page count the state is bound to.
func (s *State) PageCount() int { return s.pageCount }

func (s *State) check(page int) error {
	if page < 0 || page >= s.pageCount {
		return fmt.Errorf("page %d of %d: %w", page+1, s.pageCount, apperr.ErrOutOfRange)
	}
	return nil
}

// Toggle flips the selection of page and reports the new state.
func (s *State) Toggle(page int) (bool, error) {
	if err := s.check(page); err != nil {
		return false, err
	}
	if _, ok := s.selected[page]; ok {
		delete(s.selected, page)
		return false, nil
	}
	s.selected[page] = struct{}{}
	return true, nil
}

// SetSelected selects or deselects page.
func (s *State) SetSelected(page int, on bool) error {
	if err := s.check(page); err != nil {
		return err
	}
	if on {
		s.selected[page] = struct{}{}
	} else {
		delete(s.selected, page)
	}
	return nil
}

// SelectAll selects every page.
func (s *State) SelectAll() {
	for i := 0; i < s.pageCount; i++ {
		s.selected[i] = struct{}{}
	}
}

// Clear deselects every page. Rotation overrides are kept.
func (s *State) Clear() {
	s.selected = make(map[int]struct{})
}

// SelectRange replaces the selection with the 1-based inclusive range.
func (s *State) SelectRange(start, end int) error {
	if err := validate.PageRange(start, end, s.pageCount); err != nil {
		return err
	}
	s.Clear()
	for p := start - 1; p < end; p++ {
		s.selected[p] = struct{}{}
	}
	return nil
}

// SetRotation adds delta (a multiple of 90, may be negative) to the override of
// page and returns the resulting override.
func (s *State) SetRotation(page, delta int) (int, error) {
	if err := s.check(page); err != nil {
		return 0, err
	}
	if delta%90 != 0 {
		return 0, apperr.Invalid("rotation", apperr.ReasonBadRotation, "Rotation must be a multiple of 90, got %d", delta)
	}
	r := (((s.rotations[page] + delta) % 360) + 360) % 360
	if r == 0 {
		delete(s.rotations, page)
	} else {
		s.rotations[page] = r
	}
	return r, nil
}

// Rotation returns the override of page; 0 when absent.
func (s *State) Rotation(page int) int {
	return s.rotations[page]
}

// IsSelected reports whether page is selected.
func (s *State) IsSelected(page int) bool {
	_, ok := s.selected[page]
	return ok
}

// Count returns the number of selected pages.
func (s *State) Count() int { return len(s.selected) }

// Selected returns the selected pages in ascending order.
func (s *State) Selected() []int {
	out := make([]int, 0, len(s.selected))
	for p := range s.selected {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}

// Snapshot returns the selected pages with their overrides, ascending by page
// regardless of the order they were selected in.
func (s *State) Snapshot() Snapshot {
	pages := s.Selected()
	out := make(Snapshot, len(pages))
	for i, p := range pages {
		out[i] = PageRotation{Page: p, Rotation: s.rotations[p]}
	}
	return out
}
