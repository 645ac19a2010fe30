package selection

import "github.com/local/pdfplanner/internal/validate"

// FirstN is pages 1..n, clamped to total. Preset ranges are 1-based inclusive.
func FirstN(n, total int) validate.Range {
	return validate.Range{Start: 1, End: min(n, total)}
}

// LastN is the last n pages.
func LastN(n, total int) validate.Range {
	return validate.Range{Start: max(1, total-n+1), End: total}
}

// FirstHalf is pages 1..total/2, at least one page.
func FirstHalf(total int) validate.Range {
	return validate.Range{Start: 1, End: max(1, total/2)}
}

func All(total int) validate.Range {
	return validate.Range{Start: 1, End: total}
}

// Preset names a quick-select range.
type Preset string

const (
	PresetFirst10   Preset = "first10"
	PresetLast10    Preset = "last10"
	PresetFirstHalf Preset = "firsthalf"
	PresetAll       Preset = "all"
)

// Range returns the range of p over total pages; ok is false for unknown
// presets or empty documents.
func (p Preset) Range(total int) (validate.Range, bool) {
	if total <= 0 {
		return validate.Range{}, false
	}
	switch p {
	case PresetFirst10:
		return FirstN(10, total), true
	case PresetLast10:
		return LastN(10, total), true
	case PresetFirstHalf:
		return FirstHalf(total), true
	case PresetAll:
		return All(total), true
	}
	return validate.Range{}, false
}
