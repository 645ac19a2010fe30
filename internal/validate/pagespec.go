package validate

import (
	"sort"
	"strconv"
	"strings"

	"github.com/local/pdfplanner/internal/apperr"
)

// ParsePageSpec parses a comma separated list of 1-based pages and inclusive
// ranges ("1-3,7,10-") into sorted, de-duplicated 0-based page indices.
// An open-ended range runs to total.
func ParsePageSpec(spec string, total int) ([]int, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, apperr.Invalid("pages", apperr.ReasonBadPageSpec, "Page list is empty")
	}

	seen := make(map[int]struct{})
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		var start, end int
		var err error
		if lo, hi, isRange := strings.Cut(part, "-"); isRange {
			if start, err = atoiField(lo, 1); err != nil {
				return nil, err
			}
			if end, err = atoiField(hi, total); err != nil {
				return nil, err
			}
		} else {
			if start, err = atoiField(part, 0); err != nil {
				return nil, err
			}
			end = start
		}

		if err := PageRange(start, end, total); err != nil {
			return nil, err
		}
		for p := start; p <= end; p++ {
			seen[p-1] = struct{}{}
		}
	}

	if len(seen) == 0 {
		return nil, apperr.Invalid("pages", apperr.ReasonBadPageSpec, "Page list is empty")
	}

	out := make([]int, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Ints(out)
	return out, nil
}

func atoiField(s string, def int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" && def > 0 {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, apperr.Invalid("pages", apperr.ReasonBadPageSpec, "Page numbers must be integers: %q", s)
	}
	return n, nil
}

// ParseRotations parses "1=90,4=270" (1-based page = degrees) into 0-based overrides.
func ParseRotations(spec string, total int) (map[int]int, error) {
	out := make(map[int]int)
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return out, nil
	}
	for _, part := range strings.Split(spec, ",") {
		page, deg, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			return nil, apperr.Invalid("rotate", apperr.ReasonBadPageSpec, "Expected page=degrees, got %q", part)
		}
		p, err := strconv.Atoi(strings.TrimSpace(page))
		if err != nil {
			return nil, apperr.Invalid("rotate", apperr.ReasonBadPageSpec, "Page numbers must be integers: %q", page)
		}
		if p < 1 || p > total {
			return nil, apperr.Invalid("rotate", apperr.ReasonBadPageSpec, "Page %d is outside 1-%d", p, total)
		}
		d, err := strconv.Atoi(strings.TrimSpace(deg))
		if err != nil || d%90 != 0 {
			return nil, apperr.Invalid("rotate", apperr.ReasonBadRotation, "Rotation must be a multiple of 90, got %q", deg)
		}
		out[p-1] = ((out[p-1]+d)%360 + 360) % 360
	}
	return out, nil
}
