package ilsd

// Default_register_size is the default count of slots held by a
// Predictor (CTrackDetector::DEFAULT_POS_AND_HEIGHT_REGISTER_SIZE in the
// original), grounded on
// original_source/src/ASDetector/ctrackdetector.cpp.
const Default_register_size = 8

// entry is one slot of a Predictor's ring: a value and whether it was
// judged reliable when it was recorded.
type entry struct {
	value    float64
	reliable bool
}

// Predictor is a fixed-size register of the last K reliable positions (or
// elevations), queried after each scan to produce a local trend — spec.md
// §4.4. It runs independently for along-stroke position (deviation) and
// for elevation (slope); the tracker owns one of each.
type Predictor struct {
	slots []entry
	size  int
}

// NewPredictor creates an empty register of the given size (0 uses the
// default of 8).
func NewPredictor(size int) *Predictor {
	if size <= 0 {
		size = Default_register_size
	}
	return &Predictor{size: size}
}

// Update shifts the register by one slot and inserts the new entry.
func (p *Predictor) Update(value float64, reliable bool) {
	p.slots = append(p.slots, entry{value: value, reliable: reliable})
	if len(p.slots) > p.size {
		p.slots = p.slots[len(p.slots)-p.size:]
	}
}

// Reset clears the register.
func (p *Predictor) Reset() { p.slots = p.slots[:0] }

// Trend returns the current predicted slope (spec.md §4.4):
//   - 0 if fewer than two entries are reliable.
//   - the slope between the first and last reliable entries if exactly two.
//   - for three or more: the slope between first and last; if every
//     intermediate reliable entry's slope-to-last deviates from that
//     overall trend in the same direction, the last such deviating slope
//     is returned instead (it catches the onset of curvature); otherwise
//     the overall trend is returned.
func (p *Predictor) Trend() float64 {
	reliable := make([]int, 0, len(p.slots))
	for i, s := range p.slots {
		if s.reliable {
			reliable = append(reliable, i)
		}
	}
	if len(reliable) < 2 {
		return 0
	}
	first := p.slots[reliable[0]].value
	last := p.slots[reliable[len(reliable)-1]].value
	span := float64(reliable[len(reliable)-1] - reliable[0])
	overall := (last - first) / span

	if len(reliable) == 2 {
		return overall
	}

	sign := 0
	var deviating float64
	found := false
	for k := 1; k < len(reliable)-1; k++ {
		idx := reliable[k]
		d := float64(reliable[len(reliable)-1] - idx)
		if d == 0 {
			continue
		}
		slope := (last - p.slots[idx].value) / d
		diff := slope - overall
		var s int
		switch {
		case diff > 0:
			s = 1
		case diff < 0:
			s = -1
		default:
			s = 0
		}
		if s == 0 {
			return overall
		}
		if sign == 0 {
			sign = s
		} else if s != sign {
			return overall
		}
		deviating = slope
		found = true
	}
	if found {
		return deviating
	}
	return overall
}
