package gglayout

import (
	"sync"

	"github.com/gogpu/gglayout/internal/window"
)

// shiftOp is one insertion or removal recorded instead of rekeying the
// measured-cell window.
type shiftOp struct {
	at, count int
	remove    bool
}

// indexShifter keeps the measured-cell window keyed correctly while item
// indices move. Small shifts rekey the window directly. Shifts affecting
// more items than the threshold are recorded as offset operations and
// translated on lookup; the next write to the window folds them in.
//
// Every window access goes through the shifter lock so a key is never used
// across a rekey.
type indexShifter struct {
	mu        sync.RWMutex
	threshold int
	ops       []shiftOp
	removed   map[int]struct{}
	w         *window.Map[Cell]
}

func newIndexShifter(threshold int, w *window.Map[Cell]) *indexShifter {
	return &indexShifter{threshold: threshold, w: w}
}

// insert records count items inserted at index at. affected is the number
// of measured items at or after at.
func (x *indexShifter) insert(at, count, affected int) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if affected > x.threshold {
		x.ops = append(x.ops, shiftOp{at: at, count: count})
		return
	}
	x.compactLocked()
	x.w.Rekey(func(k int) (int, bool) {
		if k >= at {
			return k + count, true
		}
		return k, true
	}, setControlIndex)
}

// remove records count items removed at index at.
func (x *indexShifter) remove(at, count, affected int) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if affected > x.threshold {
		if x.removed == nil {
			x.removed = make(map[int]struct{})
		}
		for i := at; i < at+count; i++ {
			if key, ok := x.storedLocked(i); ok {
				x.removed[key] = struct{}{}
			}
		}
		x.ops = append(x.ops, shiftOp{at: at, count: count, remove: true})
		return
	}
	x.compactLocked()
	x.w.Rekey(func(k int) (int, bool) {
		switch {
		case k >= at+count:
			return k - count, true
		case k >= at:
			return 0, false
		}
		return k, true
	}, setControlIndex)
}

func setControlIndex(index int, c *Cell) {
	c.ControlIndex = index
}

// currentLocked maps a window key to the current item index.
func (x *indexShifter) currentLocked(key int) (int, bool) {
	if _, gone := x.removed[key]; gone {
		return 0, false
	}
	idx := key
	for _, op := range x.ops {
		switch {
		case op.remove && idx >= op.at+op.count:
			idx -= op.count
		case op.remove && idx >= op.at:
			return 0, false
		case !op.remove && idx >= op.at:
			idx += op.count
		}
	}
	return idx, true
}

// storedLocked maps a current item index to its window key. It reports
// false for items inserted after the key was stored.
func (x *indexShifter) storedLocked(index int) (int, bool) {
	key := index
	for i := len(x.ops) - 1; i >= 0; i-- {
		op := x.ops[i]
		switch {
		case op.remove && key >= op.at:
			key += op.count
		case !op.remove && key >= op.at+op.count:
			key -= op.count
		case !op.remove && key >= op.at:
			return 0, false
		}
	}
	if _, gone := x.removed[key]; gone {
		return 0, false
	}
	return key, true
}

// compactLocked rekeys the window through the recorded operations.
func (x *indexShifter) compactLocked() {
	if len(x.ops) == 0 {
		return
	}
	x.w.Rekey(x.currentLocked, setControlIndex)
	x.ops = nil
	x.removed = nil
}

// pending returns the number of recorded operations.
func (x *indexShifter) pending() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.ops)
}

// reset drops recorded operations and empties the window.
func (x *indexShifter) reset() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.ops = nil
	x.removed = nil
	x.w.Clear()
}

// store saves a measured cell under its current index.
func (x *indexShifter) store(c *Cell) {
	x.mu.RLock()
	if len(x.ops) == 0 {
		x.w.Set(c.ControlIndex, *c)
		x.mu.RUnlock()
		return
	}
	x.mu.RUnlock()

	x.mu.Lock()
	defer x.mu.Unlock()
	x.compactLocked()
	x.w.Set(c.ControlIndex, *c)
}

// get returns the cached cell for the current index.
func (x *indexShifter) get(index int) (Cell, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	key, ok := x.storedLocked(index)
	if !ok {
		return Cell{}, false
	}
	it, ok := x.w.Get(key)
	if !ok {
		return Cell{}, false
	}
	c := it.Value
	c.ControlIndex = index
	return c, true
}

// touch marks the cached cell of index accessed.
func (x *indexShifter) touch(index int, inViewport bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if key, ok := x.storedLocked(index); ok {
		x.w.Touch(key, inViewport)
	}
}

// evict trims the window to limit cells, sparing indices in [lo, hi].
func (x *indexShifter) evict(limit, lo, hi int) int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.w.Evict(limit, func(key int) bool {
		idx, ok := x.currentLocked(key)
		return ok && idx >= lo && idx <= hi
	})
}

// indexRange is a half-open range of item indices.
type indexRange struct {
	start, end int
}

// indexRanges is a sorted set of disjoint ranges of unmeasured indices
// inside the measured prefix of a collection.
type indexRanges []indexRange

// insert shifts the ranges for count items inserted at at and records the
// inserted items as unmeasured.
func (rs indexRanges) insert(at, count int) indexRanges {
	out := make(indexRanges, 0, len(rs)+1)
	for _, r := range rs {
		switch {
		case r.start >= at:
			out = append(out, indexRange{r.start + count, r.end + count})
		case r.end > at:
			out = append(out, indexRange{r.start, r.end + count})
		default:
			out = append(out, r)
		}
	}
	return out.add(indexRange{at, at + count})
}

// remove drops count items at at from the ranges and shifts later ones.
func (rs indexRanges) remove(at, count int) indexRanges {
	end := at + count
	out := make(indexRanges, 0, len(rs))
	for _, r := range rs {
		s, e := r.start, r.end
		// Clip the removed part.
		if s < end && e > at {
			kept := max(at-s, 0) + max(e-end, 0)
			if kept == 0 {
				continue
			}
			s = min(s, at)
			e = s + kept
		} else if s >= end {
			s -= count
			e -= count
		}
		out = append(out, indexRange{s, e})
	}
	return out.normalize()
}

// add merges r into the set.
func (rs indexRanges) add(r indexRange) indexRanges {
	if r.end <= r.start {
		return rs
	}
	return append(rs, r).normalize()
}

// consume removes [start, end) from the set.
func (rs indexRanges) consume(start, end int) indexRanges {
	out := make(indexRanges, 0, len(rs))
	for _, r := range rs {
		if r.end <= start || r.start >= end {
			out = append(out, r)
			continue
		}
		if r.start < start {
			out = append(out, indexRange{r.start, start})
		}
		if r.end > end {
			out = append(out, indexRange{end, r.end})
		}
	}
	return out
}

func (rs indexRanges) normalize() indexRanges {
	if len(rs) < 2 {
		return rs
	}
	sorted := append(indexRanges(nil), rs...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].start < sorted[j-1].start; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	out := sorted[:1]
	for _, r := range sorted[1:] {
		last := &out[len(out)-1]
		if r.start <= last.end {
			last.end = max(last.end, r.end)
			continue
		}
		out = append(out, r)
	}
	return out
}
