package gglayout

import (
	"context"
	"fmt"
	"math"
)

// initialMeasureCount estimates how many items the first pass measures for
// a visible extent of the given length.
func initialMeasureCount(extent, scale float64, count int) int {
	n := maxInitialMeasure
	if !math.IsInf(extent, 0) && extent > 0 {
		perItem := DefaultEstimatedItemSize * scale
		n = int(math.Ceil(extent/perItem)) * 3
		n = min(max(n, minInitialMeasure), maxInitialMeasure)
	}
	return min(n, count)
}

// measureVisibleArea returns the area, in layout coordinates, that the first
// pass of a virtualized layout must cover.
func (l *Layout) measureVisibleArea(rect Rect, scale float64) Rect {
	area := rect
	if l.opts.viewport != nil {
		vp := l.opts.viewport.VisibleArea()
		area = XYWH(rect.Left, rect.Top, vp.Width(), vp.Height())
	}
	m := l.opts.virtualisationInflated * scale
	return area.Inflate(m, m)
}

// measureList measures the items the viewport shows and estimates the
// size of the rest. Background measurement picks up from where it stops.
func (l *Layout) measureList(rect Rect, scale float64, count int) (*Structure, ScaledSize, error) {
	s := NewStructure(nil)
	if count == 0 {
		return s, emptyContainerSize(rect, scale), nil
	}

	g := l.geometry(rect, scale)
	visible := l.measureVisibleArea(rect, scale)
	extent := visible.Height()
	if g.horizontal {
		extent = visible.Width()
	}
	limit := initialMeasureCount(extent, scale, count)

	var template View
	if l.opts.recycling == RecyclingEnabled {
		template = l.provider.template()
		defer l.provider.releaseTemplate(template)
	}

	cur := g.start()
	for i := range limit {
		// Stop at the first slot past the visible area, keeping at least one.
		if s.Len() > 0 && g.pastArea(&cur, visible) {
			break
		}
		c, err := l.placeCell(i, &cur, template, &g, scale)
		if err != nil {
			return nil, EmptySize(scale), fmt.Errorf("%w: index %d", err, i)
		}
		s.appendCells([]*Cell{c})
		l.shifter.store(c)
	}

	return s, l.estimateSize(s, &g, count, rect, scale), nil
}

// estimateSize returns the content size for count items when s holds the
// measured prefix: measured lines at their real extent, the rest at the
// average line extent.
func (l *Layout) estimateSize(s *Structure, g *listGeometry, count int, rect Rect, scale float64) ScaledSize {
	main := l.estimateMainExtent(s, g, count)

	var cross float64
	if g.horizontal {
		cross = rect.Height()
		if math.IsInf(cross, 0) {
			cross = 0
			for _, c := range s.Cells() {
				if !c.Measured.IsEmpty() {
					cross = max(cross, c.Measured.Pixels.Height)
				}
			}
		}
		return SizeFromPixels(main, cross, scale)
	}

	cross = rect.Width()
	if math.IsInf(cross, 0) {
		cross = 0
		for _, c := range s.Cells() {
			if !c.Measured.IsEmpty() {
				cross = max(cross, c.Measured.Pixels.Width)
			}
		}
	}
	return SizeFromPixels(cross, main, scale)
}

// estimateMainExtent returns the main-axis content extent for count items.
func (l *Layout) estimateMainExtent(s *Structure, g *listGeometry, count int) float64 {
	end := g.end(s)
	measured := s.Len()
	if measured == 0 || measured >= count {
		return end
	}
	lines := g.lines(measured)
	avg := (end + g.spacing) / float64(lines)
	return avg*float64(g.lines(count)) - g.spacing
}

// MeasureAdditionalItems synchronously measures up to batch items past the
// measured end when the last visible index is within ahead items of it.
// It is used when scrolling outruns background measurement and runs on the
// render goroutine. It returns the number of items measured.
func (l *Layout) MeasureAdditionalItems(batch, ahead int) int {
	if l.closed.Load() || batch <= 0 {
		return 0
	}
	s := l.structure
	if s == nil {
		return 0
	}
	last := l.LastMeasuredIndex()
	count := l.provider.count()
	if last+1 >= count || l.LastVisibleIndex()+ahead < last {
		return 0
	}

	g, scale := l.currentGeometry()
	var template View
	if l.opts.recycling == RecyclingEnabled {
		template = l.provider.template()
		defer l.provider.releaseTemplate(template)
	}

	cur := g.cursorAt(s, s.Len())
	measured := 0
	for i := last + 1; i < count && measured < batch; i++ {
		c, err := l.placeCell(i, &cur, template, &g, scale)
		if err != nil {
			l.logger().Warn("gglayout: additional measurement stopped", "index", i, "err", err)
			break
		}
		s.appendCells([]*Cell{c})
		l.shifter.store(c)
		l.lastMeasured.Store(int64(i))
		measured++
	}

	if measured > 0 {
		l.updateContentSize(s, false)
		l.resumeBackground()
	}
	return measured
}

// RemeasureItem measures item index again and stages the new size. Cells
// after it move when the update is applied.
func (l *Layout) RemeasureItem(index int) error {
	if l.closed.Load() {
		return ErrLayoutClosed
	}
	if index < 0 || index >= l.provider.count() {
		return fmt.Errorf("%w: index %d", ErrNoChild, index)
	}

	g, scale := l.currentGeometry()
	g.origin = Point{}

	var template View
	if l.opts.recycling == RecyclingEnabled {
		template = l.provider.template()
		defer l.provider.releaseTemplate(template)
	}

	cur := g.start()
	c, err := l.placeCell(index, &cur, template, &g, scale)
	if err != nil {
		return fmt.Errorf("remeasure %d: %w", index, err)
	}

	l.changes.stage(StructureChange{
		Type:       ChangeSingleItemUpdate,
		Stamp:      l.generation.Load(),
		StartIndex: index,
		Count:      1,
		Cell:       c,
	})
	l.redraw()
	return nil
}

// StartBackgroundMeasurement measures items from startFrom on in the
// background, staging results in batches. It is a no-op when a measurement
// of the current generation already covers startFrom.
//
// It reads the latest measured structure and must be called from the
// goroutine that owns it.
func (l *Layout) StartBackgroundMeasurement(ctx context.Context, constraints Rect, scale float64, startFrom int) {
	if l.closed.Load() {
		return
	}
	l.startBackground(ctx, l.LatestMeasuredStructure(), constraints, scale, startFrom, nil)
}
