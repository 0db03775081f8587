package gglayout

import (
	"context"
	"fmt"
	"math"
)

// Measure measures the layout against constraints and returns its size.
// Positions are in device pixels; scale converts option units to pixels.
//
// The new structure is committed by the next ApplyMeasureResult. Every
// measurement pass starts a new generation, so changes staged for the
// previous one are dropped.
//
// If the provider yields no view for an index inside the collection, the
// pass is abandoned and an empty size is returned.
func (l *Layout) Measure(constraints Rect, scale float64) ScaledSize {
	if l.closed.Load() {
		return EmptySize(scale)
	}
	if scale <= 0 {
		scale = 1
	}

	l.cancelBackground()
	l.generation.Add(1)
	count := l.provider.count()

	var (
		s    *Structure
		size ScaledSize
		err  error
	)
	if l.opts.strategy == MeasureVisible {
		l.shifter.reset()
		s, size, err = l.measureList(constraints, scale, count)
	} else {
		s, size, err = l.measureStack(constraints, scale, count)
	}
	if err != nil {
		l.logger().Warn("gglayout: measurement abandoned", "err", err)
		return EmptySize(scale)
	}

	last := -1
	if c := s.Last(); c != nil {
		last = c.ControlIndex
	}

	l.mu.Lock()
	l.structureMeasured = s
	l.pendingLast = last
	l.measured = size
	l.constraints = constraints
	l.scale = scale
	l.mu.Unlock()
	l.needsMeasure.Store(false)

	if l.opts.strategy == MeasureVisible && s.Len() < count {
		l.startBackground(context.Background(), s, constraints, scale, s.Len(), nil)
	}
	return size
}

// emptyContainerSize is the size of a layout without children: its own
// constraints where they are finite.
func emptyContainerSize(rect Rect, scale float64) ScaledSize {
	w, h := rect.Width(), rect.Height()
	if math.IsInf(w, 0) || w < 0 {
		w = 0
	}
	if math.IsInf(h, 0) || h < 0 {
		h = 0
	}
	return SizeFromPixels(w, h, scale)
}

// buildStackRows assigns every index a row and column.
func (l *Layout) buildStackRows(count int) [][]*Cell {
	var rows [][]*Cell
	var row []*Cell
	split := l.opts.split
	for i := range count {
		if len(row) > 0 {
			full := false
			switch l.opts.layoutType {
			case Column:
				full = len(row) >= split
			case Row:
				full = split > 0 && len(row) >= split
			}
			if full || l.opts.isLineBreak(i) {
				rows = append(rows, row)
				row = nil
			}
		}
		row = append(row, &Cell{ControlIndex: i, Row: len(rows), Column: len(row)})
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return rows
}

type placedCell struct {
	c    *Cell
	h, v Alignment
}

// measureStack measures every child (or the first one, for MeasureFirst)
// and builds the full structure.
func (l *Layout) measureStack(rect Rect, scale float64, count int) (*Structure, ScaledSize, error) {
	if count == 0 {
		return NewStructure(nil), emptyContainerSize(rect, scale), nil
	}

	rows := l.buildStackRows(count)

	var template View
	if l.opts.recycling == RecyclingEnabled {
		template = l.provider.template()
		defer l.provider.releaseTemplate(template)
	}

	sp := math.Round(l.opts.spacing * scale)
	split := l.opts.split
	horizontal := l.opts.layoutType == Row

	var (
		first          *ScaledSize
		firstH, firstV Alignment
		second         []placedCell
		stackW, stackH float64
	)
	top := rect.Top

	for r, row := range rows {
		if r > 0 {
			top += sp
			stackH += sp
		}

		cols := len(row)
		if !l.opts.dynamicColumns && cols < split {
			cols = split
		}
		colW := math.Inf(1)
		if !horizontal {
			colW = columnWidth(rect.Width(), cols, sp)
		}
		fullRow := split > 0 && len(row) == split

		x := rect.Left
		rowH, rowW := 0.0, 0.0
		placed := make([]placedCell, 0, len(row))

		for col, c := range row {
			if col > 0 {
				x += sp
				rowW += sp
			}

			var (
				size ScaledSize
				h, v Alignment
			)
			if l.opts.strategy == MeasureFirst && first != nil && fullRow {
				size, h, v = *first, firstH, firstV
			} else {
				view := l.provider.viewFor(c.ControlIndex, template, 0, true)
				if view == nil {
					return nil, EmptySize(scale), fmt.Errorf("%w: index %d", ErrNoChild, c.ControlIndex)
				}
				availW, availH := colW, math.Inf(1)
				if horizontal {
					availW = max(rect.Right-x, 0)
					availH = max(rect.Bottom-top, 0)
				}
				size = l.measureView(view, availW, availH, scale, c.ControlIndex)
				h, v = alignmentOf(view)
				if template == nil {
					c.View = view
				}
				if first == nil {
					first, firstH, firstV = &size, h, v
				}
			}

			c.Measured = size
			c.WasMeasured = true

			var w, ht float64
			if !size.IsEmpty() {
				w, ht = size.Pixels.Width, size.Pixels.Height
			}
			slotW := colW
			if math.IsInf(colW, 1) {
				slotW = w
			}
			c.Area = Rect{Left: x, Top: top, Right: x + slotW, Bottom: top}
			placed = append(placed, placedCell{c: c, h: h, v: v})

			rowH = max(rowH, ht)
			x += slotW
			rowW += slotW
		}

		for _, p := range placed {
			p.c.Area.Bottom = top + rowH
			if p.c.Measured.IsEmpty() {
				p.c.Destination = Rect{Left: p.c.Area.Left, Top: top, Right: p.c.Area.Left, Bottom: top}
				continue
			}
			p.c.Destination = arrange(p.c.Area, p.c.Measured.Pixels, p.h, p.v)
			// Fill across an unbounded width is resolved once the widest row is known.
			if !horizontal && p.h == AlignFill && math.IsInf(colW, 1) {
				second = append(second, p)
			}
		}

		top += rowH
		stackH += rowH
		stackW = max(stackW, rowW)
	}

	if l.opts.fillH && !math.IsInf(rect.Width(), 0) {
		stackW = rect.Width()
	}
	if l.opts.fillV && !math.IsInf(rect.Height(), 0) {
		stackH = rect.Height()
	}

	for _, p := range second {
		p.c.Area.Right = p.c.Area.Left + stackW
		p.c.Destination = arrange(p.c.Area, p.c.Measured.Pixels, p.h, p.v)
	}

	return NewStructure(rows), SizeFromPixels(stackW, stackH, scale), nil
}
