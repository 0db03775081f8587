package gglayout

import "math"

// ApplyStructureChanges applies every staged change, in staging order, to
// the committed structure and returns how many were applied. Changes
// stamped with an older generation are dropped.
//
// It runs on the render goroutine, after ApplyMeasureResult.
func (l *Layout) ApplyStructureChanges() int {
	pending := l.changes.drain()
	if len(pending) == 0 {
		return 0
	}

	s := l.structure
	if s == nil {
		s = NewStructure(nil)
		l.mu.Lock()
		l.structure = s
		l.mu.Unlock()
	}
	g, _ := l.currentGeometry()

	var (
		applied int
		resized bool
		stored  bool
		shrink  bool
		resume  bool
	)
	for _, ch := range pending {
		if gen := l.generation.Load(); ch.Stamp != gen {
			l.logger().Debug("gglayout: stale change dropped", "type", ch.Type, "stamp", ch.Stamp, "generation", gen)
			continue
		}

		switch ch.Type {
		case ChangeBackgroundMeasurement:
			if l.applyBatch(s, &g, ch) {
				resized, stored = true, true
			}
		case ChangeVisibility:
			resized = l.applyVisibility(s, &g, ch) || resized
		case ChangeSingleItemUpdate:
			resized = l.applySingleItemUpdate(s, &g, ch) || resized
		case ChangeAdd:
			l.applyAdd(s, ch.StartIndex, ch.Count)
			resized, shrink, resume = true, true, true
		case ChangeRemove:
			l.applyRemove(s, &g, ch.StartIndex, ch.Count)
			resized, shrink, resume = true, true, true
		case ChangeReplace:
			l.applyRemove(s, &g, ch.StartIndex, ch.OldCount)
			l.applyAdd(s, ch.StartIndex, ch.Count)
			resized, shrink, resume = true, true, true
		case ChangeMove:
			l.Invalidate()
		case ChangeReset:
			l.applyReset(s)
		}
		applied++
	}

	if resized {
		l.updateContentSize(s, shrink)
	}
	if stored {
		l.trimWindow()
	}
	if resume && !l.needsMeasure.Load() {
		l.resumeBackground()
	}
	return applied
}

// applyBatch commits background results, correcting their position if the
// slot they were measured for has moved since.
func (l *Layout) applyBatch(s *Structure, g *listGeometry, ch StructureChange) bool {
	cells := make([]*Cell, 0, len(ch.Cells))
	for _, c := range ch.Cells {
		if s.position(c.ControlIndex) < 0 {
			cells = append(cells, c)
		}
	}
	if len(cells) == 0 {
		return false
	}

	origin, originRow := ch.Origin, ch.OriginRow
	if len(cells) < len(ch.Cells) {
		// The head of the batch is already present; its first new cell
		// expected the slot it was placed in.
		origin, originRow = cells[0].Area.Origin(), cells[0].Row
	}

	pos := s.lowerBound(cells[0].ControlIndex)
	cur := g.cursorAt(s, pos)

	dx, dy := cur.X-origin.X, cur.Y-origin.Y
	if math.Abs(dx) > raceEpsilon || math.Abs(dy) > raceEpsilon {
		for _, c := range cells {
			c.Offset(dx, dy)
		}
		l.logger().Debug("gglayout: batch position compensated",
			"start", cells[0].ControlIndex, "dx", dx, "dy", dy)
	}
	if dr := cur.Row - originRow; dr != 0 {
		for _, c := range cells {
			c.Row += dr
		}
	}

	if pos >= s.Len() {
		s.appendCells(cells)
	} else {
		s.insertCells(pos, cells, g.columns)
		g.reflow(s, pos)
	}

	for _, c := range cells {
		l.shifter.store(c)
	}

	first, last := cells[0].ControlIndex, cells[len(cells)-1].ControlIndex
	if int64(last) > l.lastMeasured.Load() {
		l.lastMeasured.Store(int64(last))
	}
	l.gaps = l.gaps.consume(first, last+1)
	return true
}

// applyVisibility collapses or expands the cells of a range. Each run of
// adjacent changed cells moves the lines after it by the extent it gained
// or lost.
func (l *Layout) applyVisibility(s *Structure, g *listGeometry, ch StructureChange) bool {
	collapse := !ch.IsVisible

	var positions []int
	for i := ch.StartIndex; i < ch.StartIndex+ch.Count; i++ {
		pos := s.position(i)
		if pos < 0 || s.At(pos).IsCollapsed == collapse {
			continue
		}
		positions = append(positions, pos)
	}
	if len(positions) == 0 {
		return false
	}

	for start := 0; start < len(positions); {
		end := start + 1
		for end < len(positions) && positions[end] == positions[end-1]+1 {
			end++
		}
		l.toggleGroup(s, g, positions[start:end], collapse)
		start = end
	}
	return true
}

func (l *Layout) toggleGroup(s *Structure, g *listGeometry, group []int, collapse bool) {
	if g.horizontal {
		delta := 0.0
		for _, pos := range group {
			c := s.At(pos)
			old := c.extent(true)
			c.IsCollapsed = collapse
			delta += c.extent(true) - old
		}
		g.shiftLinesAfter(s, group[len(group)-1], delta)
		return
	}

	for i := 0; i < len(group); {
		row := s.At(group[i]).Row
		old := g.lineExtent(s, group[i])
		j := i
		for ; j < len(group) && s.At(group[j]).Row == row; j++ {
			s.At(group[j]).IsCollapsed = collapse
		}
		g.shiftLinesAfter(s, group[i], g.lineExtent(s, group[i])-old)
		i = j
	}
}

// applySingleItemUpdate replaces the measurement of one cell in place and
// moves the lines after it.
func (l *Layout) applySingleItemUpdate(s *Structure, g *listGeometry, ch StructureChange) bool {
	nc := ch.Cell
	if nc == nil {
		return false
	}
	pos := s.position(nc.ControlIndex)
	if pos < 0 {
		l.logger().Debug("gglayout: update for unmeasured item dropped", "index", nc.ControlIndex)
		return false
	}

	c := s.At(pos)
	old := g.lineExtent(s, pos)
	ox, oy := c.Area.Left, c.Area.Top
	c.Measured = nc.Measured
	c.WasMeasured = true
	c.Area = nc.Area.Offset(ox, oy)
	c.Destination = nc.Destination.Offset(ox, oy)
	if nc.View != nil {
		c.View = nc.View
	}
	g.shiftLinesAfter(s, pos, g.lineExtent(s, pos)-old)
	l.shifter.store(c)
	return true
}

// applyAdd shifts the indices of measured items at or after at and records
// the inserted items for background measurement. Insertions past the
// measured end need nothing: background measurement reaches them.
func (l *Layout) applyAdd(s *Structure, at, count int) {
	last := l.LastMeasuredIndex()
	if count <= 0 || at > last {
		return
	}

	l.shifter.insert(at, count, last-at+1)
	cells := s.Cells()
	for _, c := range cells[s.lowerBound(at):] {
		c.ControlIndex += count
	}
	l.lastMeasured.Store(int64(last + count))
	l.gaps = l.gaps.insert(at, count)
}

// applyRemove drops the cells of removed items, shifts later indices down
// and moves the following cells into the freed space.
func (l *Layout) applyRemove(s *Structure, g *listGeometry, at, count int) {
	if count <= 0 {
		return
	}
	last := l.LastMeasuredIndex()
	if at <= last {
		l.shifter.remove(at, count, last-at+1)

		from, to := s.lowerBound(at), s.lowerBound(at+count)
		s.removeCells(from, to-from, g.columns)
		for _, c := range s.Cells()[from:] {
			c.ControlIndex -= count
		}
		g.reflow(s, from)
		l.lastMeasured.Store(int64(last - min(count, last-at+1)))
	}
	l.gaps = l.gaps.remove(at, count)
}

// applyReset empties the structure and asks for a full remeasure.
func (l *Layout) applyReset(s *Structure) {
	s.Clear()
	l.shifter.reset()
	l.gaps = nil
	l.lastMeasured.Store(-1)
	l.Invalidate()
}
