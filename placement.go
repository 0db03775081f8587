package gglayout

import "math"

// listGeometry is the slot grid used by virtualized measurement. Slots are
// laid out from origin: Column layouts fill rows of columns fixed-width
// slots top to bottom, Row layouts place cells left to right in one row.
type listGeometry struct {
	origin      Point
	colWidth    float64
	crossExtent float64
	spacing     float64
	columns     int
	horizontal  bool
}

func (l *Layout) geometry(rect Rect, scale float64) listGeometry {
	sp := math.Round(l.opts.spacing * scale)
	g := listGeometry{
		origin:     rect.Origin(),
		spacing:    sp,
		columns:    l.opts.columns(),
		horizontal: l.opts.horizontal(),
	}
	if g.horizontal {
		g.crossExtent = rect.Height()
	} else {
		g.colWidth = columnWidth(rect.Width(), g.columns, sp)
	}
	return g
}

// currentGeometry returns the geometry of the last measurement pass.
func (l *Layout) currentGeometry() (listGeometry, float64) {
	l.mu.Lock()
	rect, scale := l.constraints, l.scale
	l.mu.Unlock()
	return l.geometry(rect, scale), scale
}

func columnWidth(width float64, columns int, spacing float64) float64 {
	if math.IsInf(width, 1) {
		return width
	}
	return max(math.Round((width-float64(columns-1)*spacing)/float64(columns)), 0)
}

// cursor is the slot the next cell goes to.
type cursor struct {
	X, Y     float64
	Row, Col int
	// LineExtent is the tallest cell so far in the current row.
	LineExtent float64
}

func (g *listGeometry) start() cursor {
	return cursor{X: g.origin.X, Y: g.origin.Y}
}

// advance moves cur past c.
func (g *listGeometry) advance(cur *cursor, c *Cell) {
	if g.horizontal {
		cur.X += c.extent(true) + g.spacing
		cur.Col++
		return
	}
	cur.LineExtent = max(cur.LineExtent, c.extent(false))
	cur.Col++
	if cur.Col >= g.columns {
		cur.Y += cur.LineExtent + g.spacing
		cur.X = g.origin.X
		cur.Col = 0
		cur.Row++
		cur.LineExtent = 0
		return
	}
	cur.X += g.colWidth + g.spacing
}

// cursorAfter returns the slot that follows the cell at position pos,
// ignoring every cell after it.
func (g *listGeometry) cursorAfter(s *Structure, pos int) cursor {
	c := s.At(pos)
	if c == nil {
		return g.start()
	}
	if g.horizontal {
		return cursor{
			X:   c.Area.Left + c.extent(true) + g.spacing,
			Y:   g.origin.Y,
			Row: c.Row,
			Col: c.Column + 1,
		}
	}

	ext := 0.0
	for _, rc := range s.GetRow(c.Row) {
		if rc.Column > c.Column {
			break
		}
		ext = max(ext, rc.extent(false))
	}
	top := c.Area.Top
	if c.Column+1 >= g.columns {
		return cursor{X: g.origin.X, Y: top + ext + g.spacing, Row: c.Row + 1}
	}
	return cursor{
		X:          g.origin.X + float64(c.Column+1)*(g.colWidth+g.spacing),
		Y:          top,
		Row:        c.Row,
		Col:        c.Column + 1,
		LineExtent: ext,
	}
}

// cursorAt returns the slot where a cell inserted at position pos goes.
func (g *listGeometry) cursorAt(s *Structure, pos int) cursor {
	if pos <= 0 {
		return g.start()
	}
	return g.cursorAfter(s, pos-1)
}

// end returns the main-axis end of the measured content relative to origin.
func (g *listGeometry) end(s *Structure) float64 {
	if s.Len() == 0 {
		return 0
	}
	cur := g.cursorAfter(s, s.Len()-1)
	if g.horizontal {
		return cur.X - g.spacing - g.origin.X
	}
	if cur.Col == 0 {
		return cur.Y - g.spacing - g.origin.Y
	}
	return cur.Y + cur.LineExtent - g.origin.Y
}

// lines returns how many main-axis lines n items occupy.
func (g *listGeometry) lines(n int) int {
	if g.horizontal {
		return n
	}
	return (n + g.columns - 1) / g.columns
}

// reflow moves every cell from position pos on to the slot the cursor
// assigns it, keeping each destination's offset inside its slot. Rows must
// already be grouped.
func (g *listGeometry) reflow(s *Structure, pos int) {
	cur := g.cursorAt(s, pos)
	cells := s.Cells()
	for i := max(pos, 0); i < len(cells); i++ {
		c := cells[i]
		dx, dy := cur.X-c.Area.Left, cur.Y-c.Area.Top
		if dx != 0 || dy != 0 {
			c.Offset(dx, dy)
		}
		g.advance(&cur, c)
	}
}

// shiftLinesAfter moves every cell on a later main-axis line than the cell at
// pos by delta.
func (g *listGeometry) shiftLinesAfter(s *Structure, pos int, delta float64) {
	if delta == 0 {
		return
	}
	cells := s.Cells()
	if g.horizontal {
		for _, c := range cells[pos+1:] {
			c.Offset(delta, 0)
		}
		return
	}
	row := cells[pos].Row
	for r := row + 1; r < s.MaxRows(); r++ {
		for _, c := range s.GetRow(r) {
			c.Offset(0, delta)
		}
	}
}

// lineExtent returns the main-axis extent of the line holding the cell at pos.
func (g *listGeometry) lineExtent(s *Structure, pos int) float64 {
	c := s.At(pos)
	if g.horizontal {
		return c.extent(true)
	}
	ext := 0.0
	for _, rc := range s.GetRow(c.Row) {
		ext = max(ext, rc.extent(false))
	}
	return ext
}

// placeCell measures item index into the slot at cur and advances cur.
func (l *Layout) placeCell(index int, cur *cursor, template View, g *listGeometry, scale float64) (*Cell, error) {
	v := l.provider.viewFor(index, template, 0, true)
	if v == nil {
		return nil, ErrNoChild
	}

	avail := g.available(cur)
	size := l.measureView(v, avail.Width(), avail.Height(), scale, index)
	h, va := alignmentOf(v)

	c := &Cell{
		ControlIndex: index,
		Row:          cur.Row,
		Column:       cur.Col,
		Measured:     size,
		WasMeasured:  true,
	}
	if template == nil {
		c.View = v
	}
	c.Area = g.slot(cur, size)
	c.Destination = c.Area
	if !size.IsEmpty() {
		c.Destination = arrange(c.Area, size.Pixels, h, va)
	}

	g.advance(cur, c)
	return c, nil
}

// reuseCell places item index at cur from its entry in the measured-cell
// window, without asking the provider or the measurer. It reports false when
// the window has no entry or the entry was measured for a different slot.
func (l *Layout) reuseCell(index int, cur *cursor, g *listGeometry) (*Cell, bool) {
	cached, ok := l.shifter.get(index)
	if !ok || !cached.WasMeasured {
		return nil, false
	}
	area := g.slot(cur, cached.Measured)
	if area.Width() != cached.Area.Width() || area.Height() != cached.Area.Height() {
		return nil, false
	}

	c := cached.Clone()
	c.Row, c.Column = cur.Row, cur.Col
	c.Destination = cached.Destination.Offset(area.Left-cached.Area.Left, area.Top-cached.Area.Top)
	c.Area = area
	c.IsVisible, c.WasLastDrawn = false, false
	g.advance(cur, c)
	return c, true
}

// available is the space offered to the cell at cur: the slot width and an
// unbounded height for columns, the cross extent for rows.
func (g *listGeometry) available(cur *cursor) Rect {
	if g.horizontal {
		return Rect{Left: cur.X, Top: cur.Y, Right: math.Inf(1), Bottom: cur.Y + g.crossExtent}
	}
	return Rect{Left: cur.X, Top: cur.Y, Right: cur.X + g.colWidth, Bottom: math.Inf(1)}
}

// pastArea reports whether the slot at cur starts beyond the main-axis end
// of area, so that no cell placed there can intersect it.
func (g *listGeometry) pastArea(cur *cursor, area Rect) bool {
	if g.horizontal {
		return cur.X > area.Right
	}
	return cur.Y > area.Bottom
}

// slot is the area a cell of the given size takes at cur. Empty cells take
// no space.
func (g *listGeometry) slot(cur *cursor, size ScaledSize) Rect {
	if size.IsEmpty() {
		return Rect{Left: cur.X, Top: cur.Y, Right: cur.X, Bottom: cur.Y}
	}
	slot := g.available(cur)
	if g.horizontal {
		slot.Right = cur.X + size.Pixels.Width
		if math.IsInf(g.crossExtent, 1) {
			slot.Bottom = cur.Y + size.Pixels.Height
		}
	} else {
		slot.Bottom = cur.Y + size.Pixels.Height
		if math.IsInf(g.colWidth, 1) {
			slot.Right = cur.X + size.Pixels.Width
		}
	}
	return slot
}

func alignmentOf(v View) (Alignment, Alignment) {
	if a, ok := v.(Aligned); ok {
		return a.Alignment()
	}
	return AlignStart, AlignStart
}

// measureView calls the measurer, turning a panic into an empty size.
func (l *Layout) measureView(v View, width, height, scale float64, index int) (size ScaledSize) {
	defer func() {
		if r := recover(); r != nil {
			l.logger().Warn("gglayout: cell measurement panicked", "index", index, "panic", r)
			size = EmptySize(scale)
		}
	}()
	return l.measurer.Measure(v, width, height, scale)
}
