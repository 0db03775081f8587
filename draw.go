package gglayout

import (
	"math"
	"time"
)

// RenderedChild is one entry of the render tree built by a draw pass.
type RenderedChild struct {
	Index  int
	View   View
	Rect   Rect
	ZIndex int
}

// visibleAreaCache holds the visibility and recycling rectangles of the
// previous frame in layout coordinates.
type visibleAreaCache struct {
	valid    bool
	at       time.Time
	dest     Point
	viewport Rect
	visible  Rect
	recycle  Rect
}

func (c *visibleAreaCache) reset() {
	*c = visibleAreaCache{}
}

// lookup returns the cached rectangles while they are younger than lifetime
// and neither the destination origin nor any viewport edge moved by
// tolerance or more.
func (c *visibleAreaCache) lookup(now time.Time, dest Point, viewport Rect, lifetime time.Duration, tolerance float64) (Rect, Rect, bool) {
	if !c.valid || now.Sub(c.at) >= lifetime {
		return Rect{}, Rect{}, false
	}
	if !near(dest.X, c.dest.X, tolerance) || !near(dest.Y, c.dest.Y, tolerance) {
		return Rect{}, Rect{}, false
	}
	v := c.viewport
	if !near(viewport.Left, v.Left, tolerance) || !near(viewport.Top, v.Top, tolerance) ||
		!near(viewport.Right, v.Right, tolerance) || !near(viewport.Bottom, v.Bottom, tolerance) {
		return Rect{}, Rect{}, false
	}
	return c.visible, c.recycle, true
}

func near(a, b, tolerance float64) bool {
	return a == b || math.Abs(a-b) < tolerance
}

var infiniteRect = Rect{
	Left:   math.Inf(-1),
	Top:    math.Inf(-1),
	Right:  math.Inf(1),
	Bottom: math.Inf(1),
}

// Draw commits pending measurement results and structure changes, then
// draws the visible children. It returns the number of children drawn.
// Draw runs on the render goroutine.
func (l *Layout) Draw(dc *DrawContext) int {
	if l.closed.Load() || dc == nil {
		return 0
	}
	l.ApplyMeasureResult()
	l.ApplyStructureChanges()
	return l.DrawStack(dc)
}

// visibleAreas returns the visibility and recycling rectangles for dc in
// layout coordinates.
func (l *Layout) visibleAreas(dc *DrawContext, tx, ty float64) (Rect, Rect) {
	if l.opts.virtualisation == VirtualisationDisabled {
		return infiniteRect, infiniteRect
	}

	viewport := dc.Destination
	if l.opts.viewport != nil {
		viewport = l.opts.viewport.VisibleArea()
	}
	now := l.opts.now()
	dest := dc.Destination.Origin()
	if visible, recycle, ok := l.cache.lookup(now, dest, viewport, l.opts.cacheLifetime, l.opts.cacheTolerance); ok {
		return visible, recycle
	}

	scale := dc.Scale
	if scale <= 0 {
		scale = 1
	}
	m := l.opts.virtualisationInflated * scale
	visible := viewport.Offset(-tx, -ty).Inflate(m, m)
	b := l.opts.recyclingBuffer * scale
	recycle := visible.Inflate(b, b)

	l.cache = visibleAreaCache{
		valid:    true,
		at:       now,
		dest:     dest,
		viewport: viewport,
		visible:  visible,
		recycle:  recycle,
	}
	return visible, recycle
}

type borrowedView struct {
	index int
	view  View
}

// shownCell is a cell selected for drawing with its frame displacement.
type shownCell struct {
	cell   *Cell
	offset Vec2
}

// DrawStack draws the committed structure without applying pending changes.
//
// Every measured cell outside the recycling rectangle, and every collapsed
// or empty one, is first reported to the provider as hidden. Cells
// intersecting the visibility rectangle are then drawn and recorded in the
// render tree.
func (l *Layout) DrawStack(dc *DrawContext) int {
	s := l.structure
	if s.Len() == 0 || dc == nil {
		l.renderTree.Store(&[]RenderedChild{})
		return 0
	}

	l.mu.Lock()
	origin := l.constraints.Origin()
	l.mu.Unlock()
	tx := dc.Destination.Left - origin.X
	ty := dc.Destination.Top - origin.Y
	visible, recycle := l.visibleAreas(dc, tx, ty)

	var (
		shown  []shownCell
		hidden = l.hideBuf[:0]
		offset Vec2
	)
	for _, c := range s.Cells() {
		at := offset
		if !c.OffsetOthers.IsZero() {
			offset = offset.Add(c.OffsetOthers)
			c.OffsetOthers = Vec2{}
		}
		c.IsVisible = false
		c.WasLastDrawn = false
		if !c.WasMeasured {
			continue
		}
		dest := c.Destination.Offset(at.X, at.Y)
		if c.IsCollapsed || c.Measured.IsEmpty() || !dest.IntersectsInclusive(recycle) {
			hidden = append(hidden, c.ControlIndex)
			continue
		}
		if dest.IntersectsInclusive(visible) {
			shown = append(shown, shownCell{cell: c, offset: at})
		}
	}
	l.provider.hideAll(hidden)
	l.hideBuf = hidden

	var (
		tree     []RenderedChild
		borrowed []borrowedView
		resized  Vec2
		first    = -1
		last     = -1
	)
	for _, sc := range shown {
		c := sc.cell
		at := sc.offset.Add(resized)

		v := c.View
		if v == nil {
			v = l.provider.viewFor(c.ControlIndex, nil, l.sizeKey(c), false)
			if v == nil {
				l.logger().Warn("gglayout: no view to draw", "index", c.ControlIndex)
				continue
			}
			borrowed = append(borrowed, borrowedView{index: c.ControlIndex, view: v})
		}
		if r, ok := v.(Resizable); ok && r.NeedsMeasure() {
			c.OffsetOthers = l.remeasureDrawn(c, v)
		}

		c.Drawn = c.Destination.Offset(at.X+tx, at.Y+ty)
		if l.renderer != nil && v.CanDraw() {
			l.renderer.DrawChild(dc, v, c.Drawn)
		}
		tree = append(tree, RenderedChild{Index: c.ControlIndex, View: v, Rect: c.Drawn, ZIndex: c.ZIndex})
		if !c.OffsetOthers.IsZero() {
			resized = resized.Add(c.OffsetOthers)
			c.OffsetOthers = Vec2{}
		}

		c.IsVisible = true
		c.WasLastDrawn = true
		if first < 0 {
			first = c.ControlIndex
		}
		last = c.ControlIndex
		l.shifter.touch(c.ControlIndex, true)
	}

	for _, b := range borrowed {
		l.provider.release(b.index, b.view)
	}

	l.firstVisible.Store(int64(first))
	l.lastVisible.Store(int64(last))
	l.renderTree.Store(&tree)
	return len(tree)
}

// remeasureDrawn measures the view of a drawn cell again and returns how far
// the cells after it move along the main axis. A change of a pixel or more is
// staged as an update of the cell, so the next commit makes it permanent.
func (l *Layout) remeasureDrawn(c *Cell, v View) Vec2 {
	g, scale := l.currentGeometry()
	g.origin = Point{}
	cur := g.start()
	cur.Row, cur.Col = c.Row, c.Column

	avail := g.available(&cur)
	size := l.measureView(v, avail.Width(), avail.Height(), scale, c.ControlIndex)

	nc := &Cell{
		ControlIndex: c.ControlIndex,
		Row:          c.Row,
		Column:       c.Column,
		Measured:     size,
		WasMeasured:  true,
	}
	nc.Area = g.slot(&cur, size)
	nc.Destination = nc.Area
	if !size.IsEmpty() {
		h, va := alignmentOf(v)
		nc.Destination = arrange(nc.Area, size.Pixels, h, va)
	}

	var delta Vec2
	if g.horizontal {
		delta.X = nc.extent(true) - c.extent(true)
	} else {
		delta.Y = nc.extent(false) - c.extent(false)
	}
	if math.Abs(delta.X) < 1 && math.Abs(delta.Y) < 1 {
		return Vec2{}
	}

	l.changes.stage(StructureChange{
		Type:       ChangeSingleItemUpdate,
		Stamp:      l.generation.Load(),
		StartIndex: c.ControlIndex,
		Count:      1,
		Cell:       nc,
	})
	l.redraw()
	return delta
}

// sizeKey returns the recycling key of a cell: its rounded main-axis extent.
func (l *Layout) sizeKey(c *Cell) float64 {
	if l.opts.horizontal() {
		return math.Round(c.Area.Width())
	}
	return math.Round(c.Area.Height())
}

// RenderTree returns the children drawn by the last draw pass, in drawing
// order. The slice must not be modified.
func (l *Layout) RenderTree() []RenderedChild {
	if p := l.renderTree.Load(); p != nil {
		return *p
	}
	return nil
}

// VisibleChildIndexAt returns the index of the topmost child drawn at p in
// screen coordinates, or -1.
func (l *Layout) VisibleChildIndexAt(p Point) int {
	tree := l.RenderTree()
	for i := len(tree) - 1; i >= 0; i-- {
		if tree[i].Rect.Contains(p) {
			return tree[i].Index
		}
	}
	return -1
}
