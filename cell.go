package gglayout

// Cell is the layout record of one child: where it sits in the grid, the
// slot it was given, what it measured to and where it was last drawn.
//
// Cells are owned by a Structure. Only the render goroutine mutates cells of
// the committed structure.
type Cell struct {
	// ControlIndex is the position of the item in the source collection.
	ControlIndex int
	Row          int
	Column       int

	// Area is the slot assigned to the cell in layout coordinates.
	Area Rect
	// Destination is where the measured child is arranged inside Area.
	Destination Rect
	// Drawn is Destination translated to screen coordinates by the last draw pass.
	Drawn Rect

	Measured ScaledSize

	// OffsetOthers is a displacement the draw pass applies to every cell
	// after this one for the current frame and then clears. The draw pass
	// sets it when a visible child measures to a new size.
	OffsetOthers Vec2

	ZIndex int

	IsVisible    bool
	IsCollapsed  bool
	WasMeasured  bool
	WasLastDrawn bool

	// View is set for non-templated layouts where each cell owns its child.
	View View
}

// Clone returns a copy of c.
func (c *Cell) Clone() *Cell {
	clone := *c
	return &clone
}

// Offset moves the slot and the destination of the cell.
func (c *Cell) Offset(dx, dy float64) {
	c.Area = c.Area.Offset(dx, dy)
	c.Destination = c.Destination.Offset(dx, dy)
}

// extent returns the size the cell occupies on the given axis. Collapsed and
// unmeasured cells occupy nothing.
func (c *Cell) extent(horizontal bool) float64 {
	if c.IsCollapsed || c.Measured.IsEmpty() {
		return 0
	}
	if horizontal {
		return c.Measured.Pixels.Width
	}
	return c.Measured.Pixels.Height
}
