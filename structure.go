package gglayout

import "sort"

// Structure is the two-dimensional cell table produced by a measurement pass.
// Cells are stored row-major, and that order matches ascending ControlIndex.
//
// A Structure is not safe for concurrent use. The committed structure of a
// Layout belongs to the render goroutine; the one being built by a
// measurement pass belongs to the measuring goroutine until it is swapped in.
type Structure struct {
	rows [][]*Cell
	flat []*Cell
}

// NewStructure returns a structure holding rows. Row and Column of every
// cell are set to its position.
func NewStructure(rows [][]*Cell) *Structure {
	s := &Structure{}
	s.Append(rows)
	return s
}

// Len returns the number of cells.
func (s *Structure) Len() int {
	if s == nil {
		return 0
	}
	return len(s.flat)
}

// MaxRows returns the number of rows.
func (s *Structure) MaxRows() int {
	if s == nil {
		return 0
	}
	return len(s.rows)
}

// MaxColumns returns the widest row's column count.
func (s *Structure) MaxColumns() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, row := range s.rows {
		n = max(n, len(row))
	}
	return n
}

// ColumnCountForRow returns the number of cells in row, or 0 if out of range.
func (s *Structure) ColumnCountForRow(row int) int {
	if s == nil || row < 0 || row >= len(s.rows) {
		return 0
	}
	return len(s.rows[row])
}

// Get returns the cell at (column, row), or nil.
func (s *Structure) Get(column, row int) *Cell {
	if s == nil || row < 0 || row >= len(s.rows) {
		return nil
	}
	r := s.rows[row]
	if column < 0 || column >= len(r) {
		return nil
	}
	return r[column]
}

// GetRow returns the cells of row, or nil. The slice is owned by s.
func (s *Structure) GetRow(row int) []*Cell {
	if s == nil || row < 0 || row >= len(s.rows) {
		return nil
	}
	return s.rows[row]
}

// At returns the cell at row-major position pos, or nil.
func (s *Structure) At(pos int) *Cell {
	if s == nil || pos < 0 || pos >= len(s.flat) {
		return nil
	}
	return s.flat[pos]
}

// GetForIndex returns the cell whose ControlIndex is index, or nil.
func (s *Structure) GetForIndex(index int) *Cell {
	pos := s.position(index)
	if pos < 0 {
		return nil
	}
	return s.flat[pos]
}

// Cells returns every cell in row-major order without copying. The slice is
// invalidated by the next mutation of s.
func (s *Structure) Cells() []*Cell {
	if s == nil {
		return nil
	}
	return s.flat
}

// Last returns the last cell, or nil for an empty structure.
func (s *Structure) Last() *Cell {
	if s == nil || len(s.flat) == 0 {
		return nil
	}
	return s.flat[len(s.flat)-1]
}

// Clear removes every cell.
func (s *Structure) Clear() {
	s.rows = nil
	s.flat = nil
}

// Append adds rows after the last row. Existing rows are not copied.
func (s *Structure) Append(rows [][]*Cell) {
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		r := len(s.rows)
		for col, c := range row {
			c.Row, c.Column = r, col
		}
		s.rows = append(s.rows, row)
		s.flat = append(s.flat, row...)
	}
}

// appendCells adds cells in order. A cell whose Row equals the Row of the
// current last cell continues that row; any other Row value starts a new row.
func (s *Structure) appendCells(cells []*Cell) {
	for _, c := range cells {
		last := s.Last()
		if last != nil && c.Row == last.Row {
			r := len(s.rows) - 1
			c.Column = len(s.rows[r])
			s.rows[r] = append(s.rows[r], c)
		} else {
			c.Row, c.Column = len(s.rows), 0
			s.rows = append(s.rows, []*Cell{c})
		}
		s.flat = append(s.flat, c)
	}
}

// Clone returns a deep copy of s.
func (s *Structure) Clone() *Structure {
	if s == nil {
		return NewStructure(nil)
	}
	rows := make([][]*Cell, len(s.rows))
	for i, row := range s.rows {
		cloned := make([]*Cell, len(row))
		for j, c := range row {
			cloned[j] = c.Clone()
		}
		rows[i] = cloned
	}
	return NewStructure(rows)
}

// position returns the row-major position of the cell with the given
// ControlIndex, or -1.
func (s *Structure) position(index int) int {
	pos := s.lowerBound(index)
	if pos < s.Len() && s.flat[pos].ControlIndex == index {
		return pos
	}
	return -1
}

// lowerBound returns the position of the first cell whose ControlIndex is at
// least index.
func (s *Structure) lowerBound(index int) int {
	if s == nil {
		return 0
	}
	return sort.Search(len(s.flat), func(i int) bool {
		return s.flat[i].ControlIndex >= index
	})
}

// rowStart returns the row-major position of the first cell in row.
func (s *Structure) rowStart(row int) int {
	pos := 0
	for i := 0; i < row && i < len(s.rows); i++ {
		pos += len(s.rows[i])
	}
	return pos
}

// regroupFrom rebuilds rows starting at row, chunking the remaining cells
// into rows of at most columns cells.
func (s *Structure) regroupFrom(row, columns int) {
	row = min(max(row, 0), len(s.rows))
	start := s.rowStart(row)
	tail := s.flat[start:]
	s.rows = s.rows[:row]
	columns = max(columns, 1)
	for i := 0; i < len(tail); {
		end := len(tail)
		if columns < end-i {
			end = i + columns
		}
		chunk := make([]*Cell, end-i)
		copy(chunk, tail[i:end])
		r := len(s.rows)
		for col, c := range chunk {
			c.Row, c.Column = r, col
		}
		s.rows = append(s.rows, chunk)
		i = end
	}
}

// insertCells inserts cells at row-major position pos and regroups the rows
// from the affected row on.
func (s *Structure) insertCells(pos int, cells []*Cell, columns int) {
	if len(cells) == 0 {
		return
	}
	pos = min(max(pos, 0), len(s.flat))
	row := s.rowOf(pos)
	flat := make([]*Cell, 0, len(s.flat)+len(cells))
	flat = append(flat, s.flat[:pos]...)
	flat = append(flat, cells...)
	flat = append(flat, s.flat[pos:]...)
	s.flat = flat
	s.regroupFrom(row, columns)
}

// removeCells removes n cells starting at row-major position pos and
// regroups the rows from the affected row on.
func (s *Structure) removeCells(pos, n, columns int) []*Cell {
	pos = min(max(pos, 0), len(s.flat))
	n = min(n, len(s.flat)-pos)
	if n <= 0 {
		return nil
	}
	row := s.rowOf(pos)
	removed := append([]*Cell(nil), s.flat[pos:pos+n]...)
	s.flat = append(s.flat[:pos], s.flat[pos+n:]...)
	s.regroupFrom(row, columns)
	return removed
}

// rowOf returns the row that holds position pos. The end position maps to
// the last row so an insert there can continue a partial row.
func (s *Structure) rowOf(pos int) int {
	if len(s.flat) == 0 {
		return 0
	}
	if pos >= len(s.flat) {
		return s.flat[len(s.flat)-1].Row
	}
	return s.flat[pos].Row
}
