package gglayout

import (
	"sync/atomic"
	"testing"

	"github.com/gogpu/gglayout/items"
)

// measuredList returns a MeasureVisible layout over p with every item
// measured and committed.
func measuredList(t *testing.T, p *fakeProvider, opts ...Option) *Layout {
	t.Helper()
	l := newListLayout(t, p, fakeMeasurer{}, nil, opts...)
	l.Measure(listConstraints(300), 1)
	l.ApplyMeasureResult()
	settle(t, l)
	checkContiguous(t, l.LatestStructure(), p.ChildrenCount())
	return l
}

func checkUnique(t *testing.T, s *Structure) {
	t.Helper()
	seen := make(map[int]bool, s.Len())
	for _, c := range s.Cells() {
		if seen[c.ControlIndex] {
			t.Fatalf("ControlIndex %d appears twice", c.ControlIndex)
		}
		seen[c.ControlIndex] = true
	}
}

// =============================================================================
// Index Shift Tests
// =============================================================================

func TestApplyAddShiftsIndices(t *testing.T) {
	tests := []struct {
		name      string
		threshold int
	}{
		{"direct", DefaultShiftThreshold},
		{"offset table", 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newFakeProvider(50, 300)
			l := measuredList(t, p, WithShiftThreshold(tt.threshold), WithSlidingWindow(1000, 50, 100))
			before := append([]*Cell(nil), l.LatestStructure().Cells()...)

			p.insert(100, 5, 70)
			l.OnCollectionChanged(items.Change{Action: items.ActionAdd, NewIndex: 100, NewCount: 5})
			if n := l.ApplyStructureChanges(); n != 1 {
				t.Fatalf("ApplyStructureChanges() = %d, want 1", n)
			}

			for i, c := range before {
				want := i
				if i >= 100 {
					want = i + 5
				}
				if c.ControlIndex != want {
					t.Fatalf("cell formerly %d has ControlIndex %d, want %d", i, c.ControlIndex, want)
				}
			}
			checkUnique(t, l.LatestStructure())
			if got := l.LastMeasuredIndex(); got != 304 {
				t.Errorf("LastMeasuredIndex() = %d, want 304", got)
			}

			cached, ok := l.shifter.get(250)
			if !ok || cached.ControlIndex != 250 {
				t.Errorf("shifter.get(250) = %d, %v, want 250, true", cached.ControlIndex, ok)
			}

			settle(t, l)
			s := l.LatestStructure()
			checkContiguous(t, s, 305)
			checkStacked(t, s, 0)
			if got := s.GetForIndex(102).Measured.Pixels.Height; got != 70 {
				t.Errorf("inserted item height = %v, want 70", got)
			}
			if got := l.ContentSize().Pixels.Height; got != 300*50+5*70 {
				t.Errorf("content height = %v, want %d", got, 300*50+5*70)
			}
		})
	}
}

func TestApplyAddPastMeasuredEnd(t *testing.T) {
	// The first pass measures 0-10; batches of 20 follow from 11, so the
	// batch holding 511 is the first one blocked.
	p := newFakeProvider(50, 1000)
	m := newGatedMeasurer(511)
	l := newListLayout(t, p, m, nil, WithViewport(fixedViewport(XYWH(0, 0, 300, 500))))
	t.Cleanup(m.open)

	l.Measure(listConstraints(300), 1)
	l.ApplyMeasureResult()
	m.waitReached(t)
	// Batches before the gate are already staged.
	l.ApplyStructureChanges()
	before := l.LatestStructure().Len()
	if before != 511 {
		t.Fatalf("Len() = %d, want 511", before)
	}

	p.insert(600, 3, 50)
	l.OnCollectionChanged(items.Change{Action: items.ActionAdd, NewIndex: 600, NewCount: 3})
	l.ApplyStructureChanges()

	if got := l.LatestStructure().Len(); got != before {
		t.Errorf("Len() = %d, want %d", got, before)
	}
	if got := l.LastMeasuredIndex(); got != before-1 {
		t.Errorf("LastMeasuredIndex() = %d, want %d", got, before-1)
	}

	m.open()
	settle(t, l)
	checkContiguous(t, l.LatestStructure(), 1003)
	checkStacked(t, l.LatestStructure(), 0)
}

// Remove five items at 100 from 200 measured items.
func TestApplyRemoveShiftsIndices(t *testing.T) {
	p := newFakeProvider(50, 200)
	l := measuredList(t, p)
	s := l.LatestStructure()
	moved := s.GetForIndex(105)
	top := moved.Area.Top

	p.remove(100, 5)
	l.OnCollectionChanged(items.Change{Action: items.ActionRemove, OldIndex: 100, OldCount: 5})
	l.ApplyStructureChanges()

	if moved.ControlIndex != 100 {
		t.Errorf("cell formerly 105 has ControlIndex %d, want 100", moved.ControlIndex)
	}
	if moved.Area.Top != top-250 {
		t.Errorf("cell formerly 105 Top = %v, want %v", moved.Area.Top, top-250)
	}
	checkContiguous(t, s, 195)
	checkStacked(t, s, 0)
	if got := l.LastMeasuredIndex(); got != 194 {
		t.Errorf("LastMeasuredIndex() = %d, want 194", got)
	}
	if got := l.ContentSize().Pixels.Height; got != 195*50 {
		t.Errorf("content height = %v, want %d", got, 195*50)
	}
}

func TestApplyReplace(t *testing.T) {
	p := newFakeProvider(50, 20)
	l := measuredList(t, p)

	p.setHeight(5, 80)
	p.setHeight(6, 80)
	l.OnCollectionChanged(items.Change{Action: items.ActionReplace, NewIndex: 5, NewCount: 2, OldCount: 2})
	l.ApplyStructureChanges()

	if got := l.LatestStructure().Len(); got != 18 {
		t.Errorf("Len() after replace = %d, want 18", got)
	}

	settle(t, l)
	s := l.LatestStructure()
	checkContiguous(t, s, 20)
	checkStacked(t, s, 0)
	for _, i := range []int{5, 6} {
		if got := s.GetForIndex(i).Measured.Pixels.Height; got != 80 {
			t.Errorf("item %d height = %v, want 80", i, got)
		}
	}
	if got := l.ContentSize().Pixels.Height; got != 1060 {
		t.Errorf("content height = %v, want 1060", got)
	}
}

func TestApplyMoveInvalidates(t *testing.T) {
	var invalidated atomic.Int32
	p := newFakeProvider(50, 20)
	l := measuredList(t, p, WithInvalidate(func() { invalidated.Add(1) }))
	gen := l.Generation()

	l.OnCollectionChanged(items.Change{Action: items.ActionMove, OldIndex: 2, OldCount: 1, NewIndex: 7, NewCount: 1})
	l.ReportChildVisibilityChanged(3, false)
	if n := l.ApplyStructureChanges(); n != 1 {
		t.Errorf("ApplyStructureChanges() = %d, want 1 (later change is stale)", n)
	}

	if !l.NeedsMeasure() {
		t.Error("NeedsMeasure() = false after a move")
	}
	if invalidated.Load() != 1 {
		t.Errorf("invalidate callback ran %d times, want 1", invalidated.Load())
	}
	if l.Generation() == gen {
		t.Error("generation did not advance")
	}
	if l.LatestStructure().GetForIndex(3).IsCollapsed {
		t.Error("stale visibility change was applied")
	}
}

func TestApplyReset(t *testing.T) {
	p := newFakeProvider(50, 20)
	l := measuredList(t, p)

	l.OnCollectionChanged(items.Change{Action: items.ActionReset})
	l.ApplyStructureChanges()

	if l.LatestStructure().Len() != 0 {
		t.Errorf("Len() = %d after reset, want 0", l.LatestStructure().Len())
	}
	if l.LastMeasuredIndex() != -1 {
		t.Errorf("LastMeasuredIndex() = %d, want -1", l.LastMeasuredIndex())
	}
	if !l.NeedsMeasure() {
		t.Error("NeedsMeasure() = false after reset")
	}
	if l.window.Len() != 0 {
		t.Errorf("window holds %d cells after reset", l.window.Len())
	}
}

func TestCollectionChangeWithoutVirtualisationInvalidates(t *testing.T) {
	p := newFakeProvider(50, 20)
	l := New(p, fakeMeasurer{}, nil)
	defer l.Close()
	l.Measure(listConstraints(300), 1)
	l.ApplyMeasureResult()

	l.OnCollectionChanged(items.Change{Action: items.ActionAdd, NewIndex: 3, NewCount: 1})
	if !l.NeedsMeasure() {
		t.Error("NeedsMeasure() = false")
	}
	if l.PendingChanges() != 0 {
		t.Errorf("PendingChanges() = %d, want 0", l.PendingChanges())
	}
}

func TestObserveList(t *testing.T) {
	src := items.NewList[int]()
	for i := range 20 {
		src.Append(i)
	}
	p := newFakeProvider(50, 20)
	var redraws atomic.Int32
	l := measuredList(t, p, WithRedraw(func() { redraws.Add(1) }))
	stop := l.Observe(src)
	defer stop()

	p.remove(0, 2)
	if err := src.RemoveAt(0, 2); err != nil {
		t.Fatal(err)
	}
	if l.PendingChanges() != 1 {
		t.Fatalf("PendingChanges() = %d, want 1", l.PendingChanges())
	}
	if redraws.Load() == 0 {
		t.Error("staging a change should request a redraw")
	}
	l.ApplyStructureChanges()
	checkContiguous(t, l.LatestStructure(), 18)
}

// =============================================================================
// Stale Discard Tests
// =============================================================================

func TestApplyDropsStaleChanges(t *testing.T) {
	p := newFakeProvider(50, 20)
	l := measuredList(t, p)

	l.ReportChildVisibilityChanged(3, false)
	l.Measure(listConstraints(300), 1)
	l.ApplyMeasureResult()

	if n := l.ApplyStructureChanges(); n != 0 {
		t.Errorf("ApplyStructureChanges() = %d, want 0", n)
	}
	if l.LatestStructure().GetForIndex(3).IsCollapsed {
		t.Error("stale change was applied")
	}

	l.ReportChildVisibilityChanged(3, false)
	l.Invalidate()
	if n := l.ApplyStructureChanges(); n != 0 {
		t.Errorf("ApplyStructureChanges() after Invalidate = %d, want 0", n)
	}
}

func TestApplyIsFIFO(t *testing.T) {
	p := newFakeProvider(50, 20)
	l := measuredList(t, p)

	l.ReportChildVisibilityChanged(3, false)
	l.ReportChildVisibilityChanged(3, true)
	if n := l.ApplyStructureChanges(); n != 2 {
		t.Fatalf("ApplyStructureChanges() = %d, want 2", n)
	}
	if l.LatestStructure().GetForIndex(3).IsCollapsed {
		t.Error("changes applied out of order")
	}
	checkStacked(t, l.LatestStructure(), 0)
}

// =============================================================================
// Visibility Tests
// =============================================================================

func TestApplyVisibilityColumn(t *testing.T) {
	p := newFakeProvider(50, 20)
	l := measuredList(t, p, WithSpacing(10))
	s := l.LatestStructure()

	l.ReportRangeVisibilityChanged(2, 3, false)
	l.ApplyStructureChanges()

	// Collapsed cells keep their spacing.
	if got := s.GetForIndex(5).Area.Top; got != 5*60-150 {
		t.Errorf("cell 5 Top = %v, want %d", got, 5*60-150)
	}
	checkStacked(t, s, 10)
	if got := l.ContentSize().Pixels.Height; got != 20*60-10-150 {
		t.Errorf("content height = %v, want %d", got, 20*60-10-150)
	}

	l.ReportRangeVisibilityChanged(2, 3, true)
	l.ApplyStructureChanges()
	if got := s.GetForIndex(5).Area.Top; got != 300 {
		t.Errorf("cell 5 Top after expand = %v, want 300", got)
	}
}

func TestApplyVisibilityGrid(t *testing.T) {
	p := newFakeProvider(20, 6)
	l := measuredList(t, p, WithSplit(2))
	s := l.LatestStructure()

	// The other cell of the row keeps its height.
	l.ReportChildVisibilityChanged(0, false)
	l.ApplyStructureChanges()
	if got := s.GetForIndex(2).Area.Top; got != 20 {
		t.Errorf("cell 2 Top = %v, want 20", got)
	}

	l.ReportChildVisibilityChanged(1, false)
	l.ApplyStructureChanges()
	if got := s.GetForIndex(2).Area.Top; got != 0 {
		t.Errorf("cell 2 Top = %v, want 0", got)
	}
	if got := s.GetForIndex(5).Area.Top; got != 20 {
		t.Errorf("cell 5 Top = %v, want 20", got)
	}
}

func TestApplyVisibilityRow(t *testing.T) {
	p := newFakeProviderSizes(make([]Size, 10)...)
	for i := range p.sizes {
		p.sizes[i] = Size{Width: 30, Height: 20}
	}
	l := newListLayout(t, p, fakeMeasurer{}, nil, WithType(Row), WithSpacing(10))
	l.Measure(Rect{Right: 1e9, Bottom: 50}, 1)
	l.ApplyMeasureResult()
	s := l.LatestStructure()
	checkContiguous(t, s, 10)

	l.ReportChildVisibilityChanged(2, false)
	l.ApplyStructureChanges()
	if got := s.GetForIndex(3).Area.Left; got != 90 {
		t.Errorf("cell 3 Left = %v, want 90", got)
	}
	if got := s.GetForIndex(9).Area.Left; got != 330 {
		t.Errorf("cell 9 Left = %v, want 330", got)
	}

	l.ReportChildVisibilityChanged(2, true)
	l.ApplyStructureChanges()
	if got := s.GetForIndex(3).Area.Left; got != 120 {
		t.Errorf("cell 3 Left after expand = %v, want 120", got)
	}
}

// =============================================================================
// Race Compensation Tests
// =============================================================================

func TestApplyBatchCompensatesOrigin(t *testing.T) {
	p := newFakeProvider(50, 12)
	m := newGatedMeasurer(10)
	l := newListLayout(t, p, m, nil, WithViewport(fixedViewport(XYWH(0, 0, 300, 495))))
	t.Cleanup(m.open)

	l.Measure(listConstraints(300), 1)
	l.ApplyMeasureResult()
	m.waitReached(t)
	if got := l.LastMeasuredIndex(); got != 9 {
		t.Fatalf("LastMeasuredIndex() = %d, want 9", got)
	}

	// A batch that expected its first slot 100px lower than it is.
	cell := func(index int, top float64) *Cell {
		area := XYWH(0, top, 300, 50)
		return &Cell{
			ControlIndex: index,
			Row:          index,
			Area:         area,
			Destination:  area,
			Measured:     SizeFromPixels(300, 50, 1),
			WasMeasured:  true,
		}
	}
	l.changes.stage(StructureChange{
		Type:       ChangeBackgroundMeasurement,
		Stamp:      l.Generation(),
		StartIndex: 10,
		Count:      2,
		Cells:      []*Cell{cell(10, 600), cell(11, 650)},
		Origin:     Pt(0, 600),
		OriginRow:  10,
	})
	l.ApplyStructureChanges()

	s := l.LatestStructure()
	if got := s.GetForIndex(10).Area.Top; got != 500 {
		t.Errorf("cell 10 Top = %v, want 500", got)
	}
	if got := s.GetForIndex(11).Destination.Top; got != 550 {
		t.Errorf("cell 11 Destination.Top = %v, want 550", got)
	}

	// The real batch for the same items is now a duplicate.
	m.open()
	settle(t, l)
	checkContiguous(t, s, 12)
	checkStacked(t, s, 0)
}

// Items 50-69 are measured for y=2500; items 0-9 collapse
// before the batch lands.
func TestApplyBatchAfterCollapse(t *testing.T) {
	p := newFakeProvider(40, 70)
	m := newGatedMeasurer(50)
	l := newListLayout(t, p, m, nil,
		WithSpacing(10),
		WithViewport(fixedViewport(XYWH(0, 0, 300, 2450))),
	)
	t.Cleanup(m.open)

	l.Measure(listConstraints(300), 1)
	l.ApplyMeasureResult()
	if got := l.LastMeasuredIndex(); got != 49 {
		t.Fatalf("LastMeasuredIndex() = %d, want 49", got)
	}
	m.waitReached(t)

	l.ReportRangeVisibilityChanged(0, 10, false)
	l.ApplyStructureChanges()
	s := l.LatestStructure()
	if got := s.GetForIndex(49).Area.Top; got != 49*50-400 {
		t.Errorf("cell 49 Top = %v, want %d", got, 49*50-400)
	}

	m.open()
	settle(t, l)
	checkContiguous(t, s, 70)
	if got := s.GetForIndex(50).Area.Top; got != 2100 {
		t.Errorf("cell 50 Top = %v, want 2100", got)
	}
	if got := s.GetForIndex(69).Area.Top; got != 3050 {
		t.Errorf("cell 69 Top = %v, want 3050", got)
	}
	checkStacked(t, s, 10)
}
