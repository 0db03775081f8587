package gglayout

import (
	"slices"
	"testing"
	"time"

	"github.com/gogpu/gglayout/internal/window"
)

// newTestShifter returns a shifter over a window holding cells 0..n-1, each
// with Row equal to its original index.
func newTestShifter(threshold, n int) *indexShifter {
	x := newIndexShifter(threshold, window.New[Cell](time.Now))
	for i := range n {
		x.store(&Cell{ControlIndex: i, Row: i})
	}
	return x
}

// checkOrigin fails unless the cell cached for index was stored as original.
func checkOrigin(t *testing.T, x *indexShifter, index, original int) {
	t.Helper()
	c, ok := x.get(index)
	if original < 0 {
		if ok {
			t.Errorf("get(%d) found cell %d, want none", index, c.Row)
		}
		return
	}
	if !ok {
		t.Errorf("get(%d) found nothing, want cell %d", index, original)
		return
	}
	if c.Row != original || c.ControlIndex != index {
		t.Errorf("get(%d) = cell %d with ControlIndex %d, want cell %d", index, c.Row, c.ControlIndex, original)
	}
}

// =============================================================================
// Index Shifter Tests
// =============================================================================

func TestIndexShifterInsert(t *testing.T) {
	tests := []struct {
		name        string
		threshold   int
		wantPending int
	}{
		{"direct", 10, 0},
		{"offset table", 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := newTestShifter(tt.threshold, 10)
			x.insert(3, 2, 7)

			if got := x.pending(); got != tt.wantPending {
				t.Errorf("pending() = %d, want %d", got, tt.wantPending)
			}
			checkOrigin(t, x, 2, 2)
			checkOrigin(t, x, 3, -1)
			checkOrigin(t, x, 4, -1)
			checkOrigin(t, x, 5, 3)
			checkOrigin(t, x, 11, 9)
			checkOrigin(t, x, 12, -1)
		})
	}
}

func TestIndexShifterRemove(t *testing.T) {
	tests := []struct {
		name        string
		threshold   int
		wantPending int
	}{
		{"direct", 10, 0},
		{"offset table", 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := newTestShifter(tt.threshold, 10)
			x.remove(2, 3, 8)

			if got := x.pending(); got != tt.wantPending {
				t.Errorf("pending() = %d, want %d", got, tt.wantPending)
			}
			checkOrigin(t, x, 1, 1)
			checkOrigin(t, x, 2, 5)
			checkOrigin(t, x, 6, 9)
			checkOrigin(t, x, 7, -1)
		})
	}
}

func TestIndexShifterRemovedSet(t *testing.T) {
	x := newTestShifter(0, 10)
	x.remove(2, 3, 8)

	x.mu.RLock()
	removed := len(x.removed)
	x.mu.RUnlock()
	if removed != 3 {
		t.Errorf("removed set holds %d keys, want 3", removed)
	}
	if got := x.w.Len(); got != 10 {
		t.Errorf("window Len() = %d before compaction, want 10", got)
	}
}

func TestIndexShifterCompactsOnStore(t *testing.T) {
	x := newTestShifter(0, 10)
	x.insert(3, 2, 7)
	x.remove(0, 1, 11)
	if got := x.pending(); got != 2 {
		t.Fatalf("pending() = %d, want 2", got)
	}

	x.store(&Cell{ControlIndex: 2, Row: 100})
	if got := x.pending(); got != 0 {
		t.Errorf("pending() after store = %d, want 0", got)
	}
	// 10 cells, one removed, one stored.
	if got := x.w.Len(); got != 10 {
		t.Errorf("window Len() = %d, want 10", got)
	}
	for _, key := range []int{0, 1, 2, 4, 5} {
		it, ok := x.w.Get(key)
		if !ok {
			t.Fatalf("window has no key %d", key)
		}
		if it.Value.ControlIndex != key {
			t.Errorf("window key %d holds ControlIndex %d", key, it.Value.ControlIndex)
		}
	}
	checkOrigin(t, x, 0, 1)
	checkOrigin(t, x, 1, 2)
	checkOrigin(t, x, 2, 100)
	checkOrigin(t, x, 4, 3)
	checkOrigin(t, x, 10, 9)
}

func TestIndexShifterMixedOps(t *testing.T) {
	x := newTestShifter(0, 10)
	// 0 1 n n n 2 3 ... 9, then drop the first three.
	x.insert(2, 3, 8)
	x.remove(0, 3, 13)

	checkOrigin(t, x, 0, -1)
	checkOrigin(t, x, 1, -1)
	checkOrigin(t, x, 2, 2)
	checkOrigin(t, x, 9, 9)
	checkOrigin(t, x, 10, -1)
}

func TestIndexShifterEvictSparesRange(t *testing.T) {
	x := newTestShifter(0, 50)
	x.insert(0, 10, 50)

	if n := x.evict(20, 10, 19); n != 30 {
		t.Errorf("evict() = %d, want 30", n)
	}
	for i := 10; i < 20; i++ {
		checkOrigin(t, x, i, i-10)
	}
}

func TestIndexShifterReset(t *testing.T) {
	x := newTestShifter(0, 10)
	x.insert(0, 5, 10)
	x.reset()

	if got := x.pending(); got != 0 {
		t.Errorf("pending() = %d, want 0", got)
	}
	if got := x.w.Len(); got != 0 {
		t.Errorf("window Len() = %d, want 0", got)
	}
	checkOrigin(t, x, 5, -1)
}

// =============================================================================
// Index Range Tests
// =============================================================================

func TestIndexRangesInsert(t *testing.T) {
	tests := []struct {
		name      string
		rs        indexRanges
		at, count int
		want      indexRanges
	}{
		{"empty", nil, 4, 2, indexRanges{{4, 6}}},
		{"before", indexRanges{{5, 10}}, 2, 3, indexRanges{{2, 5}, {8, 13}}},
		{"inside", indexRanges{{5, 10}}, 7, 2, indexRanges{{5, 12}}},
		{"adjacent", indexRanges{{5, 10}}, 10, 2, indexRanges{{5, 12}}},
		{"after", indexRanges{{5, 10}}, 20, 1, indexRanges{{5, 10}, {20, 21}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rs.insert(tt.at, tt.count); !slices.Equal(got, tt.want) {
				t.Errorf("insert(%d, %d) = %v, want %v", tt.at, tt.count, got, tt.want)
			}
		})
	}
}

func TestIndexRangesRemove(t *testing.T) {
	tests := []struct {
		name      string
		rs        indexRanges
		at, count int
		want      indexRanges
	}{
		{"before", indexRanges{{5, 10}}, 0, 2, indexRanges{{3, 8}}},
		{"inside", indexRanges{{5, 10}}, 6, 2, indexRanges{{5, 8}}},
		{"covering", indexRanges{{5, 10}}, 4, 10, nil},
		{"tail overlap", indexRanges{{5, 10}}, 8, 5, indexRanges{{5, 8}}},
		{"head overlap", indexRanges{{5, 10}}, 3, 4, indexRanges{{3, 6}}},
		{"after", indexRanges{{5, 10}}, 12, 3, indexRanges{{5, 10}}},
		{"joins", indexRanges{{0, 2}, {4, 6}}, 2, 2, indexRanges{{0, 4}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rs.remove(tt.at, tt.count); !slices.Equal(got, tt.want) {
				t.Errorf("remove(%d, %d) = %v, want %v", tt.at, tt.count, got, tt.want)
			}
		})
	}
}

func TestIndexRangesConsume(t *testing.T) {
	rs := indexRanges{{0, 10}, {20, 30}}
	got := rs.consume(5, 25)
	want := indexRanges{{0, 5}, {25, 30}}
	if !slices.Equal(got, want) {
		t.Errorf("consume(5, 25) = %v, want %v", got, want)
	}
	if got := rs.consume(0, 40); len(got) != 0 {
		t.Errorf("consume(0, 40) = %v, want empty", got)
	}
}

func TestIndexRangesNormalize(t *testing.T) {
	rs := indexRanges{{10, 12}, {0, 3}, {2, 5}}
	want := indexRanges{{0, 5}, {10, 12}}
	if got := rs.normalize(); !slices.Equal(got, want) {
		t.Errorf("normalize() = %v, want %v", got, want)
	}
	if got := (indexRanges{}).add(indexRange{3, 3}); len(got) != 0 {
		t.Errorf("add() of an empty range = %v, want empty", got)
	}
}
