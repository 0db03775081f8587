package gglayout

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gglayout/internal/parallel"
	"github.com/gogpu/gglayout/internal/window"
	"github.com/gogpu/gglayout/items"
)

// Layout arranges the children of a ViewProvider in rows and columns,
// measures large collections incrementally and draws only what is visible.
//
// Threading model: Measure may run on a measuring goroutine, Draw and the
// Apply methods run on the render goroutine, and background measurement runs
// on a worker pool. Producers on any goroutine stage changes; only the render
// goroutine mutates the committed structure.
type Layout struct {
	opts     options
	provider *serialProvider
	measurer Measurer
	renderer Renderer
	pool     *parallel.WorkerPool
	ownPool  bool

	// mu guards the structure pointers and measurement results.
	mu                sync.Mutex
	structure         *Structure
	structureMeasured *Structure
	pendingLast       int
	measured          ScaledSize
	constraints       Rect
	scale             float64

	generation   atomic.Uint64
	lastMeasured atomic.Int64
	firstVisible atomic.Int64
	lastVisible  atomic.Int64
	needsMeasure atomic.Bool
	closed       atomic.Bool

	changes changeQueue
	window  *window.Map[Cell]
	shifter *indexShifter

	// gaps belongs to the render goroutine.
	gaps indexRanges

	bgMu sync.Mutex
	bg   *backgroundRun

	cache      visibleAreaCache
	renderTree atomic.Pointer[[]RenderedChild]
	// hideBuf is reused by the recycle pass of DrawStack.
	hideBuf []int
}

// New creates a layout over provider. renderer may be nil when the caller
// only needs measurement and visibility tracking.
func New(provider ViewProvider, measurer Measurer, renderer Renderer, opts ...Option) *Layout {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	l := &Layout{
		opts:     o,
		provider: &serialProvider{p: provider},
		measurer: measurer,
		renderer: renderer,
		scale:    1,
	}
	if o.workers > 0 {
		l.pool = parallel.NewWorkerPool(o.workers)
		l.ownPool = true
	} else {
		l.pool = parallel.Shared()
	}
	l.window = window.New[Cell](o.now)
	l.shifter = newIndexShifter(o.shiftThreshold, l.window)
	l.lastMeasured.Store(-1)
	l.firstVisible.Store(-1)
	l.lastVisible.Store(-1)
	return l
}

func (l *Layout) logger() *slog.Logger {
	if l.opts.logger != nil {
		return l.opts.logger
	}
	return Logger()
}

// Close stops background measurement and releases the layout's own pool.
// Close is safe to call multiple times.
func (l *Layout) Close() {
	if !l.closed.CompareAndSwap(false, true) {
		return
	}
	l.bgMu.Lock()
	run := l.bg
	l.bgMu.Unlock()
	if run != nil {
		run.task.Cancel()
		<-run.task.Done()
	}
	if l.ownPool {
		l.pool.Close()
	}
}

// Generation returns the current measurement generation stamp.
func (l *Layout) Generation() uint64 {
	return l.generation.Load()
}

// LastMeasuredIndex returns the highest item index committed to the
// structure, or -1.
func (l *Layout) LastMeasuredIndex() int {
	return int(l.lastMeasured.Load())
}

// FirstVisibleIndex returns the lowest index drawn by the last frame, or -1.
func (l *Layout) FirstVisibleIndex() int {
	return int(l.firstVisible.Load())
}

// LastVisibleIndex returns the highest index drawn by the last frame, or -1.
func (l *Layout) LastVisibleIndex() int {
	return int(l.lastVisible.Load())
}

// LatestStructure returns the committed structure, or the measured one if
// nothing has been committed yet.
func (l *Layout) LatestStructure() *Structure {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.structure != nil {
		return l.structure
	}
	return l.structureMeasured
}

// LatestMeasuredStructure returns the structure produced by the last
// measurement pass if it has not been committed yet, or the committed one.
func (l *Layout) LatestMeasuredStructure() *Structure {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.structureMeasured != nil {
		return l.structureMeasured
	}
	return l.structure
}

// ApplyMeasureResult commits the structure of the last measurement pass.
// It runs on the render goroutine at the start of a frame.
func (l *Layout) ApplyMeasureResult() bool {
	l.mu.Lock()
	s := l.structureMeasured
	if s != nil {
		l.structure = s
		l.structureMeasured = nil
		l.lastMeasured.Store(int64(l.pendingLast))
	}
	l.mu.Unlock()

	if s == nil {
		return false
	}
	l.gaps = nil
	l.cache.reset()
	return true
}

// ContentSize returns the current content size, including the estimate for
// items not yet measured.
func (l *Layout) ContentSize() ScaledSize {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.measured
}

// NeedsMeasure reports whether the layout was invalidated since the last
// measurement pass.
func (l *Layout) NeedsMeasure() bool {
	return l.needsMeasure.Load()
}

// Invalidate discards staged changes, stops background measurement and asks
// the host for a full remeasure.
func (l *Layout) Invalidate() {
	l.generation.Add(1)
	l.cancelBackground()
	l.needsMeasure.Store(true)
	if l.opts.onInvalidate != nil {
		l.opts.onInvalidate()
	}
}

func (l *Layout) redraw() {
	if l.opts.onRedraw != nil {
		l.opts.onRedraw()
	}
}

// hasStructure reports whether a non-empty structure exists to preserve.
func (l *Layout) hasStructure() bool {
	return l.LatestStructure().Len() > 0
}

// OnCollectionChanged reacts to a change of the item collection.
//
// With MeasureVisible and an existing structure the change is staged and
// applied by the next frame without remeasuring. Otherwise the layout is
// invalidated.
func (l *Layout) OnCollectionChanged(ch items.Change) {
	if l.closed.Load() {
		return
	}
	if l.opts.strategy != MeasureVisible || !l.hasStructure() {
		l.Invalidate()
		return
	}

	c := StructureChange{Stamp: l.generation.Load()}
	switch ch.Action {
	case items.ActionAdd:
		c.Type, c.StartIndex, c.Count = ChangeAdd, ch.NewIndex, ch.NewCount
	case items.ActionRemove:
		c.Type, c.StartIndex, c.Count = ChangeRemove, ch.OldIndex, ch.OldCount
	case items.ActionReplace:
		c.Type, c.StartIndex, c.Count, c.OldCount = ChangeReplace, ch.NewIndex, ch.NewCount, ch.OldCount
	case items.ActionMove:
		c.Type, c.StartIndex, c.Count = ChangeMove, ch.OldIndex, ch.OldCount
	case items.ActionReset:
		c.Type = ChangeReset
	default:
		l.Invalidate()
		return
	}

	// Background results computed before this change use the old indices.
	l.cancelBackground()
	l.changes.stage(c)
	l.logger().Debug("gglayout: change staged", "type", c.Type, "start", c.StartIndex, "count", c.Count)
	l.redraw()
}

// Observe subscribes the layout to src and returns the unsubscribe function.
func (l *Layout) Observe(src items.Observable) func() {
	return src.Subscribe(l.OnCollectionChanged)
}

// ReportChildVisibilityChanged stages a collapse or expansion of one item.
func (l *Layout) ReportChildVisibilityChanged(index int, visible bool) {
	l.ReportRangeVisibilityChanged(index, 1, visible)
}

// ReportRangeVisibilityChanged stages a collapse or expansion of count items
// starting at index. Background measurement keeps running; batches already
// in flight are corrected when they are applied.
func (l *Layout) ReportRangeVisibilityChanged(index, count int, visible bool) {
	if l.closed.Load() || count <= 0 {
		return
	}
	l.changes.stage(StructureChange{
		Type:       ChangeVisibility,
		Stamp:      l.generation.Load(),
		StartIndex: index,
		Count:      count,
		IsVisible:  visible,
	})
	l.redraw()
}

// PendingChanges returns the number of staged changes.
func (l *Layout) PendingChanges() int {
	return l.changes.len()
}

// Stats is a snapshot of layout state for diagnostics.
type Stats struct {
	Generation          uint64
	Cells               int
	LastMeasuredIndex   int
	FirstVisibleIndex   int
	LastVisibleIndex    int
	PendingChanges      int
	BackgroundMeasuring bool
	BackgroundProgress  int
	PendingShifts       int
	Window              window.Stats
}

// Stats returns a snapshot of layout state.
func (l *Layout) Stats() Stats {
	st := Stats{
		Generation:        l.Generation(),
		Cells:             l.LatestStructure().Len(),
		LastMeasuredIndex: l.LastMeasuredIndex(),
		FirstVisibleIndex: l.FirstVisibleIndex(),
		LastVisibleIndex:  l.LastVisibleIndex(),
		PendingChanges:    l.PendingChanges(),
		PendingShifts:     l.shifter.pending(),
		Window:            l.window.Stats(),
	}
	l.bgMu.Lock()
	if run := l.bg; run != nil {
		st.BackgroundMeasuring = !run.finished()
		st.BackgroundProgress = int(run.progress.Load())
	}
	l.bgMu.Unlock()
	return st
}

// WaitBackgroundMeasurement blocks until the running background measurement
// finishes or ctx ends.
func (l *Layout) WaitBackgroundMeasurement(ctx context.Context) error {
	l.bgMu.Lock()
	run := l.bg
	l.bgMu.Unlock()
	if run == nil {
		return nil
	}
	err := run.task.Wait(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// IsBackgroundMeasuring reports whether a background measurement is running.
func (l *Layout) IsBackgroundMeasuring() bool {
	l.bgMu.Lock()
	defer l.bgMu.Unlock()
	return l.bg != nil && !l.bg.finished()
}
