package gglayout

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/gogpu/gglayout/internal/parallel"
)

// backgroundRun is one background measurement task.
type backgroundRun struct {
	task     *parallel.Task
	stamp    uint64
	start    int
	hasGaps  bool
	progress atomic.Int64
}

func (r *backgroundRun) finished() bool {
	if r.task.Canceled() {
		return true
	}
	select {
	case <-r.task.Done():
		return true
	default:
		return false
	}
}

// segment is a run of indices measured from a known slot. A tail segment
// extends to the current collection end.
type segment struct {
	start, end int
	tail       bool
	cur        cursor
}

// cancelBackground stops the running measurement without waiting for it.
func (l *Layout) cancelBackground() {
	l.bgMu.Lock()
	defer l.bgMu.Unlock()
	if l.bg != nil {
		l.bg.task.Cancel()
	}
}

// resumeBackground continues measurement after the committed structure
// changed: gaps first, then the tail. Render goroutine only.
func (l *Layout) resumeBackground() {
	if l.closed.Load() || l.opts.strategy != MeasureVisible {
		return
	}
	l.mu.Lock()
	rect, scale := l.constraints, l.scale
	l.mu.Unlock()
	l.startBackground(context.Background(), l.structure, rect, scale, l.LastMeasuredIndex()+1, l.gaps)
}

// startBackground schedules measurement of gaps and of the tail from
// startFrom. Slot positions come from s, which the caller owns.
func (l *Layout) startBackground(ctx context.Context, s *Structure, rect Rect, scale float64, startFrom int, gaps indexRanges) {
	if ctx == nil {
		ctx = context.Background()
	}
	count := l.provider.count()
	if startFrom >= count && len(gaps) == 0 {
		return
	}
	stamp := l.generation.Load()

	l.bgMu.Lock()
	defer l.bgMu.Unlock()

	if run := l.bg; run != nil && !run.finished() {
		if run.stamp == stamp && run.start <= startFrom && !run.hasGaps && len(gaps) == 0 {
			return
		}
		run.task.Cancel()
	}

	g := l.geometry(rect, scale)
	segs := make([]segment, 0, len(gaps)+1)
	for _, gap := range gaps {
		segs = append(segs, segment{start: gap.start, end: gap.end, cur: g.cursorAt(s, s.lowerBound(gap.end))})
	}
	segs = append(segs, segment{start: startFrom, tail: true, cur: g.cursorAt(s, s.lowerBound(startFrom))})

	run := &backgroundRun{stamp: stamp, start: startFrom, hasGaps: len(gaps) > 0}
	run.progress.Store(int64(startFrom))
	run.task = l.pool.Go(ctx, func(ctx context.Context) error {
		return l.runBackground(ctx, run, &g, segs, scale)
	})
	l.bg = run
}

func (l *Layout) runBackground(ctx context.Context, run *backgroundRun, g *listGeometry, segs []segment, scale float64) error {
	log := l.logger()
	log.Info("gglayout: background measurement started", "from", run.start, "gaps", len(segs)-1)
	started := time.Now()

	var template View
	if l.opts.recycling == RecyclingEnabled {
		template = l.provider.template()
		defer l.provider.releaseTemplate(template)
	}

	measured := 0
	for _, seg := range segs {
		cur := seg.cur
		for i := seg.start; ; {
			end := seg.end
			if seg.tail {
				end = l.provider.count()
			}
			if i >= end {
				break
			}
			end = min(end, i+l.opts.batchSize)

			n, err := l.measureBatch(ctx, run, g, &cur, template, i, end, scale)
			measured += n
			if err != nil {
				if errors.Is(err, context.Canceled) {
					log.Debug("gglayout: background measurement canceled", "at", i)
					return nil
				}
				log.Warn("gglayout: background measurement stopped", "at", i, "err", err)
				return err
			}
			i = end

			if !l.sleep(ctx, l.opts.batchDelay) {
				log.Debug("gglayout: background measurement canceled", "at", i)
				return nil
			}
		}
	}

	log.Info("gglayout: background measurement completed", "items", measured, "elapsed", time.Since(started))
	return nil
}

// measureBatch measures [start, end) from cur and stages the result.
func (l *Layout) measureBatch(ctx context.Context, run *backgroundRun, g *listGeometry, cur *cursor, template View, start, end int, scale float64) (int, error) {
	origin := *cur
	cells := make([]*Cell, 0, end-start)
	for i := start; i < end; i++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		c, ok := l.reuseCell(i, cur, g)
		if !ok {
			var err error
			if c, err = l.placeCell(i, cur, template, g, scale); err != nil {
				return 0, err
			}
		}
		cells = append(cells, c)
	}

	staged := l.changes.stageIf(ctx, StructureChange{
		Type:         ChangeBackgroundMeasurement,
		Stamp:        run.stamp,
		StartIndex:   start,
		Count:        len(cells),
		Cells:        cells,
		Origin:       Point{X: origin.X, Y: origin.Y},
		OriginRow:    origin.Row,
		OriginColumn: origin.Col,
	})
	if !staged {
		return 0, context.Canceled
	}

	run.progress.Store(int64(end))
	l.logger().Debug("gglayout: batch staged", "start", start, "end", end)
	l.redraw()
	return len(cells), nil
}

// trimWindow evicts measured cells beyond the window size, sparing the
// buffer around the visible range. Render goroutine only.
func (l *Layout) trimWindow() {
	if l.window.Len() <= l.opts.windowSize {
		return
	}
	first := max(l.FirstVisibleIndex(), 0)
	last := l.LastVisibleIndex()
	lo := max(first-l.opts.windowBehind, 0)
	hi := last + l.opts.windowAhead
	if n := l.shifter.evict(l.opts.windowSize, lo, hi); n > 0 {
		l.logger().Debug("gglayout: window trimmed", "evicted", n, "keep_from", lo, "keep_to", hi)
	}
}

// sleep waits d or until ctx ends, and reports whether ctx is still live.
func (l *Layout) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
