package gglayout

import (
	"log/slog"
	"time"
)

// Default tuning values.
const (
	DefaultBatchSize         = 20
	DefaultBatchDelay        = 10 * time.Millisecond
	DefaultWindowSize        = 300
	DefaultWindowBehind      = 50
	DefaultWindowAhead       = 100
	DefaultShiftThreshold    = 1000
	DefaultCacheLifetime     = 16 * time.Millisecond
	DefaultCacheTolerance    = 5.0
	DefaultEstimatedItemSize = 60.0

	raceEpsilon         = 0.1
	minInitialMeasure   = 20
	maxInitialMeasure   = 200
	contentSizeMinDelta = 10.0
)

// Option configures a Layout during creation.
//
// Example:
//
//	l := gglayout.New(provider, measurer, renderer,
//	    gglayout.WithSplit(2),
//	    gglayout.WithSpacing(8),
//	    gglayout.WithMeasureStrategy(gglayout.MeasureVisible),
//	)
type Option func(*options)

type options struct {
	layoutType     LayoutType
	split          int
	dynamicColumns bool
	spacing        float64
	strategy       MeasuringStrategy
	recycling      RecyclingTemplate
	virtualisation VirtualisationType

	// Margins in units, multiplied by the draw scale.
	virtualisationInflated float64
	recyclingBuffer        float64

	lineBreaks   map[int]struct{}
	fillH, fillV bool

	batchSize      int
	batchDelay     time.Duration
	windowSize     int
	windowBehind   int
	windowAhead    int
	shiftThreshold int
	workers        int

	cacheLifetime  time.Duration
	cacheTolerance float64

	viewport     Viewport
	onInvalidate func()
	onRedraw     func()
	logger       *slog.Logger
	now          func() time.Time
}

func defaultOptions() options {
	return options{
		layoutType:      Column,
		strategy:        MeasureAll,
		virtualisation:  VirtualisationEnabled,
		recyclingBuffer: 500,
		batchSize:       DefaultBatchSize,
		batchDelay:      DefaultBatchDelay,
		windowSize:      DefaultWindowSize,
		windowBehind:    DefaultWindowBehind,
		windowAhead:     DefaultWindowAhead,
		shiftThreshold:  DefaultShiftThreshold,
		cacheLifetime:   DefaultCacheLifetime,
		cacheTolerance:  DefaultCacheTolerance,
		now:             time.Now,
	}
}

// WithType sets the stacking direction. Default is Column.
func WithType(t LayoutType) Option {
	return func(o *options) {
		o.layoutType = t
	}
}

// WithSplit sets the number of columns per row. Zero means one column for
// Column layouts and a single unbroken row for Row layouts.
func WithSplit(n int) Option {
	return func(o *options) {
		o.split = max(n, 0)
	}
}

// WithDynamicColumns lets a partial last row share its width among the
// cells it has instead of keeping Split-wide columns.
func WithDynamicColumns(enabled bool) Option {
	return func(o *options) {
		o.dynamicColumns = enabled
	}
}

// WithSpacing sets the gap between rows and columns, in units.
func WithSpacing(units float64) Option {
	return func(o *options) {
		o.spacing = max(units, 0)
	}
}

// WithMeasureStrategy selects how much of the collection is measured up front.
func WithMeasureStrategy(s MeasuringStrategy) Option {
	return func(o *options) {
		o.strategy = s
	}
}

// WithRecyclingTemplate enables measuring and drawing through template
// instances of a templated provider.
func WithRecyclingTemplate(r RecyclingTemplate) Option {
	return func(o *options) {
		o.recycling = r
	}
}

// WithVirtualisation enables or disables skipping cells outside the viewport.
func WithVirtualisation(v VirtualisationType) Option {
	return func(o *options) {
		o.virtualisation = v
	}
}

// WithVirtualisationInflated grows the visibility area by the given margin,
// in units, so cells just outside the viewport are drawn ahead of time.
func WithVirtualisationInflated(units float64) Option {
	return func(o *options) {
		o.virtualisationInflated = max(units, 0)
	}
}

// WithRecyclingBuffer sets how far beyond the visibility area, in units,
// views are kept before being marked hidden. Default is 500.
func WithRecyclingBuffer(units float64) Option {
	return func(o *options) {
		o.recyclingBuffer = max(units, 0)
	}
}

// WithLineBreaks forces a new row to start at each of the given indices.
func WithLineBreaks(indices ...int) Option {
	return func(o *options) {
		if o.lineBreaks == nil {
			o.lineBreaks = make(map[int]struct{}, len(indices))
		}
		for _, i := range indices {
			o.lineBreaks[i] = struct{}{}
		}
	}
}

// WithFill makes the layout take the full constraint width and/or height
// instead of hugging its content.
func WithFill(horizontal, vertical bool) Option {
	return func(o *options) {
		o.fillH = horizontal
		o.fillV = vertical
	}
}

// WithBatchSize sets how many items background measurement measures
// between two stagings. Default is 20.
func WithBatchSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

// WithBatchDelay sets the pause between background batches. Default is 10ms.
func WithBatchDelay(d time.Duration) Option {
	return func(o *options) {
		o.batchDelay = max(d, 0)
	}
}

// WithSlidingWindow bounds the measured-cell window: at most size cells are
// kept, and eviction spares behind cells before the first visible index and
// ahead cells after the last one.
func WithSlidingWindow(size, behind, ahead int) Option {
	return func(o *options) {
		if size > 0 {
			o.windowSize = size
		}
		o.windowBehind = max(behind, 0)
		o.windowAhead = max(ahead, 0)
	}
}

// WithShiftThreshold sets the number of affected items above which index
// shifts are recorded in an offset table instead of rewriting cached cells.
func WithShiftThreshold(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.shiftThreshold = n
		}
	}
}

// WithWorkers runs background measurement on a private pool of n workers
// instead of the shared pool.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = max(n, 0)
	}
}

// WithVisibleAreaCache sets how long and for how small a viewport movement a
// computed visibility area is reused.
func WithVisibleAreaCache(lifetime time.Duration, tolerance float64) Option {
	return func(o *options) {
		o.cacheLifetime = max(lifetime, 0)
		o.cacheTolerance = max(tolerance, 0)
	}
}

// WithViewport sets the source of the on-screen visible area.
// Without one the draw destination is the visible area.
func WithViewport(v Viewport) Option {
	return func(o *options) {
		o.viewport = v
	}
}

// WithInvalidate registers a callback invoked when the layout needs a full
// remeasure, for example after a Move or Reset of the collection.
func WithInvalidate(fn func()) Option {
	return func(o *options) {
		o.onInvalidate = fn
	}
}

// WithRedraw registers a callback invoked when staged changes are waiting
// to be applied by the next frame.
func WithRedraw(fn func()) Option {
	return func(o *options) {
		o.onRedraw = fn
	}
}

// WithLogger overrides the package logger for one layout.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// withClock replaces the time source. Used by tests.
func withClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// columns returns the cells per row used by virtualized measurement.
func (o *options) columns() int {
	if o.layoutType == Row {
		return maxColumns
	}
	return max(o.split, 1)
}

// horizontal reports whether the main axis is horizontal.
func (o *options) horizontal() bool {
	return o.layoutType == Row
}

func (o *options) isLineBreak(index int) bool {
	_, ok := o.lineBreaks[index]
	return ok
}

const maxColumns = int(^uint(0) >> 1)
