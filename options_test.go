package gglayout

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()

	if o.layoutType != Column {
		t.Errorf("layoutType = %v, want column", o.layoutType)
	}
	if o.strategy != MeasureAll {
		t.Errorf("strategy = %v, want measure_all", o.strategy)
	}
	if o.virtualisation != VirtualisationEnabled {
		t.Errorf("virtualisation = %v, want enabled", o.virtualisation)
	}
	if o.batchSize != DefaultBatchSize || o.batchDelay != DefaultBatchDelay {
		t.Errorf("batch = %d/%v, want %d/%v", o.batchSize, o.batchDelay, DefaultBatchSize, DefaultBatchDelay)
	}
	if o.windowSize != DefaultWindowSize || o.windowBehind != DefaultWindowBehind || o.windowAhead != DefaultWindowAhead {
		t.Errorf("window = %d/%d/%d", o.windowSize, o.windowBehind, o.windowAhead)
	}
	if o.shiftThreshold != DefaultShiftThreshold {
		t.Errorf("shiftThreshold = %d, want %d", o.shiftThreshold, DefaultShiftThreshold)
	}
	if o.now == nil {
		t.Error("now should default to time.Now")
	}
}

func TestOptionsClamp(t *testing.T) {
	o := defaultOptions()
	for _, opt := range []Option{
		WithSplit(-3),
		WithSpacing(-1),
		WithBatchSize(0),
		WithBatchDelay(-time.Second),
		WithSlidingWindow(0, -1, -1),
		WithShiftThreshold(-5),
		WithWorkers(-2),
	} {
		opt(&o)
	}

	if o.split != 0 || o.spacing != 0 {
		t.Errorf("split/spacing = %d/%v, want 0/0", o.split, o.spacing)
	}
	if o.batchSize != DefaultBatchSize {
		t.Errorf("batchSize = %d, want default", o.batchSize)
	}
	if o.batchDelay != 0 {
		t.Errorf("batchDelay = %v, want 0", o.batchDelay)
	}
	if o.windowSize != DefaultWindowSize || o.windowBehind != 0 || o.windowAhead != 0 {
		t.Errorf("window = %d/%d/%d", o.windowSize, o.windowBehind, o.windowAhead)
	}
	if o.shiftThreshold != DefaultShiftThreshold || o.workers != 0 {
		t.Errorf("shiftThreshold/workers = %d/%d", o.shiftThreshold, o.workers)
	}
}

func TestOptionsColumns(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want int
	}{
		{"column default", nil, 1},
		{"column split", []Option{WithSplit(3)}, 3},
		{"row", []Option{WithType(Row), WithSplit(3)}, maxColumns},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := defaultOptions()
			for _, opt := range tt.opts {
				opt(&o)
			}
			if got := o.columns(); got != tt.want {
				t.Errorf("columns() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWithLineBreaks(t *testing.T) {
	o := defaultOptions()
	WithLineBreaks(3, 7)(&o)
	WithLineBreaks(9)(&o)
	for _, i := range []int{3, 7, 9} {
		if !o.isLineBreak(i) {
			t.Errorf("isLineBreak(%d) = false, want true", i)
		}
	}
	if o.isLineBreak(4) {
		t.Error("isLineBreak(4) = true, want false")
	}
}

func TestEnumText(t *testing.T) {
	tests := []struct {
		text string
		into interface {
			UnmarshalText([]byte) error
			String() string
		}
		want string
	}{
		{"ROW", new(LayoutType), "row"},
		{"visible", new(MeasuringStrategy), "measure_visible"},
		{"measure_first", new(MeasuringStrategy), "measure_first"},
		{"enabled", new(RecyclingTemplate), "enabled"},
		{"", new(VirtualisationType), "enabled"},
		{"disabled", new(VirtualisationType), "disabled"},
	}
	for _, tt := range tests {
		if err := tt.into.UnmarshalText([]byte(tt.text)); err != nil {
			t.Errorf("UnmarshalText(%q) error = %v", tt.text, err)
			continue
		}
		if got := tt.into.String(); got != tt.want {
			t.Errorf("UnmarshalText(%q) = %s, want %s", tt.text, got, tt.want)
		}
	}

	var lt LayoutType
	err := lt.UnmarshalText([]byte("diagonal"))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("UnmarshalText(diagonal) error = %v, want ErrInvalidConfig", err)
	}
}
