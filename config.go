package gglayout

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is the file form of the layout options.
//
// Example gglayout.toml:
//
//	[layout]
//	type = "column"
//	split = 2
//	spacing = 8.0
//	strategy = "measure_visible"
//	recycling = "enabled"
//
//	[background]
//	batch_size = 20
//	batch_delay_ms = 10
//
//	[window]
//	size = 300
//	behind = 50
//	ahead = 100
type Config struct {
	Layout     LayoutConfig     `toml:"layout"`
	Background BackgroundConfig `toml:"background"`
	Window     WindowConfig     `toml:"window"`
}

// LayoutConfig holds the geometry and measurement settings.
type LayoutConfig struct {
	Type                   LayoutType         `toml:"type"`
	Split                  int                `toml:"split"`
	DynamicColumns         bool               `toml:"dynamic_columns"`
	Spacing                float64            `toml:"spacing"`
	Strategy               MeasuringStrategy  `toml:"strategy"`
	Recycling              RecyclingTemplate  `toml:"recycling"`
	Virtualisation         VirtualisationType `toml:"virtualisation"`
	VirtualisationInflated float64            `toml:"virtualisation_inflated"`
	RecyclingBuffer        float64            `toml:"recycling_buffer"`
	FillHorizontal         bool               `toml:"fill_horizontal"`
	FillVertical           bool               `toml:"fill_vertical"`
	LineBreaks             []int              `toml:"line_breaks,omitempty"`
}

// BackgroundConfig holds the background measurement settings.
type BackgroundConfig struct {
	BatchSize      int `toml:"batch_size"`
	BatchDelayMS   int `toml:"batch_delay_ms"`
	ShiftThreshold int `toml:"shift_threshold"`
	Workers        int `toml:"workers"`
}

// WindowConfig holds the measured-cell window settings.
type WindowConfig struct {
	Size   int `toml:"size"`
	Behind int `toml:"behind"`
	Ahead  int `toml:"ahead"`
}

// DefaultConfig returns the configuration matching a Layout built without options.
func DefaultConfig() Config {
	o := defaultOptions()
	return Config{
		Layout: LayoutConfig{
			Type:            o.layoutType,
			Strategy:        o.strategy,
			Recycling:       o.recycling,
			Virtualisation:  o.virtualisation,
			RecyclingBuffer: o.recyclingBuffer,
		},
		Background: BackgroundConfig{
			BatchSize:      o.batchSize,
			BatchDelayMS:   int(o.batchDelay / time.Millisecond),
			ShiftThreshold: o.shiftThreshold,
		},
		Window: WindowConfig{
			Size:   o.windowSize,
			Behind: o.windowBehind,
			Ahead:  o.windowAhead,
		},
	}
}

// ParseConfig decodes TOML on top of DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("gglayout: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadConfig reads and parses a TOML file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultConfig(), fmt.Errorf("gglayout: read config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// Marshal encodes c as TOML.
func (c Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// Validate reports the first invalid field as a *ConfigError.
func (c Config) Validate() error {
	switch {
	case c.Layout.Split < 0:
		return &ConfigError{Field: "layout.split", Reason: "must not be negative"}
	case c.Layout.Spacing < 0:
		return &ConfigError{Field: "layout.spacing", Reason: "must not be negative"}
	case c.Layout.VirtualisationInflated < 0:
		return &ConfigError{Field: "layout.virtualisation_inflated", Reason: "must not be negative"}
	case c.Layout.RecyclingBuffer < 0:
		return &ConfigError{Field: "layout.recycling_buffer", Reason: "must not be negative"}
	case c.Background.BatchSize <= 0:
		return &ConfigError{Field: "background.batch_size", Reason: "must be positive"}
	case c.Background.BatchDelayMS < 0:
		return &ConfigError{Field: "background.batch_delay_ms", Reason: "must not be negative"}
	case c.Background.ShiftThreshold <= 0:
		return &ConfigError{Field: "background.shift_threshold", Reason: "must be positive"}
	case c.Background.Workers < 0:
		return &ConfigError{Field: "background.workers", Reason: "must not be negative"}
	case c.Window.Size <= 0:
		return &ConfigError{Field: "window.size", Reason: "must be positive"}
	case c.Window.Behind < 0 || c.Window.Ahead < 0:
		return &ConfigError{Field: "window", Reason: "buffers must not be negative"}
	case c.Window.Behind+c.Window.Ahead > c.Window.Size:
		return &ConfigError{Field: "window", Reason: "buffers exceed window size"}
	}
	return nil
}

// Options converts c into layout options.
func (c Config) Options() []Option {
	opts := []Option{
		WithType(c.Layout.Type),
		WithSplit(c.Layout.Split),
		WithDynamicColumns(c.Layout.DynamicColumns),
		WithSpacing(c.Layout.Spacing),
		WithMeasureStrategy(c.Layout.Strategy),
		WithRecyclingTemplate(c.Layout.Recycling),
		WithVirtualisation(c.Layout.Virtualisation),
		WithVirtualisationInflated(c.Layout.VirtualisationInflated),
		WithRecyclingBuffer(c.Layout.RecyclingBuffer),
		WithFill(c.Layout.FillHorizontal, c.Layout.FillVertical),
		WithBatchSize(c.Background.BatchSize),
		WithBatchDelay(time.Duration(c.Background.BatchDelayMS) * time.Millisecond),
		WithShiftThreshold(c.Background.ShiftThreshold),
		WithSlidingWindow(c.Window.Size, c.Window.Behind, c.Window.Ahead),
	}
	if len(c.Layout.LineBreaks) > 0 {
		opts = append(opts, WithLineBreaks(c.Layout.LineBreaks...))
	}
	if c.Background.Workers > 0 {
		opts = append(opts, WithWorkers(c.Background.Workers))
	}
	return opts
}
