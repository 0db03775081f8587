package gglayout

import (
	"fmt"
	"strings"
)

// LayoutType selects the main axis of a stack.
type LayoutType uint8

const (
	// Column stacks rows top to bottom; Split sets the columns per row.
	Column LayoutType = iota
	// Row places cells left to right; Split wraps them into rows.
	Row
)

// String returns the layout type name.
func (t LayoutType) String() string {
	switch t {
	case Column:
		return "column"
	case Row:
		return "row"
	default:
		return fmt.Sprintf("LayoutType(%d)", t)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *LayoutType) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "column", "":
		*t = Column
	case "row":
		*t = Row
	default:
		return &ConfigError{Field: "type", Reason: fmt.Sprintf("unknown layout type %q", b)}
	}
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (t LayoutType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// MeasuringStrategy selects how much of a collection is measured up front.
type MeasuringStrategy uint8

const (
	// MeasureAll measures every child.
	MeasureAll MeasuringStrategy = iota
	// MeasureFirst measures the first child and gives every cell of a full
	// row the same size. Partial rows are measured. This is an
	// approximation that suits collections of uniformly sized items.
	MeasureFirst
	// MeasureVisible measures what the viewport shows and leaves the rest
	// to background measurement.
	MeasureVisible
)

// String returns the strategy name.
func (m MeasuringStrategy) String() string {
	switch m {
	case MeasureAll:
		return "measure_all"
	case MeasureFirst:
		return "measure_first"
	case MeasureVisible:
		return "measure_visible"
	default:
		return fmt.Sprintf("MeasuringStrategy(%d)", m)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *MeasuringStrategy) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "measure_all", "all", "":
		*m = MeasureAll
	case "measure_first", "first":
		*m = MeasureFirst
	case "measure_visible", "visible":
		*m = MeasureVisible
	default:
		return &ConfigError{Field: "strategy", Reason: fmt.Sprintf("unknown measuring strategy %q", b)}
	}
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (m MeasuringStrategy) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// RecyclingTemplate controls whether a templated provider's views are reused.
type RecyclingTemplate uint8

const (
	RecyclingDisabled RecyclingTemplate = iota
	RecyclingEnabled
)

// String returns the recycling mode name.
func (r RecyclingTemplate) String() string {
	if r == RecyclingEnabled {
		return "enabled"
	}
	return "disabled"
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *RecyclingTemplate) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "disabled", "":
		*r = RecyclingDisabled
	case "enabled":
		*r = RecyclingEnabled
	default:
		return &ConfigError{Field: "recycling", Reason: fmt.Sprintf("unknown recycling mode %q", b)}
	}
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (r RecyclingTemplate) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// VirtualisationType controls whether cells outside the viewport are skipped.
type VirtualisationType uint8

const (
	VirtualisationDisabled VirtualisationType = iota
	VirtualisationEnabled
)

// String returns the virtualisation mode name.
func (v VirtualisationType) String() string {
	if v == VirtualisationEnabled {
		return "enabled"
	}
	return "disabled"
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *VirtualisationType) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "disabled":
		*v = VirtualisationDisabled
	case "enabled", "":
		*v = VirtualisationEnabled
	default:
		return &ConfigError{Field: "virtualisation", Reason: fmt.Sprintf("unknown virtualisation mode %q", b)}
	}
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (v VirtualisationType) MarshalText() ([]byte, error) { return []byte(v.String()), nil }
