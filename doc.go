// Package gglayout provides an incremental, virtualized layout engine for
// long scrollable collections.
//
// # Overview
//
// A Layout arranges the children of a ViewProvider into columns or rows, and
// wraps them into a grid when Split is above one. Only the cells near the
// viewport are measured up front; the remainder is estimated and measured
// later, on demand or by a background run. Collection changes are queued
// and applied between frames, so a host can keep drawing while the data
// underneath it moves.
//
// # Quick Start
//
//	list := items.NewList(labels...)
//	adapter := views.NewAdapter(list, func(s string) string { return s })
//	canvas, _ := ggdraw.New(480, 640)
//
//	l := gglayout.New(adapter, &views.TextMeasurer{}, canvas,
//		gglayout.WithSplit(2),
//		gglayout.WithMeasureStrategy(gglayout.MeasureVisible),
//		gglayout.WithViewport(gglayout.ViewportFunc(canvas.Bounds)),
//	)
//	defer l.Close()
//	defer l.Observe(list)()
//
//	l.Measure(gglayout.Rect{Right: 480, Bottom: math.Inf(1)}, 1)
//	canvas.Frame(l, gglayout.XYWH(0, -scrollY, 480, l.ContentSize().Pixels.Height), 1)
//
// # Measurement
//
// Measure builds a new Structure in a spare arena and publishes it with
// ApplyMeasureResult; readers always see a complete structure. A structure
// carries a generation stamp and changes recorded against an older
// generation are dropped.
//
// With MeasureVisible the first pass stops once the viewport is filled.
// MeasureAdditionalItems extends the measured prefix in small batches and
// StartBackgroundMeasurement measures the rest on worker goroutines. While
// measurement is partial, the content size only grows; it snaps to the
// exact value when the last cell is measured.
//
// # Drawing
//
// Draw places the measured cells that intersect the visible area into the
// destination of a DrawContext. With recycling enabled, views are borrowed
// from the provider for one frame and handed back afterwards, and cells that
// leave the recycle area are reported as hidden.
//
// # Coordinate System
//
// Origin at top-left, X increases right, Y increases down. Sizes are kept in
// both pixels and device-independent units; see ScaledSize.
//
// # Logging
//
// The package is silent by default. SetLogger installs a slog.Logger.
package gglayout
