// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package ggdraw renders gglayout layouts with gg 2D graphics.
//
// Canvas owns a gg.Context and implements gglayout.Renderer. Each frame
// clears the context, runs the layout's draw pass and paints every visible
// child into its destination rectangle:
//
//	gglayout.Layout -> Canvas.DrawChild -> Painter.Paint -> gg.Context
//
// Views that implement Painter paint themselves. Other views get a
// placeholder rounded rectangle, so a layout can be inspected before its
// views know how to draw.
//
// # Usage
//
//	canvas, err := ggdraw.New(800, 600)
//	if err != nil {
//	    return err
//	}
//	defer canvas.Close()
//
//	l := gglayout.New(provider, measurer, canvas)
//	l.Measure(gglayout.Rect{Right: 800, Bottom: math.Inf(1)}, 1)
//	canvas.Frame(l, gglayout.XYWH(0, -scrollY, 800, 600), 1)
//	canvas.SavePNG("frame.png")
//
// # Thread Safety
//
// Canvas is NOT safe for concurrent use. Frames run on the render
// goroutine, like the layout's draw pass.
package ggdraw
