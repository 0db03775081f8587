// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ggdraw

import (
	"errors"
	"fmt"
	"io"

	"github.com/gogpu/gg"

	"github.com/gogpu/gglayout"
)

// Common errors returned by Canvas operations.
var (
	// ErrCanvasClosed is returned when operations are attempted on a closed canvas.
	ErrCanvasClosed = errors.New("ggdraw: canvas is closed")

	// ErrInvalidDimensions is returned when width or height is invalid.
	ErrInvalidDimensions = errors.New("ggdraw: invalid dimensions")
)

// Painter is implemented by views that paint themselves into dest, given
// in canvas pixels.
type Painter interface {
	Paint(c *gg.Context, dest gglayout.Rect, scale float64)
}

// Canvas draws the visible children of a layout onto a gg.Context.
type Canvas struct {
	ctx    *gg.Context
	opts   options
	width  int
	height int
	drawn  int
	closed bool
}

// New creates a canvas of the given size.
//
// Returns error if dimensions are invalid.
func New(width, height int, opts ...Option) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, width, height)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Canvas{
		ctx:    gg.NewContext(width, height),
		opts:   o,
		width:  width,
		height: height,
	}, nil
}

// Context returns the gg drawing context, or nil if the canvas is closed.
func (c *Canvas) Context() *gg.Context {
	if c.closed {
		return nil
	}
	return c.ctx
}

// Size returns the canvas width and height in pixels.
func (c *Canvas) Size() (width, height int) {
	return c.width, c.height
}

// Bounds returns the canvas area as a layout rectangle.
func (c *Canvas) Bounds() gglayout.Rect {
	return gglayout.XYWH(0, 0, float64(c.width), float64(c.height))
}

// Resize changes canvas dimensions and clears it.
//
// Returns error if dimensions are invalid or canvas is closed.
func (c *Canvas) Resize(width, height int) error {
	if c.closed {
		return ErrCanvasClosed
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, width, height)
	}
	if c.width == width && c.height == height {
		return nil
	}
	if err := c.ctx.Resize(width, height); err != nil {
		return fmt.Errorf("ggdraw: context resize failed: %w", err)
	}
	c.width = width
	c.height = height
	return nil
}

// Frame clears the canvas and draws l with its origin at dest. Moving dest
// scrolls the content. It returns the number of children drawn.
func (c *Canvas) Frame(l *gglayout.Layout, dest gglayout.Rect, scale float64) (int, error) {
	if c.closed {
		return 0, ErrCanvasClosed
	}
	c.ctx.ClearWithColor(c.opts.background)
	c.drawn = 0
	n := l.Draw(&gglayout.DrawContext{Canvas: c.ctx, Destination: dest, Scale: scale})
	gglayout.Logger().Debug("ggdraw: frame", "drawn", n, "painted", c.drawn)
	return n, nil
}

// Drawn returns the number of children painted since the last Frame.
func (c *Canvas) Drawn() int {
	return c.drawn
}

// DrawChild implements gglayout.Renderer. It paints v into dest on the draw
// context's canvas, or on the canvas's own context when dc has none.
func (c *Canvas) DrawChild(dc *gglayout.DrawContext, v gglayout.View, dest gglayout.Rect) {
	target := c.ctx
	scale := 1.0
	if dc != nil {
		if dc.Canvas != nil {
			target = dc.Canvas
		}
		if dc.Scale > 0 {
			scale = dc.Scale
		}
	}
	if target == nil || c.closed {
		return
	}

	target.Push()
	defer target.Pop()
	if c.opts.clip {
		target.ClipRect(dest.Left, dest.Top, dest.Width(), dest.Height())
	}

	if p, ok := v.(Painter); ok {
		p.Paint(target, dest, scale)
	} else {
		c.placeholder(target, dest, scale)
	}
	c.drawn++
}

func (c *Canvas) placeholder(target *gg.Context, dest gglayout.Rect, scale float64) {
	p := c.opts.placeholder
	inset := c.opts.inset * scale
	w, h := dest.Width()-2*inset, dest.Height()-2*inset
	if w <= 0 || h <= 0 {
		return
	}
	target.SetRGBA(p.R, p.G, p.B, p.A)
	target.DrawRoundedRectangle(dest.Left+inset, dest.Top+inset, w, h, c.opts.radius*scale)
	if err := target.Fill(); err != nil {
		gglayout.Logger().Warn("ggdraw: placeholder fill failed", "err", err)
	}
}

// SavePNG writes the canvas to a PNG file.
func (c *Canvas) SavePNG(path string) error {
	if c.closed {
		return ErrCanvasClosed
	}
	return c.ctx.SavePNG(path)
}

// EncodePNG writes the canvas as PNG to w.
func (c *Canvas) EncodePNG(w io.Writer) error {
	if c.closed {
		return ErrCanvasClosed
	}
	return c.ctx.EncodePNG(w)
}

// Close releases the drawing context. Close is safe to call multiple times.
func (c *Canvas) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.ctx.Close()
}
