// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ggdraw

import "github.com/gogpu/gg"

// Option configures a Canvas during creation.
type Option func(*options)

type options struct {
	background  gg.RGBA
	placeholder gg.RGBA
	radius      float64
	inset       float64
	clip        bool
}

func defaultOptions() options {
	return options{
		background:  gg.White,
		placeholder: gg.Hex("#d8dee9"),
		radius:      4,
		inset:       1,
		clip:        true,
	}
}

// WithBackground sets the color each frame is cleared with. Default is white.
func WithBackground(c gg.RGBA) Option {
	return func(o *options) {
		o.background = c
	}
}

// WithPlaceholder sets the fill and corner radius of children that cannot
// paint themselves.
func WithPlaceholder(c gg.RGBA, radius float64) Option {
	return func(o *options) {
		o.placeholder = c
		o.radius = max(radius, 0)
	}
}

// WithInset sets the gap, in units, between a placeholder and its cell.
// Default is 1.
func WithInset(units float64) Option {
	return func(o *options) {
		o.inset = max(units, 0)
	}
}

// WithClip enables clipping each child to its destination. Default is true.
func WithClip(enabled bool) Option {
	return func(o *options) {
		o.clip = enabled
	}
}
