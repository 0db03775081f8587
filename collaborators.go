package gglayout

import (
	"sync"

	"github.com/gogpu/gg"
)

// View is a child the layout measures and draws. Its content and painting
// belong to the caller; the layout only needs to know whether it can be drawn.
type View interface {
	CanDraw() bool
}

// Resizable is implemented by views whose content can change after they were
// measured. A drawn view reporting NeedsMeasure is measured again during the
// draw pass; the cells after it move by the size difference.
type Resizable interface {
	NeedsMeasure() bool
}

// Aligned is implemented by views that want a position inside their slot
// other than top-left.
type Aligned interface {
	Alignment() (horizontal, vertical Alignment)
}

// ViewProvider supplies the views of a layout.
//
// A templated provider returns a non-nil view from TemplateInstance; the
// layout then binds that instance to items during measurement and asks for
// recycled views while drawing. A provider that returns nil from
// TemplateInstance exposes its live children through ViewForIndex.
//
// The layout serializes every call to a provider, so implementations need no
// locking of their own with respect to the layout.
type ViewProvider interface {
	// ChildrenCount returns the number of items.
	ChildrenCount() int

	// ViewForIndex returns the view for index. When template is non-nil the
	// provider binds it to the item and returns it. sizeKey is the rounded
	// main-axis extent of the cell, usable as a recycling key.
	ViewForIndex(index int, template View, sizeKey float64, measuring bool) View

	// ReleaseViewInUse returns a view obtained from ViewForIndex.
	ReleaseViewInUse(index int, v View)

	// TemplateInstance checks out a template instance for measurement, or
	// returns nil for a provider without templates.
	TemplateInstance() View

	// ReleaseTemplateInstance returns an instance from TemplateInstance.
	ReleaseTemplateInstance(v View)

	// MarkViewAsHidden tells the provider that the view of index is outside
	// the recycling area and can be reused.
	MarkViewAsHidden(index int)
}

// Measurer measures a view against the available space. It returns
// EmptySize when the view has nothing to show.
//
// Measurer is called from the measuring goroutine, the render goroutine and
// background measurement, never concurrently for the same view.
type Measurer interface {
	Measure(v View, availableWidth, availableHeight, scale float64) ScaledSize
}

// MeasurerFunc adapts a function to Measurer.
type MeasurerFunc func(v View, availableWidth, availableHeight, scale float64) ScaledSize

// Measure calls f.
func (f MeasurerFunc) Measure(v View, availableWidth, availableHeight, scale float64) ScaledSize {
	return f(v, availableWidth, availableHeight, scale)
}

// DrawContext is passed to a draw pass.
type DrawContext struct {
	// Canvas is the target surface. It may be nil for renderers that do not
	// paint through gg.
	Canvas *gg.Context

	// Destination is where the layout itself is drawn, in screen pixels.
	// A scroll container moves it to scroll the content.
	Destination Rect

	Scale float64
}

// Renderer draws one visible child.
type Renderer interface {
	DrawChild(dc *DrawContext, v View, dest Rect)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(dc *DrawContext, v View, dest Rect)

// DrawChild calls f.
func (f RendererFunc) DrawChild(dc *DrawContext, v View, dest Rect) {
	f(dc, v, dest)
}

// Viewport reports the on-screen area the layout is visible through, in
// screen pixels. It is typically implemented by a scroll container.
type Viewport interface {
	VisibleArea() Rect
}

// ViewportFunc adapts a function to Viewport.
type ViewportFunc func() Rect

// VisibleArea calls f.
func (f ViewportFunc) VisibleArea() Rect {
	return f()
}

// serialProvider funnels every provider call through one mutex.
type serialProvider struct {
	mu sync.Mutex
	p  ViewProvider
}

func (s *serialProvider) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.ChildrenCount()
}

func (s *serialProvider) viewFor(index int, template View, sizeKey float64, measuring bool) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.ViewForIndex(index, template, sizeKey, measuring)
}

func (s *serialProvider) release(index int, v View) {
	if v == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p.ReleaseViewInUse(index, v)
}

func (s *serialProvider) template() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.TemplateInstance()
}

func (s *serialProvider) releaseTemplate(v View) {
	if v == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p.ReleaseTemplateInstance(v)
}

func (s *serialProvider) hideAll(indices []int) {
	if len(indices) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, i := range indices {
		s.p.MarkViewAsHidden(i)
	}
}
