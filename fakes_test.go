package gglayout

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"
)

// fakeView is the view handed out by fakeProvider.
type fakeView struct {
	index  int
	size   Size
	noDraw bool
	panics bool
	stale  bool
	h, v   Alignment
}

func (v *fakeView) CanDraw() bool { return !v.noDraw }

func (v *fakeView) NeedsMeasure() bool { return v.stale }

func (v *fakeView) Alignment() (Alignment, Alignment) { return v.h, v.v }

// fakeProvider serves fixed-size views for a mutable list of items.
type fakeProvider struct {
	mu        sync.Mutex
	sizes     []Size
	noDraw    map[int]bool
	panics    map[int]bool
	missing   map[int]bool
	templated bool
	align     Alignment

	templatesOut int
	hidden       []int
	released     []int
	drawViews    int
}

// newFakeProvider returns count items of the given height. Width zero means
// the item takes the width it is offered.
func newFakeProvider(height float64, count int) *fakeProvider {
	p := &fakeProvider{}
	for range count {
		p.sizes = append(p.sizes, Size{Height: height})
	}
	return p
}

func newFakeProviderSizes(sizes ...Size) *fakeProvider {
	return &fakeProvider{sizes: sizes}
}

func (p *fakeProvider) ChildrenCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sizes)
}

func (p *fakeProvider) ViewForIndex(index int, template View, _ float64, measuring bool) View {
	p.mu.Lock()
	defer p.mu.Unlock()
	if index < 0 || index >= len(p.sizes) || p.missing[index] {
		return nil
	}
	if !measuring {
		p.drawViews++
	}
	v, ok := template.(*fakeView)
	if !ok || v == nil {
		v = &fakeView{}
	}
	v.index = index
	v.size = p.sizes[index]
	v.noDraw = p.noDraw[index]
	v.panics = p.panics[index]
	v.h = p.align
	return v
}

func (p *fakeProvider) ReleaseViewInUse(index int, _ View) {
	p.mu.Lock()
	p.released = append(p.released, index)
	p.mu.Unlock()
}

func (p *fakeProvider) TemplateInstance() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.templated {
		return nil
	}
	p.templatesOut++
	return &fakeView{}
}

func (p *fakeProvider) ReleaseTemplateInstance(View) {
	p.mu.Lock()
	p.templatesOut--
	p.mu.Unlock()
}

func (p *fakeProvider) MarkViewAsHidden(index int) {
	p.mu.Lock()
	p.hidden = append(p.hidden, index)
	p.mu.Unlock()
}

func (p *fakeProvider) insert(at, count int, height float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	added := make([]Size, count)
	for i := range added {
		added[i] = Size{Height: height}
	}
	p.sizes = append(p.sizes[:at], append(added, p.sizes[at:]...)...)
}

func (p *fakeProvider) remove(at, count int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sizes = append(p.sizes[:at], p.sizes[at+count:]...)
}

func (p *fakeProvider) setHeight(index int, h float64) {
	p.mu.Lock()
	p.sizes[index].Height = h
	p.mu.Unlock()
}

func (p *fakeProvider) hiddenSet() map[int]bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	m := make(map[int]bool, len(p.hidden))
	for _, i := range p.hidden {
		m[i] = true
	}
	return m
}

// takeHidden returns the items marked hidden since the last call.
func (p *fakeProvider) takeHidden() map[int]bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	m := make(map[int]bool, len(p.hidden))
	for _, i := range p.hidden {
		m[i] = true
	}
	p.hidden = nil
	return m
}

// fakeMeasurer measures fakeViews: fixed height, and the fixed width or the
// offered width.
type fakeMeasurer struct{}

func (fakeMeasurer) Measure(v View, availableWidth, _ float64, scale float64) ScaledSize {
	fv, ok := v.(*fakeView)
	if !ok || fv.noDraw {
		return EmptySize(scale)
	}
	if fv.panics {
		panic("measure failed")
	}
	if fv.stale {
		fv.stale = false
	}
	w := fv.size.Width
	if w == 0 {
		w = availableWidth
		if math.IsInf(w, 1) {
			w = 100
		}
	}
	return SizeFromPixels(w, fv.size.Height, scale)
}

// gatedMeasurer blocks when it reaches the gate index until release is closed.
type gatedMeasurer struct {
	fakeMeasurer
	gate    int
	reached chan struct{}
	release chan struct{}
	once    sync.Once
	opened  sync.Once
}

func newGatedMeasurer(gate int) *gatedMeasurer {
	return &gatedMeasurer{gate: gate, reached: make(chan struct{}), release: make(chan struct{})}
}

func (m *gatedMeasurer) Measure(v View, availableWidth, availableHeight, scale float64) ScaledSize {
	if fv, ok := v.(*fakeView); ok && fv.index == m.gate {
		m.once.Do(func() { close(m.reached) })
		<-m.release
	}
	return m.fakeMeasurer.Measure(v, availableWidth, availableHeight, scale)
}

// open releases every measurement blocked at the gate.
func (m *gatedMeasurer) open() {
	m.opened.Do(func() { close(m.release) })
}

// waitReached blocks until background measurement reaches the gate.
func (m *gatedMeasurer) waitReached(t testing.TB) {
	t.Helper()
	select {
	case <-m.reached:
	case <-time.After(5 * time.Second):
		t.Fatal("gate never reached")
	}
}

// recordingRenderer records every DrawChild call.
type recordingRenderer struct {
	mu    sync.Mutex
	drawn []int
	rects map[int]Rect
}

func (r *recordingRenderer) DrawChild(_ *DrawContext, v View, dest Rect) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := -1
	if fv, ok := v.(*fakeView); ok {
		idx = fv.index
	}
	r.drawn = append(r.drawn, idx)
	if r.rects == nil {
		r.rects = make(map[int]Rect)
	}
	r.rects[idx] = dest
}

func (r *recordingRenderer) reset() {
	r.mu.Lock()
	r.drawn = nil
	r.rects = nil
	r.mu.Unlock()
}

func (r *recordingRenderer) drawnSet() map[int]bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := make(map[int]bool, len(r.drawn))
	for _, i := range r.drawn {
		m[i] = true
	}
	return m
}

// fixedViewport returns a viewport of the given rectangle.
func fixedViewport(r Rect) Viewport {
	return ViewportFunc(func() Rect { return r })
}

// listConstraints is an unbounded-height column of the given width.
func listConstraints(width float64) Rect {
	return Rect{Right: width, Bottom: math.Inf(1)}
}

// newListLayout creates a MeasureVisible layout on a private pool with no
// delay between background batches.
func newListLayout(t testing.TB, p ViewProvider, m Measurer, r Renderer, opts ...Option) *Layout {
	t.Helper()
	base := []Option{
		WithMeasureStrategy(MeasureVisible),
		WithWorkers(2),
		WithBatchDelay(0),
	}
	l := New(p, m, r, append(base, opts...)...)
	t.Cleanup(l.Close)
	return l
}

// settle waits for background measurement and applies everything it staged,
// until nothing is running or pending.
func settle(t testing.TB, l *Layout) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for {
		if err := l.WaitBackgroundMeasurement(ctx); err != nil {
			t.Fatalf("WaitBackgroundMeasurement() error = %v", err)
		}
		l.ApplyStructureChanges()
		if !l.IsBackgroundMeasuring() && l.PendingChanges() == 0 {
			return
		}
	}
}

// checkContiguous fails unless s holds exactly the indices [0, n) in order,
// all measured.
func checkContiguous(t *testing.T, s *Structure, n int) {
	t.Helper()
	if s.Len() != n {
		t.Fatalf("structure Len() = %d, want %d", s.Len(), n)
	}
	for i, c := range s.Cells() {
		if c.ControlIndex != i {
			t.Fatalf("cell %d ControlIndex = %d, want %d", i, c.ControlIndex, i)
		}
		if !c.WasMeasured {
			t.Fatalf("cell %d not measured", i)
		}
	}
}

// checkStacked fails unless every cell of a single-column structure starts
// spacing after the previous one ends.
func checkStacked(t *testing.T, s *Structure, spacing float64) {
	t.Helper()
	cells := s.Cells()
	for i := 1; i < len(cells); i++ {
		prev, c := cells[i-1], cells[i]
		want := prev.Area.Top + prev.extent(false) + spacing
		if math.Abs(c.Area.Top-want) > 1e-9 {
			t.Fatalf("cell %d Top = %v, want %v", c.ControlIndex, c.Area.Top, want)
		}
	}
}
