package views

import (
	"sync"

	"github.com/gogpu/gglayout"
	"github.com/gogpu/gglayout/items"
)

// Adapter serves TextViews for the items of a list.
//
// Without templates every request creates a live view that the layout keeps
// in its cells. With templates, measurement binds a template instance to
// each item in turn and drawing checks views out of the pool per template
// id; the layout returns them after the frame.
type Adapter[T any] struct {
	list        *items.List[T]
	label       func(T) string
	style       *Style
	pool        *TemplatePool
	templateFor func(index int, item T) string

	mu     sync.Mutex
	hidden map[int]struct{}
}

// AdapterOption configures an Adapter.
type AdapterOption[T any] func(*Adapter[T])

// WithTemplates makes the adapter templated over pool. templateFor picks the
// template id of an item; nil uses DefaultTemplate for every item.
func WithTemplates[T any](pool *TemplatePool, templateFor func(index int, item T) string) AdapterOption[T] {
	return func(a *Adapter[T]) {
		a.pool = pool
		a.templateFor = templateFor
	}
}

// WithStyle sets the style of live views.
func WithStyle[T any](s *Style) AdapterOption[T] {
	return func(a *Adapter[T]) {
		a.style = s
	}
}

// NewAdapter creates an adapter over list. label turns an item into text.
func NewAdapter[T any](list *items.List[T], label func(T) string, opts ...AdapterOption[T]) *Adapter[T] {
	a := &Adapter[T]{
		list:   list,
		label:  label,
		hidden: make(map[int]struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ChildrenCount implements gglayout.ViewProvider.
func (a *Adapter[T]) ChildrenCount() int {
	return a.list.Len()
}

// ViewForIndex implements gglayout.ViewProvider.
func (a *Adapter[T]) ViewForIndex(index int, template gglayout.View, sizeKey float64, measuring bool) gglayout.View {
	item, ok := a.list.At(index)
	if !ok {
		return nil
	}

	var v *TextView
	switch {
	case template != nil:
		tv, ok := template.(*TextView)
		if !ok {
			return nil
		}
		v = tv
	case a.pool != nil && !measuring:
		v = a.pool.Checkout(a.templateID(index, item))
	default:
		v = NewTextView(a.style)
	}
	v.bind(index, a.label(item))
	v.SizeKey = sizeKey

	a.mu.Lock()
	delete(a.hidden, index)
	a.mu.Unlock()
	return v
}

func (a *Adapter[T]) templateID(index int, item T) string {
	if a.templateFor == nil {
		return DefaultTemplate
	}
	return a.templateFor(index, item)
}

// ReleaseViewInUse implements gglayout.ViewProvider.
func (a *Adapter[T]) ReleaseViewInUse(_ int, v gglayout.View) {
	if tv, ok := v.(*TextView); ok && a.pool != nil {
		a.pool.Checkin(tv)
	}
}

// TemplateInstance implements gglayout.ViewProvider.
func (a *Adapter[T]) TemplateInstance() gglayout.View {
	if a.pool == nil {
		return nil
	}
	return a.pool.Checkout(DefaultTemplate)
}

// ReleaseTemplateInstance implements gglayout.ViewProvider.
func (a *Adapter[T]) ReleaseTemplateInstance(v gglayout.View) {
	a.ReleaseViewInUse(-1, v)
}

// MarkViewAsHidden implements gglayout.ViewProvider.
func (a *Adapter[T]) MarkViewAsHidden(index int) {
	a.mu.Lock()
	a.hidden[index] = struct{}{}
	a.mu.Unlock()
}

// IsHidden reports whether the view of index left the recycling area and
// has not been requested since.
func (a *Adapter[T]) IsHidden(index int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.hidden[index]
	return ok
}

// HiddenCount returns the number of hidden items.
func (a *Adapter[T]) HiddenCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.hidden)
}
