package views

import "sync"

// DefaultTemplate is the template id used when none is chosen.
const DefaultTemplate = "text"

// TemplatePool keeps free TextViews per template id. Views are created on
// demand and returned with Checkin once the layout releases them.
//
// Usage:
//
//	pool := views.NewTemplatePool(nil)
//	v := pool.Checkout(views.DefaultTemplate)
//	defer pool.Checkin(v)
//
// TemplatePool is safe for concurrent use.
type TemplatePool struct {
	mu      sync.Mutex
	newView func(id string) *TextView
	free    map[string][]*TextView
	out     int
	created int
}

// NewTemplatePool creates a pool. newView builds a view for a template id;
// nil creates default-styled views.
func NewTemplatePool(newView func(id string) *TextView) *TemplatePool {
	if newView == nil {
		newView = func(string) *TextView { return NewTextView(nil) }
	}
	return &TemplatePool{newView: newView, free: make(map[string][]*TextView)}
}

// Checkout returns a free view of template id, creating one if needed.
func (p *TemplatePool) Checkout(id string) *TextView {
	if id == "" {
		id = DefaultTemplate
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.out++
	if free := p.free[id]; len(free) > 0 {
		v := free[len(free)-1]
		p.free[id] = free[:len(free)-1]
		return v
	}
	p.created++
	v := p.newView(id)
	v.template = id
	v.Index = -1
	return v
}

// Checkin returns a view obtained from Checkout. The view is unbound.
func (p *TemplatePool) Checkin(v *TextView) {
	if v == nil || v.template == "" {
		return
	}
	v.unbind()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.out--
	p.free[v.template] = append(p.free[v.template], v)
}

// Warmup pre-creates n free views of template id.
func (p *TemplatePool) Warmup(id string, n int) {
	vs := make([]*TextView, n)
	for i := range vs {
		vs[i] = p.Checkout(id)
	}
	for _, v := range vs {
		p.Checkin(v)
	}
}

// PoolStats is a snapshot of pool counters.
type PoolStats struct {
	Created    int
	Free       int
	CheckedOut int
}

// Stats returns current counters.
func (p *TemplatePool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	free := 0
	for _, vs := range p.free {
		free += len(vs)
	}
	return PoolStats{Created: p.created, Free: free, CheckedOut: p.out}
}
