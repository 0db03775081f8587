// Package items provides an observable, indexable item collection that
// reports mutations as change notifications.
package items

import (
	"errors"
	"fmt"
	"sync"
)

// ErrIndexOutOfRange is returned by mutations addressing a missing index.
var ErrIndexOutOfRange = errors.New("items: index out of range")

// Action identifies the kind of mutation.
type Action uint8

const (
	ActionAdd Action = iota
	ActionRemove
	ActionReplace
	ActionMove
	ActionReset
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionAdd:
		return "Add"
	case ActionRemove:
		return "Remove"
	case ActionReplace:
		return "Replace"
	case ActionMove:
		return "Move"
	case ActionReset:
		return "Reset"
	default:
		return fmt.Sprintf("Action(%d)", a)
	}
}

// Change describes one mutation. NewIndex/NewCount address the items after
// the mutation, OldIndex/OldCount the items before it.
type Change struct {
	Action   Action
	NewIndex int
	NewCount int
	OldIndex int
	OldCount int
}

// Observable is a collection that reports its mutations.
type Observable interface {
	// Subscribe registers fn and returns a function that unregisters it.
	Subscribe(fn func(Change)) func()
}

// List is a mutable slice that notifies subscribers after each mutation.
// Notifications are delivered synchronously, in mutation order, on the
// mutating goroutine.
//
// Thread safety: List is safe for concurrent use.
type List[T any] struct {
	// emitMu serializes mutate-then-notify so subscribers see changes in order.
	emitMu sync.Mutex
	mu     sync.RWMutex
	items  []T

	subsMu sync.Mutex
	subs   map[int]func(Change)
	nextID int
}

// NewList creates a list holding a copy of items.
func NewList[T any](items ...T) *List[T] {
	return &List[T]{items: append([]T(nil), items...)}
}

// Len returns the number of items.
func (l *List[T]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// At returns the item at i.
func (l *List[T]) At(i int) (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i < 0 || i >= len(l.items) {
		var zero T
		return zero, false
	}
	return l.items[i], true
}

// Items returns a copy of all items.
func (l *List[T]) Items() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]T(nil), l.items...)
}

// Subscribe registers fn for change notifications.
func (l *List[T]) Subscribe(fn func(Change)) func() {
	l.subsMu.Lock()
	defer l.subsMu.Unlock()
	if l.subs == nil {
		l.subs = make(map[int]func(Change))
	}
	id := l.nextID
	l.nextID++
	l.subs[id] = fn

	return func() {
		l.subsMu.Lock()
		delete(l.subs, id)
		l.subsMu.Unlock()
	}
}

func (l *List[T]) notify(c Change) {
	l.subsMu.Lock()
	ids := make([]int, 0, len(l.subs))
	for id := range l.subs {
		ids = append(ids, id)
	}
	fns := make([]func(Change), 0, len(ids))
	for _, id := range sortedInts(ids) {
		fns = append(fns, l.subs[id])
	}
	l.subsMu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}

// mutate runs fn under the write lock and, on success, delivers the change
// it returns.
func (l *List[T]) mutate(fn func() (Change, error)) error {
	l.emitMu.Lock()
	defer l.emitMu.Unlock()

	l.mu.Lock()
	c, err := fn()
	l.mu.Unlock()
	if err != nil {
		return err
	}
	l.notify(c)
	return nil
}

// Append adds items at the end.
func (l *List[T]) Append(items ...T) {
	if len(items) == 0 {
		return
	}
	_ = l.mutate(func() (Change, error) {
		at := len(l.items)
		l.items = append(l.items, items...)
		return Change{Action: ActionAdd, NewIndex: at, NewCount: len(items), OldIndex: -1}, nil
	})
}

// Insert adds items before index i.
func (l *List[T]) Insert(i int, items ...T) error {
	if len(items) == 0 {
		return nil
	}
	return l.mutate(func() (Change, error) {
		if i < 0 || i > len(l.items) {
			return Change{}, fmt.Errorf("%w: insert at %d of %d", ErrIndexOutOfRange, i, len(l.items))
		}
		l.items = append(l.items[:i], append(append([]T(nil), items...), l.items[i:]...)...)
		return Change{Action: ActionAdd, NewIndex: i, NewCount: len(items), OldIndex: -1}, nil
	})
}

// RemoveAt removes n items starting at i.
func (l *List[T]) RemoveAt(i, n int) error {
	if n <= 0 {
		return nil
	}
	return l.mutate(func() (Change, error) {
		if i < 0 || i+n > len(l.items) {
			return Change{}, fmt.Errorf("%w: remove %d at %d of %d", ErrIndexOutOfRange, n, i, len(l.items))
		}
		l.items = append(l.items[:i], l.items[i+n:]...)
		return Change{Action: ActionRemove, OldIndex: i, OldCount: n, NewIndex: -1}, nil
	})
}

// Replace overwrites items starting at i.
func (l *List[T]) Replace(i int, items ...T) error {
	if len(items) == 0 {
		return nil
	}
	return l.mutate(func() (Change, error) {
		if i < 0 || i+len(items) > len(l.items) {
			return Change{}, fmt.Errorf("%w: replace %d at %d of %d", ErrIndexOutOfRange, len(items), i, len(l.items))
		}
		copy(l.items[i:], items)
		return Change{Action: ActionReplace, NewIndex: i, NewCount: len(items), OldIndex: i, OldCount: len(items)}, nil
	})
}

// Move moves the item at from so that it ends up at index to.
func (l *List[T]) Move(from, to int) error {
	return l.mutate(func() (Change, error) {
		if from < 0 || from >= len(l.items) || to < 0 || to >= len(l.items) {
			return Change{}, fmt.Errorf("%w: move %d to %d of %d", ErrIndexOutOfRange, from, to, len(l.items))
		}
		item := l.items[from]
		l.items = append(l.items[:from], l.items[from+1:]...)
		l.items = append(l.items[:to], append([]T{item}, l.items[to:]...)...)
		return Change{Action: ActionMove, OldIndex: from, OldCount: 1, NewIndex: to, NewCount: 1}, nil
	})
}

// Reset replaces the whole content.
func (l *List[T]) Reset(items []T) {
	_ = l.mutate(func() (Change, error) {
		old := len(l.items)
		l.items = append([]T(nil), items...)
		return Change{Action: ActionReset, OldCount: old, NewCount: len(l.items)}, nil
	})
}

func sortedInts(s []int) []int {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
	return s
}
