package gglayout

import (
	"context"
	"fmt"
	"sync"
)

// ChangeType identifies a staged structure change.
type ChangeType uint8

const (
	ChangeAdd ChangeType = iota
	ChangeRemove
	ChangeReplace
	ChangeMove
	ChangeReset
	ChangeVisibility
	ChangeBackgroundMeasurement
	ChangeSingleItemUpdate
)

// String returns the change type name.
func (t ChangeType) String() string {
	switch t {
	case ChangeAdd:
		return "Add"
	case ChangeRemove:
		return "Remove"
	case ChangeReplace:
		return "Replace"
	case ChangeMove:
		return "Move"
	case ChangeReset:
		return "Reset"
	case ChangeVisibility:
		return "VisibilityChange"
	case ChangeBackgroundMeasurement:
		return "BackgroundMeasurement"
	case ChangeSingleItemUpdate:
		return "SingleItemUpdate"
	default:
		return fmt.Sprintf("ChangeType(%d)", t)
	}
}

// StructureChange is a mutation waiting to be applied to the committed
// structure by the render goroutine.
type StructureChange struct {
	Type ChangeType

	// Stamp is the layout generation the change was produced for. Changes
	// whose stamp is not the current generation are dropped.
	Stamp uint64

	StartIndex int
	Count      int
	// OldCount is the number of replaced items for ChangeReplace.
	OldCount int

	IsVisible bool

	// Cells carries the results of a background batch.
	Cells []*Cell
	// Origin is the slot position the batch expected its first cell at.
	Origin       Point
	OriginRow    int
	OriginColumn int

	// Cell carries the result of a single item remeasure, positioned at the
	// layout origin.
	Cell *Cell
}

// changeQueue is a FIFO of staged changes. Producers append from any
// goroutine; the render goroutine drains it.
type changeQueue struct {
	mu    sync.Mutex
	items []StructureChange
}

func (q *changeQueue) stage(c StructureChange) {
	q.mu.Lock()
	q.items = append(q.items, c)
	q.mu.Unlock()
}

// stageIf appends c unless ctx is done. The check happens under the queue
// lock, so a producer canceled before another change was staged can never
// land after it.
func (q *changeQueue) stageIf(ctx context.Context, c StructureChange) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if ctx.Err() != nil {
		return false
	}
	q.items = append(q.items, c)
	return true
}

// drain removes and returns every staged change in staging order.
func (q *changeQueue) drain() []StructureChange {
	q.mu.Lock()
	items := q.items
	q.items = nil
	q.mu.Unlock()
	return items
}

func (q *changeQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
