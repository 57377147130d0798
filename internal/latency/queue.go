// Package latency simulates input lag on the displayed pointer.
package latency

import (
	"sync"
	"time"

	"github.com/verte-zerg/fitts/internal/geometry"
)

// DefaultCapacity bounds the number of pending pointer positions.
const DefaultCapacity = 4096

type entry struct {
	point geometry.Point
	at    time.Time
}

// Queue buffers observed pointer positions until their delay has elapsed.
// Push and Drain may be called from different goroutines.
type Queue struct {
	mu       sync.Mutex
	items    []entry
	capacity int
	dropped  int
}

// NewQueue returns a queue holding at most capacity positions. When full,
// the oldest position is dropped.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{capacity: capacity}
}

// Push appends a position observed at the given time.
func (q *Queue) Push(p geometry.Point, at time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) >= q.capacity {
		q.items = q.items[1:]
		q.dropped++
	}
	q.items = append(q.items, entry{point: p, at: at})
}

// Drain pops every position observed at least delay before now, front first,
// and returns the last one popped. It stops at the first position that is not
// yet due.
func (q *Queue) Drain(now time.Time, delay time.Duration) (geometry.Point, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var last geometry.Point
	n := 0
	for n < len(q.items) && now.Sub(q.items[n].at) >= delay {
		last = q.items[n].point
		n++
	}
	if n == 0 {
		return geometry.Point{}, false
	}
	q.items = append(q.items[:0], q.items[n:]...)
	return last, true
}

// Len returns the number of pending positions.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Dropped returns how many positions were discarded because the queue was full.
func (q *Queue) Dropped() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// Reset discards every pending position.
func (q *Queue) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = q.items[:0]
}
