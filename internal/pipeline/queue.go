package pipeline

import "sync"

// Queue is an unbounded FIFO connecting two pipeline stages. It mirrors
// classic task-queue semantics: Push never blocks, Pop blocks until work or
// a termination sentinel arrives, and Join is a barrier that waits for
// every pushed item to be popped AND marked Done — an item being processed
// may still push work onto the next queue, so "empty" alone is not "done".
type Queue[T any] struct {
	mu          sync.Mutex
	cond        *sync.Cond
	items       []queueItem[T]
	outstanding int
}

// queueItem tags real work apart from the stop sentinel.
type queueItem[T any] struct {
	value T
	stop  bool
}

func NewQueue[T any]() *Queue[T] {
	q := &Queue[T]{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push enqueues a work item. Never blocks.
func (q *Queue[T]) Push(v T) {
	q.mu.Lock()
	q.items = append(q.items, queueItem[T]{value: v})
	q.outstanding++
	q.cond.Broadcast()
	q.mu.Unlock()
}

// PushStop enqueues one termination sentinel. Sentinels do not count as
// outstanding work; Join ignores them.
func (q *Queue[T]) PushStop() {
	q.mu.Lock()
	q.items = append(q.items, queueItem[T]{stop: true})
	q.cond.Broadcast()
	q.mu.Unlock()
}

// Pop blocks until an item is available. ok is false when the popped item
// is a termination sentinel, telling the worker to exit.
func (q *Queue[T]) Pop() (v T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 {
		q.cond.Wait()
	}
	it := q.items[0]
	q.items = q.items[1:]
	if it.stop {
		var zero T
		return zero, false
	}
	return it.value, true
}

// Done marks one previously popped work item as fully processed.
func (q *Queue[T]) Done() {
	q.mu.Lock()
	q.outstanding--
	if q.outstanding <= 0 {
		q.cond.Broadcast()
	}
	q.mu.Unlock()
}

// Join blocks until every pushed item has been processed (popped and
// Done). Callers inject sentinels only after Join returns, so no work
// discovered late by another worker can be lost.
func (q *Queue[T]) Join() {
	q.mu.Lock()
	for q.outstanding > 0 {
		q.cond.Wait()
	}
	q.mu.Unlock()
}
