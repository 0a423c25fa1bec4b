package engine

import (
	"sync"

	"github.com/SenderoElectoral/covid-19-simulator/internal/dataset"
)

// NotificationType distinguishes the outbound notification kinds.
type NotificationType int

const (
	// NoteTick carries the end-of-day snapshot, once per simulated day.
	NoteTick NotificationType = iota + 1
	// NoteHistoricalEvent fires once per event at its trigger date.
	NoteHistoricalEvent
	// NoteVariantChanged fires once per variant transition.
	NoteVariantChanged
)

// Notification is one typed engine notification. Exactly one payload
// field is set, matching Type.
type Notification struct {
	Type      NotificationType
	Snapshot  *Snapshot
	Event     *dataset.Event
	VariantID string
	Variant   *dataset.Variant
}

// NotificationQueue is a thread-safe FIFO of engine notifications.
//
// The engine publishes from its single writer goroutine; consumers drain
// from any goroutine after each simulated day. The queue is unbounded so
// a slow consumer never blocks the tick pipeline; delivery is
// exactly-once per occurrence.
type NotificationQueue struct {
	mu     sync.Mutex
	notes  []Notification
	closed bool
	signal chan struct{} // buffered, size 1: coalesces availability signals
}

func newNotificationQueue() *NotificationQueue {
	return &NotificationQueue{
		notes:  make([]Notification, 0, 64),
		signal: make(chan struct{}, 1),
	}
}

// publish appends a notification. Returns false if the queue is closed.
func (q *NotificationQueue) publish(n Notification) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.notes = append(q.notes, n)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryNext pops the oldest notification without blocking.
// Returns (Notification{}, false) when the queue is empty.
func (q *NotificationQueue) TryNext() (Notification, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.notes) == 0 {
		return Notification{}, false
	}

	n := q.notes[0]
	// Drop the slot so the popped payload pointers can be collected.
	q.notes[0] = Notification{}
	if len(q.notes) == 1 {
		q.notes = q.notes[:0]
	} else {
		q.notes = q.notes[1:]
	}
	return n, true
}

// Wait returns a channel that signals when notifications may be
// available. Use with select alongside a context Done channel, then call
// TryNext.
func (q *NotificationQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the number of pending notifications.
func (q *NotificationQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.notes)
}

// Close marks the queue closed and wakes all waiters. Further publishes
// are dropped.
func (q *NotificationQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
