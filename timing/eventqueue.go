package timing

import "container/heap"

// An EventQueue orders events by due time. Events due at the same time come
// out in the order they went in. It is not safe for concurrent use; the
// engine that owns it serializes access.
type EventQueue struct {
	events eventHeap
	seq    uint64
}

// NewEventQueue creates an empty EventQueue.
func NewEventQueue() *EventQueue {
	return &EventQueue{}
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	heap.Push(&q.events, queuedEvent{evt: evt, seq: q.seq})
	q.seq++
}

// Pop removes and returns the earliest event. It returns false if the queue
// is empty.
func (q *EventQueue) Pop() (Event, bool) {
	if len(q.events) == 0 {
		return nil, false
	}

	return heap.Pop(&q.events).(queuedEvent).evt, true
}

// Len returns the number of queued events.
func (q *EventQueue) Len() int {
	return len(q.events)
}

type queuedEvent struct {
	evt Event
	seq uint64
}

type eventHeap []queuedEvent

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].evt.Time() == h[j].evt.Time() {
		return h[i].seq < h[j].seq
	}

	return h[i].evt.Time() < h[j].evt.Time()
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(queuedEvent))
}

func (h *eventHeap) Pop() any {
	last := (*h)[len(*h)-1]
	*h = (*h)[:len(*h)-1]

	return last
}
