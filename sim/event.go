package sim

import "container/heap"

// Continuation is the work an event performs when it fires.
// It may schedule further events before returning.
type Continuation func() error

// Event is a pending continuation. It is owned by the EventHeap until popped.
type Event struct {
	time float64      // Virtual fire time
	seq  uint64       // Insertion order, tie-breaker for equal fire times
	fn   Continuation // Work to run when the event fires
}

// Timestamp returns the virtual time at which the event fires.
func (e *Event) Timestamp() float64 {
	return e.time
}

// Seq returns the scheduling sequence number of the event.
func (e *Event) Seq() uint64 {
	return e.seq
}

// EventHeap implements a priority queue with deterministic ordering
// Ordering: timestamp → sequence
type EventHeap struct {
	events []*Event
}

// NewEventHeap creates a new event heap
func NewEventHeap() *EventHeap {
	h := &EventHeap{
		events: make([]*Event, 0),
	}
	heap.Init(h)
	return h
}

// Len implements heap.Interface
func (h *EventHeap) Len() int {
	return len(h.events)
}

// Less implements heap.Interface with deterministic ordering
func (h *EventHeap) Less(i, j int) bool {
	ei, ej := h.events[i], h.events[j]

	// Primary: timestamp (lower first)
	if ei.time != ej.time {
		return ei.time < ej.time
	}

	// Secondary: sequence (scheduled first, fires first)
	return ei.seq < ej.seq
}

// Swap implements heap.Interface
func (h *EventHeap) Swap(i, j int) {
	h.events[i], h.events[j] = h.events[j], h.events[i]
}

// Push implements heap.Interface
func (h *EventHeap) Push(x any) {
	h.events = append(h.events, x.(*Event))
}

// Pop implements heap.Interface
func (h *EventHeap) Pop() any {
	old := h.events
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	h.events = old[0 : n-1]
	return item
}

// Schedule adds an event to the heap
func (h *EventHeap) Schedule(e *Event) {
	heap.Push(h, e)
}

// PopNext removes and returns the next event
func (h *EventHeap) PopNext() *Event {
	if h.Len() == 0 {
		return nil
	}
	return heap.Pop(h).(*Event)
}

// Peek returns the next event without removing it
func (h *EventHeap) Peek() *Event {
	if h.Len() == 0 {
		return nil
	}
	return h.events[0]
}
