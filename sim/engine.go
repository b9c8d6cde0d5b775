package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

var (
	// ErrNegativeDelay is returned when an event is scheduled into the past.
	ErrNegativeDelay = errors.New("delay must be a non-negative number")
	// ErrClockRegression is returned when virtual time would move backwards.
	ErrClockRegression = errors.New("clock went backwards")
)

// Engine is the core object that holds virtual time and the event loop.
// It is single-threaded: every continuation runs on the caller of RunUntil.
type Engine struct {
	clock      float64
	queue      *EventHeap
	nextSeq    uint64 // Per-engine counter for deterministic tie-breaking
	dispatched uint64
	procs      []*Proc

	// OnDispatch, if set, observes every event right before its continuation runs.
	OnDispatch func(now float64, seq uint64)
}

// NewEngine creates an engine with its clock at zero and an empty queue.
func NewEngine() *Engine {
	return &Engine{
		queue: NewEventHeap(),
	}
}

// Now returns the current virtual time.
func (e *Engine) Now() float64 {
	return e.clock
}

// Pending returns the number of events waiting in the queue.
func (e *Engine) Pending() int {
	return e.queue.Len()
}

// Dispatched returns how many events have fired so far.
func (e *Engine) Dispatched() uint64 {
	return e.dispatched
}

// Processes returns every process started on this engine, in start order.
func (e *Engine) Processes() []*Proc {
	return e.procs
}

// Schedule enqueues fn to fire delay time units from now.
func (e *Engine) Schedule(delay float64, fn Continuation) (*Event, error) {
	if math.IsNaN(delay) || math.IsInf(delay, 0) || delay < 0 {
		return nil, fmt.Errorf("%w: got %v", ErrNegativeDelay, delay)
	}
	if fn == nil {
		return nil, errors.New("schedule: continuation must not be nil")
	}
	e.nextSeq++
	ev := &Event{time: e.clock + delay, seq: e.nextSeq, fn: fn}
	e.queue.Schedule(ev)
	return ev, nil
}

// RunUntil pops events in (time, sequence) order and runs their continuations
// until the queue is empty or the next event lies beyond horizon. Events firing
// exactly at horizon are executed. When events remain past the horizon the clock
// is left at horizon and those events stay queued, so a later call with a larger
// horizon continues the same simulation.
func (e *Engine) RunUntil(horizon float64) error {
	if math.IsNaN(horizon) || horizon < e.clock {
		return fmt.Errorf("%w: horizon %v precedes clock %v", ErrClockRegression, horizon, e.clock)
	}
	for e.queue.Len() > 0 {
		if e.queue.Peek().time > horizon {
			e.clock = horizon
			break
		}
		ev := e.queue.PopNext()
		if ev.time < e.clock {
			return fmt.Errorf("%w: %v < %v", ErrClockRegression, ev.time, e.clock)
		}
		e.clock = ev.time
		e.dispatched++
		logrus.Debugf("[tick %012.4f] event %d", e.clock, ev.seq)
		if e.OnDispatch != nil {
			e.OnDispatch(e.clock, ev.seq)
		}
		if err := ev.fn(); err != nil {
			return fmt.Errorf("event %d at %.4f: %w", ev.seq, ev.time, err)
		}
	}
	return nil
}
