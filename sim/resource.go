package sim

import (
	"errors"
	"fmt"
)

// ErrNotHeld is returned when a process releases a slot it does not hold.
var ErrNotHeld = errors.New("resource slot not held by process")

type waiter struct {
	proc  *Proc
	since float64
}

// Resource is a capacity-limited shared entity. Requesters that find every
// slot taken wait in FIFO order; a released slot passes straight to the
// longest-waiting requester.
type Resource struct {
	name     string
	eng      *Engine
	capacity int
	inUse    int
	waiters  []waiter

	maxInUse  int
	grants    uint64
	queueWait float64 // Total virtual time requesters spent in the wait queue
}

// NewResource creates a resource bound to this engine.
func (e *Engine) NewResource(name string, capacity int) (*Resource, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("resource %s: capacity must be >= 1, got %d", name, capacity)
	}
	return &Resource{name: name, eng: e, capacity: capacity}, nil
}

// Name returns the resource name.
func (r *Resource) Name() string { return r.name }

// Capacity returns the configured number of slots.
func (r *Resource) Capacity() int { return r.capacity }

// InUse returns the number of slots currently held.
func (r *Resource) InUse() int { return r.inUse }

// QueueLen returns the number of processes waiting for a slot.
func (r *Resource) QueueLen() int { return len(r.waiters) }

// MaxInUse returns the highest number of slots held at once.
func (r *Resource) MaxInUse() int { return r.maxInUse }

// Grants returns how many times a slot has been handed to a process.
func (r *Resource) Grants() uint64 { return r.grants }

// QueueWait returns the total time requesters spent waiting for a slot.
func (r *Resource) QueueWait() float64 { return r.queueWait }

func (r *Resource) request(p *Proc) {
	if r.inUse < r.capacity {
		r.inUse++
		r.handOver(p, p.eng.clock)
		return
	}
	r.waiters = append(r.waiters, waiter{proc: p, since: r.eng.clock})
}

// handOver gives an already-counted slot to p and resumes it at the current time.
func (r *Resource) handOver(p *Proc, since float64) {
	p.held = append(p.held, r)
	r.grants++
	r.queueWait += r.eng.clock - since
	if r.inUse > r.maxInUse {
		r.maxInUse = r.inUse
	}
	if _, err := r.eng.Schedule(0, p.step); err != nil {
		// zero delay is always valid
		panic(err)
	}
}

func (r *Resource) release(p *Proc) error {
	idx := -1
	for i := len(p.held) - 1; i >= 0; i-- {
		if p.held[i] == r {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s by %s", ErrNotHeld, r.name, p.name)
	}
	p.held = append(p.held[:idx], p.held[idx+1:]...)

	if len(r.waiters) > 0 {
		next := r.waiters[0]
		r.waiters[0] = waiter{}
		r.waiters = r.waiters[1:]
		r.handOver(next.proc, next.since)
		return nil
	}
	r.inUse--
	return nil
}
