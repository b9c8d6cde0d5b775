package sim

import (
	"errors"
	"fmt"
)

type yieldKind int

const (
	yieldTimeout yieldKind = iota
	yieldAcquire
	yieldExit
)

// Yield tells the engine how a process suspends after a Resume call.
// Build one with Timeout, Acquire or Exit.
type Yield struct {
	kind  yieldKind
	delay float64
	res   *Resource
}

// Timeout suspends the process for d virtual time units.
func Timeout(d float64) Yield {
	return Yield{kind: yieldTimeout, delay: d}
}

// Acquire suspends the process until r grants it a slot.
func Acquire(r *Resource) Yield {
	return Yield{kind: yieldAcquire, res: r}
}

// Exit ends the process. Any slots it still holds are released.
func Exit() Yield {
	return Yield{kind: yieldExit}
}

// Process is a resumable state machine. Resume runs from the current state
// until the next suspension point and reports it as a Yield.
type Process interface {
	Resume(p *Proc) (Yield, error)
}

// ProcessFunc adapts an ordinary function to the Process interface.
type ProcessFunc func(p *Proc) (Yield, error)

// Resume calls f(p).
func (f ProcessFunc) Resume(p *Proc) (Yield, error) {
	return f(p)
}

// Proc is the engine-side handle of a running process.
type Proc struct {
	id      int
	name    string
	eng     *Engine
	body    Process
	held    []*Resource
	done    bool
	resumes uint64
}

// Start registers body as a new process. Its first Resume fires at the
// current virtual time, after every event already scheduled for now.
func (e *Engine) Start(name string, body Process) (*Proc, error) {
	if body == nil {
		return nil, errors.New("start: process body must not be nil")
	}
	p := &Proc{id: len(e.procs), name: name, eng: e, body: body}
	e.procs = append(e.procs, p)
	if _, err := e.Schedule(0, p.step); err != nil {
		return nil, err
	}
	return p, nil
}

// ID returns the start-order index of the process.
func (p *Proc) ID() int { return p.id }

// Name returns the name given at Start.
func (p *Proc) Name() string { return p.name }

// Now returns the engine's current virtual time.
func (p *Proc) Now() float64 { return p.eng.clock }

// Engine returns the engine running this process.
func (p *Proc) Engine() *Engine { return p.eng }

// Done reports whether the process has exited or failed.
func (p *Proc) Done() bool { return p.done }

// Resumes returns how many times the process has been resumed.
func (p *Proc) Resumes() uint64 { return p.resumes }

// Holding returns the number of resource slots the process currently holds.
func (p *Proc) Holding() int { return len(p.held) }

// Release returns one slot of r held by this process.
func (p *Proc) Release(r *Resource) error {
	return r.release(p)
}

func (p *Proc) step() error {
	if p.done {
		return nil
	}
	p.resumes++
	y, err := p.body.Resume(p)
	if err != nil {
		p.finish()
		return fmt.Errorf("process %s: %w", p.name, err)
	}
	switch y.kind {
	case yieldTimeout:
		if _, err := p.eng.Schedule(y.delay, p.step); err != nil {
			p.finish()
			return fmt.Errorf("process %s: %w", p.name, err)
		}
	case yieldAcquire:
		if y.res == nil {
			p.finish()
			return fmt.Errorf("process %s: acquire on nil resource", p.name)
		}
		y.res.request(p)
	case yieldExit:
		p.finish()
	}
	return nil
}

// finish marks the process done and hands back every slot it still holds.
func (p *Proc) finish() {
	p.done = true
	for len(p.held) > 0 {
		r := p.held[len(p.held)-1]
		if err := r.release(p); err != nil {
			// release only fails for slots p does not hold
			panic(err)
		}
	}
}
