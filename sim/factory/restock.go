package factory

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/linesim/sim"
)

type restockState int

const (
	restockSweep         restockState = iota // scanning workstations
	restockAwaitSupplier                     // queued on the supplier pool
	restockDelivering                        // supplier slot held, delivery under way
)

// restocker is the periodic restocking controller. It sweeps every
// workstation in line order, then pauses U[0.5, 1.5] before the next sweep.
type restocker struct {
	f     *Facility
	rng   *rand.Rand
	mode  RestockMode
	state restockState
	next  int // workstation being examined in the current sweep
}

func (f *Facility) startRestocker() error {
	r := &restocker{
		f:    f,
		rng:  f.rng.ForSubsystem(sim.SubsystemRestock),
		mode: f.opts.restockMode(),
	}
	_, err := f.eng.Start("restocker", r)
	return err
}

func (r *restocker) Resume(p *sim.Proc) (sim.Yield, error) {
	for {
		switch r.state {
		case restockSweep:
			for r.next < len(r.f.stations) {
				ws := r.f.stations[r.next]
				if r.mode == RestockDispatch && r.f.restockPending[ws.ID] {
					r.next++
					continue
				}
				if !r.f.needsRestock(ws, r.rng) {
					r.next++
					continue
				}
				if r.mode == RestockDispatch {
					if err := r.f.dispatchRestock(ws.ID, r.rng); err != nil {
						return sim.Yield{}, err
					}
					r.next++
					continue
				}
				r.state = restockAwaitSupplier
				return sim.Acquire(r.f.supplier), nil
			}
			r.next = 0
			return sim.Timeout(sim.Uniform(r.rng, RestockPauseMin, RestockPauseMax)), nil

		case restockAwaitSupplier:
			r.state = restockDelivering
			return sim.Timeout(r.f.restockDelay(r.rng)), nil

		case restockDelivering:
			r.f.refill(r.next)
			if err := p.Release(r.f.supplier); err != nil {
				return sim.Yield{}, err
			}
			r.next++
			r.state = restockSweep

		default:
			return sim.Yield{}, fmt.Errorf("restocker: unknown state %d", r.state)
		}
	}
}

// restockDelay draws |N(mean, 0.4·mean)| and books it as supplier occupancy.
func (f *Facility) restockDelay(rng *rand.Rand) float64 {
	mean := f.params.RestockDelayMean
	delay := sim.HalfNormal(rng, mean, RestockStdDevFactor*mean)
	f.supplierOccupancy += delay
	return delay
}

// refill tops the bin of workstation id up to its capacity.
func (f *Facility) refill(id int) {
	ws := f.stations[id]
	logrus.Debugf("[tick %012.4f] restock workstation %d: %d -> %d", f.eng.Now(), id, ws.BinLevel, ws.BinCapacity)
	ws.BinLevel = ws.BinCapacity
	f.restocks++
}

type jobState int

const (
	jobRequest   jobState = iota // about to queue on the supplier pool
	jobGranted                   // supplier slot granted
	jobDelivered                 // delivery finished
)

// restockJob serves one workstation in dispatch mode:
// acquire supplier → deliver → refill → release → exit.
type restockJob struct {
	f     *Facility
	rng   *rand.Rand
	id    int
	state jobState
}

func (f *Facility) dispatchRestock(id int, rng *rand.Rand) error {
	f.restockPending[id] = true
	job := &restockJob{f: f, rng: rng, id: id}
	_, err := f.eng.Start(fmt.Sprintf("restock-%d", id), job)
	return err
}

func (j *restockJob) Resume(p *sim.Proc) (sim.Yield, error) {
	switch j.state {
	case jobRequest:
		j.state = jobGranted
		return sim.Acquire(j.f.supplier), nil
	case jobGranted:
		j.state = jobDelivered
		return sim.Timeout(j.f.restockDelay(j.rng)), nil
	case jobDelivered:
		j.f.refill(j.id)
		j.f.restockPending[j.id] = false
		if err := p.Release(j.f.supplier); err != nil {
			return sim.Yield{}, err
		}
		return sim.Exit(), nil
	}
	return sim.Yield{}, fmt.Errorf("restock job %d: unknown state %d", j.id, j.state)
}
