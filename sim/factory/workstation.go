package factory

import (
	"fmt"
	"math/rand"

	"github.com/inference-sim/linesim/sim"
)

// stationState is the position of a workstation in its work loop.
type stationState int

const (
	stationIdle      stationState = iota // waiting for stock or about to take the next item
	stationWorking                       // suspended for the work duration
	stationRepairing                     // suspended for a repair after a failure
)

// stationProc runs one workstation:
// idle → work → (repair) → (quality check on the last station) → idle.
type stationProc struct {
	f     *Facility
	ws    *Workstation
	rng   *rand.Rand
	state stationState

	starved      bool
	starvedSince float64
}

func (f *Facility) startWorkstation(id int) error {
	proc := &stationProc{
		f:   f,
		ws:  f.stations[id],
		rng: f.rng.ForSubsystem(sim.SubsystemWorkstation(id)),
	}
	_, err := f.eng.Start(fmt.Sprintf("workstation-%d", id), proc)
	return err
}

func (s *stationProc) Resume(p *sim.Proc) (sim.Yield, error) {
	for {
		switch s.state {
		case stationIdle:
			if s.starved {
				s.ws.WaitTime += p.Now() - s.starvedSince
				s.starved = false
			}
			if s.ws.BinLevel == 0 {
				s.starved = true
				s.starvedSince = p.Now()
				return sim.Timeout(StockPollInterval), nil
			}
			s.ws.BinLevel--
			s.state = stationWorking
			return sim.Timeout(s.workTime()), nil

		case stationWorking:
			s.ws.Processed++
			if repair, failed := s.breakdown(); failed {
				s.f.totalFixTime += repair
				s.ws.Downtime += repair
				s.ws.Failures++
				s.state = stationRepairing
				return sim.Timeout(repair), nil
			}
			s.inspect()
			s.state = stationIdle

		case stationRepairing:
			s.inspect()
			s.state = stationIdle

		default:
			return sim.Yield{}, fmt.Errorf("workstation %d: unknown state %d", s.ws.ID, s.state)
		}
	}
}

// workTime is N(mean/efficiency, 0.3·mean) floored at zero.
func (s *stationProc) workTime() float64 {
	mean := s.f.params.WorkTimeMean
	return sim.FlooredNormal(s.rng, mean/s.ws.Efficiency, WorkTimeStdDevFactor*mean)
}

// breakdown decides whether the item just finished broke the station.
// Efficiency below one raises the failure probability, above one lowers it.
func (s *stationProc) breakdown() (float64, bool) {
	p := s.ws.FailureProb * max(0, 2-s.ws.Efficiency)
	if !sim.Bernoulli(s.rng, p) {
		return 0, false
	}
	repair := sim.Exponential(s.rng, s.f.params.FixingTimeMean)
	repair *= sim.Uniform(s.rng, RepairScaleMin, RepairScaleMax)
	return repair, true
}

// inspect runs the quality check. Only the last workstation performs it.
func (s *stationProc) inspect() {
	if !s.f.terminal(s.ws.ID) {
		return
	}
	p := s.f.params.QualityIssueProb * (1 + (1 - s.ws.Efficiency))
	if sim.Bernoulli(s.rng, p) {
		s.f.faulty++
	} else {
		s.f.production++
	}
}
