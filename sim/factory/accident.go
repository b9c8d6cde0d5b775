package factory

import (
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/linesim/sim"
)

// accidentProc checks for a facility-wide accident every tick. An accident
// stops every workstation for an integer duration in [5, 70]: the duration is
// booked as downtime on all of them and the injector sleeps through it.
type accidentProc struct {
	f   *Facility
	rng *rand.Rand
}

func (f *Facility) startAccidents() error {
	_, err := f.eng.Start("accidents", &accidentProc{f: f, rng: f.rng.ForSubsystem(sim.SubsystemAccident)})
	return err
}

func (a *accidentProc) Resume(p *sim.Proc) (sim.Yield, error) {
	if !sim.Bernoulli(a.rng, a.f.params.FacilityAccidentProb) {
		return sim.Timeout(AccidentTick), nil
	}
	d := float64(sim.IntBetween(a.rng, AccidentMinDuration, AccidentMaxDuration))
	for _, ws := range a.f.stations {
		ws.Downtime += d
	}
	a.f.accidents++
	a.f.accidentDowntime += d
	logrus.Debugf("[tick %012.4f] facility accident, stoppage of %.0f", p.Now(), d)
	return sim.Timeout(d), nil
}
