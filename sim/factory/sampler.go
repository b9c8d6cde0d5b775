package factory

import "github.com/inference-sim/linesim/sim"

// samplerProc records a Snapshot of the line every interval time units.
type samplerProc struct {
	f        *Facility
	interval float64
	started  bool
}

func (f *Facility) startSampler() error {
	_, err := f.eng.Start("sampler", &samplerProc{f: f, interval: f.opts.snapshotInterval()})
	return err
}

func (s *samplerProc) Resume(p *sim.Proc) (sim.Yield, error) {
	if s.started {
		s.f.snapshots = append(s.f.snapshots, s.f.snapshot(p.Now()))
	}
	s.started = true
	return sim.Timeout(s.interval), nil
}

func (f *Facility) snapshot(now float64) Snapshot {
	states := make([]StationSnapshot, len(f.stations))
	for i, ws := range f.stations {
		states[i] = StationSnapshot{Workstation: ws.ID, Inventory: ws.BinLevel, Processed: ws.Processed}
	}
	return Snapshot{
		ElapsedTime: now,
		Production:  f.production,
		Faulty:      f.faulty,
		Stations:    states,
	}
}
