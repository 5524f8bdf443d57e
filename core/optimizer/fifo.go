package optimizer

import "github.com/kilianp07/crossroad/core/model"

// FIFO releases demand in arrival order, each at the earliest step that keeps
// the configured headway to every conflicting release.
type FIFO struct {
	cfg        Config
	ledger     *ledger
	totalSteps int
}

// NewFIFO creates a FIFO optimizer.
func NewFIFO(cfg Config) *FIFO {
	cfg.SetDefaults()
	return &FIFO{cfg: cfg, ledger: cfg.newLedger()}
}

// Schedule implements Optimizer.
func (f *FIFO) Schedule(demands []model.VehicleDemand, step int) ([]model.ScheduledAssignment, error) {
	f.ledger.prune(step)
	out := make([]model.ScheduledAssignment, 0, len(demands))
	for _, d := range demands {
		from := step
		if d.Step > from {
			from = d.Step
		}
		id := f.ledger.id(d.Route)
		s := f.ledger.earliest(id, from, nil)
		f.ledger.reserve(id, s)
		f.totalSteps += s - d.Step
		out = append(out, model.ScheduledAssignment{Route: d.Route, ID: d.ID, ReleaseStep: s})
	}
	return out, nil
}

// TotalDelay implements Optimizer.
func (f *FIFO) TotalDelay() float64 { return float64(f.totalSteps) * f.cfg.StepLengthSeconds }
