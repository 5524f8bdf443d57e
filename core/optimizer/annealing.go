package optimizer

import (
	"math"
	"math/rand"

	"github.com/kilianp07/crossroad/core/model"
)

// Annealing searches the release order of each batch with simulated
// annealing. An order is decoded by placing every vehicle, in turn, at its
// earliest conflict-free step; its cost is the summed delay of the batch.
// The search is seeded, so identical inputs give identical schedules.
type Annealing struct {
	cfg        Config
	ledger     *ledger
	rng        *rand.Rand
	totalSteps int

	ids     []int
	pending []placement
}

// triesPerDemand caps the search on small batches, where the order space is
// exhausted long before the configured iteration count.
const triesPerDemand = 100

// NewAnnealing creates an annealing optimizer.
func NewAnnealing(cfg Config) *Annealing {
	cfg.SetDefaults()
	return &Annealing{cfg: cfg, ledger: cfg.newLedger(), rng: rand.New(rand.NewSource(cfg.Seed))}
}

// Schedule implements Optimizer.
func (a *Annealing) Schedule(demands []model.VehicleDemand, step int) ([]model.ScheduledAssignment, error) {
	a.ledger.prune(step)
	if len(demands) == 0 {
		return nil, nil
	}

	a.ids = a.ids[:0]
	for _, d := range demands {
		a.ids = append(a.ids, a.ledger.id(d.Route))
	}
	order := make([]int, len(demands))
	for i := range order {
		order[i] = i
	}
	cur, _ := a.decode(demands, order, step)
	best := append([]int(nil), order...)
	bestCost := cur

	temp := a.cfg.InitialTemperature
	if len(demands) > 1 {
		cand := make([]int, len(order))
		tries := min(a.cfg.Iterations, triesPerDemand*len(demands))
		for i := 0; i < tries; i++ {
			copy(cand, order)
			x, y := a.rng.Intn(len(cand)), a.rng.Intn(len(cand))
			cand[x], cand[y] = cand[y], cand[x]
			cost, _ := a.decode(demands, cand, step)
			if cost <= cur || a.rng.Float64() < math.Exp(float64(cur-cost)/temp) {
				copy(order, cand)
				cur = cost
				if cost < bestCost {
					bestCost = cost
					copy(best, cand)
				}
			}
			temp *= a.cfg.Cooling
			if temp < 1e-9 {
				temp = 1e-9
			}
		}
	}

	_, steps := a.decode(demands, best, step)
	out := make([]model.ScheduledAssignment, len(demands))
	for i, d := range demands {
		a.ledger.reserve(a.ids[i], steps[i])
		a.totalSteps += steps[i] - d.Step
		out[i] = model.ScheduledAssignment{Route: d.Route, ID: d.ID, ReleaseStep: steps[i]}
	}
	return out, nil
}

// decode places demands in the given order on top of the committed ledger,
// without modifying it, and returns the summed delay and the release step of
// each demand, indexed like demands.
func (a *Annealing) decode(demands []model.VehicleDemand, order []int, step int) (int, []int) {
	a.pending = a.pending[:0]
	steps := make([]int, len(demands))
	cost := 0
	for _, i := range order {
		d := demands[i]
		from := step
		if d.Step > from {
			from = d.Step
		}
		s := a.ledger.earliest(a.ids[i], from, a.pending)
		a.pending = append(a.pending, placement{id: a.ids[i], step: s})
		steps[i] = s
		cost += s - d.Step
	}
	return cost, steps
}

// TotalDelay implements Optimizer.
func (a *Annealing) TotalDelay() float64 { return float64(a.totalSteps) * a.cfg.StepLengthSeconds }
