package evonet

// greedyResetDifference is reported after a greedy reset so the next genetic
// engineering step runs the major-improvement regime.
const greedyResetDifference = 50.0

// Stagnation tracks the all-time best fitness of a cycle and counts epochs
// without improvement.
type Stagnation struct {
	Highest float64 // All-time best fitness in this cycle
	Counter int     // Epochs since the last improvement
	Reset   int     // Counter value that triggers a greedy reset
	Greedy  bool

	primed bool
}

// NewStagnation creates a tracker with a zero baseline.
func NewStagnation(reset int, greedy bool) *Stagnation {
	return &Stagnation{Reset: reset, Greedy: greedy}
}

// StagnationUpdate is the verdict for one epoch.
type StagnationUpdate struct {
	Difference float64 // Best of this epoch minus the previous all-time best
	Improved   bool
	Reset      bool // Greedy reset fired; the fittest buffer must collapse
}

// Update records the best fitness of an epoch. The first epoch always counts
// as an improvement, measured against a zero baseline, so the fittest buffer
// is seeded even when every score is negative. Afterwards any strictly
// positive difference counts as an improvement. Otherwise the counter grows,
// and in greedy mode reaching the reset threshold zeroes it and reports
// greedyResetDifference so the next generation is built from the elite.
func (s *Stagnation) Update(best float64) StagnationUpdate {
	u := StagnationUpdate{Difference: best - s.Highest}
	if u.Difference > 0 || !s.primed {
		s.primed = true
		s.Highest = best
		s.Counter = 0
		u.Improved = true
		return u
	}

	s.Counter++
	if s.Greedy && s.Counter >= s.Reset {
		s.Counter = 0
		u.Difference = greedyResetDifference
		u.Reset = true
	}
	return u
}

// Divider scales mutation down with stagnation: the counter clamped to
// [1, 1 + completion*maxDivider]. Agents that get further mutate less.
func (s *Stagnation) Divider(completion, maxDivider float64) float64 {
	return clamp(float64(s.Counter), 1, 1+completion*maxDivider)
}
