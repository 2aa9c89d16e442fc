package evonet

import (
	"math/rand"

	"github.com/baldhumanity/evonet-go/evonet/nn"
)

// Regime selects how the next generation is bred.
type Regime int

const (
	// RegimeStagnating: the best fitness did not improve.
	RegimeStagnating Regime = iota
	// RegimeMinor: the best fitness improved by less than the minor threshold.
	RegimeMinor
	// RegimeMajor: a large improvement, or a greedy reset.
	RegimeMajor
)

func (r Regime) String() string {
	switch r {
	case RegimeStagnating:
		return "stagnating"
	case RegimeMinor:
		return "minor"
	case RegimeMajor:
		return "major"
	default:
		return "unknown"
	}
}

// RegimeFor classifies a fitness difference.
func RegimeFor(difference, minorThreshold float64) Regime {
	switch {
	case difference < 0:
		return RegimeStagnating
	case difference < minorThreshold:
		return RegimeMinor
	default:
		return RegimeMajor
	}
}

// Role describes how an offspring network was produced.
type Role string

const (
	RoleElite      Role = "elite"
	RoleMutation   Role = "mutation"
	RoleControlled Role = "controlled mutation"
	RoleCrossover  Role = "crossover"
	RoleDiversity  Role = "diversity"
)

// Offspring is one network of the next generation.
type Offspring struct {
	Net  *nn.Network
	Role Role
}

// Reproduction breeds generations from the fittest buffer.
type Reproduction struct {
	Config *MutationConfig
}

// NewReproduction creates a breeder for the given mutation settings.
func NewReproduction(config *MutationConfig) *Reproduction {
	return &Reproduction{Config: config}
}

// Breed builds n networks from fittest (best first). The bucket boundaries
// are integer fractions of n:
//
//	stagnating  [0,n/7) elite, [n/7,n/3) best+mutation, rest random+mutation/divider
//	minor       [0,n/7) elite, [n/7,n/3) crossover, [n/3,n/2) random+mutation, rest best+mutation
//	major       [0,n/6) crossover+diversity mutation, [n/6,n/3) best+mutation, rest elite
//
// chance is the mutation chance multiplier taken from the mutation curve and
// divider the stagnation divider. at timestamps every mutation.
func (r *Reproduction) Breed(fittest []*nn.Network, n int, regime Regime, chance, divider, at float64) []Offspring {
	if len(fittest) == 0 {
		panic("evonet: Breed called with an empty fittest buffer")
	}
	best := fittest[0]
	out := make([]Offspring, n)

	for j := 0; j < n; j++ {
		var o Offspring
		switch regime {
		case RegimeStagnating:
			switch {
			case j < n/7:
				o = Offspring{best.Copy(), RoleElite}
			case j < n/3:
				o = Offspring{best.Copy(), RoleMutation}
				o.Net.Mutate(at, chance)
			default:
				if r.Config.Controlled {
					o = Offspring{pick(fittest).Copy(), RoleControlled}
					o.Net.ControlledMutate(at, chance/divider, r.Config.ControlledStrength/divider)
				} else {
					o = Offspring{pick(fittest).Copy(), RoleMutation}
					o.Net.Mutate(at, chance/divider)
				}
			}
		case RegimeMinor:
			switch {
			case j < n/7:
				o = Offspring{best.Copy(), RoleElite}
			case j < n/3:
				o = Offspring{best.Crossover(pick(fittest), r.Config.CrossoverSuperiority), RoleCrossover}
			case j < n/2:
				o = Offspring{pick(fittest).Copy(), RoleMutation}
				o.Net.Mutate(at, chance)
			default:
				o = Offspring{best.Copy(), RoleMutation}
				o.Net.Mutate(at, chance)
			}
		default:
			switch {
			case j < n/6:
				o = Offspring{best.Crossover(pick(fittest), r.Config.CrossoverSuperiority), RoleDiversity}
				o.Net.Mutate(at, r.Config.DiversityChance)
			case j < n/3:
				o = Offspring{best.Copy(), RoleMutation}
				o.Net.Mutate(at, chance)
			default:
				o = Offspring{best.Copy(), RoleElite}
			}
		}
		out[j] = o
	}
	return out
}

// CountRoles tallies offspring by role, for progress output.
func CountRoles(offspring []Offspring) map[Role]int {
	counts := make(map[Role]int)
	for _, o := range offspring {
		counts[o.Role]++
	}
	return counts
}

func pick(nets []*nn.Network) *nn.Network {
	return nets[rand.Intn(len(nets))]
}
