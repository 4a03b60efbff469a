package policies

import (
	"math"

	"github.com/zeu5/frozen-lake-rl/core"
)

// EpsilonSchedule decays the exploration probability exponentially from Max
// towards Min as episodes go by.
type EpsilonSchedule struct {
	Min       float64
	Max       float64
	DecayRate float64
}

func NewEpsilonSchedule(h core.Hyperparameters) EpsilonSchedule {
	return EpsilonSchedule{
		Min:       h.MinEpsilon,
		Max:       h.MaxEpsilon,
		DecayRate: h.DecayRate,
	}
}

// Epsilon returns min + (max-min)*exp(-decay*episode), kept within [Min, Max].
func (e EpsilonSchedule) Epsilon(episode int) float64 {
	eps := e.Min + (e.Max-e.Min)*math.Exp(-e.DecayRate*float64(episode))
	return math.Max(e.Min, math.Min(e.Max, eps))
}
