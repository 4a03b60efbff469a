package policies

import (
	"math"

	"github.com/zeu5/frozen-lake-rl/core"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// SoftmaxPolicy picks actions according to the Boltzmann distribution over
// the action values of the current state. The temperature decays per episode
// along the given schedule.
type SoftmaxPolicy struct {
	table       *core.QTable
	temperature EpsilonSchedule
	rand        core.Rand
}

// Checking interface compatibility
var _ core.Policy = &SoftmaxPolicy{}

func NewSoftmaxPolicy(table *core.QTable, temperature EpsilonSchedule, rand core.Rand) *SoftmaxPolicy {
	return &SoftmaxPolicy{
		table:       table,
		temperature: temperature,
		rand:        rand,
	}
}

func (s *SoftmaxPolicy) PickAction(step *core.StepContext, state core.State, env core.Environment) core.Action {
	vals := s.table.Row(state)
	temp := s.temperature.Epsilon(step.Episode)
	if temp <= 0 {
		return s.table.BestAction(state)
	}

	largestValue := vals[0]
	for _, v := range vals {
		if v > largestValue {
			largestValue = v
		}
	}

	// Normalizing
	weights := make([]float64, len(vals))
	for i, v := range vals {
		weights[i] = math.Exp((v - largestValue) / temp)
	}
	// using the sampleuv library to sample based on the weights
	i, ok := sampleuv.NewWeighted(weights, s.rand).Take()
	if !ok {
		return env.SampleAction()
	}
	return core.Action(i)
}

type SoftmaxPolicyConstructor struct {
	temperature EpsilonSchedule
}

var _ core.PolicyConstructor = &SoftmaxPolicyConstructor{}

func NewSoftmaxPolicyConstructor(temperature EpsilonSchedule) *SoftmaxPolicyConstructor {
	return &SoftmaxPolicyConstructor{
		temperature: temperature,
	}
}

func (s *SoftmaxPolicyConstructor) NewPolicy(table *core.QTable, rand core.Rand) core.Policy {
	return NewSoftmaxPolicy(table, s.temperature, rand)
}
