package policies

import "github.com/zeu5/frozen-lake-rl/core"

// RandomPolicy always explores. The trainer still updates the table, which
// makes it an off-policy baseline.
type RandomPolicy struct{}

var _ core.Policy = &RandomPolicy{}

func NewRandomPolicy() *RandomPolicy {
	return &RandomPolicy{}
}

func (r *RandomPolicy) PickAction(_ *core.StepContext, _ core.State, env core.Environment) core.Action {
	return env.SampleAction()
}

type RandomPolicyConstructor struct{}

var _ core.PolicyConstructor = &RandomPolicyConstructor{}

func (r *RandomPolicyConstructor) NewPolicy(_ *core.QTable, _ core.Rand) core.Policy {
	return NewRandomPolicy()
}
