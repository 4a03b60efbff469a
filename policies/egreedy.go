package policies

import "github.com/zeu5/frozen-lake-rl/core"

// EpsilonGreedy exploits the table with probability 1-ε and otherwise asks the
// environment for a random action. ε follows the schedule per episode.
type EpsilonGreedy struct {
	table    *core.QTable
	schedule EpsilonSchedule
	rand     core.Rand
}

var _ core.Policy = &EpsilonGreedy{}

func NewEpsilonGreedy(table *core.QTable, schedule EpsilonSchedule, rand core.Rand) *EpsilonGreedy {
	return &EpsilonGreedy{
		table:    table,
		schedule: schedule,
		rand:     rand,
	}
}

func (e *EpsilonGreedy) PickAction(step *core.StepContext, state core.State, env core.Environment) core.Action {
	if e.rand.Float64() > e.schedule.Epsilon(step.Episode) {
		return e.table.BestAction(state)
	}
	return env.SampleAction()
}

type EpsilonGreedyConstructor struct {
	schedule EpsilonSchedule
}

var _ core.PolicyConstructor = &EpsilonGreedyConstructor{}

func NewEpsilonGreedyConstructor(schedule EpsilonSchedule) *EpsilonGreedyConstructor {
	return &EpsilonGreedyConstructor{
		schedule: schedule,
	}
}

func (e *EpsilonGreedyConstructor) NewPolicy(table *core.QTable, rand core.Rand) core.Policy {
	return NewEpsilonGreedy(table, e.schedule, rand)
}
