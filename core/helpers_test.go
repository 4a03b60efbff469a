package core

import "errors"

// scriptedEnv is a deterministic environment whose transitions are given by
// a function of the current state and action.
type scriptedEnv struct {
	states, actions int
	start           State
	transition      func(State, Action) (StepResult, error)
	resetErr        error
	resetState      *State

	state  State
	resets int
	steps  int
}

func (e *scriptedEnv) Reset() (State, error) {
	e.resets++
	if e.resetErr != nil {
		return 0, e.resetErr
	}
	if e.resetState != nil {
		return *e.resetState, nil
	}
	e.state = e.start
	return e.state, nil
}

func (e *scriptedEnv) Step(a Action) (StepResult, error) {
	e.steps++
	res, err := e.transition(e.state, a)
	if err != nil {
		return res, err
	}
	e.state = res.NextState
	return res, nil
}

func (e *scriptedEnv) SampleAction() Action { return 0 }
func (e *scriptedEnv) StateSpace() int      { return e.states }
func (e *scriptedEnv) ActionSpace() int     { return e.actions }

// goalEnv has a single state and action; every step reaches the goal.
func goalEnv() *scriptedEnv {
	return &scriptedEnv{
		states:  1,
		actions: 1,
		transition: func(State, Action) (StepResult, error) {
			return StepResult{NextState: 0, Reward: 1, Outcome: Terminated}, nil
		},
	}
}

// chainEnv walks 0 -> 1 -> goal with a single action.
func chainEnv() *scriptedEnv {
	return &scriptedEnv{
		states:  2,
		actions: 1,
		transition: func(s State, _ Action) (StepResult, error) {
			if s == 0 {
				return StepResult{NextState: 1, Outcome: Continuing}, nil
			}
			return StepResult{NextState: 1, Reward: 1, Outcome: Terminated}, nil
		},
	}
}

// loopEnv never ends on its own.
func loopEnv(states, actions int) *scriptedEnv {
	return &scriptedEnv{
		states:  states,
		actions: actions,
		transition: func(s State, _ Action) (StepResult, error) {
			return StepResult{NextState: s, Outcome: Continuing}, nil
		},
	}
}

var errBroken = errors.New("broken")

type greedyPolicy struct {
	table *QTable
}

func (g greedyPolicy) PickAction(_ *StepContext, s State, _ Environment) Action {
	return g.table.BestAction(s)
}

type greedyConstructor struct{}

func (greedyConstructor) NewPolicy(table *QTable, _ Rand) Policy {
	return greedyPolicy{table: table}
}

type fixedPolicy struct {
	action Action
}

func (f fixedPolicy) PickAction(*StepContext, State, Environment) Action {
	return f.action
}

// uniformPolicy ignores the table and draws actions from its own source.
type uniformPolicy struct {
	rand    Rand
	actions int
}

func (u uniformPolicy) PickAction(*StepContext, State, Environment) Action {
	return Action(u.rand.Intn(u.actions))
}

type envFactory func() *scriptedEnv

func (f envFactory) NewEnvironment(int, Rand) (Environment, error) {
	return f(), nil
}

func testConfig(episodes int) Hyperparameters {
	return Hyperparameters{
		Episodes:     episodes,
		LearningRate: 0.5,
		Discount:     0.9,
		MaxEpsilon:   1,
		MinEpsilon:   0.01,
		DecayRate:    0.001,
		MaxSteps:     10,
	}
}

func mustTable(states, actions int) *QTable {
	q, err := NewQTable(states, actions)
	if err != nil {
		panic(err)
	}
	return q
}
