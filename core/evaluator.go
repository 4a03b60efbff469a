package core

import "fmt"

// Rollout is a lazy greedy trajectory through an environment. The environment
// is reset on the first call to Next, and each call to Next issues exactly one
// environment step.
//
//	rollout, err := core.Evaluate(table, env, 100)
//	for rollout.Next() {
//		step := rollout.Step()
//		...
//	}
//	if err := rollout.Err(); err != nil {
//		...
//	}
type Rollout struct {
	table    *QTable
	env      Environment
	maxSteps int

	started bool
	done    bool
	steps   int
	state   State
	current Step
	err     error
}

// Evaluate prepares a greedy rollout of table over env of at most maxSteps
// steps. Nothing is sent to the environment until Next is called.
func Evaluate(table *QTable, env Environment, maxSteps int) (*Rollout, error) {
	if maxSteps <= 0 {
		return nil, configError("max steps must be positive, got %d", maxSteps)
	}
	states, actions := env.StateSpace(), env.ActionSpace()
	if gotStates, gotActions := table.Dims(); gotStates != states || gotActions != actions {
		return nil, &DimensionMismatchError{
			WantStates:  states,
			WantActions: actions,
			GotStates:   gotStates,
			GotActions:  gotActions,
		}
	}
	return &Rollout{table: table, env: env, maxSteps: maxSteps}, nil
}

// Next advances the rollout by one step. It returns false once the episode
// ended, maxSteps steps were taken, or an error occurred.
func (r *Rollout) Next() bool {
	if r.done {
		return false
	}
	if !r.started {
		r.started = true
		state, err := r.env.Reset()
		if err != nil {
			return r.fail(fmt.Errorf("%w: reset: %w", ErrEnvironment, err))
		}
		if !r.validState(state) {
			return r.fail(environmentError("reset returned state %d outside [0, %d)", state, r.env.StateSpace()))
		}
		r.state = state
	}
	if r.steps >= r.maxSteps {
		r.done = true
		return false
	}

	action := r.table.BestAction(r.state)
	res, err := r.env.Step(action)
	if err != nil {
		return r.fail(fmt.Errorf("%w: step: %w", ErrEnvironment, err))
	}
	if err := validateTransition(r.env, res); err != nil {
		return r.fail(err)
	}

	r.current = Step{
		State:     r.state,
		Action:    action,
		Reward:    res.Reward,
		NextState: res.NextState,
		Outcome:   res.Outcome,
	}
	r.steps++
	r.state = res.NextState
	if res.Outcome != Continuing {
		r.done = true
	}
	return true
}

// Step returns the step produced by the last successful call to Next. The
// observed state is NextState.
func (r *Rollout) Step() Step {
	return r.current
}

// Steps returns how many steps have been taken.
func (r *Rollout) Steps() int {
	return r.steps
}

func (r *Rollout) Err() error {
	return r.err
}

func (r *Rollout) fail(err error) bool {
	r.err = err
	r.done = true
	return false
}

func (r *Rollout) validState(s State) bool {
	return s >= 0 && int(s) < r.env.StateSpace()
}

// Collect drains the rollout into a trace.
func (r *Rollout) Collect() (*Trace, error) {
	trace := NewTrace()
	for r.Next() {
		trace.AddStep(r.Step())
	}
	return trace, r.Err()
}
