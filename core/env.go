package core

import (
	"context"
	"fmt"
)

// State is an index in [0, StateSpace()).
type State int

// Action is an index in [0, ActionSpace()).
type Action int

// Outcome is the result of a single environment step.
type Outcome int

const (
	Continuing Outcome = iota
	// Terminated means a goal or failure state was reached.
	Terminated
	// Truncated means an external step limit cut the episode short.
	Truncated
)

func (o Outcome) String() string {
	switch o {
	case Continuing:
		return "continuing"
	case Terminated:
		return "terminated"
	case Truncated:
		return "truncated"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Done collapses the outcome into the two-valued signal used by gym-like
// environments.
func (o Outcome) Done() bool {
	return o == Terminated || o == Truncated
}

type StepResult struct {
	NextState State
	Reward    float64
	Outcome   Outcome
}

type Environment interface {
	Reset() (State, error)
	Step(Action) (StepResult, error)
	// SampleAction returns an action drawn uniformly over the legal actions.
	SampleAction() Action
	StateSpace() int
	ActionSpace() int
}

// Seeder is implemented by environments whose resets can be made
// deterministic.
type Seeder interface {
	Seed(uint64)
}

// Rand is the explicit random source threaded through policies and
// environments. *golang.org/x/exp/rand.Rand satisfies it, and since it also
// satisfies rand.Source it can feed gonum samplers directly.
type Rand interface {
	Float64() float64
	Intn(n int) int
	Uint64() uint64
	Seed(seed uint64)
}

// EpisodeStatus records how an episode ended.
type EpisodeStatus int

const (
	EpisodeRunning EpisodeStatus = iota
	EpisodeTerminated
	EpisodeTruncated
	// EpisodeStepLimit means MaxSteps was reached without a terminal outcome.
	EpisodeStepLimit
)

func (s EpisodeStatus) String() string {
	switch s {
	case EpisodeRunning:
		return "running"
	case EpisodeTerminated:
		return "terminated"
	case EpisodeTruncated:
		return "truncated"
	case EpisodeStepLimit:
		return "step_limit"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

type EpisodeContext struct {
	Context context.Context
	Episode int
	Horizon int
	Run     int

	Trace  *Trace
	Status EpisodeStatus
}

func NewEpisodeContext(ctx context.Context) *EpisodeContext {
	return &EpisodeContext{
		Context: ctx,
		Trace:   NewTrace(),
	}
}

// Success reports whether the episode terminated on a positive reward.
func (e *EpisodeContext) Success() bool {
	if e.Status != EpisodeTerminated || e.Trace.Len() == 0 {
		return false
	}
	return e.Trace.Last().Reward > 0
}

type StepContext struct {
	Step int
	*EpisodeContext
}

type EnvironmentConstructor interface {
	// NewEnvironment creates a new environment with the given instance number
	// drawing randomness from rng.
	NewEnvironment(int, Rand) (Environment, error)
}
