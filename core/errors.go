package core

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrConfig            = errors.New("invalid configuration")
	ErrIndex             = errors.New("index out of range")
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrEnvironment       = errors.New("environment error")
	ErrNotFound          = errors.New("q-table not found")
)

// DimensionMismatchError is returned when a persisted table does not have the
// shape expected by its target environment.
type DimensionMismatchError struct {
	WantStates, WantActions int
	GotStates, GotActions   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("%s: table is %dx%d, expected %dx%d",
		ErrDimensionMismatch, e.GotStates, e.GotActions, e.WantStates, e.WantActions)
}

func (e *DimensionMismatchError) Unwrap() error {
	return ErrDimensionMismatch
}

func configError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
}

func environmentError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrEnvironment, fmt.Sprintf(format, args...))
}

// validateTransition checks a step result against the spaces of env: the next
// state must be in range, the reward finite and the outcome known.
func validateTransition(env Environment, res StepResult) error {
	if res.NextState < 0 || int(res.NextState) >= env.StateSpace() {
		return environmentError("next state %d outside [0, %d)", res.NextState, env.StateSpace())
	}
	if math.IsNaN(res.Reward) || math.IsInf(res.Reward, 0) {
		return environmentError("non-finite reward %v", res.Reward)
	}
	switch res.Outcome {
	case Continuing, Terminated, Truncated:
	default:
		return environmentError("unknown outcome %d", int(res.Outcome))
	}
	return nil
}
