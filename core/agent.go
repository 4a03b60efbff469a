package core

// Policy picks the action to take in a state. It may consult env for a
// uniformly random legal action.
type Policy interface {
	PickAction(*StepContext, State, Environment) Action
}

type PolicyConstructor interface {
	// NewPolicy builds a policy reading from table and drawing from rng.
	NewPolicy(*QTable, Rand) Policy
}
