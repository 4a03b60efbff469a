package core

// Step is one transition observed while interacting with an environment.
type Step struct {
	State     State
	Action    Action
	Reward    float64
	NextState State
	Outcome   Outcome
}

type Trace struct {
	steps []Step
}

func NewTrace() *Trace {
	return &Trace{
		steps: make([]Step, 0),
	}
}

func (t *Trace) AddStep(s Step) {
	t.steps = append(t.steps, s)
}

func (t *Trace) Step(i int) Step {
	return t.steps[i]
}

func (t *Trace) Len() int {
	return len(t.steps)
}

func (t *Trace) Last() Step {
	return t.steps[len(t.steps)-1]
}

// Return is the undiscounted sum of rewards in the trace.
func (t *Trace) Return() float64 {
	total := 0.0
	for _, s := range t.steps {
		total += s.Reward
	}
	return total
}

// Reset empties the trace, keeping its storage.
func (t *Trace) Reset() {
	t.steps = t.steps[:0]
}
