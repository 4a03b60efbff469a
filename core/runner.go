package core

import (
	"context"
	"fmt"
	"io"
	"log"

	"gonum.org/v1/gonum/mat"
)

type TrainingResult struct {
	CompletedEpisodes  int
	TerminatedEpisodes int
	SuccessEpisodes    int
	TruncatedEpisodes  int
	StepLimitEpisodes  int
	TotalTimeSteps     int

	// Visits counts the updates applied to every (state, action) cell.
	Visits   *mat.Dense
	Datasets map[string]DataSet
}

// Trainer runs epsilon-greedy Q-learning over an environment. It is the only
// writer of its table while Run is in progress.
type Trainer struct {
	config Hyperparameters
	env    Environment
	policy Policy
	table  *QTable

	analyzers   map[string]Analyzer
	logger      *log.Logger
	writer      io.Writer
	reportEvery int
	run         int
}

// NewTrainer validates the configuration and the table shape before anything
// is updated.
func NewTrainer(config Hyperparameters, env Environment, policy Policy, table *QTable) (*Trainer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	states, actions := env.StateSpace(), env.ActionSpace()
	if states <= 0 || actions <= 0 {
		return nil, environmentError("environment reports %dx%d spaces", states, actions)
	}
	if gotStates, gotActions := table.Dims(); gotStates != states || gotActions != actions {
		return nil, &DimensionMismatchError{
			WantStates:  states,
			WantActions: actions,
			GotStates:   gotStates,
			GotActions:  gotActions,
		}
	}
	return &Trainer{
		config:    config,
		env:       env,
		policy:    policy,
		table:     table,
		analyzers: make(map[string]Analyzer),
		logger:    log.New(io.Discard, "", 0),
	}, nil
}

func (t *Trainer) SetLogger(logger *log.Logger) {
	t.logger = logger
}

// SetOutput makes the trainer print a progress line to w every n episodes.
func (t *Trainer) SetOutput(w io.Writer, n int) {
	if n <= 0 {
		n = 1
	}
	t.writer = w
	t.reportEvery = n
}

func (t *Trainer) SetRun(run int) {
	t.run = run
}

func (t *Trainer) AddAnalyzer(name string, a Analyzer) {
	t.analyzers[name] = a
}

// Run trains for the configured number of episodes, updating the table in
// place. The context is only checked between episodes. Any malformed
// transition aborts the run with an error wrapping ErrEnvironment; the table
// should then be discarded.
func (t *Trainer) Run(ctx context.Context) (*TrainingResult, error) {
	states, actions := t.table.Dims()
	result := &TrainingResult{
		Visits:   mat.NewDense(states, actions, nil),
		Datasets: make(map[string]DataSet),
	}
	t.logger.Printf("training %d episodes on a %dx%d q-table", t.config.Episodes, states, actions)

	eCtx := NewEpisodeContext(ctx)
	eCtx.Run = t.run
	eCtx.Horizon = t.config.MaxSteps
	for episode := 0; episode < t.config.Episodes; episode++ {
		select {
		case <-ctx.Done():
			t.logger.Printf("training stopped after %d episodes", episode)
			return result, fmt.Errorf("training stopped after %d episodes: %w", episode, ctx.Err())
		default:
		}

		eCtx.Episode = episode
		eCtx.Status = EpisodeRunning
		eCtx.Trace.Reset()
		if err := t.runEpisode(eCtx, result.Visits); err != nil {
			t.logger.Printf("episode %d aborted: %v", episode, err)
			return nil, fmt.Errorf("episode %d: %w", episode, err)
		}

		result.CompletedEpisodes++
		result.TotalTimeSteps += eCtx.Trace.Len()
		switch eCtx.Status {
		case EpisodeTerminated:
			result.TerminatedEpisodes++
			if eCtx.Success() {
				result.SuccessEpisodes++
			}
		case EpisodeTruncated:
			result.TruncatedEpisodes++
		case EpisodeStepLimit:
			result.StepLimitEpisodes++
		}

		for _, a := range t.analyzers {
			a.Analyze(eCtx, eCtx.Trace)
		}
		if t.writer != nil && ((episode+1)%t.reportEvery == 0 || episode == t.config.Episodes-1) {
			fmt.Fprintf(
				t.writer,
				"Run %d, Episode %d/%d, Timesteps: %d, Success: %d, Truncated: %d, StepLimit: %d\n",
				t.run, episode+1, t.config.Episodes, result.TotalTimeSteps,
				result.SuccessEpisodes, result.TruncatedEpisodes, result.StepLimitEpisodes,
			)
		}
	}

	for name, a := range t.analyzers {
		result.Datasets[name] = a.DataSet()
	}
	t.logger.Printf("training finished: %d/%d successful episodes", result.SuccessEpisodes, result.CompletedEpisodes)
	return result, nil
}

func (t *Trainer) runEpisode(eCtx *EpisodeContext, visits *mat.Dense) error {
	state, err := t.env.Reset()
	if err != nil {
		return fmt.Errorf("%w: reset: %w", ErrEnvironment, err)
	}
	if !t.validState(state) {
		return environmentError("reset returned state %d outside [0, %d)", state, t.env.StateSpace())
	}

	for step := 0; step < t.config.MaxSteps; step++ {
		sCtx := &StepContext{Step: step, EpisodeContext: eCtx}
		action := t.policy.PickAction(sCtx, state, t.env)
		if !t.validAction(action) {
			return environmentError("action %d outside [0, %d)", action, t.env.ActionSpace())
		}

		res, err := t.env.Step(action)
		if err != nil {
			return fmt.Errorf("%w: step: %w", ErrEnvironment, err)
		}
		if err := validateTransition(t.env, res); err != nil {
			return err
		}

		t.update(state, action, res)
		visits.Set(int(state), int(action), visits.At(int(state), int(action))+1)
		eCtx.Trace.AddStep(Step{
			State:     state,
			Action:    action,
			Reward:    res.Reward,
			NextState: res.NextState,
			Outcome:   res.Outcome,
		})

		switch res.Outcome {
		case Terminated:
			eCtx.Status = EpisodeTerminated
			return nil
		case Truncated:
			eCtx.Status = EpisodeTruncated
			return nil
		}
		state = res.NextState
	}
	eCtx.Status = EpisodeStepLimit
	return nil
}

// update applies the Bellman update. A terminated transition has no future
// value; truncated and continuing ones bootstrap from the next state.
func (t *Trainer) update(state State, action Action, res StepResult) {
	s, a := int(state), int(action)
	current := t.table.data.At(s, a)
	target := res.Reward
	if res.Outcome != Terminated {
		target += t.config.Discount * t.table.BestValue(res.NextState)
	}
	t.table.data.Set(s, a, current+t.config.LearningRate*(target-current))
}

func (t *Trainer) validState(s State) bool {
	return s >= 0 && int(s) < t.env.StateSpace()
}

func (t *Trainer) validAction(a Action) bool {
	return a >= 0 && int(a) < t.env.ActionSpace()
}

// Train runs a Trainer to completion and returns the same table it was given.
// On error the table is not returned, since it may hold corrupted updates.
func Train(ctx context.Context, config Hyperparameters, env Environment, policy Policy, table *QTable) (*QTable, error) {
	trainer, err := NewTrainer(config, env, policy, table)
	if err != nil {
		return nil, err
	}
	if _, err := trainer.Run(ctx); err != nil {
		return nil, err
	}
	return table, nil
}
