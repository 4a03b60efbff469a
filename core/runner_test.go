package core

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"golang.org/x/exp/rand"
)

func TestHyperparametersValidate(t *testing.T) {
	if err := DefaultHyperparameters().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	cases := map[string]func(*Hyperparameters){
		"zero learning rate":    func(h *Hyperparameters) { h.LearningRate = 0 },
		"learning rate above 1": func(h *Hyperparameters) { h.LearningRate = 1.5 },
		"negative episodes":     func(h *Hyperparameters) { h.Episodes = -1 },
		"zero max steps":        func(h *Hyperparameters) { h.MaxSteps = 0 },
		"discount of 1":         func(h *Hyperparameters) { h.Discount = 1 },
		"min above max epsilon": func(h *Hyperparameters) { h.MinEpsilon, h.MaxEpsilon = 0.9, 0.1 },
		"max epsilon above 1":   func(h *Hyperparameters) { h.MaxEpsilon = 1.1 },
		"negative min epsilon":  func(h *Hyperparameters) { h.MinEpsilon = -0.1 },
		"zero decay":            func(h *Hyperparameters) { h.DecayRate = 0 },
		"NaN learning rate":     func(h *Hyperparameters) { h.LearningRate = math.NaN() },
		"NaN discount":          func(h *Hyperparameters) { h.Discount = math.NaN() },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			h := DefaultHyperparameters()
			mutate(&h)
			if err := h.Validate(); !errors.Is(err, ErrConfig) {
				t.Errorf("Validate() = %v, want ErrConfig", err)
			}
		})
	}
}

func TestNewTrainerRejectsInvalidConfig(t *testing.T) {
	env := goalEnv()
	table := mustTable(1, 1)
	config := testConfig(10)
	config.LearningRate = 0
	if _, err := NewTrainer(config, env, greedyPolicy{table}, table); !errors.Is(err, ErrConfig) {
		t.Errorf("error = %v, want ErrConfig", err)
	}
	if env.resets != 0 {
		t.Error("environment touched before validation")
	}
}

func TestNewTrainerRejectsTableShape(t *testing.T) {
	table := mustTable(16, 4)
	_, err := NewTrainer(testConfig(10), loopEnv(64, 4), greedyPolicy{table}, table)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("error = %v, want ErrDimensionMismatch", err)
	}
}

func TestNewTrainerRejectsEmptySpaces(t *testing.T) {
	table := mustTable(1, 1)
	_, err := NewTrainer(testConfig(10), loopEnv(0, 1), greedyPolicy{table}, table)
	if !errors.Is(err, ErrEnvironment) {
		t.Errorf("error = %v, want ErrEnvironment", err)
	}
}

func TestTrainConvergesOnSingleState(t *testing.T) {
	table := mustTable(1, 1)
	out, err := Train(context.Background(), testConfig(50), goalEnv(), greedyPolicy{table}, table)
	if err != nil {
		t.Fatal(err)
	}
	if out != table {
		t.Error("Train returned a different table")
	}
	if v, _ := table.Get(0, 0); math.Abs(v-1) > 1e-3 {
		t.Errorf("Q(0, 0) = %v, want 1", v)
	}
}

func TestTrainChainDiscountsFutureReward(t *testing.T) {
	table := mustTable(2, 1)
	if _, err := Train(context.Background(), testConfig(200), chainEnv(), greedyPolicy{table}, table); err != nil {
		t.Fatal(err)
	}
	if v, _ := table.Get(1, 0); math.Abs(v-1) > 1e-2 {
		t.Errorf("Q(1, 0) = %v, want 1", v)
	}
	if v, _ := table.Get(0, 0); math.Abs(v-0.9) > 1e-2 {
		t.Errorf("Q(0, 0) = %v, want 0.9", v)
	}
}

func TestTerminatedDoesNotBootstrap(t *testing.T) {
	for _, c := range []struct {
		outcome Outcome
		want    float64
	}{
		{Terminated, 0},
		{Truncated, 0.5},
	} {
		t.Run(c.outcome.String(), func(t *testing.T) {
			env := &scriptedEnv{
				states:  2,
				actions: 1,
				transition: func(State, Action) (StepResult, error) {
					return StepResult{NextState: 1, Outcome: c.outcome}, nil
				},
			}
			table := mustTable(2, 1)
			table.Set(1, 0, 1)
			config := testConfig(1)
			config.LearningRate = 1
			config.Discount = 0.5

			trainer, err := NewTrainer(config, env, greedyPolicy{table}, table)
			if err != nil {
				t.Fatal(err)
			}
			result, err := trainer.Run(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			if v, _ := table.Get(0, 0); v != c.want {
				t.Errorf("Q(0, 0) = %v, want %v", v, c.want)
			}
			if v, _ := table.Get(1, 0); v != 1 {
				t.Errorf("unvisited Q(1, 0) changed to %v", v)
			}
			if c.outcome == Truncated && result.TruncatedEpisodes != 1 {
				t.Errorf("truncated episodes = %d, want 1", result.TruncatedEpisodes)
			}
		})
	}
}

func TestValuesStayFinite(t *testing.T) {
	rewards := []float64{1, -0.5, 1e6, -1e6, 0.25, 3}
	env := &scriptedEnv{
		states:  5,
		actions: 3,
		transition: func(s State, a Action) (StepResult, error) {
			i := int(s)*3 + int(a)
			res := StepResult{
				NextState: State((int(s) + int(a) + 1) % 5),
				Reward:    rewards[i%len(rewards)],
			}
			switch i % 7 {
			case 3:
				res.Outcome = Terminated
			case 5:
				res.Outcome = Truncated
			}
			return res, nil
		},
	}
	table := mustTable(5, 3)
	config := testConfig(5000)
	config.Discount = 0.99
	config.LearningRate = 1
	config.MaxSteps = 50
	policy := uniformPolicy{rand: rand.New(rand.NewSource(3)), actions: 3}
	trainer, err := NewTrainer(config, env, policy, table)
	if err != nil {
		t.Fatal(err)
	}
	result, err := trainer.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.TruncatedEpisodes == 0 || result.TerminatedEpisodes == 0 {
		t.Fatalf("expected both terminal kinds, got %+v", result)
	}
	for s := 0; s < 5; s++ {
		for a := 0; a < 3; a++ {
			v, _ := table.Get(State(s), Action(a))
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Errorf("Q(%d, %d) = %v", s, a, v)
			}
		}
	}
}

func TestRunCountsStepLimitAndVisits(t *testing.T) {
	table := mustTable(3, 2)
	config := testConfig(4)
	config.MaxSteps = 5
	trainer, err := NewTrainer(config, loopEnv(3, 2), greedyPolicy{table}, table)
	if err != nil {
		t.Fatal(err)
	}
	result, err := trainer.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.CompletedEpisodes != 4 || result.StepLimitEpisodes != 4 {
		t.Errorf("result = %+v, want 4 step-limited episodes", result)
	}
	if result.TotalTimeSteps != 20 {
		t.Errorf("timesteps = %d, want 20", result.TotalTimeSteps)
	}
	if v := result.Visits.At(0, 0); v != 20 {
		t.Errorf("visits of (0, 0) = %v, want 20", v)
	}
}

func TestRunRejectsMalformedTransitions(t *testing.T) {
	badState := State(7)
	cases := map[string]struct {
		env    *scriptedEnv
		policy func(*QTable) Policy
	}{
		"next state out of range": {
			env: &scriptedEnv{states: 2, actions: 1, transition: func(State, Action) (StepResult, error) {
				return StepResult{NextState: 2}, nil
			}},
		},
		"NaN reward": {
			env: &scriptedEnv{states: 2, actions: 1, transition: func(State, Action) (StepResult, error) {
				return StepResult{Reward: math.NaN()}, nil
			}},
		},
		"infinite reward": {
			env: &scriptedEnv{states: 2, actions: 1, transition: func(State, Action) (StepResult, error) {
				return StepResult{Reward: math.Inf(1)}, nil
			}},
		},
		"unknown outcome": {
			env: &scriptedEnv{states: 2, actions: 1, transition: func(State, Action) (StepResult, error) {
				return StepResult{Outcome: Outcome(9)}, nil
			}},
		},
		"step error": {
			env: &scriptedEnv{states: 2, actions: 1, transition: func(State, Action) (StepResult, error) {
				return StepResult{}, errBroken
			}},
		},
		"reset error": {
			env: &scriptedEnv{states: 2, actions: 1, resetErr: errBroken},
		},
		"reset state out of range": {
			env: &scriptedEnv{states: 2, actions: 1, resetState: &badState},
		},
		"action out of range": {
			env:    loopEnv(2, 1),
			policy: func(*QTable) Policy { return fixedPolicy{action: 3} },
		},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			table := mustTable(2, 1)
			policy := Policy(greedyPolicy{table})
			if c.policy != nil {
				policy = c.policy(table)
			}
			out, err := Train(context.Background(), testConfig(3), c.env, policy, table)
			if !errors.Is(err, ErrEnvironment) {
				t.Errorf("error = %v, want ErrEnvironment", err)
			}
			if out != nil {
				t.Error("table returned after a failed run")
			}
		})
	}
}

func TestRunStepErrorKeepsCause(t *testing.T) {
	env := &scriptedEnv{states: 1, actions: 1, transition: func(State, Action) (StepResult, error) {
		return StepResult{}, errBroken
	}}
	table := mustTable(1, 1)
	_, err := Train(context.Background(), testConfig(1), env, greedyPolicy{table}, table)
	if !errors.Is(err, errBroken) {
		t.Errorf("error = %v, want it to wrap the environment error", err)
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	env := goalEnv()
	table := mustTable(1, 1)
	trainer, err := NewTrainer(testConfig(10), env, greedyPolicy{table}, table)
	if err != nil {
		t.Fatal(err)
	}
	result, err := trainer.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if result == nil || result.CompletedEpisodes != 0 {
		t.Errorf("result = %+v, want no completed episodes", result)
	}
	if env.resets != 0 {
		t.Errorf("environment reset %d times after cancellation", env.resets)
	}
}

func TestRunWritesProgress(t *testing.T) {
	table := mustTable(1, 1)
	trainer, err := NewTrainer(testConfig(4), goalEnv(), greedyPolicy{table}, table)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	trainer.SetOutput(&buf, 2)
	trainer.SetRun(3)
	if _, err := trainer.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d progress lines, want 2:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[1], "Run 3, Episode 4/4") {
		t.Errorf("last progress line = %q", lines[1])
	}
}

type countingAnalyzer struct {
	episodes  int
	successes int
}

func (c *countingAnalyzer) Analyze(eCtx *EpisodeContext, _ *Trace) {
	c.episodes++
	if eCtx.Success() {
		c.successes++
	}
}

func (c *countingAnalyzer) DataSet() DataSet { return [2]int{c.episodes, c.successes} }
func (c *countingAnalyzer) Reset()           { c.episodes, c.successes = 0, 0 }

func TestRunFeedsAnalyzers(t *testing.T) {
	table := mustTable(1, 1)
	trainer, err := NewTrainer(testConfig(7), goalEnv(), greedyPolicy{table}, table)
	if err != nil {
		t.Fatal(err)
	}
	trainer.AddAnalyzer("count", &countingAnalyzer{})
	result, err := trainer.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got := result.Datasets["count"]; got != [2]int{7, 7} {
		t.Errorf("dataset = %v, want [7 7]", got)
	}
	if result.SuccessEpisodes != 7 {
		t.Errorf("successes = %d, want 7", result.SuccessEpisodes)
	}
}
