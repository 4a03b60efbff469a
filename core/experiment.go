package core

import (
	"context"
	"fmt"
	"io"
	"log"

	"golang.org/x/exp/rand"
)

type DataSet interface{}

// Analyzer observes every finished training episode. The trace is reused by
// the trainer, so analyzers must copy anything they keep.
type Analyzer interface {
	Analyze(*EpisodeContext, *Trace)
	DataSet() DataSet
	Reset()
}

type AnalyzerConstructor interface {
	// new analyzer based on experiment name
	NewAnalyzer(string) Analyzer
}

type Comparator interface {
	Compare([]string, []DataSet) error
}

type Experiment struct {
	Name   string
	Policy PolicyConstructor
}

// Comparison trains every experiment from scratch against fresh environments
// and hands the analyzer datasets to the comparators.
type Comparison struct {
	Experiments []*Experiment
	Analyzers   map[string]AnalyzerConstructor
	Comparators map[string]Comparator

	Logger      *log.Logger
	Writer      io.Writer
	ReportEvery int
}

func NewComparison() *Comparison {
	return &Comparison{
		Analyzers:   make(map[string]AnalyzerConstructor),
		Comparators: make(map[string]Comparator),
		Experiments: make([]*Experiment, 0),
		Logger:      log.New(io.Discard, "", 0),
	}
}

// AddExperiment registers e. Experiment names key the results, so a name can
// only be used once.
func (c *Comparison) AddExperiment(e *Experiment) error {
	for _, other := range c.Experiments {
		if other.Name == e.Name {
			return configError("duplicate experiment %q", e.Name)
		}
	}
	c.Experiments = append(c.Experiments, e)
	return nil
}

func (c *Comparison) AddAnalysis(name string, a AnalyzerConstructor, cmp Comparator) {
	c.Analyzers[name] = a
	c.Comparators[name] = cmp
}

// Run trains each experiment with the same seed so the runs only differ in
// their policy.
func (c *Comparison) Run(ctx context.Context, config Hyperparameters, envs EnvironmentConstructor, seed uint64) (map[string]*TrainingResult, error) {
	results := make(map[string]*TrainingResult)
	for i, e := range c.Experiments {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		rng := rand.New(rand.NewSource(seed))
		env, err := envs.NewEnvironment(i, rng)
		if err != nil {
			return results, fmt.Errorf("experiment %s: %w", e.Name, err)
		}
		table, err := NewQTable(env.StateSpace(), env.ActionSpace())
		if err != nil {
			return results, fmt.Errorf("experiment %s: %w", e.Name, err)
		}
		trainer, err := NewTrainer(config, env, e.Policy.NewPolicy(table, rng), table)
		if err != nil {
			return results, fmt.Errorf("experiment %s: %w", e.Name, err)
		}
		trainer.SetLogger(c.Logger)
		trainer.SetRun(i)
		if c.Writer != nil {
			every := c.ReportEvery
			if every <= 0 {
				every = progressInterval(config.Episodes)
			}
			trainer.SetOutput(c.Writer, every)
		}
		for name, aC := range c.Analyzers {
			trainer.AddAnalyzer(name, aC.NewAnalyzer(e.Name))
		}

		c.Logger.Printf("running experiment %s", e.Name)
		result, err := trainer.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("experiment %s: %w", e.Name, err)
		}
		results[e.Name] = result
	}

	// Gather datasets to run comparisons
	experimentNames := make([]string, 0, len(c.Experiments))
	for _, e := range c.Experiments {
		experimentNames = append(experimentNames, e.Name)
	}
	for name, cmp := range c.Comparators {
		datasets := make([]DataSet, 0, len(experimentNames))
		for _, exp := range experimentNames {
			datasets = append(datasets, results[exp].Datasets[name])
		}
		if err := cmp.Compare(experimentNames, datasets); err != nil {
			return results, fmt.Errorf("comparator %s: %w", name, err)
		}
	}
	return results, nil
}

func progressInterval(episodes int) int {
	if episodes < 100 {
		return 1
	}
	return episodes / 100
}
