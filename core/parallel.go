package core

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// MergeStrategy decides how private worker tables are folded into one.
type MergeStrategy int

const (
	// MergeAverage takes the visit-weighted mean of every cell.
	MergeAverage MergeStrategy = iota
	// MergeLastWriter keeps, per cell, the value of the highest numbered run
	// that updated it.
	MergeLastWriter
)

func (m MergeStrategy) String() string {
	switch m {
	case MergeAverage:
		return "average"
	case MergeLastWriter:
		return "last-writer"
	default:
		return fmt.Sprintf("merge(%d)", int(m))
	}
}

// ParallelTrainer trains Runs independent learners, each with a private
// environment, random source and table, on Parallelism goroutines. Tables are
// merged once after every run finished.
type ParallelTrainer struct {
	Config      Hyperparameters
	Environment EnvironmentConstructor
	Policy      PolicyConstructor
	Runs        int
	Parallelism int
	Seed        uint64
	Merge       MergeStrategy
	// Analyzers are instantiated once per run, named after the run.
	Analyzers map[string]AnalyzerConstructor

	Logger *log.Logger
	// Output returns the progress writer for a run. Nil disables progress.
	Output func(run int) io.Writer
	// ReportEvery is the number of episodes between progress lines.
	ReportEvery int
}

// parallelWorker is a worker that trains learners
type parallelWorker struct {
	id int
	p  *ParallelTrainer
}

type parallelWork struct {
	run int
}

type parallelResult struct {
	run    int
	table  *QTable
	result *TrainingResult
	err    error
}

// Worker main loop that consumes work from a channel
func (w *parallelWorker) run(ctx context.Context, workCh <-chan *parallelWork, resultsCh chan<- *parallelResult) {
	for work := range workCh {
		resultsCh <- w.runWork(ctx, work)
	}
}

func (w *parallelWorker) runWork(ctx context.Context, work *parallelWork) *parallelResult {
	out := &parallelResult{run: work.run}
	rng := rand.New(rand.NewSource(w.p.Seed + uint64(work.run)))

	env, err := w.p.Environment.NewEnvironment(work.run, rng)
	if err != nil {
		out.err = err
		return out
	}
	table, err := NewQTable(env.StateSpace(), env.ActionSpace())
	if err != nil {
		out.err = err
		return out
	}
	trainer, err := NewTrainer(w.p.Config, env, w.p.Policy.NewPolicy(table, rng), table)
	if err != nil {
		out.err = err
		return out
	}
	trainer.SetRun(work.run)
	for name, aC := range w.p.Analyzers {
		trainer.AddAnalyzer(name, aC.NewAnalyzer(fmt.Sprintf("run_%d", work.run)))
	}
	if w.p.Logger != nil {
		trainer.SetLogger(w.p.Logger)
	}
	if w.p.Output != nil {
		every := w.p.ReportEvery
		if every <= 0 {
			every = progressInterval(w.p.Config.Episodes)
		}
		trainer.SetOutput(w.p.Output(work.run), every)
	}

	out.result, out.err = trainer.Run(ctx)
	out.table = table
	return out
}

// Run trains all learners and returns the merged table together with the
// per-run results, indexed by run number.
func (p *ParallelTrainer) Run(ctx context.Context) (*QTable, []*TrainingResult, error) {
	if p.Runs <= 0 {
		return nil, nil, configError("runs must be positive, got %d", p.Runs)
	}
	if err := p.Config.Validate(); err != nil {
		return nil, nil, err
	}
	parallelism := p.Parallelism
	if parallelism <= 0 || parallelism > p.Runs {
		parallelism = p.Runs
	}

	workCh := make(chan *parallelWork)
	resultsCh := make(chan *parallelResult, p.Runs)

	go func() {
		defer close(workCh)
		for run := 0; run < p.Runs; run++ {
			select {
			case <-ctx.Done():
				return
			case workCh <- &parallelWork{run: run}:
			}
		}
	}()

	wg := new(sync.WaitGroup)
	for i := 0; i < parallelism; i++ {
		wg.Add(1)
		w := &parallelWorker{id: i, p: p}
		go func() {
			defer wg.Done()
			w.run(ctx, workCh, resultsCh)
		}()
	}
	go func() {
		wg.Wait()
		close(resultsCh)
	}()

	collected := make([]*parallelResult, p.Runs)
	for r := range resultsCh {
		collected[r.run] = r
	}

	tables := make([]*QTable, p.Runs)
	visits := make([]*mat.Dense, p.Runs)
	results := make([]*TrainingResult, p.Runs)
	for run, r := range collected {
		if r == nil {
			return nil, nil, fmt.Errorf("run %d not started: %w", run, ctx.Err())
		}
		if r.err != nil {
			return nil, nil, fmt.Errorf("run %d: %w", run, r.err)
		}
		tables[run] = r.table
		visits[run] = r.result.Visits
		results[run] = r.result
	}

	merged, err := MergeTables(p.Merge, tables, visits)
	if err != nil {
		return nil, nil, err
	}
	return merged, results, nil
}

// MergeTables folds tables into a new one. visits[i] holds the update counts
// of tables[i] and decides which cells a table contributes to.
func MergeTables(strategy MergeStrategy, tables []*QTable, visits []*mat.Dense) (*QTable, error) {
	if len(tables) == 0 {
		return nil, configError("no tables to merge")
	}
	if len(tables) != len(visits) {
		return nil, configError("%d tables but %d visit counts", len(tables), len(visits))
	}
	states, actions := tables[0].Dims()
	for i := range tables {
		gotStates, gotActions := tables[i].Dims()
		vStates, vActions := visits[i].Dims()
		if gotStates != states || gotActions != actions || vStates != states || vActions != actions {
			return nil, &DimensionMismatchError{
				WantStates:  states,
				WantActions: actions,
				GotStates:   gotStates,
				GotActions:  gotActions,
			}
		}
	}

	merged := mat.NewDense(states, actions, nil)
	switch strategy {
	case MergeAverage:
		weights := mat.NewDense(states, actions, nil)
		weighted := mat.NewDense(states, actions, nil)
		for i, t := range tables {
			weighted.MulElem(t.data, visits[i])
			merged.Add(merged, weighted)
			weights.Add(weights, visits[i])
		}
		merged.Apply(func(s, a int, v float64) float64 {
			if w := weights.At(s, a); w > 0 {
				return v / w
			}
			return 0
		}, merged)
	case MergeLastWriter:
		for i, t := range tables {
			for s := 0; s < states; s++ {
				for a := 0; a < actions; a++ {
					if visits[i].At(s, a) > 0 {
						merged.Set(s, a, t.data.At(s, a))
					}
				}
			}
		}
	default:
		return nil, configError("unknown merge strategy %d", int(strategy))
	}
	return &QTable{data: merged}, nil
}
