package analysis

import (
	"path"

	"github.com/zeu5/frozen-lake-rl/core"
	"github.com/zeu5/frozen-lake-rl/util"
)

type outcomeDataset struct {
	Episodes    []int
	SuccessRate []float64

	Successes int
	Failures  int
	Truncated int
	StepLimit int
}

func (o *outcomeDataset) Copy() *outcomeDataset {
	return &outcomeDataset{
		Episodes:    util.CopyIntSlice(o.Episodes),
		SuccessRate: util.CopyFloatSlice(o.SuccessRate),
		Successes:   o.Successes,
		Failures:    o.Failures,
		Truncated:   o.Truncated,
		StepLimit:   o.StepLimit,
	}
}

// OutcomeAnalyzer counts how episodes end and samples the success rate over
// consecutive windows of episodes.
type OutcomeAnalyzer struct {
	window    int
	successes int
	seen      int
	dataset   *outcomeDataset
}

var _ core.Analyzer = &OutcomeAnalyzer{}

func NewOutcomeAnalyzer(window int) *OutcomeAnalyzer {
	if window <= 0 {
		window = 1
	}
	return &OutcomeAnalyzer{
		window: window,
		dataset: &outcomeDataset{
			Episodes:    make([]int, 0),
			SuccessRate: make([]float64, 0),
		},
	}
}

func (o *OutcomeAnalyzer) Reset() {
	o.successes = 0
	o.seen = 0
	o.dataset = &outcomeDataset{
		Episodes:    make([]int, 0),
		SuccessRate: make([]float64, 0),
	}
}

func (o *OutcomeAnalyzer) Analyze(eCtx *core.EpisodeContext, _ *core.Trace) {
	switch eCtx.Status {
	case core.EpisodeTerminated:
		if eCtx.Success() {
			o.dataset.Successes++
			o.successes++
		} else {
			o.dataset.Failures++
		}
	case core.EpisodeTruncated:
		o.dataset.Truncated++
	case core.EpisodeStepLimit:
		o.dataset.StepLimit++
	}

	o.seen++
	if o.seen == o.window {
		o.dataset.Episodes = append(o.dataset.Episodes, eCtx.Episode+1)
		o.dataset.SuccessRate = append(o.dataset.SuccessRate, float64(o.successes)/float64(o.window))
		o.seen = 0
		o.successes = 0
	}
}

func (o *OutcomeAnalyzer) DataSet() core.DataSet {
	return o.dataset.Copy()
}

type OutcomeAnalyzerConstructor struct {
	window int
}

var _ core.AnalyzerConstructor = &OutcomeAnalyzerConstructor{}

func NewOutcomeAnalyzerConstructor(window int) *OutcomeAnalyzerConstructor {
	return &OutcomeAnalyzerConstructor{
		window: window,
	}
}

func (o *OutcomeAnalyzerConstructor) NewAnalyzer(_ string) core.Analyzer {
	return NewOutcomeAnalyzer(o.window)
}

// OutcomeComparator writes the outcome datasets of all experiments to one
// JSON file.
type OutcomeComparator struct {
	savePath string
}

var _ core.Comparator = &OutcomeComparator{}

func NewOutcomeComparator(savePath string) *OutcomeComparator {
	return &OutcomeComparator{
		savePath: path.Join(savePath, "outcomes.json"),
	}
}

func (o *OutcomeComparator) Compare(experimentNames []string, datasets []core.DataSet) error {
	out := make(map[string]*outcomeDataset)
	for i, name := range experimentNames {
		ds, ok := datasets[i].(*outcomeDataset)
		if !ok {
			continue
		}
		out[name] = ds
	}

	return util.SaveJson(o.savePath, out)
}
