package analysis

import (
	"fmt"
	"math"
	"os"
	"path"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/zeu5/frozen-lake-rl/core"
	"github.com/zeu5/frozen-lake-rl/util"
	"gonum.org/v1/gonum/stat"
)

type returnDataset struct {
	Episodes   []int
	MeanReturn []float64
	StdReturn  []float64
	MeanLength []float64
}

func (r *returnDataset) Copy() *returnDataset {
	return &returnDataset{
		Episodes:   util.CopyIntSlice(r.Episodes),
		MeanReturn: util.CopyFloatSlice(r.MeanReturn),
		StdReturn:  util.CopyFloatSlice(r.StdReturn),
		MeanLength: util.CopyFloatSlice(r.MeanLength),
	}
}

// ReturnAnalyzer averages episode returns and lengths over consecutive
// windows of episodes.
type ReturnAnalyzer struct {
	window  int
	returns []float64
	lengths []float64
	dataset *returnDataset
}

var _ core.Analyzer = &ReturnAnalyzer{}

func NewReturnAnalyzer(window int) *ReturnAnalyzer {
	if window <= 0 {
		window = 1
	}
	r := &ReturnAnalyzer{window: window}
	r.Reset()
	return r
}

func (r *ReturnAnalyzer) Reset() {
	r.returns = make([]float64, 0, r.window)
	r.lengths = make([]float64, 0, r.window)
	r.dataset = &returnDataset{
		Episodes:   make([]int, 0),
		MeanReturn: make([]float64, 0),
		StdReturn:  make([]float64, 0),
		MeanLength: make([]float64, 0),
	}
}

func (r *ReturnAnalyzer) Analyze(eCtx *core.EpisodeContext, trace *core.Trace) {
	r.returns = append(r.returns, trace.Return())
	r.lengths = append(r.lengths, float64(trace.Len()))
	if len(r.returns) < r.window {
		return
	}

	mean, std := stat.MeanStdDev(r.returns, nil)
	if len(r.returns) < 2 {
		// the sample deviation of a single return is undefined
		std = 0
	}
	r.dataset.Episodes = append(r.dataset.Episodes, eCtx.Episode+1)
	r.dataset.MeanReturn = append(r.dataset.MeanReturn, mean)
	r.dataset.StdReturn = append(r.dataset.StdReturn, std)
	r.dataset.MeanLength = append(r.dataset.MeanLength, stat.Mean(r.lengths, nil))
	r.returns = r.returns[:0]
	r.lengths = r.lengths[:0]
}

func (r *ReturnAnalyzer) DataSet() core.DataSet {
	return r.dataset.Copy()
}

type ReturnAnalyzerConstructor struct {
	window int
}

var _ core.AnalyzerConstructor = &ReturnAnalyzerConstructor{}

func NewReturnAnalyzerConstructor(window int) *ReturnAnalyzerConstructor {
	return &ReturnAnalyzerConstructor{
		window: window,
	}
}

func (r *ReturnAnalyzerConstructor) NewAnalyzer(_ string) core.Analyzer {
	return NewReturnAnalyzer(r.window)
}

// ChartComparator plots the mean return of every experiment on one line
// chart and writes it as an HTML page.
type ChartComparator struct {
	savePath string
	title    string
}

var _ core.Comparator = &ChartComparator{}

func NewChartComparator(savePath, title string) *ChartComparator {
	return &ChartComparator{
		savePath: savePath,
		title:    title,
	}
}

func (c *ChartComparator) Compare(experimentNames []string, datasets []core.DataSet) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: c.title,
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "episode"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "mean return"}),
	)

	var episodes []string
	for i, name := range experimentNames {
		ds, ok := datasets[i].(*returnDataset)
		if !ok {
			continue
		}
		if episodes == nil {
			for _, e := range ds.Episodes {
				episodes = append(episodes, strconv.Itoa(e))
			}
			line.SetXAxis(episodes)
		}
		items := make([]opts.LineData, 0, len(ds.MeanReturn))
		for _, v := range ds.MeanReturn {
			items = append(items, opts.LineData{Value: v})
		}
		line.AddSeries(name, items)
	}

	if err := checkFinite(experimentNames, datasets); err != nil {
		return err
	}
	if err := util.SaveJson(path.Join(c.savePath, "returns.json"), datasetsByName(experimentNames, datasets)); err != nil {
		return err
	}

	page := components.NewPage()
	page.AddCharts(line)
	f, err := os.Create(path.Join(c.savePath, "returns.html"))
	if err != nil {
		return err
	}
	defer f.Close()
	return page.Render(f)
}

// checkFinite rejects datasets that JSON and the chart cannot encode.
func checkFinite(names []string, datasets []core.DataSet) error {
	for i, d := range datasets {
		ds, ok := d.(*returnDataset)
		if !ok {
			continue
		}
		for _, series := range [][]float64{ds.MeanReturn, ds.StdReturn, ds.MeanLength} {
			for j, v := range series {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					return fmt.Errorf("experiment %s: non-finite value %v at sample %d", names[i], v, j)
				}
			}
		}
	}
	return nil
}

func datasetsByName(names []string, datasets []core.DataSet) map[string]core.DataSet {
	out := make(map[string]core.DataSet, len(names))
	for i, name := range names {
		out[name] = datasets[i]
	}
	return out
}
