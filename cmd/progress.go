package cmd

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/zeu5/frozen-lake-rl/util"
)

// progress hands out one progress writer per line. On a terminal the lines are
// redrawn in place, otherwise every report is appended to out.
type progress struct {
	printer *util.TerminalPrinter
	writers []io.Writer
	every   int
}

func newProgress(ctx context.Context, out io.Writer, lines, episodes int) *progress {
	p := &progress{writers: make([]io.Writer, lines)}
	if isTerminal(out) {
		p.printer = util.NewTerminalPrinter(200*time.Millisecond, out)
		for i := range p.writers {
			p.writers[i] = p.printer.NewOutput()
		}
		p.printer.Start(ctx)
		p.every = max(episodes/1000, 1)
		return p
	}
	for i := range p.writers {
		p.writers[i] = out
	}
	p.every = max(episodes/10, 1)
	return p
}

func (p *progress) Writer(i int) io.Writer {
	return p.writers[i]
}

func (p *progress) Stop() {
	if p.printer != nil {
		p.printer.Stop()
	}
}

// isTerminal reports whether out is a terminal that can be redrawn and
// coloured.
func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	return ok && util.IsTerminal(f)
}
