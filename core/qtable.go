package core

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// QTable is a dense states x actions matrix of action values. Its shape is
// fixed at construction.
type QTable struct {
	data *mat.Dense
}

func NewQTable(states, actions int) (*QTable, error) {
	if states <= 0 || actions <= 0 {
		return nil, configError("q-table dimensions must be positive, got %dx%d", states, actions)
	}
	return &QTable{data: mat.NewDense(states, actions, nil)}, nil
}

// Dims returns the number of states and actions.
func (q *QTable) Dims() (states, actions int) {
	return q.data.Dims()
}

func (q *QTable) inBounds(s State, a Action) bool {
	states, actions := q.data.Dims()
	return s >= 0 && int(s) < states && a >= 0 && int(a) < actions
}

func (q *QTable) Get(s State, a Action) (float64, error) {
	if !q.inBounds(s, a) {
		return 0, q.indexError(s, a)
	}
	return q.data.At(int(s), int(a)), nil
}

func (q *QTable) Set(s State, a Action, value float64) error {
	if !q.inBounds(s, a) {
		return q.indexError(s, a)
	}
	q.data.Set(int(s), int(a), value)
	return nil
}

func (q *QTable) indexError(s State, a Action) error {
	states, actions := q.data.Dims()
	return fmt.Errorf("%w: (%d, %d) in %dx%d q-table", ErrIndex, s, a, states, actions)
}

// BestAction returns the action with the largest value for s. Ties go to the
// smallest action index. It panics if s is out of range.
func (q *QTable) BestAction(s State) Action {
	return Action(floats.MaxIdx(q.data.RawRowView(int(s))))
}

// BestValue returns the largest action value for s. It panics if s is out of
// range.
func (q *QTable) BestValue(s State) float64 {
	return floats.Max(q.data.RawRowView(int(s)))
}

// Row returns a copy of the action values for s.
func (q *QTable) Row(s State) []float64 {
	_, actions := q.data.Dims()
	row := make([]float64, actions)
	copy(row, q.data.RawRowView(int(s)))
	return row
}

func (q *QTable) Clone() *QTable {
	return &QTable{data: mat.DenseCopyOf(q.data)}
}

// Equal reports whether both tables have the same shape and identical values.
func (q *QTable) Equal(o *QTable) bool {
	return mat.Equal(q.data, o.data)
}

// Matrix exposes the underlying values read-only.
func (q *QTable) Matrix() mat.Matrix {
	return q.data
}

// Save writes the table using gonum's binary matrix encoding, which carries
// the shape and the raw IEEE-754 bits of every entry.
func (q *QTable) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := q.data.MarshalBinaryTo(bw); err != nil {
		return fmt.Errorf("error writing q-table: %w", err)
	}
	return bw.Flush()
}

// Load reads a table written by Save and checks it against the expected shape.
func Load(r io.Reader, states, actions int) (*QTable, error) {
	data := new(mat.Dense)
	if _, err := data.UnmarshalBinaryFrom(bufio.NewReader(r)); err != nil {
		return nil, fmt.Errorf("error reading q-table: %w", err)
	}
	gotStates, gotActions := data.Dims()
	if gotStates != states || gotActions != actions {
		return nil, &DimensionMismatchError{
			WantStates:  states,
			WantActions: actions,
			GotStates:   gotStates,
			GotActions:  gotActions,
		}
	}
	return &QTable{data: data}, nil
}

func (q *QTable) SaveFile(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := q.Save(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func LoadFile(path string, states, actions int) (*QTable, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	defer file.Close()
	return Load(file, states, actions)
}

// LoadForEnvironment loads the table at path and checks its shape against the
// spaces reported by env.
func LoadForEnvironment(path string, env Environment) (*QTable, error) {
	return LoadFile(path, env.StateSpace(), env.ActionSpace())
}
