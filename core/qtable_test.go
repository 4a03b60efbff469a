package core

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewQTableRejectsEmptyShape(t *testing.T) {
	for _, dims := range [][2]int{{0, 4}, {16, 0}, {-1, 4}} {
		if _, err := NewQTable(dims[0], dims[1]); !errors.Is(err, ErrConfig) {
			t.Errorf("NewQTable(%d, %d) error = %v, want ErrConfig", dims[0], dims[1], err)
		}
	}
}

func TestQTableGetSet(t *testing.T) {
	q := mustTable(16, 4)
	if err := q.Set(5, 2, 0.25); err != nil {
		t.Fatal(err)
	}
	v, err := q.Get(5, 2)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0.25 {
		t.Errorf("Get(5, 2) = %v, want 0.25", v)
	}
	if v, _ := q.Get(0, 0); v != 0 {
		t.Errorf("fresh cell = %v, want 0", v)
	}

	for _, idx := range [][2]int{{16, 0}, {-1, 0}, {0, 4}, {0, -1}} {
		if _, err := q.Get(State(idx[0]), Action(idx[1])); !errors.Is(err, ErrIndex) {
			t.Errorf("Get(%d, %d) error = %v, want ErrIndex", idx[0], idx[1], err)
		}
		if err := q.Set(State(idx[0]), Action(idx[1]), 1); !errors.Is(err, ErrIndex) {
			t.Errorf("Set(%d, %d) error = %v, want ErrIndex", idx[0], idx[1], err)
		}
	}
}

func TestBestActionTieBreak(t *testing.T) {
	q := mustTable(2, 4)
	if a := q.BestAction(0); a != 0 {
		t.Errorf("BestAction on zero row = %d, want 0", a)
	}
	q.Set(1, 3, 0.7)
	q.Set(1, 1, 0.7)
	q.Set(1, 2, -1)
	if a := q.BestAction(1); a != 1 {
		t.Errorf("BestAction = %d, want 1", a)
	}
	if v := q.BestValue(1); v != 0.7 {
		t.Errorf("BestValue = %v, want 0.7", v)
	}
}

func TestRowIsCopy(t *testing.T) {
	q := mustTable(1, 2)
	row := q.Row(0)
	row[0] = 5
	if v, _ := q.Get(0, 0); v != 0 {
		t.Errorf("modifying Row changed the table: %v", v)
	}
}

func TestSaveLoadBitExact(t *testing.T) {
	q := mustTable(16, 4)
	values := []float64{
		0.1, -0.2, 1e-300, math.Nextafter(1, 2), math.SmallestNonzeroFloat64, -0, 123456.789,
	}
	for i, v := range values {
		q.Set(State(i), Action(i%4), v)
	}

	var buf bytes.Buffer
	if err := q.Save(&buf); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(&buf, 16, 4)
	if err != nil {
		t.Fatal(err)
	}
	for s := 0; s < 16; s++ {
		for a := 0; a < 4; a++ {
			want, _ := q.Get(State(s), Action(a))
			got, _ := loaded.Get(State(s), Action(a))
			if math.Float64bits(got) != math.Float64bits(want) {
				t.Errorf("cell (%d, %d) = %v, want %v", s, a, got, want)
			}
		}
	}
	if !loaded.Equal(q) {
		t.Error("loaded table not equal to saved table")
	}
}

func TestLoadDimensionMismatch(t *testing.T) {
	var buf bytes.Buffer
	if err := mustTable(16, 4).Save(&buf); err != nil {
		t.Fatal(err)
	}
	_, err := Load(&buf, 64, 4)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("Load error = %v, want ErrDimensionMismatch", err)
	}
	var dErr *DimensionMismatchError
	if !errors.As(err, &dErr) {
		t.Fatalf("Load error %T is not a *DimensionMismatchError", err)
	}
	if dErr.GotStates != 16 || dErr.WantStates != 64 || dErr.GotActions != 4 || dErr.WantActions != 4 {
		t.Errorf("unexpected mismatch %+v", dErr)
	}
}

func TestLoadGarbage(t *testing.T) {
	if _, err := Load(strings.NewReader("not a table"), 16, 4); err == nil {
		t.Error("expected an error reading garbage")
	}
}

func TestSaveFileLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables", "q_table_4x4.bin")
	q := mustTable(16, 4)
	q.Set(14, 2, 1)
	if err := q.SaveFile(path); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadForEnvironment(path, loopEnv(16, 4))
	if err != nil {
		t.Fatal(err)
	}
	if !loaded.Equal(q) {
		t.Error("loaded table differs")
	}
	if _, err := LoadForEnvironment(path, loopEnv(64, 4)); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("loading 4x4 table for 8x8 lake: error = %v, want ErrDimensionMismatch", err)
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.bin"), 16, 4)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	q := mustTable(2, 2)
	c := q.Clone()
	c.Set(0, 0, 1)
	if q.Equal(c) {
		t.Error("clone shares storage with the original")
	}
}
