package layout

import (
	"reflect"
	"testing"

	"github.com/matzehuels/lifelines/pkg/genealogy"
	"github.com/matzehuels/lifelines/pkg/genealogy/genealogytest"
)

// lopsided gives B's father E his own parents G/H, which pushes B away from
// A.
func lopsided() *genealogy.Store {
	return genealogytest.New().
		Person("A", 1950, 2020).
		Person("B", 1952, 2022).
		Person("C", 1920, 1990).
		Person("D", 1922, 1995).
		Person("E", 1925, 2000).
		Person("F", 1927, 2005).
		Person("G", 1895, 1960).
		Person("H", 1897, 1965).
		Family("FAB", "A", "B", 1975).
		Family("FCD", "C", "D", 1945, "A").
		Family("FEF", "E", "F", 1948, "B").
		Family("FGH", "G", "H", 1922, "E").
		Store()
}

func TestFlipIsReversible(t *testing.T) {
	for _, fam := range []string{"FAB", "FCD", "FEF", "FGH"} {
		t.Run(fam, func(t *testing.T) {
			s := newLaidOut(t, lopsided(), -1, "A")
			f, _ := s.Family(fam)
			before := s.Snapshot()
			if err := s.Flip(f); err != nil {
				t.Fatalf("Flip() error: %v", err)
			}
			if err := s.Flip(f); err != nil {
				t.Fatalf("second Flip() error: %v", err)
			}
			if after := s.Snapshot(); !reflect.DeepEqual(before, after) {
				t.Errorf("positions changed after flipping twice")
			}
		})
	}
}

func TestFlipMirrorsBlock(t *testing.T) {
	s := newLaidOut(t, threeGenerations(), 2, "A")
	fcd, _ := s.Family("FCD")
	if err := s.Flip(fcd); err != nil {
		t.Fatalf("Flip() error: %v", err)
	}
	for id, want := range map[string]int{"C": 2, "A": 1, "D": 0} {
		if got := column(t, s, id, "FCD"); got != want {
			t.Errorf("%s at %d, want %d", id, got, want)
		}
	}
	if got := column(t, s, "A", "FAB"); got != 1 {
		t.Errorf("A's marriage column = %d, want 1", got)
	}

	fab, _ := s.Family("FAB")
	if err := s.Flip(fab); err != nil {
		t.Fatalf("Flip() error: %v", err)
	}
	if a, b := column(t, s, "A", "FAB"), column(t, s, "B", "FAB"); a != 4 || b != 1 {
		t.Errorf("A, B at %d, %d, want 4, 1", a, b)
	}
}

func TestFlipToOptimize(t *testing.T) {
	s := newLaidOut(t, lopsided(), -1, "A")
	before := s.CrossBranchDistance()
	lo, hi := s.Extents()

	stats, err := s.FlipToOptimize(0)
	if err != nil {
		t.Fatalf("FlipToOptimize() error: %v", err)
	}
	if stats.Moves != 1 {
		t.Errorf("Moves = %d, want 1", stats.Moves)
	}
	if after := s.CrossBranchDistance(); after >= before {
		t.Errorf("CrossBranchDistance() = %d, want < %d", after, before)
	}
	if got := column(t, s, "B", "FAB"); got != 4 {
		t.Errorf("B at %d, want 4", got)
	}
	if l, h := s.Extents(); l != lo || h != hi {
		t.Errorf("Extents() = [%d,%d], want [%d,%d]", l, h, lo, hi)
	}
	if p := s.CheckUniqueXPosition(s.MinDistance()); !p.Empty() {
		t.Errorf("CheckUniqueXPosition() = %+v", p)
	}
}

func TestFlipToOptimizeBudget(t *testing.T) {
	tests := []struct {
		limit     int
		wantSteps int
	}{
		{limit: -1, wantSteps: 1},
		{limit: 0, wantSteps: 1},
		{limit: 1, wantSteps: 1},
	}
	for _, tt := range tests {
		s := newLaidOut(t, lopsided(), -1, "A")
		stats, err := s.FlipToOptimize(tt.limit)
		if err != nil {
			t.Fatalf("FlipToOptimize(%d) error: %v", tt.limit, err)
		}
		if stats.Steps != tt.wantSteps || stats.Exhausted {
			t.Errorf("FlipToOptimize(%d) stats = %+v", tt.limit, stats)
		}
	}
}

func TestCrossBranchDistance(t *testing.T) {
	s := newLaidOut(t, threeGenerations(), 2, "A")
	// |A-B| = 3, |C-D| = 2, |E-F| = 2; children are centered.
	if got := s.CrossBranchDistance(); got != 7 {
		t.Errorf("CrossBranchDistance() = %d, want 7", got)
	}
}

func TestFlipAfterShiftUsesFreshRanges(t *testing.T) {
	warm := newLaidOut(t, lopsided(), -1, "A")
	cold := newLaidOut(t, lopsided(), -1, "A")

	for _, f := range warm.Families() {
		for _, g := range []func() (*Individual, error){f.Husband, f.Wife} {
			if p, err := g(); err == nil && p != nil {
				_, _, _ = warm.AncestorRange(p, f.ID())
			}
		}
	}

	for _, s := range []*Session{warm, cold} {
		fab, _ := s.Family("FAB")
		if err := s.Flip(fab); err != nil {
			t.Fatalf("Flip(FAB) error: %v", err)
		}
	}

	e, _ := warm.Individual("E")
	fef, _ := warm.Family("FEF")
	if lo, hi, err := warm.AncestorRange(e, fef.ID()); err != nil || lo != 0 || hi != 2 {
		t.Fatalf("AncestorRange(E) after flip = %d, %d, %v, want 0, 2", lo, hi, err)
	}

	for _, s := range []*Session{warm, cold} {
		fef, _ := s.Family("FEF")
		if err := s.Flip(fef); err != nil {
			t.Fatalf("Flip(FEF) error: %v", err)
		}
	}
	for id, want := range map[string]int{"F": 0, "B": 1, "E": 3} {
		if got := column(t, warm, id, "FEF"); got != want {
			t.Errorf("%s at %d, want %d", id, got, want)
		}
	}
	if !reflect.DeepEqual(warm.Snapshot(), cold.Snapshot()) {
		t.Error("flip with a warm range cache differs from a cold one")
	}
}
