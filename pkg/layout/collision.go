package layout

import (
	"cmp"
	"slices"

	"github.com/matzehuels/lifelines/pkg/connection"
)

// Occupant is one life-line span in a column.
type Occupant struct {
	Individual *Individual
	Context    connection.ID
	Start      int
	End        int
}

// Collision is a pair of overlapping occupants of the same column.
type Collision struct {
	Index int
	A, B  Occupant
}

// CheckResult is the outcome of [Session.Check].
type CheckResult struct {
	Collisions []Collision
	Min, Max   int
	Columns    map[int][]Occupant
}

// Check groups every life-line span by column and reports pairs of spans of
// different appearances whose intervals, padded by minDistance days on both
// sides, overlap. With raiseEarly set it stops at the first collision and
// returns a [*CollisionError].
func (s *Session) Check(raiseEarly bool, minDistance int) (CheckResult, error) {
	res := CheckResult{Columns: make(map[int][]Occupant)}
	first := true
	for _, g := range s.Individuals() {
		for _, sp := range g.Spans() {
			if first {
				res.Min, res.Max, first = sp.Index, sp.Index, false
			}
			res.Min = min(res.Min, sp.Index)
			res.Max = max(res.Max, sp.Index)
			res.Columns[sp.Index] = append(res.Columns[sp.Index], Occupant{
				Individual: g, Context: sp.Context, Start: sp.Start, End: sp.End,
			})
		}
	}
	for _, idx := range sortedColumns(res.Columns) {
		occ := res.Columns[idx]
		slices.SortStableFunc(occ, func(a, b Occupant) int { return cmp.Compare(a.Start, b.Start) })
		for i := range occ {
			for j := i + 1; j < len(occ); j++ {
				a, b := occ[i], occ[j]
				if a.Individual == b.Individual || !overlaps(a, b, minDistance) {
					continue
				}
				c := Collision{Index: idx, A: a, B: b}
				if raiseEarly {
					return res, &CollisionError{Collision: c}
				}
				res.Collisions = append(res.Collisions, c)
			}
		}
	}
	return res, nil
}

// overlaps reports whether two padded intervals intersect. With lo <= hi on
// both, they overlap iff (lo1-hi2) and (hi1-lo2) have opposite signs.
func overlaps(a, b Occupant, pad int) bool {
	lo1, hi1 := int64(a.Start-pad), int64(a.End+pad)
	lo2, hi2 := int64(b.Start-pad), int64(b.End+pad)
	return (lo1-hi2)*(hi1-lo2) < 0
}

func sortedColumns(cols map[int][]Occupant) []int {
	idx := make([]int, 0, len(cols))
	for i := range cols {
		idx = append(idx, i)
	}
	slices.Sort(idx)
	return idx
}

// Problems lists placement defects found by [Session.CheckUniqueXPosition].
type Problems struct {
	Collisions []Collision
	Missing    []int // unused columns inside the extents
}

// Empty reports whether no problem was found.
func (p Problems) Empty() bool { return len(p.Collisions) == 0 && len(p.Missing) == 0 }

// Indices returns every column involved in a problem, sorted and unique.
func (p Problems) Indices() []int {
	var out []int
	for _, c := range p.Collisions {
		out = append(out, c.Index)
	}
	out = append(out, p.Missing...)
	slices.Sort(out)
	return slices.Compact(out)
}

// CheckUniqueXPosition reports every collision and every gap in the column
// range. A consistent layout has neither.
func (s *Session) CheckUniqueXPosition(minDistance int) Problems {
	res, _ := s.Check(false, minDistance)
	p := Problems{Collisions: res.Collisions}
	if len(res.Columns) == 0 {
		return p
	}
	for i := res.Min; i <= res.Max; i++ {
		if _, ok := res.Columns[i]; !ok {
			p.Missing = append(p.Missing, i)
		}
	}
	return p
}

func (s *Session) collides() bool {
	_, err := s.Check(true, s.minDistance)
	return err != nil
}
