package layout

import (
	"errors"

	"github.com/matzehuels/lifelines/pkg/connection"
)

// Compress slides ancestor branches toward their children until they would
// collide, innermost families first, then re-centers each root between its
// parents and removes the columns left empty. Moves never leave the current
// column extents, so the layout never gets wider. A shift that references a
// missing context is treated as a fixed point. maxSteps bounds the number of
// attempted moves (zero or less is unlimited).
func (s *Session) Compress(maxSteps int) (OptimizeStats, error) {
	var stats OptimizeStats
	b := budget{limit: maxSteps, stats: &stats}
	seen := make(map[connection.ID]bool)
	for _, root := range s.roots {
		fams := s.marriages(root)
		if pf, err := s.strongParentFamily(root); err != nil {
			return stats, err
		} else if pf != nil {
			fams = append(fams, pf)
		}
		for _, f := range fams {
			if err := s.compressFamily(f, b, seen); err != nil {
				return stats, err
			}
		}
	}
	for _, root := range s.roots {
		if err := s.recenter(root, b); err != nil {
			return stats, err
		}
	}
	s.closeGaps()
	s.logger.Debug("compress done", "steps", stats.Steps, "moves", stats.Moves, "exhausted", stats.Exhausted)
	return stats, nil
}

func (s *Session) compressFamily(f *Family, b budget, seen map[connection.ID]bool) error {
	if seen[f.id] {
		return nil
	}
	seen[f.id] = true
	h, err := f.Husband()
	if err != nil {
		return err
	}
	w, err := f.Wife()
	if err != nil {
		return err
	}
	for _, parent := range []*Individual{h, w} {
		if parent == nil {
			continue
		}
		pf, err := s.strongParentFamily(parent)
		if err != nil {
			return err
		}
		if pf != nil && s.isAnchor(pf, parent, f.id) {
			if err := s.compressFamily(pf, b, seen); err != nil {
				return err
			}
		}
		if err := s.slide(f, parent, b); err != nil {
			return err
		}
	}
	return nil
}

// slide moves the branch of parent in f one column at a time toward the
// rest of f's block and undoes the first move that collides.
func (s *Session) slide(f *Family, parent *Individual, b budget) error {
	entries, err := s.branch(parent, f.id)
	if err == nil {
		err = s.movable(entries)
	}
	if errors.Is(err, ErrCannotMove) {
		return nil
	}
	if err != nil {
		return err
	}
	col, _ := columnOf(parent, f.id)
	target, ok := s.slideTarget(f, parent, col)
	if !ok {
		return nil
	}
	dir := 1
	if target < col {
		dir = -1
	}
	for {
		col, _ = columnOf(parent, f.id)
		if col+dir == target {
			return nil
		}
		lo, hi, err := s.AncestorRange(parent, f.id)
		if err != nil {
			return err
		}
		if lo+dir < s.minIndex || hi+dir > s.maxIndex {
			return nil
		}
		if !b.take() {
			return nil
		}
		if err := s.shift(entries, dir); err != nil {
			if errors.Is(err, ErrCannotMove) {
				return nil
			}
			return err
		}
		if s.collides() {
			return s.shift(entries, -dir)
		}
		b.stats.Moves++
	}
}

// slideTarget returns the nearest column of f's block, other than parent's
// own branch, that parent moves toward: the closest child, else the other
// spouse.
func (s *Session) slideTarget(f *Family, parent *Individual, col int) (int, bool) {
	best, found := 0, false
	consider := func(c int) {
		if c == col {
			return
		}
		if !found || abs(c-col) < abs(best-col) {
			best, found = c, true
		}
	}
	for _, e := range s.childrenBlock(f) {
		if c, ok := e.index(); ok {
			consider(c)
		}
	}
	if found {
		return best, true
	}
	h, _ := f.Husband()
	w, _ := f.Wife()
	other := h
	if other == parent {
		other = w
	}
	if c, ok := colOrNone(other, f); ok {
		consider(c)
	}
	return best, found
}

// recenter moves a root's column toward the midpoint of its parents while
// that brings it closer and causes no collision.
func (s *Session) recenter(root *Individual, b budget) error {
	pf, err := s.strongParentFamily(root)
	if err != nil || pf == nil {
		return err
	}
	h, _ := pf.Husband()
	w, _ := pf.Wife()
	hc, hok := colOrNone(h, pf)
	wc, wok := colOrNone(w, pf)
	if !hok || !wok {
		return nil
	}
	entries := []entry{{root, pf.id}}
	if a, ok := s.anchors[pf.id]; ok && a.Child == root && a.Spouse != nil {
		if sc, ok := columnOf(root, a.Spouse.id); ok {
			if rc, _ := columnOf(root, pf.id); rc == sc {
				entries = append(entries, entry{root, a.Spouse.id})
			}
		}
	}
	entries = s.withDetached(entries)
	mid2 := hc + wc
	for {
		col, ok := columnOf(root, pf.id)
		if !ok {
			return nil
		}
		dir := 0
		switch {
		case 2*col < mid2-1:
			dir = 1
		case 2*col > mid2+1:
			dir = -1
		}
		if dir == 0 || !b.take() {
			return nil
		}
		if err := s.shift(entries, dir); err != nil {
			if errors.Is(err, ErrCannotMove) {
				return nil
			}
			return err
		}
		if s.collides() {
			return s.shift(entries, -dir)
		}
		b.stats.Moves++
	}
}

// closeGaps removes empty columns inside the extents, keeping the order of
// the occupied ones.
func (s *Session) closeGaps() {
	used := make(map[int]bool)
	for _, g := range s.individuals {
		for _, p := range g.positions {
			used[p.Index] = true
		}
	}
	remap := make(map[int]int, len(used))
	next := s.minIndex
	for i := s.minIndex; i <= s.maxIndex; i++ {
		if used[i] {
			remap[i] = next
			next++
		}
	}
	if next == s.maxIndex+1 {
		return
	}
	for _, g := range s.individuals {
		for i := range g.positions {
			g.positions[i].Index = remap[g.positions[i].Index]
		}
	}
	s.generation++
	s.refreshExtents()
}
