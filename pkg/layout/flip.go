package layout

import (
	"errors"

	lerrors "github.com/matzehuels/lifelines/pkg/errors"
)

// OptimizeStats reports the work done by an optimizer. Exhausted is set when
// the step budget ran out before a fixed point was reached; the layout is
// still valid in that case.
type OptimizeStats struct {
	Steps     int  `json:"steps"`
	Moves     int  `json:"moves"`
	Exhausted bool `json:"exhausted,omitempty"`
}

// budget counts optimizer steps. A limit of zero or less is unlimited.
type budget struct {
	limit int
	stats *OptimizeStats
}

func (b budget) take() bool {
	if b.limit > 0 && b.stats.Steps >= b.limit {
		b.stats.Exhausted = true
		return false
	}
	b.stats.Steps++
	return true
}

// block is a run of entries that a flip moves as one, with its column
// extent before the flip.
type block struct {
	entries []entry
	lo, hi  int
}

// flipBlocks returns the husband branch, the children block and the wife
// branch of f, skipping empty ones. Spouse branch extents come from
// [Session.AncestorRange].
func (s *Session) flipBlocks(f *Family) ([]block, error) {
	h, err := f.Husband()
	if err != nil {
		return nil, err
	}
	w, err := f.Wife()
	if err != nil {
		return nil, err
	}
	var blocks []block
	spouseBlock := func(g *Individual) error {
		if g == nil {
			return nil
		}
		entries, err := s.branch(g, f.id)
		if err != nil {
			return err
		}
		lo, hi, err := s.AncestorRange(g, f.id)
		if err != nil {
			return err
		}
		blocks = append(blocks, block{entries: entries, lo: lo, hi: hi})
		return nil
	}
	if err := spouseBlock(h); err != nil {
		return nil, err
	}
	if kids := s.childrenBlock(f); len(kids) > 0 {
		lo, hi, _ := span(kids)
		blocks = append(blocks, block{entries: kids, lo: lo, hi: hi})
	}
	if err := spouseBlock(w); err != nil {
		return nil, err
	}
	return blocks, nil
}

// Flip mirrors the block of f within the columns it covers: each spouse
// branch and the children block move to the mirrored position while
// keeping their internal order. Flipping twice restores the layout.
func (s *Session) Flip(f *Family) error {
	blocks, err := s.flipBlocks(f)
	if err != nil {
		return err
	}
	if len(blocks) < 2 {
		return nil
	}
	lo, hi := blocks[0].lo, blocks[0].hi
	for _, b := range blocks[1:] {
		lo = min(lo, b.lo)
		hi = max(hi, b.hi)
	}
	for _, b := range blocks {
		if err := s.movable(b.entries); err != nil {
			return err
		}
	}
	for _, b := range blocks {
		if err := s.shift(b.entries, lo+hi-b.lo-b.hi); err != nil {
			return err
		}
	}
	return nil
}

// flipCandidate reports whether f's children sit on the opposite side of
// the family's midpoint from the column they connect to through the
// anchor's marriage.
func (s *Session) flipCandidate(f *Family) bool {
	a, ok := s.anchors[f.id]
	if !ok || a.Spouse == nil {
		return false
	}
	partnerCol, ok := s.partnerColumn(a)
	if !ok {
		return false
	}
	h, _ := f.Husband()
	w, _ := f.Wife()
	var cols []int
	for _, p := range []*Individual{h, w} {
		if p == nil {
			continue
		}
		if c, ok := columnOf(p, f.id); ok {
			cols = append(cols, c)
		}
	}
	if len(cols) == 0 {
		return false
	}
	var mid float64
	for _, c := range cols {
		mid += float64(c)
	}
	mid /= float64(len(cols))

	kids := s.childrenBlock(f)
	if len(kids) == 0 {
		return false
	}
	var centroid float64
	for _, k := range kids {
		c, _ := k.index()
		centroid += float64(c)
	}
	centroid /= float64(len(kids))
	return (centroid-mid)*(float64(partnerCol)-mid) < 0
}

// partnerColumn returns the column of the anchor's partner in the anchor's
// marriage.
func (s *Session) partnerColumn(a Anchor) (int, bool) {
	h, _ := a.Spouse.Husband()
	w, _ := a.Spouse.Wife()
	partner := h
	if partner == a.Child {
		partner = w
	}
	if partner == nil {
		return 0, false
	}
	return columnOf(partner, a.Spouse.id)
}

// CrossBranchDistance sums the horizontal length of every connector: the
// jumps of each life line between consecutive columns, the distance between
// spouses, and the distance of each child from its parents' midpoint
// (doubled to stay integral).
func (s *Session) CrossBranchDistance() int {
	total := 0
	for _, g := range s.Individuals() {
		for i := 1; i < len(g.positions); i++ {
			total += abs(g.positions[i].Index - g.positions[i-1].Index)
		}
	}
	for _, f := range s.Families() {
		h, _ := f.Husband()
		w, _ := f.Wife()
		hc, hok := colOrNone(h, f)
		wc, wok := colOrNone(w, f)
		switch {
		case hok && wok:
			total += abs(hc - wc)
		case hok:
			wc = hc
		case wok:
			hc = wc
		default:
			continue
		}
		for _, c := range f.Children() {
			if cc, ok := columnOf(c, f.id); ok {
				total += abs(2*cc - hc - wc)
			}
		}
	}
	return total
}

func colOrNone(g *Individual, f *Family) (int, bool) {
	if g == nil {
		return 0, false
	}
	return columnOf(g, f.id)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// FlipToOptimize flips family blocks whose children face away from their
// anchor's partner, keeping a flip only when it shortens the connectors
// without introducing a collision. Passes repeat until nothing improves or
// maxSteps flips have been tried (zero or less is unlimited).
func (s *Session) FlipToOptimize(maxSteps int) (OptimizeStats, error) {
	var stats OptimizeStats
	b := budget{limit: maxSteps, stats: &stats}
	for {
		improved := false
		for _, f := range s.Families() {
			if !s.flipCandidate(f) {
				continue
			}
			if !b.take() {
				return stats, nil
			}
			before := s.CrossBranchDistance()
			if err := s.Flip(f); err != nil {
				if errors.Is(err, ErrCannotMove) || lerrors.Recoverable(err) {
					continue
				}
				return stats, err
			}
			if s.CrossBranchDistance() >= before || s.collides() {
				if err := s.Flip(f); err != nil {
					return stats, err
				}
				continue
			}
			stats.Moves++
			improved = true
		}
		if !improved {
			s.logger.Debug("flip done", "steps", stats.Steps, "flips", stats.Moves)
			return stats, nil
		}
	}
}
