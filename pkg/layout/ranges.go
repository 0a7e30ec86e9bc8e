package layout

import (
	"fmt"

	"github.com/matzehuels/lifelines/pkg/connection"
)

// entry addresses one position-map entry.
type entry struct {
	ind *Individual
	ctx connection.ID
}

func (e entry) index() (int, bool) { return columnOf(e.ind, e.ctx) }

// branch returns the entries that move together with g's column in ctx: the
// entry itself and, when g anchors its parent family through ctx, the whole
// parent block recursively.
func (s *Session) branch(g *Individual, ctx connection.ID) ([]entry, error) {
	if !g.has(ctx) {
		return nil, fmt.Errorf("branch %s in %s: %w", g.id, ctx, ErrCannotMove)
	}
	out := []entry{{g, ctx}}
	seen := map[connection.ID]bool{}
	out, err := s.appendBranch(out, g, ctx, seen)
	return s.withDetached(out), err
}

func (s *Session) appendBranch(out []entry, g *Individual, ctx connection.ID, seen map[connection.ID]bool) ([]entry, error) {
	pf, err := s.strongParentFamily(g)
	if err != nil || pf == nil || seen[pf.id] || !s.isAnchor(pf, g, ctx) {
		return out, err
	}
	seen[pf.id] = true
	if g.has(pf.id) {
		out = append(out, entry{g, pf.id})
	}
	return s.appendBlock(out, pf, g, seen)
}

// appendBlock adds the spouse branches and the children of f. skip is left
// out of the children; the caller has already added it.
func (s *Session) appendBlock(out []entry, f *Family, skip *Individual, seen map[connection.ID]bool) ([]entry, error) {
	h, w, err := s.orderedSpouses(f)
	if err != nil {
		return out, err
	}
	for _, parent := range []*Individual{h, w} {
		if parent == nil || !parent.has(f.id) {
			continue
		}
		out = append(out, entry{parent, f.id})
		if out, err = s.appendBranch(out, parent, f.id, seen); err != nil {
			return out, err
		}
	}
	for _, c := range f.Children() {
		if c != skip && c.has(f.id) {
			out = append(out, entry{c, f.id})
		}
	}
	return out, nil
}

// childrenBlock returns the children of f in f's context together with the
// anchor's spouse entry, which shares the anchor's column.
func (s *Session) childrenBlock(f *Family) []entry {
	var out []entry
	a, hasAnchor := s.anchors[f.id]
	for _, c := range f.Children() {
		if !c.has(f.id) {
			continue
		}
		out = append(out, entry{c, f.id})
		if hasAnchor && a.Child == c && a.Spouse != nil && c.has(a.Spouse.id) {
			idx, _ := columnOf(c, f.id)
			if sp, _ := columnOf(c, a.Spouse.id); sp == idx {
				out = append(out, entry{c, a.Spouse.id})
			}
		}
	}
	return s.withDetached(out)
}

// withDetached adds the entries placed on the column of a head marriage
// that is already in entries, so a detached marriage moves with its head.
func (s *Session) withDetached(entries []entry) []entry {
	if len(s.detached) == 0 {
		return entries
	}
	in := make(map[entry]bool, len(entries))
	for _, e := range entries {
		in[e] = true
	}
	for key, head := range s.detached {
		g := s.individuals[key.ind]
		d := entry{g, key.ctx}
		if g != nil && in[entry{g, head}] && !in[d] {
			entries = append(entries, d)
			in[d] = true
		}
	}
	return entries
}

func span(entries []entry) (lo, hi int, ok bool) {
	for _, e := range entries {
		idx, has := e.index()
		if !has {
			continue
		}
		if !ok {
			lo, hi, ok = idx, idx, true
			continue
		}
		lo = min(lo, idx)
		hi = max(hi, idx)
	}
	return lo, hi, ok
}

// AncestorRange returns the column range covered by the branch of g in
// ctx. Results are cached until the next index mutation.
func (s *Session) AncestorRange(g *Individual, ctx connection.ID) (lo, hi int, err error) {
	key := placeKey{ind: g.id, ctx: ctx}
	if c, ok := s.ranges[key]; ok && c.generation == s.generation {
		return c.lo, c.hi, nil
	}
	entries, err := s.branch(g, ctx)
	if err != nil {
		return 0, 0, err
	}
	lo, hi, _ = span(entries)
	s.ranges[key] = cachedRange{lo: lo, hi: hi, generation: s.generation}
	return lo, hi, nil
}

// ChildrenRange returns the column range of f's visible children.
func (s *Session) ChildrenRange(f *Family) (lo, hi int, ok bool) {
	return span(s.childrenBlock(f))
}

// Width returns the number of columns between the extents, inclusive.
func (s *Session) Width() int {
	if !s.hasIndex {
		return 0
	}
	return s.maxIndex - s.minIndex + 1
}

// movable checks that every entry exists and that no detached entry is
// moved without its head marriage.
func (s *Session) movable(entries []entry) error {
	in := make(map[entry]bool, len(entries))
	for _, e := range entries {
		in[e] = true
	}
	for _, e := range entries {
		if !e.ind.has(e.ctx) {
			return fmt.Errorf("shift %s in %s: %w", e.ind.id, e.ctx, ErrCannotMove)
		}
		if head, ok := s.detached[placeKey{ind: e.ind.id, ctx: e.ctx}]; ok && !in[entry{e.ind, head}] {
			return fmt.Errorf("shift %s in %s without %s: %w", e.ind.id, e.ctx, head, ErrCannotMove)
		}
	}
	return nil
}

// shift moves every entry by delta. Entries are checked first so that a
// failing shift leaves the layout untouched.
func (s *Session) shift(entries []entry, delta int) error {
	if err := s.movable(entries); err != nil {
		return err
	}
	if delta == 0 {
		return nil
	}
	for _, e := range entries {
		if err := e.ind.shift(e.ctx, delta); err != nil {
			return err
		}
	}
	s.generation++
	s.refreshExtents()
	return nil
}

// Normalize shifts every column so that the smallest is zero.
func (s *Session) Normalize() {
	if !s.hasIndex || s.minIndex == 0 {
		return
	}
	delta := -s.minIndex
	for _, g := range s.individuals {
		for i := range g.positions {
			g.positions[i].Index += delta
		}
	}
	s.generation++
	s.refreshExtents()
}

// Snapshot captures every position map.
type Snapshot map[connection.ID][]Position

// Snapshot returns a copy of every position map, used to restore the layout
// when an optimization pass fails.
func (s *Session) Snapshot() Snapshot {
	snap := make(Snapshot, len(s.individuals))
	for id, g := range s.individuals {
		snap[id] = g.Positions()
	}
	return snap
}

// Restore resets every position map to snap.
func (s *Session) Restore(snap Snapshot) {
	for id, g := range s.individuals {
		g.positions = append(g.positions[:0], snap[id]...)
	}
	s.generation++
	s.refreshExtents()
}
