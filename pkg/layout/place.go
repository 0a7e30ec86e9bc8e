package layout

import (
	"fmt"

	"github.com/matzehuels/lifelines/pkg/connection"
)

// Place assigns columns to g in the context of its marriage spouse (nil for
// a free-standing individual), starting at column x, and returns the next
// free column.
//
// When g is the anchor of its not yet placed parent family for this
// context, the whole parent block is placed instead: the husband's branch,
// the children in birth order, then the wife's branch, with g sharing one
// column between its parent family and spouse contexts. When g carries its
// parent block through another marriage, that marriage is placed first and
// g keeps its column from there. Each (appearance, context) pair is placed
// at most once; repeated calls return x unchanged.
func (s *Session) Place(g *Individual, spouse *Family, x int) (int, error) {
	if g == nil || s.individuals[g.id] != g {
		return x, ErrNotSelected
	}
	ctx := contextOf(spouse)
	key := placeKey{ind: g.id, ctx: ctx}
	if s.placed[key] {
		return x, nil
	}
	s.placed[key] = true

	pf, err := s.strongParentFamily(g)
	if err != nil {
		return x, err
	}
	if pf != nil && !s.placedFamilies[pf.id] {
		if s.isAnchor(pf, g, ctx) {
			return s.placeBlock(pf, g, spouse, x)
		}
		if a := s.anchors[pf.id]; a.Child == g && a.Spouse != nil && !s.placedFamilies[a.Spouse.id] {
			return s.placeDetached(g, spouse, a.Spouse, x)
		}
	}
	return s.placeSingle(g, spouse, x)
}

// placeDetached handles g reached through a marriage other than head, the
// one through which g carries its parent block. The head marriage is placed
// first, which brings in the parent block and any further marriage chain,
// and g's entry for spouse then continues in the column g got there.
func (s *Session) placeDetached(g *Individual, spouse, head *Family, x int) (int, error) {
	x, err := s.PlaceFamily(head, x)
	if err != nil {
		return x, err
	}
	col, ok := columnOf(g, head.id)
	if !ok {
		return s.placeSingle(g, spouse, x)
	}
	if spouse != nil && g.SetPosition(spouse.id, col, spouse.ordinalFor(g), true) {
		s.detached[placeKey{ind: g.id, ctx: spouse.id}] = head.id
	}
	return x, nil
}

func (s *Session) placeSingle(g *Individual, spouse *Family, x int) (int, error) {
	ctx := contextOf(spouse)
	if spouse == nil {
		if g.Positioned() {
			return x, nil
		}
		g.SetPosition(ctx, x, g.birth(), false)
		return x + 1, nil
	}
	if !g.SetPosition(ctx, x, spouse.ordinalFor(g), true) {
		return x, nil
	}
	return x + 1, nil
}

// PlaceFamily places the block of f starting at column x: the husband's
// branch, the children, then the wife's branch, in the policy's order.
func (s *Session) PlaceFamily(f *Family, x int) (int, error) {
	if s.placedFamilies[f.id] {
		return x, nil
	}
	return s.placeBlock(f, nil, nil, x)
}

func (s *Session) placeBlock(f *Family, anchor *Individual, spouse *Family, x int) (int, error) {
	s.placedFamilies[f.id] = true
	first, second, err := s.orderedSpouses(f)
	if err != nil {
		return x, err
	}
	if first != nil {
		if x, err = s.Place(first, f, x); err != nil {
			return x, err
		}
	}
	birthCtx := f.id
	for _, c := range f.Children() {
		if !c.SetPosition(birthCtx, x, c.birth(), false) {
			continue
		}
		if c == anchor && spouse != nil {
			c.SetPosition(spouse.id, x, spouse.ordinalFor(c), true)
		}
		x++
	}
	if second != nil {
		if x, err = s.Place(second, f, x); err != nil {
			return x, err
		}
	}
	return x, nil
}

// orderedSpouses returns f's spouses in the order the policy lays them out.
func (s *Session) orderedSpouses(f *Family) (first, second *Individual, err error) {
	h, err := f.Husband()
	if err != nil {
		return nil, nil, err
	}
	w, err := f.Wife()
	if err != nil {
		return nil, nil, err
	}
	if s.policy.Order(f) == WifeFirst {
		return w, h, nil
	}
	return h, w, nil
}

// PlaceAll places every root in selection order. A root's marriages are
// placed as family blocks in chronological order; a root without marriages
// is placed on its own. Families still unplaced afterwards are placed to
// the right, and appearances that end up without a column are reported as
// unpositioned.
func (s *Session) PlaceAll() (int, error) {
	x := 0
	var err error
	for _, root := range s.roots {
		marriages := s.marriages(root)
		if len(marriages) == 0 {
			if x, err = s.Place(root, nil, x); err != nil {
				return x, err
			}
			continue
		}
		for _, m := range marriages {
			if x, err = s.PlaceFamily(m, x); err != nil {
				return x, err
			}
		}
	}
	for _, f := range s.Families() {
		if s.placedFamilies[f.id] {
			continue
		}
		if x, err = s.PlaceFamily(f, x); err != nil {
			return x, err
		}
	}
	for _, g := range s.Unpositioned() {
		s.logger.Warn("unpositioned individual", "id", g.id.String(), "name", g.ind.Label())
	}
	return x, nil
}

// Unpositioned returns the appearances without any column, in discovery
// order.
func (s *Session) Unpositioned() []*Individual {
	var out []*Individual
	for _, g := range s.Individuals() {
		if !g.Positioned() {
			out = append(out, g)
		}
	}
	return out
}

// Layout runs anchor resolution and placement for the selected roots.
func (s *Session) Layout() error {
	if err := s.ResolveAnchors(); err != nil {
		return err
	}
	if _, err := s.PlaceAll(); err != nil {
		return fmt.Errorf("place: %w", err)
	}
	return nil
}

func (g *Individual) birth() int {
	b, _ := g.Lifespan()
	return b
}

// columnOf returns the column of g in ctx, or false.
func columnOf(g *Individual, ctx connection.ID) (int, bool) {
	p, ok := g.Position(ctx)
	return p.Index, ok
}
