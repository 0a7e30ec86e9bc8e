package layout

import (
	"cmp"
	"slices"

	"github.com/matzehuels/lifelines/pkg/connection"
	"github.com/matzehuels/lifelines/pkg/genealogy"
)

// Family is one appearance of a family in a chart. Spouses and children are
// not stored on the family: they are resolved through the session's
// connection graph.
type Family struct {
	id       connection.ID
	fam      *genealogy.Family
	session  *Session
	expanded bool
}

// ID returns the appearance identifier.
func (f *Family) ID() connection.ID { return f.id }

// Entity returns the domain family.
func (f *Family) Entity() *genealogy.Family { return f.fam }

// DeadEnd reports whether discovery stopped at this family: it marks the
// parent family of an individual at the generation limit and carries no
// spouse appearances.
func (f *Family) DeadEnd() bool { return !f.expanded }

// Husband returns the husband appearance, or nil.
func (f *Family) Husband() (*Individual, error) {
	return f.session.spouse(f, f.session.conn.Husband)
}

// Wife returns the wife appearance, or nil.
func (f *Family) Wife() (*Individual, error) {
	return f.session.spouse(f, f.session.conn.Wife)
}

// Children returns the visible children ordered by birth, ties broken by
// discovery order.
func (f *Family) Children() []*Individual {
	ids := f.session.conn.Children(f.id)
	kids := make([]*Individual, 0, len(ids))
	for _, id := range ids {
		if g, ok := f.session.individuals[id]; ok {
			kids = append(kids, g)
		}
	}
	slices.SortStableFunc(kids, func(a, b *Individual) int {
		ab, _ := a.Lifespan()
		bb, _ := b.Lifespan()
		if c := cmp.Compare(ab, bb); c != 0 {
			return c
		}
		return cmp.Compare(a.id.Occurrence, b.id.Occurrence)
	})
	return kids
}

// SortOrdinal returns the time at which spouses join this family: the
// marriage date, else the first visible child's birth, else the later
// spouse's birth plus the default marriage age.
func (f *Family) SortOrdinal() int {
	if ord, ok := f.fam.MarriageOrdinal(); ok {
		return ord
	}
	if kids := f.Children(); len(kids) > 0 {
		b, _ := kids[0].Lifespan()
		return b
	}
	latest := 0
	for _, id := range []string{f.fam.Husband, f.fam.Wife} {
		if ind, ok := f.session.store.Individual(id); ok {
			if b, ok := ind.BirthOrdinal(); ok && b > latest {
				latest = b
			}
		}
	}
	return genealogy.AddYears(latest, genealogy.DefaultMarriageAge)
}

// ordinalFor clamps the family's sort ordinal into g's lifespan.
func (f *Family) ordinalFor(g *Individual) int {
	birth, death := g.Lifespan()
	return min(max(f.SortOrdinal(), birth), death)
}
