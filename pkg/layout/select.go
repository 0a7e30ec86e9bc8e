package layout

import (
	"errors"

	"github.com/matzehuels/lifelines/pkg/connection"
	lerrors "github.com/matzehuels/lifelines/pkg/errors"
	"github.com/matzehuels/lifelines/pkg/genealogy"
)

// Exclude reports whether an individual must be left out of the chart.
type Exclude func(*genealogy.Individual) bool

// Select discovers the ancestors of the individual rootID up to generations
// levels (negative means unlimited, zero selects nothing) and returns the
// root appearance. Every marriage of the root is added with its spouse
// selected to the same depth. When siblings are enabled, the remaining
// children of every expanded family are added as weak children.
//
// Each domain individual and family gets at most one appearance per
// session; a second discovery path reuses the existing appearance and does
// not descend again.
func (s *Session) Select(rootID string, generations int, exclude Exclude) (*Individual, error) {
	ind, ok := s.store.Individual(rootID)
	if !ok {
		err := s.store.Err(genealogy.KindIndividual, rootID)
		if err == nil || errors.Is(err, genealogy.ErrUnknownEntity) {
			return nil, lerrors.New(lerrors.ErrCodeNotFound, "root %s not found", rootID)
		}
		return nil, lerrors.Wrap(lerrors.ErrCodeMissingData, err, "root %s", rootID)
	}
	root := s.selectIndividual(ind, generations, exclude)
	if root == nil {
		return nil, nil
	}
	for _, fam := range s.store.Marriages(ind) {
		f := s.familyAppearance(fam)
		s.attachSpouse(f, root)
		other, ok := s.store.Individual(fam.Spouse(ind.ID))
		if !ok {
			continue
		}
		if g := s.selectIndividual(other, generations, exclude); g != nil {
			s.attachSpouse(f, g)
		}
	}
	s.roots = append(s.roots, root)
	if s.showSiblings {
		s.addSiblings(exclude)
	}
	s.logger.Debug("selected", "root", rootID, "individuals", len(s.individuals), "families", len(s.families))
	return root, nil
}

func (s *Session) selectIndividual(ind *genealogy.Individual, gen int, exclude Exclude) *Individual {
	if gen == 0 || (exclude != nil && exclude(ind)) {
		return nil
	}
	g, ok := s.indByDomain[ind.ID]
	if !ok {
		g = s.newIndividual(ind)
	}
	if s.descended[ind.ID] {
		return g
	}
	s.descended[ind.ID] = true

	pfID, ok := ind.ParentFamily()
	if !ok {
		return g
	}
	fam, ok := s.store.Family(pfID)
	if !ok {
		return g
	}
	pf := s.familyAppearance(fam)
	if s.conn.Has(pf.id, g.id, connection.TagWeakChild) {
		s.conn.Remove(connection.WeakChild, pf.id, g.id)
	}
	s.conn.Add(connection.StrongChild, pf.id, g.id)

	next := gen - 1
	if gen < 0 {
		next = gen
	}
	if next == 0 || pf.expanded {
		return g
	}
	pf.expanded = true
	husband, wife := s.store.HusbandAndWife(fam)
	for _, parent := range []*genealogy.Individual{husband, wife} {
		if parent == nil {
			continue
		}
		if pg := s.selectIndividual(parent, next, exclude); pg != nil {
			s.attachSpouse(pf, pg)
		}
	}
	return g
}

func (s *Session) attachSpouse(f *Family, g *Individual) {
	switch g.ind.ID {
	case f.fam.Husband:
		s.conn.Add(connection.Husband, f.id, g.id)
	case f.fam.Wife:
		s.conn.Add(connection.Wife, f.id, g.id)
	}
}

func (s *Session) addSiblings(exclude Exclude) {
	for _, f := range s.Families() {
		if !f.expanded {
			continue
		}
		for _, child := range s.store.Children(f.fam) {
			if exclude != nil && exclude(child) {
				continue
			}
			g, ok := s.indByDomain[child.ID]
			if !ok {
				g = s.newIndividual(child)
			}
			if s.conn.Has(f.id, g.id, connection.TagStrongChild) || s.conn.Has(f.id, g.id, connection.TagWeakChild) {
				continue
			}
			if pf, _ := child.ParentFamily(); pf != f.fam.ID {
				continue
			}
			s.conn.Add(connection.WeakChild, f.id, g.id)
		}
	}
}
