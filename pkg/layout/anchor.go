package layout

import (
	"cmp"
	"slices"

	"github.com/matzehuels/lifelines/pkg/connection"
)

// ResolveAnchors asks the policy for the anchor of every family appearance
// with strong children and records it as a strong-marriage relation. It must
// run after selection and before placement; calling it again replaces
// earlier decisions.
func (s *Session) ResolveAnchors() error {
	for _, a := range s.anchors {
		if a.Spouse != nil {
			s.conn.Remove(connection.StrongMarriage, a.Child.id, a.Spouse.id)
		}
	}
	clear(s.anchors)

	for _, f := range s.Families() {
		candidates := s.candidates(f)
		if len(candidates) == 0 {
			continue
		}
		a := s.policy.Anchor(f, candidates)
		if a.Child == nil {
			continue
		}
		s.anchors[f.id] = a
		if a.Spouse != nil {
			s.conn.Add(connection.StrongMarriage, a.Child.id, a.Spouse.id)
		}
	}
	s.generation++
	if err := s.conn.Validate(); err != nil {
		return consistencyError(err, "resolve anchors")
	}
	return nil
}

func (s *Session) candidates(f *Family) []Candidate {
	var out []Candidate
	for _, id := range s.conn.Counterparts(f.id, connection.TagStrongChild) {
		g, ok := s.individuals[id]
		if !ok {
			continue
		}
		out = append(out, Candidate{Child: g, Marriages: s.marriages(g)})
	}
	slices.SortStableFunc(out, func(a, b Candidate) int {
		ab, _ := a.Child.Lifespan()
		bb, _ := b.Child.Lifespan()
		if c := cmp.Compare(ab, bb); c != 0 {
			return c
		}
		return cmp.Compare(a.Child.id.Occurrence, b.Child.id.Occurrence)
	})
	return out
}

// isAnchor reports whether g entering spouse context ctx carries f's block.
func (s *Session) isAnchor(f *Family, g *Individual, ctx connection.ID) bool {
	a, ok := s.anchors[f.id]
	if !ok || a.Child != g {
		return false
	}
	return contextOf(a.Spouse) == ctx
}

func contextOf(f *Family) connection.ID {
	if f == nil {
		return connection.ID{}
	}
	return f.id
}
