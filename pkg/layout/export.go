package layout

import "github.com/matzehuels/lifelines/pkg/connection"

// Result is the serializable outcome of a layout: one record per appearance
// with its position map, the family connectors, the extents on both axes,
// and the columns flagged by consistency checks.
type Result struct {
	Individuals []IndividualLayout `json:"individuals"`
	Families    []FamilyLayout     `json:"families"`
	MinIndex    int                `json:"min_index"`
	MaxIndex    int                `json:"max_index"`
	MinOrdinal  int                `json:"min_ordinal"`
	MaxOrdinal  int                `json:"max_ordinal"`
	Problems    []int              `json:"problems,omitempty"`
	Flip        *OptimizeStats     `json:"flip,omitempty"`
	Compress    *OptimizeStats     `json:"compress,omitempty"`
}

// IndividualLayout is the exported form of an [Individual].
type IndividualLayout struct {
	ID             string           `json:"id"`
	Occurrence     int              `json:"occurrence"`
	Name           string           `json:"name"`
	Birth          int              `json:"birth"`
	Death          int              `json:"death"`
	BirthEstimated bool             `json:"birth_estimated,omitempty"`
	DeathEstimated bool             `json:"death_estimated,omitempty"`
	Root           bool             `json:"root,omitempty"`
	Unpositioned   bool             `json:"unpositioned,omitempty"`
	Positions      []PositionLayout `json:"positions,omitempty"`
	Spans          []SpanLayout     `json:"spans,omitempty"`
}

// PositionLayout is one exported position-map entry. Family is empty for a
// free-standing entry.
type PositionLayout struct {
	Family   string `json:"family,omitempty"`
	Ordinal  int    `json:"ordinal"`
	Index    int    `json:"index"`
	IsParent bool   `json:"is_parent,omitempty"`
}

// SpanLayout is one exported life-line span.
type SpanLayout struct {
	Index int `json:"index"`
	Start int `json:"start"`
	End   int `json:"end"`
}

// FamilyLayout describes the connectors of one family appearance.
type FamilyLayout struct {
	ID         string         `json:"id"`
	Occurrence int            `json:"occurrence"`
	Ordinal    int            `json:"ordinal"`
	Husband    *MemberLayout  `json:"husband,omitempty"`
	Wife       *MemberLayout  `json:"wife,omitempty"`
	Children   []MemberLayout `json:"children,omitempty"`
	DeadEnd    bool           `json:"dead_end,omitempty"`
}

// MemberLayout places one family member: its column in the family context
// and the ordinal at which the connector attaches.
type MemberLayout struct {
	ID      string `json:"id"`
	Index   int    `json:"index"`
	Ordinal int    `json:"ordinal"`
	Strong  bool   `json:"strong,omitempty"`
}

// Width returns the number of columns.
func (r *Result) Width() int {
	if len(r.Individuals) == 0 {
		return 0
	}
	return r.MaxIndex - r.MinIndex + 1
}

// Individual returns the layout record of the domain individual id.
func (r *Result) Individual(id string) (IndividualLayout, bool) {
	for _, ind := range r.Individuals {
		if ind.ID == id {
			return ind, true
		}
	}
	return IndividualLayout{}, false
}

// Export builds the serializable result from the current positions.
func (s *Session) Export() *Result {
	r := &Result{
		MinIndex:   s.minIndex,
		MaxIndex:   s.maxIndex,
		MinOrdinal: s.minOrdinal,
		MaxOrdinal: s.maxOrdinal,
	}
	roots := make(map[*Individual]bool, len(s.roots))
	for _, g := range s.roots {
		roots[g] = true
	}
	for _, g := range s.Individuals() {
		birth, death := g.Lifespan()
		il := IndividualLayout{
			ID:             g.ind.ID,
			Occurrence:     g.id.Occurrence,
			Name:           g.ind.Label(),
			Birth:          birth,
			Death:          death,
			BirthEstimated: g.ind.Birth != nil && g.ind.Birth.Estimated,
			DeathEstimated: g.ind.Death != nil && g.ind.Death.Estimated,
			Root:           roots[g],
			Unpositioned:   !g.Positioned(),
		}
		for _, p := range g.positions {
			il.Positions = append(il.Positions, PositionLayout{
				Family: p.Context.DomainID, Ordinal: p.Ordinal, Index: p.Index, IsParent: p.IsParent,
			})
		}
		for _, sp := range g.Spans() {
			il.Spans = append(il.Spans, SpanLayout{Index: sp.Index, Start: sp.Start, End: sp.End})
		}
		r.Individuals = append(r.Individuals, il)
	}
	for _, f := range s.Families() {
		fl := FamilyLayout{
			ID:         f.fam.ID,
			Occurrence: f.id.Occurrence,
			Ordinal:    f.SortOrdinal(),
			DeadEnd:    f.DeadEnd(),
		}
		h, _ := f.Husband()
		w, _ := f.Wife()
		fl.Husband = s.member(h, f)
		fl.Wife = s.member(w, f)
		for _, c := range f.Children() {
			if m := s.member(c, f); m != nil {
				fl.Children = append(fl.Children, *m)
			}
		}
		if fl.Husband == nil && fl.Wife == nil && len(fl.Children) == 0 {
			continue
		}
		r.Families = append(r.Families, fl)
	}
	return r
}

func (s *Session) member(g *Individual, f *Family) *MemberLayout {
	if g == nil {
		return nil
	}
	p, ok := g.Position(f.id)
	if !ok {
		return nil
	}
	return &MemberLayout{
		ID:      g.ind.ID,
		Index:   p.Index,
		Ordinal: p.Ordinal,
		Strong:  s.conn.Has(f.id, g.id, connection.TagStrongChild),
	}
}
