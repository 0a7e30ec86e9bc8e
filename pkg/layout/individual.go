package layout

import (
	"fmt"
	"slices"

	"github.com/matzehuels/lifelines/pkg/connection"
	"github.com/matzehuels/lifelines/pkg/genealogy"
)

// Position is one entry of an appearance's position map.
//
// Context is the family appearance the entry belongs to, or the zero ID for
// a free-standing individual. Ordinal is the sort key (birth for the parent
// family, marriage for a spouse family) and Index the column on the index
// axis. IsParent marks entries where the individual appears as a spouse.
type Position struct {
	Context  connection.ID
	Ordinal  int
	Index    int
	IsParent bool
}

// Individual is one appearance of a person in a chart.
//
// Its position map is kept sorted by [Position.Ordinal]; entries with equal
// ordinals keep insertion order. The life line starts at birth in the first
// entry's column and moves to the next entry's column at that entry's
// ordinal.
type Individual struct {
	id        connection.ID
	ind       *genealogy.Individual
	session   *Session
	positions []Position
}

// ID returns the appearance identifier.
func (g *Individual) ID() connection.ID { return g.id }

// Entity returns the domain individual.
func (g *Individual) Entity() *genealogy.Individual { return g.ind }

// Lifespan returns the birth and death ordinals.
func (g *Individual) Lifespan() (birth, death int) { return g.ind.Lifespan() }

// SetPosition inserts an entry for ctx unless one already exists; the first
// writer owns a context and later calls are no-ops. It reports whether the
// entry was inserted.
func (g *Individual) SetPosition(ctx connection.ID, index, ordinal int, isParent bool) bool {
	if g.has(ctx) {
		return false
	}
	p := Position{Context: ctx, Ordinal: ordinal, Index: index, IsParent: isParent}
	i, _ := slices.BinarySearchFunc(g.positions, ordinal, func(e Position, ord int) int {
		if e.Ordinal <= ord {
			return -1
		}
		return 1
	})
	g.positions = slices.Insert(g.positions, i, p)
	if g.session != nil {
		g.session.observe(g, index)
	}
	return true
}

func (g *Individual) has(ctx connection.ID) bool {
	return slices.ContainsFunc(g.positions, func(p Position) bool { return p.Context == ctx })
}

// Positions returns a copy of the position map in sort order.
func (g *Individual) Positions() []Position { return slices.Clone(g.positions) }

// Position returns the entry for ctx.
func (g *Individual) Position(ctx connection.ID) (Position, bool) {
	for _, p := range g.positions {
		if p.Context == ctx {
			return p, true
		}
	}
	return Position{}, false
}

// Index returns the column for ctx or [ErrUnknownContext].
func (g *Individual) Index(ctx connection.ID) (int, error) {
	p, ok := g.Position(ctx)
	if !ok {
		return 0, fmt.Errorf("%s in %s: %w", g.id, ctx, ErrUnknownContext)
	}
	return p.Index, nil
}

// Positioned reports whether the appearance has at least one entry.
// Unpositioned appearances are skipped by renderers.
func (g *Individual) Positioned() bool { return len(g.positions) > 0 }

// shift moves the entry for ctx by delta columns.
func (g *Individual) shift(ctx connection.ID, delta int) error {
	for i := range g.positions {
		if g.positions[i].Context == ctx {
			g.positions[i].Index += delta
			return nil
		}
	}
	return fmt.Errorf("%s in %s: %w", g.id, ctx, ErrCannotMove)
}

// Span is the part of a life line drawn in one column.
type Span struct {
	Context connection.ID
	Index   int
	Start   int
	End     int
}

// Spans returns the column spans of the life line. Consecutive entries in
// the same column are merged.
func (g *Individual) Spans() []Span {
	if len(g.positions) == 0 {
		return nil
	}
	birth, death := g.Lifespan()
	spans := make([]Span, 0, len(g.positions))
	for i, p := range g.positions {
		start := birth
		if i > 0 {
			start = p.Ordinal
		}
		end := death
		if i+1 < len(g.positions) {
			end = g.positions[i+1].Ordinal
		}
		start = min(max(start, birth), death)
		end = min(max(end, start), death)
		if n := len(spans); n > 0 && spans[n-1].Index == p.Index {
			spans[n-1].End = end
			continue
		}
		spans = append(spans, Span{Context: p.Context, Index: p.Index, Start: start, End: end})
	}
	return spans
}
