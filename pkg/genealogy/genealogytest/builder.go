// Package genealogytest provides a compact builder for family trees used in
// tests across the layout packages.
package genealogytest

import (
	"time"

	"github.com/matzehuels/lifelines/pkg/genealogy"
)

// Today is the fixed "current date" of stores built by [Builder.Store], so
// estimated deaths of living people do not depend on the wall clock.
var Today = genealogy.Ordinal(2026, time.January, 1)

// Builder accumulates individual and family records. Years of 0 mean unknown.
type Builder struct {
	p *genealogy.MemoryProvider
}

// New returns an empty builder.
func New() *Builder {
	return &Builder{p: genealogy.NewMemoryProvider()}
}

// Person adds an individual born and deceased in the given years.
func (b *Builder) Person(id string, birth, death int) *Builder {
	b.p.AddIndividual(genealogy.IndividualRecord{
		ID:    id,
		Name:  id,
		Birth: yearDate(birth),
		Death: yearDate(death),
	})
	return b
}

// Family adds a family married in the given year with the listed children.
func (b *Builder) Family(id, husband, wife string, married int, children ...string) *Builder {
	b.p.AddFamily(genealogy.FamilyRecord{
		ID:       id,
		Husband:  husband,
		Wife:     wife,
		Children: children,
		Marriage: yearDate(married),
	})
	return b
}

// Provider links the records and returns the provider.
func (b *Builder) Provider() *genealogy.MemoryProvider {
	b.p.Link()
	return b.p
}

// Store links the records and returns a store whose estimator uses [Today].
func (b *Builder) Store(opts ...genealogy.StoreOption) *genealogy.Store {
	est := genealogy.NewSimpleEstimator()
	est.Today = Today
	all := append([]genealogy.StoreOption{genealogy.WithEstimator(est)}, opts...)
	return genealogy.NewStore(b.Provider(), all...)
}

func yearDate(year int) *genealogy.Date {
	if year == 0 {
		return nil
	}
	return &genealogy.Date{Ordinal: genealogy.YearOrdinal(year)}
}
