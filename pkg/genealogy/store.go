package genealogy

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"
)

var (
	// ErrNotEnoughInformation is returned by constructors when an entity lacks
	// the data needed to draw it, e.g. an individual without any usable date
	// even after estimation. The store memoizes such entities as absent.
	ErrNotEnoughInformation = errors.New("not enough information")

	// ErrUnknownEntity is returned by constructors when the provider has no
	// record for the requested identifier.
	ErrUnknownEntity = errors.New("unknown entity")
)

// Constructor builds the domain object for (kind, id). It may consult the
// store to resolve related entities.
type Constructor func(s *Store, kind Kind, id string) (Entity, error)

type storeKey struct {
	kind Kind
	id   string
}

// slot is a memoized construction result; a nil entity marks an absent slot.
type slot struct {
	entity Entity
	err    error
}

// Store is the lazy, memoized entity registry. The zero value is not usable;
// create stores with [NewStore].
type Store struct {
	provider  Provider
	estimator Estimator
	construct Constructor
	logger    *log.Logger
	slots     map[storeKey]slot
	onClear   []func()
}

// StoreOption configures a [Store].
type StoreOption func(*Store)

// WithConstructor replaces the default constructor.
func WithConstructor(c Constructor) StoreOption { return func(s *Store) { s.construct = c } }

// WithEstimator replaces the default [SimpleEstimator]. A nil estimator
// disables estimation.
func WithEstimator(e Estimator) StoreOption { return func(s *Store) { s.estimator = e } }

// WithLogger sets the logger used for low-severity exclusion messages.
func WithLogger(l *log.Logger) StoreOption { return func(s *Store) { s.logger = l } }

// NewStore creates a store backed by p.
func NewStore(p Provider, opts ...StoreOption) *Store {
	s := &Store{
		provider:  p,
		estimator: NewSimpleEstimator(),
		construct: DefaultConstructor,
		slots:     make(map[storeKey]slot),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return s
}

// Provider returns the underlying data provider.
func (s *Store) Provider() Provider { return s.provider }

// Get returns the singleton entity for (kind, id), constructing it on first
// access. The second result is false when the entity is absent, either
// because it is unknown or because construction failed; failures are
// memoized and never retried.
func (s *Store) Get(kind Kind, id string) (Entity, bool) {
	key := storeKey{kind, id}
	if sl, ok := s.slots[key]; ok {
		return sl.entity, sl.entity != nil
	}
	e, err := s.construct(s, kind, id)
	if err != nil {
		s.logger.Debug("entity excluded", "kind", kind, "id", id, "reason", err)
		s.slots[key] = slot{err: err}
		return nil, false
	}
	s.slots[key] = slot{entity: e}
	return e, true
}

// Err returns the memoized construction error for (kind, id), if any.
func (s *Store) Err(kind Kind, id string) error {
	return s.slots[storeKey{kind, id}].err
}

// Individual returns the individual with the given id.
func (s *Store) Individual(id string) (*Individual, bool) {
	if id == "" {
		return nil, false
	}
	e, ok := s.Get(KindIndividual, id)
	if !ok {
		return nil, false
	}
	ind, ok := e.(*Individual)
	return ind, ok
}

// Family returns the family with the given id.
func (s *Store) Family(id string) (*Family, bool) {
	if id == "" {
		return nil, false
	}
	e, ok := s.Get(KindFamily, id)
	if !ok {
		return nil, false
	}
	fam, ok := e.(*Family)
	return fam, ok
}

// HusbandAndWife returns the drawable spouses of f; either may be nil.
func (s *Store) HusbandAndWife(f *Family) (husband, wife *Individual) {
	husband, _ = s.Individual(f.Husband)
	wife, _ = s.Individual(f.Wife)
	return husband, wife
}

// Children returns the drawable children of f ordered by birth. Children
// with equal birth dates keep their recorded order.
func (s *Store) Children(f *Family) []*Individual {
	kids := make([]*Individual, 0, len(f.Children))
	for _, id := range f.Children {
		if c, ok := s.Individual(id); ok {
			kids = append(kids, c)
		}
	}
	slices.SortStableFunc(kids, func(a, b *Individual) int {
		ab, _ := a.BirthOrdinal()
		bb, _ := b.BirthOrdinal()
		return cmp.Compare(ab, bb)
	})
	return kids
}

// ParentFamilies returns the loadable parent families of ind.
func (s *Store) ParentFamilies(ind *Individual) []*Family {
	var fams []*Family
	for _, id := range ind.ParentFamilies {
		if f, ok := s.Family(id); ok {
			fams = append(fams, f)
		}
	}
	return fams
}

// Marriages returns the loadable marriages of ind ordered by marriage date.
// Marriages without a date sort last in recorded order.
func (s *Store) Marriages(ind *Individual) []*Family {
	var fams []*Family
	for _, id := range ind.Marriages {
		if f, ok := s.Family(id); ok {
			fams = append(fams, f)
		}
	}
	slices.SortStableFunc(fams, compareMarriage)
	return fams
}

func compareMarriage(a, b *Family) int {
	ao, aok := a.MarriageOrdinal()
	bo, bok := b.MarriageOrdinal()
	switch {
	case aok && bok:
		return cmp.Compare(ao, bo)
	case aok:
		return -1
	case bok:
		return 1
	}
	return 0
}

// InstantiateAll eagerly constructs every entity the provider knows about.
// Construction failures are swallowed (and memoized); the counts of loaded
// and excluded entities are returned.
func (s *Store) InstantiateAll() (loaded, excluded int) {
	for _, id := range s.provider.IndividualIDs() {
		if _, ok := s.Get(KindIndividual, id); ok {
			loaded++
		} else {
			excluded++
		}
	}
	for _, id := range s.provider.FamilyIDs() {
		if _, ok := s.Get(KindFamily, id); ok {
			loaded++
		} else {
			excluded++
		}
	}
	return loaded, excluded
}

// Len returns the number of memoized slots, absent ones included.
func (s *Store) Len() int { return len(s.slots) }

// OnClear registers fn to run whenever the store is cleared. Charts use it to
// drop their connection graph and derived caches together with the store.
func (s *Store) OnClear(fn func()) { s.onClear = append(s.onClear, fn) }

// Clear empties the store and runs the registered clear hooks.
func (s *Store) Clear() {
	s.slots = make(map[storeKey]slot)
	for _, fn := range s.onClear {
		fn()
	}
}

// DefaultConstructor loads records from the store's provider and fills
// missing dates with the store's estimator.
func DefaultConstructor(s *Store, kind Kind, id string) (Entity, error) {
	switch kind {
	case KindIndividual:
		return s.newIndividual(id)
	case KindFamily:
		return s.newFamily(id)
	}
	return nil, fmt.Errorf("kind %d: %w", kind, ErrUnknownEntity)
}

func (s *Store) newIndividual(id string) (*Individual, error) {
	rec, ok := s.provider.IndividualRecord(id)
	if !ok {
		return nil, fmt.Errorf("individual %s: %w", id, ErrUnknownEntity)
	}
	ind := &Individual{
		ID:             rec.ID,
		Name:           rec.Name,
		Birth:          cloneDate(rec.Birth),
		Death:          cloneDate(rec.Death),
		ParentFamilies: slices.Clone(rec.ParentFamilies),
		Marriages:      slices.Clone(rec.Marriages),
	}
	if s.estimator != nil {
		s.estimator.EstimateIndividual(ind, s.provider)
	}
	if ind.Birth == nil || ind.Death == nil {
		return nil, fmt.Errorf("individual %s: %w", id, ErrNotEnoughInformation)
	}
	if ind.Death.Ordinal < ind.Birth.Ordinal {
		return nil, fmt.Errorf("individual %s: death before birth: %w", id, ErrNotEnoughInformation)
	}
	return ind, nil
}

func (s *Store) newFamily(id string) (*Family, error) {
	rec, ok := s.provider.FamilyRecord(id)
	if !ok {
		return nil, fmt.Errorf("family %s: %w", id, ErrUnknownEntity)
	}
	fam := &Family{
		ID:       rec.ID,
		Husband:  rec.Husband,
		Wife:     rec.Wife,
		Children: slices.Clone(rec.Children),
		Marriage: cloneDate(rec.Marriage),
	}
	if s.estimator != nil {
		s.estimator.EstimateFamily(fam, s.provider)
	}
	return fam, nil
}

func cloneDate(d *Date) *Date {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}
