package layout

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lifelines/pkg/connection"
	"github.com/matzehuels/lifelines/pkg/genealogy"
)

// DefaultMinDistance is the vertical gap, in days, kept between two life
// lines sharing a column.
const DefaultMinDistance = 365

// Session owns the graphical layer of one chart: the appearances created by
// selection, the connection graph linking them, and the caches used by
// placement and the optimizers.
//
// A session is not safe for concurrent use.
type Session struct {
	store  *genealogy.Store
	conn   *connection.Graph
	policy Policy
	logger *log.Logger

	showSiblings bool
	minDistance  int

	occurrences int
	individuals map[connection.ID]*Individual
	families    map[connection.ID]*Family
	indByDomain map[string]*Individual
	famByDomain map[string]*Family
	discovery   []connection.ID
	descended   map[string]bool
	roots       []*Individual

	anchors        map[connection.ID]Anchor
	placed         map[placeKey]bool
	placedFamilies map[connection.ID]bool
	detached       map[placeKey]connection.ID

	minIndex, maxIndex     int
	minOrdinal, maxOrdinal int
	hasIndex, hasOrdinal   bool

	// generation is bumped by every index mutation; a cached range is only
	// valid for the generation it was computed at.
	generation uint64
	ranges     map[placeKey]cachedRange
}

type placeKey struct {
	ind connection.ID
	ctx connection.ID
}

type cachedRange struct {
	lo, hi     int
	generation uint64
}

// Option configures a [Session].
type Option func(*Session)

// WithPolicy sets the anchor and branch-order policy. The default is
// [DefaultPolicy].
func WithPolicy(p Policy) Option { return func(s *Session) { s.policy = p } }

// WithLogger sets the session logger. Nil discards output.
func WithLogger(l *log.Logger) Option { return func(s *Session) { s.logger = l } }

// WithSiblings controls whether siblings of expanded ancestor families are
// added as weak children. Enabled by default.
func WithSiblings(show bool) Option { return func(s *Session) { s.showSiblings = show } }

// WithMinDistance sets the padding, in days, applied to life lines during
// collision checks.
func WithMinDistance(days int) Option { return func(s *Session) { s.minDistance = max(days, 0) } }

// NewSession creates an empty session over store. The session clears itself
// when the store is cleared.
func NewSession(store *genealogy.Store, opts ...Option) *Session {
	s := &Session{
		store:        store,
		conn:         connection.New(),
		policy:       DefaultPolicy{},
		showSiblings: true,
		minDistance:  DefaultMinDistance,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.policy == nil {
		s.policy = DefaultPolicy{}
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	s.reset()
	store.OnClear(s.Reset)
	return s
}

// Configure applies opts to an existing session and resets it, so one
// session can follow a changing chart configuration.
func (s *Session) Configure(opts ...Option) {
	for _, opt := range opts {
		opt(s)
	}
	if s.policy == nil {
		s.policy = DefaultPolicy{}
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	s.Reset()
}

// Reset drops every appearance, connection and cache.
func (s *Session) Reset() {
	s.conn.Clear()
	s.reset()
}

func (s *Session) reset() {
	s.occurrences = 0
	s.individuals = make(map[connection.ID]*Individual)
	s.families = make(map[connection.ID]*Family)
	s.indByDomain = make(map[string]*Individual)
	s.famByDomain = make(map[string]*Family)
	s.discovery = nil
	s.descended = make(map[string]bool)
	s.roots = nil
	s.anchors = make(map[connection.ID]Anchor)
	s.placed = make(map[placeKey]bool)
	s.placedFamilies = make(map[connection.ID]bool)
	s.detached = make(map[placeKey]connection.ID)
	s.hasIndex, s.hasOrdinal = false, false
	s.minIndex, s.maxIndex, s.minOrdinal, s.maxOrdinal = 0, 0, 0, 0
	s.generation++
	s.ranges = make(map[placeKey]cachedRange)
}

// Store returns the entity store.
func (s *Session) Store() *genealogy.Store { return s.store }

// Connections returns the connection graph.
func (s *Session) Connections() *connection.Graph { return s.conn }

// Logger returns the session logger.
func (s *Session) Logger() *log.Logger { return s.logger }

// MinDistance returns the collision padding in days.
func (s *Session) MinDistance() int { return s.minDistance }

// Roots returns the selected root appearances in selection order.
func (s *Session) Roots() []*Individual { return append([]*Individual(nil), s.roots...) }

// Individuals returns all individual appearances in discovery order.
func (s *Session) Individuals() []*Individual {
	out := make([]*Individual, 0, len(s.individuals))
	for _, id := range s.discovery {
		if g, ok := s.individuals[id]; ok {
			out = append(out, g)
		}
	}
	return out
}

// Families returns all family appearances in discovery order.
func (s *Session) Families() []*Family {
	out := make([]*Family, 0, len(s.families))
	for _, id := range s.discovery {
		if f, ok := s.families[id]; ok {
			out = append(out, f)
		}
	}
	return out
}

// Individual returns the appearance of the domain individual id.
func (s *Session) Individual(id string) (*Individual, bool) {
	g, ok := s.indByDomain[id]
	return g, ok
}

// Family returns the appearance of the domain family id.
func (s *Session) Family(id string) (*Family, bool) {
	f, ok := s.famByDomain[id]
	return f, ok
}

// Anchor returns the anchor recorded for a family appearance.
func (s *Session) Anchor(f *Family) (Anchor, bool) {
	a, ok := s.anchors[f.id]
	return a, ok
}

// Extents returns the smallest and largest column in use.
func (s *Session) Extents() (lo, hi int) { return s.minIndex, s.maxIndex }

// TimeExtents returns the earliest birth and latest death of the placed
// appearances.
func (s *Session) TimeExtents() (lo, hi int) { return s.minOrdinal, s.maxOrdinal }

func (s *Session) newIndividual(ind *genealogy.Individual) *Individual {
	s.occurrences++
	g := &Individual{
		id:      connection.ID{Occurrence: s.occurrences, DomainID: ind.ID},
		ind:     ind,
		session: s,
	}
	s.individuals[g.id] = g
	s.indByDomain[ind.ID] = g
	s.discovery = append(s.discovery, g.id)
	return g
}

func (s *Session) familyAppearance(fam *genealogy.Family) *Family {
	if f, ok := s.famByDomain[fam.ID]; ok {
		return f
	}
	s.occurrences++
	f := &Family{
		id:      connection.ID{Occurrence: s.occurrences, DomainID: fam.ID},
		fam:     fam,
		session: s,
	}
	s.families[f.id] = f
	s.famByDomain[fam.ID] = f
	s.discovery = append(s.discovery, f.id)
	return f
}

func (s *Session) spouse(f *Family, lookup func(connection.ID) (connection.ID, bool, error)) (*Individual, error) {
	id, ok, err := lookup(f.id)
	if err != nil {
		return nil, consistencyError(err, "spouse of %s", f.id)
	}
	if !ok {
		return nil, nil
	}
	return s.individuals[id], nil
}

func (s *Session) strongParentFamily(g *Individual) (*Family, error) {
	id, ok, err := s.conn.StrongParentFamily(g.id)
	if err != nil {
		return nil, consistencyError(err, "parent family of %s", g.id)
	}
	if !ok {
		return nil, nil
	}
	return s.families[id], nil
}

// marriages returns the family appearances g is a spouse in, ordered by
// their sort ordinal.
func (s *Session) marriages(g *Individual) []*Family {
	ids := s.conn.Marriages(g.id)
	out := make([]*Family, 0, len(ids))
	for _, id := range ids {
		if f, ok := s.families[id]; ok {
			out = append(out, f)
		}
	}
	sortFamilies(out)
	return out
}

// observe records a new column and the lifespan of its occupant.
func (s *Session) observe(g *Individual, index int) {
	s.generation++
	if !s.hasIndex {
		s.minIndex, s.maxIndex, s.hasIndex = index, index, true
	} else {
		s.minIndex = min(s.minIndex, index)
		s.maxIndex = max(s.maxIndex, index)
	}
	birth, death := g.Lifespan()
	if !s.hasOrdinal {
		s.minOrdinal, s.maxOrdinal, s.hasOrdinal = birth, death, true
	} else {
		s.minOrdinal = min(s.minOrdinal, birth)
		s.maxOrdinal = max(s.maxOrdinal, death)
	}
}

// refreshExtents recomputes the column extents after shifts.
func (s *Session) refreshExtents() {
	s.hasIndex = false
	for _, g := range s.individuals {
		for _, p := range g.positions {
			if !s.hasIndex {
				s.minIndex, s.maxIndex, s.hasIndex = p.Index, p.Index, true
				continue
			}
			s.minIndex = min(s.minIndex, p.Index)
			s.maxIndex = max(s.maxIndex, p.Index)
		}
	}
	if !s.hasIndex {
		s.minIndex, s.maxIndex = 0, 0
	}
}
