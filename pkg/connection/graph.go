package connection

import (
	"errors"
	"fmt"
	"slices"
)

// ErrPlacementConsistency is returned by cardinality-checked accessors when a
// tag that may appear at most once per appearance appears more than once.
// It indicates a defect in selection or placement, not bad input data.
var ErrPlacementConsistency = errors.New("placement consistency violated")

// Tag labels one direction of a relationship.
type Tag string

// Tags recorded on family appearances.
const (
	TagWeakChild    Tag = "weak_child"
	TagStrongChild  Tag = "strong_child"
	TagGrHusb       Tag = "gr_husb"
	TagGrWife       Tag = "gr_wife"
	TagStrongSpouse Tag = "strong_spouse"
)

// Tags recorded on individual appearances.
const (
	TagWeakParentFamily   Tag = "weak_parent_family"
	TagStrongParentFamily Tag = "strong_parent_family"
	TagMarriage           Tag = "marriage"
	TagStrongMarriage     Tag = "strong_marriage"
)

// Relation pairs the tag stored on the source with the tag stored on the
// target of an edge.
type Relation struct {
	Forward  Tag
	Backward Tag
}

// Relations between a family appearance (source) and an individual
// appearance (target), except StrongMarriage which runs from an individual
// to the family it anchors through.
var (
	WeakChild      = Relation{Forward: TagWeakChild, Backward: TagWeakParentFamily}
	StrongChild    = Relation{Forward: TagStrongChild, Backward: TagStrongParentFamily}
	Husband        = Relation{Forward: TagGrHusb, Backward: TagMarriage}
	Wife           = Relation{Forward: TagGrWife, Backward: TagMarriage}
	StrongMarriage = Relation{Forward: TagStrongMarriage, Backward: TagStrongSpouse}
)

// ID identifies one graphical appearance: the n-th appearance of a domain
// entity in a chart. Occurrence numbers are unique per chart, so IDs of
// individuals and families never clash.
type ID struct {
	Occurrence int
	DomainID   string
}

// String formats the ID as "occurrence:domainID".
func (id ID) String() string { return fmt.Sprintf("%d:%s", id.Occurrence, id.DomainID) }

// IsZero reports whether id is the zero ID.
func (id ID) IsZero() bool { return id == ID{} }

type adjacency struct {
	order []ID
	tags  map[ID][]Tag
}

// Graph is the typed adjacency structure. The zero value is not usable;
// create graphs with [New].
type Graph struct {
	adj   map[ID]*adjacency
	edges int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{adj: make(map[ID]*adjacency)}
}

// Add records rel between from and to in both directions. Adding the same
// relation twice is a no-op.
func (g *Graph) Add(rel Relation, from, to ID) {
	if g.appendTag(from, to, rel.Forward) {
		g.edges++
	}
	g.appendTag(to, from, rel.Backward)
}

// Remove deletes rel between from and to in both directions.
func (g *Graph) Remove(rel Relation, from, to ID) {
	if g.removeTag(from, to, rel.Forward) {
		g.edges--
	}
	g.removeTag(to, from, rel.Backward)
}

func (g *Graph) appendTag(from, to ID, tag Tag) bool {
	a, ok := g.adj[from]
	if !ok {
		a = &adjacency{tags: make(map[ID][]Tag)}
		g.adj[from] = a
	}
	tags, seen := a.tags[to]
	if slices.Contains(tags, tag) {
		return false
	}
	if !seen {
		a.order = append(a.order, to)
	}
	a.tags[to] = append(tags, tag)
	return true
}

func (g *Graph) removeTag(from, to ID, tag Tag) bool {
	a, ok := g.adj[from]
	if !ok {
		return false
	}
	tags := a.tags[to]
	i := slices.Index(tags, tag)
	if i < 0 {
		return false
	}
	tags = slices.Delete(tags, i, i+1)
	if len(tags) == 0 {
		delete(a.tags, to)
		a.order = slices.DeleteFunc(a.order, func(x ID) bool { return x == to })
		return true
	}
	a.tags[to] = tags
	return true
}

// Query returns every counterpart of id with the tags on id's side. The
// returned map is a copy.
func (g *Graph) Query(id ID) map[ID][]Tag {
	a, ok := g.adj[id]
	if !ok {
		return map[ID][]Tag{}
	}
	out := make(map[ID][]Tag, len(a.tags))
	for k, v := range a.tags {
		out[k] = slices.Clone(v)
	}
	return out
}

// Counterparts returns the counterparts of id carrying tag, in the order the
// connections were added.
func (g *Graph) Counterparts(id ID, tag Tag) []ID {
	a, ok := g.adj[id]
	if !ok {
		return nil
	}
	var out []ID
	for _, c := range a.order {
		if slices.Contains(a.tags[c], tag) {
			out = append(out, c)
		}
	}
	return out
}

// Has reports whether id carries tag towards other.
func (g *Graph) Has(id, other ID, tag Tag) bool {
	a, ok := g.adj[id]
	if !ok {
		return false
	}
	return slices.Contains(a.tags[other], tag)
}

// Single returns the unique counterpart of id carrying tag. It returns false
// when there is none and ErrPlacementConsistency when there is more than one.
func (g *Graph) Single(id ID, tag Tag) (ID, bool, error) {
	cs := g.Counterparts(id, tag)
	switch len(cs) {
	case 0:
		return ID{}, false, nil
	case 1:
		return cs[0], true, nil
	}
	return ID{}, false, fmt.Errorf("%s has %d %s connections: %w", id, len(cs), tag, ErrPlacementConsistency)
}

// StrongParentFamily returns the family appearance id descends from strongly.
func (g *Graph) StrongParentFamily(id ID) (ID, bool, error) {
	return g.Single(id, TagStrongParentFamily)
}

// StrongMarriage returns the family appearance id anchors its ancestors through.
func (g *Graph) StrongMarriage(id ID) (ID, bool, error) {
	return g.Single(id, TagStrongMarriage)
}

// Husband returns the husband appearance of a family appearance.
func (g *Graph) Husband(fam ID) (ID, bool, error) { return g.Single(fam, TagGrHusb) }

// Wife returns the wife appearance of a family appearance.
func (g *Graph) Wife(fam ID) (ID, bool, error) { return g.Single(fam, TagGrWife) }

// Children returns strong and weak children of a family appearance in the
// order they were connected.
func (g *Graph) Children(fam ID) []ID {
	a, ok := g.adj[fam]
	if !ok {
		return nil
	}
	var out []ID
	for _, c := range a.order {
		tags := a.tags[c]
		if slices.Contains(tags, TagStrongChild) || slices.Contains(tags, TagWeakChild) {
			out = append(out, c)
		}
	}
	return out
}

// Marriages returns the family appearances id is a spouse in.
func (g *Graph) Marriages(id ID) []ID { return g.Counterparts(id, TagMarriage) }

// Validate checks the cardinality invariants for every appearance and returns
// the first violation found.
func (g *Graph) Validate() error {
	for _, id := range g.IDs() {
		for _, tag := range []Tag{TagStrongParentFamily, TagStrongMarriage, TagGrHusb, TagGrWife} {
			if _, _, err := g.Single(id, tag); err != nil {
				return err
			}
		}
	}
	return nil
}

// IDs returns every ID with at least one connection, sorted by occurrence.
func (g *Graph) IDs() []ID {
	ids := make([]ID, 0, len(g.adj))
	for id := range g.adj {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b ID) int { return a.Occurrence - b.Occurrence })
	return ids
}

// EdgeCount returns the number of recorded relations.
func (g *Graph) EdgeCount() int { return g.edges }

// Clear empties the graph.
func (g *Graph) Clear() {
	g.adj = make(map[ID]*adjacency)
	g.edges = 0
}
