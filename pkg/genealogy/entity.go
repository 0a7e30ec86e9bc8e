package genealogy

// Kind distinguishes the two entity types held by a [Store].
type Kind int

const (
	// KindIndividual identifies a person.
	KindIndividual Kind = iota
	// KindFamily identifies a marriage or partnership with its children.
	KindFamily
)

// String returns "individual" or "family".
func (k Kind) String() string {
	if k == KindFamily {
		return "family"
	}
	return "individual"
}

// Entity is implemented by [*Individual] and [*Family].
type Entity interface {
	EntityID() string
	EntityKind() Kind
}

// Individual is an immutable-after-load person.
//
// Birth and Death are never nil for individuals returned by a [Store] built
// with the default constructor: people without a usable date range are
// excluded from charts.
type Individual struct {
	ID             string
	Name           string
	Birth          *Date
	Death          *Date
	ParentFamilies []string // ordered as recorded; only the first is used for charts
	Marriages      []string // ordered by marriage date once loaded through a Store
}

// EntityID returns the individual's identifier.
func (i *Individual) EntityID() string { return i.ID }

// EntityKind returns [KindIndividual].
func (i *Individual) EntityKind() Kind { return KindIndividual }

// BirthOrdinal returns the birth ordinal and whether it is known.
func (i *Individual) BirthOrdinal() (int, bool) {
	if i.Birth == nil {
		return 0, false
	}
	return i.Birth.Ordinal, true
}

// DeathOrdinal returns the death ordinal and whether it is known.
func (i *Individual) DeathOrdinal() (int, bool) {
	if i.Death == nil {
		return 0, false
	}
	return i.Death.Ordinal, true
}

// Lifespan returns the birth and death ordinals. It is only meaningful for
// individuals that passed construction, which guarantees both dates.
func (i *Individual) Lifespan() (birth, death int) {
	if i.Birth != nil {
		birth = i.Birth.Ordinal
	}
	if i.Death != nil {
		death = i.Death.Ordinal
	}
	return birth, death
}

// ParentFamily returns the first recorded parent family. Multiple
// simultaneous parent families (adoption, fostering) are not modeled.
func (i *Individual) ParentFamily() (string, bool) {
	if len(i.ParentFamilies) == 0 {
		return "", false
	}
	return i.ParentFamilies[0], true
}

// Label returns the display name, falling back to the identifier.
func (i *Individual) Label() string {
	if i.Name != "" {
		return i.Name
	}
	return i.ID
}

// Family is an immutable-after-load marriage record.
type Family struct {
	ID       string
	Husband  string // empty when unknown
	Wife     string // empty when unknown
	Children []string
	Marriage *Date
}

// EntityID returns the family's identifier.
func (f *Family) EntityID() string { return f.ID }

// EntityKind returns [KindFamily].
func (f *Family) EntityKind() Kind { return KindFamily }

// MarriageOrdinal returns the marriage ordinal and whether it is known.
func (f *Family) MarriageOrdinal() (int, bool) {
	if f.Marriage == nil {
		return 0, false
	}
	return f.Marriage.Ordinal, true
}

// Spouse returns the partner of id in this family, or "" if id is not a
// spouse or the partner is unknown.
func (f *Family) Spouse(id string) string {
	switch id {
	case f.Husband:
		return f.Wife
	case f.Wife:
		return f.Husband
	}
	return ""
}
