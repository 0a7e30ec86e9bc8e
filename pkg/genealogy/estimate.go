package genealogy

import "time"

// Estimation defaults, in years.
const (
	DefaultLifespan      = 70
	DefaultMarriageAge   = 25
	DefaultParentAge     = 30
	DefaultMarriageToKid = 1
)

// Estimator fills missing dates of a freshly loaded entity. It is the
// date-estimation collaborator of the store; estimated dates are marked with
// [Date.Estimated].
type Estimator interface {
	EstimateIndividual(ind *Individual, p Provider)
	EstimateFamily(fam *Family, p Provider)
}

// SimpleEstimator derives missing dates from nearby facts using fixed ages.
//
// A missing birth is taken from, in order: the earliest marriage minus
// MarriageAge, the earliest child's birth minus ParentAge, the death minus
// Lifespan. A missing death is the birth plus Lifespan, capped at Today for
// people who may still be alive. A missing marriage date is the first child's
// birth minus one year.
type SimpleEstimator struct {
	Lifespan    int // years
	MarriageAge int // years
	ParentAge   int // years
	Today       int // ordinal; zero means the current date
}

// NewSimpleEstimator returns an estimator with the default ages.
func NewSimpleEstimator() *SimpleEstimator {
	return &SimpleEstimator{
		Lifespan:    DefaultLifespan,
		MarriageAge: DefaultMarriageAge,
		ParentAge:   DefaultParentAge,
	}
}

func (e *SimpleEstimator) today() int {
	if e.Today != 0 {
		return e.Today
	}
	now := time.Now().UTC()
	return Ordinal(now.Year(), now.Month(), now.Day())
}

// EstimateIndividual fills Birth and Death where possible.
func (e *SimpleEstimator) EstimateIndividual(ind *Individual, p Provider) {
	if ind.Birth == nil {
		if ord, ok := e.birthFromFamilies(ind, p); ok {
			ind.Birth = &Date{Ordinal: ord, Estimated: true}
		} else if ind.Death != nil {
			ind.Birth = &Date{Ordinal: AddYears(ind.Death.Ordinal, -e.Lifespan), Estimated: true}
		}
	}
	if ind.Death == nil && ind.Birth != nil {
		death := AddYears(ind.Birth.Ordinal, e.Lifespan)
		if today := e.today(); death > today && ind.Birth.Ordinal < today {
			death = today
		}
		ind.Death = &Date{Ordinal: death, Estimated: true}
	}
}

func (e *SimpleEstimator) birthFromFamilies(ind *Individual, p Provider) (int, bool) {
	best, found := 0, false
	consider := func(ord int) {
		if !found || ord < best {
			best, found = ord, true
		}
	}
	for _, fid := range ind.Marriages {
		fam, ok := p.FamilyRecord(fid)
		if !ok {
			continue
		}
		if fam.Marriage != nil {
			consider(AddYears(fam.Marriage.Ordinal, -e.MarriageAge))
		}
		for _, cid := range fam.Children {
			if child, ok := p.IndividualRecord(cid); ok && child.Birth != nil {
				consider(AddYears(child.Birth.Ordinal, -e.ParentAge))
			}
		}
	}
	return best, found
}

// EstimateFamily fills a missing marriage date from the first child's birth.
func (e *SimpleEstimator) EstimateFamily(fam *Family, p Provider) {
	if fam.Marriage != nil {
		return
	}
	first, found := 0, false
	for _, cid := range fam.Children {
		child, ok := p.IndividualRecord(cid)
		if !ok || child.Birth == nil {
			continue
		}
		if !found || child.Birth.Ordinal < first {
			first, found = child.Birth.Ordinal, true
		}
	}
	if found {
		fam.Marriage = &Date{Ordinal: AddYears(first, -DefaultMarriageToKid), Estimated: true}
	}
}
