package layout

import (
	"cmp"
	"io"
	"slices"

	"github.com/charmbracelet/log"
)

// Anchor names the child through which a parent family's block is attached
// to the rest of the chart, and the marriage of that child it shares a
// column with. Spouse is nil when the child is drawn free-standing.
type Anchor struct {
	Child  *Individual
	Spouse *Family
}

// Candidate is a strong child of a family offered to a [Policy], together
// with its visible marriages in chronological order.
type Candidate struct {
	Child     *Individual
	Marriages []*Family
}

// Qualified reports whether the candidate has a visible marriage.
func (c Candidate) Qualified() bool { return len(c.Marriages) > 0 }

// Order selects which spouse branch is laid out on the low-index side of a
// family block.
type Order int

const (
	HusbandFirst Order = iota
	WifeFirst
)

// Policy decides anchors and branch order. Candidates are ordered eldest
// first and never empty.
type Policy interface {
	Anchor(f *Family, candidates []Candidate) Anchor
	Order(f *Family) Order
}

// DefaultPolicy anchors on the eldest qualified child's first marriage and
// puts the husband's branch first. When no child qualifies, the eldest child
// is anchored free-standing.
type DefaultPolicy struct {
	WifeFirst bool
}

// Anchor implements [Policy].
func (p DefaultPolicy) Anchor(_ *Family, candidates []Candidate) Anchor {
	for _, c := range candidates {
		if c.Qualified() {
			return Anchor{Child: c.Child, Spouse: c.Marriages[0]}
		}
	}
	return Anchor{Child: candidates[0].Child}
}

// Order implements [Policy].
func (p DefaultPolicy) Order(*Family) Order {
	if p.WifeFirst {
		return WifeFirst
	}
	return HusbandFirst
}

// Override pins the anchor of one parent family, by domain identifiers.
type Override struct {
	SpouseFamily string `json:"spouse_family" toml:"spouse_family" yaml:"spouse_family"`
	Individual   string `json:"individual" toml:"individual" yaml:"individual"`
}

// OverridePolicy applies per-family overrides keyed by parent family domain
// ID. An override naming a child or marriage that is not a qualified
// candidate is ignored with a warning and Fallback decides instead.
type OverridePolicy struct {
	Overrides map[string]Override
	Fallback  Policy
	Logger    *log.Logger
}

// NewOverridePolicy returns an override policy falling back to fallback, or
// to [DefaultPolicy] when fallback is nil.
func NewOverridePolicy(overrides map[string]Override, fallback Policy, logger *log.Logger) *OverridePolicy {
	if fallback == nil {
		fallback = DefaultPolicy{}
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &OverridePolicy{Overrides: overrides, Fallback: fallback, Logger: logger}
}

// Anchor implements [Policy].
func (p *OverridePolicy) Anchor(f *Family, candidates []Candidate) Anchor {
	o, ok := p.Overrides[f.Entity().ID]
	if !ok {
		return p.Fallback.Anchor(f, candidates)
	}
	for _, c := range candidates {
		if c.Child.Entity().ID != o.Individual {
			continue
		}
		for _, m := range c.Marriages {
			if m.Entity().ID == o.SpouseFamily {
				return Anchor{Child: c.Child, Spouse: m}
			}
		}
	}
	p.Logger.Warn("ignoring anchor override", "family", f.Entity().ID,
		"individual", o.Individual, "spouse_family", o.SpouseFamily)
	return p.Fallback.Anchor(f, candidates)
}

// Order implements [Policy].
func (p *OverridePolicy) Order(f *Family) Order { return p.Fallback.Order(f) }

var (
	_ Policy = DefaultPolicy{}
	_ Policy = (*OverridePolicy)(nil)
)

func sortFamilies(fams []*Family) {
	slices.SortStableFunc(fams, func(a, b *Family) int {
		if c := cmp.Compare(a.SortOrdinal(), b.SortOrdinal()); c != 0 {
			return c
		}
		return cmp.Compare(a.id.Occurrence, b.id.Occurrence)
	})
}
