package genealogy

import "slices"

// MemoryProvider is an in-memory [Provider]. Records keep insertion order.
type MemoryProvider struct {
	individuals map[string]IndividualRecord
	families    map[string]FamilyRecord
	indOrder    []string
	famOrder    []string
}

// NewMemoryProvider creates an empty provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		individuals: make(map[string]IndividualRecord),
		families:    make(map[string]FamilyRecord),
	}
}

// AddIndividual adds or replaces an individual record.
func (m *MemoryProvider) AddIndividual(r IndividualRecord) {
	if _, ok := m.individuals[r.ID]; !ok {
		m.indOrder = append(m.indOrder, r.ID)
	}
	m.individuals[r.ID] = r
}

// AddFamily adds or replaces a family record.
func (m *MemoryProvider) AddFamily(r FamilyRecord) {
	if _, ok := m.families[r.ID]; !ok {
		m.famOrder = append(m.famOrder, r.ID)
	}
	m.families[r.ID] = r
}

// Link fills parent-family and marriage lists of individual records from the
// family records, for sources that only record relationships on families.
// Existing entries are kept and never duplicated.
func (m *MemoryProvider) Link() {
	for _, fid := range m.famOrder {
		f := m.families[fid]
		for _, spouse := range []string{f.Husband, f.Wife} {
			if r, ok := m.individuals[spouse]; ok && !slices.Contains(r.Marriages, fid) {
				r.Marriages = append(r.Marriages, fid)
				m.individuals[spouse] = r
			}
		}
		for _, cid := range f.Children {
			if r, ok := m.individuals[cid]; ok && !slices.Contains(r.ParentFamilies, fid) {
				r.ParentFamilies = append(r.ParentFamilies, fid)
				m.individuals[cid] = r
			}
		}
	}
}

// IndividualIDs returns all individual identifiers in insertion order.
func (m *MemoryProvider) IndividualIDs() []string { return slices.Clone(m.indOrder) }

// FamilyIDs returns all family identifiers in insertion order.
func (m *MemoryProvider) FamilyIDs() []string { return slices.Clone(m.famOrder) }

// IndividualRecord returns the record for id.
func (m *MemoryProvider) IndividualRecord(id string) (IndividualRecord, bool) {
	r, ok := m.individuals[id]
	return r, ok
}

// FamilyRecord returns the record for id.
func (m *MemoryProvider) FamilyRecord(id string) (FamilyRecord, bool) {
	r, ok := m.families[id]
	return r, ok
}

var _ Provider = (*MemoryProvider)(nil)
