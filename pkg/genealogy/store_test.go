package genealogy

import (
	"errors"
	"testing"
)

func year(y int) *Date { return &Date{Ordinal: YearOrdinal(y)} }

func sampleProvider() *MemoryProvider {
	p := NewMemoryProvider()
	p.AddIndividual(IndividualRecord{ID: "F", Birth: year(1900), Death: year(1970)})
	p.AddIndividual(IndividualRecord{ID: "M", Birth: year(1905)})
	p.AddIndividual(IndividualRecord{ID: "C1", Birth: year(1932), Death: year(2000)})
	p.AddIndividual(IndividualRecord{ID: "C2", Birth: year(1930), Death: year(1990)})
	p.AddIndividual(IndividualRecord{ID: "X"})
	p.AddFamily(FamilyRecord{ID: "FAM", Husband: "F", Wife: "M", Children: []string{"C1", "C2", "X"}})
	p.AddFamily(FamilyRecord{ID: "LATE", Husband: "F", Marriage: year(1960)})
	p.AddFamily(FamilyRecord{ID: "EARLY", Husband: "F", Marriage: year(1920)})
	p.Link()
	return p
}

func newTestStore(p Provider, opts ...StoreOption) *Store {
	est := NewSimpleEstimator()
	est.Today = Ordinal(2026, 1, 1)
	return NewStore(p, append([]StoreOption{WithEstimator(est)}, opts...)...)
}

func TestStoreMemoizes(t *testing.T) {
	calls := 0
	s := newTestStore(sampleProvider(), WithConstructor(func(s *Store, kind Kind, id string) (Entity, error) {
		calls++
		return DefaultConstructor(s, kind, id)
	}))

	a, ok := s.Individual("F")
	if !ok {
		t.Fatal("Individual(F) not found")
	}
	b, _ := s.Individual("F")
	if a != b {
		t.Error("Individual(F) returned different instances")
	}
	if calls != 1 {
		t.Errorf("constructor calls = %d, want 1", calls)
	}
}

func TestStoreMemoizesAbsent(t *testing.T) {
	calls := 0
	s := newTestStore(sampleProvider(), WithConstructor(func(s *Store, kind Kind, id string) (Entity, error) {
		calls++
		return DefaultConstructor(s, kind, id)
	}))

	for i := 0; i < 3; i++ {
		if _, ok := s.Individual("X"); ok {
			t.Fatal("Individual(X) should be absent: no dates at all")
		}
	}
	if calls != 1 {
		t.Errorf("constructor calls = %d, want 1 (absent slots are not retried)", calls)
	}
	if err := s.Err(KindIndividual, "X"); !errors.Is(err, ErrNotEnoughInformation) {
		t.Errorf("Err(X) = %v, want ErrNotEnoughInformation", err)
	}
}

func TestStoreUnknown(t *testing.T) {
	s := newTestStore(sampleProvider())
	if _, ok := s.Family("NOPE"); ok {
		t.Error("Family(NOPE) should be absent")
	}
	if err := s.Err(KindFamily, "NOPE"); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("Err(NOPE) = %v, want ErrUnknownEntity", err)
	}
}

func TestStoreEstimatesDeath(t *testing.T) {
	s := newTestStore(sampleProvider())
	m, ok := s.Individual("M")
	if !ok {
		t.Fatal("Individual(M) not found")
	}
	if !m.Death.Estimated {
		t.Error("M death should be estimated")
	}
	if got, want := m.Death.Year(), 1905+DefaultLifespan; got != want {
		t.Errorf("M death year = %d, want %d", got, want)
	}
}

func TestStoreChildrenByBirth(t *testing.T) {
	s := newTestStore(sampleProvider())
	fam, _ := s.Family("FAM")
	kids := s.Children(fam)
	if len(kids) != 2 {
		t.Fatalf("Children = %d, want 2 (X is not drawable)", len(kids))
	}
	if kids[0].ID != "C2" || kids[1].ID != "C1" {
		t.Errorf("Children order = %s,%s, want C2,C1", kids[0].ID, kids[1].ID)
	}
}

func TestStoreMarriagesByDate(t *testing.T) {
	s := newTestStore(sampleProvider())
	f, _ := s.Individual("F")
	var ids []string
	for _, m := range s.Marriages(f) {
		ids = append(ids, m.ID)
	}
	want := []string{"EARLY", "FAM", "LATE"}
	if len(ids) != len(want) {
		t.Fatalf("Marriages = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("Marriages = %v, want %v", ids, want)
			break
		}
	}
}

func TestStoreFamilyMarriageEstimate(t *testing.T) {
	s := newTestStore(sampleProvider())
	fam, _ := s.Family("FAM")
	ord, ok := fam.MarriageOrdinal()
	if !ok || !fam.Marriage.Estimated {
		t.Fatal("FAM marriage should be estimated from the first child")
	}
	if got := OrdinalYear(ord); got != 1929 {
		t.Errorf("estimated marriage year = %d, want 1929", got)
	}
}

func TestStoreInstantiateAllAndClear(t *testing.T) {
	s := newTestStore(sampleProvider())
	loaded, excluded := s.InstantiateAll()
	if loaded != 7 || excluded != 1 {
		t.Errorf("InstantiateAll = (%d, %d), want (7, 1)", loaded, excluded)
	}

	cleared := false
	s.OnClear(func() { cleared = true })
	s.Clear()
	if !cleared {
		t.Error("Clear did not run hooks")
	}
	if s.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", s.Len())
	}
}

func TestSimpleEstimatorBirthFromMarriage(t *testing.T) {
	p := NewMemoryProvider()
	p.AddIndividual(IndividualRecord{ID: "H"})
	p.AddFamily(FamilyRecord{ID: "M1", Husband: "H", Marriage: year(1900)})
	p.Link()

	s := newTestStore(p)
	h, ok := s.Individual("H")
	if !ok {
		t.Fatal("H should be drawable after estimation")
	}
	if got, want := h.Birth.Year(), 1900-DefaultMarriageAge; got != want {
		t.Errorf("estimated birth year = %d, want %d", got, want)
	}
}

func TestSimpleEstimatorCapsLiving(t *testing.T) {
	p := NewMemoryProvider()
	p.AddIndividual(IndividualRecord{ID: "Y", Birth: year(2000)})
	s := newTestStore(p)
	y, _ := s.Individual("Y")
	if got := y.Death.Year(); got != 2026 {
		t.Errorf("living person's death year = %d, want 2026", got)
	}
}
