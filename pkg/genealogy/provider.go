package genealogy

// IndividualRecord is the raw, unestimated data a [Provider] holds for a person.
type IndividualRecord struct {
	ID             string
	Name           string
	Birth          *Date
	Death          *Date
	ParentFamilies []string
	Marriages      []string
}

// FamilyRecord is the raw data a [Provider] holds for a family.
type FamilyRecord struct {
	ID       string
	Husband  string
	Wife     string
	Children []string
	Marriage *Date
}

// Provider is the external data source behind a [Store].
//
// Implementations return records in a stable order so chart discovery is
// deterministic.
type Provider interface {
	IndividualIDs() []string
	FamilyIDs() []string
	IndividualRecord(id string) (IndividualRecord, bool)
	FamilyRecord(id string) (FamilyRecord, bool)
}
