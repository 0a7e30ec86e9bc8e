package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	lerrors "github.com/matzehuels/lifelines/pkg/errors"
	"github.com/matzehuels/lifelines/pkg/genealogy"
)

// tree is the document form of a family tree.
type tree struct {
	Individuals []individual `json:"individuals" yaml:"individuals"`
	Families    []family     `json:"families" yaml:"families"`
}

type individual struct {
	ID             string   `json:"id" yaml:"id"`
	Name           string   `json:"name,omitempty" yaml:"name,omitempty"`
	Birth          string   `json:"birth,omitempty" yaml:"birth,omitempty"`
	Death          string   `json:"death,omitempty" yaml:"death,omitempty"`
	ParentFamilies []string `json:"parent_families,omitempty" yaml:"parent_families,omitempty"`
	Marriages      []string `json:"marriages,omitempty" yaml:"marriages,omitempty"`
}

type family struct {
	ID       string   `json:"id" yaml:"id"`
	Husband  string   `json:"husband,omitempty" yaml:"husband,omitempty"`
	Wife     string   `json:"wife,omitempty" yaml:"wife,omitempty"`
	Children []string `json:"children,omitempty" yaml:"children,omitempty"`
	Marriage string   `json:"marriage,omitempty" yaml:"marriage,omitempty"`
}

// ReadTree decodes a JSON family tree from r into a provider.
//
// The input is an object with "individuals" and "families" arrays:
//
//	{
//	  "individuals": [{"id": "I1", "name": "Anna", "birth": "1900-03-02", "death": "1970"}],
//	  "families": [{"id": "F1", "husband": "I2", "wife": "I1", "marriage": "1921", "children": ["I3"]}]
//	}
//
// Dates are "YYYY", "YYYY-MM" or "YYYY-MM-DD", optionally qualified with
// "ABT" or "~". Parent families and marriages of individuals are derived
// from the family records when omitted.
//
// ReadTree returns an error if the document is malformed, an identifier is
// invalid or duplicated, or a date cannot be parsed. References to unknown
// individuals or families are kept; the store reports them when the chart
// asks for them.
func ReadTree(r io.Reader) (*genealogy.MemoryProvider, error) {
	var data tree
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&data); err != nil {
		return nil, lerrors.Wrap(lerrors.ErrCodeInvalidFormat, err, "decode tree")
	}
	return buildProvider(data)
}

// ReadTreeYAML decodes a YAML family tree with the same fields as [ReadTree].
func ReadTreeYAML(r io.Reader) (*genealogy.MemoryProvider, error) {
	var data tree
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&data); err != nil {
		return nil, lerrors.Wrap(lerrors.ErrCodeInvalidFormat, err, "decode tree")
	}
	return buildProvider(data)
}

// ImportTree reads a family tree file. Files ending in .yaml or .yml are
// decoded as YAML, everything else as JSON.
func ImportTree(path string) (*genealogy.MemoryProvider, error) {
	if err := lerrors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, lerrors.Wrap(lerrors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ReadTreeYAML(f)
	default:
		return ReadTree(f)
	}
}

func buildProvider(data tree) (*genealogy.MemoryProvider, error) {
	p := genealogy.NewMemoryProvider()
	seen := make(map[string]bool, len(data.Individuals)+len(data.Families))

	for _, n := range data.Individuals {
		if err := checkID(n.ID, seen); err != nil {
			return nil, fmt.Errorf("individual: %w", err)
		}
		rec := genealogy.IndividualRecord{
			ID:             n.ID,
			Name:           n.Name,
			ParentFamilies: n.ParentFamilies,
			Marriages:      n.Marriages,
		}
		var err error
		if rec.Birth, err = parseDate(n.Birth); err != nil {
			return nil, lerrors.Wrap(lerrors.ErrCodeInvalidFormat, err, "individual %s: birth", n.ID)
		}
		if rec.Death, err = parseDate(n.Death); err != nil {
			return nil, lerrors.Wrap(lerrors.ErrCodeInvalidFormat, err, "individual %s: death", n.ID)
		}
		p.AddIndividual(rec)
	}

	for _, f := range data.Families {
		if err := checkID(f.ID, seen); err != nil {
			return nil, fmt.Errorf("family: %w", err)
		}
		rec := genealogy.FamilyRecord{
			ID:       f.ID,
			Husband:  f.Husband,
			Wife:     f.Wife,
			Children: f.Children,
		}
		var err error
		if rec.Marriage, err = parseDate(f.Marriage); err != nil {
			return nil, lerrors.Wrap(lerrors.ErrCodeInvalidFormat, err, "family %s: marriage", f.ID)
		}
		p.AddFamily(rec)
	}

	p.Link()
	return p, nil
}

// Individuals and families share one identifier namespace.
func checkID(id string, seen map[string]bool) error {
	if err := lerrors.ValidateID(id); err != nil {
		return err
	}
	if seen[id] {
		return lerrors.New(lerrors.ErrCodeInvalidInput, "duplicate identifier %q", id)
	}
	seen[id] = true
	return nil
}

func parseDate(s string) (*genealogy.Date, error) {
	if s == "" {
		return nil, nil
	}
	d, err := genealogy.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// WriteTree encodes the records of p as a JSON family tree that [ReadTree]
// reads back unchanged.
func WriteTree(p genealogy.Provider, w io.Writer) error {
	var out tree
	for _, id := range p.IndividualIDs() {
		r, ok := p.IndividualRecord(id)
		if !ok {
			continue
		}
		out.Individuals = append(out.Individuals, individual{
			ID:             r.ID,
			Name:           r.Name,
			Birth:          formatDate(r.Birth),
			Death:          formatDate(r.Death),
			ParentFamilies: r.ParentFamilies,
			Marriages:      r.Marriages,
		})
	}
	for _, id := range p.FamilyIDs() {
		r, ok := p.FamilyRecord(id)
		if !ok {
			continue
		}
		out.Families = append(out.Families, family{
			ID:       r.ID,
			Husband:  r.Husband,
			Wife:     r.Wife,
			Children: r.Children,
			Marriage: formatDate(r.Marriage),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func formatDate(d *genealogy.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}
