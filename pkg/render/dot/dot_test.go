package dot

import (
	"strings"
	"testing"

	"github.com/matzehuels/lifelines/pkg/connection"
)

func sample() (*connection.Graph, connection.ID, connection.ID, connection.ID) {
	fam := connection.ID{Occurrence: 1, DomainID: "F1"}
	husb := connection.ID{Occurrence: 2, DomainID: "I1"}
	child := connection.ID{Occurrence: 3, DomainID: "I2"}
	g := connection.New()
	g.Add(connection.Husband, fam, husb)
	g.Add(connection.StrongChild, fam, child)
	return g, fam, husb, child
}

func TestToDOT(t *testing.T) {
	g, _, _, _ := sample()
	dot := ToDOT(g, Options{})

	for _, want := range []string{
		"digraph G",
		`"1:F1" [label="F1", shape=ellipse`,
		`"2:I1" [label="I1"]`,
		`"1:F1" -> "2:I1" [label="gr_husb"`,
		`"1:F1" -> "3:I2" [label="strong_child", penwidth=2]`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() output missing %q:\n%s", want, dot)
		}
	}
	// Backward tags describe the same relation and are not drawn.
	if strings.Contains(dot, "marriage") || strings.Contains(dot, "parent_family") {
		t.Errorf("ToDOT() drew a backward tag:\n%s", dot)
	}
}

func TestToDOTLabels(t *testing.T) {
	g, _, husb, _ := sample()
	dot := ToDOT(g, Options{
		Label: func(id connection.ID) string {
			if id == husb {
				return "Karl"
			}
			return ""
		},
		Detailed: true,
	})
	if !strings.Contains(dot, `label="Karl\n#2 I1"`) {
		t.Errorf("custom detailed label missing:\n%s", dot)
	}
	if !strings.Contains(dot, `label="F1\n#1 F1"`) {
		t.Errorf("fallback label missing:\n%s", dot)
	}
}

func TestToDOTStrongMarriage(t *testing.T) {
	g, _, _, child := sample()
	other := connection.ID{Occurrence: 4, DomainID: "F2"}
	g.Add(connection.Wife, other, child)
	g.Add(connection.StrongMarriage, child, other)

	dot := ToDOT(g, Options{})
	if !strings.Contains(dot, `"3:I2" -> "4:F2" [label="strong_marriage"`) {
		t.Errorf("anchor edge missing:\n%s", dot)
	}
	if strings.Contains(dot, `"3:I2" [label="I2", shape=ellipse`) {
		t.Error("individual drawn as family")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.00 50.00" width="100" height="50"`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}

	plain := []byte(`<svg><g/></svg>`)
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("svg without viewBox should be unchanged")
	}
}
