package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/lifelines/pkg/genealogy"
	"github.com/matzehuels/lifelines/pkg/layout"
)

func testResult() *layout.Result {
	b1950 := genealogy.YearOrdinal(1950)
	d2020 := genealogy.YearOrdinal(2020)
	b1920 := genealogy.YearOrdinal(1920)
	d1990 := genealogy.YearOrdinal(1990)
	m1975 := genealogy.YearOrdinal(1975)
	return &layout.Result{
		Individuals: []layout.IndividualLayout{
			{
				ID: "A", Name: "Albert", Birth: b1950, Death: d2020, Root: true,
				Positions: []layout.PositionLayout{
					{Family: "FCD", Ordinal: b1950, Index: 1},
					{Family: "FAB", Ordinal: m1975, Index: 2, IsParent: true},
				},
				Spans: []layout.SpanLayout{{Index: 1, Start: b1950, End: m1975}, {Index: 2, Start: m1975, End: d2020}},
			},
			{
				ID: "C", Name: "Carl", Birth: b1920, Death: d1990, DeathEstimated: true,
				Positions: []layout.PositionLayout{{Ordinal: b1920, Index: 0}},
				Spans:     []layout.SpanLayout{{Index: 0, Start: b1920, End: d1990}},
			},
			{ID: "X", Unpositioned: true, Birth: b1920, Death: d1990},
		},
		MinIndex: 0, MaxIndex: 2,
		MinOrdinal: b1920, MaxOrdinal: d2020,
		Problems: []int{2},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m tea.Model, keys ...string) tea.Model {
	for _, k := range keys {
		m, _ = m.Update(key(k))
	}
	return m
}

func TestLayoutModelNavigation(t *testing.T) {
	var m tea.Model = NewLayoutModel(testResult())

	m = press(m, "j", "j", "j")
	if got := m.(LayoutModel).Cursor; got != 2 {
		t.Errorf("cursor after 3× down = %d, want 2 (clamped)", got)
	}
	m = press(m, "k")
	if got := m.(LayoutModel).Cursor; got != 1 {
		t.Errorf("cursor after up = %d, want 1", got)
	}
	m = press(m, "g")
	if got := m.(LayoutModel).Cursor; got != 0 {
		t.Errorf("cursor after home = %d, want 0", got)
	}

	m = press(m, "enter")
	if !m.(LayoutModel).Detail {
		t.Fatal("enter should open the detail pane")
	}
	m = press(m, "esc")
	if m.(LayoutModel).Detail {
		t.Error("esc should close the detail pane")
	}

	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Error("q should quit")
	}
}

func TestLayoutModelScroll(t *testing.T) {
	m := NewLayoutModel(testResult())
	m.Height = 1
	var tm tea.Model = m
	tm = press(tm, "j", "j")
	if got := tm.(LayoutModel).Offset; got != 2 {
		t.Errorf("offset = %d, want 2", got)
	}
	tm, _ = tm.Update(tea.WindowSizeMsg{Width: 80, Height: 3})
	if got := tm.(LayoutModel).Height; got != 5 {
		t.Errorf("height = %d, want minimum 5", got)
	}
}

func TestLayoutModelView(t *testing.T) {
	m := NewLayoutModel(testResult())
	view := m.View()
	for _, want := range []string{"Chart Layout", "Albert *", "Carl", "1950–2020", "1920–~1990", "1 → 2"} {
		if !strings.Contains(view, want) {
			t.Errorf("table view missing %q", want)
		}
	}

	m.Detail = true
	view = m.View()
	for _, want := range []string{"appearance 0", "FCD", "FAB", "spouse", "1975-01-01"} {
		if !strings.Contains(view, want) {
			t.Errorf("detail view missing %q", want)
		}
	}

	m.Cursor = 2
	if !strings.Contains(m.View(), "not positioned") {
		t.Error("detail of an unpositioned appearance should say so")
	}
}

func TestLayoutModelEmpty(t *testing.T) {
	m := NewLayoutModel(&layout.Result{})
	var tm tea.Model = m
	tm = press(tm, "j", "enter", "G")
	if tm.(LayoutModel).Detail || tm.(LayoutModel).Cursor != 0 {
		t.Errorf("empty model changed state: %+v", tm)
	}
	if !strings.Contains(tm.View(), "empty layout") {
		t.Error("empty view should say so")
	}
}

func TestColumnList(t *testing.T) {
	ind := layout.IndividualLayout{Spans: []layout.SpanLayout{{Index: 3}, {Index: 3}, {Index: 1}}}
	if got := columnList(ind); got != "3 → 1" {
		t.Errorf("columnList() = %q, want %q", got, "3 → 1")
	}
}
