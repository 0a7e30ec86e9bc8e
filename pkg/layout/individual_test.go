package layout

import (
	"errors"
	"testing"

	"github.com/matzehuels/lifelines/pkg/connection"
	"github.com/matzehuels/lifelines/pkg/genealogy"
)

func detached(birth, death int) *Individual {
	return &Individual{
		id: connection.ID{Occurrence: 1, DomainID: "I"},
		ind: &genealogy.Individual{
			ID:    "I",
			Birth: &genealogy.Date{Ordinal: birth},
			Death: &genealogy.Date{Ordinal: death},
		},
	}
}

func ctx(n int) connection.ID { return connection.ID{Occurrence: n + 100, DomainID: "F"} }

func TestSetPositionOrdering(t *testing.T) {
	g := detached(0, 1000)
	g.SetPosition(ctx(1), 5, 300, true)
	g.SetPosition(ctx(2), 3, 100, false)
	g.SetPosition(ctx(3), 7, 300, true)
	g.SetPosition(ctx(4), 1, 200, true)

	var got []connection.ID
	for _, p := range g.Positions() {
		got = append(got, p.Context)
	}
	want := []connection.ID{ctx(2), ctx(4), ctx(1), ctx(3)}
	if len(got) != len(want) {
		t.Fatalf("positions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSetPositionFirstWriteWins(t *testing.T) {
	g := detached(0, 1000)
	if !g.SetPosition(ctx(1), 5, 100, false) {
		t.Fatal("first SetPosition() = false")
	}
	if g.SetPosition(ctx(1), 9, 50, true) {
		t.Error("second SetPosition() = true, want false")
	}
	if idx, err := g.Index(ctx(1)); err != nil || idx != 5 {
		t.Errorf("Index() = %d, %v, want 5", idx, err)
	}
	if len(g.Positions()) != 1 {
		t.Errorf("len(Positions()) = %d, want 1", len(g.Positions()))
	}
}

func TestIndexUnknownContext(t *testing.T) {
	g := detached(0, 1000)
	if g.Positioned() {
		t.Error("Positioned() = true for empty map")
	}
	if _, err := g.Index(ctx(1)); !errors.Is(err, ErrUnknownContext) {
		t.Errorf("Index() error = %v, want ErrUnknownContext", err)
	}
	if err := g.shift(ctx(1), 1); !errors.Is(err, ErrCannotMove) {
		t.Errorf("shift() error = %v, want ErrCannotMove", err)
	}
}

func TestSpans(t *testing.T) {
	tests := []struct {
		name string
		set  func(g *Individual)
		want []Span
	}{
		{
			name: "single",
			set:  func(g *Individual) { g.SetPosition(ctx(1), 2, 0, false) },
			want: []Span{{Context: ctx(1), Index: 2, Start: 0, End: 1000}},
		},
		{
			name: "merged same column",
			set: func(g *Individual) {
				g.SetPosition(ctx(1), 2, 0, false)
				g.SetPosition(ctx(2), 2, 400, true)
			},
			want: []Span{{Context: ctx(1), Index: 2, Start: 0, End: 1000}},
		},
		{
			name: "jump at second entry",
			set: func(g *Individual) {
				g.SetPosition(ctx(1), 2, 0, false)
				g.SetPosition(ctx(2), 4, 400, true)
			},
			want: []Span{
				{Context: ctx(1), Index: 2, Start: 0, End: 400},
				{Context: ctx(2), Index: 4, Start: 400, End: 1000},
			},
		},
		{
			name: "ordinal past death is clamped",
			set: func(g *Individual) {
				g.SetPosition(ctx(1), 2, 0, false)
				g.SetPosition(ctx(2), 4, 5000, true)
			},
			want: []Span{
				{Context: ctx(1), Index: 2, Start: 0, End: 1000},
				{Context: ctx(2), Index: 4, Start: 1000, End: 1000},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := detached(0, 1000)
			tt.set(g)
			got := g.Spans()
			if len(got) != len(tt.want) {
				t.Fatalf("Spans() = %+v, want %+v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("span %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
