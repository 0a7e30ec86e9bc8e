package cli

import (
	"testing"

	"github.com/matzehuels/lifelines/pkg/config"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "svg", []string{"svg"}},
		{"multiple formats", "svg,pdf,png", []string{"svg", "pdf", "png"}},
		{"dot only", "dot", []string{"dot"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if len(got) != len(tt.want) {
				t.Errorf("parseFormats(%q) length = %d, want %d", tt.input, len(got), len(tt.want))
				return
			}
			for i, v := range got {
				if v != tt.want[i] {
					t.Errorf("parseFormats(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
				}
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "tree.json", "tree"},
		{"", "data/family.yaml", "data/family"},
		{"out/chart.svg", "tree.json", "out/chart"},
		{"out/chart.pdf", "tree.json", "out/chart"},
		{"out/chart", "tree.json", "out/chart"},
		{"out/chart.v2", "tree.json", "out/chart.v2"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestIsLayoutFile(t *testing.T) {
	if !isLayoutFile("tree.layout.json") {
		t.Error("tree.layout.json should be a layout file")
	}
	if isLayoutFile("tree.json") {
		t.Error("tree.json should not be a layout file")
	}
}

func TestRenderOptsApply(t *testing.T) {
	cfg := &config.Config{}
	cfg.SetDefaults()

	(&renderOpts{}).apply(cfg)
	if cfg.Render.Step != config.DefaultStep || cfg.Render.Debug {
		t.Errorf("zero flags changed render settings: %+v", cfg.Render)
	}

	(&renderOpts{step: 10, margin: 2, yearHeight: 1, debug: true}).apply(cfg)
	want := config.Render{Step: 10, Margin: 2, YearHeight: 1, Debug: true}
	if cfg.Render != want {
		t.Errorf("Render = %+v, want %+v", cfg.Render, want)
	}
}
