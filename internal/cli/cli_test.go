package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	lio "github.com/matzehuels/lifelines/pkg/io"
	"github.com/matzehuels/lifelines/pkg/pipeline"
)

const testTree = `{
  "individuals": [
    {"id": "A", "name": "Albert", "birth": "1950", "death": "2020"},
    {"id": "B", "name": "Berta", "birth": "1952", "death": "2022"},
    {"id": "C", "name": "Carl", "birth": "1920", "death": "1990"},
    {"id": "D", "name": "Dora", "birth": "1922", "death": "1995"}
  ],
  "families": [
    {"id": "FAB", "husband": "A", "wife": "B", "marriage": "1975"},
    {"id": "FCD", "husband": "C", "wife": "D", "marriage": "1945", "children": ["A"]}
  ]
}`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testCLI() *CLI {
	return New(io.Discard, LogInfo)
}

func TestRootCommand(t *testing.T) {
	root := testCLI().RootCommand()
	want := []string{"layout", "render", "check", "dot", "inspect", "serve", "cache", "completion"}
	for _, name := range want {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestTreeFormat(t *testing.T) {
	tests := map[string]string{
		"tree.json":     pipeline.TreeJSON,
		"tree.yaml":     pipeline.TreeYAML,
		"tree.YML":      pipeline.TreeYAML,
		"tree":          pipeline.TreeJSON,
		"tree.ged.json": pipeline.TreeJSON,
	}
	for path, want := range tests {
		if got := treeFormat(path); got != want {
			t.Errorf("treeFormat(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	cfgPath := writeTemp(t, "chart.toml", `
exclude = ["D"]

[[roots]]
id = "A"
generations = 3

[[roots]]
id = "B"
`)

	tests := []struct {
		name      string
		flags     inputFlags
		wantRoots []string
		wantGens  []int
		wantErr   bool
	}{
		{"roots from flag", inputFlags{roots: []string{"C"}}, []string{"C"}, []int{4}, false},
		{"roots from config", inputFlags{config: cfgPath}, []string{"A", "B"}, []int{3, 4}, false},
		{"flag overrides config", inputFlags{config: cfgPath, roots: []string{"B"}, generations: 1}, []string{"B"}, []int{1}, false},
		{"generations apply to config roots", inputFlags{config: cfgPath, generations: 2}, []string{"A", "B"}, []int{2, 2}, false},
		{"no roots", inputFlags{}, nil, nil, true},
		{"missing config", inputFlags{config: filepath.Join(t.TempDir(), "none.toml"), roots: []string{"A"}}, nil, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := tt.flags.loadConfig()
			if (err != nil) != tt.wantErr {
				t.Fatalf("loadConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(cfg.Roots) != len(tt.wantRoots) {
				t.Fatalf("roots = %+v, want %v", cfg.Roots, tt.wantRoots)
			}
			for i, r := range cfg.Roots {
				if r.ID != tt.wantRoots[i] || r.Generations != tt.wantGens[i] {
					t.Errorf("root %d = %+v, want {%s %d}", i, r, tt.wantRoots[i], tt.wantGens[i])
				}
			}
		})
	}
}

func TestRunLayout(t *testing.T) {
	input := writeTemp(t, "family.json", testTree)
	in := &inputFlags{roots: []string{"A"}, noCache: true}

	if err := testCLI().runLayout(context.Background(), input, in, ""); err != nil {
		t.Fatalf("runLayout() error: %v", err)
	}

	out := strings.TrimSuffix(input, ".json") + layoutSuffix
	res, err := lio.ImportLayout(out)
	if err != nil {
		t.Fatalf("read written layout: %v", err)
	}
	if len(res.Individuals) != 4 {
		t.Errorf("individuals = %d, want 4", len(res.Individuals))
	}
}

func TestRunRender(t *testing.T) {
	input := writeTemp(t, "family.json", testTree)
	dir := filepath.Dir(input)
	in := &inputFlags{roots: []string{"A"}, noCache: true}
	c := testCLI()

	opts := &renderOpts{formats: []string{"svg", "json"}}
	if err := c.runRender(context.Background(), input, in, opts); err != nil {
		t.Fatalf("runRender() error: %v", err)
	}
	for _, name := range []string{"family.svg", "family" + layoutSuffix} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
	}

	// A layout file renders without the tree.
	layoutPath := filepath.Join(dir, "family"+layoutSuffix)
	if err := c.runLayout(context.Background(), input, in, layoutPath); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "from-layout.svg")
	opts = &renderOpts{formats: []string{"svg"}, output: out}
	if err := c.runRenderLayout(context.Background(), layoutPath, opts); err != nil {
		t.Fatalf("runRenderLayout() error: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil || !strings.Contains(string(data), "<svg") {
		t.Errorf("rendered layout = %q, %v", data, err)
	}

	opts = &renderOpts{formats: []string{"dot"}}
	if err := c.runRenderLayout(context.Background(), layoutPath, opts); err == nil {
		t.Error("dot from a layout file should fail")
	}
}

func TestRunCheck(t *testing.T) {
	input := writeTemp(t, "family.json", testTree)
	in := &inputFlags{roots: []string{"A"}, noCache: true}
	if err := testCLI().runCheck(context.Background(), input, in); err != nil {
		t.Errorf("runCheck() on a clean chart: %v", err)
	}

	// A hand-made layout with two life lines sharing column 0.
	bad := writeTemp(t, "bad"+layoutSuffix, `{
  "individuals": [
    {"id": "A", "occurrence": 0, "name": "A", "birth": 700000, "death": 720000, "spans": [{"index": 0, "start": 700000, "end": 720000}]},
    {"id": "B", "occurrence": 0, "name": "B", "birth": 710000, "death": 730000, "spans": [{"index": 0, "start": 710000, "end": 730000}]}
  ],
  "families": [],
  "min_index": 0, "max_index": 0, "min_ordinal": 700000, "max_ordinal": 730000,
  "problems": [0]
}`)
	if err := testCLI().runCheck(context.Background(), bad, in); !errors.Is(err, errProblems) {
		t.Errorf("runCheck() error = %v, want errProblems", err)
	}
}

func TestRunDot(t *testing.T) {
	input := writeTemp(t, "family.json", testTree)
	in := &inputFlags{roots: []string{"A"}, noCache: true}
	if err := testCLI().runDot(context.Background(), input, in, "", false, true); err != nil {
		t.Fatalf("runDot() error: %v", err)
	}
	data, err := os.ReadFile(strings.TrimSuffix(input, ".json") + ".dot")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"digraph", "Albert", "gr_husb"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("DOT output missing %q", want)
		}
	}
}

func TestWriteFileCreatesDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "out.svg")
	if err := writeFile(path, []byte("<svg/>")); err != nil {
		t.Fatalf("writeFile() error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Error(err)
	}
}
