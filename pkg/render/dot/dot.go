package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/lifelines/pkg/connection"
)

// Options configures DOT output.
type Options struct {
	// Label returns the display label of an appearance. When nil, the
	// domain identifier is used.
	Label func(connection.ID) string

	// Detailed adds the occurrence number to every label.
	Detailed bool
}

// edgeStyles lists the forward tags drawn as edges and their attributes.
// Backward tags describe the same relation and are not drawn.
var edgeStyles = map[connection.Tag]string{
	connection.TagGrHusb:         `color="#2b4c7e"`,
	connection.TagGrWife:         `color="#7e2b4c"`,
	connection.TagStrongChild:    `penwidth=2`,
	connection.TagWeakChild:      `style=dashed`,
	connection.TagStrongMarriage: `color="#c08000", style=bold, constraint=false`,
}

var edgeOrder = []connection.Tag{
	connection.TagGrHusb,
	connection.TagGrWife,
	connection.TagStrongChild,
	connection.TagWeakChild,
	connection.TagStrongMarriage,
}

// familyTags only ever appear on family appearances.
var familyTags = []connection.Tag{
	connection.TagGrHusb,
	connection.TagGrWife,
	connection.TagStrongChild,
	connection.TagWeakChild,
	connection.TagStrongSpouse,
}

// ToDOT converts a connection graph to Graphviz DOT. Families are drawn as
// ellipses, individuals as boxes, and every relation as one edge labelled
// with its tag.
func ToDOT(g *connection.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n")
	buf.WriteString("  edge [fontsize=10, fontcolor=grey40];\n")
	buf.WriteString("\n")

	ids := g.IDs()
	for _, id := range ids {
		attrs := []string{fmt.Sprintf("label=%q", label(id, opts))}
		if isFamily(g, id) {
			attrs = append(attrs, "shape=ellipse", "fillcolor=lightgrey")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", id.String(), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, id := range ids {
		for _, tag := range edgeOrder {
			for _, other := range g.Counterparts(id, tag) {
				fmt.Fprintf(&buf, "  %q -> %q [label=%q, %s];\n", id.String(), other.String(), string(tag), edgeStyles[tag])
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func label(id connection.ID, opts Options) string {
	l := id.DomainID
	if opts.Label != nil {
		if s := opts.Label(id); s != "" {
			l = s
		}
	}
	if opts.Detailed {
		l = fmt.Sprintf("%s\n#%d %s", l, id.Occurrence, id.DomainID)
	}
	return l
}

func isFamily(g *connection.Graph, id connection.ID) bool {
	for _, tags := range g.Query(id) {
		for _, t := range tags {
			if slices.Contains(familyTags, t) {
				return true
			}
		}
	}
	return false
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz svg element, which sizes the
// drawing in points, with one sized in user units.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
