package svg

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lifelines/pkg/genealogy"
	"github.com/matzehuels/lifelines/pkg/layout"
)

// Default geometry, in SVG user units.
const (
	DefaultStep       = 24.0
	DefaultMargin     = 40.0
	DefaultYearHeight = 6.0
)

// daysPerYear converts ordinals to the vertical axis.
const daysPerYear = 365.25

const chartCSS = `
    .life { fill: none; stroke: #2b4c7e; stroke-width: 3; stroke-linecap: round; }
    .life.estimated { stroke-dasharray: 6 3; }
    .life.root { stroke: #7e2b4c; }
    .marriage { stroke: #444; stroke-width: 1.5; }
    .child { fill: none; stroke: #888; stroke-width: 1; }
    .child.weak { stroke-dasharray: 3 3; }
    .spouse { fill: #444; }
    .label { font: 10px sans-serif; fill: #222; }
    .year { font: 9px sans-serif; fill: #999; }
    .grid { stroke: #eee; stroke-width: 1; }
    .problem { fill: red; fill-opacity: 0.15; }`

// Option configures SVG rendering.
type Option func(*renderer)

type renderer struct {
	step       float64
	margin     float64
	yearHeight float64
	debug      bool
	labels     bool
	grid       bool
	logger     *log.Logger
}

// WithStep sets the horizontal distance between columns.
func WithStep(step float64) Option { return func(r *renderer) { r.step = step } }

// WithMargin sets the padding around the chart.
func WithMargin(m float64) Option { return func(r *renderer) { r.margin = m } }

// WithYearHeight sets the vertical extent of one year.
func WithYearHeight(h float64) Option { return func(r *renderer) { r.yearHeight = h } }

// WithDebug highlights the columns listed in [layout.Result.Problems].
func WithDebug(debug bool) Option { return func(r *renderer) { r.debug = debug } }

// WithoutLabels omits the name labels.
func WithoutLabels() Option { return func(r *renderer) { r.labels = false } }

// WithoutGrid omits the decade grid.
func WithoutGrid() Option { return func(r *renderer) { r.grid = false } }

// WithLogger reports skipped appearances. Nil discards output.
func WithLogger(l *log.Logger) Option { return func(r *renderer) { r.logger = l } }

func newRenderer(opts ...Option) renderer {
	r := renderer{
		step:       DefaultStep,
		margin:     DefaultMargin,
		yearHeight: DefaultYearHeight,
		labels:     true,
		grid:       true,
	}
	for _, opt := range opts {
		opt(&r)
	}
	if r.step <= 0 {
		r.step = DefaultStep
	}
	if r.yearHeight <= 0 {
		r.yearHeight = DefaultYearHeight
	}
	if r.margin < 0 {
		r.margin = 0
	}
	if r.logger == nil {
		r.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return r
}

// RenderSVG draws a layout as an SVG document.
//
// Column i is drawn at x = margin + i*step and ordinal d at
// y = margin + (d - MinOrdinal) * yearHeight / 365.25, with columns counted
// from the result's MinIndex. Every life line is one polyline through its
// spans; marriages are horizontal bars at the marriage ordinal, and children
// hang from the middle of their parents' bar. Appearances without a column
// are skipped.
func RenderSVG(res *layout.Result, opts ...Option) []byte {
	r := newRenderer(opts...)
	w, h := r.size(res)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n", w, h, w, h)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", chartCSS)

	if r.grid {
		r.renderGrid(&buf, res, w)
	}
	if r.debug {
		r.renderProblems(&buf, res, h)
	}
	for _, f := range res.Families {
		r.renderFamily(&buf, res, f)
	}
	for _, ind := range res.Individuals {
		if ind.Unpositioned || len(ind.Spans) == 0 {
			r.logger.Debug("skipping unpositioned individual", "id", ind.ID, "occurrence", ind.Occurrence)
			continue
		}
		r.renderLife(&buf, res, ind)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r renderer) size(res *layout.Result) (w, h float64) {
	w = 2*r.margin + float64(max(res.Width()-1, 0))*r.step
	h = 2*r.margin + r.y(res, res.MaxOrdinal) - r.y(res, res.MinOrdinal)
	return max(w, 1), max(h, 1)
}

func (r renderer) x(res *layout.Result, index int) float64 {
	return r.margin + float64(index-res.MinIndex)*r.step
}

func (r renderer) y(res *layout.Result, ordinal int) float64 {
	return r.margin + float64(ordinal-res.MinOrdinal)*r.yearHeight/daysPerYear
}

func (r renderer) renderGrid(buf *bytes.Buffer, res *layout.Result, w float64) {
	if res.MaxOrdinal <= res.MinOrdinal {
		return
	}
	first := (genealogy.OrdinalYear(res.MinOrdinal)/10 + 1) * 10
	last := genealogy.OrdinalYear(res.MaxOrdinal)
	for year := first; year <= last; year += 10 {
		y := r.y(res, genealogy.YearOrdinal(year))
		fmt.Fprintf(buf, `  <line class="grid" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n", r.margin, y, w-r.margin, y)
		fmt.Fprintf(buf, `  <text class="year" x="%.1f" y="%.1f" text-anchor="end">%d</text>`+"\n", r.margin-4, y+3, year)
	}
}

func (r renderer) renderProblems(buf *bytes.Buffer, res *layout.Result, h float64) {
	for _, idx := range res.Problems {
		x := r.x(res, idx) - r.step/2
		fmt.Fprintf(buf, `  <rect class="problem" data-index="%d" x="%.1f" y="0" width="%.1f" height="%.1f"/>`+"\n", idx, x, r.step, h)
	}
}

func (r renderer) renderFamily(buf *bytes.Buffer, res *layout.Result, f layout.FamilyLayout) {
	var spouses []layout.MemberLayout
	for _, m := range []*layout.MemberLayout{f.Husband, f.Wife} {
		if m != nil {
			spouses = append(spouses, *m)
		}
	}
	if len(spouses) == 0 {
		return
	}

	y := r.y(res, f.Ordinal)
	lo, hi := r.x(res, spouses[0].Index), r.x(res, spouses[0].Index)
	for _, s := range spouses[1:] {
		sx := r.x(res, s.Index)
		lo, hi = min(lo, sx), max(hi, sx)
	}

	fmt.Fprintf(buf, `  <g class="family" id="family-%s-%d">`+"\n", escapeAttr(f.ID), f.Occurrence)
	if len(spouses) == 2 {
		fmt.Fprintf(buf, `    <line class="marriage" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n", lo, y, hi, y)
	}
	for _, s := range spouses {
		fmt.Fprintf(buf, `    <circle class="spouse" cx="%.1f" cy="%.1f" r="2.5"/>`+"\n", r.x(res, s.Index), y)
	}

	mid := (lo + hi) / 2
	for _, c := range f.Children {
		cx, cy := r.x(res, c.Index), r.y(res, c.Ordinal)
		class := "child"
		if !c.Strong {
			class += " weak"
		}
		fmt.Fprintf(buf, `    <path class="%s" d="M%.1f %.1f H%.1f V%.1f"/>`+"\n", class, mid, y, cx, cy)
	}
	buf.WriteString("  </g>\n")
}

func (r renderer) renderLife(buf *bytes.Buffer, res *layout.Result, ind layout.IndividualLayout) {
	points := make([]string, 0, 2*len(ind.Spans))
	for _, sp := range ind.Spans {
		x := r.x(res, sp.Index)
		points = append(points,
			fmt.Sprintf("%.1f,%.1f", x, r.y(res, sp.Start)),
			fmt.Sprintf("%.1f,%.1f", x, r.y(res, sp.End)))
	}

	classes := []string{"life"}
	if ind.BirthEstimated || ind.DeathEstimated {
		classes = append(classes, "estimated")
	}
	if ind.Root {
		classes = append(classes, "root")
	}

	fmt.Fprintf(buf, `  <g id="life-%s-%d">`+"\n", escapeAttr(ind.ID), ind.Occurrence)
	fmt.Fprintf(buf, `    <title>%s (%s)</title>`+"\n", escapeText(ind.Name), lifeYears(ind))
	fmt.Fprintf(buf, `    <polyline class="%s" points="%s"/>`+"\n", strings.Join(classes, " "), strings.Join(points, " "))
	if r.labels {
		first := ind.Spans[0]
		fmt.Fprintf(buf, `    <text class="label" x="%.1f" y="%.1f">%s</text>`+"\n",
			r.x(res, first.Index)+4, r.y(res, first.Start)+10, escapeText(ind.Name))
	}
	buf.WriteString("  </g>\n")
}

func lifeYears(ind layout.IndividualLayout) string {
	years := func(ord int, estimated bool) string {
		s := fmt.Sprint(genealogy.OrdinalYear(ord))
		if estimated {
			return "~" + s
		}
		return s
	}
	return years(ind.Birth, ind.BirthEstimated) + "-" + years(ind.Death, ind.DeathEstimated)
}

func escapeText(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// escapeAttr makes s usable inside an id attribute.
func escapeAttr(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '"' || r == '<' || r == '>' || r == '&' || r == ' ' || r == '@' {
			return '_'
		}
		return r
	}, s)
}
