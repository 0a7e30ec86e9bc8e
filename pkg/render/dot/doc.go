// Package dot exports the connection graph of a chart as Graphviz DOT.
//
// The graph is a debugging view: it shows every appearance created by
// selection and every tagged relation between them, including the anchor
// decisions recorded as strong marriages. [RenderSVG] lays the DOT out with
// the embedded Graphviz from go-graphviz, so no external binary is needed.
//
//	src := dot.ToDOT(session.Connections(), dot.Options{Detailed: true})
//	svg, err := dot.RenderSVG(ctx, src)
package dot
