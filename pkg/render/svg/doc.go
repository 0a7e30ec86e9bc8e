// Package svg draws life-line charts.
//
// # Overview
//
// [RenderSVG] turns a [layout.Result] into a self-contained SVG document.
// Time runs downwards and every column of the layout becomes a vertical
// track:
//
//	x = margin + index*step
//	y = margin + (ordinal - minOrdinal) * yearHeight / 365.25
//
// Each life line is a polyline that jumps between columns where its
// position map switches context. Marriages are bars between the spouses at
// the marriage date and children hang from the middle of the bar; weak
// children (siblings that are not on an ancestor path) are dashed, as are
// life lines with estimated dates.
//
// # Debug Overlay
//
// With [WithDebug], every column listed in the result's problems is shaded
// red, which makes collisions and empty columns easy to spot.
package svg
