// Package layout computes life-line chart layouts: which appearances a chart
// contains, which column each part of every life line occupies, and how the
// columns are rearranged to shorten connectors and save width.
//
// # Overview
//
// A [Session] is built over a [genealogy.Store] and runs four stages:
//
//  1. [Session.Select] walks ancestors from each root up to a generation
//     limit and creates one [Individual] and [Family] appearance per domain
//     entity, linking them in a [connection.Graph].
//  2. [Session.ResolveAnchors] picks, for every family with strong
//     children, the child and marriage through which the family block is
//     attached. A [Policy] makes the decision; [OverridePolicy] lets callers
//     pin it per family.
//  3. [Session.PlaceAll] assigns consecutive columns. A family block is laid
//     out as husband branch, children, wife branch, and the anchor child
//     shares one column between its parents' block and its own marriage.
//  4. [Session.FlipToOptimize] and [Session.Compress] rearrange the
//     columns. Both are best effort and bounded by a step budget.
//
// [Session.Layout] runs stages 2 and 3.
//
// # Position Maps
//
// Each [Individual] keeps a list of [Position] entries sorted by ordinal.
// The life line starts in the first entry's column at birth and switches to
// the next entry's column at that entry's ordinal, so a person married twice
// draws one line with a jump at the second marriage instead of appearing
// twice.
//
// # Collisions
//
// [Session.Check] groups spans by column and compares every pair from
// different appearances. Intervals are padded by a minimum distance and
// compared with the sign of a product, which avoids branching on the four
// ordering cases:
//
//	overlap := (lo1-hi2)*(hi1-lo2) < 0
//
// # Concurrency
//
// A Session is not safe for concurrent use. Build one session per chart.
package layout
