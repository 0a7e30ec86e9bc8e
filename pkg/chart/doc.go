// Package chart keeps a life-line chart in sync with its configuration.
//
// # Overview
//
// A [Chart] owns one [layout.Session] over a [genealogy.Store]. Each call to
// [Chart.Update] compares the configuration snapshot with the one used for
// the current layout and rebuilds only when it changed:
//
//  1. reset the session with the configured policy and display options
//  2. select every root to its generation limit
//  3. resolve anchors and place all families
//  4. flip and compress, each best effort
//  5. normalize columns, check consistency and export a [layout.Result]
//
// Optimizers never fail a chart. When one returns an error the positions
// from before the run are restored and a warning is logged. Consistency
// problems found after placement are logged at error level and exported as
// problem columns so renderers can highlight them.
//
// # Concurrency
//
// A Chart is not safe for concurrent use. The [layout.Result] it returns is
// not modified by later updates and may be shared.
package chart
