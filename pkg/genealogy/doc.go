// Package genealogy provides the domain model consumed by the life-line
// layout engine: individuals, families, ordinal dates and the lazily
// populated entity store.
//
// # Overview
//
// A life-line chart draws every person as a line from birth to death along a
// time axis. The layout engine only needs a handful of facts per person and
// family, so this package deliberately keeps the model small:
//
//   - [Individual]: identifier, name, birth/death [Date], parent families, marriages
//   - [Family]: identifier, husband, wife, ordered children, marriage [Date]
//
// Dates are ordinal day numbers (day 1 is 0001-01-01), which makes them cheap
// to compare and to pad when checking whether two life lines overlap in time.
//
// # Data Providers
//
// Raw records come from a [Provider]. The bundled [MemoryProvider] is filled
// from a JSON family-tree document (see package io); GEDCOM parsing is left to
// external tools.
//
// # Entity Store
//
// [Store] is a memoizing registry keyed by ([Kind], id). Entities are built on
// first access by an injectable [Constructor]; a construction that fails with
// [ErrNotEnoughInformation] is memoized as absent and never retried. Missing
// dates are first filled by an [Estimator].
//
// # Concurrency
//
// Store is not safe for concurrent use. A chart mutates it from a single
// goroutine.
package genealogy
