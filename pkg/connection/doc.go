// Package connection provides the typed adjacency structure that records how
// graphical appearances of individuals and families relate inside one chart.
//
// # Overview
//
// Families and individuals reference each other in both directions: a family
// knows its spouses and children, and an individual needs to know which
// family it descends from "strongly" (the one that moves together with it).
// Instead of storing these as mutual pointers, every relationship is an edge
// between two opaque [ID] values carrying a [Tag]. [Graph.Add] records a
// [Relation] in both directions, using a forward tag on the source and a
// backward tag on the target:
//
//	g := connection.New()
//	g.Add(connection.StrongChild, famID, indID)
//	pf, ok, err := g.StrongParentFamily(indID) // pf == famID
//
// # Strong and Weak Connections
//
// Strong connections drive movement: the optimizers move a strong parent
// family together with its anchor child. Weak connections are informational
// (visible siblings). At most one [TagStrongParentFamily] and one
// [TagStrongMarriage] may exist per individual appearance; accessors that
// read them return [ErrPlacementConsistency] when that invariant is broken.
//
// # Concurrency
//
// Graph is not safe for concurrent use.
package connection
