// Package io reads and writes the two document formats of lifelines: family
// trees, which feed a chart, and layout results, which a chart produces.
//
// # Family Trees
//
// A tree lists individuals and families. Relationships are recorded on the
// families; the parent-family and marriage lists of individuals are derived
// from them when omitted:
//
//	{
//	  "individuals": [
//	    {"id": "I1", "name": "Anna", "birth": "1900-03-02", "death": "1970"},
//	    {"id": "I2", "name": "Karl", "birth": "ABT 1895", "death": "1960"},
//	    {"id": "I3", "name": "Rosa", "birth": "1925"}
//	  ],
//	  "families": [
//	    {"id": "F1", "husband": "I2", "wife": "I1", "marriage": "1921", "children": ["I3"]}
//	  ]
//	}
//
// Dates accept "YYYY", "YYYY-MM" and "YYYY-MM-DD". A leading "~" or a
// GEDCOM qualifier such as "ABT" marks the date as estimated. Missing dates
// are left to the store's estimator.
//
// Use [ImportTree] for files (JSON, or YAML by extension) and [ReadTree] or
// [ReadTreeYAML] for readers. [WriteTree] produces the JSON form.
//
// # Layouts
//
// [WriteLayout] and [ReadLayout] serialize a [layout.Result]. A stored
// result can be rendered again without rebuilding the chart, which is how
// the pipeline caches layouts.
//
// # Concurrency
//
// All functions are safe for concurrent use. Each call returns independent
// values.
package io
