// Package index wraps a bleve full-text index over documentation records and
// defines the artifact that carries it from the builder to the widget.
//
// The builder creates an [Index] with [New], adds one [Record] per source
// document and writes the result with [SaveFile]. The widget reads the
// artifact back with [Load] or [LoadFile], which rebuilds an in-memory bleve
// index using the field weights recorded in the artifact, so both sides
// always score with the same configuration.
//
// Tokenization, stemming and scoring are bleve's. Field weights are applied
// at query time: a plain query becomes a disjunction of per-field match
// queries, each boosted by its field weight. A query that contains bleve
// query string syntax is handed to bleve's query string parser unchanged.
//
// Results are ordered by score, highest first, with ties broken by record id
// so that identical artifacts always return identical result lists.
package index
