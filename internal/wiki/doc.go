// Package wiki extracts "what happened in year Y" event lists from
// Wikipedia year articles.
//
// A year article keeps its history under an "Events" section organized by
// month, but the MediaWiki API hands that content back in different shapes
// depending on how it is asked: a parsed HTML document, a table-of-contents
// entry list, or raw wikitext for a single section. The package locates the
// Events section in any of those shapes, splits it into per-month buckets,
// and cleans each bullet line into a short human-readable sentence.
package wiki
