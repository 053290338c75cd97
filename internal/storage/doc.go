// Package storage provides JSON-based persistence for year summaries.
//
// The storage package manages local snapshot files so repeated lookups of
// the same year can skip the network. Snapshots are stored in JSON format,
// one file per year (summary_YEAR.json). The default storage location is
// ~/.local/share/wikicap/.
package storage
