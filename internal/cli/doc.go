// Package cli implements the command-line interface for wikicap.
//
// The cli package provides the Cobra-based CLI with a long-running serve
// command and a one-shot year lookup with text or JSON output. It wires the
// configuration, MediaWiki client, and the per-domain services together at
// startup.
package cli
