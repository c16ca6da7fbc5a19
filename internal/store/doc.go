// Package store provides a SQLite archive of solve runs.
//
// The archive records:
//   - Runs: one row per solve request, successful or not
//   - Results: the staged paths of a run, in result order
//   - Verifications: outcomes of verify requests
//
// # Ordering
//
// Rows are ordered by seq INTEGER, assigned on insert, never by wall time.
// All listing queries use ORDER BY seq DESC, id ASC COLLATE BINARY so that
// two archives fed the same requests list identically.
//
// # Caching
//
// Runs are keyed by a request hash (see Request.Hash) covering the family,
// the source and target multisets, and the solver configuration. A solved
// run with the same hash can be served instead of searching again.
package store
