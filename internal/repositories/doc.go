// Package repositories implements SQLite persistence for the history store.
//
// Every row is keyed by a generated UUID and stamped with its creation time;
// listings order by timestamp, so there are no sequence counters. The store
// is append-only: nothing is ever updated or deleted, with the single
// exception of a run's final counts, written once when the run ends.
//
// Key Implementations:
//   - [RunRepository] : one row per pipeline invocation (resolve, import, export)
//   - [ResolutionRepository] : per-artist resolver outcomes belonging to a run
//   - [ImportEventRepository] : per-MBID importer outcomes belonging to a run
//
// [HistoryRepository] bundles the three behind the recording methods the
// engines call, so callers hold one handle instead of three.
package repositories
