// Package tasks orchestrates the pipeline stages with real-time progress reporting.
//
// # Engines
//
// Each stage is its own engine, constructed over the narrow slice of the
// service layer it consumes:
//
//  1. [ResolveEngine] : artist names → MusicBrainz identifiers
//     - Searches MusicBrainz per unique input name
//     - Picks the best candidate (exact casefold name/alias match, then relevance score)
//     - Streams newly found identifiers to an [MBIDSink] so interruption loses nothing
//
//  2. [ImportEngine] : identifiers → monitored Lidarr artists
//     - Validates the root folder and profile ids before touching any artist
//     - Prechecks the existing library once to skip known artists
//     - Looks up and adds each artist, classifying every outcome into a report
//       row (ADDED, EXISTS, LOOKUP_ERROR, NO_RESULTS, ADD_ERROR, DRY_RUN)
//
//  3. [ExportEngine] : Spotify library → artist name list
//     - Pages through followed artists and saved album credits
//     - Returns the sorted union of names
//
// # Progress Reporting
//
// All engines emit [ProgressUpdate] values over a caller-supplied channel for
// display by the CLI or UI layer. Updates use select with default to prevent
// blocking; a nil channel disables reporting.
//
// # History Recording
//
// The resolve and import engines accept an optional [Recorder] persisting one
// row per attempt under a run id. Recording is best-effort (errors ignored)
// to avoid disrupting pipeline runs.
package tasks
