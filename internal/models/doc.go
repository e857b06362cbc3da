// Package models defines domain entities and persistence interfaces for the artist import pipeline.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs passed between pipeline stages
//   - [ResolvedArtist] : One MusicBrainz resolution attempt with match metadata
//   - [ImportResult] : One Lidarr import outcome, mirroring a report row
//   - [ImportStats] : Per-status tallies for an import run
//   - [MonitorOption] : Lidarr's addOptions.monitor vocabulary
//
// 2. Persistent Entities: History-store models with full lifecycle management
//   - [Run] : One pipeline invocation with timing and counts
//   - [Resolution] : A resolution attempt persisted for audit
//   - [ImportEvent] : An import outcome persisted for audit
//
// All persistent entities implement the Model interface providing ID generation, timestamps, and validation.
// The Repository[T] interface defines the append-only access pattern of the history store.
package models
