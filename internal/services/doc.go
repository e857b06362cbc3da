// Package services implements the HTTP clients for the three external APIs
// the tool talks to: MusicBrainz, Lidarr, and Spotify.
//
// # MusicBrainz
//
// [MusicBrainzService] searches the artist index. Requests are paced by a
// [rate.Limiter] and rate-limit responses (429/503) are retried indefinitely
// after honoring Retry-After, since MusicBrainz throttles anonymous clients
// aggressively and a batch run should wait its turn rather than fail.
//
// # Lidarr
//
// [LidarrService] wraps the v1 API with API key auth. Transient failures are
// retried a bounded number of times with exponential backoff; other non-2xx
// responses surface as a [StatusError] so callers can branch on the status
// code (the importer treats 400 and 409 on add as "probably already exists").
//
// # Spotify
//
// [SpotifyService] uses OAuth2 for authentication with automatic token
// refresh. A refresh callback lets the CLI persist new tokens back to the
// config file, so a one-shot run a month later still works without
// reauthorizing.
//
// # Error Handling
//
// Clients use typed errors from the shared package:
//   - [shared.ErrMissingCredentials] : required key or secret absent
//   - [shared.ErrNotAuthenticated] : Authenticate() not called
//   - [shared.ErrTokenExpired] : OAuth token expired, reauthorization needed
//   - [shared.ErrAPIRequest] : HTTP request failed
//
// There is no common provider interface. The three APIs share no surface
// worth abstracting; the engines in internal/tasks declare the narrow
// interfaces they consume instead.
package services
