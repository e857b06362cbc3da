package tasks

import (
	"fmt"

	"github.com/jackedtechbro/mbid-to-lidarr/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ResolveArtists Phase = iota
	Preflight
	Precheck
	ImportArtists
	FetchFollowed
	FetchAlbums
)

func (p Phase) String() string {
	switch p {
	case ResolveArtists:
		return "resolve_artists"
	case Preflight:
		return "preflight"
	case Precheck:
		return "precheck"
	case ImportArtists:
		return "import_artists"
	case FetchFollowed:
		return "fetch_followed"
	case FetchAlbums:
		return "fetch_albums"
	default:
		return ""
	}
}

func resolveStartUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveArtists,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Resolving %d artists against MusicBrainz...", total),
	}
}

func artistResolvedUpdate(step, total int, artist models.ResolvedArtist) ProgressUpdate {
	message := fmt.Sprintf("%s: no match", artist.InputName)
	if artist.Matched() {
		message = fmt.Sprintf("%s: %s (%s • %d)", artist.InputName, artist.MBID, artist.MatchedName, artist.Score)
	}
	return ProgressUpdate{
		Phase:   ResolveArtists,
		Step:    step,
		Total:   total,
		Message: message,
		Data:    artist,
	}
}

func searchFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveArtists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("%s: ERROR %v", name, err),
	}
}

func checkingRootFolderUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   Preflight,
		Step:    1,
		Total:   2,
		Message: "Validating root folder...",
	}
}

func resolvingProfilesUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   Preflight,
		Step:    2,
		Total:   2,
		Message: "Resolving quality and metadata profiles...",
	}
}

func fetchingLibraryUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   Precheck,
		Step:    1,
		Total:   1,
		Message: "Loading existing artists from Lidarr...",
	}
}

func precheckFailedUpdate(err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Precheck,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("WARNING: could not load existing artists: %v", err),
	}
}

func precheckExistsUpdate(step, total int, mbid string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportArtists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("%s: already present (precheck)", mbid),
	}
}

func lookupFailedUpdate(step, total int, mbid string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportArtists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("%s: LOOKUP ERROR %v", mbid, err),
	}
}

func noResultsUpdate(step, total int, mbid string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportArtists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("%s: no lookup results", mbid),
	}
}

func foundArtistUpdate(step, total int, name, disambiguation, mbid string) ProgressUpdate {
	if disambiguation == "" {
		disambiguation = "N/A"
	}
	return ProgressUpdate{
		Phase:   ImportArtists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Found: %s (%s) -> %s", name, disambiguation, mbid),
	}
}

func artistAddedUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportArtists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Added: %s", name),
	}
}

func existsAfterAddUpdate(step, total int, name string, status int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportArtists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("%s: already exists (HTTP %d)", name, status),
	}
}

func addFailedUpdate(step, total int, name, detail string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportArtists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("%s: ADD ERROR %s", name, detail),
	}
}

func fetchingFollowedUpdate(count, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchFollowed,
		Step:    count,
		Total:   total,
		Message: fmt.Sprintf("Fetched %d of %d followed artists...", count, total),
	}
}

func fetchingAlbumsUpdate(count, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchAlbums,
		Step:    count,
		Total:   total,
		Message: fmt.Sprintf("Fetched %d of %d saved albums...", count, total),
	}
}
