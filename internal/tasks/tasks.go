package tasks

import (
	"context"

	"github.com/jackedtechbro/mbid-to-lidarr/internal/models"
	"github.com/jackedtechbro/mbid-to-lidarr/internal/services"
)

// ArtistSearcher is the slice of the MusicBrainz client the resolver consumes.
// This abstraction allows for easier testing and decoupling from the concrete implementation.
type ArtistSearcher interface {
	SearchArtist(ctx context.Context, name string) ([]services.MBArtist, error)
}

// LidarrAPI is the slice of the Lidarr client the importer consumes.
type LidarrAPI interface {
	RootFolders(ctx context.Context) ([]services.LidarrRootFolder, error)
	QualityProfiles(ctx context.Context) ([]services.LidarrProfile, error)
	MetadataProfiles(ctx context.Context) ([]services.LidarrProfile, error)
	ExistingForeignIDs(ctx context.Context) (map[string]struct{}, error)
	Lookup(ctx context.Context, term string) ([]services.LidarrArtist, error)
	AddArtist(ctx context.Context, add services.LidarrAddRequest) (*services.LidarrArtist, error)
}

// LibraryReader is the slice of the Spotify client the exporter consumes.
type LibraryReader interface {
	FollowedArtists(ctx context.Context, after string) (*services.SpotifyFollowedPage, error)
	SavedAlbums(ctx context.Context, limit, offset int) (*services.SpotifyPaginatedAlbums, error)
}

// Recorder persists per-item outcomes to the history store.
//
// Recording is best-effort: engines ignore recorder errors so a broken
// database never interrupts a pipeline run. A nil Recorder disables
// persistence entirely. Implemented by [repositories.HistoryRepository].
type Recorder interface {
	RecordResolution(runID string, artist models.ResolvedArtist) error
	RecordImport(runID string, result models.ImportResult) error
}

// MBIDSink receives resolved identifiers as they are produced. Write reports
// whether the identifier was newly written; duplicates return false.
// Implemented by [formatter.MBIDWriter].
type MBIDSink interface {
	Write(mbid string) (bool, error)
}

// ReportSink receives importer report rows as they are produced.
// Implemented by [formatter.ReportWriter].
type ReportSink interface {
	Row(result models.ImportResult) error
	Summary(stats models.ImportStats) error
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}
