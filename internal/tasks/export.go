package tasks

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackedtechbro/mbid-to-lidarr/internal/shared"
)

// exportPageSize is the page size requested from the Spotify library
// endpoints (their documented maximum).
const exportPageSize = 50

// ExportOpts contains configuration for a library export.
type ExportOpts struct {
	SkipAlbums bool // Collect followed artists only
}

// ExportResult contains all data from a library export. Artists is the
// sorted union of followed artist names and saved-album credit names.
type ExportResult struct {
	Artists []string
	Albums  int // Distinct saved album titles seen
}

// ExportEngine collects artist names from a Spotify library.
type ExportEngine struct {
	library LibraryReader
}

// NewExportEngine creates an ExportEngine.
func NewExportEngine(library LibraryReader) *ExportEngine {
	return &ExportEngine{library: library}
}

// Run pages through the user's followed artists and saved albums, returning
// the de-duplicated, sorted union of artist names.
func (e *ExportEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, opts ExportOpts) (*ExportResult, error) {
	if e.library == nil {
		return nil, fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}

	names := make(map[string]struct{})

	after := ""
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := e.library.FollowedArtists(ctx, after)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch followed artists: %w", err)
		}
		for _, artist := range page.Artists.Items {
			names[artist.Name] = struct{}{}
		}
		sendProgress(progress, fetchingFollowedUpdate(len(names), page.Artists.Total))
		if page.Artists.Next == nil || page.Artists.Cursors.After == "" {
			break
		}
		after = page.Artists.Cursors.After
	}

	albums := make(map[string]struct{})
	if !opts.SkipAlbums {
		offset := 0
		for {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			page, err := e.library.SavedAlbums(ctx, exportPageSize, offset)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch saved albums: %w", err)
			}
			for _, saved := range page.Items {
				albums[saved.Album.Name] = struct{}{}
				for _, artist := range saved.Album.Artists {
					names[artist.Name] = struct{}{}
				}
			}
			sendProgress(progress, fetchingAlbumsUpdate(len(albums), page.Total))
			if page.Next == nil || len(page.Items) == 0 {
				break
			}
			offset += len(page.Items)
		}
	}

	result := &ExportResult{
		Artists: make([]string, 0, len(names)),
		Albums:  len(albums),
	}
	for name := range names {
		result.Artists = append(result.Artists, name)
	}
	sort.Strings(result.Artists)
	return result, nil
}
