package tasks

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/text/cases"

	"github.com/jackedtechbro/mbid-to-lidarr/internal/models"
	"github.com/jackedtechbro/mbid-to-lidarr/internal/services"
	"github.com/jackedtechbro/mbid-to-lidarr/internal/shared"
)

// defaultMinScore is the MusicBrainz relevance floor below which a search is
// treated as having no match.
const defaultMinScore = 80

// ResolveOpts contains configuration for a resolver run.
type ResolveOpts struct {
	MinScore int    // Score threshold for accepting a match (default 80)
	Limit    int    // Process only the first N names (0 = all)
	RunID    string // History run to record rows under; empty skips recording
}

// ResolveResult contains all data from a resolver run.
type ResolveResult struct {
	Artists   []models.ResolvedArtist // One row per attempted name, in input order
	Matched   int
	Unmatched int
	Written   int      // Identifiers newly written to the sink this run
	NewMBIDs  []string // Newly written identifiers, in resolution order
}

// ResolveEngine resolves artist names to MusicBrainz identifiers.
type ResolveEngine struct {
	mb       ArtistSearcher
	recorder Recorder
}

// NewResolveEngine creates a ResolveEngine. recorder may be nil.
func NewResolveEngine(mb ArtistSearcher, recorder Recorder) *ResolveEngine {
	return &ResolveEngine{mb: mb, recorder: recorder}
}

// Run resolves each name in order, streaming newly seen identifiers to out as
// they are found. Per-name search failures are recorded as unmatched rows and
// the run continues; cancellation stops between names and returns the partial
// result alongside the context error. out may be nil to skip writing.
func (e *ResolveEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, names []string, out MBIDSink, opts ResolveOpts) (*ResolveResult, error) {
	if e.mb == nil {
		return nil, fmt.Errorf("%w: MusicBrainz service not initialized", shared.ErrServiceUnavailable)
	}
	if opts.MinScore <= 0 {
		opts.MinScore = defaultMinScore
	}
	if opts.Limit > 0 && len(names) > opts.Limit {
		names = names[:opts.Limit]
	}

	result := &ResolveResult{}
	total := len(names)
	sendProgress(progress, resolveStartUpdate(total))

	for i, name := range names {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		candidates, err := e.mb.SearchArtist(ctx, name)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			sendProgress(progress, searchFailedUpdate(i+1, total, name, err))
			candidates = nil
		}

		artist := selectBestMatch(candidates, name, opts.MinScore)
		result.Artists = append(result.Artists, artist)
		if artist.Matched() {
			result.Matched++
		} else {
			result.Unmatched++
		}

		e.record(opts.RunID, artist)
		sendProgress(progress, artistResolvedUpdate(i+1, total, artist))

		if !artist.Matched() || out == nil {
			continue
		}
		wrote, err := out.Write(artist.MBID)
		if err != nil {
			return result, fmt.Errorf("failed to write %s: %w", artist.MBID, err)
		}
		if wrote {
			result.Written++
			result.NewMBIDs = append(result.NewMBIDs, artist.MBID)
		}
	}

	return result, nil
}

func (e *ResolveEngine) record(runID string, artist models.ResolvedArtist) {
	if e.recorder == nil || runID == "" {
		return
	}
	_ = e.recorder.RecordResolution(runID, artist)
}

// selectBestMatch picks the winning candidate for an input name.
//
// Candidates whose name or any alias equals the input under Unicode case
// folding form the preferred pool; when none match exactly every candidate
// stays in play. The pool is ordered by relevance score descending, keeping
// the API's order on ties, and the winner must still clear minScore.
func selectBestMatch(candidates []services.MBArtist, name string, minScore int) models.ResolvedArtist {
	resolved := models.ResolvedArtist{InputName: name}
	if len(candidates) == 0 {
		return resolved
	}

	folder := cases.Fold()
	want := folder.String(name)
	exact := func(a services.MBArtist) bool {
		if folder.String(a.Name) == want {
			return true
		}
		for _, alias := range a.Aliases {
			if folder.String(alias.Name) == want {
				return true
			}
		}
		return false
	}

	var pool []services.MBArtist
	for _, a := range candidates {
		if exact(a) {
			pool = append(pool, a)
		}
	}
	if len(pool) == 0 {
		pool = append(pool, candidates...)
	}

	sort.SliceStable(pool, func(i, j int) bool { return pool[i].Score > pool[j].Score })

	top := pool[0]
	if top.Score < minScore {
		return resolved
	}

	resolved.MBID = top.ID
	resolved.MatchedName = top.Name
	resolved.Score = top.Score
	resolved.Type = top.Type
	resolved.Country = top.Country
	resolved.Disambiguation = top.Disambiguation
	return resolved
}
