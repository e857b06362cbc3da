package tasks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackedtechbro/mbid-to-lidarr/internal/formatter"
	"github.com/jackedtechbro/mbid-to-lidarr/internal/models"
	"github.com/jackedtechbro/mbid-to-lidarr/internal/services"
	"github.com/jackedtechbro/mbid-to-lidarr/internal/shared"
)

// ImportOpts contains configuration for an importer run.
type ImportOpts struct {
	RootFolder        string               // Must match a root folder configured in Lidarr
	QualityProfileID  int                  // 0 = auto-detect
	MetadataProfileID int                  // 0 = auto-detect
	Monitor           models.MonitorOption // addOptions.monitor value (default all)
	SearchMissing     bool                 // addOptions.searchForMissingAlbums
	DryRun            bool                 // Lookup only, never add
	Limit             int                  // Process only the first N identifiers (0 = all)
	RunID             string               // History run to record rows under; empty skips recording
}

// ImportRunResult contains all data from an importer run.
type ImportRunResult struct {
	Results           []models.ImportResult // One row per identifier, in input order
	Stats             models.ImportStats
	QualityProfileID  int // Effective id after auto-detection
	MetadataProfileID int
}

// ImportEngine registers MusicBrainz identifiers as monitored Lidarr artists.
type ImportEngine struct {
	lidarr   LidarrAPI
	recorder Recorder
}

// NewImportEngine creates an ImportEngine. recorder may be nil.
func NewImportEngine(lidarr LidarrAPI, recorder Recorder) *ImportEngine {
	return &ImportEngine{lidarr: lidarr, recorder: recorder}
}

// Run validates the target root folder and profile ids, then processes each
// identifier: precheck against the existing library, look the artist up, and
// add it unless this is a dry run. Per-item failures become report rows and
// the run continues; only pre-flight validation aborts. report may be nil.
func (e *ImportEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, mbids []string, report ReportSink, opts ImportOpts) (*ImportRunResult, error) {
	if e.lidarr == nil {
		return nil, fmt.Errorf("%w: Lidarr service not initialized", shared.ErrServiceUnavailable)
	}
	if opts.Monitor == "" {
		opts.Monitor = models.MonitorAll
	}
	if opts.Limit > 0 && len(mbids) > opts.Limit {
		mbids = mbids[:opts.Limit]
	}

	sendProgress(progress, checkingRootFolderUpdate())
	if err := e.checkRootFolder(ctx, opts.RootFolder); err != nil {
		return nil, err
	}

	sendProgress(progress, resolvingProfilesUpdate())
	qualityID, metadataID, err := e.resolveProfiles(ctx, opts.QualityProfileID, opts.MetadataProfileID)
	if err != nil {
		return nil, err
	}

	sendProgress(progress, fetchingLibraryUpdate())
	existing, err := e.lidarr.ExistingForeignIDs(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		sendProgress(progress, precheckFailedUpdate(err))
		existing = make(map[string]struct{})
	}

	result := &ImportRunResult{QualityProfileID: qualityID, MetadataProfileID: metadataID}
	total := len(mbids)

	record := func(row models.ImportResult) error {
		result.Results = append(result.Results, row)
		result.Stats.Record(row.Status)
		if e.recorder != nil && opts.RunID != "" {
			_ = e.recorder.RecordImport(opts.RunID, row)
		}
		if report != nil {
			return report.Row(row)
		}
		return nil
	}

	for i, mbid := range mbids {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		step := i + 1

		if _, ok := existing[mbid]; ok {
			sendProgress(progress, precheckExistsUpdate(step, total, mbid))
			if err := record(models.ImportResult{MBID: mbid, Status: models.StatusExists, Detail: "precheck"}); err != nil {
				return result, err
			}
			continue
		}

		candidates, err := e.lidarr.Lookup(ctx, formatter.LidarrTag(mbid))
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			sendProgress(progress, lookupFailedUpdate(step, total, mbid, err))
			if err := record(models.ImportResult{MBID: mbid, Status: models.StatusLookupError, Detail: err.Error()}); err != nil {
				return result, err
			}
			continue
		}
		if len(candidates) == 0 {
			sendProgress(progress, noResultsUpdate(step, total, mbid))
			if err := record(models.ImportResult{MBID: mbid, Status: models.StatusNoResults, Detail: "no lookup results"}); err != nil {
				return result, err
			}
			continue
		}

		cand := candidates[0]
		for _, c := range candidates {
			if c.ForeignArtistID == mbid {
				cand = c
				break
			}
		}
		name := cand.ArtistName
		if name == "" {
			name = "<unknown>"
		}
		sendProgress(progress, foundArtistUpdate(step, total, name, cand.Disambiguation, mbid))

		if opts.DryRun {
			if err := record(models.ImportResult{MBID: mbid, Status: models.StatusDryRun, ArtistName: name}); err != nil {
				return result, err
			}
			continue
		}

		added, err := e.lidarr.AddArtist(ctx, buildAddRequest(cand, qualityID, metadataID, opts))
		if err == nil {
			addedName := name
			if added != nil && added.ArtistName != "" {
				addedName = added.ArtistName
			}
			existing[mbid] = struct{}{}
			sendProgress(progress, artistAddedUpdate(step, total, addedName))
			if err := record(models.ImportResult{MBID: mbid, Status: models.StatusAdded, ArtistName: name}); err != nil {
				return result, err
			}
			continue
		}
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		var statusErr *services.StatusError
		if errors.As(err, &statusErr) && (statusErr.StatusCode == 400 || statusErr.StatusCode == 409) {
			// A 400/409 can mean the artist raced in through another path, so
			// re-check the library before classifying the outcome.
			current, cerr := e.lidarr.ExistingForeignIDs(ctx)
			if cerr != nil {
				current = existing
			}
			if _, ok := current[mbid]; ok {
				existing[mbid] = struct{}{}
				sendProgress(progress, existsAfterAddUpdate(step, total, name, statusErr.StatusCode))
				row := models.ImportResult{
					MBID:       mbid,
					Status:     models.StatusExists,
					ArtistName: name,
					Detail:     fmt.Sprintf("HTTP %d", statusErr.StatusCode),
				}
				if err := record(row); err != nil {
					return result, err
				}
				continue
			}
		}

		detail := err.Error()
		if statusErr != nil {
			detail = statusErr.Error()
		}
		sendProgress(progress, addFailedUpdate(step, total, name, detail))
		row := models.ImportResult{MBID: mbid, Status: models.StatusAddError, ArtistName: name, Detail: detail}
		if err := record(row); err != nil {
			return result, err
		}
	}

	if report != nil {
		if err := report.Summary(result.Stats); err != nil {
			return result, err
		}
	}
	return result, nil
}

// buildAddRequest assembles the add payload for a lookup candidate. The
// candidate's own non-zero profile ids win over the effective ids, and Images
// and Tags are normalized so they serialize as [] rather than null.
func buildAddRequest(cand services.LidarrArtist, qualityID, metadataID int, opts ImportOpts) services.LidarrAddRequest {
	add := services.LidarrAddRequest{
		ForeignArtistID:   cand.ForeignArtistID,
		ArtistName:        cand.ArtistName,
		QualityProfileID:  qualityID,
		MetadataProfileID: metadataID,
		Images:            cand.Images,
		Monitored:         true,
		RootFolderPath:    opts.RootFolder,
		AddOptions: services.LidarrAddOptions{
			Monitor:                string(opts.Monitor),
			SearchForMissingAlbums: opts.SearchMissing,
		},
		Tags: cand.Tags,
	}
	if cand.QualityProfileID > 0 {
		add.QualityProfileID = cand.QualityProfileID
	}
	if cand.MetadataProfileID > 0 {
		add.MetadataProfileID = cand.MetadataProfileID
	}
	if add.Images == nil {
		add.Images = []services.LidarrImage{}
	}
	if add.Tags == nil {
		add.Tags = []int{}
	}
	return add
}

// checkRootFolder verifies the requested root folder is configured in Lidarr.
// Paths are compared with trailing slashes trimmed.
func (e *ImportEngine) checkRootFolder(ctx context.Context, root string) error {
	folders, err := e.lidarr.RootFolders(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch root folders: %w", err)
	}

	want := strings.TrimRight(root, "/")
	available := make([]string, 0, len(folders))
	for _, f := range folders {
		path := strings.TrimRight(f.Path, "/")
		if path == want {
			return nil
		}
		available = append(available, path)
	}

	if len(available) == 0 {
		return fmt.Errorf("%w: %q requested but Lidarr returned no root folders", shared.ErrRootFolder, root)
	}
	sort.Strings(available)
	return fmt.Errorf("%w: %q not configured in Lidarr (available: %s)", shared.ErrRootFolder, root, strings.Join(available, ", "))
}

// resolveProfiles determines the effective quality and metadata profile ids.
// Explicit positive ids win; otherwise the profile whose name contains
// "default" is picked, else the first. Both effective ids must exist in
// Lidarr; a failed profile fetch degrades to checking positivity only.
func (e *ImportEngine) resolveProfiles(ctx context.Context, qualityID, metadataID int) (int, int, error) {
	quality, err := e.lidarr.QualityProfiles(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return 0, 0, ctx.Err()
		}
		quality = nil
	}
	metadata, err := e.lidarr.MetadataProfiles(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return 0, 0, ctx.Err()
		}
		metadata = nil
	}

	if qualityID <= 0 {
		qualityID = pickDefaultProfile(quality)
	}
	if metadataID <= 0 {
		metadataID = pickDefaultProfile(metadata)
	}

	if err := validateProfileID("quality", qualityID, quality); err != nil {
		return 0, 0, err
	}
	if err := validateProfileID("metadata", metadataID, metadata); err != nil {
		return 0, 0, err
	}
	return qualityID, metadataID, nil
}

// pickDefaultProfile prefers a profile named like "default", else the first.
func pickDefaultProfile(profiles []services.LidarrProfile) int {
	if len(profiles) == 0 {
		return 0
	}
	for _, p := range profiles {
		if strings.Contains(strings.ToLower(p.Name), "default") {
			return p.ID
		}
	}
	return profiles[0].ID
}

func validateProfileID(kind string, id int, profiles []services.LidarrProfile) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid %s profile id: %d", shared.ErrInvalidProfile, kind, id)
	}
	if len(profiles) == 0 {
		return nil
	}
	ids := make([]int, 0, len(profiles))
	for _, p := range profiles {
		if p.ID == id {
			return nil
		}
		ids = append(ids, p.ID)
	}
	sort.Ints(ids)
	return fmt.Errorf("%w: invalid %s profile id: %d (available: %v)", shared.ErrInvalidProfile, kind, id, ids)
}
