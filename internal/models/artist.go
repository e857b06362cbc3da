package models

import "fmt"

// ResolvedArtist is the outcome of resolving one input name against the
// MusicBrainz search API. MBID is empty when no confident match was found.
type ResolvedArtist struct {
	InputName      string `json:"input_artist"`
	MBID           string `json:"musicbrainz_id"`
	MatchedName    string `json:"matched_name"`
	Score          int    `json:"score"`
	Type           string `json:"type"`
	Country        string `json:"country"`
	Disambiguation string `json:"disambiguation"`
}

// Matched reports whether the resolution produced an identifier.
func (a ResolvedArtist) Matched() bool {
	return a.MBID != ""
}

// ImportStatus classifies the outcome of importing one MBID into Lidarr.
type ImportStatus string

const (
	StatusAdded       ImportStatus = "ADDED"
	StatusExists      ImportStatus = "EXISTS"
	StatusLookupError ImportStatus = "LOOKUP_ERROR"
	StatusNoResults   ImportStatus = "NO_RESULTS"
	StatusAddError    ImportStatus = "ADD_ERROR"
	StatusDryRun      ImportStatus = "DRY_RUN"
)

// Valid reports whether the status is one of the known outcomes.
func (s ImportStatus) Valid() bool {
	switch s {
	case StatusAdded, StatusExists, StatusLookupError, StatusNoResults, StatusAddError, StatusDryRun:
		return true
	}
	return false
}

// Failed reports whether the status counts as a failure.
func (s ImportStatus) Failed() bool {
	switch s {
	case StatusLookupError, StatusNoResults, StatusAddError:
		return true
	}
	return false
}

// ImportResult is one importer outcome row, mirroring a report line.
type ImportResult struct {
	MBID       string       `json:"mbid"`
	Status     ImportStatus `json:"status"`
	ArtistName string       `json:"artist_name"`
	Detail     string       `json:"detail"`
}

// ImportStats tallies importer outcomes by status. NO_RESULTS counts as a
// lookup error.
type ImportStats struct {
	Added       int `json:"added"`
	Exists      int `json:"exists"`
	LookupError int `json:"lookup_error"`
	AddError    int `json:"add_error"`
	DryRun      int `json:"dry_run"`
}

// Record adds one outcome to the tally.
func (s *ImportStats) Record(status ImportStatus) {
	switch status {
	case StatusAdded:
		s.Added++
	case StatusExists:
		s.Exists++
	case StatusLookupError, StatusNoResults:
		s.LookupError++
	case StatusAddError:
		s.AddError++
	case StatusDryRun:
		s.DryRun++
	}
}

// Total returns the number of recorded outcomes.
func (s ImportStats) Total() int {
	return s.Added + s.Exists + s.LookupError + s.AddError + s.DryRun
}

// MonitorOption is Lidarr's addOptions.monitor value controlling which
// albums are monitored when an artist is added.
type MonitorOption string

const (
	MonitorAll      MonitorOption = "all"
	MonitorMissing  MonitorOption = "missing"
	MonitorExisting MonitorOption = "existing"
	MonitorNone     MonitorOption = "none"
	MonitorFuture   MonitorOption = "future"
	MonitorLatest   MonitorOption = "latest"
	MonitorFirst    MonitorOption = "first"
)

// MonitorOptions lists every accepted monitor value.
var MonitorOptions = []MonitorOption{
	MonitorAll, MonitorMissing, MonitorExisting, MonitorNone,
	MonitorFuture, MonitorLatest, MonitorFirst,
}

// ParseMonitorOption validates a monitor flag value.
func ParseMonitorOption(s string) (MonitorOption, error) {
	for _, opt := range MonitorOptions {
		if MonitorOption(s) == opt {
			return opt, nil
		}
	}
	return "", fmt.Errorf("unknown monitor option %q (choose one of %v)", s, MonitorOptions)
}
