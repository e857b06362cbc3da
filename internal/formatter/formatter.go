// package formatter implements the pipeline's line-oriented file formats: artist name lists, tagged MBID lists, and the import report
package formatter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LidarrPrefix tags identifier lines so downstream tools can tell MBIDs from
// arbitrary text.
const LidarrPrefix = "lidarr:"

// LidarrTag formats an MBID as a tagged output line.
func LidarrTag(mbid string) string {
	return LidarrPrefix + mbid
}

// ParseArtistList reads one artist name per line, skipping blanks and
// de-duplicating while preserving first-seen order.
func ParseArtistList(r io.Reader) ([]string, error) {
	var names []string
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read artist list: %w", err)
	}

	return names, nil
}

// ReadArtistFile parses an artist list from a file on disk.
func ReadArtistFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open artist file: %w", err)
	}
	defer f.Close()

	return ParseArtistList(f)
}

// ParseMBIDList reads identifier lines, accepting both tagged
// ("lidarr:<mbid>") and bare ("<mbid>") forms, skipping blanks and
// de-duplicating while preserving first-seen order. Identifiers are not
// validated here; callers decide what to do with malformed ones.
func ParseMBIDList(r io.Reader) ([]string, error) {
	var mbids []string
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(line, LidarrPrefix); ok {
			line = strings.TrimSpace(rest)
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		mbids = append(mbids, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read mbid list: %w", err)
	}

	return mbids, nil
}

// ReadMBIDFile parses an identifier list from a file on disk.
func ReadMBIDFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mbid file: %w", err)
	}
	defer f.Close()

	return ParseMBIDList(f)
}

// taggedMBIDs collects identifiers from lines carrying the lidarr prefix.
// Untagged lines are ignored, so resume mode only trusts lines this tool
// wrote itself.
func taggedMBIDs(r io.Reader) (map[string]struct{}, error) {
	ids := make(map[string]struct{})

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		rest, ok := strings.CutPrefix(line, LidarrPrefix)
		if !ok || rest == "" {
			continue
		}
		ids[rest] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read existing output: %w", err)
	}

	return ids, nil
}

// WriteArtistList writes names one per line in sorted order, creating parent
// directories as needed.
func WriteArtistList(path string, names []string) error {
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	var b strings.Builder
	for _, name := range sorted {
		b.WriteString(name)
		b.WriteByte('\n')
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write artist list: %w", err)
	}

	return nil
}

// MBIDWriter appends tagged identifier lines to an output file, writing each
// line through to disk immediately so an interrupted run loses nothing.
//
// The writer tracks identifiers it has written (and, in resume mode, those
// already present in the file) and silently drops duplicates.
type MBIDWriter struct {
	f       *os.File
	written map[string]struct{}
}

// NewMBIDWriter opens the output file for writing, creating parent
// directories as needed. In resume mode the file is opened for append and
// identifiers already present are preloaded into the duplicate set;
// otherwise the file is truncated.
func NewMBIDWriter(path string, resume bool) (*MBIDWriter, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	written := make(map[string]struct{})
	if resume {
		if existing, err := os.Open(path); err == nil {
			written, err = taggedMBIDs(existing)
			existing.Close()
			if err != nil {
				return nil, err
			}
		}
	}

	flags := os.O_CREATE | os.O_WRONLY
	if resume {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open output file: %w", err)
	}

	return &MBIDWriter{f: f, written: written}, nil
}

// Write appends one tagged identifier line. Returns false without writing
// when the identifier was already written (this run or, in resume mode, a
// previous one).
func (w *MBIDWriter) Write(mbid string) (bool, error) {
	if mbid == "" {
		return false, nil
	}
	if _, ok := w.written[mbid]; ok {
		return false, nil
	}

	if _, err := fmt.Fprintln(w.f, LidarrTag(mbid)); err != nil {
		return false, fmt.Errorf("failed to write mbid: %w", err)
	}

	w.written[mbid] = struct{}{}
	return true, nil
}

// Seen reports whether the identifier is already in the output file.
func (w *MBIDWriter) Seen(mbid string) bool {
	_, ok := w.written[mbid]
	return ok
}

// Count returns the number of identifiers in the duplicate set.
func (w *MBIDWriter) Count() int {
	return len(w.written)
}

// Close closes the underlying file.
func (w *MBIDWriter) Close() error {
	return w.f.Close()
}
