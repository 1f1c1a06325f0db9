// Package metadata extracts tag metadata from audio files. The scanner
// consumes the Reader capability, not the concrete extractor, so tests can
// substitute a fake.
package metadata

import (
	"path/filepath"
	"strings"
)

// Metadata is what the extractor can recover from a file. Absent tags are
// zero values; Duration and Year are nil when the container does not carry
// them.
type Metadata struct {
	Title    string
	Artist   string
	Album    string
	Year     *int
	Duration *float64 // seconds
	Artwork  *string  // data URI of the embedded cover, nil when absent
}

// Reader is the tag-extraction capability consumed by the scan reconciler.
type Reader interface {
	Read(path string) (*Metadata, error)
}

// supportedExtensions is the ingestion filter for library scans.
var supportedExtensions = map[string]struct{}{
	".mp3":  {},
	".wav":  {},
	".flac": {},
	".ogg":  {},
	".m4a":  {},
	".aac":  {},
	".opus": {},
}

// IsAudioFile reports whether path has a supported audio extension.
func IsAudioFile(path string) bool {
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}
