package metadata

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/dhowden/tag"
	"go.senan.xyz/taglib"
)

// Extractor reads tags with dhowden/tag and audio properties with taglib.
// dhowden/tag covers the tag surface (including embedded pictures) but not
// stream duration, which only taglib derives reliably across containers.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Read(path string) (*Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	meta := &Metadata{}

	m, err := tag.ReadFrom(f)
	if err == nil {
		meta.Title = m.Title()
		meta.Artist = m.Artist()
		meta.Album = m.Album()
		if year := m.Year(); year > 0 {
			meta.Year = &year
		}
		meta.Artwork = pictureDataURI(m.Picture())
	}
	// A tag read failure is not fatal: untagged files are still ingested
	// under the fallback identities as long as a duration is derivable.

	props, err := taglib.ReadProperties(path)
	if err != nil {
		return nil, fmt.Errorf("read properties %s: %w", path, err)
	}
	if props.Length > 0 {
		seconds := props.Length.Seconds()
		meta.Duration = &seconds
	}

	return meta, nil
}

// pictureDataURI encodes an embedded cover as a data URI, matching the
// artwork format stored in the catalogue.
func pictureDataURI(pic *tag.Picture) *string {
	if pic == nil || len(pic.Data) == 0 {
		return nil
	}
	mime := pic.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}
	uri := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(pic.Data)
	return &uri
}
