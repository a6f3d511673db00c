// Package comicinfo renders the ComicInfo.xml document embedded in every
// processed archive.
package comicinfo

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/comicmeta/cmi/pkg/anilist"
)

// Fixed entry names used inside every archive.
const (
	EntryName      = "ComicInfo.xml"
	CoverEntryName = "cover.jpg"
)

// document defines the fixed element order. Writer is deliberately not
// omitempty: downstream readers expect the element even when no contributor
// was resolved.
type document struct {
	XMLName    xml.Name `xml:"ComicInfo"`
	Title      string   `xml:"Title"`
	Series     string   `xml:"Series"`
	Year       string   `xml:"Year,omitempty"`
	Writer     string   `xml:"Writer"`
	Genre      string   `xml:"Genre,omitempty"`
	Summary    string   `xml:"Summary,omitempty"`
	CoverImage string   `xml:"CoverImage"`
}

// Build renders the metadata document for one record. Output is
// byte-reproducible for identical input.
func Build(m anilist.Media, prefer string) ([]byte, error) {
	doc := document{
		Title:      m.PreferredTitle(prefer),
		Series:     m.SeriesTitle(),
		Writer:     strings.Join(m.Staff, ", "),
		Genre:      strings.Join(m.Genres, ", "),
		Summary:    m.Description,
		CoverImage: CoverEntryName,
	}

	if m.Year > 0 {
		doc.Year = strconv.Itoa(m.Year)
	}

	body, err := xml.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "marshal comicinfo")
	}

	out := make([]byte, 0, len(xml.Header)+len(body))
	out = append(out, xml.Header...)
	out = append(out, body...)
	return out, nil
}
