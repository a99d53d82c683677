package omdb

import (
	"strings"

	"github.com/ItsHarfer/CineShelf/internal/model"
)

// NotAvailable is OMDb's marker for an unknown field value.
const NotAvailable = "N/A"

// Record holds the normalized fields of one OMDb answer. No field ever holds
// NotAvailable; unknown values are empty strings.
type Record struct {
	Title    string `json:"title"`
	Year     string `json:"year"`
	Poster   string `json:"poster"`
	Director string `json:"director"`
	Plot     string `json:"plot"`
}

// Clean maps OMDb's "N/A" marker to the empty string and trims whitespace.
func Clean(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == NotAvailable {
		return ""
	}
	return raw
}

// ParseYear returns the year encoded in the first four characters of raw, or
// 0 when they are not a number. "2010–2016" yields 2010.
func ParseYear(raw string) int {
	year, _ := model.ParseYear(raw)
	return year
}

// PosterURL returns nil for a missing or "N/A" poster and the URL otherwise.
func PosterURL(raw string) *string {
	raw = Clean(raw)
	if raw == "" {
		return nil
	}
	return &raw
}

// ToMovie builds an unsaved movie owned by ownerID.
func (r Record) ToMovie(ownerID int64) *model.Movie {
	name := r.Title
	if name == "" {
		name = model.UnknownTitle
	}
	director := r.Director
	if director == "" {
		director = model.UnknownDirector
	}
	return &model.Movie{
		Name:      name,
		Director:  director,
		Year:      ParseYear(r.Year),
		PosterURL: PosterURL(r.Poster),
		OwnerID:   ownerID,
	}
}

// payload is the subset of the OMDb response body that is consumed.
type payload struct {
	Response string `json:"Response"`
	Error    string `json:"Error"`
	Title    string `json:"Title"`
	Year     string `json:"Year"`
	Poster   string `json:"Poster"`
	Director string `json:"Director"`
	Plot     string `json:"Plot"`
}

func (p payload) record() Record {
	return Record{
		Title:    Clean(p.Title),
		Year:     Clean(p.Year),
		Poster:   Clean(p.Poster),
		Director: Clean(p.Director),
		Plot:     Clean(p.Plot),
	}
}
