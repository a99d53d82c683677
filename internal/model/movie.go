package model

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// UnknownDirector is stored when no director is known for a movie.
	UnknownDirector = "Unknown"
	// UnknownTitle is used when a lookup produced no usable title.
	UnknownTitle = "Unknown Title"
)

// Movie is one entry in a user's collection.
//
// Year is a four-digit release year, or 0 when it could not be determined.
// PosterURL is nil when no artwork is known; it is never an empty string.
// OwnerID is fixed at creation and never rewritten by an update.
type Movie struct {
	ID        int64   `json:"id"        db:"id"`
	Name      string  `json:"name"      db:"name"`
	Director  string  `json:"director"  db:"director"`
	Year      int     `json:"year"      db:"year"`
	PosterURL *string `json:"posterUrl" db:"poster_url"`
	OwnerID   int64   `json:"ownerId"   db:"owner_id"`
}

func (m Movie) String() string {
	return fmt.Sprintf("%s (%d) by %s", m.Name, m.Year, m.Director)
}

// HasPoster reports whether the movie has artwork.
func (m Movie) HasPoster() bool {
	return m.PosterURL != nil
}

// ParseYear reads a release year from the first four characters of raw, so
// ranges such as "2010–2016" or "2010–" yield 2010. ok is false when those
// characters are not an integer.
func ParseYear(raw string) (year int, ok bool) {
	prefix := []rune(raw)
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}
	year, err := strconv.Atoi(strings.TrimSpace(string(prefix)))
	if err != nil {
		return 0, false
	}
	return year, true
}
