package omdb

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ItsHarfer/CineShelf/internal/model"
)

func TestClean(t *testing.T) {
	assert.Equal(t, "", Clean("N/A"))
	assert.Equal(t, "", Clean(""))
	assert.Equal(t, "Christopher Nolan", Clean("Christopher Nolan"))
	assert.Equal(t, "n/a", Clean("n/a"), "only the exact marker is replaced")
}

func TestParseYear(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"2014", 2014},
		{"2014-2016", 2014},
		{"2010–2016", 2010},
		{"2010–", 2010},
		{"abcd", 0},
		{"", 0},
		{"N/A", 0},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseYear(tt.raw))
		})
	}
}

func TestPosterURL(t *testing.T) {
	assert.Nil(t, PosterURL("N/A"))
	assert.Nil(t, PosterURL(""))

	url := "https://m.media-amazon.com/images/M/inception.jpg"
	got := PosterURL(url)
	if assert.NotNil(t, got) {
		assert.Equal(t, url, *got)
	}
}

func TestRecordToMovie(t *testing.T) {
	r := Record{Title: "Inception", Year: "2010", Director: "Christopher Nolan"}
	m := r.ToMovie(7)

	assert.Equal(t, "Inception", m.Name)
	assert.Equal(t, "Christopher Nolan", m.Director)
	assert.Equal(t, 2010, m.Year)
	assert.Nil(t, m.PosterURL)
	assert.Equal(t, int64(7), m.OwnerID)
	assert.Zero(t, m.ID)
}

func TestRecordToMovie_Defaults(t *testing.T) {
	m := Record{}.ToMovie(1)

	assert.Equal(t, model.UnknownTitle, m.Name)
	assert.Equal(t, model.UnknownDirector, m.Director)
	assert.Zero(t, m.Year)
	assert.Nil(t, m.PosterURL)
}

func TestPayloadRecordStripsMarkers(t *testing.T) {
	p := payload{
		Response: "True",
		Title:    "Her",
		Year:     "N/A",
		Poster:   "N/A",
		Director: "N/A",
		Plot:     "N/A",
	}
	assert.Equal(t, Record{Title: "Her"}, p.record())
}
