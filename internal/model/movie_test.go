package model

import "testing"

func TestParseYear(t *testing.T) {
	tests := []struct {
		raw    string
		want   int
		wantOK bool
	}{
		{"2014", 2014, true},
		{"2014-2016", 2014, true},
		{"2010–2016", 2010, true},
		{"2010–", 2010, true},
		{"abcd", 0, false},
		{"", 0, false},
		{"99", 99, true},
		{"N/A", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseYear(tt.raw)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseYear(%q) = (%d, %v), want (%d, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestMovieHasPoster(t *testing.T) {
	url := "https://example.com/p.jpg"
	if (Movie{}).HasPoster() {
		t.Error("HasPoster() = true for nil poster")
	}
	if !(Movie{PosterURL: &url}).HasPoster() {
		t.Error("HasPoster() = false with poster set")
	}
}
