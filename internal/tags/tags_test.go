package tags

import "testing"

func TestTag_Year(t *testing.T) {
	tests := []struct {
		name string
		date string
		want int
	}{
		{"empty", "", 0},
		{"year only", "2023", 2023},
		{"full date", "2023-06-15", 2023},
		{"partial date", "2023-06", 2023},
		{"invalid", "invalid", 0},
		{"short", "23", 23},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag := &Tag{Date: tt.date}
			if got := tag.Year(); got != tt.want {
				t.Errorf("Year() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsMusicFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"song.mp3", true},
		{"song.MP3", true},
		{"song.mp4", true},
		{"song.m4a", true},
		{"song.M4A", true},
		{"song.m4v", true},
		{"song.wav", true},
		{"song.WAV", true},
		{"song.flac", false},
		{"song.ogg", false},
		{"song.aac", false},
		{"song.txt", false},
		{"test", false},
		{"", false},
		{"/path/to/music.wav", true},
		{"/path.mp3/notes", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IsMusicFile(tt.path); got != tt.want {
				t.Errorf("IsMusicFile(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestParseNumberPair(t *testing.T) {
	tests := []struct {
		input     string
		wantNum   int
		wantTotal int
	}{
		{"", 0, 0},
		{"null", 0, 0},
		{"NULL", 0, 0},
		{"5", 5, 0},
		{"5/10", 5, 10},
		{" 7 / 9 ", 7, 9},
		{"1/1", 1, 1},
		{"invalid", 0, 0},
		{"5/invalid", 5, 0},
		{"invalid/10", 0, 10},
		{"-3", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			num, total := parseNumberPair(tt.input)
			if num != tt.wantNum {
				t.Errorf("parseNumberPair(%q) num = %d, want %d", tt.input, num, tt.wantNum)
			}
			if total != tt.wantTotal {
				t.Errorf("parseNumberPair(%q) total = %d, want %d", tt.input, total, tt.wantTotal)
			}
		})
	}
}

func TestTaglibTags_Get(t *testing.T) {
	tags := taglibTags{
		"TITLE":       {"Song"},
		"TOTALTRACKS": {"12"},
		"EMPTY":       {},
	}

	if got := tags.get("MISSING", "TITLE"); got != "Song" {
		t.Errorf("get() = %q, want %q", got, "Song")
	}
	if got := tags.get("EMPTY"); got != "" {
		t.Errorf("get(EMPTY) = %q, want empty", got)
	}
	if got := tags.getInt("TOTALTRACKS"); got != 12 {
		t.Errorf("getInt() = %d, want 12", got)
	}
	if got := tags.getInt("TITLE"); got != 0 {
		t.Errorf("getInt(TITLE) = %d, want 0", got)
	}
}
