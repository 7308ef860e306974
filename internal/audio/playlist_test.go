package audio

import (
	"strings"
	"testing"
	"time"
)

func testPlaylist() *Playlist {
	return &Playlist{
		Title:  "Test Album",
		Artist: "Test Artist",
		Entries: []PlaylistEntry{
			{Path: "/music/Test Artist/Test Album/01 track1.mp3", Title: "track1", Duration: 180 * time.Second},
			{Path: "/music/Test Artist/Test Album/02 track2.mp3", Title: "track2", Artist: "Guest", Duration: 200500 * time.Millisecond},
		},
	}
}

func TestPlaylistCreator_M3U(t *testing.T) {
	content := NewPlaylistCreator(FormatM3U, false).CreatePlaylist(testPlaylist())

	want := "01 track1.mp3\n02 track2.mp3\n"
	if content != want {
		t.Errorf("got %q, want %q", content, want)
	}
}

func TestPlaylistCreator_M3UExtended(t *testing.T) {
	content := NewPlaylistCreator(FormatM3U, true).CreatePlaylist(testPlaylist())

	if !strings.HasPrefix(content, "#EXTM3U\n") {
		t.Error("extended M3U should start with #EXTM3U")
	}
	if !strings.Contains(content, "#EXTINF:180,Test Artist - track1\n") {
		t.Errorf("missing first EXTINF line in %q", content)
	}
	if !strings.Contains(content, "#EXTINF:200,Guest - track2\n") {
		t.Errorf("entry artist should win over playlist artist in %q", content)
	}
}

func TestPlaylistCreator_PLS(t *testing.T) {
	content := NewPlaylistCreator(FormatPLS, false).CreatePlaylist(testPlaylist())

	for _, line := range []string{"[playlist]", "File1=01 track1.mp3", "Length2=200", "NumberOfEntries=2", "Version=2"} {
		if !strings.Contains(content, line) {
			t.Errorf("PLS should contain %q", line)
		}
	}
}

func TestPlaylistCreator_WPL(t *testing.T) {
	content := NewPlaylistCreator(FormatWPL, false).CreatePlaylist(testPlaylist())

	if !strings.HasPrefix(content, "<?wpl") {
		t.Error("WPL should start with its processing instruction")
	}
	if !strings.Contains(content, `<media src="02 track2.mp3"/>`) {
		t.Error("WPL should contain media elements")
	}
}

func TestPlaylistCreator_ZPL(t *testing.T) {
	content := NewPlaylistCreator(FormatZPL, false).CreatePlaylist(testPlaylist())

	if !strings.Contains(content, `<meta name="ItemCount" content="2"/>`) {
		t.Error("ZPL should carry the item count")
	}
	if !strings.Contains(content, `trackArtist="Guest" duration="200500"`) {
		t.Errorf("ZPL should carry artist and millisecond duration: %q", content)
	}
}

func TestPlaylistCreator_XMLEscape(t *testing.T) {
	pl := &Playlist{
		Title:   "Album <Special>",
		Artist:  "Artist & Co",
		Entries: []PlaylistEntry{{Path: "Track & \"Quote\".mp3", Title: "Track & \"Quote\""}},
	}

	content := NewPlaylistCreator(FormatZPL, false).CreatePlaylist(pl)

	if strings.Contains(content, "<Special>") {
		t.Error("< and > should be escaped")
	}
	if !strings.Contains(content, "Artist &amp; Co") {
		t.Error("& should be escaped")
	}
	if !strings.Contains(content, "Track &amp; &quot;Quote&quot;.mp3") {
		t.Error("quotes should be escaped")
	}
}

func TestParsePlaylistFormat(t *testing.T) {
	tests := map[string]PlaylistFormat{
		"pls":   FormatPLS,
		" WPL ": FormatWPL,
		"zpl":   FormatZPL,
		"m3u":   FormatM3U,
		"bogus": FormatM3U,
	}
	for in, want := range tests {
		if got := ParsePlaylistFormat(in); got != want {
			t.Errorf("ParsePlaylistFormat(%q) = %v, want %v", in, got, want)
		}
		if got := ParsePlaylistFormat(in).Extension(); in == "pls" && got != "pls" {
			t.Errorf("extension = %q", got)
		}
	}
}
