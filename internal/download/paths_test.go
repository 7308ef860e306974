package download

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/handiism/bandcamp-fetch/internal/model"
)

func testAlbum() *model.Album {
	return &model.Album{
		Name:        "Night/Day: Vol 1",
		Artist:      &model.Artist{Name: "AC/DC"},
		Label:       &model.Artist{Name: "Tiny Label"},
		ReleaseDate: "2023-11-03T00:00:00Z",
	}
}

func TestAlbumDir(t *testing.T) {
	dir := albumDir("/music/{artist}/{year} - {album}", testAlbum())
	assert.Equal(t, filepath.FromSlash("/music/AC_DC/2023 - Night_Day_ Vol 1"), dir)

	dir = albumDir("/music/{label}/{artist}", &model.Album{Name: "x"})
	assert.Equal(t, filepath.FromSlash("/music/Unknown/Unknown"), dir)
}

func TestFileName(t *testing.T) {
	track := model.AlbumTrack{Name: "What? No!", TrackNumber: 3}
	v := albumVars(testAlbum()).withTrack(track, "flac")

	assert.Equal(t, "03 AC_DC - What_ No!.flac", fileName("{tracknum} {artist} - {title}.{ext}", v))
	assert.Equal(t, "What_ No!.flac", fileName("{title}", v))

	guest := model.AlbumTrack{Name: "Duet", TrackNumber: 12, Artist: &model.Artist{Name: "Guest"}}
	assert.Equal(t, "12 Guest - Duet.mp3", fileName("{tracknum} {artist} - {title}.{ext}", albumVars(testAlbum()).withTrack(guest, "mp3")))
}

func TestPickSource(t *testing.T) {
	sources := []model.AudioSource{
		{Type: "mp3-128", URL: "u128"},
		{Type: "flac", URL: "uflac"},
	}

	got, ok := pickSource(sources, []string{"mp3-320", "FLAC"})
	assert.True(t, ok)
	assert.Equal(t, "uflac", got.URL)

	got, ok = pickSource(sources, []string{"aac-hi"})
	assert.True(t, ok)
	assert.Equal(t, "u128", got.URL)

	_, ok = pickSource(nil, []string{"flac"})
	assert.False(t, ok)
}

func TestExtension(t *testing.T) {
	tests := map[string]string{
		"mp3-128":       "mp3",
		"mp3-v0":        "mp3",
		"flac":          "flac",
		"vorbis":        "ogg",
		"aac-hi":        "m4a",
		"alac":          "m4a",
		"aiff-lossless": "aiff",
		"wav":           "wav",
		"mystery":       "mp3",
	}
	for in, want := range tests {
		assert.Equal(t, want, extension(in), in)
	}
}

func TestReleaseFromTrack(t *testing.T) {
	single := &model.Track{Name: "Solo", URL: "https://a.bandcamp.com/track/solo"}
	single.MarkSingle()
	album := releaseFromTrack(single)
	assert.Equal(t, "Solo", album.Name)
	assert.Equal(t, 1, album.Tracks[0].TrackNumber)

	onAlbum := &model.Track{
		Name:        "Part",
		URL:         "https://a.bandcamp.com/track/part",
		TrackNumber: 4,
		Album:       &model.Album{Name: "Whole", URL: "https://a.bandcamp.com/album/whole"},
	}
	album = releaseFromTrack(onAlbum)
	assert.Equal(t, "Whole", album.Name)
	assert.Equal(t, "https://a.bandcamp.com/album/whole", album.URL)
	assert.Equal(t, 4, album.Tracks[0].TrackNumber)
}
