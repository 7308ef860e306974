package bandcamp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/bandcamp-fetch/internal/model"
)

const albumPage = `<!DOCTYPE html>
<html><head>
<meta property="og:url" content="https://artist.bandcamp.com/album/test-album">
<meta property="og:type" content="album">
<script type="application/ld+json">
{"@type":"MusicAlbum","@id":"https://artist.bandcamp.com/album/test-album","name":"LD Title",
 "description":"LD description","datePublished":"01 Feb 2021 00:00:00 GMT","keywords":["drone","ambient"],
 "byArtist":{"@type":"MusicGroup","name":"The Artist","@id":"https://artist.bandcamp.com"},
 "publisher":{"@type":"MusicGroup","name":"Some Label","@id":"https://somelabel.bandcamp.com"},
 "numTracks":2,"image":"https://f4.bcbits.com/img/a0000000042_10.jpg",
 "additionalProperty":[{"name":"item_id","value":777}],
 "track":{"numberOfItems":2,"itemListElement":[
  {"position":2,"item":{"@type":"MusicRecording","name":"Guest Star - Song Two","@id":"https://artist.bandcamp.com/track/song-two","duration":"P00H01M05S"}},
  {"position":1,"item":{"@type":"MusicRecording","name":"Song One","@id":"https://artist.bandcamp.com/track/song-one","duration":"P00H03M20S",
   "additionalProperty":[{"name":"track_id","value":101},{"name":"file_mp3-128","value":"https://t4.bcbits.com/stream/one"}]}}
 ]}}
</script>
</head><body>
<div id="name-section">
  <h2 class="trackTitle">DOM Title</h2>
  <h3>by <span><a href="https://artist.bandcamp.com">The Artist</a></span></h3>
</div>
<div id="tralbumArt"><a class="popupImage" href="https://f4.bcbits.com/img/a0000000042_10.jpg"></a></div>
<div class="tralbum-about">DOM about</div>
<div class="tralbum-credits">released February 1, 2021<br>Mastered by someone</div>
<div class="tralbum-tags">
  <a class="tag" href="https://bandcamp.com/tag/ambient">ambient</a>
  <a class="tag" href="https://bandcamp.com/tag/field-recordings">field recordings</a>
</div>
<table id="track_table">
  <tr class="track_row_view" rel="tracknum=1"><td class="title"><a href="/track/song-one"><span class="track-title">Song One</span></a> <span class="time">03:20</span></td></tr>
  <tr id="lyrics_row_1"><td><div class="lyricsText">la la<br>la</div></td></tr>
  <tr class="track_row_view" rel="tracknum=2"><td class="title"><a href="/track/song-two"><span class="track-title">Guest Star - Song Two</span></a> <span class="time">1:05</span></td></tr>
</table>
<div id="pgBd" data-tralbum='{"id":777,"item_type":"album","url":"https://artist.bandcamp.com/album/test-album",
  "artist":"The Artist","art_id":42,"current":{"title":"Test Album","about":"","credits":""},
  "trackinfo":[
   {"track_id":101,"title":"Song One","track_num":1,"duration":200.5,"title_link":"/track/song-one",
    "file":{"mp3-v0":"//t4.bcbits.com/stream/one-v0","mp3-128":"https://t4.bcbits.com/stream/one"}},
   {"track_id":102,"title":"Guest Star - Song Two","track_num":2,"duration":65,"title_link":"/track/song-two","file":null}
  ]}'></div>
</body></html>`

func TestParseTralbum_Album(t *testing.T) {
	entity, err := ParseTralbum(albumPage, "https://artist.bandcamp.com/album/test-album?from=search")
	require.NoError(t, err)

	album, ok := entity.(*model.Album)
	require.True(t, ok, "got %T", entity)

	assert.Equal(t, int64(777), album.ID)
	assert.Equal(t, "Test Album", album.Name)
	assert.Equal(t, "https://artist.bandcamp.com/album/test-album", album.URL)
	assert.Equal(t, "LD description", album.Description)
	assert.Equal(t, "Mastered by someone", album.Credits)
	assert.Equal(t, "2021-02-01T00:00:00.000Z", album.ReleaseDate)

	require.NotNil(t, album.Artist)
	assert.Equal(t, "The Artist", album.Artist.Name)
	require.NotNil(t, album.Label)
	assert.Equal(t, "Some Label", album.Label.Name)
	assert.Equal(t, model.TypeLabel, album.Label.Type)

	var tags []string
	for _, tag := range album.Tags {
		tags = append(tags, tag.Name)
	}
	assert.Equal(t, []string{"ambient", "field recordings", "drone"}, tags)
	assert.Len(t, album.Images, 4)

	require.Len(t, album.Tracks, 2)
	assert.Equal(t, 2, album.NumTracks)

	one := album.Tracks[0]
	assert.Equal(t, int64(101), one.ID)
	assert.Equal(t, "Song One", one.Name)
	assert.Equal(t, 1, one.TrackNumber)
	assert.Equal(t, 200.5, one.Duration)
	assert.Equal(t, "la la\nla", one.Lyrics)
	assert.Equal(t, []model.AudioSource{
		{Type: "mp3-128", URL: "https://t4.bcbits.com/stream/one"},
		{Type: "mp3-v0", URL: "https://t4.bcbits.com/stream/one-v0"},
	}, one.AudioSources)
	assert.Nil(t, one.Artist)

	two := album.Tracks[1]
	assert.Equal(t, int64(102), two.ID)
	assert.Equal(t, "Song Two", two.Name)
	assert.Equal(t, 2, two.TrackNumber)
	require.NotNil(t, two.Artist)
	assert.Equal(t, "Guest Star", two.Artist.Name)
	assert.Empty(t, two.AudioSources)
}

func TestParseTralbum_DOMOnly(t *testing.T) {
	html := `<html><head><meta property="og:type" content="album"></head><body>
<div id="name-section"><h2 class="trackTitle">Plain Album</h2>
<h3>by <span><a href="https://artist.bandcamp.com">Someone</a></span></h3></div>
<table id="track_table">
  <tr class="track_row_view"><td class="title"><a href="/track/a"><span class="track-title">A</span></a><span class="time">1:00</span></td></tr>
  <tr class="track_row_view"><td class="title"><a href="/track/b"><span class="track-title">B</span></a><span class="time">2:00</span></td></tr>
</table></body></html>`

	entity, err := ParseTralbum(html, "https://artist.bandcamp.com/album/plain-album")
	require.NoError(t, err)
	album := entity.(*model.Album)
	assert.Equal(t, "Plain Album", album.Name)
	assert.Equal(t, "https://artist.bandcamp.com/album/plain-album", album.URL)
	require.Len(t, album.Tracks, 2)
	assert.Equal(t, "https://artist.bandcamp.com/track/b", album.Tracks[1].URL)
	assert.Equal(t, 120.0, album.Tracks[1].Duration)
	assert.False(t, album.HasAudio())
}

func TestParseTralbum_Single(t *testing.T) {
	html := `<html><head><meta property="og:url" content="https://artist.bandcamp.com/track/lonely"></head><body>
<div id="name-section"><h2 class="trackTitle">Lonely</h2>
<h3>by <span><a href="https://artist.bandcamp.com">The Artist</a></span></h3></div>
<div data-tralbum='{"id":55,"item_type":"track","url":"https://artist.bandcamp.com/track/lonely","artist":"The Artist",
  "art_id":9,"current":{"title":"Lonely","lyrics":"alone","release_date":"05 Mar 2020 00:00:00 GMT","track_number":null},
  "trackinfo":[{"track_id":55,"title":"Lonely","track_num":null,"duration":120,"file":{"mp3-128":"https://t4.bcbits.com/stream/lonely"}}]}'></div>
</body></html>`

	entity, err := ParseTralbum(html, "https://artist.bandcamp.com/track/lonely")
	require.NoError(t, err)
	track, ok := entity.(*model.Track)
	require.True(t, ok, "got %T", entity)

	assert.Equal(t, int64(55), track.ID)
	assert.Equal(t, "Lonely", track.Name)
	assert.Equal(t, "alone", track.Lyrics)
	assert.Equal(t, 120.0, track.Duration)
	assert.Equal(t, "2020-03-05T00:00:00.000Z", track.ReleaseDate)
	assert.Len(t, track.AudioSources, 1)

	assert.True(t, track.IsSingle())
	assert.Zero(t, track.TrackNumber)
	require.NotNil(t, track.Album)
	assert.Equal(t, "Lonely", track.Album.Name)
	assert.Equal(t, track.URL, track.Album.URL)

	album := AlbumFromSingle(track)
	assert.Equal(t, 1, album.NumTracks)
	require.Len(t, album.Tracks, 1)
	assert.Equal(t, 1, album.Tracks[0].TrackNumber)
	assert.Equal(t, "Lonely", album.Tracks[0].Name)
	assert.Equal(t, track.AudioSources, album.Tracks[0].AudioSources)
}

func TestParseTralbum_TrackOnAlbum(t *testing.T) {
	html := `<html><head><meta property="og:url" content="https://artist.bandcamp.com/track/song-one"></head><body>
<div id="name-section"><h2 class="trackTitle">Song One</h2>
<h3><a href="/album/test-album"><span class="fromAlbum">Test Album</span></a></h3>
<h3>by <span><a href="https://artist.bandcamp.com">The Artist</a></span></h3></div>
<div data-embed='{"album_title":"Test Album"}'></div>
<div data-tralbum='{"id":101,"item_type":"track","url":"/track/song-one","album_url":"/album/test-album",
  "current":{"title":"Song One","track_number":1},
  "trackinfo":[{"track_id":101,"title":"Song One","track_num":1,"duration":200}]}'></div>
</body></html>`

	entity, err := ParseTralbum(html, "https://artist.bandcamp.com/track/song-one")
	require.NoError(t, err)
	track := entity.(*model.Track)

	assert.False(t, track.IsSingle())
	assert.Equal(t, 1, track.TrackNumber)
	require.NotNil(t, track.Album)
	assert.Equal(t, "Test Album", track.Album.Name)
	assert.Equal(t, "https://artist.bandcamp.com/album/test-album", track.Album.URL)
	require.NotNil(t, track.Artist)
	assert.Equal(t, "The Artist", track.Artist.Name)
}

func TestParseTralbum_Errors(t *testing.T) {
	t.Run("missing name", func(t *testing.T) {
		_, err := ParseTralbum(`<html><body><div id="name-section"></div></body></html>`,
			"https://artist.bandcamp.com/album/nameless")
		var perr *ParseError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, "album name", perr.Field)
	})

	t.Run("unknown page type", func(t *testing.T) {
		_, err := ParseTralbum(`<html><body>hello</body></html>`, "https://example.org/about")
		var perr *ParseError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, "item type", perr.Field)
	})

	t.Run("malformed blob", func(t *testing.T) {
		_, err := ParseTralbum(`<html><body><div data-tralbum='{"id":'></div></body></html>`,
			"https://artist.bandcamp.com/album/broken")
		var perr *ParseError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, "data-tralbum", perr.Field)
		assert.Error(t, perr.Unwrap())
	})
}
